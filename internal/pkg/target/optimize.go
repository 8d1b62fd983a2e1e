package target

import (
	"fmt"
	"strings"
)

// Optimize is a zig optimization mode. The zero value means "not set" and
// leaves the choice to the project's build.zig.
type Optimize string

const (
	Debug        Optimize = "Debug"
	ReleaseSafe  Optimize = "ReleaseSafe"
	ReleaseFast  Optimize = "ReleaseFast"
	ReleaseSmall Optimize = "ReleaseSmall"
)

var optimizeModes = []Optimize{Debug, ReleaseSafe, ReleaseFast, ReleaseSmall}

// ParseOptimize validates an --optimize value. An empty string is accepted and
// returns the zero value.
func ParseOptimize(s string) (Optimize, error) {
	if s == "" {
		return "", nil
	}
	for _, m := range optimizeModes {
		if string(m) == s {
			return m, nil
		}
	}
	names := make([]string, len(optimizeModes))
	for i, m := range optimizeModes {
		names[i] = string(m)
	}
	return "", fmt.Errorf("invalid optimize %q. Valid values: %s", s, strings.Join(names, ", "))
}
