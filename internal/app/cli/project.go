package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ozacod/zapi/pkg/config"
	"github.com/tidwall/gjson"
)

// ProjectType describes how far a directory is set up for zapi.
type ProjectType int

const (
	ProjectTypeUnknown ProjectType = iota // no package.json
	ProjectTypeNode                       // package.json without a zapi field
	ProjectTypeZapi                       // package.json with a zapi field
)

// DetectProjectType inspects dir's package.json. A package.json that cannot
// be read or parsed counts as unknown.
func DetectProjectType(dir string) ProjectType {
	data, err := os.ReadFile(filepath.Join(dir, config.ManifestFileName))
	if err != nil || !gjson.ValidBytes(data) {
		return ProjectTypeUnknown
	}
	if gjson.GetBytes(data, "zapi").Exists() {
		return ProjectTypeZapi
	}
	return ProjectTypeNode
}

// RequireProject checks that dir is a zapi project before cmdName runs.
func RequireProject(dir, cmdName string) (ProjectType, error) {
	pt := DetectProjectType(dir)
	switch pt {
	case ProjectTypeUnknown:
		return pt, fmt.Errorf("%s requires a package.json in %s", cmdName, displayDir(dir))
	case ProjectTypeNode:
		return pt, fmt.Errorf("%s requires a \"zapi\" field in package.json; run `zapi init` first", cmdName)
	}
	return pt, nil
}

func displayDir(dir string) string {
	if dir == "" || dir == "." {
		return "the current directory"
	}
	return dir
}
