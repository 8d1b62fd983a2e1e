// Package target is the registry of platforms zapi can build and publish for.
//
// Every target is identified by its npm-facing name (for example
// "x86_64-unknown-linux-gnu"). The registry maps each name to the os/cpu/libc
// triple npm understands and to the triple the zig toolchain expects. The two
// spellings differ, so they are kept in separate tables.
package target

import (
	"fmt"
	"strings"
)

// Target is a supported platform identifier.
type Target string

const (
	AArch64AppleDarwin Target = "aarch64-apple-darwin"
	AArch64LinuxGnu    Target = "aarch64-unknown-linux-gnu"
	X8664AppleDarwin   Target = "x86_64-apple-darwin"
	X8664LinuxGnu      Target = "x86_64-unknown-linux-gnu"
	X8664LinuxMusl     Target = "x86_64-unknown-linux-musl"
	X8664WindowsMsvc   Target = "x86_64-pc-windows-msvc"
)

// all keeps the canonical ordering used by help output and selection lists.
var all = []Target{
	AArch64AppleDarwin,
	AArch64LinuxGnu,
	X8664AppleDarwin,
	X8664LinuxGnu,
	X8664LinuxMusl,
	X8664WindowsMsvc,
}

// npm platform and architecture spellings.
const (
	PlatformDarwin = "darwin"
	PlatformLinux  = "linux"
	PlatformWin32  = "win32"

	ArchArm64 = "arm64"
	ArchX64   = "x64"
)

// Parts is the npm view of a target.
type Parts struct {
	Platform string // npm "os" value
	Arch     string // npm "cpu" value
	ABI      string // gnu, musl, msvc or empty
}

// Libc returns the npm libc constraint for the target, or "" when the target
// carries none. Only Linux targets are constrained.
func (p Parts) Libc() string {
	if p.Platform != PlatformLinux {
		return ""
	}
	switch p.ABI {
	case "gnu":
		return "glibc"
	case "musl":
		return "musl"
	default:
		return ""
	}
}

var parts = map[Target]Parts{
	AArch64AppleDarwin: {Platform: PlatformDarwin, Arch: ArchArm64},
	AArch64LinuxGnu:    {Platform: PlatformLinux, Arch: ArchArm64, ABI: "gnu"},
	X8664AppleDarwin:   {Platform: PlatformDarwin, Arch: ArchX64},
	X8664LinuxGnu:      {Platform: PlatformLinux, Arch: ArchX64, ABI: "gnu"},
	X8664LinuxMusl:     {Platform: PlatformLinux, Arch: ArchX64, ABI: "musl"},
	X8664WindowsMsvc:   {Platform: PlatformWin32, Arch: ArchX64, ABI: "msvc"},
}

var zigTriples = map[Target]string{
	AArch64AppleDarwin: "aarch64-macos-none",
	AArch64LinuxGnu:    "aarch64-linux-gnu",
	X8664AppleDarwin:   "x86_64-macos-none",
	X8664LinuxGnu:      "x86_64-linux-gnu",
	X8664LinuxMusl:     "x86_64-linux-musl",
	X8664WindowsMsvc:   "x86_64-windows-msvc",
}

// UnsupportedTargetError is returned for any value outside the registry.
type UnsupportedTargetError struct {
	Value string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("invalid target %q. Valid values: %s", e.Value, ValidList())
}

// All returns every supported target in canonical order.
func All() []Target {
	out := make([]Target, len(all))
	copy(out, all)
	return out
}

// ValidList returns the supported targets as a comma separated string.
func ValidList() string {
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// IsValid reports whether s names a supported target.
func IsValid(s string) bool {
	_, ok := parts[Target(s)]
	return ok
}

// Parse validates s against the registry.
func Parse(s string) (Target, error) {
	if !IsValid(s) {
		return "", &UnsupportedTargetError{Value: s}
	}
	return Target(s), nil
}

// Parts returns the npm os/cpu/abi triple for t.
func (t Target) Parts() (Parts, error) {
	p, ok := parts[t]
	if !ok {
		return Parts{}, &UnsupportedTargetError{Value: string(t)}
	}
	return p, nil
}

// ZigTriple returns the triple passed to `zig build -Dtarget=`.
func (t Target) ZigTriple() (string, error) {
	triple, ok := zigTriples[t]
	if !ok {
		return "", &UnsupportedTargetError{Value: string(t)}
	}
	return triple, nil
}

func (t Target) String() string {
	return string(t)
}

// Sort orders targets by their position in the registry, dropping duplicates
// and unknown values.
func Sort(targets []Target) []Target {
	seen := make(map[Target]bool, len(targets))
	for _, t := range targets {
		seen[t] = true
	}
	out := make([]Target, 0, len(targets))
	for _, t := range all {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}
