// Package host works out which target the running machine corresponds to.
//
// On Linux the answer depends on the C library, which the Go runtime does not
// expose. It is found with a chain of probes, each of which may answer
// Glibc, Musl or Unknown; the first definite answer wins and glibc is assumed
// when every probe is inconclusive.
package host

import (
	"fmt"
	"runtime"

	"github.com/ozacod/zapi/internal/pkg/target"
)

// Libc is the result of a probe.
type Libc int

const (
	Unknown Libc = iota
	Glibc
	Musl
)

func (l Libc) String() string {
	switch l {
	case Glibc:
		return "glibc"
	case Musl:
		return "musl"
	default:
		return "unknown"
	}
}

// Probe inspects the system for its C library.
type Probe interface {
	Name() string
	Probe() Libc
}

// UnsupportedPlatformError is returned when no target matches the host.
type UnsupportedPlatformError struct {
	OS   string
	Arch string
	Libc Libc
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %s or architecture: %s. Supported targets: %s", e.OS, e.Arch, target.ValidList())
}

// Detector maps an OS/architecture pair to a target. OS and Arch use npm
// spellings ("linux", "win32", "x64"); use Default to fill them from the Go
// runtime.
type Detector struct {
	OS     string
	Arch   string
	Probes []Probe
}

// Default returns a Detector for the running process.
func Default() *Detector {
	return &Detector{
		OS:     NormalizeOS(runtime.GOOS),
		Arch:   NormalizeArch(runtime.GOARCH),
		Probes: DefaultProbes(),
	}
}

// Detect returns the host's target.
//
// Linux arm64 with musl has no target and fails even though
// x86_64-unknown-linux-musl exists.
func (d *Detector) Detect() (target.Target, error) {
	switch d.OS {
	case target.PlatformDarwin:
		switch d.Arch {
		case target.ArchArm64:
			return target.AArch64AppleDarwin, nil
		case target.ArchX64:
			return target.X8664AppleDarwin, nil
		}
	case target.PlatformLinux:
		libc := d.Libc()
		switch {
		case d.Arch == target.ArchArm64 && libc == Glibc:
			return target.AArch64LinuxGnu, nil
		case d.Arch == target.ArchX64 && libc == Musl:
			return target.X8664LinuxMusl, nil
		case d.Arch == target.ArchX64:
			return target.X8664LinuxGnu, nil
		}
		return "", &UnsupportedPlatformError{OS: d.OS, Arch: d.Arch, Libc: libc}
	case target.PlatformWin32:
		if d.Arch == target.ArchX64 {
			return target.X8664WindowsMsvc, nil
		}
	}
	return "", &UnsupportedPlatformError{OS: d.OS, Arch: d.Arch}
}

// Libc runs the probe chain. It never returns Unknown.
func (d *Detector) Libc() Libc {
	for _, p := range d.Probes {
		if libc := p.Probe(); libc != Unknown {
			return libc
		}
	}
	return Glibc
}

// NormalizeOS converts a GOOS value to the npm platform name.
func NormalizeOS(goos string) string {
	if goos == "windows" {
		return target.PlatformWin32
	}
	return goos
}

// NormalizeArch converts a GOARCH value to the npm cpu name.
func NormalizeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return target.ArchX64
	case "386":
		return "ia32"
	default:
		return goarch
	}
}
