package host

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"strings"
)

// DefaultProbes returns the Linux probe chain in the order it should run:
// the ldd script on disk, the process's loaded shared objects, then the
// output of `ldd --version`.
func DefaultProbes() []Probe {
	return []Probe{
		&FilesystemProbe{Path: "/usr/bin/ldd", ReadFile: os.ReadFile},
		&ReportProbe{Path: "/proc/self/maps", ReadFile: os.ReadFile},
		&CommandProbe{Output: lddVersion},
	}
}

// FilesystemProbe looks for "musl" inside the ldd script.
type FilesystemProbe struct {
	Path     string
	ReadFile func(name string) ([]byte, error)
}

func (p *FilesystemProbe) Name() string { return "filesystem" }

func (p *FilesystemProbe) Probe() Libc {
	data, err := p.ReadFile(p.Path)
	if err != nil {
		return Unknown
	}
	if bytes.Contains(data, []byte("musl")) {
		return Musl
	}
	return Glibc
}

// ReportProbe inspects the shared objects mapped into the current process.
// A statically linked binary maps none, in which case it is inconclusive.
type ReportProbe struct {
	Path     string
	ReadFile func(name string) ([]byte, error)
}

func (p *ReportProbe) Name() string { return "report" }

func (p *ReportProbe) Probe() Libc {
	data, err := p.ReadFile(p.Path)
	if err != nil {
		return Unknown
	}

	var sawGlibc, sawMusl bool
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 6 {
			continue
		}
		obj := fields[len(fields)-1]
		switch {
		case isMuslObject(obj):
			sawMusl = true
		case isGlibcObject(obj):
			sawGlibc = true
		}
	}

	switch {
	case sawGlibc:
		return Glibc
	case sawMusl:
		return Musl
	default:
		return Unknown
	}
}

func isMuslObject(path string) bool {
	return strings.Contains(path, "libc.musl-") || strings.Contains(path, "ld-musl-")
}

func isGlibcObject(path string) bool {
	return strings.Contains(path, "libc.so.6") || strings.Contains(path, "ld-linux")
}

// CommandProbe text-matches the output of a diagnostic command.
type CommandProbe struct {
	Output func() ([]byte, error)
}

func (p *CommandProbe) Name() string { return "command" }

func (p *CommandProbe) Probe() Libc {
	out, err := p.Output()
	// musl's ldd prints its banner to stderr and exits 1, so the output is
	// checked before the error.
	if bytes.Contains(out, []byte("musl")) {
		return Musl
	}
	if err != nil && len(out) == 0 {
		return Unknown
	}
	return Glibc
}

func lddVersion() ([]byte, error) {
	return exec.Command("ldd", "--version").CombinedOutput()
}
