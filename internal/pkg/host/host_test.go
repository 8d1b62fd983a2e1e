package host_test

import (
	"errors"
	"os"
	"testing"

	"github.com/ozacod/zapi/internal/pkg/host"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	result host.Libc
	calls  *int
}

func (p fakeProbe) Name() string { return "fake" }

func (p fakeProbe) Probe() host.Libc {
	if p.calls != nil {
		*p.calls++
	}
	return p.result
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		os       string
		arch     string
		probes   []host.Probe
		expected target.Target
	}{
		{name: "darwin arm64", os: "darwin", arch: "arm64", expected: target.AArch64AppleDarwin},
		{name: "darwin x64", os: "darwin", arch: "x64", expected: target.X8664AppleDarwin},
		{name: "windows x64", os: "win32", arch: "x64", expected: target.X8664WindowsMsvc},
		{name: "linux x64 glibc", os: "linux", arch: "x64", probes: []host.Probe{fakeProbe{result: host.Glibc}}, expected: target.X8664LinuxGnu},
		{name: "linux x64 musl from first probe", os: "linux", arch: "x64", probes: []host.Probe{fakeProbe{result: host.Musl}}, expected: target.X8664LinuxMusl},
		{name: "linux x64 all unknown defaults to gnu", os: "linux", arch: "x64", probes: []host.Probe{fakeProbe{}, fakeProbe{}, fakeProbe{}}, expected: target.X8664LinuxGnu},
		{name: "linux arm64 glibc", os: "linux", arch: "arm64", probes: []host.Probe{fakeProbe{}, fakeProbe{result: host.Glibc}}, expected: target.AArch64LinuxGnu},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &host.Detector{OS: tt.os, Arch: tt.arch, Probes: tt.probes}
			got, err := d.Detect()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDetectUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		os     string
		arch   string
		probes []host.Probe
	}{
		{name: "linux arm64 musl", os: "linux", arch: "arm64", probes: []host.Probe{fakeProbe{result: host.Musl}}},
		{name: "windows arm64", os: "win32", arch: "arm64"},
		{name: "freebsd", os: "freebsd", arch: "x64"},
		{name: "linux ia32", os: "linux", arch: "ia32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &host.Detector{OS: tt.os, Arch: tt.arch, Probes: tt.probes}
			_, err := d.Detect()
			var unsupported *host.UnsupportedPlatformError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, tt.os, unsupported.OS)
			assert.Equal(t, tt.arch, unsupported.Arch)
		})
	}
}

func TestLibcShortCircuits(t *testing.T) {
	var first, second, third int
	d := &host.Detector{Probes: []host.Probe{
		fakeProbe{result: host.Unknown, calls: &first},
		fakeProbe{result: host.Musl, calls: &second},
		fakeProbe{result: host.Glibc, calls: &third},
	}}

	assert.Equal(t, host.Musl, d.Libc())
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 0, third)
}

func TestDarwinSkipsProbes(t *testing.T) {
	var calls int
	d := &host.Detector{OS: "darwin", Arch: "arm64", Probes: []host.Probe{fakeProbe{result: host.Musl, calls: &calls}}}
	_, err := d.Detect()
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func readFileReturning(data string, err error) func(string) ([]byte, error) {
	return func(string) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return []byte(data), nil
	}
}

func TestFilesystemProbe(t *testing.T) {
	musl := &host.FilesystemProbe{Path: "ldd", ReadFile: readFileReturning("#!/bin/sh\nexec /lib/ld-musl-x86_64.so.1 --list \"$@\"\n", nil)}
	assert.Equal(t, host.Musl, musl.Probe())

	glibc := &host.FilesystemProbe{Path: "ldd", ReadFile: readFileReturning("#! /bin/bash\n# GNU C Library\n", nil)}
	assert.Equal(t, host.Glibc, glibc.Probe())

	missing := &host.FilesystemProbe{Path: "ldd", ReadFile: readFileReturning("", os.ErrNotExist)}
	assert.Equal(t, host.Unknown, missing.Probe())
}

func TestReportProbe(t *testing.T) {
	glibcMaps := "7f0000000000-7f0000001000 r-xp 00000000 08:01 1234 /usr/lib/x86_64-linux-gnu/libc.so.6\n" +
		"7f0000002000-7f0000003000 r-xp 00000000 08:01 1235 /usr/lib/x86_64-linux-gnu/ld-linux-x86-64.so.2\n"
	muslMaps := "7f0000000000-7f0000001000 r-xp 00000000 08:01 1234 /lib/ld-musl-x86_64.so.1\n"
	staticMaps := "00400000-00500000 r-xp 00000000 08:01 99 /usr/local/bin/zapi\n" +
		"7ffd00000000-7ffd00021000 rw-p 00000000 00:00 0 [stack]\n"

	assert.Equal(t, host.Glibc, (&host.ReportProbe{ReadFile: readFileReturning(glibcMaps, nil)}).Probe())
	assert.Equal(t, host.Musl, (&host.ReportProbe{ReadFile: readFileReturning(muslMaps, nil)}).Probe())
	assert.Equal(t, host.Unknown, (&host.ReportProbe{ReadFile: readFileReturning(staticMaps, nil)}).Probe())
	assert.Equal(t, host.Unknown, (&host.ReportProbe{ReadFile: readFileReturning("", os.ErrPermission)}).Probe())
}

func TestCommandProbe(t *testing.T) {
	output := func(out string, err error) func() ([]byte, error) {
		return func() ([]byte, error) { return []byte(out), err }
	}

	assert.Equal(t, host.Musl, (&host.CommandProbe{Output: output("musl libc (x86_64)\nVersion 1.2.4\n", errors.New("exit status 1"))}).Probe())
	assert.Equal(t, host.Glibc, (&host.CommandProbe{Output: output("ldd (Ubuntu GLIBC 2.35-0ubuntu3) 2.35\n", nil)}).Probe())
	assert.Equal(t, host.Unknown, (&host.CommandProbe{Output: output("", errors.New("executable file not found"))}).Probe())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "win32", host.NormalizeOS("windows"))
	assert.Equal(t, "linux", host.NormalizeOS("linux"))
	assert.Equal(t, "x64", host.NormalizeArch("amd64"))
	assert.Equal(t, "arm64", host.NormalizeArch("arm64"))
}
