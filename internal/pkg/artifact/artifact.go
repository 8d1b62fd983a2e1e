// Package artifact moves compiled addons between the zig output directory,
// the per-target staging directory and the per-target npm package directory.
//
//	<zig-cwd>/zig-out/lib/<binary>.node
//	  -> <artifacts-dir>/<target>/<binary>.node   (Stage)
//	  -> <npm-dir>/<target>/<binary>.node         (Package)
package artifact

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/pkg/errors"
)

const (
	// Extension is the file extension Node expects for native addons.
	Extension = ".node"

	// ZigOutputDir is where zig installs library artifacts, relative to the
	// zig working directory.
	ZigOutputDir = "zig-out/lib"
)

// MissingError reports that the file to move does not exist.
type MissingError struct {
	Path string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("artifact not found: %s", e.Path)
}

// FileName returns "<binaryName>.node".
func FileName(binaryName string) string {
	return binaryName + Extension
}

// BuildOutput returns the path zig writes the addon to.
func BuildOutput(zigDir, binaryName string) string {
	return filepath.Join(zigDir, filepath.FromSlash(ZigOutputDir), FileName(binaryName))
}

// StagedPath returns the staging location for a target.
func StagedPath(artifactsDir string, t target.Target, binaryName string) string {
	return filepath.Join(artifactsDir, string(t), FileName(binaryName))
}

// PackagedPath returns the location inside a target's npm package.
func PackagedPath(npmDir string, t target.Target, binaryName string) string {
	return filepath.Join(npmDir, string(t), FileName(binaryName))
}

// Stage moves a fresh build output into artifactsDir/<target>/. It returns
// the destination path. A missing build output is a *MissingError.
func Stage(t target.Target, binaryName, zigDir, artifactsDir string) (string, error) {
	src := BuildOutput(zigDir, binaryName)
	dst := StagedPath(artifactsDir, t, binaryName)
	if err := move(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Package moves a staged artifact into npmDir/<target>/. A missing staged
// artifact is a *MissingError; callers may treat it as a warning.
func Package(t target.Target, binaryName, artifactsDir, npmDir string) (string, error) {
	src := StagedPath(artifactsDir, t, binaryName)
	dst := PackagedPath(npmDir, t, binaryName)
	if err := move(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func move(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.WithStack(&MissingError{Path: src})
		}
		return errors.Wrapf(err, "failed to stat %s", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(dst))
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Rename fails across filesystems, e.g. a tmpfs artifacts dir.
	if err := copyFile(src, dst); err != nil {
		return errors.Wrapf(err, "failed to move %s to %s", src, dst)
	}
	return errors.Wrapf(os.Remove(src), "failed to remove %s", src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
