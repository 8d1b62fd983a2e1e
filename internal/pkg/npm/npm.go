// Package npm synthesizes the per-target npm packages and the root package's
// optionalDependencies.
//
// Target packages are versioned in lockstep with the root package: their
// version is always the root version, and every run rewrites them from
// scratch.
package npm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ozacod/zapi/internal/pkg/artifact"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/ozacod/zapi/pkg/config"
	"github.com/pkg/errors"
)

// PackageJSON is the manifest written into each target package directory.
type PackageJSON struct {
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	License    json.RawMessage `json:"license,omitempty"`
	Repository json.RawMessage `json:"repository,omitempty"`
	Main       string          `json:"main"`
	Files      []string        `json:"files"`
	OS         []string        `json:"os"`
	CPU        []string        `json:"cpu"`
	Libc       []string        `json:"libc,omitempty"`
}

// TargetPackageName returns the npm name of a target package.
func TargetPackageName(rootName string, t target.Target) string {
	return rootName + "-" + string(t)
}

// TargetPackage builds the manifest for one target.
func TargetPackage(t target.Target, root *config.Manifest, b *config.Build) (*PackageJSON, error) {
	parts, err := t.Parts()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	file := artifact.FileName(b.BinaryName)
	pkg := &PackageJSON{
		Name:       TargetPackageName(root.Name(), t),
		Version:    root.Version(),
		License:    root.License(),
		Repository: root.Repository(),
		Main:       file,
		Files:      []string{file},
		OS:         []string{parts.Platform},
		CPU:        []string{parts.Arch},
	}
	if libc := parts.Libc(); libc != "" {
		pkg.Libc = []string{libc}
	}
	return pkg, nil
}

// Readme returns the README.md content for a target package.
func Readme(pkgName, rootName string, t target.Target) string {
	return fmt.Sprintf("# `%s`\n\nThis is the %s target package for %s.\n", pkgName, t, rootName)
}

// WriteTargetPackage writes package.json and README.md into npmDir/<target>/,
// replacing whatever is there. It returns the package.json path.
func WriteTargetPackage(t target.Target, root *config.Manifest, b *config.Build, npmDir string) (string, error) {
	pkg, err := TargetPackage(t, root, b)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(npmDir, string(t))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}

	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode package.json")
	}

	pkgPath := filepath.Join(dir, config.ManifestFileName)
	if err := os.WriteFile(pkgPath, append(data, '\n'), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", pkgPath)
	}

	readmePath := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readmePath, []byte(Readme(pkg.Name, root.Name(), t)), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", readmePath)
	}
	return pkgPath, nil
}

// OptionalDependencies returns one entry per configured target, in target
// order, each pinned to the root version.
func OptionalDependencies(root *config.Manifest, b *config.Build) []config.Dependency {
	deps := make([]config.Dependency, 0, len(b.Targets))
	for _, t := range b.Targets {
		deps = append(deps, config.Dependency{Name: TargetPackageName(root.Name(), t), Version: root.Version()})
	}
	return deps
}

// RewriteOptionalDependencies replaces the root manifest's
// optionalDependencies with the configured targets. Existing entries are
// discarded, not merged. The manifest is modified in memory only.
func RewriteOptionalDependencies(root *config.Manifest, b *config.Build) (*config.Manifest, error) {
	if err := root.SetOptionalDependencies(OptionalDependencies(root, b)); err != nil {
		return nil, err
	}
	return root, nil
}
