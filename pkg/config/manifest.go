// Package config loads zapi's configuration.
//
// Two sources exist. The project declaration lives in the "zapi" field of the
// project's package.json and says what to build; it is validated strictly and
// never partially accepted. The user-level global config (config.yaml) only
// supplies defaults such as which zig and npm binaries to run.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ManifestFileName is the project manifest zapi reads and rewrites.
const ManifestFileName = "package.json"

// ConfigError reports the first invalid field of a declaration.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Field + " " + e.Reason + ": " + e.Err.Error()
	}
	return e.Field + " " + e.Reason
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Build is the validated "zapi" declaration. It is not modified after Load.
type Build struct {
	BinaryName string
	Targets    []target.Target // build and publish order
	Step       string
	Optimize   target.Optimize
}

// Manifest is a package.json document. Edits go through sjson so untouched
// keys keep their order and formatting survives a round trip.
type Manifest struct {
	Path string
	data []byte
}

// LoadManifest reads dir/package.json.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return ParseManifest(path, data)
}

// ParseManifest wraps already loaded package.json content.
func ParseManifest(path string, data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.WithStack(&ConfigError{Field: path, Reason: "is not valid JSON"})
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, errors.WithStack(&ConfigError{Field: path, Reason: "must contain a JSON object"})
	}
	return &Manifest{Path: path, data: data}, nil
}

// Load reads dir/package.json and validates its zapi declaration.
func Load(dir string) (*Manifest, *Build, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	b, err := ParseBuild(m.data)
	if err != nil {
		return nil, nil, err
	}
	return m, b, nil
}

// ParseBuild validates the zapi declaration in a package.json document.
func ParseBuild(data []byte) (*Build, error) {
	decl := gjson.GetBytes(data, "zapi")
	if !decl.IsObject() {
		return nil, configErr("zapi", "field is missing in package.json", nil)
	}

	binaryName := decl.Get("binaryName")
	if binaryName.Type != gjson.String {
		return nil, configErr("zapi.binaryName", "must be a string", nil)
	}
	if binaryName.Str == "" {
		return nil, configErr("zapi.binaryName", "must be a non-empty string", nil)
	}

	rawTargets := decl.Get("targets")
	if !rawTargets.IsArray() || len(rawTargets.Array()) == 0 {
		return nil, configErr("zapi.targets", "must be a non-empty array", nil)
	}
	var targets []target.Target
	for _, v := range rawTargets.Array() {
		if v.Type != gjson.String {
			return nil, configErr("zapi.targets", "must contain only strings", nil)
		}
		t, err := target.Parse(v.Str)
		if err != nil {
			return nil, configErr("zapi.targets", "contains an unsupported target", err)
		}
		targets = append(targets, t)
	}

	step, err := optionalString(decl, "step")
	if err != nil {
		return nil, err
	}

	rawOptimize, err := optionalString(decl, "optimize")
	if err != nil {
		return nil, err
	}
	optimize, err := target.ParseOptimize(rawOptimize)
	if err != nil {
		return nil, configErr("zapi.optimize", "is invalid", err)
	}

	return &Build{
		BinaryName: binaryName.Str,
		Targets:    targets,
		Step:       step,
		Optimize:   optimize,
	}, nil
}

func optionalString(decl gjson.Result, key string) (string, error) {
	v := decl.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return "", nil
	}
	if v.Type != gjson.String {
		return "", configErr("zapi."+key, "must be a string", nil)
	}
	return v.Str, nil
}

func configErr(field, reason string, cause error) error {
	return errors.WithStack(&ConfigError{Field: field, Reason: reason, Err: cause})
}

// ResolveStep picks the zig build step: the flag wins, then the declaration.
func ResolveStep(flag string, b *Build) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if b != nil && b.Step != "" {
		return b.Step, nil
	}
	return "", errors.WithStack(&ConfigError{Field: "--step", Reason: "is required (or set zapi.step in package.json)"})
}

// ResolveOptimize picks the optimization mode: flag, declaration, then the
// global default. Any of them may be empty.
func ResolveOptimize(flag string, b *Build, global *GlobalConfig) (target.Optimize, error) {
	if flag != "" {
		return target.ParseOptimize(flag)
	}
	if b != nil && b.Optimize != "" {
		return b.Optimize, nil
	}
	if global != nil && global.Optimize != "" {
		opt, err := target.ParseOptimize(global.Optimize)
		if err != nil {
			return "", errors.Wrap(err, "global config optimize")
		}
		return opt, nil
	}
	return "", nil
}

// Name returns the package name, or "" when absent.
func (m *Manifest) Name() string {
	return gjson.GetBytes(m.data, "name").String()
}

// Version returns the package version, or "" when absent.
func (m *Manifest) Version() string {
	return gjson.GetBytes(m.data, "version").String()
}

// License returns the raw JSON of the license field, nil when absent.
func (m *Manifest) License() json.RawMessage {
	return m.raw("license")
}

// Repository returns the raw JSON of the repository field, which may be a
// string or an object. Nil when absent.
func (m *Manifest) Repository() json.RawMessage {
	return m.raw("repository")
}

func (m *Manifest) raw(key string) json.RawMessage {
	v := gjson.GetBytes(m.data, key)
	if !v.Exists() {
		return nil
	}
	return json.RawMessage(v.Raw)
}

// Get returns the raw JSON at a gjson path, nil when absent.
func (m *Manifest) Get(path string) json.RawMessage {
	return m.raw(path)
}

// RequireIdentity checks that the name and version needed to derive target
// packages are present.
func (m *Manifest) RequireIdentity() error {
	for _, key := range []string{"name", "version"} {
		v := gjson.GetBytes(m.data, key)
		if v.Type != gjson.String || v.Str == "" {
			return configErr(key, "must be a non-empty string in "+m.Path, nil)
		}
	}
	return nil
}

// Dependency is one optionalDependencies entry.
type Dependency struct {
	Name    string
	Version string
}

// SetOptionalDependencies replaces the whole optionalDependencies object,
// preserving the order of deps.
func (m *Manifest) SetOptionalDependencies(deps []Dependency) error {
	raw := []byte("{")
	for i, d := range deps {
		if i > 0 {
			raw = append(raw, ',')
		}
		k, err := json.Marshal(d.Name)
		if err != nil {
			return errors.Wrapf(err, "failed to encode optional dependency name %q", d.Name)
		}
		v, err := json.Marshal(d.Version)
		if err != nil {
			return errors.Wrapf(err, "failed to encode version of optional dependency %s", d.Name)
		}
		raw = append(raw, k...)
		raw = append(raw, ':')
		raw = append(raw, v...)
	}
	raw = append(raw, '}')

	data, err := sjson.SetRawBytes(m.data, "optionalDependencies", raw)
	if err != nil {
		return errors.Wrap(err, "failed to set optionalDependencies")
	}
	m.data = data
	return nil
}

// OptionalDependencies returns the current optionalDependencies in document
// order.
func (m *Manifest) OptionalDependencies() []Dependency {
	var deps []Dependency
	gjson.GetBytes(m.data, "optionalDependencies").ForEach(func(k, v gjson.Result) bool {
		deps = append(deps, Dependency{Name: k.String(), Version: v.String()})
		return true
	})
	return deps
}

// SetBuild writes b back as the zapi declaration, creating it when absent.
func (m *Manifest) SetBuild(b Build) error {
	names := make([]string, len(b.Targets))
	for i, t := range b.Targets {
		names[i] = string(t)
	}

	data, err := sjson.SetBytes(m.data, "zapi.binaryName", b.BinaryName)
	if err == nil {
		data, err = sjson.SetBytes(data, "zapi.targets", names)
	}
	if err == nil {
		data, err = setOrDelete(data, "zapi.step", b.Step)
	}
	if err == nil {
		data, err = setOrDelete(data, "zapi.optimize", string(b.Optimize))
	}
	if err != nil {
		return errors.Wrap(err, "failed to update zapi declaration")
	}
	m.data = data
	return nil
}

// setOrDelete writes value at path, or removes path when value is empty.
func setOrDelete(data []byte, path, value string) ([]byte, error) {
	if value == "" {
		return sjson.DeleteBytes(data, path)
	}
	return sjson.SetBytes(data, path, value)
}

// Bytes returns the document formatted with two-space indentation.
func (m *Manifest) Bytes() []byte {
	return pretty.PrettyOptions(m.data, &pretty.Options{Width: 80, Indent: "  "})
}

// Save writes the manifest back to Path.
func (m *Manifest) Save() error {
	if err := os.WriteFile(m.Path, m.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", m.Path)
	}
	return nil
}
