package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/ozacod/zapi/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGlobalConfig(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		expectsError bool
		expected     *config.GlobalConfig
	}{
		{
			name:     "Valid config file",
			content:  "zig: /opt/zig/zig\nnpm: pnpm\noptimize: ReleaseFast\n",
			expected: &config.GlobalConfig{Zig: "/opt/zig/zig", Npm: "pnpm", Optimize: "ReleaseFast"},
		},
		{
			name:         "Invalid config file",
			content:      "invalid: yaml: content: [\n",
			expectsError: true,
		},
		{
			name:     "Missing config file",
			expected: &config.GlobalConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv(config.ConfigHomeEnv, dir)
			if tt.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0644))
			}

			cfg, err := config.LoadGlobal()

			if tt.expectsError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, cfg)
			}
		})
	}
}

func TestSaveGlobalConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *config.GlobalConfig
	}{
		{
			name:   "Valid config",
			config: &config.GlobalConfig{Zig: "/test/zig", Npm: "/test/npm", NpmDir: "packages"},
		},
		{
			name:   "Empty config",
			config: &config.GlobalConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.ConfigHomeEnv, filepath.Join(t.TempDir(), "nested", "zapi"))

			require.NoError(t, config.SaveGlobal(tt.config))

			loaded, err := config.LoadGlobal()
			require.NoError(t, err)
			assert.Equal(t, tt.config, loaded)
		})
	}
}

func TestLoadGlobalConfigErrorHasStack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.ConfigHomeEnv, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("zig: [\n"), 0644))

	_, err := config.LoadGlobal()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
	assert.Contains(t, fmt.Sprintf("%+v", err), "config.LoadGlobal")

	var cfg config.GlobalConfig
	err = cfg.Set("colour", "always")
	require.Error(t, err)
	assert.Equal(t, `unknown config key "colour"`, err.Error())
	assert.Contains(t, fmt.Sprintf("%+v", err), "config.(*GlobalConfig).Set")
}

func TestGlobalConfigDefaultsAndKeys(t *testing.T) {
	cfg := config.GlobalConfig{Npm: "pnpm"}
	d := cfg.WithDefaults()
	assert.Equal(t, "zig", d.Zig)
	assert.Equal(t, "pnpm", d.Npm)
	assert.Equal(t, "artifacts", d.ArtifactsDir)
	assert.Equal(t, "npm", d.NpmDir)
	assert.Empty(t, cfg.Zig, "WithDefaults must not mutate the receiver")

	require.NoError(t, cfg.Set("zig", "/usr/local/bin/zig"))
	v, err := cfg.Get("zig")
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/zig", v)

	assert.Error(t, cfg.Set("optimize", "Fast"))
	assert.Error(t, cfg.Set("colour", "always"))
	_, err = cfg.Get("colour")
	assert.Error(t, err)

	assert.Equal(t, []string{"artifacts_dir", "npm", "npm_dir", "optimize", "zig"}, cfg.Keys())
}

func TestParseBuild(t *testing.T) {
	tests := []struct {
		name          string
		json          string
		expectedField string
		expected      *config.Build
	}{
		{
			name: "Valid declaration preserves target order",
			json: `{"zapi":{"binaryName":"addon","targets":["x86_64-pc-windows-msvc","x86_64-apple-darwin"],"step":"lib"}}`,
			expected: &config.Build{
				BinaryName: "addon",
				Targets:    []target.Target{target.X8664WindowsMsvc, target.X8664AppleDarwin},
				Step:       "lib",
			},
		},
		{
			name:     "Single target without step",
			json:     `{"zapi":{"binaryName":"addon","targets":["x86_64-apple-darwin"]}}`,
			expected: &config.Build{BinaryName: "addon", Targets: []target.Target{target.X8664AppleDarwin}},
		},
		{
			name:     "Null step and optimize",
			json:     `{"zapi":{"binaryName":"addon","targets":["x86_64-apple-darwin"],"step":null,"optimize":"ReleaseSmall"}}`,
			expected: &config.Build{BinaryName: "addon", Targets: []target.Target{target.X8664AppleDarwin}, Optimize: target.ReleaseSmall},
		},
		{name: "Missing zapi", json: `{"name":"addon"}`, expectedField: "zapi"},
		{name: "zapi not an object", json: `{"zapi":"addon"}`, expectedField: "zapi"},
		{name: "Missing binaryName", json: `{"zapi":{"targets":["x86_64-apple-darwin"]}}`, expectedField: "zapi.binaryName"},
		{name: "Numeric binaryName", json: `{"zapi":{"binaryName":3,"targets":["x86_64-apple-darwin"]}}`, expectedField: "zapi.binaryName"},
		{name: "Empty binaryName", json: `{"zapi":{"binaryName":"","targets":["x86_64-apple-darwin"]}}`, expectedField: "zapi.binaryName"},
		{name: "Empty targets", json: `{"zapi":{"binaryName":"addon","targets":[]}}`, expectedField: "zapi.targets"},
		{name: "Targets not an array", json: `{"zapi":{"binaryName":"addon","targets":"x86_64-apple-darwin"}}`, expectedField: "zapi.targets"},
		{name: "Non-string target", json: `{"zapi":{"binaryName":"addon","targets":[1]}}`, expectedField: "zapi.targets"},
		{name: "Numeric step", json: `{"zapi":{"binaryName":"addon","targets":["x86_64-apple-darwin"],"step":1}}`, expectedField: "zapi.step"},
		{name: "Invalid optimize", json: `{"zapi":{"binaryName":"addon","targets":["x86_64-apple-darwin"],"optimize":"O3"}}`, expectedField: "zapi.optimize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := config.ParseBuild([]byte(tt.json))

			if tt.expectedField != "" {
				var cfgErr *config.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tt.expectedField, cfgErr.Field)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, b)
		})
	}
}

func TestParseBuildNamesUnsupportedTarget(t *testing.T) {
	_, err := config.ParseBuild([]byte(`{"zapi":{"binaryName":"addon","targets":["x86_64-apple-darwin","riscv64-unknown-linux-gnu"]}}`))

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "riscv64-unknown-linux-gnu")
	assert.Contains(t, err.Error(), target.ValidList())

	var unsupported *target.UnsupportedTargetError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "riscv64-unknown-linux-gnu", unsupported.Value)
}

func TestParseBuildInvalidOptimizeListsModes(t *testing.T) {
	_, err := config.ParseBuild([]byte(`{"zapi":{"binaryName":"addon","targets":["x86_64-apple-darwin"],"optimize":"O3"}}`))

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "zapi.optimize", cfgErr.Field)
	assert.Contains(t, err.Error(), "O3")
	assert.Contains(t, err.Error(), "ReleaseFast")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	pkg := `{
  "name": "my-addon",
  "version": "1.2.3",
  "license": "MIT",
  "repository": {"type": "git", "url": "https://example.com/my-addon.git"},
  "zapi": {"binaryName": "addon", "targets": ["aarch64-apple-darwin"]}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(pkg), 0644))

	m, b, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "my-addon", m.Name())
	assert.Equal(t, "1.2.3", m.Version())
	assert.JSONEq(t, `"MIT"`, string(m.License()))
	assert.JSONEq(t, `{"type":"git","url":"https://example.com/my-addon.git"}`, string(m.Repository()))
	assert.Equal(t, []target.Target{target.AArch64AppleDarwin}, b.Targets)
	assert.NoError(t, m.RequireIdentity())
}

func TestLoadErrors(t *testing.T) {
	_, _, err := config.Load(t.TempDir())
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": `), 0644))
	_, _, err = config.Load(dir)
	var cfgErr *config.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRequireIdentity(t *testing.T) {
	m, err := config.ParseManifest("package.json", []byte(`{"name":"addon"}`))
	require.NoError(t, err)

	var cfgErr *config.ConfigError
	require.ErrorAs(t, m.RequireIdentity(), &cfgErr)
	assert.Equal(t, "version", cfgErr.Field)
}

func TestSetOptionalDependenciesReplaces(t *testing.T) {
	m, err := config.ParseManifest("package.json", []byte(`{"name":"a","version":"1.0.0","optionalDependencies":{"left-pad":"1.0.0"},"scripts":{"test":"node test.js"}}`))
	require.NoError(t, err)

	require.NoError(t, m.SetOptionalDependencies([]config.Dependency{
		{Name: "a-x86_64-pc-windows-msvc", Version: "1.0.0"},
		{Name: "a-aarch64-apple-darwin", Version: "1.0.0"},
	}))
	assert.Equal(t, []config.Dependency{
		{Name: "a-x86_64-pc-windows-msvc", Version: "1.0.0"},
		{Name: "a-aarch64-apple-darwin", Version: "1.0.0"},
	}, m.OptionalDependencies())
	assert.JSONEq(t, `{"test":"node test.js"}`, string(m.Get("scripts")))
}

func TestSetBuildAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"a","version":"0.1.0"}`), 0644))

	m, err := config.LoadManifest(dir)
	require.NoError(t, err)
	require.NoError(t, m.SetBuild(config.Build{
		BinaryName: "addon",
		Targets:    []target.Target{target.X8664LinuxGnu, target.AArch64AppleDarwin},
		Step:       "napi",
	}))
	require.NoError(t, m.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"name\"")

	b, err := config.ParseBuild(data)
	require.NoError(t, err)
	assert.Equal(t, "addon", b.BinaryName)
	assert.Equal(t, "napi", b.Step)
	assert.Equal(t, []target.Target{target.X8664LinuxGnu, target.AArch64AppleDarwin}, b.Targets)
}

func TestSetBuildDropsClearedFields(t *testing.T) {
	m, err := config.ParseManifest("package.json", []byte(`{"name":"a","version":"0.1.0","zapi":{"binaryName":"old","targets":["x86_64-apple-darwin"],"step":"lib","optimize":"ReleaseFast"}}`))
	require.NoError(t, err)

	require.NoError(t, m.SetBuild(config.Build{
		BinaryName: "addon",
		Targets:    []target.Target{target.X8664LinuxGnu},
	}))

	assert.JSONEq(t, `{"binaryName":"addon","targets":["x86_64-unknown-linux-gnu"]}`, string(m.Get("zapi")))
	b, err := config.ParseBuild(m.Bytes())
	require.NoError(t, err)
	assert.Empty(t, b.Step)
	assert.Empty(t, b.Optimize)

	require.NoError(t, m.SetBuild(config.Build{
		BinaryName: "addon",
		Targets:    []target.Target{target.X8664LinuxGnu},
		Optimize:   target.ReleaseSmall,
	}))
	assert.JSONEq(t, `{"binaryName":"addon","targets":["x86_64-unknown-linux-gnu"],"optimize":"ReleaseSmall"}`, string(m.Get("zapi")))
}

func TestSetOptionalDependenciesEscapesNames(t *testing.T) {
	m, err := config.ParseManifest("package.json", []byte(`{"name":"a","version":"1.0.0"}`))
	require.NoError(t, err)

	require.NoError(t, m.SetOptionalDependencies([]config.Dependency{
		{Name: "@acme/fast.hash-x86_64-unknown-linux-gnu", Version: "^1.0.0 \"beta\""},
	}))
	assert.JSONEq(t, `{"@acme/fast.hash-x86_64-unknown-linux-gnu":"^1.0.0 \"beta\""}`, string(m.Get("optionalDependencies")))
}

func TestResolveStep(t *testing.T) {
	step, err := config.ResolveStep("flag", &config.Build{Step: "manifest"})
	require.NoError(t, err)
	assert.Equal(t, "flag", step)

	step, err = config.ResolveStep("", &config.Build{Step: "manifest"})
	require.NoError(t, err)
	assert.Equal(t, "manifest", step)

	_, err = config.ResolveStep("", &config.Build{})
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "--step is required (or set zapi.step in package.json)", err.Error())
}

func TestResolveOptimize(t *testing.T) {
	global := &config.GlobalConfig{Optimize: "ReleaseSafe"}

	opt, err := config.ResolveOptimize("Debug", &config.Build{Optimize: target.ReleaseFast}, global)
	require.NoError(t, err)
	assert.Equal(t, target.Debug, opt)

	opt, err = config.ResolveOptimize("", &config.Build{Optimize: target.ReleaseFast}, global)
	require.NoError(t, err)
	assert.Equal(t, target.ReleaseFast, opt)

	opt, err = config.ResolveOptimize("", &config.Build{}, global)
	require.NoError(t, err)
	assert.Equal(t, target.ReleaseSafe, opt)

	opt, err = config.ResolveOptimize("", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, opt)

	_, err = config.ResolveOptimize("fast", nil, nil)
	assert.Error(t, err)
}
