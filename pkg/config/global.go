package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/adrg/xdg"
	"github.com/ozacod/zapi/internal/pkg/target"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultZig          = "zig"
	DefaultNpm          = "npm"
	DefaultArtifactsDir = "artifacts"
	DefaultNpmDir       = "npm"

	// ConfigHomeEnv overrides the directory holding config.yaml.
	ConfigHomeEnv = "ZAPI_CONFIG_HOME"
)

// GlobalConfig holds user-level defaults shared by every project.
type GlobalConfig struct {
	Zig          string `yaml:"zig,omitempty"`
	Npm          string `yaml:"npm,omitempty"`
	ArtifactsDir string `yaml:"artifacts_dir,omitempty"`
	NpmDir       string `yaml:"npm_dir,omitempty"`
	Optimize     string `yaml:"optimize,omitempty"`
}

// GetConfigDir returns the zapi configuration directory.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigHomeEnv); dir != "" {
		return dir, nil
	}
	if xdg.ConfigHome == "" {
		return "", errors.New("could not determine config directory")
	}
	return filepath.Join(xdg.ConfigHome, "zapi"), nil
}

// GetConfigPath returns the path to config.yaml.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadGlobal loads config.yaml. A missing file yields an empty config.
func LoadGlobal() (*GlobalConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, errors.Wrap(err, "failed to read config")
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return &cfg, nil
}

// SaveGlobal writes config.yaml, creating the directory when needed.
func SaveGlobal(cfg *GlobalConfig) error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	return nil
}

// WithDefaults returns a copy with every empty tool or directory filled in.
func (c GlobalConfig) WithDefaults() GlobalConfig {
	if c.Zig == "" {
		c.Zig = DefaultZig
	}
	if c.Npm == "" {
		c.Npm = DefaultNpm
	}
	if c.ArtifactsDir == "" {
		c.ArtifactsDir = DefaultArtifactsDir
	}
	if c.NpmDir == "" {
		c.NpmDir = DefaultNpmDir
	}
	return c
}

func (c *GlobalConfig) fields() map[string]*string {
	return map[string]*string{
		"zig":           &c.Zig,
		"npm":           &c.Npm,
		"artifacts_dir": &c.ArtifactsDir,
		"npm_dir":       &c.NpmDir,
		"optimize":      &c.Optimize,
	}
}

// Keys lists the settable keys.
func (c *GlobalConfig) Keys() []string {
	var keys []string
	for k := range c.fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key.
func (c *GlobalConfig) Get(key string) (string, error) {
	f, ok := c.fields()[key]
	if !ok {
		return "", errors.Errorf("unknown config key %q", key)
	}
	return *f, nil
}

// Set updates key. The optimize value is validated.
func (c *GlobalConfig) Set(key, value string) error {
	f, ok := c.fields()[key]
	if !ok {
		return errors.Errorf("unknown config key %q", key)
	}
	if key == "optimize" {
		if _, err := target.ParseOptimize(value); err != nil {
			return err
		}
	}
	*f = value
	return nil
}
