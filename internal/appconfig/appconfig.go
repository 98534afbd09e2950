// Package appconfig loads the CLI's ambient settings (log level, default
// model) the way the teacher's internal/config layers its own
// configuration: user file, then project file, then environment
// variables, each layer overriding only the fields it sets (spec §9
// design note: logging and model defaults are ambient, not part of the
// repository's own committed config blocks under internal/meta).
package appconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the layered set of CLI-wide defaults. Zero values mean
// "unset", so each layer only overwrites what it actually specifies.
type Config struct {
	LogLevel     string `yaml:"log_level"`
	DefaultModel string `yaml:"default_model"`
}

func (c Config) merge(override Config) Config {
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	if override.DefaultModel != "" {
		c.DefaultModel = override.DefaultModel
	}
	return c
}

// Load layers user config (~/.config/ragit/config.yaml), project config
// (<repoRoot>/.ragit.yaml), and environment variables
// (RAGIT_LOG_LEVEL, RAGIT_DEFAULT_MODEL), in that order of increasing
// precedence, following the teacher's documented
// "user config -> project config -> env vars" layering except ragit
// lets the per-repo file win over the user's global default, since a
// repository's own checked-in settings are more specific than a
// developer's machine-wide preference.
func Load(repoRoot string) (Config, error) {
	var cfg Config

	if userPath, err := userConfigPath(); err == nil {
		if layer, err := loadFile(userPath); err == nil {
			cfg = cfg.merge(layer)
		}
	}

	if repoRoot != "" {
		if layer, err := loadFile(filepath.Join(repoRoot, ".ragit.yaml")); err == nil {
			cfg = cfg.merge(layer)
		}
	}

	cfg = cfg.merge(Config{
		LogLevel:     os.Getenv("RAGIT_LOG_LEVEL"),
		DefaultModel: os.Getenv("RAGIT_DEFAULT_MODEL"),
	})
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func userConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragit", "config.yaml"), nil
}
