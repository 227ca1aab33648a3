// Package config loads env-bootstrap settings from .env-bootstrap.yaml with
// ENV_BOOTSTRAP_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up in the working directory.
const FileName = ".env-bootstrap.yaml"

const envPrefix = "ENV_BOOTSTRAP_"

// Config holds runtime settings.
type Config struct {
	RegistryFile string `yaml:"registry_file"`
	Output       string `yaml:"output"`
	Format       string `yaml:"format"`
	LogFile      string `yaml:"log_file"`
	LogLevel     string `yaml:"log_level"`
	DefaultCI    string `yaml:"default_ci"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Format:    "yaml",
		LogLevel:  "info",
		DefaultCI: "gitlab-ci",
	}
}

// Load reads path (or FileName under dir when path is empty) and applies
// environment overrides. A missing file is not an error.
func Load(dir, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = filepath.Join(dir, FileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if value, ok := lookup(envPrefix + key); ok {
			*dst = value
		}
	}
	set("REGISTRY_FILE", &c.RegistryFile)
	set("OUTPUT", &c.Output)
	set("FORMAT", &c.Format)
	set("LOG_FILE", &c.LogFile)
	set("LOG_LEVEL", &c.LogLevel)
	set("DEFAULT_CI", &c.DefaultCI)
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
