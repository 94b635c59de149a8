package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config represents the dqview configuration
type Config struct {
	Environment      string `yaml:"environment"`
	CatalogPath      string `yaml:"catalog_path,omitempty"` // empty: ~/.dqview/catalog.db
	PruneEmptyGroups bool   `yaml:"prune_empty_groups"`
	Color            bool   `yaml:"color"`
	LogLevel         string `yaml:"log_level,omitempty"` // debug, info, warn, error
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Color:       true,
		LogLevel:    "warn",
	}
}

// Path returns the config file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, ".dqview", "config.yaml")
}

// LoadConfig reads .dqview/config.yaml from the specified directory.
// A missing file yields Default(); fields absent from the file keep their
// defaults.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Environment != EnvDevelopment && cfg.Environment != EnvProduction {
		return nil, fmt.Errorf("invalid environment %q: want %s or %s", cfg.Environment, EnvDevelopment, EnvProduction)
	}

	return cfg, nil
}

// SaveConfig writes config.yaml to directory
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Dir(Path(dir))
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create .dqview dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ResolveCatalogPath returns the configured catalog path, defaulting to
// ~/.dqview/catalog.db. Relative paths are resolved against dir.
func (c *Config) ResolveCatalogPath(dir string) (string, error) {
	if c.CatalogPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".dqview", "catalog.db"), nil
	}
	if c.CatalogPath == ":memory:" || filepath.IsAbs(c.CatalogPath) {
		return c.CatalogPath, nil
	}
	return filepath.Join(dir, c.CatalogPath), nil
}
