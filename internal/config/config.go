package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file written at the root of a tally data directory.
const FileName = "tally.yaml"

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Profile  ProfileConfig  `yaml:"profile"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ProfileConfig names the profile this data directory belongs to.
type ProfileConfig struct {
	Name string `yaml:"name"`
}

// DatabaseConfig locates the SQLite ledger database.
type DatabaseConfig struct {
	File string `yaml:"file"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(profileName string) *Config {
	return &Config{
		Profile:  ProfileConfig{Name: profileName},
		Database: DatabaseConfig{File: "tally.db"},
		Log:      LogConfig{Level: "info"},
	}
}
