package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration for the fallback service. Flags
// take precedence over file values; both fall back to defaults.
type Config struct {
	Addr     string `yaml:"addr"`
	Driver   string `yaml:"driver"`
	ExecPath string `yaml:"execPath"`
	DebugDir string `yaml:"debugDir"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge overlays non-empty values from other onto c.
func (c *Config) Merge(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.Driver != "" {
		c.Driver = other.Driver
	}
	if other.ExecPath != "" {
		c.ExecPath = other.ExecPath
	}
	if other.DebugDir != "" {
		c.DebugDir = other.DebugDir
	}
}
