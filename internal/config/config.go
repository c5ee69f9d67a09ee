// Package config loads the reflow.yaml configuration used by the reflow
// CLI. Missing files are not an error; defaults apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file the CLI looks for.
const FileName = "reflow.yaml"

// Config is the reflow.yaml configuration.
type Config struct {
	// Name identifies the application in logs and metrics labels.
	Name string `yaml:"name,omitempty"`

	// Addr is the listen address for the live server.
	Addr string `yaml:"addr,omitempty"`

	// Metrics exposes Prometheus metrics on /metrics when true.
	Metrics bool `yaml:"metrics,omitempty"`

	// Debug enables dev-mode validation (hook order checking) and debug
	// logging.
	Debug bool `yaml:"debug,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Name: "reflow-app",
		Addr: ":8080",
	}
}

// Load reads FileName from dir, layering it over the defaults. A missing
// file returns the defaults unchanged.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	return nil
}
