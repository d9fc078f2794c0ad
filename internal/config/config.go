// Package config holds project-wide constants and the optional
// tandem.yaml project file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// SourceExtension is the file extension of guest programs.
	SourceExtension = ".js"

	// ConfigFileName is looked up in the working directory.
	ConfigFileName = "tandem.yaml"

	// DefaultBackend runs when neither flag nor config selects one.
	DefaultBackend = "vm"
)

// Config is the optional project file.
type Config struct {
	// Backend selects the execution strategy: "vm" or "treewalk".
	Backend string `yaml:"backend"`

	// Color forces colored diagnostics on or off; unset follows the
	// terminal.
	Color *bool `yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{Backend: DefaultBackend}
}

// Load reads tandem.yaml from dir, falling back to defaults when the
// file is absent. A malformed file is an error; a missing one is not.
func Load(dir string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	return cfg, nil
}
