// Package config loads the docdrive YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ToolConfig is per-provider configuration.
type ToolConfig struct {
	// Binary overrides the tool's executable name. Supports ${VAR}
	// environment expansion.
	Binary string `yaml:"binary"`

	// Model is passed through to the tool's model flag.
	Model string `yaml:"model"`
}

// Config is the top-level configuration structure.
type Config struct {
	// DefaultProvider is the provider id used when the caller names none.
	DefaultProvider string `yaml:"default_provider"`

	// TimeoutSeconds is the wall-clock limit per analysis run.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Tools holds per-provider overrides, keyed by provider id.
	Tools map[string]ToolConfig `yaml:"tools"`
}

// applyDefaults fills zero-valued fields.
func (c *Config) applyDefaults() {
	if c.DefaultProvider == "" {
		c.DefaultProvider = "claude"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 300
	}
}

// Timeout returns the configured run timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Tool returns the overrides for a provider id, zero-valued when absent.
func (c *Config) Tool(id string) ToolConfig {
	return c.Tools[id]
}

// Load reads the configuration at path, expanding ${VAR} environment
// references in binary overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	for id, tc := range cfg.Tools {
		tc.Binary = expandEnvString(tc.Binary)
		cfg.Tools[id] = tc
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// expandEnvString replaces ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
