package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config holds researchd configuration
type Config struct {
	// Listen is the HTTP listen address
	Listen string `yaml:"listen"`

	// Model is the model used for research jobs
	Model string `yaml:"model"`

	// MaxQueries caps the number of queries per request
	MaxQueries int `yaml:"max_queries"`

	// LogLevel is a zerolog level name (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Listen:     ":8080",
		Model:      "gpt-4o-mini",
		MaxQueries: 8,
		LogLevel:   "info",
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.MaxQueries < 1 {
		return cfg, fmt.Errorf("max_queries must be at least 1, got %d", cfg.MaxQueries)
	}
	return cfg, nil
}
