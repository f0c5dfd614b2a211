// Package config reads CLI defaults from the environment. Command-line
// flags override every value here.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment defaults.
type Config struct {
	// Format is the output format, "text" or "json".
	Format string `env:"YARTSUL_FORMAT" envDefault:"text"`

	// Verbose enables debug logging.
	Verbose bool `env:"YARTSUL_VERBOSE" envDefault:"false"`

	// DBPath is the journal database. ":memory:" keeps runs in memory only.
	DBPath string `env:"YARTSUL_DB" envDefault:":memory:"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Format != "text" && cfg.Format != "json" {
		return Config{}, fmt.Errorf("YARTSUL_FORMAT: invalid format %q (must be text or json)", cfg.Format)
	}
	return cfg, nil
}
