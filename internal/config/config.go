// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"github.com/usestring/schemafill/internal/logging"
)

// Config holds all configuration for the CLI and the MCP server.
// Command-line flags override these values.
type Config struct {
	AddSample       bool `env:"SCHEMAFILL_ADD_SAMPLE, default=false"`
	AddItem         bool `env:"SCHEMAFILL_ADD_ITEM, default=false"`
	Workers         int  `env:"SCHEMAFILL_WORKERS, default=4"`
	SchemaCacheSize int  `env:"SCHEMAFILL_SCHEMA_CACHE_SIZE, default=64"`

	// Logging configuration
	LogLevel      string `env:"LOG_LEVEL, default=info"`
	LogFile       string `env:"LOG_FILE"` // empty means stderr only
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB, default=10"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS, default=5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS, default=28"`
	LogCompress   bool   `env:"LOG_COMPRESS, default=true"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("SCHEMAFILL_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.SchemaCacheSize < 1 {
		return fmt.Errorf("SCHEMAFILL_SCHEMA_CACHE_SIZE must be at least 1, got %d", c.SchemaCacheSize)
	}
	return nil
}

// Logging returns the logging section of the configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		FilePath:   c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}
