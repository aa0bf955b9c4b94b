// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first (if present) so development setups need no exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (cover store, sessions) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// # Cover Backends

const (
	// CoverStoreMemory keeps cover bytes in process memory.
	CoverStoreMemory = "memory"

	// CoverStoreRedis keeps cover bytes in Redis with a TTL.
	CoverStoreRedis = "redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the Bookshelf server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Locale is the BCP-47 tag used to collate titles and authors.
	Locale string `env:"LOCALE" envDefault:"en"`

	// Cover storage ("memory" or "redis")
	CoverStore    string `env:"COVER_STORE"     envDefault:"memory"`
	RedisURL      string `env:"REDIS_URL"`
	MaxCoverBytes int64  `env:"MAX_COVER_BYTES" envDefault:"10485760"`

	// CoverTTL is how long a Redis-held cover survives without being read.
	CoverTTL time.Duration `env:"COVER_TTL" envDefault:"24h"`

	// SessionIdleTTL is how long an untouched browser session keeps its catalog.
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`

	// Cross-Origin Resource Sharing for the JSON API
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env is the normal production case
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment onto a [Config] and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CoverStore {
	case CoverStoreMemory:
	case CoverStoreRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL is required when COVER_STORE=redis")
		}
	default:
		return fmt.Errorf("config: unknown COVER_STORE %q", c.CoverStore)
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config: invalid LOCALE %q: %w", c.Locale, err)
	}

	if c.MaxCoverBytes <= 0 {
		return errors.New("config: MAX_COVER_BYTES must be positive")
	}

	if c.SessionIdleTTL <= 0 {
		return errors.New("config: SESSION_IDLE_TTL must be positive")
	}

	// A live session must never outlast the covers it still shows
	if c.CoverStore == CoverStoreRedis && c.CoverTTL <= c.SessionIdleTTL {
		return fmt.Errorf("config: COVER_TTL (%s) must exceed SESSION_IDLE_TTL (%s)", c.CoverTTL, c.SessionIdleTTL)
	}

	return nil
}

// LanguageTag returns the parsed collation locale. [Parse] has already validated it.
func (c *Config) LanguageTag() language.Tag {
	return language.Make(c.Locale)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins returns the configured CORS origins.
func (c *Config) Origins() []string {
	return c.AllowedOrigins
}
