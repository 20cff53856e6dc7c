// Package config loads server settings from DROPSHIP_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Environment variables
const (
	EnvDBPath       = "DROPSHIP_DB_PATH"
	EnvLogLevel     = "DROPSHIP_LOG_LEVEL"
	EnvLogFormat    = "DROPSHIP_LOG_FORMAT"
	EnvAMQPURL      = "DROPSHIP_AMQP_URL"
	EnvAMQPExchange = "DROPSHIP_AMQP_EXCHANGE"
	EnvSeed         = "DROPSHIP_SEED"
	EnvSeedPassword = "DROPSHIP_SEED_PASSWORD"
)

// Defaults
const (
	DefaultDBPath       = "~/.dropship/dropship.db"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultAMQPExchange = "dropship.orders"
	DefaultSeedPassword = "password123"
)

// Config holds server configuration
type Config struct {
	DBPath       string
	LogLevel     string
	LogFormat    string
	AMQPURL      string // empty disables event publishing
	AMQPExchange string
	Seed         bool
	SeedPassword string
}

// Default returns the configuration used when no variable is set
func Default() Config {
	return Config{
		DBPath:       DefaultDBPath,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		AMQPExchange: DefaultAMQPExchange,
		Seed:         true,
		SeedPassword: DefaultSeedPassword,
	}
}

// NewFromEnv builds a Config from the environment, falling back to Default
// for unset variables.
func NewFromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	cfg.AMQPURL = os.Getenv(EnvAMQPURL)
	if v := os.Getenv(EnvAMQPExchange); v != "" {
		cfg.AMQPExchange = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid boolean %q", EnvSeed, v)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv(EnvSeedPassword); v != "" {
		cfg.SeedPassword = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s: unknown level %q (want debug, info, warn or error)", EnvLogLevel, c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("%s: unknown format %q (want json or console)", EnvLogFormat, c.LogFormat)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%s: must not be empty", EnvDBPath)
	}
	if c.Seed && c.SeedPassword == "" {
		return fmt.Errorf("%s: required when seeding is enabled", EnvSeedPassword)
	}
	return nil
}

// ResolveDBPath expands a leading ~ and creates the parent directory.
// ":memory:" is returned unchanged.
func (c Config) ResolveDBPath() (string, error) {
	path := c.DBPath
	if path == ":memory:" {
		return path, nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}
