// Package config provides configuration loading for retirewised and rwise.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Local     LocalConfig     `koanf:"local"`
	Remote    RemoteConfig    `koanf:"remote"`
	Relay     RelayConfig     `koanf:"relay"`
	Logging   LoggingConfig   `koanf:"logging"`
	Migration MigrationConfig `koanf:"migration"`
}

// ServerConfig holds the relay daemon's listen address.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// LocalConfig holds the embedded store settings.
type LocalConfig struct {
	// Path is the SQLite database file.
	Path string `koanf:"path"`
}

// RemoteConfig holds the cloud document store settings.
type RemoteConfig struct {
	// BaseURL is the root of the document API.
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates requests to the document API.
	APIKey Secret `koanf:"api_key"`

	// Timeout bounds each HTTP call.
	Timeout Duration `koanf:"timeout"`

	// PollInterval is the subscription poll period.
	PollInterval Duration `koanf:"poll_interval"`
}

// RelayConfig holds the chat-relay settings. The upstream API key lives
// server-side only; clients never see it.
type RelayConfig struct {
	APIKey    Secret `koanf:"api_key"`
	BaseURL   string `koanf:"base_url"`
	Model     string `koanf:"model"`
	MaxTokens int    `koanf:"max_tokens"`

	// RateLimit is the sustained requests/second allowed through the
	// relay; Burst is the short-term allowance.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// MigrationConfig tunes the migration engine.
type MigrationConfig struct {
	// RecordTimeout bounds each remote write during migration.
	RecordTimeout Duration `koanf:"record_timeout"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 3001,
		},
		Local: LocalConfig{
			Path: "~/.config/retirewise/retirewise.db",
		},
		Remote: RemoteConfig{
			Timeout:      Duration(30 * time.Second),
			PollInterval: Duration(5 * time.Second),
		},
		Relay: RelayConfig{
			BaseURL:   "https://api.anthropic.com/v1/messages",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
			RateLimit: 5,
			Burst:     10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Migration: MigrationConfig{
			RecordTimeout: Duration(10 * time.Second),
		},
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	if c.Relay.MaxTokens <= 0 {
		return fmt.Errorf("relay max_tokens must be positive, got %d", c.Relay.MaxTokens)
	}
	if c.Relay.RateLimit <= 0 {
		return fmt.Errorf("relay rate_limit must be positive, got %v", c.Relay.RateLimit)
	}
	if c.Migration.RecordTimeout.Duration() <= 0 {
		return fmt.Errorf("migration record_timeout must be positive")
	}
	return nil
}
