// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env        string `env:"CONTENTHUB_ENV" envDefault:"development"`
	LogLevel   string `env:"CONTENTHUB_LOG_LEVEL" envDefault:"info"`
	ServerHost string `env:"CONTENTHUB_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"CONTENTHUB_SERVER_PORT" envDefault:"8080"`
	DBPath     string `env:"CONTENTHUB_DB_PATH" envDefault:"./data/contenthub.db"`

	// Cookie sessions and CSRF (server only)
	SessionSecret   string        `env:"CONTENTHUB_SESSION_SECRET"`
	SessionLifetime time.Duration `env:"CONTENTHUB_SESSION_LIFETIME" envDefault:"24h"`

	// Session slot
	SessionKey    string `env:"CONTENTHUB_SESSION_KEY" envDefault:"currentUser"`
	Storage       string `env:"CONTENTHUB_STORAGE" envDefault:"sqlite"`
	RedisURL      string `env:"CONTENTHUB_REDIS_URL"`
	StoragePrefix string `env:"CONTENTHUB_STORAGE_PREFIX" envDefault:"contenthub:"`

	// Simulated latency of login and logout
	LoginDelay  time.Duration `env:"CONTENTHUB_LOGIN_DELAY" envDefault:"800ms"`
	LogoutDelay time.Duration `env:"CONTENTHUB_LOGOUT_DELAY" envDefault:"500ms"`

	// Known users
	PasswordMode string `env:"CONTENTHUB_PASSWORD_MODE" envDefault:"plaintext"`
	UsersFile    string `env:"CONTENTHUB_USERS_FILE"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if the session slot lives in Redis.
func (c Config) UseRedis() bool {
	return c.Storage == "redis"
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.Storage {
	case "memory", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("CONTENTHUB_STORAGE must be memory, sqlite or redis, got %q", cfg.Storage)
	}

	if cfg.UseRedis() && cfg.RedisURL == "" {
		return nil, errors.New("CONTENTHUB_REDIS_URL is required when CONTENTHUB_STORAGE=redis")
	}

	if cfg.SessionKey == "" {
		return nil, errors.New("CONTENTHUB_SESSION_KEY must not be empty")
	}

	if cfg.LoginDelay < 0 || cfg.LogoutDelay < 0 {
		return nil, errors.New("CONTENTHUB_LOGIN_DELAY and CONTENTHUB_LOGOUT_DELAY must not be negative")
	}

	return cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.SessionSecret == "" {
		return errors.New("CONTENTHUB_SESSION_SECRET is required; " +
			"generate a secure secret with: openssl rand -base64 32")
	}

	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("CONTENTHUB_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("CONTENTHUB_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		slog.Warn("CONTENTHUB_SESSION_SECRET has low character diversity; "+
			"consider generating a random secret with: openssl rand -base64 32",
			"category", "config")
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
