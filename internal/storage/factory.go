// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is one of BackendMemory, BackendSQLite, BackendRedis.
	Backend string

	// RedisURL is required for BackendRedis.
	RedisURL string

	// Prefix is the Redis key prefix.
	Prefix string
}

// Open creates the Storage described by cfg. db is required for BackendSQLite.
func Open(ctx context.Context, cfg Config, db *sql.DB) (Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil

	case BackendSQLite, "":
		if db == nil {
			return nil, errors.New("sqlite storage requires a database")
		}
		return NewSQLiteStore(db), nil

	case BackendRedis:
		opts := DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		return NewRedisStore(ctx, opts)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
