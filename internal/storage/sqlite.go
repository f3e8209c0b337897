// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/contenthub/internal/store"
)

// SQLiteStore keeps values in the kv_store table. Values survive process
// restarts for as long as the database file exists.
type SQLiteStore struct {
	db      *sql.DB
	queries *store.Queries
}

// NewSQLiteStore returns a store on a migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:      db,
		queries: store.New(db),
	}
}

// Get retrieves a value.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.queries.GetValue(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading %q: %w", ErrUnavailable, key, err)
	}
	return value, nil
}

// Set stores a value.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	err := s.queries.UpsertValue(ctx, store.UpsertValueParams{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: writing %q: %w", ErrUnavailable, key, err)
	}
	return nil
}

// Delete removes a key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := s.queries.DeleteValue(ctx, key); err != nil {
		return fmt.Errorf("%w: deleting %q: %w", ErrUnavailable, key, err)
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var (
	_ Storage = (*SQLiteStore)(nil)
	_ Pinger  = (*SQLiteStore)(nil)
)
