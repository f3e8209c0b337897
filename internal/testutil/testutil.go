// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for ContentHub.
package testutil

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/contenthub/internal/auth"
	"github.com/olegiv/contenthub/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDBPath returns a fresh database path inside t.TempDir.
func TestDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "contenthub-test.db")
}

// TestDB creates a temporary test database with migrations applied.
// The database is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.Open(TestDBPath(t))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// OpenDB opens (and migrates) the database at path, closing it when the test ends.
func OpenDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("opening database %s: %v", path, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// DefaultUsers returns the built-in known-users table with plaintext comparison.
func DefaultUsers(t *testing.T) *auth.Table {
	t.Helper()

	table, err := auth.NewTable(auth.DefaultSeed(), auth.PasswordModePlaintext)
	if err != nil {
		t.Fatalf("building users table: %v", err)
	}
	return table
}
