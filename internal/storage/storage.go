// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage provides the key-value slot stores a session can live in:
// process memory, a SQLite file, Redis, or an HTTP cookie session.
package storage

import (
	"context"
)

// Storage is a string-keyed byte store.
// All implementations must be safe for concurrent use; the last writer wins.
type Storage interface {
	// Get returns the value stored under key.
	// Returns nil and ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Closer is implemented by stores holding resources.
type Closer interface {
	Close() error
}

// Pinger is implemented by stores that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Error represents an error type for storage operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotFound indicates the key is not present.
	ErrNotFound Error = "storage: key not found"

	// ErrUnavailable indicates the backend cannot be reached or is not set up
	// for the current context.
	ErrUnavailable Error = "storage: unavailable"

	// ErrClosed indicates the store has been closed.
	ErrClosed Error = "storage: closed"
)
