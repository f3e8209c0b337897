// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "contenthub-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	for _, table := range []string{"sessions", "kv_store", "events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestNewDB_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "app.db")

	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	_ = db.Close()
}

func TestKeyValue(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	if _, err := q.GetValue(ctx, "currentUser"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetValue on empty store: err = %v, want sql.ErrNoRows", err)
	}

	if err := q.UpsertValue(ctx, UpsertValueParams{Key: "currentUser", Value: []byte(`{"id":"u-001"}`), UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertValue: %v", err)
	}
	if err := q.UpsertValue(ctx, UpsertValueParams{Key: "currentUser", Value: []byte(`{"id":"u-002"}`), UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("UpsertValue overwrite: %v", err)
	}

	got, err := q.GetValue(ctx, "currentUser")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if string(got) != `{"id":"u-002"}` {
		t.Errorf("GetValue = %s, want overwritten value", got)
	}

	if err := q.DeleteValue(ctx, "currentUser"); err != nil {
		t.Fatalf("DeleteValue: %v", err)
	}
	if err := q.DeleteValue(ctx, "currentUser"); err != nil {
		t.Fatalf("DeleteValue on missing key: %v", err)
	}
	if _, err := q.GetValue(ctx, "currentUser"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetValue after delete: err = %v, want sql.ErrNoRows", err)
	}
}

func TestEvents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	for _, msg := range []string{"first", "second", "third"} {
		ev, err := q.CreateEvent(ctx, CreateEventParams{
			Level:     "warning",
			Category:  "auth",
			Message:   msg,
			Metadata:  `{}`,
			CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
		if ev.ID == 0 {
			t.Error("event ID should not be 0")
		}
	}

	count, err := q.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 3 {
		t.Errorf("CountEvents = %d, want 3", count)
	}

	events, err := q.ListEvents(ctx, ListEventsParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListEvents returned %d events, want 2", len(events))
	}
	if events[0].Message != "third" || events[1].Message != "second" {
		t.Errorf("ListEvents order = %q, %q; want newest first", events[0].Message, events[1].Message)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not scanned")
	}
}
