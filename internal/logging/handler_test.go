// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/olegiv/contenthub/internal/model"
	"github.com/olegiv/contenthub/internal/store"
	"github.com/olegiv/contenthub/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func singleEvent(t *testing.T, db *sql.DB) store.Event {
	t.Helper()
	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	return events[0]
}

func decodeMetadata(t *testing.T, raw string) map[string]string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("metadata %q is not JSON: %v", raw, err)
	}
	return m
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name    string
		log     func(*slog.Logger)
		want    string
		records bool
	}{
		{"error", func(l *slog.Logger) { l.Error("saving session failed") }, model.EventLevelError, true},
		{"warn", func(l *slog.Logger) { l.Warn("login failed") }, model.EventLevelWarning, true},
		{"info", func(l *slog.Logger) { l.Info("user logged in") }, "", false},
		{"debug", func(l *slog.Logger) { l.Debug("loading session") }, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestDB(t)
			tt.log(slog.New(NewEventLogHandler(discardHandler{}, db)))

			events := listEvents(t, db)
			if !tt.records {
				if len(events) != 0 {
					t.Errorf("expected no events, got %d", len(events))
				}
				return
			}
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Level != tt.want {
				t.Errorf("Level = %q, want %q", events[0].Level, tt.want)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))

	logger.Info("user logged out")

	ev := singleEvent(t, db)
	if ev.Level != model.EventLevelInfo {
		t.Errorf("Level = %q, want %q", ev.Level, model.EventLevelInfo)
	}
	if ev.Category != model.EventCategoryAuth {
		t.Errorf("Category = %q, want %q", ev.Category, model.EventCategoryAuth)
	}
}

func TestEventLogHandler_InnerStillReceives(t *testing.T) {
	db := testutil.TestDB(t)
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError})
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Warn("login failed", "email", "admin@example.com")
	logger.Error("removing session failed")

	if strings.Contains(buf.String(), "login failed") {
		t.Error("inner handler should not receive records below its level")
	}
	if !strings.Contains(buf.String(), "removing session failed") {
		t.Error("inner handler should receive the error")
	}
	if n := len(listEvents(t, db)); n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}
}

func TestEventLogHandler_CategoryInference(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"login failed", model.EventCategoryAuth},
		{"invalid credentials", model.EventCategoryAuth},
		{"user logged in", model.EventCategoryAuth},
		{"user logged out", model.EventCategoryAuth},
		{"dropping malformed session", model.EventCategorySession},
		{"redis ping timed out", model.EventCategoryStorage},
		{"database locked", model.EventCategoryStorage},
		{"config value ignored", model.EventCategoryConfig},
		{"shutdown took too long", model.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			db := testutil.TestDB(t)
			slog.New(NewEventLogHandler(discardHandler{}, db)).Warn(tt.msg)

			if got := singleEvent(t, db).Category; got != tt.want {
				t.Errorf("Category = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("login failed", "category", model.EventCategoryStorage)

	ev := singleEvent(t, db)
	if ev.Category != model.EventCategoryStorage {
		t.Errorf("Category = %q, want %q", ev.Category, model.EventCategoryStorage)
	}
	if strings.Contains(ev.Metadata, "category") {
		t.Errorf("metadata should not repeat category: %s", ev.Metadata)
	}
}

func TestEventLogHandler_UnknownCategoryInferred(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("session record dropped", "category", "bogus")

	if got := singleEvent(t, db).Category; got != model.EventCategorySession {
		t.Errorf("Category = %q, want %q", got, model.EventCategorySession)
	}
}

func TestEventLogHandler_Metadata(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("login failed", "email", `a"b\c@example.com`, "attempt", 3)

	m := decodeMetadata(t, singleEvent(t, db).Metadata)
	if m["email"] != `a"b\c@example.com` {
		t.Errorf("email = %q", m["email"])
	}
	if m["attempt"] != "3" {
		t.Errorf("attempt = %q, want 3", m["attempt"])
	}
}

func TestEventLogHandler_EmptyMetadata(t *testing.T) {
	db := testutil.TestDB(t)
	slog.New(NewEventLogHandler(discardHandler{}, db)).Warn("plain warning")

	if got := singleEvent(t, db).Metadata; got != "{}" {
		t.Errorf("Metadata = %q, want {}", got)
	}
}

func TestEventLogHandler_WithAttrsAndGroup(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).
		With("component", "session").
		WithGroup("req").
		With("path", "/login")

	logger.Warn("login failed", "email", "x@example.com")

	m := decodeMetadata(t, singleEvent(t, db).Metadata)
	want := map[string]string{
		"component": "session",
		"req.path":  "/login",
		"req.email": "x@example.com",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("metadata[%q] = %q, want %q", k, m[k], v)
		}
	}
}

func TestEventLogHandler_WithAttrsDoesNotLeak(t *testing.T) {
	db := testutil.TestDB(t)
	base := slog.New(NewEventLogHandler(discardHandler{}, db))

	_ = base.With("component", "cli")
	base.Warn("bare warning")

	m := decodeMetadata(t, singleEvent(t, db).Metadata)
	if _, ok := m["component"]; ok {
		t.Error("attrs from a derived logger leaked into the base logger")
	}
}

func TestEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, model.EventLevelInfo},
		{slog.LevelInfo, model.EventLevelInfo},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelError, model.EventLevelError},
		{slog.LevelError + 4, model.EventLevelError},
	}

	for _, tt := range tests {
		if got := eventLevel(tt.level); got != tt.want {
			t.Errorf("eventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
