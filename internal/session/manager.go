// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session implements the login state machine: a single session
// record per storage scope, written by Login, read by IsLoggedIn and
// CurrentUser, and removed by Logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/contenthub/internal/auth"
	"github.com/olegiv/contenthub/internal/model"
	"github.com/olegiv/contenthub/internal/storage"
)

// DefaultKey is the storage key of the session record.
const DefaultKey = "currentUser"

// Default simulated latencies.
const (
	DefaultLoginDelay  = 800 * time.Millisecond
	DefaultLogoutDelay = 500 * time.Millisecond
)

var (
	// ErrInvalidCredentials is returned for an unknown email and a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrStorageUnavailable is returned when the session cannot be written
	// or removed.
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// State is the authentication state of a storage scope.
type State int

// States.
const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Options configures a Manager. Zero delays mean no delay.
type Options struct {
	Key         string
	LoginDelay  time.Duration
	LogoutDelay time.Duration
	Logger      *slog.Logger
}

// Manager owns the session record. It keeps no state of its own: every call
// goes to storage, so one Manager can serve many scopes (e.g. one per
// HTTP cookie session) and stays consistent with other writers.
type Manager struct {
	users       auth.Verifier
	store       storage.Storage
	key         string
	loginDelay  time.Duration
	logoutDelay time.Duration
	logger      *slog.Logger
	sleep       func(time.Duration)
}

// New creates a Manager.
func New(users auth.Verifier, store storage.Storage, opts Options) *Manager {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Manager{
		users:       users,
		store:       store,
		key:         opts.Key,
		loginDelay:  opts.LoginDelay,
		logoutDelay: opts.LogoutDelay,
		logger:      opts.Logger,
		sleep:       time.Sleep,
	}
}

// Key returns the storage key of the session record.
func (m *Manager) Key() string {
	return m.key
}

// Login checks the credentials and, on success, replaces the stored session
// with the matching user. A failed attempt leaves any existing session as is.
// Once called, Login runs to completion even if ctx is cancelled.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	m.wait(m.loginDelay)

	user, ok := m.users.VerifyCredentials(email, password)
	if !ok {
		m.logger.Warn("login failed", "category", model.EventCategoryAuth, "email", email)
		return nil, ErrInvalidCredentials
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}

	if err := m.store.Set(context.WithoutCancel(ctx), m.key, data); err != nil {
		m.logger.Error("saving session failed", "category", model.EventCategoryStorage, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	m.logger.Info("user logged in", "category", model.EventCategoryAuth, "user_id", user.ID, "email", email, "role", user.Role)
	return &user, nil
}

// IsLoggedIn reports whether a well-formed session is stored. Like
// CurrentUser, it drops a malformed record it reads.
func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	return m.CurrentUser(ctx) != nil
}

// State returns the current authentication state.
func (m *Manager) State(ctx context.Context) State {
	if m.IsLoggedIn(ctx) {
		return StateAuthenticated
	}
	return StateAnonymous
}

// CurrentUser returns the stored user, or nil when there is no session.
// Unreadable storage counts as no session. A malformed record is removed.
func (m *Manager) CurrentUser(ctx context.Context) *model.User {
	data, err := m.store.Get(ctx, m.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("reading session failed", "category", model.EventCategoryStorage, "error", err)
		}
		return nil
	}

	user, err := decodeUser(data)
	if err != nil {
		m.logger.Warn("dropping malformed session", "category", model.EventCategorySession, "error", err)
		if err := m.store.Delete(ctx, m.key); err != nil {
			m.logger.Warn("removing malformed session failed", "category", model.EventCategoryStorage, "error", err)
		}
		return nil
	}

	return user
}

// Logout removes the session. Logging out without a session succeeds.
func (m *Manager) Logout(ctx context.Context) error {
	m.wait(m.logoutDelay)

	if err := m.store.Delete(context.WithoutCancel(ctx), m.key); err != nil {
		m.logger.Error("removing session failed", "category", model.EventCategoryStorage, "error", err)
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	m.logger.Info("user logged out", "category", model.EventCategoryAuth)
	return nil
}

func (m *Manager) wait(d time.Duration) {
	if d > 0 {
		m.sleep(d)
	}
}

func decodeUser(data []byte) (*model.User, error) {
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("validating session: %w", err)
	}
	return &user, nil
}
