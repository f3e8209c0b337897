// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

// CookieStore keeps values in the scs session of the current request, so
// each browser gets its own storage scope. The context passed to every call
// must carry session data loaded by scs LoadAndSave.
type CookieStore struct {
	sm *scs.SessionManager
}

// NewCookieStore wraps a session manager.
func NewCookieStore(sm *scs.SessionManager) *CookieStore {
	return &CookieStore{sm: sm}
}

// recoverUnavailable turns the scs "no session data in context" panic
// into ErrUnavailable.
func recoverUnavailable(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("%w: %v", ErrUnavailable, rec)
	}
}

// Get retrieves a value from the request session.
func (s *CookieStore) Get(ctx context.Context, key string) (value []byte, err error) {
	defer recoverUnavailable(&err)

	if !s.sm.Exists(ctx, key) {
		return nil, ErrNotFound
	}

	switch v := s.sm.Get(ctx, key).(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return []byte(fmt.Sprint(v)), nil
	}
}

// Set stores a value in the request session.
func (s *CookieStore) Set(ctx context.Context, key string, value []byte) (err error) {
	defer recoverUnavailable(&err)

	s.sm.Put(ctx, key, value)
	return nil
}

// Delete removes a value from the request session.
func (s *CookieStore) Delete(ctx context.Context, key string) (err error) {
	defer recoverUnavailable(&err)

	s.sm.Remove(ctx, key)
	return nil
}

var _ Storage = (*CookieStore)(nil)
