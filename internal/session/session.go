// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// DefaultCookieLifetime bounds how long a browser's cookie session lives.
const DefaultCookieLifetime = 24 * time.Hour

// NewCookieSessions creates the scs manager that gives each browser its own
// storage scope, persisted in the sessions table.
func NewCookieSessions(db *sql.DB, isDev bool, lifetime time.Duration) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	if lifetime <= 0 {
		lifetime = DefaultCookieLifetime
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "contenthub_session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	// __Host- prefix requires Secure and Path=/.
	if !isDev {
		sm.Cookie.Name = "__Host-contenthub_session"
	}

	return sm
}
