// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP surface: login, logout, the guarded
// /app area and health checks.
package handler

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/contenthub/internal/middleware"
	"github.com/olegiv/contenthub/internal/session"
	"github.com/olegiv/contenthub/internal/storage"
)

// Routes.
const (
	RouteLogin  = "/login"
	RouteLogout = "/logout"
	RouteApp    = "/app"
)

// RouterConfig wires the router.
type RouterConfig struct {
	DB *sql.DB

	// CookieSessions scopes every request to one browser.
	CookieSessions *scs.SessionManager

	// Sessions must store its record in CookieSessions, e.g. through
	// storage.NewCookieStore.
	Sessions *session.Manager

	Users Directory

	// Slot is checked by /health when it can be pinged. May be nil.
	Slot storage.Storage

	// CSRF protects state-changing routes. Nil disables it.
	CSRF func(http.Handler) http.Handler

	IsDevelopment bool
	Version       string
}

// NewRouter builds the HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.IsDevelopment {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))

	healthHandler := NewHealthHandler(cfg.DB, cfg.Slot, cfg.Version)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	authHandler := NewAuthHandler(cfg.Sessions, cfg.CookieSessions, cfg.Users)

	r.Group(func(r chi.Router) {
		r.Use(cfg.CookieSessions.LoadAndSave)
		if cfg.CSRF != nil {
			r.Use(cfg.CSRF)
		}

		r.Get(RouteLogin, authHandler.LoginForm)
		r.Post(RouteLogin, authHandler.Login)
		r.Post(RouteLogout, authHandler.Logout)

		r.Route(RouteApp, func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Sessions, authHandler.flashes))
			r.Use(middleware.LoadUser(cfg.Sessions))

			r.Get("/", authHandler.Dashboard)
			r.Get("/me", authHandler.Me)
			r.With(middleware.RequireAdmin()).Get("/users", authHandler.Users)
		})
	})

	return r
}
