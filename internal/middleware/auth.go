// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the route guard,
// role checks, and request hardening.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/contenthub/internal/model"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyUser ContextKey = "user"
)

// LoginPath is where anonymous browsers are sent.
const LoginPath = "/login"

// Guard messages shown to anonymous visitors.
const (
	AuthRequiredTitle   = "Authentication Required"
	AuthRequiredMessage = "Please login to access this area"
)

// Checker reports whether the request's scope holds a session.
type Checker interface {
	IsLoggedIn(ctx context.Context) bool
}

// UserSource returns the user of the request's session, or nil.
type UserSource interface {
	CurrentUser(ctx context.Context) *model.User
}

// Flasher queues a one-shot message for the next page the browser loads.
type Flasher interface {
	Flash(ctx context.Context, msg string)
}

// WantsJSON reports whether the client expects a JSON response rather than
// a redirect.
func WantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// RequireSession checks IsLoggedIn on every request. Anonymous browsers are
// redirected to the login page and JSON clients get 401. The protected
// handler never runs for them. flash may be nil.
func RequireSession(sessions Checker, flash Flasher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.IsLoggedIn(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			if WantsJSON(r) {
				writeError(w, http.StatusUnauthorized, AuthRequiredMessage)
				return
			}

			if flash != nil {
				flash.Flash(r.Context(), AuthRequiredTitle+": "+AuthRequiredMessage)
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		})
	}
}

// LoadUser puts the session user, if any, into the request context.
func LoadUser(users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := users.CurrentUser(r.Context())
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// RequireRole requires a user loaded by LoadUser with at least minRole.
// Roles are hierarchical: Admin > Editor > Contributor.
func RequireRole(minRole model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				if WantsJSON(r) {
					writeError(w, http.StatusUnauthorized, AuthRequiredMessage)
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			if !user.Role.AtLeast(minRole) {
				slog.Warn("access denied",
					"category", model.EventCategoryAuth,
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"required_role", minRole,
					"remote_addr", r.RemoteAddr,
				)
				writeError(w, http.StatusForbidden, "Forbidden: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for RequireRole(model.RoleAdmin).
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   msg,
	})
}
