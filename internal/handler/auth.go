// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"

	"github.com/olegiv/contenthub/internal/auth"
	"github.com/olegiv/contenthub/internal/middleware"
	"github.com/olegiv/contenthub/internal/model"
	"github.com/olegiv/contenthub/internal/session"
)

// User-facing messages.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgStorageUnavailable = "Sessions cannot be saved right now"
	msgCredentialsMissing = "Email and password are required"
	msgInvalidEmail       = "Please enter a valid email address"
	msgInvalidForm        = "Invalid form data"
	msgLoggedOut          = "You have been logged out"
)

const sessionKeyFlash = "flash"

// Directory lists the known users.
type Directory interface {
	Accounts() []auth.Account
}

// Flashes stores one-shot messages in the cookie session.
type Flashes struct {
	sm *scs.SessionManager
}

// NewFlashes wraps a session manager.
func NewFlashes(sm *scs.SessionManager) *Flashes {
	return &Flashes{sm: sm}
}

// Flash queues msg for the next page load.
func (f *Flashes) Flash(ctx context.Context, msg string) {
	f.sm.Put(ctx, sessionKeyFlash, msg)
}

// Pop returns and clears the queued message.
func (f *Flashes) Pop(ctx context.Context) string {
	return f.sm.PopString(ctx, sessionKeyFlash)
}

// AuthHandler handles login, logout and the protected area.
type AuthHandler struct {
	sessions       *session.Manager
	sessionManager *scs.SessionManager
	flashes        *Flashes
	users          Directory
	validate       *validator.Validate
}

// NewAuthHandler creates a new AuthHandler. sessions must store its record in
// the cookie session managed by sm.
func NewAuthHandler(sessions *session.Manager, sm *scs.SessionManager, users Directory) *AuthHandler {
	return &AuthHandler{
		sessions:       sessions,
		sessionManager: sm,
		flashes:        NewFlashes(sm),
		users:          users,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

// LoginForm describes the login entry point. Logged-in visitors go to /app.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.IsLoggedIn(r.Context()) {
		http.Redirect(w, r, RouteApp, http.StatusSeeOther)
		return
	}

	data := map[string]any{
		"action": RouteLogin,
		"fields": []string{"email", "password"},
	}
	if flash := h.flashes.Pop(r.Context()); flash != "" {
		data["flash"] = flash
	}
	writeJSONSuccess(w, data)
}

// Login handles a form or JSON credentials submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	wantsJSON := middleware.WantsJSON(r)

	creds, err := readCredentials(w, r)
	if err != nil {
		h.fail(w, r, wantsJSON, http.StatusBadRequest, msgInvalidForm)
		return
	}

	if err := h.validate.Struct(creds); err != nil {
		h.fail(w, r, wantsJSON, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.sessions.Login(r.Context(), creds.Email, creds.Password)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		h.fail(w, r, wantsJSON, http.StatusUnauthorized, msgInvalidCredentials)
		return
	case errors.Is(err, session.ErrStorageUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, msgStorageUnavailable)
		return
	case err != nil:
		slog.Error("login error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "category", model.EventCategorySession, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if wantsJSON {
		writeJSONSuccess(w, map[string]any{"user": user})
		return
	}
	http.Redirect(w, r, RouteApp, http.StatusSeeOther)
}

// Logout removes the session. It succeeds without a session too.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, msgStorageUnavailable)
		return
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "category", model.EventCategorySession, "error", err)
	}

	if middleware.WantsJSON(r) {
		writeJSONSuccess(w, nil)
		return
	}
	h.flashes.Flash(r.Context(), msgLoggedOut)
	http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
}

// Dashboard summarizes the current user. Requires LoadUser.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSONSuccess(w, map[string]any{
		"user":    user,
		"role":    user.Role,
		"isAdmin": user.IsAdmin(),
	})
}

// Me returns the current user record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Users lists the known users. Mount behind RequireAdmin.
func (h *AuthHandler) Users(w http.ResponseWriter, _ *http.Request) {
	writeJSONSuccess(w, map[string]any{"users": h.users.Accounts()})
}

func readCredentials(w http.ResponseWriter, r *http.Request) (model.Credentials, error) {
	var creds model.Credentials

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return creds, err
		}
		return creds, nil
	}

	if err := r.ParseForm(); err != nil {
		return creds, err
	}
	creds.Email = r.FormValue("email")
	creds.Password = r.FormValue("password")
	return creds, nil
}

// fail answers JSON clients with status and browsers with a flash and a
// redirect back to the login page.
func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, wantsJSON bool, status int, msg string) {
	if wantsJSON {
		writeJSONError(w, status, msg)
		return
	}
	h.flashes.Flash(r.Context(), msg)
	http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
}

func requireUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user := middleware.GetUser(r)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, middleware.AuthRequiredMessage)
		return nil, false
	}
	return user, true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Email" && fe.Tag() == "email" {
				return msgInvalidEmail
			}
		}
	}
	return msgCredentialsMissing
}
