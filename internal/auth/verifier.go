// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/olegiv/contenthub/internal/model"
)

// Verifier checks a login attempt and returns the matching user record.
// The bool is false for an unknown email or a wrong password alike.
type Verifier interface {
	VerifyCredentials(email, password string) (model.User, bool)
}

// Comparer decides whether a password matches a stored secret.
type Comparer interface {
	// Prepare turns a seed password into the secret kept in the table.
	Prepare(password string) (string, error)
	// Compare reports whether password matches secret.
	Compare(password, secret string) bool
}

// PasswordMode selects a Comparer.
type PasswordMode string

// Password comparison modes.
const (
	PasswordModePlaintext PasswordMode = "plaintext"
	PasswordModeArgon2    PasswordMode = "argon2"
)

// NewComparer returns the Comparer for mode.
func NewComparer(mode PasswordMode) (Comparer, error) {
	switch mode {
	case PasswordModePlaintext, "":
		return PlaintextComparer{}, nil
	case PasswordModeArgon2:
		return Argon2Comparer{}, nil
	default:
		return nil, fmt.Errorf("unknown password mode %q", mode)
	}
}

// PlaintextComparer keeps seed passwords as-is and compares exactly.
type PlaintextComparer struct{}

// Prepare implements Comparer.
func (PlaintextComparer) Prepare(password string) (string, error) {
	return password, nil
}

// Compare implements Comparer.
func (PlaintextComparer) Compare(password, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(secret)) == 1
}

// Argon2Comparer stores argon2id hashes.
type Argon2Comparer struct{}

// Prepare implements Comparer. Values that are already argon2id hashes are
// kept; hashes made with other parameters still verify but are reported.
func (Argon2Comparer) Prepare(password string) (string, error) {
	if IsArgon2Hash(password) {
		if NeedsRehash(password) {
			slog.Warn("seed password hash uses outdated parameters",
				"category", model.EventCategoryConfig)
		}
		return password, nil
	}
	return HashPassword(password)
}

// Compare implements Comparer.
func (Argon2Comparer) Compare(password, secret string) bool {
	ok, err := CheckPassword(password, secret)
	if err != nil {
		slog.Error("password check error", "error", err)
		return false
	}
	return ok
}
