// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared across ContentHub:
// users, roles, credentials and audit events.
package model

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Role is a ContentHub user role. The set of roles is closed.
type Role string

// User roles.
const (
	RoleAdmin       Role = "Admin"
	RoleEditor      Role = "Editor"
	RoleContributor Role = "Contributor"
)

// Roles lists every valid role, highest privilege first.
var Roles = []Role{RoleAdmin, RoleEditor, RoleContributor}

// ErrUnknownRole is returned when a role string is not one of Roles.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts s into a Role. Matching is exact.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// Level returns the position of r in the role hierarchy.
// Higher level = more permissions; unknown roles are 0.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleContributor:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Level() >= min.Level()
}

func (r Role) String() string {
	return string(r)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects unknown roles.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is the profile of an authenticated identity.
// It is the value persisted as the session record.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks the fields a stored session record must carry.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("user id is empty")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, string(u.Role))
	}
	return nil
}

// Credentials is a login attempt. It is never persisted.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
