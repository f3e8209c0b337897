// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/olegiv/contenthub/internal/model"
)

// SeedUser is one row of the known-users table as supplied at startup.
// Email is the login key; User.Email is the profile's contact address.
type SeedUser struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	User     model.User `json:"user"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Mock profile shared by the default rows.
var (
	defaultCreatedAt = time.Date(2023, 1, 15, 8, 0, 0, 0, time.UTC)
	defaultProfile   = model.User{
		ID:        "u-001",
		Name:      "Alex Johnson",
		Email:     "alex.johnson@example.com",
		Avatar:    "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?q=80&w=250",
		Role:      model.RoleAdmin,
		Bio:       "Digital content creator with a passion for storytelling and interactive media",
		CreatedAt: defaultCreatedAt,
	}
)

// DefaultSeed returns the built-in demo accounts.
func DefaultSeed() []SeedUser {
	admin := defaultProfile

	editor := defaultProfile
	editor.ID = "u-002"
	editor.Name = "Maya Patel"
	editor.Role = model.RoleEditor
	editor.Avatar = "https://images.unsplash.com/photo-1494790108377-be9c29b29330?q=80&w=250"

	contributor := defaultProfile
	contributor.ID = "u-003"
	contributor.Name = "Jamal Williams"
	contributor.Role = model.RoleContributor
	contributor.Avatar = "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?q=80&w=250"

	return []SeedUser{
		{Email: "admin@example.com", Password: "password123", User: admin},
		{Email: "editor@example.com", Password: "password123", User: editor},
		{Email: "contributor@example.com", Password: "password123", User: contributor},
		{Email: "demo@example.com", Password: "demo123", User: defaultProfile},
	}
}

// LoadSeedFile reads a JSON array of SeedUser from path.
// Rows without a user id get a random one.
func LoadSeedFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading users file: %w", err)
	}

	var seed []SeedUser
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing users file: %w", err)
	}

	for i := range seed {
		if seed[i].User.ID == "" {
			seed[i].User.ID = uuid.NewString()
		}
	}

	return seed, nil
}

// validateSeedUser checks one row before it enters the table.
func validateSeedUser(s SeedUser) error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if s.User.Name == "" {
		return fmt.Errorf("user name is required")
	}
	return s.User.Validate()
}
