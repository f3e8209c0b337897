// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/contenthub/internal/model"
)

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	require.Len(t, seed, 4)

	byEmail := make(map[string]SeedUser)
	for _, s := range seed {
		byEmail[s.Email] = s
	}

	assert.Equal(t, model.RoleAdmin, byEmail["admin@example.com"].User.Role)
	assert.Equal(t, model.RoleEditor, byEmail["editor@example.com"].User.Role)
	assert.Equal(t, "u-002", byEmail["editor@example.com"].User.ID)
	assert.Equal(t, model.RoleContributor, byEmail["contributor@example.com"].User.Role)
	assert.Equal(t, "Jamal Williams", byEmail["contributor@example.com"].User.Name)
	assert.Equal(t, "demo123", byEmail["demo@example.com"].Password)
	assert.Equal(t, "u-001", byEmail["demo@example.com"].User.ID)
}

func TestTable_VerifyCredentials(t *testing.T) {
	for _, mode := range []PasswordMode{PasswordModePlaintext, PasswordModeArgon2} {
		t.Run(string(mode), func(t *testing.T) {
			table, err := NewTable(DefaultSeed(), mode)
			require.NoError(t, err)
			require.Equal(t, 4, table.Len())

			for _, s := range DefaultSeed() {
				user, ok := table.VerifyCredentials(s.Email, s.Password)
				assert.True(t, ok, "login %s", s.Email)
				assert.Equal(t, s.User, user)
			}

			tests := []struct {
				name     string
				email    string
				password string
			}{
				{"wrong password", "admin@example.com", "wrong"},
				{"unknown email", "nobody@example.com", "password123"},
				{"email case differs", "Admin@example.com", "password123"},
				{"profile email is not a login", "alex.johnson@example.com", "password123"},
				{"empty", "", ""},
			}
			for _, tt := range tests {
				user, ok := table.VerifyCredentials(tt.email, tt.password)
				assert.False(t, ok, tt.name)
				assert.Equal(t, model.User{}, user, tt.name)
			}
		})
	}
}

func TestTable_Argon2StoresHashes(t *testing.T) {
	table, err := NewTable(DefaultSeed(), PasswordModeArgon2)
	require.NoError(t, err)

	for email, e := range table.entries {
		assert.True(t, IsArgon2Hash(e.secret), "secret for %s is not hashed", email)
	}
}

func TestTable_Argon2KeepsPrehashedSecret(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	seed := []SeedUser{{
		Email:    "ops@example.com",
		Password: hash,
		User:     model.User{ID: "u-100", Name: "Ops", Role: model.RoleEditor},
	}}

	table, err := NewTable(seed, PasswordModeArgon2)
	require.NoError(t, err)

	_, ok := table.VerifyCredentials("ops@example.com", "s3cret")
	assert.True(t, ok)
}

func TestTable_Argon2WarnsOnOutdatedHash(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })

	// "changeme" hashed with older parameters.
	legacy := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"
	seed := []SeedUser{{
		Email:    "ops@example.com",
		Password: legacy,
		User:     model.User{ID: "u-100", Name: "Ops", Role: model.RoleEditor},
	}}

	table, err := NewTable(seed, PasswordModeArgon2)
	require.NoError(t, err)

	_, ok := table.VerifyCredentials("ops@example.com", "changeme")
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "seed password hash uses outdated parameters")
	assert.Contains(t, buf.String(), "category=config")
}

func TestNewTable_Rejects(t *testing.T) {
	valid := model.User{ID: "u-1", Name: "A", Role: model.RoleAdmin}

	tests := []struct {
		name string
		seed []SeedUser
	}{
		{"duplicate email", []SeedUser{
			{Email: "a@example.com", Password: "x", User: valid},
			{Email: "a@example.com", Password: "y", User: valid},
		}},
		{"bad email", []SeedUser{{Email: "not-an-email", Password: "x", User: valid}}},
		{"empty password", []SeedUser{{Email: "a@example.com", User: valid}}},
		{"missing name", []SeedUser{{Email: "a@example.com", Password: "x", User: model.User{ID: "u-1", Role: model.RoleAdmin}}}},
		{"unknown role", []SeedUser{{Email: "a@example.com", Password: "x", User: model.User{ID: "u-1", Name: "A", Role: "Owner"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.seed, PasswordModePlaintext)
			assert.Error(t, err)
		})
	}
}

func TestNewTable_UnknownMode(t *testing.T) {
	_, err := NewTable(DefaultSeed(), PasswordMode("md5"))
	assert.Error(t, err)
}

func TestTable_Accounts(t *testing.T) {
	table, err := NewTable(DefaultSeed(), PasswordModePlaintext)
	require.NoError(t, err)

	accounts := table.Accounts()
	require.Len(t, accounts, 4)

	want := []string{"admin@example.com", "contributor@example.com", "demo@example.com", "editor@example.com"}
	for i, a := range accounts {
		assert.Equal(t, want[i], a.LoginEmail)
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	content := `[
		{"email": "chief@example.com", "password": "pw", "user": {"id": "c-1", "name": "Chief", "role": "Admin", "createdAt": "2024-02-01T10:00:00Z"}},
		{"email": "writer@example.com", "password": "pw2", "user": {"name": "Writer", "role": "Contributor", "createdAt": "2024-02-02T10:00:00Z"}}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, seed, 2)

	assert.Equal(t, "c-1", seed[0].User.ID)
	assert.NotEmpty(t, seed[1].User.ID, "missing id should be generated")
	assert.Equal(t, model.RoleContributor, seed[1].User.Role)

	table, err := NewTable(seed, PasswordModePlaintext)
	require.NoError(t, err)
	user, ok := table.VerifyCredentials("writer@example.com", "pw2")
	assert.True(t, ok)
	assert.Equal(t, "Writer", user.Name)
}

func TestLoadSeedFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSeedFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	badRole := filepath.Join(dir, "bad-role.json")
	require.NoError(t, os.WriteFile(badRole, []byte(`[{"email":"a@example.com","password":"x","user":{"name":"A","role":"Root"}}]`), 0o600))
	_, err = LoadSeedFile(badRole)
	assert.ErrorIs(t, err, model.ErrUnknownRole)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`{not json`), 0o600))
	_, err = LoadSeedFile(garbage)
	assert.Error(t, err)
}
