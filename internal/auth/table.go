// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"fmt"
	"sort"

	"github.com/olegiv/contenthub/internal/model"
)

// dummySecretSource is compared against when the email is unknown so that
// lookups for missing and present emails cost the same.
const dummySecretSource = "contenthub-dummy-password"

type tableEntry struct {
	secret string
	user   model.User
}

// Table is the immutable set of known users keyed by login email.
// It is safe for concurrent use because it is never written after NewTable.
type Table struct {
	entries  map[string]tableEntry
	comparer Comparer
	dummy    string
}

// NewTable builds a Table from seed rows, preparing each password with the
// comparer selected by mode.
func NewTable(seed []SeedUser, mode PasswordMode) (*Table, error) {
	comparer, err := NewComparer(mode)
	if err != nil {
		return nil, err
	}
	return NewTableWithComparer(seed, comparer)
}

// NewTableWithComparer builds a Table using an explicit Comparer.
func NewTableWithComparer(seed []SeedUser, comparer Comparer) (*Table, error) {
	t := &Table{
		entries:  make(map[string]tableEntry, len(seed)),
		comparer: comparer,
	}

	for i, s := range seed {
		if err := validateSeedUser(s); err != nil {
			return nil, fmt.Errorf("users row %d (%s): %w", i, s.Email, err)
		}
		if _, dup := t.entries[s.Email]; dup {
			return nil, fmt.Errorf("users row %d: duplicate login email %q", i, s.Email)
		}

		secret, err := comparer.Prepare(s.Password)
		if err != nil {
			return nil, fmt.Errorf("preparing password for %s: %w", s.Email, err)
		}
		t.entries[s.Email] = tableEntry{secret: secret, user: s.User}
	}

	dummy, err := comparer.Prepare(dummySecretSource)
	if err != nil {
		return nil, fmt.Errorf("preparing dummy secret: %w", err)
	}
	t.dummy = dummy

	return t, nil
}

// VerifyCredentials implements Verifier. The email match is exact.
func (t *Table) VerifyCredentials(email, password string) (model.User, bool) {
	entry, ok := t.entries[email]
	if !ok {
		_ = t.comparer.Compare(password, t.dummy)
		return model.User{}, false
	}
	if !t.comparer.Compare(password, entry.secret) {
		return model.User{}, false
	}
	return entry.user, true
}

// Len returns the number of known users.
func (t *Table) Len() int {
	return len(t.entries)
}

// Account pairs a login email with its profile.
type Account struct {
	LoginEmail string     `json:"loginEmail"`
	User       model.User `json:"user"`
}

// Accounts returns every known account sorted by login email.
func (t *Table) Accounts() []Account {
	accounts := make([]Account, 0, len(t.entries))
	for email, e := range t.entries {
		accounts = append(accounts, Account{LoginEmail: email, User: e.user})
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].LoginEmail < accounts[j].LoginEmail
	})
	return accounts
}

var _ Verifier = (*Table)(nil)
