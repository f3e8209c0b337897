// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cli implements the contenthub subcommands that drive the session
// from a terminal. The session slot lives in the configured storage, so it
// survives between invocations.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/olegiv/contenthub/internal/auth"
	"github.com/olegiv/contenthub/internal/session"
	"github.com/olegiv/contenthub/internal/store"
)

// ErrUnknownCommand is returned by Run for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Commands lists the commands Run accepts.
var Commands = []string{"login", "logout", "whoami", "status", "users", "events"}

// Directory lists the known users.
type Directory interface {
	Accounts() []auth.Account
}

// App runs one command against a session manager.
type App struct {
	sessions *session.Manager
	users    Directory
	events   *store.Queries
	out      io.Writer
	in       *bufio.Reader
}

// NewApp creates an App. db holds the event log.
func NewApp(sessions *session.Manager, users Directory, db *sql.DB) *App {
	return &App{
		sessions: sessions,
		users:    users,
		events:   store.New(db),
		out:      os.Stdout,
		in:       bufio.NewReader(os.Stdin),
	}
}

// SetIO replaces stdin and stdout.
func (a *App) SetIO(in io.Reader, out io.Writer) {
	a.in = bufio.NewReader(in)
	a.out = out
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: none given", ErrUnknownCommand)
	}

	switch args[0] {
	case "login":
		return a.Login(ctx, args[1:])
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "status":
		return a.Status(ctx)
	case "users":
		return a.Users()
	case "events":
		return a.Events(ctx, args[1:])
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

// Login checks credentials given as flags, prompting for what is missing.
func (a *App) Login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password (prompted without echo when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = GetSimpleText(a.in, "Email", a.out); err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
	}
	if *password == "" {
		if *password, err = GetPassword(a.out); err != nil {
			return err
		}
	}

	user, err := a.sessions.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Name, user.Role)
	return err
}

// Logout removes the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, "Logged out")
	return err
}

// WhoAmI prints the current user record.
func (a *App) WhoAmI(ctx context.Context) error {
	user := a.sessions.CurrentUser(ctx)
	if user == nil {
		_, err := fmt.Fprintln(a.out, "Not logged in")
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(user)
}

// Status prints anonymous or authenticated.
func (a *App) Status(ctx context.Context) error {
	_, err := fmt.Fprintln(a.out, a.sessions.State(ctx))
	return err
}

// Users prints the known users table.
func (a *App) Users() error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LOGIN\tID\tNAME\tROLE")
	for _, acc := range a.users.Accounts() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", acc.LoginEmail, acc.User.ID, acc.User.Name, acc.User.Role)
	}
	return tw.Flush()
}

// Events prints the latest audit events, newest first.
func (a *App) Events(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(a.out)
	limit := fs.Int("limit", 20, "number of events to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", *limit)
	}

	events, err := a.events.ListEvents(ctx, store.ListEventsParams{Limit: int64(*limit)})
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}
	if len(events) == 0 {
		_, err := fmt.Fprintln(a.out, "No events")
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tLEVEL\tCATEGORY\tMESSAGE\tMETADATA")
	for _, ev := range events {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			ev.CreatedAt.UTC().Format("2006-01-02 15:04:05"), ev.Level, ev.Category, ev.Message, ev.Metadata)
	}
	return tw.Flush()
}
