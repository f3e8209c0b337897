// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/contenthub/internal/auth"
	"github.com/olegiv/contenthub/internal/cli"
	"github.com/olegiv/contenthub/internal/config"
	"github.com/olegiv/contenthub/internal/handler"
	"github.com/olegiv/contenthub/internal/logging"
	"github.com/olegiv/contenthub/internal/middleware"
	"github.com/olegiv/contenthub/internal/session"
	"github.com/olegiv/contenthub/internal/storage"
	"github.com/olegiv/contenthub/internal/store"
	"github.com/olegiv/contenthub/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ContentHub - session service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options] [command]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Commands:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  serve      Run the HTTP server (default)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  %s\n", strings.Join(cli.Commands, ", "))
		_, _ = fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTHUB_SESSION_SECRET  Cookie and CSRF key (serve only, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTHUB_DB_PATH         SQLite database path (default: ./data/contenthub.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTHUB_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTHUB_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTHUB_STORAGE         Session storage: memory|sqlite|redis (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTHUB_REDIS_URL       Redis URL (required for redis storage)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTHUB_USERS_FILE      JSON file replacing the built-in users\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(flag.Args(), info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(args []string, info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	slog.Debug("opening database", "path", cfg.DBPath)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	// WARN and ERROR records also go to the event log.
	logger = slog.New(logging.NewEventLogHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}), db))
	slog.SetDefault(logger)

	users, err := loadUsers(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	slot, err := storage.Open(ctx, storage.Config{
		Backend:  cfg.Storage,
		RedisURL: cfg.RedisURL,
		Prefix:   cfg.StoragePrefix,
	}, db)
	if err != nil {
		return fmt.Errorf("opening session storage: %w", err)
	}
	if c, ok := slot.(storage.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	if mem, ok := slot.(*storage.MemoryStore); ok {
		defer func() {
			stats := mem.Stats()
			slog.Debug("memory storage stats",
				"hits", stats.Hits, "misses", stats.Misses, "sets", stats.Sets,
				"deletes", stats.Deletes, "items", stats.Items)
		}()
	}

	command := "serve"
	if len(args) > 0 {
		command = args[0]
	}

	if command == "serve" {
		return serve(cfg, db, users, slot, info)
	}

	sessions := session.New(users, slot, session.Options{
		Key:         cfg.SessionKey,
		LoginDelay:  cfg.LoginDelay,
		LogoutDelay: cfg.LogoutDelay,
		Logger:      logger,
	})
	return cli.NewApp(sessions, users, db).Run(ctx, args)
}

// loadUsers builds the known-users table from the users file or the
// built-in accounts.
func loadUsers(cfg *config.Config) (*auth.Table, error) {
	seed := auth.DefaultSeed()
	if cfg.UsersFile != "" {
		var err error
		if seed, err = auth.LoadSeedFile(cfg.UsersFile); err != nil {
			return nil, err
		}
	}

	users, err := auth.NewTable(seed, auth.PasswordMode(cfg.PasswordMode))
	if err != nil {
		return nil, fmt.Errorf("building users table: %w", err)
	}
	slog.Debug("known users loaded", "count", users.Len(), "mode", cfg.PasswordMode)
	return users, nil
}

func serve(cfg *config.Config, db *sql.DB, users *auth.Table, slot storage.Storage, info version.Info) error {
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	// Each browser gets its own session slot inside its cookie session.
	cookieSessions := session.NewCookieSessions(db, cfg.IsDevelopment(), cfg.SessionLifetime)
	sessions := session.New(users, storage.NewCookieStore(cookieSessions), session.Options{
		Key:         cfg.SessionKey,
		LoginDelay:  cfg.LoginDelay,
		LogoutDelay: cfg.LogoutDelay,
	})

	csrf := middleware.CSRF(middleware.DefaultCSRFConfig(
		[]byte(cfg.SessionSecret), cfg.IsDevelopment(), strconv.Itoa(cfg.ServerPort)))

	router := handler.NewRouter(handler.RouterConfig{
		DB:             db,
		CookieSessions: cookieSessions,
		Sessions:       sessions,
		Users:          users,
		Slot:           slot,
		CSRF:           csrf,
		IsDevelopment:  cfg.IsDevelopment(),
		Version:        info.Version,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
