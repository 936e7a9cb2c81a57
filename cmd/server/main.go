// Package main is the entry point for the Humor Hub API server.
//
// The main package stays minimal. Its job is to:
//  1. Read configuration (config file, .env, environment)
//  2. Create dependencies (logger, store, token verifier, captioning client)
//  3. Start the server
//
// All actual logic lives in internal/.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/config"
	"github.com/sakif/humor-hub/internal/pipeline"
	"github.com/sakif/humor-hub/internal/repository"
	"github.com/sakif/humor-hub/internal/repository/postgres"
	"github.com/sakif/humor-hub/internal/repository/sqlite"
	"github.com/sakif/humor-hub/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: configs/config.yaml)")
	flag.Parse()

	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	// === 3. OPEN THE STORE ===
	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Error("failed to open database",
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 4. TOKEN VERIFICATION ===
	// With the project's JWT secret, tokens are checked locally. Without it,
	// every token costs one round trip to the hosted auth service.
	verifier, err := newVerifier(cfg.Supabase, logger)
	if err != nil {
		store.Close()
		logger.Error("failed to configure auth", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 5. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, server.Deps{
		Store:    store,
		Verifier: verifier,
		API:      pipeline.NewClient(cfg.Pipeline.BaseURL, cfg.Pipeline.Timeout),
		Uploader: pipeline.NewUploader(cfg.Pipeline.Timeout),
	}, logger)
	if err != nil {
		store.Close()
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(cfg config.DatabaseConfig) (repository.Store, error) {
	if cfg.Driver == config.DriverPostgres {
		db, err := postgres.New(cfg.URL)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	// os.MkdirAll is a no-op when the directory already exists.
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sqlite.New(cfg.Path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func newVerifier(cfg config.SupabaseConfig, logger *slog.Logger) (auth.Verifier, error) {
	if cfg.JWTSecret != "" {
		logger.Info("verifying access tokens locally")
		tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.Issuer)
		if err != nil {
			return nil, err
		}
		return tokens, nil
	}

	ref := cfg.ProjectRef()
	custom := ""
	if ref == "" {
		custom = strings.TrimSuffix(cfg.URL, "/") + "/auth/v1"
	}
	logger.Info("verifying access tokens with the hosted auth service", slog.String("url", cfg.URL))
	return auth.NewGoTrueVerifier(ref, cfg.AnonKey, custom), nil
}
