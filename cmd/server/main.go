// Package main is the entry point for the blog server.
//
// main's job is deliberately small: read configuration from the
// environment, build the logger, and hand off to internal/server. All
// actual logic lives in the imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/go-blog/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	templateDir, _ := filepath.Abs("web/templates")
	staticDir, _ := filepath.Abs("web/static")

	// DB_PATH overrides the default for deployments.
	// Example: DB_PATH=/var/lib/blog/prod.db
	dbPath := "data/blog.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	// Ensure the data directory exists (like `mkdir -p`).
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// SESSION_SECRET signs the session cookies. Generate one with:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	// The fallback keeps local development frictionless but must never
	// reach production — anyone who knows it can mint sessions.
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		logger.Warn("SESSION_SECRET not set — using the insecure development secret")
	}

	cfg := server.Config{
		Port:          port,
		TemplateDir:   templateDir,
		StaticDir:     staticDir,
		DBPath:        dbPath,
		SessionSecret: secret,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
