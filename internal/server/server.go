// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer — the composition root where the whole
// dependency chain is assembled:
//
//	sqlite.DB → services → handlers → routes
//
// main.go stays minimal (read config, start the server); everything that
// needs to know about everything else lives here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/go-blog/internal/auth"
	"github.com/sakif/go-blog/internal/handler"
	"github.com/sakif/go-blog/internal/middleware"
	sqliteRepo "github.com/sakif/go-blog/internal/repository/sqlite"
	"github.com/sakif/go-blog/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port          int
	TemplateDir   string
	StaticDir     string
	DBPath        string
	SessionSecret string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph and registers all routes.
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete sqlite.DB), handlers get services (not
// repositories), and nothing below the handler layer sees HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// ServeHTTP makes Server usable directly with httptest in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /                  → all posts, newest first
//	GET  /static/*          → stylesheet and friends
//	GET/POST /auth/register → registration form / submit
//	GET/POST /auth/login    → login form / submit
//	GET  /auth/logout       → clear session
//	GET/POST /create        → new post (login required)
//	GET/POST /{id}/update   → edit post (login required, author only)
//	POST /{id}/delete       → delete post (login required, author only)
//
// MIDDLEWARE ORDER MATTERS:
// RequestID/RealIP/Recoverer and the request logger run first on every
// request. auth.CurrentUser runs next — also on every request — so every
// handler (and template) can see who is asking. auth.RequireLogin wraps
// only the protected group and fires before any handler side effect.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	postService := service.NewPostService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, renderer, s.logger)
	postHandler := handler.NewPostHandler(postService, renderer, s.logger)

	// Global middleware — every request, in order.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Session principal resolution happens before any handler. Anonymous
	// requests pass straight through; the guard below is what blocks them.
	s.router.Use(auth.CurrentUser(tokens, s.db))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	s.router.Get("/", postHandler.HandleIndex)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/register", authHandler.HandleRegisterForm)
		r.Post("/register", authHandler.HandleRegister)
		r.Get("/login", authHandler.HandleLoginForm)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/logout", authHandler.HandleLogout)
	})

	// Protected routes: the guard redirects anonymous callers to the
	// login page before any of these handlers run.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin)
		r.Get("/create", postHandler.HandleCreateForm)
		r.Post("/create", postHandler.HandleCreate)
		r.Get("/{id}/update", postHandler.HandleUpdateForm)
		r.Post("/{id}/update", postHandler.HandleUpdate)
		r.Post("/{id}/delete", postHandler.HandleDelete)
	})

	return nil
}

// Close releases the server's database connection. Tests use this; the
// normal path closes it during Start's shutdown sequence.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server and handles graceful shutdown:
//  1. Stop accepting new connections on SIGINT/SIGTERM
//  2. Wait up to 30s for in-flight requests to finish
//  3. Close the database connection
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
