// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses forms, renders templates, sets cookies
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services accept primitives and a context, return domain models and typed
// errors from internal/apperror, and know nothing about HTTP. The handler
// translates those errors into status codes, redirects, and re-rendered
// forms.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/go-blog/internal/apperror"
	"github.com/sakif/go-blog/internal/auth"
	"github.com/sakif/go-blog/internal/model"
	"github.com/sakif/go-blog/internal/repository"
)

// AuthService handles registration and login against the credential store.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository → read/write user records
//   - tokens     *auth.TokenService        → issue session tokens
//   - passwords  *auth.PasswordService     → bcrypt hashing/verification
//   - logger     *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account.
//
// Username is validated before password, so an empty form reports the
// username first. The uniqueness check is NOT done here — the repository's
// atomic insert surfaces apperror.ErrConflict ("User X is already
// registered.") and we pass it straight through as a recoverable,
// user-facing error.
//
// There is no auto-login: callers send the new user to the login form.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" {
		return nil, apperror.ValidationFailed("username", "Username is required.")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "Password is required.")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login checks credentials and, on success, issues a fresh session token.
//
// Lookup failure and hash mismatch return distinct messages ("Incorrect
// username." / "Incorrect password.") matching what the forms have always
// shown. The bcrypt comparison underneath is constant-time, so response
// timing doesn't leak how close a guess was.
//
// The handler owns the cookie: it clears any prior session cookie and sets
// the returned token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, "", apperror.InvalidCredentials("Incorrect username.")
		}
		return nil, "", fmt.Errorf("looking up user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, "", apperror.InvalidCredentials("Incorrect password.")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing session token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, token, nil
}
