// Package auth provides session token generation and validation.
//
// SESSION FLOW OVERVIEW:
// 1. User submits the login form with a valid username/password
// 2. Server issues a signed session token and stores it in an HttpOnly cookie
// 3. On every request, middleware reads the cookie, validates the token,
//    and re-resolves the user from the database
// 4. Logout clears the cookie; an expired or garbage token just means
//    the request is anonymous
//
// The token is opaque to the client. It carries nothing but the user id —
// username and the rest of the user record are ALWAYS re-read from storage
// per request, so a deleted user is logged out on their next request with
// no server-side session state to clean up.
//
// WHY A SIGNED TOKEN (JWT)?
// The server doesn't need a sessions table: the HMAC signature ensures
// nobody can mint or tamper with a token without the secret key. That keeps
// the whole system single-process and stateless, which is all this app needs.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionLifetime is how long a login lasts before the user must sign in again.
const sessionLifetime = 24 * time.Hour

// SessionCookie is the name of the HttpOnly cookie holding the token.
const SessionCookie = "session"

// TokenService handles session token creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations — rotate it and every existing
// session is invalidated, which is exactly the behaviour you want after a
// leak.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: SESSION_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the token payload. jwt.RegisteredClaims covers the standard
// fields; Subject carries the user id, ID (jti) a unique token identifier.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new session token for the given user id.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for a
// single-server deployment where signer and verifier are the same process.
// Each token gets a random uuid as its jti claim so two logins by the same
// user in the same second still produce distinct tokens.
func (s *TokenService) Generate(userID int64) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
			Issuer:    "go-blog",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token string.
// Returns the user id (stored in the "sub" claim) if the token is valid.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches "go-blog" (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("go-blog"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token subject is not a user id")
	}

	return userID, nil
}
