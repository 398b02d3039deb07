package auth

import (
	"context"
	"net/http"

	"github.com/sakif/go-blog/internal/model"
	"github.com/sakif/go-blog/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write the
// current-user value — no other package can collide with it.
type contextKey string

const currentUserKey contextKey = "currentUser"

// CurrentUser is the principal-resolving middleware. It runs on EVERY
// request, before any handler: it reads the session cookie, validates the
// token, and re-loads the full user record from the credential store.
//
// The request proceeds as anonymous (no user in the context) when:
//   - there is no session cookie
//   - the token is expired, tampered with, or otherwise invalid
//   - the user id no longer resolves to a row (account deleted)
//
// None of those are errors — anonymous is a normal state, and the DB
// re-read per request means a deleted user is never served stale identity.
func CurrentUser(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				// http.ErrNoCookie — just anonymous
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin is the access guard for protected routes. It must be
// composed AFTER CurrentUser: if the resolver left the request anonymous,
// the caller is redirected to the login page before the handler — and any
// side effect it would have — runs.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext retrieves the resolved current user from the request context.
//
// Returns (nil, false) if the request is anonymous.
//
// Usage in handlers:
//
//	user, ok := auth.UserFromContext(r.Context())
//	if !ok {
//	    // anonymous visitor
//	}
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(currentUserKey).(*model.User)
	return user, ok && user != nil
}

// SetSessionCookie stores a freshly issued token in the HttpOnly session
// cookie. Handlers call this after a successful login; issuing a new cookie
// replaces whatever session the client held before.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie. Safe to call whether or
// not a session existed — logout is idempotent.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
