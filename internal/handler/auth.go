package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/go-blog/internal/auth"
	"github.com/sakif/go-blog/internal/service"
)

// AuthHandler serves the register/login/logout routes.
//
// COOKIES BELONG HERE:
// The AuthService issues and verifies tokens but never touches HTTP —
// setting and clearing the session cookie is this handler's job.
type AuthHandler struct {
	auth     *service.AuthService
	renderer *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, renderer *Renderer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     authSvc,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleRegisterForm serves the empty registration form.
//
// HTTP: GET /auth/register
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	h.renderer.Render(w, http.StatusOK, "register", viewData{Title: "Register", User: user})
}

// HandleRegister processes a registration submission.
//
// HTTP: POST /auth/register
//
// Success redirects to the login form — there is no auto-login. Validation
// failures and an already-taken username re-render the form with the
// message attached; nothing about the failure is an HTTP error.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	_, err := h.auth.Register(r.Context(), username, password)
	if err != nil {
		if msg, ok := userMessage(err); ok {
			user, _ := auth.UserFromContext(r.Context())
			h.renderer.Render(w, http.StatusOK, "register", viewData{
				Title: "Register",
				User:  user,
				Error: msg,
			})
			return
		}
		respondError(w, h.logger, err)
		return
	}

	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// HandleLoginForm serves the login form.
//
// HTTP: GET /auth/login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	h.renderer.Render(w, http.StatusOK, "login", viewData{Title: "Log In", User: user})
}

// HandleLogin processes a login submission.
//
// HTTP: POST /auth/login
//
// Setting the session cookie replaces whatever session the client held —
// prior session state is gone the moment the new cookie lands.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	_, token, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		if msg, ok := userMessage(err); ok {
			user, _ := auth.UserFromContext(r.Context())
			h.renderer.Render(w, http.StatusOK, "login", viewData{
				Title: "Log In",
				User:  user,
				Error: msg,
			})
			return
		}
		respondError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session and returns to the index.
//
// HTTP: GET /auth/logout
//
// Idempotent: clearing an absent cookie is a no-op, so a logged-out user
// hitting this twice just gets redirected twice.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
