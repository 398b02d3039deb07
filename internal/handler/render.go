// Package handler contains the HTTP request handlers for the blog.
//
// Handlers are the glue between HTTP and the service layer: they parse
// forms, call a service, and either redirect or render a template. Business
// rules live in internal/service; handlers only translate the typed errors
// coming back into status codes, redirects, or re-rendered forms.
package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sakif/go-blog/internal/apperror"
	"github.com/sakif/go-blog/internal/model"
)

// viewData is the payload every template receives.
//
// Error carries the one-shot message re-rendered on a form after a
// validation failure — the Go equivalent of a flashed message, except it is
// rendered in the same response instead of stashed for the next one (only
// failed submissions re-render; successes always redirect).
type viewData struct {
	Title string
	User  *model.User // resolved current user, nil when anonymous
	Error string
	Posts []model.Post
	Post  *model.Post
}

// Renderer holds the parsed templates, one entry per page, each compiled
// together with the shared base layout.
//
// Templates are parsed once at startup — parsing is expensive, executing is
// cheap, and a syntax error in any page fails the server at boot instead of
// at first request.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses base.html plus every other page under templateDir.
// Each page defines a "content" block that the base layout pulls in.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	base := filepath.Join(templateDir, "base.html")
	pages, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}

	templates := map[string]*template.Template{}
	for _, page := range pages {
		if filepath.Base(page) == "base.html" {
			continue
		}
		t, err := template.ParseFiles(base, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		logger:    logger,
	}, nil
}

// Render executes the named page template inside the base layout.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, data viewData) {
	t, ok := rd.templates[name]
	if !ok {
		rd.logger.Error("unknown template", slog.String("name", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Headers and status must be written before the body.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		// The status line is already sent — all we can do is log.
		rd.logger.Error("failed to render template",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}

// respondError maps a service error to a plain HTTP error response.
// Validation-class errors never come through here — handlers re-render the
// originating form for those. This is for the hard cases: missing post,
// ownership violation, and anything unexpected.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			http.Error(w, appErr.Message, http.StatusNotFound)
			return
		case errors.Is(err, apperror.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	// Unknown error — never leak internals to the client.
	logger.Error("unhandled error", slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// userMessage extracts the user-facing message from a recoverable error
// (validation, duplicate username, bad credentials) for form re-rendering.
func userMessage(err error) (string, bool) {
	recoverable := errors.Is(err, apperror.ErrValidation) ||
		errors.Is(err, apperror.ErrConflict) ||
		errors.Is(err, apperror.ErrInvalidCredentials)
	if !recoverable {
		return "", false
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
