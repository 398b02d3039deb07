package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/go-blog/internal/apperror"
	"github.com/sakif/go-blog/internal/auth"
	"github.com/sakif/go-blog/internal/model"
	"github.com/sakif/go-blog/internal/service"
)

// PostHandler serves the blog pages: index, create, update, delete.
//
// The create/update/delete routes are registered behind auth.RequireLogin,
// so by the time these handlers run a current user is guaranteed to be in
// the context. The ownership checks themselves live in the service layer.
type PostHandler struct {
	posts    *service.PostService
	renderer *Renderer
	logger   *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, renderer *Renderer, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:    posts,
		renderer: renderer,
		logger:   logger,
	}
}

// postID parses the {id} URL parameter. A non-numeric id is a dead link,
// reported the same way as a missing post.
func postID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: "Post id " + raw + " doesn't exist.",
		}
	}
	return id, nil
}

// HandleIndex shows all posts, newest first.
//
// HTTP: GET /
func (h *PostHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	h.renderer.Render(w, http.StatusOK, "index", viewData{
		Title: "Posts",
		User:  user,
		Posts: posts,
	})
}

// HandleCreateForm serves the empty new-post form.
//
// HTTP: GET /create (login required)
func (h *PostHandler) HandleCreateForm(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	h.renderer.Render(w, http.StatusOK, "create", viewData{Title: "New Post", User: user})
}

// HandleCreate processes a new-post submission.
//
// HTTP: POST /create (login required)
//
// On a validation failure the form is re-rendered with the submitted values
// still filled in, so the user doesn't lose a half-written body over a
// missing title.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	title := r.FormValue("title")
	body := r.FormValue("body")

	_, err := h.posts.Create(r.Context(), title, body, user.ID)
	if err != nil {
		if msg, ok := userMessage(err); ok {
			h.renderer.Render(w, http.StatusOK, "create", viewData{
				Title: "New Post",
				User:  user,
				Error: msg,
				Post:  &model.Post{Title: title, Body: body},
			})
			return
		}
		respondError(w, h.logger, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleUpdateForm serves the edit form, pre-filled with the post.
//
// HTTP: GET /{id}/update (login required)
//
// The GET is authorized exactly like the POST: fetching someone else's post
// for editing is 403, a missing one 404. The guard runs before the form is
// ever shown, not just before the save.
func (h *PostHandler) HandleUpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	post, err := h.posts.GetOwned(r.Context(), id, user.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.renderer.Render(w, http.StatusOK, "update", viewData{
		Title: "Edit \"" + post.Title + "\"",
		User:  user,
		Post:  post,
	})
}

// HandleUpdate processes an edit submission.
//
// HTTP: POST /{id}/update (login required)
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	title := r.FormValue("title")
	body := r.FormValue("body")

	_, err = h.posts.Update(r.Context(), id, title, body, user.ID)
	if err != nil {
		if msg, ok := userMessage(err); ok {
			h.renderer.Render(w, http.StatusOK, "update", viewData{
				Title: "Edit",
				User:  user,
				Error: msg,
				Post:  &model.Post{ID: id, Title: title, Body: body},
			})
			return
		}
		respondError(w, h.logger, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDelete removes a post.
//
// HTTP: POST /{id}/delete (login required)
//
// Delete has its own route and handler — it is never folded into update.
// There is no GET: deletion only happens via the form button on the edit
// page, and it redirects straight back to the index.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	if err := h.posts.Delete(r.Context(), id, user.ID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
