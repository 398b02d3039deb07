package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/go-blog/internal/apperror"
	"github.com/sakif/go-blog/internal/model"
	"github.com/sakif/go-blog/internal/repository"
)

// PostService handles business logic for blog posts.
//
// Every mutation on an existing post goes through GetOwned first — the
// read-before-write is what enforces ownership. The repository layer only
// knows ids; authorization lives here.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		logger: logger,
	}
}

// List returns all posts, newest first, each joined with its author's username.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Get retrieves a post by id.
// Returns apperror.ErrNotFound (mapped to 404) if the post doesn't exist.
func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOwned retrieves a post and verifies the current user is its author.
//
// The order matters: a missing post is NotFound (404) and an existing post
// by someone else is Forbidden (403). The two cases stay distinguishable —
// that's the behaviour the routes have always had.
//
// Every update and delete MUST go through here before touching the row.
func (s *PostService) GetOwned(ctx context.Context, id, currentUserID int64) (*model.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != currentUserID {
		return nil, apperror.Forbidden(fmt.Sprintf("post %d belongs to another user", id))
	}

	return post, nil
}

// Create validates and saves a new post authored by authorID.
//
// Title must be non-empty (blank-only counts as empty); body may be empty.
// The check lives here at the service boundary, not in the schema.
func (s *PostService) Create(ctx context.Context, title, body string, authorID int64) (*model.Post, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperror.ValidationFailed("title", "Title is required.")
	}

	post := &model.Post{
		Title:    title,
		Body:     body,
		AuthorID: authorID,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.Int64("authorID", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("id", post.ID),
		slog.Int64("authorID", authorID),
	)

	return post, nil
}

// Update modifies title and body of a post owned by currentUserID.
// created and author_id are never touched.
func (s *PostService) Update(ctx context.Context, id int64, title, body string, currentUserID int64) (*model.Post, error) {
	post, err := s.GetOwned(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		return nil, apperror.ValidationFailed("title", "Title is required.")
	}

	if err := s.repo.Update(ctx, id, title, body); err != nil {
		s.logger.Error("failed to update post",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating post %d: %w", id, err)
	}

	post.Title = title
	post.Body = body

	s.logger.Info("post updated", slog.Int64("id", id))

	return post, nil
}

// Delete removes a post owned by currentUserID.
func (s *PostService) Delete(ctx context.Context, id, currentUserID int64) error {
	if _, err := s.GetOwned(ctx, id, currentUserID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete post",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting post %d: %w", id, err)
	}

	s.logger.Info("post deleted", slog.Int64("id", id))

	return nil
}
