package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/sakif/go-blog/internal/apperror"
	"github.com/sakif/go-blog/internal/model"
)

// mockPostRepo implements repository.PostRepository in memory.
// The service doesn't know or care which implementation it gets —
// that's the point of the interface.
type mockPostRepo struct {
	posts  map[int64]*model.Post
	nextID int64
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[int64]*model.Post)}
}

func (m *mockPostRepo) Create(_ context.Context, post *model.Post) error {
	m.nextID++
	post.ID = m.nextID
	post.Created = time.Now()
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id int64) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("Post", id)
	}
	result := *p
	return &result, nil
}

func (m *mockPostRepo) List(_ context.Context) ([]model.Post, error) {
	result := make([]model.Post, 0, len(m.posts))
	for _, p := range m.posts {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Created.After(result[j].Created)
	})
	return result, nil
}

func (m *mockPostRepo) Update(_ context.Context, id int64, title, body string) error {
	p, ok := m.posts[id]
	if !ok {
		return apperror.NotFound("Post", id)
	}
	p.Title = title
	p.Body = body
	return nil
}

func (m *mockPostRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return apperror.NotFound("Post", id)
	}
	delete(m.posts, id)
	return nil
}

func newTestPostService(t *testing.T) (*PostService, *mockPostRepo) {
	t.Helper()
	repo := newMockPostRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewPostService(repo, logger), repo
}

func TestPostCreate_Success(t *testing.T) {
	svc, _ := newTestPostService(t)

	before := time.Now()
	post, err := svc.Create(context.Background(), "T", "B", 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if post.ID == 0 {
		t.Error("expected post to have an ID")
	}
	if post.Title != "T" || post.Body != "B" || post.AuthorID != 1 {
		t.Errorf("post = %+v, want title T, body B, author 1", post)
	}
	if post.Created.Before(before) {
		t.Errorf("Created = %v, want >= call time %v", post.Created, before)
	}
}

func TestPostCreate_EmptyTitle(t *testing.T) {
	svc, repo := newTestPostService(t)

	for _, title := range []string{"", "   "} {
		_, err := svc.Create(context.Background(), title, "x", 1)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Create(title=%q) error = %v, want ErrValidation", title, err)
		}
	}

	// No row may be inserted on a validation failure.
	if len(repo.posts) != 0 {
		t.Errorf("repo has %d posts after failed creates, want 0", len(repo.posts))
	}
}

func TestPostCreate_EmptyBodyIsFine(t *testing.T) {
	svc, _ := newTestPostService(t)

	if _, err := svc.Create(context.Background(), "title only", "", 1); err != nil {
		t.Fatalf("Create() with empty body error = %v", err)
	}
}

func TestPostList_NewPostMovesToFront(t *testing.T) {
	svc, _ := newTestPostService(t)

	svc.Create(context.Background(), "first", "", 1)
	time.Sleep(time.Millisecond)
	latest, _ := svc.Create(context.Background(), "second", "", 1)

	posts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("List() returned %d posts, want 2", len(posts))
	}
	if posts[0].ID != latest.ID {
		t.Errorf("posts[0] = %q, want the newest post first", posts[0].Title)
	}
}

func TestPostGet_NotFound(t *testing.T) {
	svc, _ := newTestPostService(t)

	_, err := svc.Get(context.Background(), 123)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestGetOwned_Author(t *testing.T) {
	svc, _ := newTestPostService(t)
	post, _ := svc.Create(context.Background(), "mine", "", 1)

	got, err := svc.GetOwned(context.Background(), post.ID, 1)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if got.ID != post.ID {
		t.Errorf("GetOwned() ID = %d, want %d", got.ID, post.ID)
	}
}

func TestGetOwned_NonAuthorIsForbidden(t *testing.T) {
	svc, _ := newTestPostService(t)
	post, _ := svc.Create(context.Background(), "mine", "", 1)

	_, err := svc.GetOwned(context.Background(), post.ID, 2)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("GetOwned() error = %v, want ErrForbidden", err)
	}
}

func TestGetOwned_MissingPostIsNotFound(t *testing.T) {
	svc, _ := newTestPostService(t)

	// Missing post reports NotFound, not Forbidden — the two cases stay
	// distinguishable for the HTTP layer (404 vs 403).
	_, err := svc.GetOwned(context.Background(), 999, 1)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetOwned() error = %v, want ErrNotFound", err)
	}
}

func TestPostUpdate_Success(t *testing.T) {
	svc, repo := newTestPostService(t)
	post, _ := svc.Create(context.Background(), "before", "old", 1)

	updated, err := svc.Update(context.Background(), post.ID, "after", "new", 1)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "after" || updated.Body != "new" {
		t.Errorf("updated = (%q, %q), want (after, new)", updated.Title, updated.Body)
	}

	stored := repo.posts[post.ID]
	if stored.AuthorID != 1 {
		t.Errorf("AuthorID changed to %d", stored.AuthorID)
	}
	if !stored.Created.Equal(post.Created) {
		t.Errorf("Created changed from %v to %v", post.Created, stored.Created)
	}
}

func TestPostUpdate_EmptyTitle(t *testing.T) {
	svc, repo := newTestPostService(t)
	post, _ := svc.Create(context.Background(), "keep", "body", 1)

	_, err := svc.Update(context.Background(), post.ID, "", "new body", 1)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() error = %v, want ErrValidation", err)
	}

	if repo.posts[post.ID].Title != "keep" {
		t.Error("post was modified despite the validation failure")
	}
}

func TestPostUpdate_NonAuthor(t *testing.T) {
	svc, repo := newTestPostService(t)
	post, _ := svc.Create(context.Background(), "original", "body", 1)

	_, err := svc.Update(context.Background(), post.ID, "hijacked", "x", 2)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update() error = %v, want ErrForbidden", err)
	}

	// The underlying post must be unchanged.
	if repo.posts[post.ID].Title != "original" {
		t.Error("non-author update modified the post")
	}
}

func TestPostDelete_Success(t *testing.T) {
	svc, repo := newTestPostService(t)
	post, _ := svc.Create(context.Background(), "doomed", "", 1)

	if err := svc.Delete(context.Background(), post.ID, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := repo.posts[post.ID]; ok {
		t.Error("post still present after Delete()")
	}
}

func TestPostDelete_NonAuthor(t *testing.T) {
	svc, repo := newTestPostService(t)
	post, _ := svc.Create(context.Background(), "safe", "", 1)

	err := svc.Delete(context.Background(), post.ID, 2)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() error = %v, want ErrForbidden", err)
	}
	if _, ok := repo.posts[post.ID]; !ok {
		t.Error("post was deleted by a non-author")
	}
}

func TestPostDelete_NotFound(t *testing.T) {
	svc, _ := newTestPostService(t)

	err := svc.Delete(context.Background(), 999, 1)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
