package repository

import (
	"context"

	"github.com/sakif/go-blog/internal/model"
)

// UserRepository is the credential store: username/password-hash pairs with
// a uniqueness constraint on username. Create must be an atomic
// check-and-insert (the constraint does the checking) so two concurrent
// registrations with the same username cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// PostRepository stores posts. List and GetByID join the author's username.
// Update touches title and body only — created and author_id are immutable.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, id int64, title, body string) error
	Delete(ctx context.Context, id int64) error
}
