package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/go-blog/internal/apperror"
	"github.com/sakif/go-blog/internal/model"
	"github.com/sakif/go-blog/internal/repository"
)

// compile-time check that *DB implements repository.PostRepository
var _ repository.PostRepository = (*DB)(nil)

// Create inserts a new post and fills in the generated id and timestamp.
//
// POINTER RECEIVER ON THE MODEL:
// post is a *model.Post so the caller sees the assigned ID and Created
// after this returns. AuthorID must already be set by the caller.
func (db *DB) Create(ctx context.Context, post *model.Post) error {
	post.Created = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (title, body, created, author_id)
		 VALUES (?, ?, ?, ?)`,
		post.Title,
		post.Body,
		post.Created,
		post.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new post id: %w", err)
	}
	post.ID = id

	return nil
}

// GetByID retrieves a single post joined with its author's username.
// Returns apperror.ErrNotFound if no post exists with that id.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post

	err := db.conn.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.body, p.created, p.author_id, u.username
		 FROM posts p JOIN users u ON p.author_id = u.id
		 WHERE p.id = ?`,
		id,
	).Scan(
		&p.ID,
		&p.Title,
		&p.Body,
		&p.Created,
		&p.AuthorID,
		&p.AuthorUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}

	return &p, nil
}

// List retrieves all posts joined with author usernames, newest first.
// The index page shows everything — there is deliberately no pagination.
func (db *DB) List(ctx context.Context) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.body, p.created, p.author_id, u.username
		 FROM posts p JOIN users u ON p.author_id = u.id
		 ORDER BY p.created DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}

	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Body, &p.Created,
			&p.AuthorID, &p.AuthorUsername,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Update modifies title and body of an existing post.
// created and author_id are immutable and never part of the SET clause.
func (db *DB) Update(ctx context.Context, id int64, title, body string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, body = ? WHERE id = ?`,
		title,
		body,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", id, err)
	}

	// RowsAffected == 0 means the WHERE clause matched nothing → not found.
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Post", id)
	}

	return nil
}

// Delete removes a post by id.
// Same pattern as Update — check RowsAffected to detect "not found".
func (db *DB) Delete(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Post", id)
	}

	return nil
}
