package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/sakif/go-blog/internal/apperror"
	"github.com/sakif/go-blog/internal/model"
	"github.com/sakif/go-blog/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
// `var _ X = (*Y)(nil)` fails to compile if a method is missing, so a
// broken implementation is caught here rather than at a distant call site.
var _ repository.UserRepository = (*DB)(nil)

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint
// failure (extended result code 2067). The modernc driver returns a typed
// *sqlite.Error, so errors.As works through any wrapping.
func isUniqueViolation(err error) bool {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// Create inserts a new user row.
//
// ATOMIC CHECK-AND-INSERT:
// We do NOT "SELECT then INSERT" — between those two statements another
// request could insert the same username and both registrations would
// appear to succeed. Instead we rely on the UNIQUE constraint: the INSERT
// itself is the check, and exactly one of two racing inserts wins. The
// loser gets a constraint error here, translated to apperror.ErrConflict.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at)
		 VALUES (?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("User %s is already registered.", user.Username))
		}
		return fmt.Errorf("sqlite: creating user %q: %w", user.Username, err)
	}

	// LastInsertId returns the AUTOINCREMENT id SQLite assigned to the row.
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by username (login lookups).
// Returns apperror.ErrNotFound if no user has that username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("no user named %q", username),
			}
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}
