// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a
// C compiler installed and cross-compilation becomes painful.
// modernc.org/sqlite is a pure Go translation of the SQLite C code — no C
// compiler needed, works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: the driver registers itself with database/sql
	// under the name "sqlite".
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and ensures the schema.
//
// dbPath examples:
//   - "data/blog.db" → file-based database (persistent)
//   - ":memory:"     → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and a ":memory:" database is
	// per-connection — a second pooled connection would see an empty DB.
	// A single connection sidesteps both.
	conn.SetMaxOpenConns(1)

	// Ping forces an immediate connection so a bad path or permissions
	// issue surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening —
	// important for a web server where multiple requests hit the DB.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// We need posts.author_id → users.id enforced.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema if it is missing.
//
// CREATE TABLE IF NOT EXISTS is idempotent, so this is safe on every start.
// The same schema also lives in migrations/ for cmd/migrate, which is the
// tool to reach for once ALTERs on a deployed database become necessary.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			title     TEXT NOT NULL,
			body      TEXT NOT NULL DEFAULT '',
			created   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			author_id INTEGER NOT NULL REFERENCES users(id)
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created);
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	return nil
}
