// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// WHY PasswordHash AND NOT Password?
// We never store (or even hold on to) the raw password. Registration hashes
// it with bcrypt immediately and only the hash is persisted. The hash string
// is self-contained — it embeds the salt and cost, so no extra columns are
// needed to verify a login attempt.
//
// Username is immutable after creation and UNIQUE at the storage layer.
// The constraint is the source of truth: the service layer treats a
// violation as a normal "already registered" outcome, not a crash.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"` // never serialized
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
