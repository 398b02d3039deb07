package model

import "time"

// Post represents a blog post owned by exactly one user.
//
// AuthorID is fixed at creation and never reassigned — updates touch only
// Title and Body. Created is set at insert time and immutable after that;
// the index page orders by it, newest first.
//
// AuthorUsername is not a column on the post table. List/Get queries join
// the users table so templates can show "by <username>" without a second
// query per post. It is left empty when a post has not been through that
// join (e.g. right after Create).
type Post struct {
	ID             int64     `json:"id"       db:"id"`
	Title          string    `json:"title"    db:"title"`
	Body           string    `json:"body"     db:"body"`
	Created        time.Time `json:"created"  db:"created"`
	AuthorID       int64     `json:"authorId" db:"author_id"`
	AuthorUsername string    `json:"authorUsername,omitempty"`
}
