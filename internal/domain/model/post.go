//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxPostTitleLen = 255
)

// PostStatus tracks the publication lifecycle of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusRemoved   PostStatus = "removed"
)

// Valid reports whether the post status is supported.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusRemoved:
		return true
	default:
		return false
	}
}

// ParsePostStatus normalizes a status string and reports whether it is supported.
func ParsePostStatus(value string) (PostStatus, bool) {
	status := PostStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// Post represents a platform post as seen by the console.
type Post struct {
	ID            string     `json:"id"             db:"id"`
	AuthorID      string     `json:"author_id"      db:"author_id"`
	Title         string     `json:"title"          db:"title"`
	Body          string     `json:"body"           db:"body"`
	Status        PostStatus `json:"status"         db:"status"`
	LikeCount     int        `json:"like_count"     db:"like_count"`
	CommentCount  int        `json:"comment_count"  db:"comment_count"`
	BookmarkCount int        `json:"bookmark_count" db:"bookmark_count"`
	CreatedAt     time.Time  `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"     db:"updated_at"`
}

// PostListOptions controls paging and filtering for listing posts.
// Sort supports "created_at", "like_count", "comment_count"; Dir "asc"/"desc".
type PostListOptions struct {
	Limit    int
	Offset   int
	Q        *string     // substring match on title (ILIKE)
	AuthorID *string     // exact match
	Status   *PostStatus // exact match
	Sort     string
	Dir      string
}

// UpdatePostRequest represents the console-editable fields of a post.
type UpdatePostRequest struct {
	Title  *string     `json:"title,omitempty"`
	Body   *string     `json:"body,omitempty"`
	Status *PostStatus `json:"status,omitempty"`
}

// Validate validates UpdatePostRequest.
func (r *UpdatePostRequest) Validate() error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxPostTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	if r.Status != nil && !r.Status.Valid() {
		return errors.New("status must be one of: draft, published, removed")
	}
	return nil
}
