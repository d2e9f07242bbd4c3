//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// CommentStatus tracks the moderation lifecycle of a comment.
type CommentStatus string

const (
	CommentStatusVisible CommentStatus = "visible"
	CommentStatusHidden  CommentStatus = "hidden"
	CommentStatusRemoved CommentStatus = "removed"
)

// Valid reports whether the comment status is supported.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusVisible, CommentStatusHidden, CommentStatusRemoved:
		return true
	default:
		return false
	}
}

// ParseCommentStatus normalizes a status string and reports whether it is supported.
func ParseCommentStatus(value string) (CommentStatus, bool) {
	status := CommentStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// Comment represents a platform comment as seen by the console.
type Comment struct {
	ID        string        `json:"id"         db:"id"`
	PostID    string        `json:"post_id"    db:"post_id"`
	AuthorID  string        `json:"author_id"  db:"author_id"`
	Body      string        `json:"body"       db:"body"`
	Status    CommentStatus `json:"status"     db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// CommentListOptions controls paging and filtering for listing comments.
type CommentListOptions struct {
	Limit    int
	Offset   int
	PostID   *string        // exact match
	AuthorID *string        // exact match
	Status   *CommentStatus // exact match
	Sort     string         // allowed: "created_at"
	Dir      string         // allowed: "asc", "desc"
}

// UpdateCommentRequest represents the console-editable fields of a comment.
type UpdateCommentRequest struct {
	Status *CommentStatus `json:"status,omitempty"`
}

// Validate validates UpdateCommentRequest.
func (r *UpdateCommentRequest) Validate() error {
	if r.Status != nil && !r.Status.Valid() {
		return errors.New("status must be one of: visible, hidden, removed")
	}
	return nil
}
