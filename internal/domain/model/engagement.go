//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// EngagementKind distinguishes the two engagement records a user can attach
// to a post.
type EngagementKind string

const (
	EngagementLike     EngagementKind = "like"
	EngagementBookmark EngagementKind = "bookmark"
)

// Valid reports whether the engagement kind is supported.
func (k EngagementKind) Valid() bool {
	switch k {
	case EngagementLike, EngagementBookmark:
		return true
	default:
		return false
	}
}

// ParseEngagementKind normalizes a kind string and reports whether it is supported.
func ParseEngagementKind(value string) (EngagementKind, bool) {
	kind := EngagementKind(strings.ToLower(strings.TrimSpace(value)))
	if kind.Valid() {
		return kind, true
	}
	return "", false
}

// Engagement is a like or bookmark by a user on a post.
type Engagement struct {
	UserID    string         `json:"user_id"    db:"user_id"`
	PostID    string         `json:"post_id"    db:"post_id"`
	Kind      EngagementKind `json:"kind"       db:"kind"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// EngagementListOptions controls paging and filtering for listing engagements.
type EngagementListOptions struct {
	Limit  int
	Offset int
	UserID *string         // exact match
	PostID *string         // exact match
	Kind   *EngagementKind // exact match
}

// Follow records one user following another.
type Follow struct {
	FollowerID string    `json:"follower_id" db:"follower_id"`
	FolloweeID string    `json:"followee_id" db:"followee_id"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// FollowListOptions controls paging and filtering for listing follows.
type FollowListOptions struct {
	Limit      int
	Offset     int
	FollowerID *string // exact match
	FolloweeID *string // exact match
}
