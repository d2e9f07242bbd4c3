package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Seed helpers insert fixture rows directly. Repos under test only read,
// update, and delete platform-owned rows, so tests create them here.

// SeedProfileParams controls a seeded profile row. Zero values get defaults.
type SeedProfileParams struct {
	UserID      string
	Email       string
	Role        string
	IsActive    *bool
	Blocked     bool
	DisplayName string
}

// SeedProfile inserts a profile row and returns its user id.
func SeedProfile(t TestingTB, db *sql.DB, p SeedProfileParams) string {
	t.Helper()

	if p.UserID == "" {
		p.UserID = uuid.New().String()
	}
	if p.Email == "" {
		p.Email = fmt.Sprintf("%s@example.com", p.UserID)
	}
	if p.Role == "" {
		p.Role = "user"
	}
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	if p.DisplayName == "" {
		p.DisplayName = "user " + p.UserID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, email, role, is_active, blocked, display_name)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.UserID, p.Email, p.Role, active, p.Blocked, p.DisplayName)
	if err != nil {
		t.Fatalf("Failed to seed profile %s: %v", p.UserID, err)
	}
	return p.UserID
}

// SeedPost inserts a post row for an existing author and returns its id.
func SeedPost(t TestingTB, db *sql.DB, authorID, title, status string) string {
	t.Helper()

	id := uuid.New().String()
	if status == "" {
		status = "published"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO posts (id, author_id, title, body, status)
		VALUES ($1, $2, $3, $4, $5)`,
		id, authorID, title, "body of "+title, status)
	if err != nil {
		t.Fatalf("Failed to seed post %s: %v", title, err)
	}
	return id
}

// SeedComment inserts a comment row and returns its id.
func SeedComment(t TestingTB, db *sql.DB, postID, authorID, body string) string {
	t.Helper()

	id := uuid.New().String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO comments (id, post_id, author_id, body)
		VALUES ($1, $2, $3, $4)`,
		id, postID, authorID, body)
	if err != nil {
		t.Fatalf("Failed to seed comment on post %s: %v", postID, err)
	}
	return id
}

// SeedEngagement inserts a like or bookmark row.
func SeedEngagement(t TestingTB, db *sql.DB, userID, postID, kind string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO engagements (user_id, post_id, kind)
		VALUES ($1, $2, $3)`,
		userID, postID, kind)
	if err != nil {
		t.Fatalf("Failed to seed %s by %s on %s: %v", kind, userID, postID, err)
	}
}

// SeedFollow inserts a follow edge.
func SeedFollow(t TestingTB, db *sql.DB, followerID, followeeID string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)`,
		followerID, followeeID)
	if err != nil {
		t.Fatalf("Failed to seed follow %s -> %s: %v", followerID, followeeID, err)
	}
}
