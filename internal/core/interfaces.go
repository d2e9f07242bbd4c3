package core

import (
	"context"
	"time"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ProfileRepository defines the interface for profile data operations.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID string) (*domainauth.Profile, error)
	List(ctx context.Context, opts model.ProfileListOptions) ([]*domainauth.Profile, error)
	Update(ctx context.Context, userID string, req model.UpdateProfileRequest) (*domainauth.Profile, error)
	Delete(ctx context.Context, userID string) (bool, error)
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, opts model.PostListOptions) ([]*model.Post, error)
	Update(ctx context.Context, id string, req model.UpdatePostRequest) (*model.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	List(ctx context.Context, opts model.CommentListOptions) ([]*model.Comment, error)
	Update(ctx context.Context, id string, req model.UpdateCommentRequest) (*model.Comment, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// EngagementRepository defines the interface for like/bookmark data operations.
type EngagementRepository interface {
	List(ctx context.Context, opts model.EngagementListOptions) ([]*model.Engagement, error)
	Delete(ctx context.Context, userID, postID string, kind model.EngagementKind) (bool, error)
}

// FollowRepository defines the interface for follower data operations.
type FollowRepository interface {
	List(ctx context.Context, opts model.FollowListOptions) ([]*model.Follow, error)
	Delete(ctx context.Context, followerID, followeeID string) (bool, error)
}

// CreateFlagParams groups parameters for FlagRepository.Create to keep param count ≤3.
type CreateFlagParams struct {
	TargetKind model.FlagTargetKind
	TargetID   string
	RuleID     *string
	Reason     string
}

// FlagRepository defines the interface for content flag data operations.
type FlagRepository interface {
	Create(ctx context.Context, params CreateFlagParams) (*model.ContentFlag, error)
	GetByID(ctx context.Context, id string) (*model.ContentFlag, error)
	List(ctx context.Context, opts model.FlagListOptions) ([]*model.ContentFlag, error)
	Resolve(ctx context.Context, id string, status model.FlagStatus, resolvedBy string) (*model.ContentFlag, error)
}

// FlagRuleRepository defines the interface for flag rule data operations.
type FlagRuleRepository interface {
	Create(ctx context.Context, req *model.CreateFlagRuleRequest) (*model.FlagRule, error)
	GetByID(ctx context.Context, id string) (*model.FlagRule, error)
	ListEnabled(ctx context.Context, kind model.FlagTargetKind) ([]*model.FlagRule, error)
	List(ctx context.Context, limit, offset int) ([]*model.FlagRule, error)
	Update(ctx context.Context, id string, req model.UpdateFlagRuleRequest) (*model.FlagRule, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CacheRepository defines the interface for short-lived cached values
// (profile snapshots, dashboard counters).
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
