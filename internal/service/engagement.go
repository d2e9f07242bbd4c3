package service

import (
	"context"

	"github.com/loomhq/loom-admin/internal/core"
	"github.com/loomhq/loom-admin/internal/domain/model"
	apperrors "github.com/loomhq/loom-admin/internal/errors"
)

// EngagementServiceOptions groups dependencies for EngagementService.
type EngagementServiceOptions struct {
	Engagements core.EngagementRepository
	Follows     core.FollowRepository
}

// EngagementService exposes the read/remove operations the console has over
// likes, bookmarks, and follower relationships. Creation happens on the
// platform side; the console only inspects and cleans up.
type EngagementService struct {
	engagements core.EngagementRepository
	follows     core.FollowRepository
}

// NewEngagementService constructs a new EngagementService.
func NewEngagementService(opts EngagementServiceOptions) *EngagementService {
	return &EngagementService{engagements: opts.Engagements, follows: opts.Follows}
}

// ListEngagements returns a page of likes/bookmarks.
func (s *EngagementService) ListEngagements(
	ctx context.Context,
	opts model.EngagementListOptions,
) ([]*model.Engagement, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.engagements.List(ctx, opts)
}

// RemoveEngagement deletes one like or bookmark.
func (s *EngagementService) RemoveEngagement(
	ctx context.Context,
	userID, postID string,
	kind model.EngagementKind,
) (bool, error) {
	if userID == "" || postID == "" {
		return false, apperrors.Validation("user_id and post_id are required")
	}
	if !kind.Valid() {
		return false, apperrors.ValidationField("kind", "kind must be one of: like, bookmark")
	}
	return s.engagements.Delete(ctx, userID, postID, kind)
}

// ListFollows returns a page of follow edges.
func (s *EngagementService) ListFollows(ctx context.Context, opts model.FollowListOptions) ([]*model.Follow, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.follows.List(ctx, opts)
}

// RemoveFollow deletes a follow edge.
func (s *EngagementService) RemoveFollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if followerID == "" || followeeID == "" {
		return false, apperrors.Validation("follower_id and followee_id are required")
	}
	return s.follows.Delete(ctx, followerID, followeeID)
}
