package service

import (
	"context"
	"log/slog"

	"github.com/loomhq/loom-admin/internal/core"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

// PostServiceOptions groups dependencies for PostService.
type PostServiceOptions struct {
	Repo       core.PostRepository
	Moderation *ModerationService // optional
	Logger     *slog.Logger
}

// PostService manages platform posts from the console. Content edits run
// through the flag-rule scan so a title or body change that matches a rule
// lands in the moderation queue right away.
type PostService struct {
	repo       core.PostRepository
	moderation *ModerationService
	logger     *slog.Logger
}

// NewPostService constructs a new PostService.
func NewPostService(opts PostServiceOptions) *PostService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		repo:       opts.Repo,
		moderation: opts.Moderation,
		logger:     logger.With("component", "post_service"),
	}
}

// GetByID retrieves a post by id.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of posts.
func (s *PostService) List(ctx context.Context, opts model.PostListOptions) ([]*model.Post, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.repo.List(ctx, opts)
}

// Update applies console edits to a post and re-scans it against the
// enabled flag rules when the content changed. Scan failures are logged,
// not propagated; the edit itself has already been committed.
func (s *PostService) Update(ctx context.Context, id string, req model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if s.moderation != nil && (req.Title != nil || req.Body != nil) {
		if _, scanErr := s.moderation.ScanPost(ctx, post); scanErr != nil {
			s.logger.ErrorContext(ctx, "post flag scan failed", "post_id", post.ID, "err", scanErr)
		}
	}
	return post, nil
}

// Delete removes a post together with its comments and engagements.
func (s *PostService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
