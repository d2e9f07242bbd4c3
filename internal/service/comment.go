package service

import (
	"context"
	"log/slog"

	"github.com/loomhq/loom-admin/internal/core"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

// CommentServiceOptions groups dependencies for CommentService.
type CommentServiceOptions struct {
	Repo       core.CommentRepository
	Moderation *ModerationService // optional
	Logger     *slog.Logger
}

// CommentService manages platform comments from the console.
type CommentService struct {
	repo       core.CommentRepository
	moderation *ModerationService
	logger     *slog.Logger
}

// NewCommentService constructs a new CommentService.
func NewCommentService(opts CommentServiceOptions) *CommentService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		repo:       opts.Repo,
		moderation: opts.Moderation,
		logger:     logger.With("component", "comment_service"),
	}
}

// GetByID retrieves a comment by id.
func (s *CommentService) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of comments.
func (s *CommentService) List(ctx context.Context, opts model.CommentListOptions) ([]*model.Comment, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.repo.List(ctx, opts)
}

// Update changes the moderation status of a comment. Restoring a comment to
// visible re-scans it against the enabled flag rules.
func (s *CommentService) Update(ctx context.Context, id string, req model.UpdateCommentRequest) (*model.Comment, error) {
	comment, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if s.moderation != nil && req.Status != nil && *req.Status == model.CommentStatusVisible {
		if _, scanErr := s.moderation.ScanComment(ctx, comment); scanErr != nil {
			s.logger.ErrorContext(ctx, "comment flag scan failed", "comment_id", comment.ID, "err", scanErr)
		}
	}
	return comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
