package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/loomhq/loom-admin/internal/core"
	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/domain/model"
)

const defaultProfileCacheTTL = 30 * time.Second

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Repo     core.ProfileRepository
	Cache    core.CacheRepository // optional
	CacheTTL time.Duration        // defaults to 30s
	Hub      *SessionHub
	Logger   *slog.Logger
}

// ProfileService manages platform profiles from the console: listing,
// role/status changes, and permission overrides. Reads go through a short
// cache; any write invalidates it so access changes never serve stale.
type ProfileService struct {
	repo     core.ProfileRepository
	cache    core.CacheRepository
	cacheTTL time.Duration
	hub      *SessionHub
	logger   *slog.Logger
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultProfileCacheTTL
	}
	return &ProfileService{
		repo:     opts.Repo,
		cache:    opts.Cache,
		cacheTTL: ttl,
		hub:      opts.Hub,
		logger:   logger.With("component", "profile_service"),
	}
}

// GetByID retrieves a profile, serving from cache when fresh.
func (s *ProfileService) GetByID(ctx context.Context, userID string) (*domainauth.Profile, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, profileCacheKey(userID)); err == nil && ok {
			var p domainauth.Profile
			if json.Unmarshal(data, &p) == nil {
				return &p, nil
			}
		}
	}

	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(profile); err == nil {
			if cacheErr := s.cache.Set(ctx, profileCacheKey(userID), data, s.cacheTTL); cacheErr != nil {
				s.logger.WarnContext(ctx, "profile cache write failed", "user_id", userID, "err", cacheErr)
			}
		}
	}
	return profile, nil
}

// List returns a page of profiles.
func (s *ProfileService) List(ctx context.Context, opts model.ProfileListOptions) ([]*domainauth.Profile, error) {
	return s.repo.List(ctx, normalizeProfileListOptions(opts))
}

// Update applies role, status, permission-override, or display changes to a
// profile. The profile cache entry is dropped so the change is visible on
// the next read.
func (s *ProfileService) Update(
	ctx context.Context,
	userID string,
	req model.UpdateProfileRequest,
) (*domainauth.Profile, error) {
	profile, err := s.repo.Update(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	if s.hub != nil {
		// A block or demotion lands on live sessions immediately.
		s.hub.RefreshUser(ctx, userID)
	}
	return profile, nil
}

// Delete removes a profile.
func (s *ProfileService) Delete(ctx context.Context, userID string) (bool, error) {
	ok, err := s.repo.Delete(ctx, userID)
	if err == nil && ok {
		s.invalidate(ctx, userID)
		if s.hub != nil {
			s.hub.RefreshUser(ctx, userID)
		}
	}
	return ok, err
}

func (s *ProfileService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, profileCacheKey(userID)); err != nil {
		s.logger.WarnContext(ctx, "profile cache invalidation failed", "user_id", userID, "err", err)
	}
}

func profileCacheKey(userID string) string { return "profile:" + userID }

func normalizeProfileListOptions(opts model.ProfileListOptions) model.ProfileListOptions {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Sort == "" {
		opts.Sort = "created_at"
	}
	if opts.Dir == "" {
		opts.Dir = "desc"
	}
	return opts
}
