package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/loomhq/loom-admin/config"
	redisadapter "github.com/loomhq/loom-admin/internal/adapters/redis"
	"github.com/loomhq/loom-admin/internal/data"
	"github.com/loomhq/loom-admin/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth        *service.AuthService
	Hub         *service.SessionHub
	Profiles    *service.ProfileService
	Posts       *service.PostService
	Comments    *service.CommentService
	Engagements *service.EngagementService
	Moderation  *service.ModerationService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires repositories, adapters, and services. The Redis client
// backs the session store; the profile cache gets its own connection from
// CacheConfig so cache eviction pressure never touches sessions.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	profileRepo := data.NewProfileRepo(deps.DB)
	sessionStore := redisadapter.NewSessionStore(deps.RedisClient)

	authStack, err := BuildAuthStack(ctx, AuthOptions{
		Auth:     cfg.Auth,
		Sessions: sessionStore,
		Profiles: profileRepo,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build auth stack: %w", err)
	}

	moderation := service.NewModerationService(service.ModerationServiceOptions{
		Flags:  data.NewFlagRepo(deps.DB),
		Rules:  data.NewFlagRuleRepo(deps.DB),
		Logger: logger,
	})

	profileOpts := service.ProfileServiceOptions{
		Repo:     profileRepo,
		CacheTTL: cfg.Cache.ProfileTTL,
		Hub:      authStack.Hub,
		Logger:   logger,
	}
	if cfg.Cache.Enabled {
		cacheClient := data.NewRedisClient(data.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		profileOpts.Cache = data.NewRedisCacheRepo(cacheClient)
	}

	return ServiceContainer{
		Auth:     authStack.Service,
		Hub:      authStack.Hub,
		Profiles: service.NewProfileService(profileOpts),
		Posts: service.NewPostService(service.PostServiceOptions{
			Repo:       data.NewPostRepo(deps.DB),
			Moderation: moderation,
			Logger:     logger,
		}),
		Comments: service.NewCommentService(service.CommentServiceOptions{
			Repo:       data.NewCommentRepo(deps.DB),
			Moderation: moderation,
			Logger:     logger,
		}),
		Engagements: service.NewEngagementService(service.EngagementServiceOptions{
			Engagements: data.NewEngagementRepo(deps.DB),
			Follows:     data.NewFollowRepo(deps.DB),
		}),
		Moderation: moderation,
	}, nil
}
