package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loomhq/loom-admin/config"
	"github.com/loomhq/loom-admin/internal/adapters/devauth"
	"github.com/loomhq/loom-admin/internal/adapters/identity"
	"github.com/loomhq/loom-admin/internal/ports"
	"github.com/loomhq/loom-admin/internal/service"
)

// AuthOptions contains dependencies for building the auth stack.
type AuthOptions struct {
	Auth     config.AuthConfig
	Sessions ports.SessionStore
	Profiles ports.ProfileStore
	Logger   *slog.Logger
}

// AuthStack bundles the auth service with the session hub that other
// services use to reach live sessions.
type AuthStack struct {
	Service *service.AuthService
	Hub     *service.SessionHub
}

// BuildAuthStack creates the auth service for the configured auth mode.
// OIDC mode runs discovery against the identity service once at startup.
func BuildAuthStack(ctx context.Context, opts AuthOptions) (AuthStack, error) {
	providers, err := buildProviderFactory(ctx, opts.Auth)
	if err != nil {
		return AuthStack{}, err
	}

	hub := service.NewSessionHub()

	svc := service.NewAuthService(service.AuthServiceOptions{
		Providers: providers,
		Profiles:  opts.Profiles,
		Sessions:  opts.Sessions,
		Hub:       hub,
		Logger:    opts.Logger,
	})

	return AuthStack{Service: svc, Hub: hub}, nil
}

func buildProviderFactory(ctx context.Context, cfg config.AuthConfig) (service.ProviderFactory, error) {
	switch cfg.Mode {
	case config.AuthModeDev:
		// Validate the dev config once up front so a broken credential pair
		// fails at startup, not at first login.
		if _, err := devauth.NewProvider(devConfig(cfg.DevAuth)); err != nil {
			return nil, fmt.Errorf("dev auth config: %w", err)
		}
		return func() ports.IdentityProvider {
			p, _ := devauth.NewProvider(devConfig(cfg.DevAuth))
			return p
		}, nil

	case config.AuthModeOIDC:
		factory, err := identity.NewFactory(ctx, identity.ProviderConfig{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			Scope:        cfg.OIDC.Scope,
			DiscoveryURL: cfg.OIDC.DiscoveryURL,
			RevokeURL:    cfg.OIDC.RevokeURL,
		})
		if err != nil {
			return nil, fmt.Errorf("identity provider factory: %w", err)
		}
		return func() ports.IdentityProvider {
			return factory.NewProvider()
		}, nil

	default:
		return nil, fmt.Errorf("unknown auth mode: %q", cfg.Mode)
	}
}

func devConfig(cfg config.DevAuthConfig) devauth.Config {
	return devauth.Config{
		UserID:          cfg.UserID,
		Email:           cfg.Email,
		Password:        cfg.Password,
		SessionDuration: cfg.SessionDuration,
	}
}
