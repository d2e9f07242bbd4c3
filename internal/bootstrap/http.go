package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loomhq/loom-admin/config"
	httpx "github.com/loomhq/loom-admin/internal/http"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerOptions contains dependencies for the HTTP server.
type HTTPServerOptions struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the HTTP server over the API router.
func NewHTTPServer(opts HTTPServerOptions) *http.Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := opts.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Auth:         opts.Services.Auth,
		Profiles:     opts.Services.Profiles,
		Posts:        opts.Services.Posts,
		Comments:     opts.Services.Comments,
		Engagements:  opts.Services.Engagements,
		Moderation:   opts.Services.Moderation,
		CookieDomain: appCfg.HTTP.CookieDomain,
		CookieSecure: appCfg.HTTP.CookieSecure,
		Logger:       logger,
	})

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// RunHTTPServer serves until ctx is cancelled, then shuts down gracefully.
func RunHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
