package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
)

// SignInInput carries credentials for a password sign-in.
type SignInInput struct {
	Email    string
	Password string
}

// IdentityProvider is the hosted identity service: it authenticates
// credentials, reports the current session, terminates sessions, and
// notifies subscribers of session-affecting events.
type IdentityProvider interface {
	// CurrentSession returns the identity of an existing valid session, or
	// nil when there is none. Used once at session-manager initialization.
	CurrentSession(ctx context.Context) (*domainauth.Identity, error)

	// SignIn authenticates credentials and returns the authenticated
	// identity. A credential rejection is returned as-is; it must not
	// change any session state.
	SignIn(ctx context.Context, in SignInInput) (domainauth.Identity, error)

	// SignOut terminates the remote session. Safe to call when no session
	// exists.
	SignOut(ctx context.Context) error

	// Subscribe registers a listener for auth-change events. The returned
	// cancel function removes the subscription; after cancel returns the
	// listener is never invoked again.
	Subscribe(fn func(domainauth.Event)) (cancel func())
}

// TokenRefresher is an optional extension of IdentityProvider. Providers
// whose credentials expire run a background refresh loop that publishes
// token-refreshed events; providers with non-expiring credentials simply
// don't implement it.
type TokenRefresher interface {
	// RunRefresh blocks, refreshing the held token as it nears expiry and
	// publishing token-refreshed events, until ctx is cancelled. A
	// non-positive interval selects the implementation default.
	RunRefresh(ctx context.Context, interval time.Duration)
}

// ProfileStore fetches platform profiles by user id. A missing record is
// reported via the implementation's not-found sentinel; the session core
// treats not-found and lookup failure the same way (no profile, never a
// privileged default).
type ProfileStore interface {
	GetByID(ctx context.Context, userID string) (*domainauth.Profile, error)
}

// SessionStore persists and retrieves console user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}
