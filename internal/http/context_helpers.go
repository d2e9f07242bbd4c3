package httpx

import (
	"context"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// stateKey carries the settled auth state alongside the session record.
type stateKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// SetAuthStateInContext returns a child context carrying the settled auth state.
func SetAuthStateInContext(ctx context.Context, state domainauth.AuthState) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// GetAuthStateFromContext returns the auth state from context and whether one is present.
func GetAuthStateFromContext(ctx context.Context) (domainauth.AuthState, bool) {
	if state, ok := ctx.Value(stateKey{}).(domainauth.AuthState); ok {
		return state, true
	}
	return domainauth.AuthState{}, false
}
