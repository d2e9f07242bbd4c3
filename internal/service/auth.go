package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	apperrors "github.com/loomhq/loom-admin/internal/errors"
	"github.com/loomhq/loom-admin/internal/ports"
)

// ProviderFactory builds a fresh identity provider for one console session.
type ProviderFactory func() ports.IdentityProvider

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Providers ProviderFactory
	Profiles  ports.ProfileStore
	Sessions  ports.SessionStore
	Hub       *SessionHub
	Logger    *slog.Logger
}

// AuthService orchestrates console sign-in: it authenticates credentials
// through a per-session identity provider, lets the session manager settle
// the auth state, and persists a session record for the cookie.
type AuthService struct {
	providers ProviderFactory
	profiles  ports.ProfileStore
	sessions  ports.SessionStore
	hub       *SessionHub
	logger    *slog.Logger
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		providers: opts.Providers,
		profiles:  opts.Profiles,
		sessions:  opts.Sessions,
		hub:       opts.Hub,
		logger:    logger.With("component", "auth_service"),
	}
}

// LoginResult contains the result of a completed login.
type LoginResult struct {
	Session domainauth.Session
	State   domainauth.AuthState
}

// Login authenticates credentials and establishes a console session. A
// credential rejection is surfaced verbatim and leaves no session behind; a
// blocked or inactive account is rejected after forced remote sign-out.
func (s *AuthService) Login(ctx context.Context, in ports.SignInInput) (*LoginResult, error) {
	if in.Email == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if in.Password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	provider := s.providers()
	mgr := s.newManager(provider)
	mgr.Initialize(ctx)

	identity, err := provider.SignIn(ctx, in)
	if err != nil {
		mgr.Close()
		if apperrors.IsAuthFailed(err) {
			return nil, err
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	state := mgr.Snapshot()
	switch {
	case state.IsAuthenticated():
		// fall through to session creation
	case state.Identity != nil && state.Profile == nil:
		mgr.Close()
		return nil, apperrors.Unauthenticated("no platform profile for this account")
	default:
		mgr.Close()
		return nil, apperrors.PolicyViolation("account is not active or has been blocked")
	}

	session := domainauth.Session{
		ID:        uuid.New().String(),
		UserID:    identity.UserID,
		Email:     identity.Email,
		Role:      state.Role(),
		ExpiresAt: identity.ExpiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		mgr.Close()
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.hub.Put(session.ID, mgr)
	s.watchExpiry(session.ID, mgr)
	return &LoginResult{Session: session, State: state}, nil
}

// GetSession retrieves a session by ID, removing it when expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.hub.Detach(sessionID)
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Manager returns the live session manager for a session, rebuilding one
// from the persisted session record after a process restart. The rebuilt
// manager re-fetches the profile through the normal event path, so a role
// change or block that happened while the process was down takes effect
// immediately.
func (s *AuthService) Manager(ctx context.Context, session domainauth.Session) *SessionManager {
	if mgr := s.hub.Get(session.ID); mgr != nil {
		return mgr
	}

	mgr := s.newManager(s.providers())
	mgr.Initialize(ctx)
	mgr.OnAuthEvent(ctx, domainauth.Event{
		Kind: domainauth.EventSignedIn,
		Identity: &domainauth.Identity{
			UserID:    session.UserID,
			Email:     session.Email,
			ExpiresAt: session.ExpiresAt,
		},
	})
	s.hub.Put(session.ID, mgr)
	s.watchExpiry(session.ID, mgr)
	return mgr
}

// Logout signs out the session's manager and removes the session record.
// Signing out an unknown session is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if mgr := s.hub.Get(sessionID); mgr != nil {
		mgr.SignOut(ctx)
	}
	s.hub.Detach(sessionID)

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// IsSessionExpired reports whether err is the expired-session sentinel.
func IsSessionExpired(err error) bool {
	return errors.Is(err, errSessionExpired)
}

// watchExpiry pushes token-refresh extensions into the session store: when
// the provider refreshes the token, the manager settles a state whose
// identity expiry moved forward, and the persisted session record must move
// with it or GetSession would expire the session at the original token
// expiry.
func (s *AuthService) watchExpiry(sessionID string, mgr *SessionManager) {
	mgr.Subscribe(func(state domainauth.AuthState) {
		if state.Identity == nil {
			return
		}
		expiresAt := state.Identity.ExpiresAt

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		session, err := s.sessions.Get(ctx, sessionID)
		if err != nil || !expiresAt.After(session.ExpiresAt) {
			return
		}
		session.ExpiresAt = expiresAt
		if err := s.sessions.Save(ctx, session); err != nil {
			s.logger.ErrorContext(ctx, "extend session after token refresh failed",
				"session_id", sessionID, "err", err)
		}
	})
}

func (s *AuthService) newManager(provider ports.IdentityProvider) *SessionManager {
	return NewSessionManager(SessionManagerOptions{
		Provider: provider,
		Profiles: s.profiles,
		Logger:   s.logger,
	})
}
