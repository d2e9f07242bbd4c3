package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	apperrors "github.com/loomhq/loom-admin/internal/errors"
	mockauth "github.com/loomhq/loom-admin/internal/mocks/auth"
	"github.com/loomhq/loom-admin/internal/ports"
)

type authFixture struct {
	svc      *AuthService
	hub      *SessionHub
	sessions *mockauth.MemorySessionStore
	profiles *mockauth.MemoryProfileStore

	// last provider handed out by the factory
	provider *mockauth.MockIdentityProvider
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		sessions: mockauth.NewMemorySessionStore(),
		profiles: mockauth.NewMemoryProfileStore(),
	}
	f.hub = NewSessionHub()
	f.svc = NewAuthService(AuthServiceOptions{
		Providers: func() ports.IdentityProvider {
			f.provider = mockauth.NewMockIdentityProvider()
			return f.provider
		},
		Profiles: f.profiles,
		Sessions: f.sessions,
		Hub:      f.hub,
	})
	return f
}

func TestLoginHappyPath(t *testing.T) {
	f := newAuthFixture()
	f.profiles.Put(profileFor("mock-user-1", domainauth.RoleModerator))

	res, err := f.svc.Login(context.Background(), ports.SignInInput{
		Email:    "mock.user@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Session.ID)
	assert.Equal(t, "mock-user-1", res.Session.UserID)
	assert.Equal(t, domainauth.RoleModerator, res.Session.Role)
	assert.True(t, res.State.IsAuthenticated())

	// Session record persisted and a live manager registered.
	saved, err := f.sessions.Get(context.Background(), res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Session.UserID, saved.UserID)
	require.NotNil(t, f.hub.Get(res.Session.ID))
}

func TestLoginValidatesInput(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Login(context.Background(), ports.SignInInput{Password: "x"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.Login(context.Background(), ports.SignInInput{Email: "a@b.c"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestLoginCredentialRejectionLeavesNoSession(t *testing.T) {
	f := newAuthFixture()
	f.svc.providers = func() ports.IdentityProvider {
		p := mockauth.NewMockIdentityProvider()
		p.SignInFunc = func(context.Context, ports.SignInInput) (domainauth.Identity, error) {
			return domainauth.Identity{}, apperrors.AuthFailed("invalid credentials")
		}
		return p
	}

	_, err := f.svc.Login(context.Background(), ports.SignInInput{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthFailed(err))
	assert.Zero(t, f.hub.Len())
}

func TestLoginBlockedAccountRejected(t *testing.T) {
	f := newAuthFixture()
	blocked := profileFor("mock-user-1", domainauth.RoleAdmin)
	blocked.Blocked = true
	f.profiles.Put(blocked)

	_, err := f.svc.Login(context.Background(), ports.SignInInput{Email: "a@b.c", Password: "pw"})
	require.Error(t, err)
	assert.True(t, apperrors.IsPolicyViolation(err))
	assert.Zero(t, f.hub.Len())
	// Forced sign-out must have terminated the remote session.
	assert.GreaterOrEqual(t, f.provider.SignOutCalls(), 1)
}

func TestLoginMissingProfileRejected(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Login(context.Background(), ports.SignInInput{Email: "a@b.c", Password: "pw"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestGetSessionExpiryCleanup(t *testing.T) {
	f := newAuthFixture()
	expired := domainauth.Session{
		ID:        "sess-1",
		UserID:    "u1",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.sessions.Save(context.Background(), expired))

	_, err := f.svc.GetSession(context.Background(), "sess-1")
	require.Error(t, err)
	assert.True(t, IsSessionExpired(err))

	_, err = f.sessions.Get(context.Background(), "sess-1")
	assert.Error(t, err, "expired session must be removed from the store")
}

func TestManagerRebuildsAfterRestart(t *testing.T) {
	f := newAuthFixture()
	f.profiles.Put(profileFor("u1", domainauth.RoleEditor))

	session := domainauth.Session{
		ID:        "sess-1",
		UserID:    "u1",
		Email:     "u1@example.com",
		Role:      domainauth.RoleEditor,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	// No manager in the hub, as after a process restart.
	mgr := f.svc.Manager(context.Background(), session)
	require.NotNil(t, mgr)

	state := mgr.Snapshot()
	require.True(t, state.IsAuthenticated())
	assert.Equal(t, domainauth.RoleEditor, state.Role())

	// Second call returns the cached manager.
	assert.Same(t, mgr, f.svc.Manager(context.Background(), session))
}

func TestManagerRebuildDetectsBlockSincePersist(t *testing.T) {
	f := newAuthFixture()
	blocked := profileFor("u1", domainauth.RoleEditor)
	blocked.Blocked = true
	f.profiles.Put(blocked)

	session := domainauth.Session{
		ID:        "sess-1",
		UserID:    "u1",
		Email:     "u1@example.com",
		Role:      domainauth.RoleEditor,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	mgr := f.svc.Manager(context.Background(), session)
	assert.False(t, mgr.Snapshot().IsAuthenticated(),
		"a block applied while the process was down must take effect on rebuild")
}

func TestLogoutRemovesSessionAndManager(t *testing.T) {
	f := newAuthFixture()
	f.profiles.Put(profileFor("mock-user-1", domainauth.RoleUser))

	res, err := f.svc.Login(context.Background(), ports.SignInInput{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), res.Session.ID))
	assert.Nil(t, f.hub.Get(res.Session.ID))
	_, err = f.sessions.Get(context.Background(), res.Session.ID)
	assert.Error(t, err)

	// Logging out again, or with an empty id, is a no-op.
	assert.NoError(t, f.svc.Logout(context.Background(), res.Session.ID))
	assert.NoError(t, f.svc.Logout(context.Background(), ""))
}

func TestTokenRefreshExtendsStoredSession(t *testing.T) {
	f := newAuthFixture()
	f.profiles.Put(profileFor("mock-user-1", domainauth.RoleUser))

	res, err := f.svc.Login(context.Background(), ports.SignInInput{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	refreshed := domainauth.Identity{
		UserID:    "mock-user-1",
		Email:     "mock.user@example.com",
		ExpiresAt: res.Session.ExpiresAt.Add(time.Hour),
	}
	f.provider.Fire(domainauth.Event{Kind: domainauth.EventTokenRefreshed, Identity: &refreshed})

	saved, err := f.sessions.Get(context.Background(), res.Session.ID)
	require.NoError(t, err)
	assert.True(t, saved.ExpiresAt.After(res.Session.ExpiresAt),
		"persisted session must pick up the refreshed token expiry")
}
