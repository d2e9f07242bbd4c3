package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	mockauth "github.com/loomhq/loom-admin/internal/mocks/auth"
)

func identityFor(userID string) *domainauth.Identity {
	return &domainauth.Identity{
		UserID:    userID,
		Email:     userID + "@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func profileFor(userID string, role domainauth.Role) domainauth.Profile {
	return domainauth.Profile{
		UserID:   userID,
		Email:    userID + "@example.com",
		Role:     role,
		IsActive: true,
	}
}

func newTestManager(provider *mockauth.MockIdentityProvider, profiles *mockauth.MemoryProfileStore) *SessionManager {
	return NewSessionManager(SessionManagerOptions{
		Provider: provider,
		Profiles: profiles,
	})
}

func TestInitializeNoExistingSession(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	mgr := newTestManager(provider, mockauth.NewMemoryProfileStore())

	assert.True(t, mgr.Snapshot().Loading, "state must start in loading phase")

	mgr.Initialize(context.Background())

	state := mgr.Snapshot()
	assert.False(t, state.Loading)
	assert.Nil(t, state.Identity)
	assert.Nil(t, state.Profile)
	assert.False(t, state.IsAuthenticated())
}

func TestInitializeWithExistingSession(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	provider.CurrentSessionFunc = func(context.Context) (*domainauth.Identity, error) {
		return identityFor("u1"), nil
	}
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleEditor))

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())

	state := mgr.Snapshot()
	assert.False(t, state.Loading)
	require.True(t, state.IsAuthenticated())
	assert.Equal(t, domainauth.RoleEditor, state.Role())
}

func TestInitializeRunsOnce(t *testing.T) {
	calls := 0
	provider := mockauth.NewMockIdentityProvider()
	provider.CurrentSessionFunc = func(context.Context) (*domainauth.Identity, error) {
		calls++
		return nil, nil
	}
	mgr := newTestManager(provider, mockauth.NewMemoryProfileStore())

	mgr.Initialize(context.Background())
	mgr.Initialize(context.Background())
	assert.Equal(t, 1, calls)
}

func TestLoadingClearedAfterProfileResolution(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()

	fetchStarted := make(chan struct{})
	releaseFetch := make(chan struct{})
	profiles.GetFunc = func(context.Context, string) (*domainauth.Profile, error) {
		close(fetchStarted)
		<-releaseFetch
		p := profileFor("u1", domainauth.RoleUser)
		return &p, nil
	}

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		mgr.OnAuthEvent(context.Background(), domainauth.Event{
			Kind:     domainauth.EventSignedIn,
			Identity: identityFor("u1"),
		})
	}()

	<-fetchStarted
	// Profile still in flight: the settled pre-event state must persist,
	// never a half-applied identity without profile.
	mid := mgr.Snapshot()
	assert.Nil(t, mid.Identity)
	assert.Nil(t, mid.Profile)

	close(releaseFetch)
	<-done

	state := mgr.Snapshot()
	assert.False(t, state.Loading)
	require.True(t, state.IsAuthenticated())
	assert.Equal(t, "u1", state.Profile.UserID)
}

func TestProfileFetchFailureFailsOpenToUnauthenticated(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.GetFunc = func(context.Context, string) (*domainauth.Profile, error) {
		return nil, assert.AnError
	}

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())
	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("u1"),
	})

	state := mgr.Snapshot()
	assert.False(t, state.Loading)
	assert.False(t, state.IsAuthenticated(), "no profile must never authenticate")
	require.NotNil(t, state.Identity)
	assert.Nil(t, state.Profile)
	assert.False(t, state.HasCapability(domainauth.CapViewContent))
}

func TestBlockedProfileForcesSignOut(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	blocked := profileFor("u1", domainauth.RoleAdmin)
	blocked.Blocked = true
	profiles.Put(blocked)

	var notices []string
	mgr := NewSessionManager(SessionManagerOptions{
		Provider: provider,
		Profiles: profiles,
		Notice:   func(msg string) { notices = append(notices, msg) },
	})
	mgr.Initialize(context.Background())

	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("u1"),
	})

	state := mgr.Snapshot()
	assert.False(t, state.IsAuthenticated(), "blocked profile must never authenticate, even admin")
	assert.Nil(t, state.Identity)
	assert.Nil(t, state.Profile, "suspended profile must not be stored")
	assert.GreaterOrEqual(t, provider.SignOutCalls(), 1, "remote session must be terminated")
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0], "not active or has been blocked")
}

func TestInactiveProfileForcesSignOut(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	inactive := profileFor("u1", domainauth.RoleModerator)
	inactive.IsActive = false
	profiles.Put(inactive)

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())
	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("u1"),
	})

	state := mgr.Snapshot()
	assert.False(t, state.IsAuthenticated())
	assert.Nil(t, state.Profile)
}

func TestSignOutEventClearsState(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleUser))

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())
	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("u1"),
	})
	require.True(t, mgr.Snapshot().IsAuthenticated())

	mgr.OnAuthEvent(context.Background(), domainauth.Event{Kind: domainauth.EventSignedOut})

	state := mgr.Snapshot()
	assert.False(t, state.Loading)
	assert.Nil(t, state.Identity)
	assert.Nil(t, state.Profile)
}

// Documents the chosen degraded-sign-out behavior: a remote sign-out failure
// still clears local state. The console must not stay "signed in" merely
// because the revocation call failed.
func TestSignOutClearsLocalStateWhenRemoteFails(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	provider.SignOutFunc = func(context.Context) error { return assert.AnError }
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleUser))

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())
	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("u1"),
	})
	require.True(t, mgr.Snapshot().IsAuthenticated())

	mgr.SignOut(context.Background())

	state := mgr.Snapshot()
	assert.False(t, state.IsAuthenticated())
	assert.Nil(t, state.Identity)
}

func TestSignOutIsIdempotent(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	mgr := newTestManager(provider, mockauth.NewMemoryProfileStore())
	mgr.Initialize(context.Background())

	mgr.SignOut(context.Background())
	mgr.SignOut(context.Background())

	state := mgr.Snapshot()
	assert.False(t, state.IsAuthenticated())
	assert.False(t, state.Loading)
}

func TestRefreshProfileOverwritesStoredProfile(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleUser))

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())
	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("u1"),
	})
	require.Equal(t, domainauth.RoleUser, mgr.Snapshot().Role())

	promoted := profileFor("u1", domainauth.RoleModerator)
	profiles.Put(promoted)

	mgr.RefreshProfile(context.Background())
	assert.Equal(t, domainauth.RoleModerator, mgr.Snapshot().Role())
}

func TestRefreshProfileNoOpWhenUnauthenticated(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.GetFunc = func(context.Context, string) (*domainauth.Profile, error) {
		t.Fatal("refresh must not fetch without an identity")
		return nil, nil
	}

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())
	mgr.RefreshProfile(context.Background())
}

func TestRefreshDetectsNewlyBlockedProfile(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleUser))

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())
	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("u1"),
	})
	require.True(t, mgr.Snapshot().IsAuthenticated())

	nowBlocked := profileFor("u1", domainauth.RoleUser)
	nowBlocked.Blocked = true
	profiles.Put(nowBlocked)

	mgr.RefreshProfile(context.Background())
	assert.False(t, mgr.Snapshot().IsAuthenticated())
	assert.GreaterOrEqual(t, provider.SignOutCalls(), 1)
}

// The ordering guarantee: a slow in-flight fetch for a superseded identity
// must not overwrite the state settled by newer events.
func TestStaleFetchDiscardedAfterNewerEvents(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()

	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	profiles.GetFunc = func(_ context.Context, userID string) (*domainauth.Profile, error) {
		if userID == "user-a" {
			close(slowStarted)
			<-releaseSlow
			p := profileFor("user-a", domainauth.RoleAdmin)
			return &p, nil
		}
		p := profileFor(userID, domainauth.RoleEditor)
		return &p, nil
	}

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		mgr.OnAuthEvent(context.Background(), domainauth.Event{
			Kind:     domainauth.EventSignedIn,
			Identity: identityFor("user-a"),
		})
	}()
	<-slowStarted

	// A logout and a login for user B both start while A's fetch hangs.
	mgr.OnAuthEvent(context.Background(), domainauth.Event{Kind: domainauth.EventSignedOut})
	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("user-b"),
	})

	state := mgr.Snapshot()
	require.True(t, state.IsAuthenticated())
	require.Equal(t, "user-b", state.Profile.UserID)

	// Now A's fetch resolves; its result must be discarded.
	close(releaseSlow)
	wg.Wait()

	state = mgr.Snapshot()
	require.True(t, state.IsAuthenticated())
	assert.Equal(t, "user-b", state.Profile.UserID, "stale fetch for user-a must not win")
	assert.Equal(t, domainauth.RoleEditor, state.Role())
}

func TestProfileFetchTimeoutFailsClosed(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.GetFunc = func(ctx context.Context, _ string) (*domainauth.Profile, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	mgr := NewSessionManager(SessionManagerOptions{
		Provider: provider,
		Profiles: profiles,
		Timeout:  20 * time.Millisecond,
	})
	mgr.Initialize(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		mgr.OnAuthEvent(context.Background(), domainauth.Event{
			Kind:     domainauth.EventSignedIn,
			Identity: identityFor("u1"),
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event processing hung past the fetch bound")
	}

	state := mgr.Snapshot()
	assert.False(t, state.Loading, "loading must not stay true forever")
	assert.False(t, state.IsAuthenticated())
}

func TestSubscribersSeeSettledTransitions(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleUser))

	mgr := newTestManager(provider, profiles)

	var mu sync.Mutex
	var states []domainauth.AuthState
	cancel := mgr.Subscribe(func(s domainauth.AuthState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	defer cancel()

	mgr.Initialize(context.Background())
	mgr.OnAuthEvent(context.Background(), domainauth.Event{
		Kind:     domainauth.EventSignedIn,
		Identity: identityFor("u1"),
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.False(t, states[0].IsAuthenticated())
	assert.False(t, states[0].Loading)
	assert.True(t, states[1].IsAuthenticated())
}

func TestProviderEventsDriveManager(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleUser))

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())

	provider.Fire(domainauth.Event{Kind: domainauth.EventSignedIn, Identity: identityFor("u1")})
	assert.True(t, mgr.Snapshot().IsAuthenticated())

	provider.Fire(domainauth.Event{Kind: domainauth.EventSignedOut})
	assert.False(t, mgr.Snapshot().IsAuthenticated())
}

func TestCloseStopsEventDelivery(t *testing.T) {
	provider := mockauth.NewMockIdentityProvider()
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleUser))

	mgr := newTestManager(provider, profiles)
	mgr.Initialize(context.Background())
	mgr.Close()

	provider.Fire(domainauth.Event{Kind: domainauth.EventSignedIn, Identity: identityFor("u1")})
	assert.False(t, mgr.Snapshot().IsAuthenticated())
}

func TestSessionHubPutGetDetach(t *testing.T) {
	profiles := mockauth.NewMemoryProfileStore()
	profiles.Put(profileFor("u1", domainauth.RoleUser))

	oldProvider := mockauth.NewMockIdentityProvider()
	mgr := newTestManager(oldProvider, profiles)
	mgr.Initialize(context.Background())

	hub := NewSessionHub()
	hub.Put("sess-1", mgr)
	require.Same(t, mgr, hub.Get("sess-1"))
	assert.Equal(t, 1, hub.Len())

	// Replacing a manager closes the old one, cutting its event feed.
	replacement := newTestManager(mockauth.NewMockIdentityProvider(), profiles)
	replacement.Initialize(context.Background())
	hub.Put("sess-1", replacement)
	assert.Same(t, replacement, hub.Get("sess-1"))

	oldProvider.Fire(domainauth.Event{Kind: domainauth.EventSignedIn, Identity: identityFor("u1")})
	assert.False(t, mgr.Snapshot().IsAuthenticated(), "replaced manager must stop receiving events")

	hub.Detach("sess-1")
	assert.Nil(t, hub.Get("sess-1"))
	hub.Detach("sess-1") // safe for unknown ids
}

// refreshLoopProvider implements the optional token refresher extension on
// top of the mock provider so the loop lifecycle can be observed.
type refreshLoopProvider struct {
	*mockauth.MockIdentityProvider
	started chan struct{}
	stopped chan struct{}
}

func (p *refreshLoopProvider) RunRefresh(ctx context.Context, _ time.Duration) {
	close(p.started)
	<-ctx.Done()
	close(p.stopped)
}

func TestInitializeStartsRefreshLoopAndCloseStopsIt(t *testing.T) {
	provider := &refreshLoopProvider{
		MockIdentityProvider: mockauth.NewMockIdentityProvider(),
		started:              make(chan struct{}),
		stopped:              make(chan struct{}),
	}
	mgr := NewSessionManager(SessionManagerOptions{
		Provider: provider,
		Profiles: mockauth.NewMemoryProfileStore(),
	})
	mgr.Initialize(context.Background())

	select {
	case <-provider.started:
	case <-time.After(time.Second):
		t.Fatal("refresh loop did not start on initialize")
	}

	mgr.Close()
	select {
	case <-provider.stopped:
	case <-time.After(time.Second):
		t.Fatal("refresh loop did not stop on close")
	}
}
