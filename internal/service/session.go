package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/ports"
)

// NoticeFunc surfaces a user-visible notice (forced sign-out explanation,
// sign-out confirmation). A nil NoticeFunc drops notices silently.
type NoticeFunc func(message string)

// DefaultProfileFetchTimeout bounds profile lookups during auth transitions.
// A fetch that exceeds it is treated as "no profile", never as a hang.
const DefaultProfileFetchTimeout = 10 * time.Second

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Provider ports.IdentityProvider
	Profiles ports.ProfileStore
	Logger   *slog.Logger  // defaults to slog.Default()
	Notice   NoticeFunc    // optional
	Timeout  time.Duration // profile fetch bound, defaults to DefaultProfileFetchTimeout
}

// SessionManager owns the auth state for one console user: it mirrors the
// identity service's event stream into an AuthState that readers can
// snapshot at any time without ever observing a half-applied transition.
//
// Transitions are correlated with an epoch counter. Every new event bumps
// the epoch before its profile fetch starts; a fetch that finishes after a
// newer event has begun finds its epoch stale and discards its result, so
// the last event always wins regardless of fetch completion order.
type SessionManager struct {
	provider ports.IdentityProvider
	profiles ports.ProfileStore
	logger   *slog.Logger
	notice   NoticeFunc
	timeout  time.Duration

	mu            sync.Mutex
	state         domainauth.AuthState
	epoch         uint64
	initialized   bool
	cancelSub     func()
	cancelRefresh func()
	subs          map[int]func(domainauth.AuthState)
	nextSub       int
}

// NewSessionManager constructs a SessionManager. The state starts in the
// loading phase; call Initialize to settle it.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultProfileFetchTimeout
	}
	return &SessionManager{
		provider: opts.Provider,
		profiles: opts.Profiles,
		logger:   logger.With("component", "session_manager"),
		notice:   opts.Notice,
		timeout:  timeout,
		state:    domainauth.AuthState{Loading: true},
		subs:     map[int]func(domainauth.AuthState){},
	}
}

// Initialize probes the identity service for an existing session and settles
// the initial state. It runs at most once; repeated calls are no-ops. The
// manager subscribes to the provider's event stream before probing so no
// transition can slip between probe and subscription.
func (m *SessionManager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return
	}
	m.initialized = true
	m.mu.Unlock()

	cancel := m.provider.Subscribe(func(ev domainauth.Event) {
		m.OnAuthEvent(context.Background(), ev)
	})
	m.mu.Lock()
	m.cancelSub = cancel
	m.mu.Unlock()

	// Providers with expiring tokens get their refresh loop started here and
	// stopped by Close, so the loop's lifetime matches the manager's.
	if refresher, ok := m.provider.(ports.TokenRefresher); ok {
		refreshCtx, cancelRefresh := context.WithCancel(context.Background())
		m.mu.Lock()
		m.cancelRefresh = cancelRefresh
		m.mu.Unlock()
		go refresher.RunRefresh(refreshCtx, 0)
	}

	identity, err := m.provider.CurrentSession(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "session probe failed, treating as unauthenticated", "err", err)
		identity = nil
	}
	m.OnAuthEvent(ctx, domainauth.Event{Kind: domainauth.EventInitialSession, Identity: identity})
}

// Close cancels the provider subscription and stops the token refresh loop.
// The manager keeps serving snapshots of its last state afterwards.
func (m *SessionManager) Close() {
	m.mu.Lock()
	cancel := m.cancelSub
	cancelRefresh := m.cancelRefresh
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if cancelRefresh != nil {
		cancelRefresh()
	}
}

// OnAuthEvent applies one auth-change event. Loading is cleared exactly once
// per event, strictly after profile resolution, so a reader never sees a
// settled state with the profile still in flight.
func (m *SessionManager) OnAuthEvent(ctx context.Context, ev domainauth.Event) {
	epoch := m.nextEpoch()

	if ev.Identity == nil {
		m.settle(epoch, nil, nil)
		return
	}

	identity := *ev.Identity
	profile := m.fetchProfile(ctx, identity.UserID)

	if profile != nil && profile.Suspended() {
		m.forceSignOut(ctx, epoch)
		return
	}
	m.settle(epoch, &identity, profile)
}

// SignOut terminates the remote session and clears local state. Local state
// is cleared even when the remote call fails: a dead remote token is
// preferable to a console that believes it is still signed in. Idempotent.
func (m *SessionManager) SignOut(ctx context.Context) {
	epoch := m.nextEpoch()

	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.ErrorContext(ctx, "remote sign-out failed, clearing local state anyway", "err", err)
	}

	// The provider may have published a signed-out event that already
	// settled a newer epoch; settle is a no-op in that case.
	m.settle(epoch, nil, nil)
	m.sendNotice("You have been signed out.")
}

// RefreshProfile re-fetches the profile for the current identity and
// overwrites the stored one. No-op when unauthenticated. A refresh that
// surfaces a suspended profile forces sign-out like any other load.
func (m *SessionManager) RefreshProfile(ctx context.Context) {
	m.mu.Lock()
	if m.state.Identity == nil {
		m.mu.Unlock()
		return
	}
	userID := m.state.Identity.UserID
	m.epoch++
	epoch := m.epoch
	identity := *m.state.Identity
	m.mu.Unlock()

	profile := m.fetchProfile(ctx, userID)
	if profile != nil && profile.Suspended() {
		m.forceSignOut(ctx, epoch)
		return
	}
	m.settle(epoch, &identity, profile)
}

// HasCapability resolves a capability against the current profile.
func (m *SessionManager) HasCapability(name string) bool {
	m.mu.Lock()
	profile := m.state.Profile
	m.mu.Unlock()
	return domainauth.HasCapability(profile, name)
}

// Snapshot returns a copy of the current state. The returned pointers are
// private copies; mutating them does not affect the manager.
func (m *SessionManager) Snapshot() domainauth.AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.state)
}

// Subscribe registers a listener invoked with a state snapshot after every
// settled transition. The returned cancel removes the subscription.
func (m *SessionManager) Subscribe(fn func(domainauth.AuthState)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *SessionManager) nextEpoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	return m.epoch
}

// settle writes the outcome of one transition if it is still the newest one,
// clears loading, and notifies subscribers. Stale epochs are discarded.
func (m *SessionManager) settle(epoch uint64, identity *domainauth.Identity, profile *domainauth.Profile) {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	m.state = domainauth.AuthState{Identity: identity, Profile: profile, Loading: false}
	snapshot := copyState(m.state)
	fns := make([]func(domainauth.AuthState), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// fetchProfile resolves a profile within the configured bound. Lookup
// failure and not-found both come back as nil: no profile, never a
// privileged default.
func (m *SessionManager) fetchProfile(ctx context.Context, userID string) *domainauth.Profile {
	fetchCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	profile, err := m.profiles.GetByID(fetchCtx, userID)
	if err != nil {
		m.logger.ErrorContext(ctx, "profile fetch failed, treating as no profile", "user_id", userID, "err", err)
		return nil
	}
	return profile
}

// forceSignOut terminates the session of a blocked or deactivated account.
// The suspended profile is never stored into state.
func (m *SessionManager) forceSignOut(ctx context.Context, epoch uint64) {
	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.ErrorContext(ctx, "remote sign-out failed during forced sign-out", "err", err)
	}
	m.settle(epoch, nil, nil)
	m.sendNotice("Your account is not active or has been blocked.")
}

func (m *SessionManager) sendNotice(msg string) {
	if m.notice != nil {
		m.notice(msg)
	}
}

func copyState(s domainauth.AuthState) domainauth.AuthState {
	out := domainauth.AuthState{Loading: s.Loading}
	if s.Identity != nil {
		ident := *s.Identity
		out.Identity = &ident
	}
	if s.Profile != nil {
		prof := *s.Profile
		out.Profile = &prof
	}
	return out
}
