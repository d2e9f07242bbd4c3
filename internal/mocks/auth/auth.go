// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.ProfileStore     = (*MemoryProfileStore)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
)

// MockIdentityProvider simulates the identity service for tests. Behavior is
// overridable per method; Fire delivers events to subscribers synchronously,
// which keeps event-ordering tests deterministic.
type MockIdentityProvider struct {
	CurrentSessionFunc func(ctx context.Context) (*domainauth.Identity, error)
	SignInFunc         func(ctx context.Context, in ports.SignInInput) (domainauth.Identity, error)
	SignOutFunc        func(ctx context.Context) error

	// DefaultUser is returned by SignIn when SignInFunc is nil.
	DefaultUser domainauth.Identity

	mu         sync.Mutex
	subs       map[int]func(domainauth.Event)
	nextSub    int
	signOutLog int
	lastSignIn *ports.SignInInput
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			Email:     "mock.user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
		subs: map[int]func(domainauth.Event){},
	}
}

func (m *MockIdentityProvider) CurrentSession(ctx context.Context) (*domainauth.Identity, error) {
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx)
	}
	return nil, nil
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, in ports.SignInInput) (domainauth.Identity, error) {
	m.mu.Lock()
	inCopy := in
	m.lastSignIn = &inCopy
	m.mu.Unlock()

	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, in)
	}
	user := m.DefaultUser
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.signOutLog++
	m.mu.Unlock()

	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx)
	}
	return nil
}

// SignOutCalls reports how many times SignOut was invoked.
func (m *MockIdentityProvider) SignOutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOutLog
}

// LastSignIn returns the most recent SignIn input, or nil.
func (m *MockIdentityProvider) LastSignIn() *ports.SignInInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSignIn
}

func (m *MockIdentityProvider) Subscribe(fn func(domainauth.Event)) (cancel func()) {
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

// Fire delivers an event to all subscribers on the caller's goroutine.
func (m *MockIdentityProvider) Fire(ev domainauth.Event) {
	m.mu.Lock()
	fns := make([]func(domainauth.Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// MemoryProfileStore is an in-memory profile lookup for unit tests.
// GetFunc, when set, takes precedence over the stored map; it is how tests
// inject slow or failing fetches.
type MemoryProfileStore struct {
	GetFunc func(ctx context.Context, userID string) (*domainauth.Profile, error)

	mu       sync.Mutex
	profiles map[string]domainauth.Profile
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: map[string]domainauth.Profile{}}
}

// Put stores or replaces a profile.
func (m *MemoryProfileStore) Put(p domainauth.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
}

func (m *MemoryProfileStore) GetByID(ctx context.Context, userID string) (*domainauth.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}
