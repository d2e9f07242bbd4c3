package devauth

// Package devauth provides a config-driven IdentityProvider for local
// development. It accepts one fixed credential pair and never talks to a
// remote service.

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/loomhq/loom-admin/internal/errors"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/ports"
)

// Config controls the dev provider. All fields are required except
// SessionDuration, which defaults to 8h.
type Config struct {
	UserID          string
	Email           string
	Password        string
	SessionDuration time.Duration
}

// Provider implements ports.IdentityProvider for local development.
type Provider struct {
	cfg Config

	mu       sync.Mutex
	identity *domainauth.Identity
	subs     map[int]func(domainauth.Event)
	nextSub  int

	// SignOutErr, when set, is returned by SignOut after local state is
	// cleared. Lets dev setups exercise the degraded sign-out path.
	SignOutErr error
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a dev provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("dev auth: Password is required")
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 8 * time.Hour
	}
	return &Provider{cfg: cfg, subs: map[int]func(domainauth.Event){}}, nil
}

// CurrentSession returns the signed-in identity, or nil before sign-in.
func (p *Provider) CurrentSession(_ context.Context) (*domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.identity == nil || time.Now().After(p.identity.ExpiresAt) {
		return nil, nil
	}
	ident := *p.identity
	return &ident, nil
}

// SignIn checks credentials against the configured pair.
func (p *Provider) SignIn(_ context.Context, in ports.SignInInput) (domainauth.Identity, error) {
	if in.Email != p.cfg.Email || in.Password != p.cfg.Password {
		return domainauth.Identity{}, apperrors.AuthFailed("invalid credentials")
	}

	ident := domainauth.Identity{
		UserID:    p.cfg.UserID,
		Email:     p.cfg.Email,
		ExpiresAt: time.Now().Add(p.cfg.SessionDuration),
	}

	p.mu.Lock()
	p.identity = &ident
	p.mu.Unlock()

	p.publish(domainauth.Event{Kind: domainauth.EventSignedIn, Identity: &ident})
	return ident, nil
}

// SignOut clears the dev session and publishes a signed-out event.
func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.identity = nil
	p.mu.Unlock()

	p.publish(domainauth.Event{Kind: domainauth.EventSignedOut})
	return p.SignOutErr
}

// Subscribe registers a listener for auth-change events.
func (p *Provider) Subscribe(fn func(domainauth.Event)) (cancel func()) {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Provider) publish(ev domainauth.Event) {
	p.mu.Lock()
	fns := make([]func(domainauth.Event), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
