package identity

// Package identity adapts the hosted identity service to the
// ports.IdentityProvider interface using OIDC discovery and the OAuth2
// password grant. One Provider instance holds the token state for one
// console session.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	apperrors "github.com/loomhq/loom-admin/internal/errors"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/ports"
)

// ProviderConfig holds configuration for the identity service connection.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	RevokeURL    string       // optional token revocation endpoint
	HTTPClient   *http.Client // optional, defaults to a 30s-timeout client
}

// Factory performs OIDC discovery once and stamps out per-session Providers
// that share the discovered endpoints and verifier.
type Factory struct {
	oauthCfg  oauth2.Config
	verifier  *gooidc.IDTokenVerifier
	revokeURL string
	client    *http.Client
}

// NewFactory validates config and runs discovery against the issuer.
func NewFactory(ctx context.Context, cfg ProviderConfig) (*Factory, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

	discoveryCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(discoveryCtx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &Factory{
		oauthCfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		verifier:  op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		revokeURL: cfg.RevokeURL,
		client:    httpClient,
	}, nil
}

// NewProvider returns a fresh per-session Provider.
func (f *Factory) NewProvider() *Provider {
	return &Provider{factory: f, subs: map[int]func(domainauth.Event){}}
}

// Provider implements ports.IdentityProvider against the identity service.
type Provider struct {
	factory *Factory

	mu       sync.Mutex
	token    *oauth2.Token
	identity *domainauth.Identity
	subs     map[int]func(domainauth.Event)
	nextSub  int
}

var _ ports.IdentityProvider = (*Provider)(nil)

// CurrentSession returns the identity of the held token when it is still
// valid, or nil when there is no live session.
func (p *Provider) CurrentSession(_ context.Context) (*domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.identity == nil || time.Now().After(p.identity.ExpiresAt) {
		return nil, nil
	}
	ident := *p.identity
	return &ident, nil
}

// SignIn authenticates credentials with the password grant. A rejected
// credential pair leaves all session state untouched.
func (p *Provider) SignIn(ctx context.Context, in ports.SignInInput) (domainauth.Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.factory.client)
	token, err := p.factory.oauthCfg.PasswordCredentialsToken(ctx, in.Email, in.Password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			(retrieveErr.Response.StatusCode == http.StatusBadRequest ||
				retrieveErr.Response.StatusCode == http.StatusUnauthorized) {
			return domainauth.Identity{}, apperrors.AuthFailed("invalid credentials")
		}
		return domainauth.Identity{}, fmt.Errorf("password grant: %w", err)
	}

	ident, err := p.identityFromToken(ctx, token, in.Email)
	if err != nil {
		return domainauth.Identity{}, err
	}

	p.mu.Lock()
	p.token = token
	p.identity = &ident
	p.mu.Unlock()

	p.publish(domainauth.Event{Kind: domainauth.EventSignedIn, Identity: &ident})
	return ident, nil
}

// SignOut revokes the held token remotely and always clears local token
// state, publishing a signed-out event even when revocation fails.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.token
	p.token = nil
	p.identity = nil
	p.mu.Unlock()

	defer p.publish(domainauth.Event{Kind: domainauth.EventSignedOut})

	if token == nil || p.factory.revokeURL == "" {
		return nil
	}

	form := url.Values{
		"token":           {token.AccessToken},
		"token_type_hint": {"access_token"},
		"client_id":       {p.factory.oauthCfg.ClientID},
		"client_secret":   {p.factory.oauthCfg.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.factory.revokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.factory.client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("revoke token: unexpected status %d", resp.StatusCode)
	}
	return nil
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

// RunRefresh refreshes the held token shortly before it expires and
// publishes token-refreshed events until ctx is cancelled or the session
// ends. Intended to run in its own goroutine per signed-in session.
func (p *Provider) RunRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ident, refreshed := p.refreshIfNeeded(ctx); refreshed {
				p.publish(domainauth.Event{Kind: domainauth.EventTokenRefreshed, Identity: ident})
			}
		}
	}
}

func (p *Provider) refreshIfNeeded(ctx context.Context) (*domainauth.Identity, bool) {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()
	if token == nil || token.RefreshToken == "" {
		return nil, false
	}
	if time.Until(token.Expiry) > 2*time.Minute {
		return nil, false
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.factory.client)
	fresh, err := p.factory.oauthCfg.TokenSource(ctx, token).Token()
	if err != nil || fresh.AccessToken == token.AccessToken {
		return nil, false
	}

	p.mu.Lock()
	p.token = fresh
	if p.identity != nil {
		p.identity.ExpiresAt = fresh.Expiry
	}
	ident := p.identity
	p.mu.Unlock()
	if ident == nil {
		return nil, false
	}
	out := *ident
	return &out, true
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

// idClaims is the subset of token claims the console cares about.
type idClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

func (p *Provider) identityFromToken(
	ctx context.Context,
	token *oauth2.Token,
	fallbackEmail string,
) (domainauth.Identity, error) {
	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	ident := domainauth.Identity{Email: fallbackEmail, ExpiresAt: expiresAt}

	rawID, _ := token.Extra("id_token").(string)
	if rawID == "" {
		if ident.Email == "" {
			return domainauth.Identity{}, errors.New("token response carries no identity")
		}
		ident.UserID = ident.Email
		return ident, nil
	}

	idTok, err := p.factory.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	var claims idClaims
	if err := idTok.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if claims.Sub == "" {
		return domainauth.Identity{}, errors.New("id_token missing sub claim")
	}
	ident.UserID = claims.Sub
	if claims.Email != "" {
		ident.Email = claims.Email
	}
	return ident, nil
}
