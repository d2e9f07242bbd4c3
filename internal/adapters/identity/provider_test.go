package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	apperrors "github.com/loomhq/loom-admin/internal/errors"
	"github.com/loomhq/loom-admin/internal/ports"
)

// stubIdentity is a fake identity service: OIDC discovery, a token endpoint
// for the password and refresh grants, and a revocation endpoint.
type stubIdentity struct {
	srv *httptest.Server

	mu           sync.Mutex
	tokenStatus  int // non-zero forces an error response from /token
	expiresIn    int
	grantTypes   []string
	revokes      []url.Values
	revokeStatus int
}

func newStubIdentity(t *testing.T) *stubIdentity {
	t.Helper()
	s := &stubIdentity{expiresIn: 3600}

	issuer := ""
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/authorize",
			"token_endpoint":         issuer + "/token",
			"userinfo_endpoint":      issuer + "/userinfo",
			"jwks_uri":               issuer + "/keys",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		s.mu.Lock()
		s.grantTypes = append(s.grantTypes, r.PostForm.Get("grant_type"))
		status := s.tokenStatus
		expiresIn := s.expiresIn
		grants := len(s.grantTypes)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != 0 {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  fmt.Sprintf("tok-%d", grants),
			"token_type":    "bearer",
			"expires_in":    expiresIn,
			"refresh_token": "refresh-1",
		})
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		s.mu.Lock()
		s.revokes = append(s.revokes, r.PostForm)
		status := s.revokeStatus
		s.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
		}
	})

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	issuer = s.srv.URL
	return s
}

func (s *stubIdentity) setTokenStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenStatus = code
}

func (s *stubIdentity) setExpiresIn(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresIn = seconds
}

func (s *stubIdentity) setRevokeStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeStatus = code
}

func (s *stubIdentity) grantLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.grantTypes))
	copy(out, s.grantTypes)
	return out
}

func (s *stubIdentity) revokeLog() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.revokes))
	copy(out, s.revokes)
	return out
}

func newTestFactory(t *testing.T, stub *stubIdentity) *Factory {
	t.Helper()
	factory, err := NewFactory(context.Background(), ProviderConfig{
		ClientID:     "console-client",
		ClientSecret: "console-secret",
		Scope:        "openid profile email",
		DiscoveryURL: stub.srv.URL,
		RevokeURL:    stub.srv.URL + "/revoke",
	})
	require.NoError(t, err)
	return factory
}

// subscribeEvents collects published events on a buffered channel.
func subscribeEvents(p *Provider) <-chan domainauth.Event {
	events := make(chan domainauth.Event, 8)
	p.Subscribe(func(ev domainauth.Event) { events <- ev })
	return events
}

func TestNewFactory_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{ClientSecret: "secret", DiscoveryURL: "http://example.com"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing client secret",
			config: ProviderConfig{ClientID: "client", DiscoveryURL: "http://example.com"},
			errMsg: "client secret is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret"},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewFactory_Discovery(t *testing.T) {
	stub := newStubIdentity(t)
	factory := newTestFactory(t, stub)

	assert.Equal(t, stub.srv.URL+"/token", factory.oauthCfg.Endpoint.TokenURL)
	assert.Equal(t, stub.srv.URL+"/authorize", factory.oauthCfg.Endpoint.AuthURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, factory.oauthCfg.Scopes)
}

func TestProvider_ImplementsInterfaces(t *testing.T) {
	stub := newStubIdentity(t)
	provider := newTestFactory(t, stub).NewProvider()
	var _ ports.IdentityProvider = provider
	var _ ports.TokenRefresher = provider
}

func TestProvider_SignIn_Success(t *testing.T) {
	stub := newStubIdentity(t)
	provider := newTestFactory(t, stub).NewProvider()
	events := subscribeEvents(provider)

	ident, err := provider.SignIn(context.Background(), ports.SignInInput{
		Email:    "mod@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	// No id_token in the response, so the email doubles as the user id.
	assert.Equal(t, "mod@example.com", ident.UserID)
	assert.Equal(t, "mod@example.com", ident.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), ident.ExpiresAt, 5*time.Second)

	current, err := provider.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, ident.UserID, current.UserID)

	assert.Equal(t, []string{"password"}, stub.grantLog())

	select {
	case ev := <-events:
		assert.Equal(t, domainauth.EventSignedIn, ev.Kind)
		require.NotNil(t, ev.Identity)
		assert.Equal(t, "mod@example.com", ev.Identity.UserID)
	default:
		t.Fatal("expected a signed-in event")
	}
}

func TestProvider_SignIn_InvalidCredentials(t *testing.T) {
	stub := newStubIdentity(t)
	stub.setTokenStatus(http.StatusUnauthorized)
	provider := newTestFactory(t, stub).NewProvider()
	events := subscribeEvents(provider)

	_, err := provider.SignIn(context.Background(), ports.SignInInput{
		Email:    "mod@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthFailed(err), "credential rejection must map to auth-failed")

	// Rejection leaves no session state and publishes nothing.
	current, err := provider.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Empty(t, events)
}

func TestProvider_SignIn_ServerError(t *testing.T) {
	stub := newStubIdentity(t)
	stub.setTokenStatus(http.StatusInternalServerError)
	provider := newTestFactory(t, stub).NewProvider()

	_, err := provider.SignIn(context.Background(), ports.SignInInput{
		Email:    "mod@example.com",
		Password: "secret",
	})
	require.Error(t, err)
	assert.False(t, apperrors.IsAuthFailed(err), "an identity service outage is not a credential rejection")
	assert.Contains(t, err.Error(), "password grant")
}

func TestProvider_SignIn_NoIdentityInResponse(t *testing.T) {
	stub := newStubIdentity(t)
	provider := newTestFactory(t, stub).NewProvider()

	_, err := provider.SignIn(context.Background(), ports.SignInInput{Password: "secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no identity")
}

func TestProvider_SignOut_RevokesToken(t *testing.T) {
	stub := newStubIdentity(t)
	provider := newTestFactory(t, stub).NewProvider()

	_, err := provider.SignIn(context.Background(), ports.SignInInput{
		Email:    "mod@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	events := subscribeEvents(provider)

	require.NoError(t, provider.SignOut(context.Background()))

	revokes := stub.revokeLog()
	require.Len(t, revokes, 1)
	assert.Equal(t, "tok-1", revokes[0].Get("token"))
	assert.Equal(t, "console-client", revokes[0].Get("client_id"))

	current, err := provider.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)

	select {
	case ev := <-events:
		assert.Equal(t, domainauth.EventSignedOut, ev.Kind)
	default:
		t.Fatal("expected a signed-out event")
	}
}

func TestProvider_SignOut_RevokeFailureStillClearsState(t *testing.T) {
	stub := newStubIdentity(t)
	stub.setRevokeStatus(http.StatusInternalServerError)
	provider := newTestFactory(t, stub).NewProvider()

	_, err := provider.SignIn(context.Background(), ports.SignInInput{
		Email:    "mod@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	events := subscribeEvents(provider)

	err = provider.SignOut(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoke token")

	current, err := provider.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current, "local state must clear even when revocation fails")

	select {
	case ev := <-events:
		assert.Equal(t, domainauth.EventSignedOut, ev.Kind)
	default:
		t.Fatal("expected a signed-out event despite the revocation failure")
	}
}

func TestProvider_SignOut_WithoutSession(t *testing.T) {
	stub := newStubIdentity(t)
	provider := newTestFactory(t, stub).NewProvider()

	require.NoError(t, provider.SignOut(context.Background()))
	assert.Empty(t, stub.revokeLog(), "nothing to revoke without a session")
}

func TestRunRefresh_PublishesTokenRefreshed(t *testing.T) {
	stub := newStubIdentity(t)
	// Hand out a token that is already inside the refresh window.
	stub.setExpiresIn(5)
	provider := newTestFactory(t, stub).NewProvider()

	ident, err := provider.SignIn(context.Background(), ports.SignInInput{
		Email:    "mod@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	// The refreshed token gets a normal lifetime again.
	stub.setExpiresIn(3600)
	events := subscribeEvents(provider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go provider.RunRefresh(ctx, 10*time.Millisecond)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind != domainauth.EventTokenRefreshed {
				continue
			}
			require.NotNil(t, ev.Identity)
			assert.True(t, ev.Identity.ExpiresAt.After(ident.ExpiresAt),
				"refresh must move the identity expiry forward")
			assert.Contains(t, stub.grantLog(), "refresh_token")
			return
		case <-deadline:
			t.Fatal("no token-refreshed event before deadline")
		}
	}
}
