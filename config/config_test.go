package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.IsDev {
		t.Error("expected IsDev to default to false")
	}
	if cfg.Auth.Mode != AuthModeOIDC {
		t.Errorf("expected auth mode oidc, got %q", cfg.Auth.Mode)
	}
	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5432 {
		t.Errorf("unexpected postgres defaults: %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)
	}
	if cfg.Postgres.Name != "loom_admin" {
		t.Errorf("expected database loom_admin, got %q", cfg.Postgres.Name)
	}
	if !cfg.Postgres.RunMigrationsOnStart {
		t.Error("expected migrations on start by default")
	}
	if cfg.Redis.URI != "localhost:6379" {
		t.Errorf("unexpected redis URI default: %q", cfg.Redis.URI)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled by default")
	}
	if cfg.Cache.ProfileTTL != 30*time.Second {
		t.Errorf("unexpected profile TTL default: %s", cfg.Cache.ProfileTTL)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("unexpected HTTP addr default: %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.CookieSecure {
		t.Error("expected CookieSecure to default to false")
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oidc")
	t.Setenv("OIDC_CLIENT_ID", "admin-client")
	t.Setenv("OIDC_CLIENT_SECRET", "super-secret")
	t.Setenv("OIDC_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("OIDC_REVOKE_URL", "https://login.example.com/oauth2/revoke")
	t.Setenv("OIDC_SCOPE", "openid profile email")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_PASSWORD", "hunter2")
	t.Setenv("DEV_AUTH_SESSION_DURATION", "2h")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOIDC,
		OIDC: OIDCConfig{
			ClientID:     "admin-client",
			ClientSecret: "super-secret",
			Scope:        "openid profile email",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
			RevokeURL:    "https://login.example.com/oauth2/revoke",
		},
		DevAuth: DevAuthConfig{
			UserID:          "dev-user",
			Email:           "dev@example.com",
			Password:        "hunter2",
			SessionDuration: 2 * time.Hour,
		},
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    AuthMode
		expectError bool
	}{
		{input: "oidc", expected: AuthModeOIDC},
		{input: "OIDC", expected: AuthModeOIDC},
		{input: "dev", expected: AuthModeDev},
		{input: "Dev", expected: AuthModeDev},
		{input: "mock", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if mode != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, mode)
			}
		})
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Error("expected NODE_ENV=development to enable dev mode")
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{}
	h.Sanitize()
	if h.Addr != ":8080" {
		t.Errorf("expected empty addr to fall back to :8080, got %q", h.Addr)
	}

	h = HTTPConfig{Addr: ":9090"}
	h.Sanitize()
	if h.Addr != ":9090" {
		t.Errorf("expected configured addr to survive, got %q", h.Addr)
	}
}
