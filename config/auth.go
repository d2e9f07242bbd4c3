package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOIDC authenticates against the hosted identity service.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev uses the fixed-credential dev provider (development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, dev)", v)
	}
}

// OIDCConfig contains identity service configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"loom-admin"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	RevokeURL    string `env:"REVOKE_URL"`
}

// DevAuthConfig controls the dev provider identity.
// Used when AUTH_MODE=dev for development and testing.
type DevAuthConfig struct {
	UserID          string        `env:"USER_ID"          envDefault:"dev-user"`
	Email           string        `env:"EMAIL"            envDefault:"dev@example.com"`
	Password        string        `env:"PASSWORD"         envDefault:"dev-password"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}
