package auth

// Package auth contains domain-level types for identities, profiles, and
// derived session state. It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleEditor    Role = "editor"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleEditor, RoleUser:
		return true
	default:
		return false
	}
}

// Identity represents the authenticated principal returned by the identity
// service. Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (e.g., sub claim)
	Email     string
	ExpiresAt time.Time // absolute expiry from the provider token
}

// Profile is the platform record for a user id: role, status flags, and
// optional per-capability overrides. Display attributes are carried through
// for the console screens and have no bearing on access decisions.
type Profile struct {
	UserID      string          `json:"user_id" db:"user_id"`
	Email       string          `json:"email" db:"email"`
	Role        Role            `json:"role" db:"role"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	Blocked     bool            `json:"blocked" db:"blocked"`
	Permissions map[string]bool `json:"permissions,omitempty" db:"permissions"`

	DisplayName string    `json:"display_name" db:"display_name"`
	Bio         string    `json:"bio" db:"bio"`
	AvatarURL   string    `json:"avatar_url" db:"avatar_url"`
	Website     string    `json:"website" db:"website"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Suspended reports whether the profile must never reach an authenticated
// state. A suspended profile forces immediate session termination.
func (p Profile) Suspended() bool { return p.Blocked || !p.IsActive }

// AuthState is the derived, in-memory session state combining an identity
// with its profile. Loading is true only while the initial session probe or
// an auth transition is in flight, before the first decision is settled.
type AuthState struct {
	Identity *Identity
	Profile  *Profile
	Loading  bool
}

// IsAuthenticated reports whether both an identity and a profile are present.
func (s AuthState) IsAuthenticated() bool { return s.Identity != nil && s.Profile != nil }

// Role returns the profile role, or the empty string when no profile is set.
func (s AuthState) Role() Role {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

// IsAdmin reports exact role equality. It is deliberately not cumulative:
// capability checks are the cumulative path, these flags are not.
func (s AuthState) IsAdmin() bool { return s.Role() == RoleAdmin }

// IsModerator reports exact role equality; an admin is not a moderator
// under this flag.
func (s AuthState) IsModerator() bool { return s.Role() == RoleModerator }

// IsEditor reports exact role equality; an admin is not an editor under
// this flag.
func (s AuthState) IsEditor() bool { return s.Role() == RoleEditor }

// HasCapability resolves a capability name against the state's profile.
func (s AuthState) HasCapability(name string) bool { return HasCapability(s.Profile, name) }

// Session is the server-side record persisted for a signed-in console user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EventKind identifies an auth-change event from the identity service.
type EventKind string

const (
	EventInitialSession EventKind = "initial_session"
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is one auth-change notification. Identity is nil for sign-out.
type Event struct {
	Kind     EventKind
	Identity *Identity
}
