//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
)

// ProfileListOptions controls paging and filtering for listing profiles.
// Sort supports "created_at", "display_name"; Dir "asc"/"desc".
type ProfileListOptions struct {
	Limit   int
	Offset  int
	Q       *string          // substring match on display_name or email (ILIKE)
	Role    *domainauth.Role // exact match
	Active  *bool            // exact match on is_active
	Blocked *bool            // exact match
	Sort    string
	Dir     string
}

// UpdateProfileRequest represents the console-editable fields of a profile.
// Permissions, when non-nil, replaces the whole override map; an empty map
// clears all overrides.
type UpdateProfileRequest struct {
	Role        *domainauth.Role `json:"role,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Blocked     *bool            `json:"blocked,omitempty"`
	Permissions map[string]bool  `json:"permissions,omitempty"`
	DisplayName *string          `json:"display_name,omitempty"`
	Bio         *string          `json:"bio,omitempty"`
	AvatarURL   *string          `json:"avatar_url,omitempty"`
	Website     *string          `json:"website,omitempty"`
}

// Validate validates UpdateProfileRequest.
func (r *UpdateProfileRequest) Validate() error {
	if r.Role != nil && !r.Role.Valid() {
		return errors.New("role must be one of: admin, moderator, editor, user")
	}
	if r.DisplayName != nil && strings.TrimSpace(*r.DisplayName) == "" {
		return errors.New("display_name cannot be empty")
	}
	return nil
}
