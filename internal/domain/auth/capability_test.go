package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func activeProfile(role Role) *Profile {
	return &Profile{UserID: "u-1", Role: role, IsActive: true}
}

func TestHasCapability_NilProfile(t *testing.T) {
	assert.False(t, HasCapability(nil, CapViewContent))
}

func TestHasCapability_AdminBypassesEverything(t *testing.T) {
	p := activeProfile(RoleAdmin)

	// Every static capability, plus names outside the table entirely.
	names := []string{
		CapModerateContent, CapManageComments, CapViewAnalytics,
		CapCreateContent, CapEditContent, CapManagePosts,
		CapViewContent, CapCreateComments,
		"totally_unknown_capability",
	}
	for _, name := range names {
		assert.True(t, HasCapability(p, name), "admin must have %q", name)
	}
}

func TestHasCapability_AdminBypassBeatsExplicitDeny(t *testing.T) {
	p := activeProfile(RoleAdmin)
	p.Permissions = map[string]bool{CapManagePosts: false}

	assert.True(t, HasCapability(p, CapManagePosts))
}

func TestHasCapability_ExplicitOverrideDeniesStaticGrant(t *testing.T) {
	p := activeProfile(RoleModerator)
	p.Permissions = map[string]bool{CapManageComments: false}

	assert.False(t, HasCapability(p, CapManageComments))
	// Untouched capabilities still come from the static table.
	assert.True(t, HasCapability(p, CapModerateContent))
}

func TestHasCapability_ExplicitOverrideGrants(t *testing.T) {
	p := activeProfile(RoleUser)
	p.Permissions = map[string]bool{CapViewAnalytics: true}

	assert.True(t, HasCapability(p, CapViewAnalytics))
}

func TestHasCapability_StaticTable(t *testing.T) {
	tests := []struct {
		role Role
		name string
		want bool
	}{
		{RoleModerator, CapModerateContent, true},
		{RoleModerator, CapManageComments, true},
		{RoleModerator, CapViewAnalytics, true},
		{RoleModerator, CapCreateContent, false},
		{RoleEditor, CapCreateContent, true},
		{RoleEditor, CapEditContent, true},
		{RoleEditor, CapManagePosts, true},
		{RoleEditor, CapModerateContent, false},
		{RoleUser, CapViewContent, true},
		{RoleUser, CapCreateComments, true},
		{RoleUser, CapManagePosts, false},
		{Role("unknown"), CapViewContent, false},
	}
	for _, tt := range tests {
		p := activeProfile(tt.role)
		assert.Equal(t, tt.want, HasCapability(p, tt.name), "%s/%s", tt.role, tt.name)
	}
}

func TestAuthState_HasCapability(t *testing.T) {
	state := AuthState{
		Identity: &Identity{UserID: "u-1"},
		Profile:  activeProfile(RoleUser),
	}
	assert.True(t, state.HasCapability(CapViewContent))
	assert.False(t, state.HasCapability(CapManagePosts))

	var empty AuthState
	assert.False(t, empty.HasCapability(CapViewContent))
}
