package auth

// Capability names checked through HasCapability. A capability is just a
// string so per-profile overrides can name capabilities the static table
// does not know about.
const (
	CapModerateContent = "moderate_content"
	CapManageComments  = "manage_comments"
	CapViewAnalytics   = "view_analytics"
	CapCreateContent   = "create_content"
	CapEditContent     = "edit_content"
	CapManagePosts     = "manage_posts"
	CapViewContent     = "view_content"
	CapCreateComments  = "create_comments"
)

// roleCapabilities is the static role grant table. Fixed at compile time,
// never user-editable. Admin is intentionally absent: it is handled by the
// bypass rule ahead of this table.
var roleCapabilities = map[Role]map[string]bool{
	RoleModerator: {
		CapModerateContent: true,
		CapManageComments:  true,
		CapViewAnalytics:   true,
	},
	RoleEditor: {
		CapCreateContent: true,
		CapEditContent:   true,
		CapManagePosts:   true,
	},
	RoleUser: {
		CapViewContent:    true,
		CapCreateComments: true,
	},
}

// capabilityRule is one step of the resolution chain. decided is false when
// the rule has no opinion and the next rule should run.
type capabilityRule func(p *Profile, name string) (allowed, decided bool)

// adminBypass grants everything to admins. It runs first so that an
// explicit override can never deny an admin.
func adminBypass(p *Profile, _ string) (bool, bool) {
	if p.Role == RoleAdmin {
		return true, true
	}
	return false, false
}

// explicitOverride applies the per-profile permissions map. An entry wins
// in either direction, including denying a capability the static table
// would grant.
func explicitOverride(p *Profile, name string) (bool, bool) {
	if p.Permissions == nil {
		return false, false
	}
	allowed, ok := p.Permissions[name]
	return allowed, ok
}

// staticGrant consults the fixed role table.
func staticGrant(p *Profile, name string) (bool, bool) {
	if caps, ok := roleCapabilities[p.Role]; ok && caps[name] {
		return true, true
	}
	return false, false
}

// capabilityChain is evaluated in order; the first rule that decides wins.
var capabilityChain = []capabilityRule{adminBypass, explicitOverride, staticGrant}

// HasCapability resolves a capability name for a profile: admin bypass,
// then explicit per-profile override, then the static role table, then
// deny. A nil profile never has capabilities.
func HasCapability(p *Profile, name string) bool {
	if p == nil {
		return false
	}
	for _, rule := range capabilityChain {
		if allowed, decided := rule(p, name); decided {
			return allowed
		}
	}
	return false
}
