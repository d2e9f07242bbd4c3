package auth

// Decision is the outcome of evaluating a guard requirement against the
// current auth state.
type Decision int

const (
	// DecisionAllow renders the protected content.
	DecisionAllow Decision = iota
	// DecisionLoading means no decision is final yet; render a loading
	// indicator only.
	DecisionLoading
	// DecisionRedirect sends the caller to the login entry point,
	// preserving the originally requested location.
	DecisionRedirect
	// DecisionDeny renders the caller-supplied fallback, or a generic
	// denial naming the current and required roles.
	DecisionDeny
)

// Requirement declares what a guarded route or view needs.
//
// Role and AnyOf are distinct mechanisms on purpose: Role uses exact
// matching with an admin bypass, AnyOf is explicit set membership with no
// implicit bypass. Routes depend on one shape or the other, and collapsing
// them changes which roles can reach which routes.
type Requirement struct {
	RequireAuth bool
	Role        Role   // exact match + admin bypass, when set
	AnyOf       []Role // allow-list membership, when non-empty
}

// Result carries the decision plus the context needed to render a denial.
type Result struct {
	Decision     Decision
	CurrentRole  Role
	RequiredRole Role   // set for exact-role denials
	RequiredAny  []Role // set for allow-list denials
}

// Evaluate decides whether the given auth state may proceed under req.
func Evaluate(state AuthState, req Requirement) Result {
	if state.Loading {
		return Result{Decision: DecisionLoading}
	}

	if req.RequireAuth && !state.IsAuthenticated() {
		return Result{Decision: DecisionRedirect}
	}

	if req.Role != "" {
		role := state.Role()
		if role != req.Role && role != RoleAdmin {
			return Result{
				Decision:     DecisionDeny,
				CurrentRole:  role,
				RequiredRole: req.Role,
			}
		}
	}

	if len(req.AnyOf) > 0 {
		role := state.Role()
		allowed := false
		for _, r := range req.AnyOf {
			if role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			return Result{
				Decision:    DecisionDeny,
				CurrentRole: role,
				RequiredAny: append([]Role(nil), req.AnyOf...),
			}
		}
	}

	return Result{Decision: DecisionAllow, CurrentRole: state.Role()}
}

// RequireAuthenticated passes any authenticated, non-suspended profile.
func RequireAuthenticated() Requirement {
	return Requirement{RequireAuth: true}
}

// RequireAdmin passes only admins, trivially via the bypass rule.
func RequireAdmin() Requirement {
	return Requirement{RequireAuth: true, Role: RoleAdmin}
}

// RequireModeratorOrAbove allow-lists admin and moderator.
func RequireModeratorOrAbove() Requirement {
	return Requirement{RequireAuth: true, AnyOf: []Role{RoleAdmin, RoleModerator}}
}

// RequireEditorOrAbove allow-lists admin, moderator, and editor.
func RequireEditorOrAbove() Requirement {
	return Requirement{RequireAuth: true, AnyOf: []Role{RoleAdmin, RoleModerator, RoleEditor}}
}
