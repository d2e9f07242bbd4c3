package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Guard returns a middleware that evaluates a guard requirement against the
// live auth state of the request's session. The four outcomes map onto HTTP:
// allow proceeds, loading answers 503 with Retry-After, redirect sends the
// caller to the login entry point preserving the requested location, and
// deny answers 403 naming the current and required roles.
func Guard(authSvc AuthServiceInterface, req domainauth.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, state := resolveAuthState(r, authSvc)
			result := domainauth.Evaluate(state, req)

			switch result.Decision {
			case domainauth.DecisionLoading:
				w.Header().Set("Retry-After", "1")
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "auth_pending",
					Err:     errors.New("session state is still resolving"),
				})
			case domainauth.DecisionRedirect:
				redirectToLogin(w, r)
			case domainauth.DecisionDeny:
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_role",
					Err:     denialError(result),
				})
			default:
				ctx := SetSessionInContext(r.Context(), session)
				ctx = SetAuthStateInContext(ctx, state)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// RequireAuth guards a route for any authenticated, non-suspended profile.
func RequireAuth(authSvc AuthServiceInterface) func(http.Handler) http.Handler {
	return Guard(authSvc, domainauth.RequireAuthenticated())
}

// RequireRole guards a route with exact role matching plus the admin bypass.
func RequireRole(authSvc AuthServiceInterface, role domainauth.Role) func(http.Handler) http.Handler {
	return Guard(authSvc, domainauth.Requirement{RequireAuth: true, Role: role})
}

// RequireAnyRole guards a route with allow-list membership. There is no
// implicit admin bypass here; include RoleAdmin in the list when admins
// should pass.
func RequireAnyRole(authSvc AuthServiceInterface, roles ...domainauth.Role) func(http.Handler) http.Handler {
	return Guard(authSvc, domainauth.Requirement{RequireAuth: true, AnyOf: roles})
}

// RequireCapability guards a route on a resolved capability: admin bypass,
// per-profile override, then the static role grants.
func RequireCapability(authSvc AuthServiceInterface, capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, state := resolveAuthState(r, authSvc)
			if state.Loading {
				w.Header().Set("Retry-After", "1")
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "auth_pending",
					Err:     errors.New("session state is still resolving"),
				})
				return
			}
			if !state.IsAuthenticated() {
				redirectToLogin(w, r)
				return
			}
			if !state.HasCapability(capability) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "missing_capability",
					Err:     fmt.Errorf("capability %q is required", capability),
				})
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			ctx = SetAuthStateInContext(ctx, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveAuthState loads the session record from the request cookie and asks
// its session manager for the settled auth state. A missing or expired
// session yields an unauthenticated, non-loading state.
func resolveAuthState(r *http.Request, authSvc AuthServiceInterface) (*domainauth.Session, domainauth.AuthState) {
	sessionCookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, domainauth.AuthState{}
	}

	session, err := authSvc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil || session == nil {
		return nil, domainauth.AuthState{}
	}

	state := authSvc.Manager(r.Context(), *session).Snapshot()
	return session, state
}

// redirectToLogin sends the caller to the login entry point, carrying the
// originally requested location so it can be restored after sign-in.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/auth/login?redirect_uri="+url.QueryEscape(target), http.StatusFound)
}

func denialError(result domainauth.Result) error {
	current := string(result.CurrentRole)
	if current == "" {
		current = "none"
	}
	if result.RequiredRole != "" {
		return fmt.Errorf("role %s is required, current role is %s", result.RequiredRole, current)
	}
	if len(result.RequiredAny) > 0 {
		names := make([]string, len(result.RequiredAny))
		for i, role := range result.RequiredAny {
			names[i] = string(role)
		}
		return fmt.Errorf("one of roles %s is required, current role is %s",
			strings.Join(names, ", "), current)
	}
	return errors.New("access denied")
}
