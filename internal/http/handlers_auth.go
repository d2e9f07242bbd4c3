// Package httpx provides the JSON API surface of the admin console.
package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/ports"
	"github.com/loomhq/loom-admin/internal/service"
)

// SessionCookieName is the cookie carrying the opaque console session id.
const SessionCookieName = "session_id"

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Login(ctx context.Context, in ports.SignInInput) (*service.LoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Manager(ctx context.Context, session domainauth.Session) *service.SessionManager
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	CookieSecure bool
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID    string              `json:"user_id"`
	Email     string              `json:"email"`
	Role      domainauth.Role     `json:"role"`
	Profile   *domainauth.Profile `json:"profile,omitempty"`
	ExpiresAt time.Time           `json:"expires_at"`
}

var errNoSession = errors.New("authentication required")

// Login handles credential sign-in.
// POST /api/auth/login with {"email": ..., "password": ...}.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Login(r.Context(), ports.SignInInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.logger().InfoContext(r.Context(), "login rejected", "email", req.Email, "err", err)
		WriteAppError(w, err, "login_failed")
		return
	}

	h.setSessionCookie(w, result.Session)
	WriteJSON(w, http.StatusOK, sessionResponse{
		UserID:    result.Session.UserID,
		Email:     result.Session.Email,
		Role:      result.Session.Role,
		Profile:   result.State.Profile,
		ExpiresAt: result.Session.ExpiresAt,
	})
}

// Logout terminates the current session. Safe to call without one.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout cleanup failed", "err", logoutErr)
		}
	}

	h.clearSessionCookie(w)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me reports the current session's identity, profile, and capabilities view.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "unauthenticated",
			Err:     errNoSession,
		})
		return
	}

	state, _ := GetAuthStateFromContext(r.Context())
	WriteJSON(w, http.StatusOK, sessionResponse{
		UserID:    session.UserID,
		Email:     session.Email,
		Role:      state.Role(),
		Profile:   state.Profile,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, session domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
