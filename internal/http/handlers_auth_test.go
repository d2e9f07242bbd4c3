package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/service"
)

func newTestRouter(svc *service.AuthService) http.Handler {
	return NewRouter(RouterServices{Auth: svc, Logger: discardLogger()})
}

func postJSON(router http.Handler, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginEstablishesSession(t *testing.T) {
	svc := newAuthEnv(t, consoleProfile(domainauth.RoleAdmin, nil))
	router := newTestRouter(svc)

	rec := postJSON(router, "/api/auth/login", `{"email":"console@example.com","password":"hunter2"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testUserID, resp.UserID)
	assert.Equal(t, testEmail, resp.Email)
	assert.Equal(t, domainauth.RoleAdmin, resp.Role)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, domainauth.RoleAdmin, resp.Profile.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthEnv(t, consoleProfile(domainauth.RoleAdmin, nil))
	router := newTestRouter(svc)

	rec := postJSON(router, "/api/auth/login", `{"email":"console@example.com","password":"wrong"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestLoginRejectsBlockedAccount(t *testing.T) {
	blocked := consoleProfile(domainauth.RoleEditor, nil)
	blocked.Blocked = true
	svc := newAuthEnv(t, blocked)
	router := newTestRouter(svc)

	rec := postJSON(router, "/api/auth/login", `{"email":"console@example.com","password":"hunter2"}`, nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "blocked")
}

func TestLoginRejectsAccountWithoutProfile(t *testing.T) {
	svc := newAuthEnv(t, nil)
	router := newTestRouter(svc)

	rec := postJSON(router, "/api/auth/login", `{"email":"console@example.com","password":"hunter2"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no platform profile")
}

func TestLoginValidatesRequest(t *testing.T) {
	svc := newAuthEnv(t, consoleProfile(domainauth.RoleAdmin, nil))
	router := newTestRouter(svc)

	rec := postJSON(router, "/api/auth/login", `{"password":"hunter2"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email is required")

	rec = postJSON(router, "/api/auth/login", `{"email":"console@example.com","nope":1}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestMeReportsCurrentSession(t *testing.T) {
	svc := newAuthEnv(t, consoleProfile(domainauth.RoleModerator, nil))
	router := newTestRouter(svc)
	cookie := signIn(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testUserID, resp.UserID)
	assert.Equal(t, domainauth.RoleModerator, resp.Role)
}

func TestMeRedirectsWithoutSession(t *testing.T) {
	svc := newAuthEnv(t, consoleProfile(domainauth.RoleModerator, nil))
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	svc := newAuthEnv(t, consoleProfile(domainauth.RoleAdmin, nil))
	router := newTestRouter(svc)
	cookie := signIn(t, svc)

	rec := postJSON(router, "/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The session is gone, so a guarded route redirects again.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	assert.Equal(t, http.StatusFound, meRec.Code)
}

func TestLogoutWithoutSessionIsNoOp(t *testing.T) {
	svc := newAuthEnv(t, consoleProfile(domainauth.RoleAdmin, nil))
	router := newTestRouter(svc)

	rec := postJSON(router, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed_out")
}

func TestHealthz(t *testing.T) {
	svc := newAuthEnv(t, nil)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
