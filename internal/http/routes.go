package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/loomhq/loom-admin/internal/domain/auth"
	"github.com/loomhq/loom-admin/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth        AuthServiceInterface
	Profiles    *service.ProfileService
	Posts       *service.PostService
	Comments    *service.CommentService
	Engagements *service.EngagementService
	Moderation  *service.ModerationService

	CookieDomain string
	CookieSecure bool
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		CookieSecure: services.CookieSecure,
		Logger:       logger,
	}
	registerAuthRoutes(mux, authHandlers, services.Auth)
	registerProfileRoutes(mux, &ProfileHandlers{Svc: services.Profiles}, services.Auth)
	registerPostRoutes(mux, &PostHandlers{Svc: services.Posts}, services.Auth)
	registerCommentRoutes(mux, &CommentHandlers{Svc: services.Comments}, services.Auth)
	registerEngagementRoutes(mux, &EngagementHandlers{Svc: services.Engagements}, services.Auth)
	registerFlagRoutes(mux, &FlagHandlers{Svc: services.Moderation}, services.Auth)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Logging(logger)(Recover(logger)(mux))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, auth AuthServiceInterface) {
	mux.Handle("POST /api/auth/login", http.HandlerFunc(h.Login))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(h.Logout))
	mux.Handle("GET /api/auth/me", RequireAuth(auth)(http.HandlerFunc(h.Me)))
}

// Profile reads are open to admins and moderators; role, status, and
// permission changes are admin only.
func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers, auth AuthServiceInterface) {
	readGuard := RequireAnyRole(auth, domainauth.RoleAdmin, domainauth.RoleModerator)
	writeGuard := RequireRole(auth, domainauth.RoleAdmin)

	mux.Handle("GET /api/profiles", readGuard(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/profiles/{id}", readGuard(http.HandlerFunc(h.GetByID)))
	mux.Handle("PATCH /api/profiles/{id}", writeGuard(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/profiles/{id}", writeGuard(http.HandlerFunc(h.Delete)))
}

// Post edits ride on the manage_posts capability so editors keep their
// grant and admins pass via the bypass.
func registerPostRoutes(mux *http.ServeMux, h *PostHandlers, auth AuthServiceInterface) {
	readGuard := RequireAuth(auth)
	writeGuard := RequireCapability(auth, domainauth.CapManagePosts)

	mux.Handle("GET /api/posts", readGuard(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/posts/{id}", readGuard(http.HandlerFunc(h.GetByID)))
	mux.Handle("PATCH /api/posts/{id}", writeGuard(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/posts/{id}", writeGuard(http.HandlerFunc(h.Delete)))
}

func registerCommentRoutes(mux *http.ServeMux, h *CommentHandlers, auth AuthServiceInterface) {
	readGuard := RequireAuth(auth)
	writeGuard := RequireCapability(auth, domainauth.CapManageComments)

	mux.Handle("GET /api/comments", readGuard(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/comments/{id}", readGuard(http.HandlerFunc(h.GetByID)))
	mux.Handle("PATCH /api/comments/{id}", writeGuard(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/comments/{id}", writeGuard(http.HandlerFunc(h.Delete)))
}

func registerEngagementRoutes(mux *http.ServeMux, h *EngagementHandlers, auth AuthServiceInterface) {
	guard := RequireAnyRole(auth, domainauth.RoleAdmin, domainauth.RoleModerator)

	mux.Handle("GET /api/engagements", guard(http.HandlerFunc(h.ListEngagements)))
	mux.Handle("DELETE /api/engagements/{user_id}/{post_id}/{kind}", guard(http.HandlerFunc(h.RemoveEngagement)))
	mux.Handle("GET /api/follows", guard(http.HandlerFunc(h.ListFollows)))
	mux.Handle("DELETE /api/follows/{follower_id}/{followee_id}", guard(http.HandlerFunc(h.RemoveFollow)))
}

// Flag review rides on the moderate_content capability; rule authoring is
// admin only.
func registerFlagRoutes(mux *http.ServeMux, h *FlagHandlers, auth AuthServiceInterface) {
	reviewGuard := RequireCapability(auth, domainauth.CapModerateContent)
	ruleGuard := RequireRole(auth, domainauth.RoleAdmin)

	mux.Handle("GET /api/flags", reviewGuard(http.HandlerFunc(h.ListFlags)))
	mux.Handle("POST /api/flags", reviewGuard(http.HandlerFunc(h.CreateFlag)))
	mux.Handle("GET /api/flags/{id}", reviewGuard(http.HandlerFunc(h.GetFlag)))
	mux.Handle("POST /api/flags/{id}/resolve", reviewGuard(http.HandlerFunc(h.ResolveFlag)))

	mux.Handle("GET /api/flag-rules", reviewGuard(http.HandlerFunc(h.ListRules)))
	mux.Handle("GET /api/flag-rules/{id}", reviewGuard(http.HandlerFunc(h.GetRule)))
	mux.Handle("POST /api/flag-rules", ruleGuard(http.HandlerFunc(h.CreateRule)))
	mux.Handle("PATCH /api/flag-rules/{id}", ruleGuard(http.HandlerFunc(h.UpdateRule)))
	mux.Handle("DELETE /api/flag-rules/{id}", ruleGuard(http.HandlerFunc(h.DeleteRule)))
}
