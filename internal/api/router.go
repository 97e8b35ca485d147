package api

import (
	"database/sql"
	"net/http"

	"github.com/mkamran/campushub/internal/feed"
	"github.com/mkamran/campushub/internal/lifecycle"
	"github.com/mkamran/campushub/internal/metrics"
	"github.com/mkamran/campushub/internal/roles"
)

// Config carries the dependencies the router wires into handlers.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	Engine    *lifecycle.Engine
	Roles     roles.Resolver
	Feed      *feed.Bus

	// ComplaintDeletePolicy governs the self-service complaint delete
	// endpoint. The moderation endpoint is always admin-only.
	ComplaintDeletePolicy lifecycle.ComplaintDeletePolicy

	// ImagesDir, when set, is served read-only under /images/.
	ImagesDir string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) *http.ServeMux {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret}
	lostFoundHandler := &LostFoundHandler{DB: cfg.DB, Engine: cfg.Engine}
	complaintsHandler := &ComplaintsHandler{DB: cfg.DB, Engine: cfg.Engine, Roles: cfg.Roles, DeletePolicy: cfg.ComplaintDeletePolicy}
	volunteersHandler := &VolunteersHandler{DB: cfg.DB, Engine: cfg.Engine}
	announcementsHandler := &AnnouncementsHandler{DB: cfg.DB, Engine: cfg.Engine}
	contactHandler := &ContactHandler{DB: cfg.DB, Engine: cfg.Engine}
	notificationsHandler := &NotificationsHandler{DB: cfg.DB, Feed: cfg.Feed}
	adminHandler := &AdminHandler{DB: cfg.DB}

	authMW := AuthMiddleware(cfg.JWTSecret)
	requireAdmin := RequireAdmin(cfg.Roles)

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/contact", contactHandler.Create)
	mux.HandleFunc("GET /api/announcements", announcementsHandler.List)
	mux.HandleFunc("GET /api/announcements/latest", announcementsHandler.Latest)
	mux.Handle("GET /metrics", metrics.Handler())

	// Authenticated.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	mux.Handle("GET /api/lostfound", authMW(http.HandlerFunc(lostFoundHandler.List)))
	mux.Handle("POST /api/lostfound", authMW(http.HandlerFunc(lostFoundHandler.Create)))
	mux.Handle("GET /api/lostfound/{id}", authMW(http.HandlerFunc(lostFoundHandler.Get)))
	mux.Handle("PUT /api/lostfound/{id}/status", authMW(http.HandlerFunc(lostFoundHandler.SetStatus)))
	mux.Handle("DELETE /api/lostfound/{id}", authMW(http.HandlerFunc(lostFoundHandler.Delete)))

	mux.Handle("GET /api/complaints", authMW(http.HandlerFunc(complaintsHandler.List)))
	mux.Handle("POST /api/complaints", authMW(http.HandlerFunc(complaintsHandler.Create)))
	mux.Handle("PUT /api/complaints/{id}", authMW(http.HandlerFunc(complaintsHandler.Update)))
	mux.Handle("DELETE /api/complaints/{id}", authMW(http.HandlerFunc(complaintsHandler.Delete)))

	mux.Handle("GET /api/volunteers", authMW(http.HandlerFunc(volunteersHandler.List)))
	mux.Handle("POST /api/volunteers", authMW(http.HandlerFunc(volunteersHandler.Create)))
	mux.Handle("DELETE /api/volunteers/{id}", authMW(http.HandlerFunc(volunteersHandler.Delete)))

	mux.Handle("GET /api/notifications/stream", authMW(http.HandlerFunc(notificationsHandler.Stream)))

	// Status transitions check transition validity before authorization,
	// so the engine enforces the admin requirement itself.
	mux.Handle("PUT /api/complaints/{id}/status", authMW(http.HandlerFunc(complaintsHandler.SetStatus)))
	mux.Handle("PUT /api/volunteers/{id}/status", authMW(http.HandlerFunc(volunteersHandler.SetStatus)))

	// Moderation.
	mux.Handle("GET /api/admin/overview", authMW(requireAdmin(http.HandlerFunc(adminHandler.Overview))))
	mux.Handle("DELETE /api/admin/complaints/{id}", authMW(requireAdmin(http.HandlerFunc(complaintsHandler.ModerationDelete))))
	mux.Handle("POST /api/admin/announcements", authMW(requireAdmin(http.HandlerFunc(announcementsHandler.Create))))
	mux.Handle("DELETE /api/admin/announcements/{id}", authMW(requireAdmin(http.HandlerFunc(announcementsHandler.Delete))))
	mux.Handle("GET /api/admin/contact-messages", authMW(requireAdmin(http.HandlerFunc(contactHandler.List))))
	mux.Handle("DELETE /api/admin/contact-messages/{id}", authMW(requireAdmin(http.HandlerFunc(contactHandler.Delete))))

	if cfg.ImagesDir != "" {
		mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.ImagesDir))))
	}

	return mux
}
