// internal/app/features/activity/routes.go
package activity

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/activities.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeActivities)
	return r
}

// BadgeRoutes is mounted at /api/badges.
func BadgeRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeBadges)
	return r
}
