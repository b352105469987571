// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/dashboard.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeDashboard)
	return r
}
