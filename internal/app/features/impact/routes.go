// internal/app/features/impact/routes.go
package impact

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/impact.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(authz.RequirePermission(authz.ViewImpact))

	r.Get("/", h.ServeSummary)
	r.Get("/monthly", h.ServeMonthly)
	r.Get("/waste-types", h.ServeWasteTypes)
	return r
}
