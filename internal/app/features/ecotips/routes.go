// internal/app/features/ecotips/routes.go
package ecotips

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/eco-tips.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.With(authz.RequirePermission(authz.ViewEcoTips)).Get("/", h.ServeList)
	return r
}
