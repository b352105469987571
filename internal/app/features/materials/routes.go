// internal/app/features/materials/routes.go
package materials

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/materials.
//
//	r.Mount("/api/materials", materials.Routes(h, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.With(authz.RequirePermission(authz.ExpressMaterialInterest)).
		Post("/express-interest", h.HandleExpressInterest)
	r.Get("/interests", h.ServeInterests)
	return r
}

// InterestRoutes is mounted at /api/material-interests. Only the collector
// assigned to the interest's collection may settle it.
func InterestRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	owner := authz.InterestOwner(h.Store.GetInterest, h.Store.GetCollection)
	r.With(
		authz.RequirePermission(authz.ManageMaterialInterests),
		authz.RequireOwnership(owner, "id", h.Log),
	).Patch("/{id}/status", h.HandleUpdateStatus)
	return r
}
