// internal/app/features/collections/routes.go
package collections

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/collections.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	viewAny := authz.RequireAnyPermission(
		authz.ViewOwnCollections,
		authz.ViewAvailableCollections,
		authz.ViewCompletedCollections,
	)

	r.With(viewAny).Get("/", h.ServeList)
	r.With(authz.RequirePermission(authz.CreateCollection)).Post("/", h.HandleCreate)

	r.Route("/{id}", func(cr chi.Router) {
		cr.With(viewAny).Get("/", h.ServeGet)
		cr.With(authz.RequireAnyPermission(authz.UpdateOwnCollection, authz.UpdateCollectionStatus)).
			Patch("/", h.HandleUpdate)
		cr.With(authz.RequirePermission(authz.ClaimCollection)).Post("/claim", h.HandleClaim)
		cr.Get("/interests", h.ServeInterests)
	})
	return r
}
