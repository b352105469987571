// internal/app/features/recyclingcenters/routes.go
package recyclingcenters

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/recycling-centers.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	return r
}
