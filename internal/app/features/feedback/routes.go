// internal/app/features/feedback/routes.go
package feedback

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/feedback.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSubmit)
	r.With(sm.RequireSignedIn).Get("/", h.ServeList)
	return r
}
