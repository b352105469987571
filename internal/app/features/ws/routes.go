// internal/app/features/ws/routes.go
package ws

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /ws. The socket authenticates itself, so no
// sign-in guard is applied.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeWS)
	return r
}

// TokenRoutes is mounted at /api/ws-token.
func TokenRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeToken)
	return r
}
