// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCurrentUser)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Patch("/profile", h.HandleUpdateProfile)
		pr.Post("/onboarding", h.HandleCompleteOnboarding)
		pr.Patch("/business", h.HandleUpdateBusiness)
		pr.Post("/password", h.HandleChangePassword)
	})
	return r
}
