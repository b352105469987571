// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/dalemusser/pipapal/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes serves POST /api/login. Attempts are limited per client IP.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.With(limiter.Middleware(ratelimit.ClientIP, http.HandlerFunc(ServeRateLimited))).
		Post("/", h.ServeLogin)
	return r
}

// RegisterRoutes serves POST /api/register.
func RegisterRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeRegister)
	return r
}
