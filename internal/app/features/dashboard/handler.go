// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/pipapal/internal/app/services/dashboards"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the role-specific dashboard summary.
type Handler struct {
	Dashboards *dashboards.Service
	Log        *zap.Logger
}

func NewHandler(svc *dashboards.Service, logger *zap.Logger) *Handler {
	return &Handler{Dashboards: svc, Log: logger}
}

// ServeDashboard handles GET /api/dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard")
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	out, err := h.Dashboards.Build(ctx, *u)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}
