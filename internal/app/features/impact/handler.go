// internal/app/features/impact/handler.go
package impact

import (
	"net/http"

	impactsvc "github.com/dalemusser/pipapal/internal/app/services/impact"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the environmental impact reports.
type Handler struct {
	Impact *impactsvc.Service
	Log    *zap.Logger
}

func NewHandler(svc *impactsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Impact: svc, Log: logger}
}

// ServeSummary handles GET /api/impact.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "impact summary")
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	out, err := h.Impact.Summary(ctx, *u)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}

// ServeMonthly handles GET /api/impact/monthly.
func (h *Handler) ServeMonthly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "impact monthly")
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	out, err := h.Impact.Monthly(ctx, *u)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}

// ServeWasteTypes handles GET /api/impact/waste-types.
func (h *Handler) ServeWasteTypes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "impact waste types")
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	out, err := h.Impact.WasteTypes(ctx, *u)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}
