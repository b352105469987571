// internal/app/features/ecotips/handler.go
package ecotips

import (
	"context"
	"net/http"
	"strconv"

	ecotipsvc "github.com/dalemusser/pipapal/internal/app/services/ecotips"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// MaxLimit caps ?limit=. An absent limit returns every matching tip up to
// the cap.
const MaxLimit = 50

type Handler struct {
	Tips *ecotipsvc.Service
	Log  *zap.Logger
}

func NewHandler(svc *ecotipsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Tips: svc, Log: logger}
}

// ServeList handles GET /api/eco-tips?wasteType=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(query.Get(r, "limit"))
	if err != nil || limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	respond.OK(w, h.Tips.List(ctx, query.Get(r, "wasteType"), limit))
}
