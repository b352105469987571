// internal/app/features/materials/handler.go
package materials

import (
	"context"
	"net/http"

	"github.com/dalemusser/pipapal/internal/app/services/marketplace"
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/inputval"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the materials marketplace under /api/materials and
// /api/material-interests.
type Handler struct {
	Market *marketplace.Service
	Store  store.Store
	Log    *zap.Logger
}

func NewHandler(market *marketplace.Service, st store.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Market: market,
		Store:  st,
		Log:    logger,
	}
}

// HandleExpressInterest handles POST /api/materials/express-interest.
func (h *Handler) HandleExpressInterest(w http.ResponseWriter, r *http.Request) {
	var in marketplace.InterestInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	mi, err := h.Market.ExpressInterest(ctx, *u, in)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.Created(w, mi)
}

// ServeInterests handles GET /api/materials/interests.
func (h *Handler) ServeInterests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	out, err := h.Market.ListForUser(ctx, *u)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}

// HandleUpdateStatus handles PATCH /api/material-interests/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in marketplace.StatusInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	mi, err := h.Market.UpdateStatus(ctx, *u, chi.URLParam(r, "id"), in.Status)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, mi)
}
