// internal/app/features/collections/handler.go
package collections

import (
	"context"
	"net/http"

	collectionsvc "github.com/dalemusser/pipapal/internal/app/services/collections"
	"github.com/dalemusser/pipapal/internal/app/services/marketplace"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/inputval"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves /api/collections.
type Handler struct {
	Collections *collectionsvc.Service
	Market      *marketplace.Service
	Log         *zap.Logger
}

func NewHandler(svc *collectionsvc.Service, market *marketplace.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Collections: svc,
		Market:      market,
		Log:         logger,
	}
}

// ServeList handles GET /api/collections.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Collections.List(ctx, *u)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}

// HandleCreate handles POST /api/collections.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	var in collectionsvc.CreateInput
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

	created, err := h.Collections.Create(ctx, *u, in)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.Created(w, created)
}

// ServeGet handles GET /api/collections/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Collections.Get(ctx, *u, chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, c)
}

// HandleUpdate handles PATCH /api/collections/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	var in updateInput
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

	c, err := h.Collections.Update(ctx, *u, chi.URLParam(r, "id"), in.toUpdate())
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, c)
}

// HandleClaim handles POST /api/collections/{id}/claim.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Collections.Claim(ctx, *u, chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, c)
}

// ServeInterests handles GET /api/collections/{id}/interests.
func (h *Handler) ServeInterests(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Market.ListForCollection(ctx, *u, chi.URLParam(r, "id"))
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}
