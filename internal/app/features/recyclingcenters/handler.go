// internal/app/features/recyclingcenters/handler.go
package recyclingcenters

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pipapal/internal/app/system/inputval"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Store store.Reference
	Log   *zap.Logger
}

func NewHandler(st store.Reference, logger *zap.Logger) *Handler {
	return &Handler{Store: st, Log: logger}
}

type createInput struct {
	Name               string   `json:"name" validate:"required,max=200" label:"Name"`
	Address            string   `json:"address" validate:"required,max=500" label:"Address"`
	AcceptedWasteTypes []string `json:"acceptedWasteTypes" validate:"max=16,dive,max=32" label:"Accepted waste types"`
	Phone              string   `json:"phone" validate:"max=40" label:"Phone"`
	Hours              string   `json:"hours" validate:"max=200" label:"Hours"`
	Latitude           *float64 `json:"latitude" validate:"omitempty,min=-90,max=90" label:"Latitude"`
	Longitude          *float64 `json:"longitude" validate:"omitempty,min=-180,max=180" label:"Longitude"`
}

// wasteTypes lowercases, trims and dedupes the list, keeping order.
func wasteTypes(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ServeList handles GET /api/recycling-centers?wasteType=&q=. Name matching
// ignores case and accents.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Store.ListRecyclingCenters(ctx)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	wasteType := strings.ToLower(strings.TrimSpace(query.Get(r, "wasteType")))
	q := text.Fold(strings.TrimSpace(query.Get(r, "q")))

	out := make([]models.RecyclingCenter, 0, len(rows))
	for _, c := range rows {
		if wasteType != "" && !c.Accepts(wasteType) {
			continue
		}
		if q != "" && !strings.Contains(text.Fold(c.Name), q) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return text.Fold(out[i].Name) < text.Fold(out[j].Name) })
	respond.OK(w, out)
}

// HandleCreate handles POST /api/recycling-centers.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	c := models.RecyclingCenter{
		ID:                 uuid.NewString(),
		Name:               htmlsanitize.PlainText(in.Name),
		Address:            htmlsanitize.PlainText(in.Address),
		AcceptedWasteTypes: wasteTypes(in.AcceptedWasteTypes),
		Phone:              strings.TrimSpace(in.Phone),
		Hours:              htmlsanitize.PlainText(in.Hours),
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		CreatedAt:          time.Now().UTC(),
	}
	if c.Name == "" || c.Address == "" {
		respond.Err(w, h.Log, respond.BadRequest("Name and address are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.CreateRecyclingCenter(ctx, &c); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	h.Log.Info("recycling center added", zap.String("center_id", c.ID), zap.String("name", c.Name))
	respond.Created(w, c)
}
