// internal/app/features/feedback/handler.go
package feedback

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pipapal/internal/app/system/inputval"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCategory = "general"

type Handler struct {
	Store store.Reference
	Log   *zap.Logger
}

func NewHandler(st store.Reference, logger *zap.Logger) *Handler {
	return &Handler{Store: st, Log: logger}
}

type submitInput struct {
	Category string `json:"category" validate:"max=40" label:"Category"`
	Message  string `json:"message" validate:"required,max=2000" label:"Message"`
	Rating   *int   `json:"rating" validate:"omitempty,min=1,max=5" label:"Rating"`
}

// HandleSubmit handles POST /api/feedback. Signing in is optional; signed
// in submissions carry the user id.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in submitInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	f := models.Feedback{
		ID:        uuid.NewString(),
		Category:  strings.ToLower(htmlsanitize.PlainText(in.Category)),
		Message:   htmlsanitize.PlainText(in.Message),
		Rating:    in.Rating,
		CreatedAt: time.Now().UTC(),
	}
	if f.Message == "" {
		respond.Err(w, h.Log, respond.BadRequest("Message is required"))
		return
	}
	if f.Category == "" {
		f.Category = defaultCategory
	}
	if u, ok := auth.CurrentUser(r); ok {
		f.UserID = &u.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.CreateFeedback(ctx, &f); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	h.Log.Info("feedback received", zap.String("feedback_id", f.ID), zap.String("category", f.Category))
	respond.Created(w, f)
}

// ServeList handles GET /api/feedback.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Store.ListFeedback(ctx, u.ID)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if rows == nil {
		rows = []models.Feedback{}
	}
	respond.OK(w, rows)
}
