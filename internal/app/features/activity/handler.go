// internal/app/features/activity/handler.go
package activity

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Feed limits for GET /api/activities.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Handler serves the signed-in user's activity feed and badges.
type Handler struct {
	Activities store.Activities
	Badges     store.Badges
	Log        *zap.Logger
}

func NewHandler(activities store.Activities, badges store.Badges, logger *zap.Logger) *Handler {
	return &Handler{
		Activities: activities,
		Badges:     badges,
		Log:        logger,
	}
}

// limit parses ?limit=, falling back to DefaultLimit and capping at
// MaxLimit.
func limit(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "limit"))
	switch {
	case err != nil || n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

// ServeActivities handles GET /api/activities.
func (h *Handler) ServeActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Activities.ListActivities(ctx, u.ID, limit(r))
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if rows == nil {
		rows = []models.Activity{}
	}
	respond.OK(w, rows)
}

// ServeBadges handles GET /api/badges.
func (h *Handler) ServeBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Badges.ListBadges(ctx, u.ID)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if rows == nil {
		rows = []models.Badge{}
	}
	respond.OK(w, rows)
}
