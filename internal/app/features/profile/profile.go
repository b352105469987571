// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/pipapal/internal/app/features/shared/views"
	"github.com/dalemusser/pipapal/internal/app/services/accounts"
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/inputval"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
)

// ServeCurrentUser handles GET /api/user.
func (h *Handler) ServeCurrentUser(w http.ResponseWriter, r *http.Request) {
	cu, ok := auth.CurrentUser(r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.Get(ctx, cu.ID)
	if errors.Is(err, store.ErrNotFound) {
		respond.Message(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, views.NewUser(u))
}

// HandleUpdateProfile handles PATCH /api/user/profile.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	cu, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	var in accounts.ProfileInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.UpdateProfile(ctx, cu.ID, in)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, views.NewUser(u))
}

// HandleCompleteOnboarding handles POST /api/user/onboarding.
func (h *Handler) HandleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	cu, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, awarded, err := h.Accounts.CompleteOnboarding(ctx, cu.ID)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, struct {
		views.User
		BadgeAwarded bool `json:"badgeAwarded"`
	}{views.NewUser(u), awarded})
}

// HandleUpdateBusiness handles PATCH /api/user/business.
func (h *Handler) HandleUpdateBusiness(w http.ResponseWriter, r *http.Request) {
	cu, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	var in accounts.BusinessInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.UpdateBusiness(ctx, cu.ID, cu.Role, in)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, views.NewUser(u))
}

// HandleChangePassword handles POST /api/user/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	cu, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}

	var in accounts.PasswordInput
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

	if err := h.Accounts.ChangePassword(ctx, cu.ID, in); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "Password updated")
}
