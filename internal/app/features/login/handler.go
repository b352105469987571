// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/pipapal/internal/app/features/shared/views"
	"github.com/dalemusser/pipapal/internal/app/services/accounts"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/inputval"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler signs users up and in with a password.
type Handler struct {
	Accounts   *accounts.Service
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(acct *accounts.Service, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:   acct,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

// ServeRegister handles POST /api/register. The new account is signed in.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
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

	u, err := h.Accounts.Register(ctx, in)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := h.SessionMgr.Login(w, r, views.SessionUser(u)); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.Created(w, views.NewUser(u))
}

// ServeLogin handles POST /api/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var in accounts.LoginInput
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

	u, err := h.Accounts.Login(ctx, in)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if err := h.SessionMgr.Login(w, r, views.SessionUser(u)); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	h.Log.Info("user logged in", zap.String("user_id", u.ID))
	respond.OK(w, views.NewUser(u))
}

// ServeRateLimited answers once a client exceeds the login attempt limit.
func ServeRateLimited(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
}
