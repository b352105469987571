// internal/app/features/chat/handler.go
package chat

import (
	"context"
	"net/http"

	chatsvc "github.com/dalemusser/pipapal/internal/app/services/chat"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/inputval"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves direct messaging over HTTP. The same operations are
// reachable over the socket; see features/ws.
type Handler struct {
	Chat *chatsvc.Service
	Log  *zap.Logger
}

func NewHandler(svc *chatsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Chat: svc, Log: logger}
}

type countResponse struct {
	Count int64 `json:"count"`
}

// ServeContacts handles GET /api/chat/contacts.
func (h *Handler) ServeContacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	out, err := h.Chat.Contacts(ctx, u.ID)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}

// ServeConversation handles GET /api/chat/messages/{userId}.
func (h *Handler) ServeConversation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	out, err := h.Chat.Conversation(ctx, u.ID, chi.URLParam(r, "userId"))
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}

// HandleSend handles POST /api/chat/messages.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var in chatsvc.SendInput
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

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	m, err := h.Chat.Send(ctx, u.ID, in.ReceiverID, in.Content)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.Created(w, m)
}

// HandleMarkRead handles POST /api/chat/messages/{userId}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	n, err := h.Chat.MarkRead(ctx, u.ID, chi.URLParam(r, "userId"))
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, countResponse{Count: n})
}

// ServeUnread handles GET /api/chat/unread.
func (h *Handler) ServeUnread(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	n, err := h.Chat.Unread(ctx, u.ID)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, countResponse{Count: n})
}
