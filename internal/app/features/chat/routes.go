// internal/app/features/chat/routes.go
package chat

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /api/chat.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(authz.RequirePermission(authz.Chat))

	r.Get("/contacts", h.ServeContacts)
	r.Get("/unread", h.ServeUnread)
	r.Post("/messages", h.HandleSend)
	r.Get("/messages/{userId}", h.ServeConversation)
	r.Post("/messages/{userId}/read", h.HandleMarkRead)
	return r
}
