// internal/app/features/ws/handler.go
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	chatsvc "github.com/dalemusser/pipapal/internal/app/services/chat"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/notify"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/app/system/timeouts"
	"github.com/dalemusser/pipapal/internal/app/system/wstoken"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AuthTimeout is how long an unauthenticated socket may stay silent.
const AuthTimeout = 5 * time.Second

var (
	errAuthTimeout  = errors.New("authentication timed out")
	errAuthRequired = errors.New("authentication required")
	errBadToken     = errors.New("invalid token")
)

// Inbound frame types.
const (
	frameAuth = "auth"
	frameChat = "chat_message"
)

// Handler upgrades /ws and runs the per-socket protocol.
type Handler struct {
	Hub            *notify.Hub
	Chat           *chatsvc.Service
	Tokens         *wstoken.Issuer
	AllowedOrigins []string
	AuthTimeout    time.Duration
	Log            *zap.Logger

	upgrader websocket.Upgrader
}

// NewHandler builds the socket handler. An empty origins list accepts only
// same-host origins.
func NewHandler(hub *notify.Hub, chat *chatsvc.Service, tokens *wstoken.Issuer, origins []string, logger *zap.Logger) *Handler {
	h := &Handler{
		Hub:            hub,
		Chat:           chat,
		Tokens:         tokens,
		AllowedOrigins: origins,
		AuthTimeout:    AuthTimeout,
		Log:            logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts requests with no Origin header, from the request's
// own host, or from a configured origin.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

type inbound struct {
	Type       string `json:"type"`
	Token      string `json:"token,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
	Content    string `json:"content,omitempty"`
}

type errorData struct {
	Message string `json:"message"`
}

func errorEvent(msg string) notify.Event {
	return notify.Event{Type: notify.TypeError, Data: errorData{Message: msg}}
}

// ServeWS handles GET /ws.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	var userID, role string
	if u, ok := auth.CurrentUser(r); ok {
		userID, role = u.ID, u.Role
	} else if userID, role, err = h.authenticate(conn); err != nil {
		h.reject(conn, err.Error())
		return
	}

	c := notify.NewClient(h.Hub, conn, userID, role)
	h.Hub.Register(c)
	go c.WritePump()

	c.Send(notify.Event{Type: notify.TypeSystem, Data: map[string]string{"status": "authenticated"}})
	h.sendUnread(r.Context(), c)
	h.Log.Debug("socket authenticated", zap.String("user_id", userID))

	c.ReadPump(func(raw []byte) { h.handleFrame(c, raw) })
}

// authenticate waits for the auth frame.
func (h *Handler) authenticate(conn *websocket.Conn) (userID, role string, err error) {
	_ = conn.SetReadDeadline(time.Now().Add(h.AuthTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return "", "", errAuthTimeout
	}
	var f inbound
	if json.Unmarshal(raw, &f) != nil || f.Type != frameAuth || f.Token == "" {
		return "", "", errAuthRequired
	}
	if userID, role, err = h.Tokens.Parse(f.Token); err != nil {
		return "", "", errBadToken
	}
	_ = conn.SetReadDeadline(time.Time{})
	return userID, role, nil
}

// reject sends an error frame and closes a socket that never registered.
func (h *Handler) reject(conn *websocket.Conn, msg string) {
	defer conn.Close()
	deadline := time.Now().Add(time.Second)
	if raw, err := errorEvent(msg).Encode(); err == nil {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.WriteMessage(websocket.TextMessage, raw)
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg), deadline)
}

func (h *Handler) sendUnread(ctx context.Context, c *notify.Client) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	n, err := h.Chat.Unread(ctx, c.UserID())
	if err != nil {
		h.Log.Warn("count unread for socket", zap.String("user_id", c.UserID()), zap.Error(err))
		return
	}
	c.Send(notify.Event{Type: notify.TypeUnreadMessages, Data: map[string]int64{"count": n}})
}

func (h *Handler) handleFrame(c *notify.Client, raw []byte) {
	var f inbound
	if err := json.Unmarshal(raw, &f); err != nil {
		c.Send(errorEvent("Invalid message format"))
		return
	}

	switch f.Type {
	case frameAuth:
		// Already authenticated; repeated auth frames are harmless.
	case frameChat:
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
		defer cancel()

		// Send pushes new_message to both parties through the hub.
		if _, err := h.Chat.Send(ctx, c.UserID(), f.ReceiverID, f.Content); err != nil {
			var re *respond.Error
			if errors.As(err, &re) {
				c.Send(errorEvent(re.Message))
				return
			}
			h.Log.Error("socket chat send failed", zap.String("user_id", c.UserID()), zap.Error(err))
			c.Send(errorEvent("Failed to send message"))
		}
	default:
		c.Send(errorEvent("Unknown message type"))
	}
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// ServeToken handles GET /api/ws-token.
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.SignedInUser(w, r)
	if !ok {
		return
	}
	tok, err := h.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.OK(w, tokenResponse{Token: tok, ExpiresIn: int64(h.Tokens.TTL() / time.Second)})
}
