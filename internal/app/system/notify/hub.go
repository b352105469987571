// internal/app/system/notify/hub.go
package notify

import (
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/pipapal/internal/app/system/limits"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer = 256
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub is the in-process Registry. Clients are keyed by user id; one user
// may hold several sockets.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]*Client
	log     *zap.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{clients: make(map[string][]*Client), log: logger.Named("notify")}
}

// Client is one authenticated socket.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	role   string
	send   chan []byte
	closed bool // guarded by hub.mu
}

// NewClient wraps an authenticated connection. It is not delivered to
// until registered.
func NewClient(h *Hub, conn *websocket.Conn, userID, role string) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		userID: userID,
		role:   strings.ToLower(role),
		send:   make(chan []byte, sendBuffer),
	}
}

// UserID returns the owner of the socket.
func (c *Client) UserID() string { return c.userID }

// Register starts delivering events to c.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.userID] = append(h.clients[c.userID], c)
	n := len(h.clients[c.userID])
	h.mu.Unlock()
	h.log.Debug("client registered", zap.String("user_id", c.userID), zap.Int("sockets", n))
}

// Unregister removes c and closes its send queue. It is safe to call more
// than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	list := h.clients[c.userID]
	for i, x := range list {
		if x == c {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(h.clients, c.userID)
	} else {
		h.clients[c.userID] = list
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	h.mu.Unlock()
}

// Count returns how many sockets userID has open.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUser delivers ev to every socket of userID.
func (h *Hub) SendToUser(userID string, ev Event) {
	msg, err := ev.Encode()
	if err != nil {
		h.log.Error("encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[userID] {
		h.enqueue(c, msg, ev.Type)
	}
}

// SendToRole delivers ev to every socket whose user has role.
func (h *Hub) SendToRole(role string, ev Event) {
	msg, err := ev.Encode()
	if err != nil {
		h.log.Error("encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	role = strings.ToLower(role)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, list := range h.clients {
		for _, c := range list {
			if c.role == role {
				h.enqueue(c, msg, ev.Type)
			}
		}
	}
}

// Send delivers ev to this socket only, registered or not.
func (c *Client) Send(ev Event) {
	msg, err := ev.Encode()
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	c.hub.enqueue(c, msg, ev.Type)
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(c *Client, msg []byte, typ string) {
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.log.Debug("client buffer full, event dropped",
			zap.String("user_id", c.userID), zap.String("type", typ))
	}
}

// ReadPump reads frames until the connection fails, handing each to
// handle. It unregisters and closes the connection on return.
func (c *Client) ReadPump(handle func(raw []byte)) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(limits.MaxSocketFrame)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("socket read", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
		handle(raw)
	}
}

// WritePump drains the send queue to the socket and keeps it alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
