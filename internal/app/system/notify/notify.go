// internal/app/system/notify/notify.go

// Package notify fans events out to connected WebSocket clients.
//
// Delivery is best-effort: a client whose buffer is full misses the event
// instead of stalling the request that produced it.
package notify

import (
	"encoding/json"
	"sync"
)

// Event types pushed to clients.
const (
	TypeNewCollection    = "new_collection"
	TypeCollectionUpdate = "collection_update"
	TypeNotification     = "notification"
	TypeNewMessage       = "new_message"
	TypeUnreadMessages   = "unread_messages"
	TypeSystem           = "_system"
	TypeError            = "error"
)

// Event is one frame sent to a client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Encode returns the wire form of e.
func (e Event) Encode() ([]byte, error) { return json.Marshal(e) }

// Sender delivers events. Services depend on this and nothing larger.
type Sender interface {
	SendToUser(userID string, ev Event)
	SendToRole(role string, ev Event)
}

// Registry is a Sender that also tracks live connections.
type Registry interface {
	Sender
	Register(c *Client)
	Unregister(c *Client)
	Count(userID string) int
}

// Discard drops every event.
type Discard struct{}

func (Discard) SendToUser(string, Event) {}
func (Discard) SendToRole(string, Event) {}

// Sent is one event captured by a Recorder. Exactly one of UserID and
// Role is set.
type Sent struct {
	UserID string
	Role   string
	Event  Event
}

// Recorder captures events for assertions.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
}

func (r *Recorder) SendToUser(userID string, ev Event) {
	r.mu.Lock()
	r.sent = append(r.sent, Sent{UserID: userID, Event: ev})
	r.mu.Unlock()
}

func (r *Recorder) SendToRole(role string, ev Event) {
	r.mu.Lock()
	r.sent = append(r.sent, Sent{Role: role, Event: ev})
	r.mu.Unlock()
}

// All returns a copy of everything sent so far.
func (r *Recorder) All() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}

// ToUser returns the events sent to userID, optionally only those of type typ.
func (r *Recorder) ToUser(userID, typ string) []Event {
	var out []Event
	for _, s := range r.All() {
		if s.UserID == userID && (typ == "" || s.Event.Type == typ) {
			out = append(out, s.Event)
		}
	}
	return out
}

// ToRole returns the events broadcast to role, optionally filtered by type.
func (r *Recorder) ToRole(role, typ string) []Event {
	var out []Event
	for _, s := range r.All() {
		if s.Role == role && (typ == "" || s.Event.Type == typ) {
			out = append(out, s.Event)
		}
	}
	return out
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}
