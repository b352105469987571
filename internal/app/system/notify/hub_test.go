package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHub_SendToUserAndRole(t *testing.T) {
	h := NewHub(zap.NewNop())
	a1 := NewClient(h, nil, "a", "collector")
	a2 := NewClient(h, nil, "a", "collector")
	b := NewClient(h, nil, "b", "household")
	h.Register(a1)
	h.Register(a2)
	h.Register(b)

	assert.Equal(t, 2, h.Count("a"))
	assert.Equal(t, 1, h.Count("b"))

	h.SendToUser("a", Event{Type: TypeNotification, Data: "hi"})
	assert.Len(t, a1.send, 1)
	assert.Len(t, a2.send, 1)
	assert.Len(t, b.send, 0)

	h.SendToRole("Collector", Event{Type: TypeNewCollection})
	assert.Len(t, a1.send, 2)
	assert.Len(t, b.send, 0)

	var got Event
	require.NoError(t, json.Unmarshal(<-a1.send, &got))
	assert.Equal(t, TypeNotification, got.Type)
	assert.Equal(t, "hi", got.Data)
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewClient(h, nil, "u", "recycler")
	h.Register(c)

	for i := 0; i < sendBuffer+10; i++ {
		h.SendToUser("u", Event{Type: TypeNotification})
	}
	assert.Len(t, c.send, sendBuffer)
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := NewClient(h, nil, "u", "household")
	h.Register(c)
	h.Unregister(c)
	h.Unregister(c)

	assert.Equal(t, 0, h.Count("u"))
	h.SendToUser("u", Event{Type: TypeNotification})
	c.Send(Event{Type: TypeError})

	_, open := <-c.send
	assert.False(t, open)
}

func TestClient_PumpsOverRealSocket(t *testing.T) {
	h := NewHub(zap.NewNop())
	received := make(chan string, 1)
	registered := make(chan struct{})

	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(h, conn, "u1", "household")
		h.Register(c)
		close(registered)
		go c.WritePump()
		c.ReadPump(func(raw []byte) { received <- string(raw) })
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	<-registered
	h.SendToUser("u1", Event{Type: TypeCollectionUpdate, Data: map[string]string{"id": "c1"}})

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, TypeCollectionUpdate, ev.Type)
	assert.Equal(t, "c1", ev.Data["id"])

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	select {
	case raw := <-received:
		assert.JSONEq(t, `{"type":"ping"}`, raw)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive frame")
	}

	_ = ws.Close()
	assert.Eventually(t, func() bool { return h.Count("u1") == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var s Sender = &r
	s.SendToUser("u1", Event{Type: TypeNewMessage})
	s.SendToUser("u1", Event{Type: TypeNotification})
	s.SendToRole("collector", Event{Type: TypeNewCollection})

	assert.Len(t, r.All(), 3)
	assert.Len(t, r.ToUser("u1", ""), 2)
	assert.Len(t, r.ToUser("u1", TypeNewMessage), 1)
	assert.Len(t, r.ToRole("collector", TypeNewCollection), 1)

	r.Reset()
	assert.Empty(t, r.All())

	var _ Sender = Discard{}
	var _ Registry = NewHub(zap.NewNop())
}
