package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/features/ws"
	chatsvc "github.com/dalemusser/pipapal/internal/app/services/chat"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/notify"
	"github.com/dalemusser/pipapal/internal/app/system/wstoken"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type frame struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type env struct {
	srv    *httptest.Server
	hub    *notify.Hub
	tokens *wstoken.Issuer
	h      *ws.Handler
	home   models.User
	col    models.User
}

// newEnv serves /ws. A request with ?as=<id> carries that user as if a
// session cookie had been presented.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	st := memory.New()
	fx := testutil.NewFixtures(t, st)
	hub := notify.NewHub(logger)
	tokens, err := wstoken.New("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)

	h := ws.NewHandler(hub, chatsvc.New(st, hub, logger), tokens, nil, logger)
	h.AuthTimeout = 500 * time.Millisecond
	e := &env{hub: hub, tokens: tokens, h: h}
	e.home = fx.CreateHousehold(ctx, "hana")
	e.col = fx.CreateCollector(ctx, "carl")
	users := map[string]models.User{e.home.ID: e.home, e.col.ID: e.col}

	router := ws.Routes(h)
	e.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := users[r.URL.Query().Get("as")]; ok {
			r = testutil.WithUser(r, testutil.AsTestUser(u))
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(e.srv.Close)
	return e
}

func (e *env) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(e.srv.URL, "http")+"/"+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func expectWelcome(t *testing.T, conn *websocket.Conn, unread float64) {
	t.Helper()
	f := read(t, conn)
	assert.Equal(t, notify.TypeSystem, f.Type)
	assert.Equal(t, "authenticated", f.Data["status"])
	f = read(t, conn)
	assert.Equal(t, notify.TypeUnreadMessages, f.Type)
	assert.Equal(t, unread, f.Data["count"])
}

func TestServeWS_TokenAuth(t *testing.T) {
	e := newEnv(t)
	tok, err := e.tokens.Issue(e.home.ID, e.home.Role)
	require.NoError(t, err)

	conn := e.dial(t, "")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth", "token": tok}))
	expectWelcome(t, conn, 0)
	assert.Eventually(t, func() bool { return e.hub.Count(e.home.ID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	f := read(t, conn)
	assert.Equal(t, notify.TypeError, f.Type)
	assert.Equal(t, "Unknown message type", f.Data["message"])

	_ = conn.Close()
	assert.Eventually(t, func() bool { return e.hub.Count(e.home.ID) == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestServeWS_RejectsBadToken(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth", "token": "nope"}))

	f := read(t, conn)
	assert.Equal(t, notify.TypeError, f.Type)
	assert.Equal(t, "invalid token", f.Data["message"])

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestServeWS_AuthTimeout(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t, "")

	f := read(t, conn)
	assert.Equal(t, notify.TypeError, f.Type)
	assert.Equal(t, "authentication timed out", f.Data["message"])
}

func TestServeWS_ChatMessage(t *testing.T) {
	e := newEnv(t)

	sender := e.dial(t, "?as="+e.home.ID)
	expectWelcome(t, sender, 0)
	receiver := e.dial(t, "?as="+e.col.ID)
	expectWelcome(t, receiver, 0)

	require.NoError(t, sender.WriteJSON(map[string]string{
		"type": "chat_message", "receiverId": e.col.ID, "content": "On my way",
	}))

	for _, conn := range []*websocket.Conn{sender, receiver} {
		f := read(t, conn)
		assert.Equal(t, notify.TypeNewMessage, f.Type)
		assert.Equal(t, "On my way", f.Data["content"])
		assert.Equal(t, e.home.ID, f.Data["senderId"])
	}

	require.NoError(t, sender.WriteJSON(map[string]string{"type": "chat_message", "receiverId": e.col.ID, "content": "  "}))
	f := read(t, sender)
	assert.Equal(t, notify.TypeError, f.Type)
	assert.Equal(t, "Message cannot be empty", f.Data["message"])

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("not json")))
	f = read(t, sender)
	assert.Equal(t, "Invalid message format", f.Data["message"])
}

func TestServeToken(t *testing.T) {
	e := newEnv(t)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", 24*time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	router := ws.TokenRoutes(e.h, sm)

	var out struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(e.col)))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &out)
	assert.Equal(t, int64(3600), out.ExpiresIn)

	id, role, err := e.tokens.Parse(out.Token)
	require.NoError(t, err)
	assert.Equal(t, e.col.ID, id)
	assert.Equal(t, models.RoleCollector, role)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeWS_Origin(t *testing.T) {
	e := newEnv(t)
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/?as=" + e.home.ID
	dial := func(origin string) (*websocket.Conn, *http.Response, error) {
		return websocket.DefaultDialer.Dial(url, http.Header{"Origin": {origin}})
	}

	conn, resp, err := dial("https://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Nil(t, conn)
	assert.Zero(t, e.hub.Count(e.home.ID))

	conn, _, err = dial(e.srv.URL)
	require.NoError(t, err, "same-host origin")
	expectWelcome(t, conn, 0)
	_ = conn.Close()

	e.h.AllowedOrigins = []string{"https://app.pipapal.example"}
	conn, _, err = dial("https://app.pipapal.example")
	require.NoError(t, err, "configured origin")
	_ = conn.Close()

	_, resp, err = dial("https://evil.example")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServeToken_NoSessionUser(t *testing.T) {
	e := newEnv(t)
	rec := testutil.NewRecorder()
	e.h.ServeToken(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
