package chat_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/features/chat"
	chatsvc "github.com/dalemusser/pipapal/internal/app/services/chat"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/notify"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"go.uber.org/zap"
)

func TestChatFlow(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	st := memory.New()
	fx := testutil.NewFixtures(t, st)
	rec := &notify.Recorder{}
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	router := chat.Routes(chat.NewHandler(chatsvc.New(st, rec, logger), logger), sm)

	home := fx.CreateHousehold(ctx, "hana")
	col := fx.CreateCollector(ctx, "carl")

	do := func(req *http.Request, u models.User) *testutil.ResponseRecorder {
		w := testutil.NewRecorder()
		router.ServeHTTP(w, testutil.WithUser(req, testutil.AsTestUser(u)))
		return w
	}

	w := do(testutil.NewJSONRequest(http.MethodPost, "/messages",
		map[string]string{"receiverId": col.ID, "content": "<b>Gate code</b> is 1234"}), home)
	w.AssertStatus(t, http.StatusCreated)
	w.AssertContains(t, `"content":"Gate code is 1234"`)
	if len(rec.ToUser(col.ID, notify.TypeNewMessage)) != 1 || len(rec.ToUser(home.ID, notify.TypeNewMessage)) != 1 {
		t.Error("both parties should receive new_message")
	}

	do(testutil.NewJSONRequest(http.MethodPost, "/messages", map[string]string{"receiverId": home.ID, "content": "hi"}), home).
		AssertStatus(t, http.StatusBadRequest)
	do(testutil.NewJSONRequest(http.MethodPost, "/messages", map[string]string{"receiverId": "ghost", "content": "hi"}), home).
		AssertStatus(t, http.StatusNotFound)
	do(testutil.NewJSONRequest(http.MethodPost, "/messages", `{"receiverId":"x"}`), home).
		AssertStatus(t, http.StatusBadRequest)

	w = do(testutil.NewRequest(http.MethodGet, "/unread"), col)
	w.AssertStatus(t, http.StatusOK)
	w.AssertContains(t, `"count":1`)

	var contacts []chatsvc.Contact
	w = do(testutil.NewRequest(http.MethodGet, "/contacts"), col)
	w.AssertStatus(t, http.StatusOK)
	w.DecodeJSON(t, &contacts)
	if len(contacts) != 1 || contacts[0].User.ID != home.ID || contacts[0].UnreadCount != 1 {
		t.Errorf("contacts: %+v", contacts)
	}

	var msgs []models.ChatMessage
	w = do(testutil.NewRequest(http.MethodGet, "/messages/"+home.ID), col)
	w.AssertStatus(t, http.StatusOK)
	w.DecodeJSON(t, &msgs)
	if len(msgs) != 1 {
		t.Errorf("conversation: got %d messages", len(msgs))
	}

	w = do(testutil.NewRequest(http.MethodPost, "/messages/"+home.ID+"/read"), col)
	w.AssertStatus(t, http.StatusOK)
	w.AssertContains(t, `"count":1`)
	if got := rec.ToUser(col.ID, notify.TypeUnreadMessages); len(got) != 1 {
		t.Errorf("unread push: %d events", len(got))
	}

	do(testutil.NewRequest(http.MethodGet, "/unread"), col).AssertContains(t, `"count":0`)

	anon := testutil.NewRecorder()
	router.ServeHTTP(anon, testutil.NewRequest(http.MethodGet, "/contacts"))
	anon.AssertStatus(t, http.StatusUnauthorized)
}
