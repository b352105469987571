package feedback_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/features/feedback"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return feedback.Routes(feedback.NewHandler(memory.New(), logger), sm)
}

func TestSubmit_SanitizesAndOwns(t *testing.T) {
	router := newRouter(t)
	user := testutil.RecyclerUser()

	req := testutil.NewJSONRequest(http.MethodPost, "/", `{"message":"<img src=x onerror=alert(1)>Great app","rating":5}`)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(req, user))
	rec.AssertStatus(t, http.StatusCreated)

	var f models.Feedback
	rec.DecodeJSON(t, &f)
	if f.Message != "Great app" {
		t.Errorf("message: %q", f.Message)
	}
	if f.Category != "general" {
		t.Errorf("category: %q", f.Category)
	}
	if f.UserID == nil || *f.UserID != user.ID {
		t.Errorf("user id: %v", f.UserID)
	}

	var rows []models.Feedback
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", user))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &rows)
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestSubmit_KeepsPunctuation(t *testing.T) {
	router := newRouter(t)

	req := testutil.NewJSONRequest(http.MethodPost, "/", `{"message":"Tom & Jerry's bin: 5 < 10kg","rating":4}`)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(req, testutil.RecyclerUser()))
	rec.AssertStatus(t, http.StatusCreated)

	var f models.Feedback
	rec.DecodeJSON(t, &f)
	if f.Message != "Tom & Jerry's bin: 5 < 10kg" {
		t.Errorf("message: %q", f.Message)
	}
}

func TestSubmit_Anonymous(t *testing.T) {
	router := newRouter(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", `{"message":"hello","category":"Bug"}`))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"userId":null`)
	rec.AssertContains(t, `"category":"bug"`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestSubmit_Validation(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"category":"bug"}`},
		{"markup only", `{"message":"<script>alert(1)</script>"}`},
		{"rating too high", `{"message":"hi","rating":6}`},
		{"rating too low", `{"message":"hi","rating":0}`},
		{"malformed", `{"message":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", tt.body))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}
