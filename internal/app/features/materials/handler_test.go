package materials_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/features/materials"
	"github.com/dalemusser/pipapal/internal/app/services/marketplace"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/notify"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type env struct {
	ctx       context.Context
	st        *memory.Store
	fx        *testutil.Fixtures
	rec       *notify.Recorder
	materials chi.Router
	interests chi.Router
	home      models.User
	col       models.User
	rcy       models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()
	st := memory.New()
	rec := &notify.Recorder{}

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h := materials.NewHandler(marketplace.New(st, rec, logger), st, logger)

	e := &env{
		ctx:       context.Background(),
		st:        st,
		fx:        testutil.NewFixtures(t, st),
		rec:       rec,
		materials: materials.Routes(h, sm),
		interests: materials.InterestRoutes(h, sm),
	}
	e.home = e.fx.CreateHousehold(e.ctx, "hana")
	e.col = e.fx.CreateCollector(e.ctx, "carl")
	e.rcy = e.fx.CreateRecycler(e.ctx, "rita")
	return e
}

func serve(router http.Handler, req *http.Request, u models.User) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(req, testutil.AsTestUser(u)))
	return rec
}

func TestExpressInterest(t *testing.T) {
	e := newEnv(t)
	c := e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "plastic", 12)

	body := map[string]any{"collectionId": c.ID, "amountRequested": 5, "message": "<script>x</script>pickup Friday"}
	rec := serve(e.materials, testutil.NewJSONRequest(http.MethodPost, "/express-interest", body), e.rcy)
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"status":"pending"`)

	var mi models.MaterialInterest
	rec.DecodeJSON(t, &mi)
	if mi.Message != "pickup Friday" {
		t.Errorf("message not sanitized: %q", mi.Message)
	}
	if len(e.rec.ToUser(e.home.ID, notify.TypeNotification)) != 1 {
		t.Error("owner was not notified")
	}
	if len(e.rec.ToUser(e.col.ID, notify.TypeNotification)) != 1 {
		t.Error("collector was not notified")
	}

	// A second pending interest on the same collection is refused.
	serve(e.materials, testutil.NewJSONRequest(http.MethodPost, "/express-interest", body), e.rcy).
		AssertStatus(t, http.StatusConflict)
}

func TestExpressInterest_Rejections(t *testing.T) {
	e := newEnv(t)
	done := e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "glass", 3)
	open := e.fx.CreateCollection(e.ctx, e.home.ID, "glass", models.StatusScheduled, "")

	tests := []struct {
		name string
		user models.User
		body any
		want int
	}{
		{"household lacks permission", e.home, map[string]any{"collectionId": done.ID}, http.StatusForbidden},
		{"missing collection id", e.rcy, `{}`, http.StatusBadRequest},
		{"unknown collection", e.rcy, map[string]any{"collectionId": "missing"}, http.StatusNotFound},
		{"not yet available", e.rcy, map[string]any{"collectionId": open.ID}, http.StatusBadRequest},
		{"more than available", e.rcy, map[string]any{"collectionId": done.ID, "amountRequested": 4}, http.StatusBadRequest},
		{"negative price", e.rcy, map[string]any{"collectionId": done.ID, "pricePerKg": -1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(http.MethodPost, "/express-interest", tt.body)
			serve(e.materials, req, tt.user).AssertStatus(t, tt.want)
		})
	}
}

func TestListInterests_ByRole(t *testing.T) {
	e := newEnv(t)
	other := e.fx.CreateRecycler(e.ctx, "rex")
	c := e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "metal", 9)
	e.fx.CreateInterest(e.ctx, c.ID, e.rcy.ID, models.InterestPending)
	e.fx.CreateInterest(e.ctx, c.ID, other.ID, models.InterestPending)

	tests := []struct {
		name string
		user models.User
		want int
	}{
		{"recycler sees own", e.rcy, 1},
		{"collector sees assigned", e.col, 2},
		{"owner sees own collections", e.home, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []models.MaterialInterest
			rec := serve(e.materials, testutil.NewRequest(http.MethodGet, "/interests"), tt.user)
			rec.AssertStatus(t, http.StatusOK)
			rec.DecodeJSON(t, &rows)
			if len(rows) != tt.want {
				t.Errorf("got %d interests, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestUpdateStatus_AwardsPoints(t *testing.T) {
	e := newEnv(t)
	c := e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "paper", 6)
	mi := e.fx.CreateInterest(e.ctx, c.ID, e.rcy.ID, models.InterestPending)

	rec := serve(e.interests, testutil.NewJSONRequest(http.MethodPatch, "/"+mi.ID+"/status", `{"status":"accepted"}`), e.col)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"accepted"`)

	rec = serve(e.interests, testutil.NewJSONRequest(http.MethodPatch, "/"+mi.ID+"/status", `{"status":"completed"}`), e.col)
	rec.AssertStatus(t, http.StatusOK)

	col, _ := e.st.GetUser(e.ctx, e.col.ID)
	rcy, _ := e.st.GetUser(e.ctx, e.rcy.ID)
	if col.SustainabilityScore != 25 || rcy.SustainabilityScore != 25 {
		t.Errorf("points: collector=%d recycler=%d, want 25 and 25", col.SustainabilityScore, rcy.SustainabilityScore)
	}
	if len(e.rec.ToUser(e.rcy.ID, notify.TypeNotification)) != 2 {
		t.Error("recycler should be notified of each change")
	}

	// Completed interests are final.
	serve(e.interests, testutil.NewJSONRequest(http.MethodPatch, "/"+mi.ID+"/status", `{"status":"rejected"}`), e.col).
		AssertStatus(t, http.StatusBadRequest)
}

func TestUpdateStatus_Guards(t *testing.T) {
	e := newEnv(t)
	rival := e.fx.CreateCollector(e.ctx, "cora")
	c := e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "paper", 6)
	mi := e.fx.CreateInterest(e.ctx, c.ID, e.rcy.ID, models.InterestPending)
	path := "/" + mi.ID + "/status"

	tests := []struct {
		name string
		path string
		user models.User
		body string
		want int
	}{
		{"other collector", path, rival, `{"status":"accepted"}`, http.StatusForbidden},
		{"owner cannot settle", path, e.home, `{"status":"accepted"}`, http.StatusForbidden},
		{"recycler cannot settle", path, e.rcy, `{"status":"accepted"}`, http.StatusForbidden},
		{"unknown interest", "/missing/status", e.col, `{"status":"accepted"}`, http.StatusNotFound},
		{"bad status", path, e.col, `{"status":"pending"}`, http.StatusBadRequest},
		{"skip to completed", path, e.col, `{"status":"completed"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(http.MethodPatch, tt.path, tt.body)
			serve(e.interests, req, tt.user).AssertStatus(t, tt.want)
		})
	}
}

func TestRoutes_RequireSignIn(t *testing.T) {
	e := newEnv(t)
	rec := testutil.NewRecorder()
	e.materials.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/interests"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
