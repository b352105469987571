package collections_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/features/collections"
	collectionsvc "github.com/dalemusser/pipapal/internal/app/services/collections"
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
	ctx    context.Context
	fx     *testutil.Fixtures
	router chi.Router
	rec    *notify.Recorder
	home   models.User
	col    models.User
	rcy    models.User
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
	h := collections.NewHandler(collectionsvc.New(st, rec, logger), marketplace.New(st, rec, logger), logger)

	e := &env{
		ctx:    context.Background(),
		fx:     testutil.NewFixtures(t, st),
		router: collections.Routes(h, sm),
		rec:    rec,
	}
	e.home = e.fx.CreateHousehold(e.ctx, "hana")
	e.col = e.fx.CreateCollector(e.ctx, "carl")
	e.rcy = e.fx.CreateRecycler(e.ctx, "rita")
	return e
}

func (e *env) do(req *http.Request, u models.User) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.WithUser(req, testutil.AsTestUser(u)))
	return rec
}

func TestCreate_AwardsPoints(t *testing.T) {
	e := newEnv(t)

	body := map[string]any{
		"wasteType":     "plastic",
		"wasteAmount":   20,
		"address":       "1 Main St",
		"scheduledDate": "2026-11-01T09:00:00Z",
	}
	rec := e.do(testutil.NewJSONRequest(http.MethodPost, "/", body), e.home)
	rec.AssertStatus(t, http.StatusCreated)

	var out struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		PointsEarned   int    `json:"pointsEarned"`
		NewTotalPoints int    `json:"newTotalPoints"`
	}
	rec.DecodeJSON(t, &out)
	if out.Status != models.StatusScheduled {
		t.Errorf("status: got %q", out.Status)
	}
	if out.PointsEarned != 20 || out.NewTotalPoints != 20 {
		t.Errorf("points: %+v", out)
	}
	if len(e.rec.ToRole(models.RoleCollector, notify.TypeNewCollection)) != 1 {
		t.Error("collectors were not notified")
	}
}

func TestCreate_Rejections(t *testing.T) {
	e := newEnv(t)

	rec := e.do(testutil.NewJSONRequest(http.MethodPost, "/", `{"address":"1 Main St"}`), e.home)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Validation failed")

	body := `{"wasteType":"glass","address":"x","scheduledDate":"2026-11-01T09:00:00Z"}`
	e.do(testutil.NewJSONRequest(http.MethodPost, "/", body), e.col).AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", body))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestList_RespectsVisibility(t *testing.T) {
	e := newEnv(t)
	other := e.fx.CreateHousehold(e.ctx, "otto")
	e.fx.CreateCollection(e.ctx, e.home.ID, "plastic", models.StatusScheduled, "")
	e.fx.CreateCollection(e.ctx, other.ID, "glass", models.StatusScheduled, "")

	var rows []models.Collection
	rec := e.do(testutil.NewRequest(http.MethodGet, "/"), e.home)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &rows)
	if len(rows) != 1 || rows[0].UserID != e.home.ID {
		t.Errorf("owner sees %d rows", len(rows))
	}

	rec = e.do(testutil.NewRequest(http.MethodGet, "/"), e.col)
	rec.DecodeJSON(t, &rows)
	if len(rows) != 2 {
		t.Errorf("collector sees %d rows, want 2", len(rows))
	}

	rec = e.do(testutil.NewRequest(http.MethodGet, "/"), e.rcy)
	rec.DecodeJSON(t, &rows)
	if len(rows) != 0 {
		t.Errorf("recycler sees %d rows, want 0", len(rows))
	}
}

func TestGet(t *testing.T) {
	e := newEnv(t)
	other := e.fx.CreateHousehold(e.ctx, "otto")
	c := e.fx.CreateCollection(e.ctx, e.home.ID, "plastic", models.StatusConfirmed, e.col.ID)

	e.do(testutil.NewRequest(http.MethodGet, "/"+c.ID), e.home).AssertStatus(t, http.StatusOK)
	e.do(testutil.NewRequest(http.MethodGet, "/"+c.ID), e.col).AssertStatus(t, http.StatusOK)
	e.do(testutil.NewRequest(http.MethodGet, "/"+c.ID), other).AssertStatus(t, http.StatusForbidden)
	e.do(testutil.NewRequest(http.MethodGet, "/missing"), e.home).AssertStatus(t, http.StatusNotFound)
}

func TestClaim_SecondCollectorConflicts(t *testing.T) {
	e := newEnv(t)
	rival := e.fx.CreateCollector(e.ctx, "cora")
	c := e.fx.CreateCollection(e.ctx, e.home.ID, "plastic", models.StatusScheduled, "")

	rec := e.do(testutil.NewRequest(http.MethodPost, "/"+c.ID+"/claim"), e.col)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"confirmed"`)

	rec = e.do(testutil.NewRequest(http.MethodPost, "/"+c.ID+"/claim"), rival)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "Collection already claimed")

	e.do(testutil.NewRequest(http.MethodPost, "/"+c.ID+"/claim"), e.home).AssertStatus(t, http.StatusForbidden)
}

func TestUpdate_CompleteAndTransitions(t *testing.T) {
	e := newEnv(t)
	c := e.fx.CreateCollection(e.ctx, e.home.ID, "plastic", models.StatusConfirmed, e.col.ID)

	// Skipping in_progress is not a valid transition.
	e.do(testutil.NewJSONRequest(http.MethodPatch, "/"+c.ID, `{"status":"completed","wasteAmount":4}`), e.col).
		AssertStatus(t, http.StatusBadRequest)

	e.do(testutil.NewJSONRequest(http.MethodPatch, "/"+c.ID, `{"status":"in_progress"}`), e.col).
		AssertStatus(t, http.StatusOK)

	rec := e.do(testutil.NewJSONRequest(http.MethodPatch, "/"+c.ID, `{"status":"completed","wasteAmount":4}`), e.col)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"wasteAmount":4`)

	e.do(testutil.NewJSONRequest(http.MethodPatch, "/"+c.ID, `{"status":"bogus"}`), e.col).
		AssertStatus(t, http.StatusBadRequest)
}

func TestUpdate_OwnerMayOnlyCancel(t *testing.T) {
	e := newEnv(t)
	c := e.fx.CreateCollection(e.ctx, e.home.ID, "plastic", models.StatusScheduled, "")

	e.do(testutil.NewJSONRequest(http.MethodPatch, "/"+c.ID, `{"status":"confirmed"}`), e.home).
		AssertStatus(t, http.StatusForbidden)

	rec := e.do(testutil.NewJSONRequest(http.MethodPatch, "/"+c.ID, `{"status":"cancelled","notes":"<b>moved</b>"}`), e.home)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"cancelled"`)
	rec.AssertContains(t, `"notes":"moved"`)

	e.do(testutil.NewJSONRequest(http.MethodPatch, "/"+c.ID, `{"notes":"x"}`), e.rcy).
		AssertStatus(t, http.StatusForbidden)
}

func TestInterests_ForCollection(t *testing.T) {
	e := newEnv(t)
	c := e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "plastic", 8)
	e.fx.CreateInterest(e.ctx, c.ID, e.rcy.ID, models.InterestPending)

	var rows []models.MaterialInterest
	rec := e.do(testutil.NewRequest(http.MethodGet, "/"+c.ID+"/interests"), e.col)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &rows)
	if len(rows) != 1 {
		t.Errorf("collector sees %d interests, want 1", len(rows))
	}

	stranger := e.fx.CreateHousehold(e.ctx, "otto")
	e.do(testutil.NewRequest(http.MethodGet, "/"+c.ID+"/interests"), stranger).AssertStatus(t, http.StatusForbidden)
}

func TestHandlers_NoSessionUser(t *testing.T) {
	logger := zap.NewNop()
	st := memory.New()
	rec := &notify.Recorder{}
	h := collections.NewHandler(collectionsvc.New(st, rec, logger), marketplace.New(st, rec, logger), logger)

	tests := []struct {
		name  string
		serve http.HandlerFunc
		req   *http.Request
	}{
		{"list", h.ServeList, testutil.NewRequest(http.MethodGet, "/")},
		{"create", h.HandleCreate, testutil.NewJSONRequest(http.MethodPost, "/", map[string]any{"wasteType": "plastic"})},
		{"get", h.ServeGet, testutil.NewRequest(http.MethodGet, "/abc")},
		{"update", h.HandleUpdate, testutil.NewJSONRequest(http.MethodPatch, "/abc", map[string]any{"notes": "hi"})},
		{"claim", h.HandleClaim, testutil.NewRequest(http.MethodPost, "/abc/claim")},
		{"interests", h.ServeInterests, testutil.NewRequest(http.MethodGet, "/abc/interests")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.NewRecorder()
			tt.serve(w, tt.req)
			w.AssertStatus(t, http.StatusUnauthorized)
		})
	}
	if len(rec.All()) != 0 {
		t.Errorf("expected no events, got %d", len(rec.All()))
	}
}
