package dashboard_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/features/dashboard"
	"github.com/dalemusser/pipapal/internal/app/services/dashboards"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"go.uber.org/zap"
)

func TestServeDashboard_PerRole(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	st := memory.New()
	fx := testutil.NewFixtures(t, st)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	router := dashboard.Routes(dashboard.NewHandler(dashboards.New(st, logger), logger), sm)

	home := fx.CreateHousehold(ctx, "hana")
	col := fx.CreateCollector(ctx, "carl")
	rcy := fx.CreateRecycler(ctx, "rita")
	fx.CreateCollection(ctx, home.ID, "plastic", models.StatusScheduled, "")
	done := fx.CreateCompletedCollection(ctx, home.ID, col.ID, "metal", 7)
	fx.CreateInterest(ctx, done.ID, rcy.ID, models.InterestPending)

	get := func(u models.User) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(u)))
		rec.AssertStatus(t, http.StatusOK)
		return rec
	}

	t.Run("owner", func(t *testing.T) {
		var out dashboards.OwnerSummary
		get(home).DecodeJSON(t, &out)
		if out.TotalCollections != 2 || out.ByStatus[models.StatusScheduled] != 1 || out.ByStatus[models.StatusCompleted] != 1 {
			t.Errorf("owner summary: %+v", out)
		}
	})

	t.Run("collector", func(t *testing.T) {
		var out dashboards.CollectorSummary
		get(col).DecodeJSON(t, &out)
		if out.Available != 1 || out.KgCollected != 7 {
			t.Errorf("collector summary: %+v", out)
		}
	})

	t.Run("recycler", func(t *testing.T) {
		rec := get(rcy)
		rec.AssertContains(t, `"availableMaterials":1`)
		rec.AssertContains(t, `"pending":1`)
	})

	t.Run("signed out", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
		rec.AssertStatus(t, http.StatusUnauthorized)
	})
}
