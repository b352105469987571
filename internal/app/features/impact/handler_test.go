package impact_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/features/impact"
	"github.com/dalemusser/pipapal/internal/app/policy/collectionpolicy"
	impactsvc "github.com/dalemusser/pipapal/internal/app/services/impact"
	"github.com/dalemusser/pipapal/internal/app/services/ledger"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"go.uber.org/zap"
)

func TestImpactRoutes(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	st := memory.New()
	fx := testutil.NewFixtures(t, st)
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	router := impact.Routes(impact.NewHandler(impactsvc.New(st, logger), logger), sm)

	home := fx.CreateHousehold(ctx, "hana")
	other := fx.CreateHousehold(ctx, "omar")
	col := fx.CreateCollector(ctx, "carl")
	c := fx.CreateCompletedCollection(ctx, home.ID, col.ID, "plastic", 10)
	if err := ledger.Impact(ctx, st, home.ID, &c.ID, 10, collectionpolicy.CreationFactors); err != nil {
		t.Fatalf("seed impact: %v", err)
	}

	get := func(path string, u models.User) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, path, testutil.AsTestUser(u)))
		return rec
	}

	t.Run("summary", func(t *testing.T) {
		rec := get("/", home)
		rec.AssertStatus(t, http.StatusOK)
		var out impactsvc.Totals
		rec.DecodeJSON(t, &out)
		if out.Collections != 1 || out.WasteAmount != 10 || out.CO2Reduced != 20 {
			t.Errorf("summary: %+v", out)
		}
	})

	t.Run("summary is scoped to the caller", func(t *testing.T) {
		var out impactsvc.Totals
		get("/", other).DecodeJSON(t, &out)
		if out.Collections != 0 || out.WasteAmount != 0 {
			t.Errorf("other household sees %+v", out)
		}
	})

	t.Run("collector sees collections they completed", func(t *testing.T) {
		var out impactsvc.Totals
		get("/", col).DecodeJSON(t, &out)
		if out.Collections != 1 || out.WasteAmount != 10 {
			t.Errorf("collector summary: %+v", out)
		}
	})

	t.Run("monthly", func(t *testing.T) {
		rec := get("/monthly", home)
		rec.AssertStatus(t, http.StatusOK)
		var out []impactsvc.Month
		rec.DecodeJSON(t, &out)
		if len(out) != impactsvc.Months {
			t.Fatalf("months: got %d, want %d", len(out), impactsvc.Months)
		}
		last := out[len(out)-1]
		if last.Month != time.Now().UTC().Format("2006-01") || last.WasteAmount != 10 {
			t.Errorf("current month: %+v", last)
		}
	})

	t.Run("waste types", func(t *testing.T) {
		rec := get("/waste-types", home)
		rec.AssertStatus(t, http.StatusOK)
		var out []impactsvc.WasteTypeAmount
		rec.DecodeJSON(t, &out)
		if len(out) != 1 || out[0].WasteType != "plastic" || out[0].Amount != 10 {
			t.Errorf("waste types: %+v", out)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
		rec.AssertStatus(t, http.StatusUnauthorized)
	})
}
