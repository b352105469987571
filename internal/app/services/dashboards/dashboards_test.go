package dashboards_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/services/dashboards"
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func actor(u models.User) auth.SessionUser {
	return auth.SessionUser{ID: u.ID, Name: u.DisplayName(), Role: u.Role}
}

func TestOwnerDashboard(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	fx := testutil.NewFixtures(t, st)
	home := fx.CreateHousehold(ctx, "hana")
	col := fx.CreateCollector(ctx, "carl")
	fx.CreateCollection(ctx, home.ID, "plastic", models.StatusScheduled, "")
	fx.CreateCollection(ctx, home.ID, "glass", models.StatusScheduled, "")
	fx.CreateCompletedCollection(ctx, home.ID, col.ID, "paper", 3)
	_, err := st.AddPoints(ctx, home.ID, 42)
	require.NoError(t, err)

	out, err := dashboards.New(st, zap.NewNop()).Build(ctx, actor(home))
	require.NoError(t, err)
	sum, ok := out.(dashboards.OwnerSummary)
	require.True(t, ok, "got %T", out)

	assert.Equal(t, 3, sum.TotalCollections)
	assert.Equal(t, 2, sum.ByStatus[models.StatusScheduled])
	assert.Equal(t, 1, sum.ByStatus[models.StatusCompleted])
	assert.Equal(t, 0, sum.ByStatus[models.StatusCancelled])
	assert.Equal(t, 42, sum.SustainabilityScore)
	assert.NotNil(t, sum.RecentActivity)
	assert.NotNil(t, sum.Badges)
}

func TestCollectorDashboard(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	fx := testutil.NewFixtures(t, st)
	home := fx.CreateHousehold(ctx, "hana")
	col := fx.CreateCollector(ctx, "carl")

	fx.CreateCollection(ctx, home.ID, "plastic", models.StatusConfirmed, col.ID)
	fx.CreateCollection(ctx, home.ID, "plastic", models.StatusPending, "")
	fx.CreateCollection(ctx, home.ID, "glass", models.StatusScheduled, "")
	fx.CreateCollection(ctx, home.ID, "glass", models.StatusCancelled, "")
	fx.CreateCompletedCollection(ctx, home.ID, col.ID, "paper", 2.5)
	fx.CreateCompletedCollection(ctx, home.ID, col.ID, "metal", 1.5)

	out, err := dashboards.New(st, zap.NewNop()).Build(ctx, actor(col))
	require.NoError(t, err)
	sum := out.(dashboards.CollectorSummary)

	assert.Equal(t, 1, sum.AssignedActive)
	assert.Equal(t, 2, sum.Available)
	assert.Equal(t, 2, sum.CompletedToday)
	assert.InDelta(t, 4, sum.KgCollected, 1e-9)
}

func TestCollectorDashboard_CompletedTodayUsesClock(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	fx := testutil.NewFixtures(t, st)
	home := fx.CreateHousehold(ctx, "hana")
	col := fx.CreateCollector(ctx, "carl")
	fx.CreateCompletedCollection(ctx, home.ID, col.ID, "paper", 1)

	svc := dashboards.New(st, zap.NewNop())
	svc.Register(models.RoleCollector, dashboards.CollectorDashboard{
		Now: func() time.Time { return time.Now().UTC().AddDate(0, 0, 2) },
	})
	out, err := svc.Build(ctx, actor(col))
	require.NoError(t, err)
	assert.Zero(t, out.(dashboards.CollectorSummary).CompletedToday)
}

func TestRecyclerDashboard(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	fx := testutil.NewFixtures(t, st)
	home := fx.CreateHousehold(ctx, "hana")
	col := fx.CreateCollector(ctx, "carl")
	rcy := fx.CreateRecycler(ctx, "rita")

	a := fx.CreateCompletedCollection(ctx, home.ID, col.ID, "plastic", 6)
	b := fx.CreateCompletedCollection(ctx, home.ID, col.ID, "glass", 2)
	fx.CreateCollection(ctx, home.ID, "paper", models.StatusInProgress, col.ID)
	fx.CreateCollection(ctx, home.ID, "paper", models.StatusScheduled, "")

	fx.CreateInterest(ctx, a.ID, rcy.ID, models.InterestPending)
	done := fx.CreateInterest(ctx, b.ID, rcy.ID, models.InterestCompleted)
	require.Nil(t, done.AmountRequested)

	out, err := dashboards.New(st, zap.NewNop()).Build(ctx, actor(rcy))
	require.NoError(t, err)
	sum := out.(dashboards.RecyclerSummary)

	assert.Equal(t, 3, sum.AvailableMaterials)
	assert.Equal(t, 1, sum.InterestsByStatus[models.InterestPending])
	assert.Equal(t, 1, sum.InterestsByStatus[models.InterestCompleted])
	assert.Equal(t, 0, sum.InterestsByStatus[models.InterestRejected])
	assert.InDelta(t, 2, sum.KgAcquired, 1e-9)
}

func TestBuild_UnknownRole(t *testing.T) {
	svc := dashboards.New(memory.New(), zap.NewNop())
	_, err := svc.Build(context.Background(), auth.SessionUser{ID: "x", Role: "admin"})

	var e *respond.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusForbidden, e.Status)
}

type fixed struct{}

func (fixed) Build(context.Context, store.Store, auth.SessionUser) (any, error) {
	return "custom", nil
}

func TestRegister_OverridesRole(t *testing.T) {
	svc := dashboards.New(memory.New(), zap.NewNop())
	svc.Register("Recycler", fixed{})
	out, err := svc.Build(context.Background(), auth.SessionUser{ID: "x", Role: models.RoleRecycler})
	require.NoError(t, err)
	assert.Equal(t, "custom", out)
}
