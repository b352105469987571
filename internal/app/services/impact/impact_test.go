package impact_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/services/impact"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/dalemusser/pipapal/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	ctx  context.Context
	st   *memory.Store
	fx   *testutil.Fixtures
	svc  *impact.Service
	home models.User
	col  models.User
	rcy  models.User
}

func setup(t *testing.T) *env {
	t.Helper()
	st := memory.New()
	e := &env{
		ctx: context.Background(),
		st:  st,
		fx:  testutil.NewFixtures(t, st),
		svc: impact.New(st, zap.NewNop()),
	}
	e.home = e.fx.CreateHousehold(e.ctx, "hana")
	e.col = e.fx.CreateCollector(e.ctx, "carl")
	e.rcy = e.fx.CreateRecycler(e.ctx, "rita")
	return e
}

func actor(u models.User) auth.SessionUser {
	return auth.SessionUser{ID: u.ID, Name: u.DisplayName(), Role: u.Role}
}

func (e *env) addImpact(t *testing.T, userID string, collectionID *string, kg float64, at time.Time) {
	t.Helper()
	require.NoError(t, e.st.CreateImpact(e.ctx, &models.Impact{
		ID:           uuid.NewString(),
		UserID:       userID,
		CollectionID: collectionID,
		WasteAmount:  kg,
		WaterSaved:   kg * 10,
		CO2Reduced:   kg * 2,
		CreatedAt:    at,
	}))
}

func TestSummary_ByRole(t *testing.T) {
	e := setup(t)
	now := time.Now().UTC()

	assigned := e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "plastic", 4)
	other := e.fx.CreateCollection(e.ctx, e.home.ID, "glass", models.StatusScheduled, "")
	e.addImpact(t, e.home.ID, &assigned.ID, 4, now)
	e.addImpact(t, e.home.ID, &other.ID, 6, now)
	e.addImpact(t, e.home.ID, nil, 0, now)

	owner, err := e.svc.Summary(e.ctx, actor(e.home))
	require.NoError(t, err)
	assert.InDelta(t, 10, owner.WasteAmount, 1e-9)
	assert.InDelta(t, 100, owner.WaterSaved, 1e-9)
	assert.Equal(t, 2, owner.Collections)

	collector, err := e.svc.Summary(e.ctx, actor(e.col))
	require.NoError(t, err)
	assert.InDelta(t, 4, collector.WasteAmount, 1e-9)
	assert.Equal(t, 1, collector.Collections)

	// No accepted interest yet.
	recycler, err := e.svc.Summary(e.ctx, actor(e.rcy))
	require.NoError(t, err)
	assert.Zero(t, recycler.WasteAmount)
	assert.Zero(t, recycler.Collections)

	e.fx.CreateInterest(e.ctx, assigned.ID, e.rcy.ID, models.InterestPending)
	recycler, err = e.svc.Summary(e.ctx, actor(e.rcy))
	require.NoError(t, err)
	assert.Zero(t, recycler.WasteAmount, "pending interests do not count")

	e.fx.CreateInterest(e.ctx, assigned.ID, e.rcy.ID, models.InterestAccepted)
	recycler, err = e.svc.Summary(e.ctx, actor(e.rcy))
	require.NoError(t, err)
	assert.InDelta(t, 4, recycler.WasteAmount, 1e-9)
	assert.Equal(t, 1, recycler.Collections)
}

func TestMonthly_ZeroFilledOldestFirst(t *testing.T) {
	e := setup(t)
	e.svc.SetNow(func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) })

	e.addImpact(t, e.home.ID, nil, 5, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	e.addImpact(t, e.home.ID, nil, 1, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	e.addImpact(t, e.home.ID, nil, 2, time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))
	e.addImpact(t, e.home.ID, nil, 9, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)) // outside the window

	months, err := e.svc.Monthly(e.ctx, actor(e.home))
	require.NoError(t, err)
	require.Len(t, months, impact.Months)

	keys := make([]string, len(months))
	for i, m := range months {
		keys[i] = m.Month
	}
	assert.Equal(t, []string{"2025-10", "2025-11", "2025-12", "2026-01", "2026-02", "2026-03"}, keys)
	assert.Zero(t, months[0].WasteAmount)
	assert.InDelta(t, 2, months[2].WasteAmount, 1e-9)
	assert.InDelta(t, 6, months[5].WasteAmount, 1e-9)
	assert.InDelta(t, 12, months[5].CO2Reduced, 1e-9)
}

func TestWasteTypes_SortedDescending(t *testing.T) {
	e := setup(t)
	e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "glass", 2)
	e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "plastic", 3)
	e.fx.CreateCompletedCollection(e.ctx, e.home.ID, e.col.ID, "plastic", 4)
	e.fx.CreateCollection(e.ctx, e.home.ID, "metal", models.StatusScheduled, "")

	got, err := e.svc.WasteTypes(e.ctx, actor(e.home))
	require.NoError(t, err)
	assert.Equal(t, []impact.WasteTypeAmount{
		{WasteType: "plastic", Amount: 7},
		{WasteType: "glass", Amount: 2},
	}, got)

	empty, err := e.svc.WasteTypes(e.ctx, actor(e.rcy))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
