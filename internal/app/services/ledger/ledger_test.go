package ledger_test

import (
	"context"
	"testing"

	"github.com/dalemusser/pipapal/internal/app/policy/collectionpolicy"
	"github.com/dalemusser/pipapal/internal/app/services/ledger"
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/store/memory"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	u := models.User{ID: "u1", Role: models.RoleRecycler}

	require.NoError(t, st.RunInTx(ctx, func(tx store.Store) error { return ledger.Welcome(ctx, tx, u) }))

	impacts, err := st.ListImpacts(ctx, store.ImpactQuery{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, impacts, 1)
	assert.Zero(t, impacts[0].WasteAmount)
	assert.Nil(t, impacts[0].CollectionID)

	badges, err := st.ListBadges(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, models.BadgeWelcome, badges[0].BadgeType)

	acts, err := st.ListActivities(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, models.ActivityRegistration, acts[0].Type)
	assert.Nil(t, acts[0].Points)
}

func TestBadge_AwardedOnce(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	first, err := ledger.Badge(ctx, st, "u1", models.BadgeOnboardingComplete)
	require.NoError(t, err)
	second, err := ledger.Badge(ctx, st, "u1", models.BadgeOnboardingComplete)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}

func TestImpact_UsesFactors(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	cid := "c1"

	require.NoError(t, ledger.Impact(ctx, st, "u1", &cid, 4, collectionpolicy.CompletionFactors))

	rows, err := st.ListImpacts(ctx, store.ImpactQuery{CollectionIDs: []string{cid}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 40, rows[0].WaterSaved, 1e-9)
	assert.InDelta(t, 10, rows[0].CO2Reduced, 1e-9)
}

func TestActivity_Points(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	require.NoError(t, ledger.Activity(ctx, st, "u1", models.ActivityCollectionScheduled, "Scheduled", 20))
	acts, _ := st.ListActivities(ctx, "u1", 0)
	require.Len(t, acts, 1)
	require.NotNil(t, acts[0].Points)
	assert.Equal(t, 20, *acts[0].Points)
}
