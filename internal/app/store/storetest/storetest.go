// internal/app/store/storetest/storetest.go

// Package storetest is a behavioural suite every store.Store backend must
// pass. Backends call Run from their own _test.go files.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Options describes backend capabilities the suite must respect.
type Options struct {
	// Rollback is false for backends that cannot undo writes when a
	// RunInTx callback fails (e.g. MongoDB without a replica set).
	Rollback bool
}

// Run executes the full suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory, opts Options) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Collections", func(t *testing.T) { testCollections(t, newStore(t)) })
	t.Run("Claim", func(t *testing.T) { testClaim(t, newStore(t)) })
	t.Run("Ledger", func(t *testing.T) { testLedger(t, newStore(t)) })
	t.Run("Interests", func(t *testing.T) { testInterests(t, newStore(t)) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, newStore(t)) })
	t.Run("Reference", func(t *testing.T) { testReference(t, newStore(t)) })
	t.Run("TxCommit", func(t *testing.T) { testTxCommit(t, newStore(t)) })
	if opts.Rollback {
		t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	}
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newUser(name, role string) *models.User {
	return &models.User{
		ID:           uuid.NewString(),
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash.salt",
		Role:         role,
		FullName:     name,
		CreatedAt:    base,
		UpdatedAt:    base,
	}
}

func newCollection(owner string, status string, seq int) *models.Collection {
	return &models.Collection{
		ID:            uuid.NewString(),
		UserID:        owner,
		WasteType:     models.WastePlastic,
		Address:       "1 Green Way",
		ScheduledDate: base.Add(48 * time.Hour),
		Status:        status,
		CreatedAt:     base.Add(time.Duration(seq) * time.Minute),
		UpdatedAt:     base.Add(time.Duration(seq) * time.Minute),
	}
}

func ids(cs []models.Collection) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func testUsers(t *testing.T, s store.Store) {
	c := ctx(t)

	alice := newUser("alice", models.RoleHousehold)
	require.NoError(t, s.CreateUser(c, alice))

	dupName := newUser("alice", models.RoleCollector)
	dupName.Email = "other@example.com"
	assert.True(t, errors.Is(s.CreateUser(c, dupName), store.ErrDuplicate), "duplicate username")

	dupEmail := newUser("alice2", models.RoleCollector)
	dupEmail.Email = alice.Email
	assert.True(t, errors.Is(s.CreateUser(c, dupEmail), store.ErrDuplicate), "duplicate email")

	got, err := s.GetUser(c, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, models.RoleHousehold, got.Role)

	_, err = s.GetUser(c, uuid.NewString())
	assert.True(t, errors.Is(err, store.ErrNotFound))

	got, err = s.GetUserByUsername(c, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = s.GetUserByEmail(c, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.GetUserByGoogleUID(c, "g-1")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	uid := "g-1"
	name := "Alice Green"
	done := true
	got, err = s.UpdateUser(c, alice.ID, models.UserUpdate{GoogleUID: &uid, FullName: &name, OnboardingCompleted: &done})
	require.NoError(t, err)
	assert.Equal(t, "Alice Green", got.FullName)
	assert.True(t, got.OnboardingCompleted)

	got, err = s.GetUserByGoogleUID(c, "g-1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	bob := newUser("bob", models.RoleCollector)
	require.NoError(t, s.CreateUser(c, bob))
	_, err = s.UpdateUser(c, bob.ID, models.UserUpdate{Email: &alice.Email})
	assert.True(t, errors.Is(err, store.ErrDuplicate), "email taken by another user")

	_, err = s.UpdateUser(c, uuid.NewString(), models.UserUpdate{FullName: &name})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	total, err := s.AddPoints(c, alice.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, total)
	total, err = s.AddPoints(c, alice.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 25, total)

	_, err = s.AddPoints(c, uuid.NewString(), 1)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	collectors, err := s.ListUsersByRole(c, models.RoleCollector)
	require.NoError(t, err)
	require.Len(t, collectors, 1)
	assert.Equal(t, bob.ID, collectors[0].ID)

	many, err := s.GetUsers(c, []string{alice.ID, bob.ID, uuid.NewString()})
	require.NoError(t, err)
	assert.Len(t, many, 2)
}

func testCollections(t *testing.T, s store.Store) {
	c := ctx(t)

	owner := uuid.NewString()
	other := uuid.NewString()
	collector := uuid.NewString()

	first := newCollection(owner, models.StatusScheduled, 1)
	second := newCollection(owner, models.StatusPending, 2)
	third := newCollection(other, models.StatusCompleted, 3)
	third.CollectorID = &collector
	amt := 12.5
	third.WasteAmount = &amt

	for _, col := range []*models.Collection{first, second, third} {
		require.NoError(t, s.CreateCollection(c, col))
	}

	got, err := s.GetCollection(c, first.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, got.UserID)
	assert.Nil(t, got.CollectorID)
	assert.Nil(t, got.WasteAmount)
	assert.Nil(t, got.CompletedDate)

	_, err = s.GetCollection(c, uuid.NewString())
	assert.True(t, errors.Is(err, store.ErrNotFound))

	mine, err := s.ListCollections(c, store.CollectionQuery{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, ids(mine), "newest first")

	assigned, err := s.ListCollections(c, store.CollectionQuery{CollectorID: collector})
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID}, ids(assigned))

	open, err := s.ListCollections(c, store.CollectionQuery{
		Statuses: []string{models.StatusPending, models.StatusScheduled},
		Claimed:  store.BoolPtr(false),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids(open))

	claimed, err := s.ListCollections(c, store.CollectionQuery{Claimed: store.BoolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID}, ids(claimed))

	status := models.StatusInProgress
	notes := "gate code 1234"
	updated, err := s.UpdateCollection(c, first.ID, models.CollectionUpdate{Status: &status, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, "gate code 1234", updated.Notes)
	assert.Equal(t, "1 Green Way", updated.Address, "untouched fields survive")

	done := base.Add(72 * time.Hour)
	w := 8.0
	updated, err = s.UpdateCollection(c, second.ID, models.CollectionUpdate{WasteAmount: &w, CompletedDate: &done})
	require.NoError(t, err)
	require.NotNil(t, updated.WasteAmount)
	assert.InDelta(t, 8.0, *updated.WasteAmount, 0.0001)
	require.NotNil(t, updated.CompletedDate)

	_, err = s.UpdateCollection(c, uuid.NewString(), models.CollectionUpdate{Notes: &notes})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testClaim(t *testing.T, s store.Store) {
	c := ctx(t)

	owner := uuid.NewString()
	open := newCollection(owner, models.StatusScheduled, 1)
	done := newCollection(owner, models.StatusCompleted, 2)
	require.NoError(t, s.CreateCollection(c, open))
	require.NoError(t, s.CreateCollection(c, done))

	b := uuid.NewString()
	got, err := s.ClaimCollection(c, open.ID, b)
	require.NoError(t, err)
	require.NotNil(t, got.CollectorID)
	assert.Equal(t, b, *got.CollectorID)

	_, err = s.ClaimCollection(c, open.ID, uuid.NewString())
	assert.True(t, errors.Is(err, store.ErrConflict), "second claim loses")

	again, err := s.GetCollection(c, open.ID)
	require.NoError(t, err)
	assert.Equal(t, b, *again.CollectorID, "winner unchanged")

	_, err = s.ClaimCollection(c, done.ID, b)
	assert.True(t, errors.Is(err, store.ErrConflict), "terminal collections cannot be claimed")

	_, err = s.ClaimCollection(c, uuid.NewString(), b)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testLedger(t *testing.T, s store.Store) {
	c := ctx(t)

	user := uuid.NewString()
	colID := uuid.NewString()

	require.NoError(t, s.CreateImpact(c, &models.Impact{ID: uuid.NewString(), UserID: user, CreatedAt: base}))
	require.NoError(t, s.CreateImpact(c, &models.Impact{
		ID: uuid.NewString(), UserID: user, CollectionID: &colID,
		WasteAmount: 10, WaterSaved: 100, CO2Reduced: 25, TreesEquivalent: 1, EnergyConserved: 50,
		CreatedAt: base.Add(time.Hour),
	}))

	byUser, err := s.ListImpacts(c, store.ImpactQuery{UserID: user})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byCol, err := s.ListImpacts(c, store.ImpactQuery{CollectionIDs: []string{colID}})
	require.NoError(t, err)
	require.Len(t, byCol, 1)
	assert.InDelta(t, 25.0, byCol[0].CO2Reduced, 0.0001)

	none, err := s.ListImpacts(c, store.ImpactQuery{CollectionIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	for i := 0; i < 3; i++ {
		pts := i * 10
		require.NoError(t, s.CreateActivity(c, &models.Activity{
			ID: uuid.NewString(), UserID: user, Type: models.ActivityCollectionScheduled,
			Description: "scheduled", Points: &pts, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	acts, err := s.ListActivities(c, user, 2)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	require.NotNil(t, acts[0].Points)
	assert.Equal(t, 20, *acts[0].Points, "newest first")

	badge := &models.Badge{ID: uuid.NewString(), UserID: user, BadgeType: models.BadgeWelcome, Name: "Welcome", AwardedAt: base}
	awarded, err := s.AwardBadge(c, badge)
	require.NoError(t, err)
	assert.True(t, awarded)

	repeat := &models.Badge{ID: uuid.NewString(), UserID: user, BadgeType: models.BadgeWelcome, Name: "Welcome", AwardedAt: base}
	awarded, err = s.AwardBadge(c, repeat)
	require.NoError(t, err)
	assert.False(t, awarded, "badge awarded once")

	badges, err := s.ListBadges(c, user)
	require.NoError(t, err)
	assert.Len(t, badges, 1)
}

func testInterests(t *testing.T, s store.Store) {
	c := ctx(t)

	colA := uuid.NewString()
	colB := uuid.NewString()
	recycler := uuid.NewString()
	amt := 5.0

	a := &models.MaterialInterest{ID: uuid.NewString(), CollectionID: colA, RecyclerID: recycler,
		Status: models.InterestPending, AmountRequested: &amt, CreatedAt: base, UpdatedAt: base}
	b := &models.MaterialInterest{ID: uuid.NewString(), CollectionID: colB, RecyclerID: uuid.NewString(),
		Status: models.InterestPending, CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)}
	require.NoError(t, s.CreateInterest(c, a))
	require.NoError(t, s.CreateInterest(c, b))

	got, err := s.GetInterest(c, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AmountRequested)
	assert.InDelta(t, 5.0, *got.AmountRequested, 0.0001)
	assert.Nil(t, got.PricePerKg)

	_, err = s.GetInterest(c, uuid.NewString())
	assert.True(t, errors.Is(err, store.ErrNotFound))

	byCol, err := s.ListInterests(c, store.InterestQuery{CollectionIDs: []string{colA, colB}})
	require.NoError(t, err)
	assert.Len(t, byCol, 2)

	byRecycler, err := s.ListInterests(c, store.InterestQuery{RecyclerID: recycler})
	require.NoError(t, err)
	require.Len(t, byRecycler, 1)
	assert.Equal(t, a.ID, byRecycler[0].ID)

	none, err := s.ListInterests(c, store.InterestQuery{CollectionIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	upd, err := s.UpdateInterestStatus(c, a.ID, models.InterestAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.InterestAccepted, upd.Status)

	pending, err := s.ListInterests(c, store.InterestQuery{Statuses: []string{models.InterestPending}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)

	_, err = s.UpdateInterestStatus(c, uuid.NewString(), models.InterestAccepted)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testMessages(t *testing.T, s store.Store) {
	c := ctx(t)

	a, b, x := uuid.NewString(), uuid.NewString(), uuid.NewString()
	send := func(from, to, body string, seq int) {
		require.NoError(t, s.CreateMessage(c, &models.ChatMessage{
			ID: uuid.NewString(), SenderID: from, ReceiverID: to, Content: body,
			CreatedAt: base.Add(time.Duration(seq) * time.Second),
		}))
	}
	send(a, b, "hi", 1)
	send(b, a, "hello", 2)
	send(a, b, "pickup at 9?", 3)
	send(x, b, "unrelated", 4)

	conv, err := s.ListConversation(c, b, a)
	require.NoError(t, err)
	require.Len(t, conv, 3)
	assert.Equal(t, "hi", conv[0].Content, "oldest first")
	assert.Equal(t, "pickup at 9?", conv[2].Content)

	all, err := s.ListMessagesForUser(c, b)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "unrelated", all[0].Content, "newest first")

	unread, err := s.CountUnread(c, b)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	n, err := s.MarkRead(c, b, a)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	unread, err = s.CountUnread(c, b)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	n, err = s.MarkRead(c, b, a)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func testReference(t *testing.T, s store.Store) {
	c := ctx(t)

	require.NoError(t, s.CreateEcoTip(c, &models.EcoTip{ID: uuid.NewString(), Title: "Rinse bottles", Content: "Rinse before recycling.", Category: "recycling", WasteType: models.WastePlastic, CreatedAt: base}))
	require.NoError(t, s.CreateEcoTip(c, &models.EcoTip{ID: uuid.NewString(), Title: "Flatten boxes", Content: "Flatten cardboard.", Category: "recycling", WasteType: models.WastePaper, CreatedAt: base}))
	require.NoError(t, s.CreateEcoTip(c, &models.EcoTip{ID: uuid.NewString(), Title: "Reduce", Content: "Buy less.", Category: "general", CreatedAt: base}))

	tips, err := s.ListEcoTips(c, models.WastePlastic, 0)
	require.NoError(t, err)
	assert.Len(t, tips, 2, "plastic plus general")

	tips, err = s.ListEcoTips(c, "", 0)
	require.NoError(t, err)
	assert.Len(t, tips, 3)

	tips, err = s.ListEcoTips(c, "", 1)
	require.NoError(t, err)
	assert.Len(t, tips, 1)

	user := uuid.NewString()
	rating := 5
	require.NoError(t, s.CreateFeedback(c, &models.Feedback{ID: uuid.NewString(), UserID: &user, Category: "app", Message: "Great", Rating: &rating, CreatedAt: base}))
	require.NoError(t, s.CreateFeedback(c, &models.Feedback{ID: uuid.NewString(), Category: "app", Message: "anon", CreatedAt: base}))
	fb, err := s.ListFeedback(c, user)
	require.NoError(t, err)
	require.Len(t, fb, 1)
	assert.Equal(t, "Great", fb[0].Message)

	require.NoError(t, s.CreateRecyclingCenter(c, &models.RecyclingCenter{ID: uuid.NewString(), Name: "Zeta Depot", Address: "9 Dock Rd", AcceptedWasteTypes: []string{models.WasteMetal}, CreatedAt: base}))
	require.NoError(t, s.CreateRecyclingCenter(c, &models.RecyclingCenter{ID: uuid.NewString(), Name: "Alpha Recycling", Address: "1 Main St", AcceptedWasteTypes: []string{models.WastePlastic, models.WastePaper}, CreatedAt: base}))
	centers, err := s.ListRecyclingCenters(c)
	require.NoError(t, err)
	require.Len(t, centers, 2)
	assert.Equal(t, "Alpha Recycling", centers[0].Name)
	assert.Equal(t, []string{models.WastePlastic, models.WastePaper}, centers[0].AcceptedWasteTypes)
}

func testTxCommit(t *testing.T, s store.Store) {
	c := ctx(t)

	u := newUser("carol", models.RoleHousehold)
	require.NoError(t, s.CreateUser(c, u))

	err := s.RunInTx(c, func(tx store.Store) error {
		if _, err := tx.AddPoints(c, u.ID, 7); err != nil {
			return err
		}
		return tx.CreateActivity(c, &models.Activity{ID: uuid.NewString(), UserID: u.ID, Type: models.ActivityRegistration, CreatedAt: base})
	})
	require.NoError(t, err)

	got, err := s.GetUser(c, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.SustainabilityScore)

	acts, err := s.ListActivities(c, u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, acts, 1)
}

func testTxRollback(t *testing.T, s store.Store) {
	c := ctx(t)

	u := newUser("dave", models.RoleHousehold)
	require.NoError(t, s.CreateUser(c, u))

	boom := errors.New("boom")
	err := s.RunInTx(c, func(tx store.Store) error {
		if _, err := tx.AddPoints(c, u.ID, 50); err != nil {
			return err
		}
		if err := tx.CreateImpact(c, &models.Impact{ID: uuid.NewString(), UserID: u.ID, CreatedAt: base}); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	got, err := s.GetUser(c, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SustainabilityScore, "points rolled back")

	impacts, err := s.ListImpacts(c, store.ImpactQuery{UserID: u.ID})
	require.NoError(t, err)
	assert.Empty(t, impacts, "impact rolled back")
}
