package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data in any store.
type Fixtures struct {
	st store.Store
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given store.
func NewFixtures(t *testing.T, st store.Store) *Fixtures {
	t.Helper()
	return &Fixtures{st: st, t: t}
}

// Store returns the underlying store for direct access in tests.
func (f *Fixtures) Store() store.Store {
	return f.st
}

// CreateUser creates a user with the given username and role. The email
// is derived from the username and the password hash is a placeholder.
func (f *Fixtures) CreateUser(ctx context.Context, username, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: "00.00",
		Role:         role,
		FullName:     username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.st.CreateUser(ctx, &u); err != nil {
		f.t.Fatalf("failed to create user %s: %v", username, err)
	}
	return u
}

// CreateHousehold creates a household user.
func (f *Fixtures) CreateHousehold(ctx context.Context, username string) models.User {
	return f.CreateUser(ctx, username, models.RoleHousehold)
}

// CreateCollector creates a collector user.
func (f *Fixtures) CreateCollector(ctx context.Context, username string) models.User {
	return f.CreateUser(ctx, username, models.RoleCollector)
}

// CreateRecycler creates a recycler user.
func (f *Fixtures) CreateRecycler(ctx context.Context, username string) models.User {
	return f.CreateUser(ctx, username, models.RoleRecycler)
}

// CreateCollection creates a collection owned by ownerID with the given
// status. Pass a non-empty collectorID to create it already assigned.
func (f *Fixtures) CreateCollection(ctx context.Context, ownerID, wasteType, status, collectorID string) models.Collection {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Collection{
		ID:            uuid.NewString(),
		UserID:        ownerID,
		WasteType:     wasteType,
		Address:       "1 Test Street",
		ScheduledDate: now.Add(24 * time.Hour),
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if collectorID != "" {
		c.CollectorID = &collectorID
	}
	if err := f.st.CreateCollection(ctx, &c); err != nil {
		f.t.Fatalf("failed to create collection: %v", err)
	}
	return c
}

// CreateCompletedCollection creates a completed collection with amount kg
// collected by collectorID.
func (f *Fixtures) CreateCompletedCollection(ctx context.Context, ownerID, collectorID, wasteType string, amount float64) models.Collection {
	f.t.Helper()

	c := f.CreateCollection(ctx, ownerID, wasteType, models.StatusCompleted, collectorID)
	done := time.Now().UTC()
	updated, err := f.st.UpdateCollection(ctx, c.ID, models.CollectionUpdate{
		WasteAmount:   &amount,
		CompletedDate: &done,
	})
	if err != nil {
		f.t.Fatalf("failed to complete collection: %v", err)
	}
	return updated
}

// CreateInterest creates a material interest with the given status.
func (f *Fixtures) CreateInterest(ctx context.Context, collectionID, recyclerID, status string) models.MaterialInterest {
	f.t.Helper()

	now := time.Now().UTC()
	mi := models.MaterialInterest{
		ID:           uuid.NewString(),
		CollectionID: collectionID,
		RecyclerID:   recyclerID,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.st.CreateInterest(ctx, &mi); err != nil {
		f.t.Fatalf("failed to create interest: %v", err)
	}
	return mi
}
