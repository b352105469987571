package sqlstore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/store/sqlstore"
	"github.com/dalemusser/pipapal/internal/app/store/storetest"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newSQLite(t *testing.T) *sqlstore.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	s, err := sqlstore.Open(sqlstore.BackendSQLite, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newSQLite(t) }, storetest.Options{Rollback: true})
}

func TestOpen_RejectsUnknownBackend(t *testing.T) {
	if _, err := sqlstore.Open("oracle", "whatever", zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newSQLite(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestClaimCollection_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	col := &models.Collection{
		ID:        uuid.NewString(),
		UserID:    uuid.NewString(),
		WasteType: models.WasteGeneral,
		Address:   "4 Market St",
		Status:    models.StatusScheduled,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateCollection(ctx, col); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ClaimCollection(ctx, col.ID, uuid.NewString())
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
				return
			}
			if !errors.Is(err, store.ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly one successful claim, got %d", winners)
	}
}

func TestAwardBadge_RepeatInsideTxKeepsTxUsable(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	user := uuid.NewString()

	err := s.RunInTx(ctx, func(tx store.Store) error {
		for i := 0; i < 2; i++ {
			if _, err := tx.AwardBadge(ctx, &models.Badge{
				ID: uuid.NewString(), UserID: user, BadgeType: models.BadgeWelcome, AwardedAt: time.Now().UTC(),
			}); err != nil {
				return err
			}
		}
		return tx.CreateActivity(ctx, &models.Activity{
			ID: uuid.NewString(), UserID: user, Type: models.ActivityRegistration, CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("RunInTx: %v", err)
	}

	badges, _ := s.ListBadges(ctx, user)
	if len(badges) != 1 {
		t.Errorf("badges: got %d, want 1", len(badges))
	}
	acts, _ := s.ListActivities(ctx, user, 0)
	if len(acts) != 1 {
		t.Errorf("activities: got %d, want 1", len(acts))
	}
}
