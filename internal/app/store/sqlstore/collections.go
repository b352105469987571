// internal/app/store/sqlstore/collections.go
package sqlstore

import (
	"context"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"gorm.io/gorm"
)

const newestFirst = "created_at DESC, id DESC"

var terminalStatuses = []string{models.StatusCompleted, models.StatusCancelled}

func (s *Store) CreateCollection(ctx context.Context, c *models.Collection) error {
	return mapErr("insert collection", s.q(ctx).Create(c).Error)
}

func (s *Store) GetCollection(ctx context.Context, id string) (models.Collection, error) {
	var c models.Collection
	if err := s.q(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return models.Collection{}, mapErr("find collection", err)
	}
	return c, nil
}

func collectionScope(q store.CollectionQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.UserID != "" {
			db = db.Where("user_id = ?", q.UserID)
		}
		if q.CollectorID != "" {
			db = db.Where("collector_id = ?", q.CollectorID)
		}
		if len(q.Statuses) > 0 {
			db = db.Where("status IN ?", q.Statuses)
		}
		if q.Claimed != nil {
			if *q.Claimed {
				db = db.Where("collector_id IS NOT NULL AND collector_id <> ''")
			} else {
				db = db.Where("(collector_id IS NULL OR collector_id = '')")
			}
		}
		return db
	}
}

func (s *Store) ListCollections(ctx context.Context, q store.CollectionQuery) ([]models.Collection, error) {
	out := []models.Collection{}
	err := s.q(ctx).Scopes(collectionScope(q)).Order(newestFirst).Find(&out).Error
	return out, mapErr("list collections", err)
}

func (s *Store) UpdateCollection(ctx context.Context, id string, upd models.CollectionUpdate) (models.Collection, error) {
	set := map[string]any{"updated_at": time.Now().UTC()}
	if upd.CollectorID != nil {
		set["collector_id"] = *upd.CollectorID
	}
	if upd.WasteType != nil {
		set["waste_type"] = *upd.WasteType
	}
	if upd.EstimatedAmount != nil {
		set["estimated_amount"] = *upd.EstimatedAmount
	}
	if upd.WasteAmount != nil {
		set["waste_amount"] = *upd.WasteAmount
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Latitude != nil {
		set["latitude"] = *upd.Latitude
	}
	if upd.Longitude != nil {
		set["longitude"] = *upd.Longitude
	}
	if upd.ScheduledDate != nil {
		set["scheduled_date"] = *upd.ScheduledDate
	}
	if upd.CompletedDate != nil {
		set["completed_date"] = *upd.CompletedDate
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Notes != nil {
		set["notes"] = *upd.Notes
	}

	res := s.q(ctx).Model(&models.Collection{}).Where("id = ?", id).Updates(set)
	if res.Error != nil {
		return models.Collection{}, mapErr("update collection", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Collection{}, store.ErrNotFound
	}
	return s.GetCollection(ctx, id)
}

// ClaimCollection is a conditional UPDATE; zero affected rows means the
// row is missing or another collector got there first.
func (s *Store) ClaimCollection(ctx context.Context, id, collectorID string) (models.Collection, error) {
	res := s.q(ctx).Model(&models.Collection{}).
		Where("id = ? AND (collector_id IS NULL OR collector_id = '') AND status NOT IN ?", id, terminalStatuses).
		Updates(map[string]any{"collector_id": collectorID, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return models.Collection{}, mapErr("claim collection", res.Error)
	}
	if res.RowsAffected == 1 {
		return s.GetCollection(ctx, id)
	}

	var n int64
	if err := s.q(ctx).Model(&models.Collection{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return models.Collection{}, mapErr("claim collection", err)
	}
	if n == 0 {
		return models.Collection{}, store.ErrNotFound
	}
	return models.Collection{}, store.ErrConflict
}
