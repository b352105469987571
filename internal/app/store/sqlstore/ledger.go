// internal/app/store/sqlstore/ledger.go
package sqlstore

import (
	"context"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateImpact(ctx context.Context, im *models.Impact) error {
	return mapErr("insert impact", s.q(ctx).Create(im).Error)
}

func (s *Store) ListImpacts(ctx context.Context, q store.ImpactQuery) ([]models.Impact, error) {
	out := []models.Impact{}
	if q.CollectionIDs != nil && len(q.CollectionIDs) == 0 {
		return out, nil
	}
	db := s.q(ctx)
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.CollectionIDs != nil {
		db = db.Where("collection_id IN ?", q.CollectionIDs)
	}
	err := db.Order("created_at, id").Find(&out).Error
	return out, mapErr("list impacts", err)
}

func (s *Store) CreateActivity(ctx context.Context, a *models.Activity) error {
	return mapErr("insert activity", s.q(ctx).Create(a).Error)
}

func (s *Store) ListActivities(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	out := []models.Activity{}
	db := s.q(ctx).Where("user_id = ?", userID).Order(newestFirst)
	if limit > 0 {
		db = db.Limit(limit)
	}
	return out, mapErr("list activities", db.Find(&out).Error)
}

// AwardBadge uses ON CONFLICT DO NOTHING so a repeat award does not abort
// an enclosing transaction.
func (s *Store) AwardBadge(ctx context.Context, b *models.Badge) (bool, error) {
	res := s.q(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(b)
	if res.Error != nil {
		return false, mapErr("insert badge", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) ListBadges(ctx context.Context, userID string) ([]models.Badge, error) {
	out := []models.Badge{}
	err := s.q(ctx).Where("user_id = ?", userID).Order("awarded_at, id").Find(&out).Error
	return out, mapErr("list badges", err)
}

func (s *Store) CreateEcoTip(ctx context.Context, t *models.EcoTip) error {
	return mapErr("insert eco tip", s.q(ctx).Create(t).Error)
}

func (s *Store) ListEcoTips(ctx context.Context, wasteType string, limit int) ([]models.EcoTip, error) {
	out := []models.EcoTip{}
	db := s.q(ctx)
	if wasteType != "" {
		db = db.Where("waste_type = ? OR waste_type = '' OR waste_type IS NULL", wasteType)
	}
	db = db.Order("created_at, id")
	if limit > 0 {
		db = db.Limit(limit)
	}
	return out, mapErr("list eco tips", db.Find(&out).Error)
}
