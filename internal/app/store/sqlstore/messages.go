// internal/app/store/sqlstore/messages.go
package sqlstore

import (
	"context"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"gorm.io/gorm"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Material interests                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateInterest(ctx context.Context, mi *models.MaterialInterest) error {
	return mapErr("insert interest", s.q(ctx).Create(mi).Error)
}

func (s *Store) GetInterest(ctx context.Context, id string) (models.MaterialInterest, error) {
	var mi models.MaterialInterest
	if err := s.q(ctx).Where("id = ?", id).First(&mi).Error; err != nil {
		return models.MaterialInterest{}, mapErr("find interest", err)
	}
	return mi, nil
}

func (s *Store) ListInterests(ctx context.Context, q store.InterestQuery) ([]models.MaterialInterest, error) {
	out := []models.MaterialInterest{}
	if q.CollectionIDs != nil && len(q.CollectionIDs) == 0 {
		return out, nil
	}
	db := s.q(ctx)
	if q.CollectionIDs != nil {
		db = db.Where("collection_id IN ?", q.CollectionIDs)
	}
	if q.RecyclerID != "" {
		db = db.Where("recycler_id = ?", q.RecyclerID)
	}
	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}
	return out, mapErr("list interests", db.Order(newestFirst).Find(&out).Error)
}

func (s *Store) UpdateInterestStatus(ctx context.Context, id, status string) (models.MaterialInterest, error) {
	res := s.q(ctx).Model(&models.MaterialInterest{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return models.MaterialInterest{}, mapErr("update interest", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.MaterialInterest{}, mapErr("update interest", gorm.ErrRecordNotFound)
	}
	return s.GetInterest(ctx, id)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Chat                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	return mapErr("insert message", s.q(ctx).Create(m).Error)
}

func (s *Store) ListConversation(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	out := []models.ChatMessage{}
	err := s.q(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at, id").
		Find(&out).Error
	return out, mapErr("list conversation", err)
}

func (s *Store) ListMessagesForUser(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	out := []models.ChatMessage{}
	err := s.q(ctx).Where("sender_id = ? OR receiver_id = ?", userID, userID).Order(newestFirst).Find(&out).Error
	return out, mapErr("list messages", err)
}

func (s *Store) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	res := s.q(ctx).Model(&models.ChatMessage{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", receiverID, senderID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, mapErr("mark read", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var n int64
	err := s.q(ctx).Model(&models.ChatMessage{}).Where("receiver_id = ? AND read = ?", receiverID, false).Count(&n).Error
	return n, mapErr("count unread", err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Feedback and recycling centers                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	return mapErr("insert feedback", s.q(ctx).Create(f).Error)
}

func (s *Store) ListFeedback(ctx context.Context, userID string) ([]models.Feedback, error) {
	out := []models.Feedback{}
	err := s.q(ctx).Where("user_id = ?", userID).Order(newestFirst).Find(&out).Error
	return out, mapErr("list feedback", err)
}

func (s *Store) CreateRecyclingCenter(ctx context.Context, c *models.RecyclingCenter) error {
	return mapErr("insert recycling center", s.q(ctx).Create(c).Error)
}

func (s *Store) ListRecyclingCenters(ctx context.Context) ([]models.RecyclingCenter, error) {
	out := []models.RecyclingCenter{}
	err := s.q(ctx).Order("name").Find(&out).Error
	return out, mapErr("list recycling centers", err)
}
