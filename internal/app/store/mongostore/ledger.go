// internal/app/store/mongostore/ledger.go
package mongostore

import (
	"context"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateImpact(ctx context.Context, im *models.Impact) error {
	_, err := s.c(collImpacts).InsertOne(s.use(ctx), im)
	return mapErr("insert impact", err)
}

func (s *Store) ListImpacts(ctx context.Context, q store.ImpactQuery) ([]models.Impact, error) {
	if q.CollectionIDs != nil && len(q.CollectionIDs) == 0 {
		return []models.Impact{}, nil
	}
	f := bson.M{}
	if q.UserID != "" {
		f["user_id"] = q.UserID
	}
	if q.CollectionIDs != nil {
		f["collection_id"] = bson.M{"$in": q.CollectionIDs}
	}
	out, err := findAll[models.Impact](s.use(ctx), s.c(collImpacts), f,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	return out, mapErr("list impacts", err)
}

func (s *Store) CreateActivity(ctx context.Context, a *models.Activity) error {
	_, err := s.c(collActivities).InsertOne(s.use(ctx), a)
	return mapErr("insert activity", err)
}

func (s *Store) ListActivities(ctx context.Context, userID string, limit int) ([]models.Activity, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	out, err := findAll[models.Activity](s.use(ctx), s.c(collActivities), bson.M{"user_id": userID}, opts)
	return out, mapErr("list activities", err)
}

// AwardBadge relies on the unique (user_id, badge_type) index.
func (s *Store) AwardBadge(ctx context.Context, b *models.Badge) (bool, error) {
	_, err := s.c(collBadges).InsertOne(s.use(ctx), b)
	switch mapErr("insert badge", err) {
	case nil:
		return true, nil
	case store.ErrDuplicate:
		return false, nil
	default:
		return false, mapErr("insert badge", err)
	}
}

func (s *Store) ListBadges(ctx context.Context, userID string) ([]models.Badge, error) {
	out, err := findAll[models.Badge](s.use(ctx), s.c(collBadges), bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "awarded_at", Value: 1}}))
	return out, mapErr("list badges", err)
}

func (s *Store) CreateEcoTip(ctx context.Context, t *models.EcoTip) error {
	_, err := s.c(collEcoTips).InsertOne(s.use(ctx), t)
	return mapErr("insert eco tip", err)
}

func (s *Store) ListEcoTips(ctx context.Context, wasteType string, limit int) ([]models.EcoTip, error) {
	f := bson.M{}
	if wasteType != "" {
		f["$or"] = bson.A{
			bson.M{"waste_type": wasteType},
			bson.M{"waste_type": bson.M{"$exists": false}},
			bson.M{"waste_type": ""},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	out, err := findAll[models.EcoTip](s.use(ctx), s.c(collEcoTips), f, opts)
	return out, mapErr("list eco tips", err)
}
