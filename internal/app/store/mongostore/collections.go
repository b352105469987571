// internal/app/store/mongostore/collections.go
package mongostore

import (
	"context"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (s *Store) CreateCollection(ctx context.Context, c *models.Collection) error {
	_, err := s.c(collCollections).InsertOne(s.use(ctx), c)
	return mapErr("insert collection", err)
}

func (s *Store) GetCollection(ctx context.Context, id string) (models.Collection, error) {
	var c models.Collection
	if err := s.c(collCollections).FindOne(s.use(ctx), byID(id)).Decode(&c); err != nil {
		return models.Collection{}, mapErr("find collection", err)
	}
	return c, nil
}

func collectionFilter(q store.CollectionQuery) bson.M {
	f := bson.M{}
	if q.UserID != "" {
		f["user_id"] = q.UserID
	}
	if q.CollectorID != "" {
		f["collector_id"] = q.CollectorID
	}
	if len(q.Statuses) > 0 {
		f["status"] = bson.M{"$in": q.Statuses}
	}
	if q.Claimed != nil {
		if *q.Claimed {
			f["collector_id"] = bson.M{"$nin": bson.A{nil, ""}}
		} else {
			f["collector_id"] = bson.M{"$in": bson.A{nil, ""}}
		}
		if q.CollectorID != "" {
			f["collector_id"] = q.CollectorID
		}
	}
	return f
}

func (s *Store) ListCollections(ctx context.Context, q store.CollectionQuery) ([]models.Collection, error) {
	out, err := findAll[models.Collection](s.use(ctx), s.c(collCollections), collectionFilter(q),
		options.Find().SetSort(newestFirst))
	return out, mapErr("list collections", err)
}

func (s *Store) UpdateCollection(ctx context.Context, id string, upd models.CollectionUpdate) (models.Collection, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
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

	var c models.Collection
	err := s.c(collCollections).FindOneAndUpdate(s.use(ctx), byID(id), bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&c)
	if err != nil {
		return models.Collection{}, mapErr("update collection", err)
	}
	return c, nil
}

// ClaimCollection is a compare-and-set on collector_id.
func (s *Store) ClaimCollection(ctx context.Context, id, collectorID string) (models.Collection, error) {
	ctx = s.use(ctx)
	filter := bson.M{
		"_id":          id,
		"collector_id": bson.M{"$in": bson.A{nil, ""}},
		"status":       bson.M{"$nin": bson.A{models.StatusCompleted, models.StatusCancelled}},
	}
	update := bson.M{"$set": bson.M{"collector_id": collectorID, "updated_at": time.Now().UTC()}}

	var c models.Collection
	err := s.c(collCollections).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&c)
	if err == nil {
		return c, nil
	}
	if mapped := mapErr("claim collection", err); mapped != store.ErrNotFound {
		return models.Collection{}, mapped
	}

	n, cerr := s.c(collCollections).CountDocuments(ctx, byID(id))
	if cerr != nil {
		return models.Collection{}, mapErr("claim collection", cerr)
	}
	if n == 0 {
		return models.Collection{}, store.ErrNotFound
	}
	return models.Collection{}, store.ErrConflict
}
