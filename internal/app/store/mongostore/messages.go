// internal/app/store/mongostore/messages.go
package mongostore

import (
	"context"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Material interests                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateInterest(ctx context.Context, mi *models.MaterialInterest) error {
	_, err := s.c(collInterests).InsertOne(s.use(ctx), mi)
	return mapErr("insert interest", err)
}

func (s *Store) GetInterest(ctx context.Context, id string) (models.MaterialInterest, error) {
	var mi models.MaterialInterest
	if err := s.c(collInterests).FindOne(s.use(ctx), byID(id)).Decode(&mi); err != nil {
		return models.MaterialInterest{}, mapErr("find interest", err)
	}
	return mi, nil
}

func (s *Store) ListInterests(ctx context.Context, q store.InterestQuery) ([]models.MaterialInterest, error) {
	if q.CollectionIDs != nil && len(q.CollectionIDs) == 0 {
		return []models.MaterialInterest{}, nil
	}
	f := bson.M{}
	if q.CollectionIDs != nil {
		f["collection_id"] = bson.M{"$in": q.CollectionIDs}
	}
	if q.RecyclerID != "" {
		f["recycler_id"] = q.RecyclerID
	}
	if len(q.Statuses) > 0 {
		f["status"] = bson.M{"$in": q.Statuses}
	}
	out, err := findAll[models.MaterialInterest](s.use(ctx), s.c(collInterests), f, options.Find().SetSort(newestFirst))
	return out, mapErr("list interests", err)
}

func (s *Store) UpdateInterestStatus(ctx context.Context, id, status string) (models.MaterialInterest, error) {
	var mi models.MaterialInterest
	err := s.c(collInterests).FindOneAndUpdate(s.use(ctx), byID(id),
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mi)
	if err != nil {
		return models.MaterialInterest{}, mapErr("update interest", err)
	}
	return mi, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Chat                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	_, err := s.c(collMessages).InsertOne(s.use(ctx), m)
	return mapErr("insert message", err)
}

func (s *Store) ListConversation(ctx context.Context, a, b string) ([]models.ChatMessage, error) {
	f := bson.M{"$or": bson.A{
		bson.M{"sender_id": a, "receiver_id": b},
		bson.M{"sender_id": b, "receiver_id": a},
	}}
	out, err := findAll[models.ChatMessage](s.use(ctx), s.c(collMessages), f,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	return out, mapErr("list conversation", err)
}

func (s *Store) ListMessagesForUser(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	f := bson.M{"$or": bson.A{bson.M{"sender_id": userID}, bson.M{"receiver_id": userID}}}
	out, err := findAll[models.ChatMessage](s.use(ctx), s.c(collMessages), f, options.Find().SetSort(newestFirst))
	return out, mapErr("list messages", err)
}

func (s *Store) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	res, err := s.c(collMessages).UpdateMany(s.use(ctx),
		bson.M{"receiver_id": receiverID, "sender_id": senderID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, mapErr("mark read", err)
	}
	return res.ModifiedCount, nil
}

func (s *Store) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	n, err := s.c(collMessages).CountDocuments(s.use(ctx), bson.M{"receiver_id": receiverID, "read": false})
	return n, mapErr("count unread", err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Feedback and recycling centers                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	_, err := s.c(collFeedback).InsertOne(s.use(ctx), f)
	return mapErr("insert feedback", err)
}

func (s *Store) ListFeedback(ctx context.Context, userID string) ([]models.Feedback, error) {
	out, err := findAll[models.Feedback](s.use(ctx), s.c(collFeedback), bson.M{"user_id": userID},
		options.Find().SetSort(newestFirst))
	return out, mapErr("list feedback", err)
}

func (s *Store) CreateRecyclingCenter(ctx context.Context, c *models.RecyclingCenter) error {
	_, err := s.c(collCenters).InsertOne(s.use(ctx), c)
	return mapErr("insert recycling center", err)
}

func (s *Store) ListRecyclingCenters(ctx context.Context) ([]models.RecyclingCenter, error) {
	out, err := findAll[models.RecyclingCenter](s.use(ctx), s.c(collCenters), bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	return out, mapErr("list recycling centers", err)
}
