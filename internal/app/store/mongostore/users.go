// internal/app/store/mongostore/users.go
package mongostore

import (
	"context"
	"time"

	"github.com/dalemusser/pipapal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.c(collUsers).InsertOne(s.use(ctx), u)
	return mapErr("insert user", err)
}

func (s *Store) getUser(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	err := s.c(collUsers).FindOne(s.use(ctx), filter).Decode(&u)
	if err != nil {
		return models.User{}, mapErr("find user", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, byID(id))
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	out, err := findAll[models.User](s.use(ctx), s.c(collUsers), bson.M{"_id": bson.M{"$in": ids}})
	return out, mapErr("find users", err)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUser(ctx, bson.M{"username": username})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getUser(ctx, bson.M{"email": email})
}

func (s *Store) GetUserByGoogleUID(ctx context.Context, uid string) (models.User, error) {
	return s.getUser(ctx, bson.M{"google_uid": uid})
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FullName != nil {
		set["full_name"] = *upd.FullName
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.BusinessName != nil {
		set["business_name"] = *upd.BusinessName
	}
	if upd.BusinessType != nil {
		set["business_type"] = *upd.BusinessType
	}
	if upd.BusinessDescription != nil {
		set["business_description"] = *upd.BusinessDescription
	}
	if upd.GoogleUID != nil {
		set["google_uid"] = *upd.GoogleUID
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.OnboardingCompleted != nil {
		set["onboarding_completed"] = *upd.OnboardingCompleted
	}

	var u models.User
	err := s.c(collUsers).FindOneAndUpdate(s.use(ctx), byID(id), bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return models.User{}, mapErr("update user", err)
	}
	return u, nil
}

func (s *Store) AddPoints(ctx context.Context, id string, delta int) (int, error) {
	var out struct {
		Score int `bson:"sustainability_score"`
	}
	err := s.c(collUsers).FindOneAndUpdate(s.use(ctx), byID(id),
		bson.M{
			"$inc": bson.M{"sustainability_score": delta},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"sustainability_score": 1}),
	).Decode(&out)
	if err != nil {
		return 0, mapErr("add points", err)
	}
	return out.Score, nil
}

func (s *Store) ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	out, err := findAll[models.User](s.use(ctx), s.c(collUsers), bson.M{"role": role},
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	return out, mapErr("list users", err)
}
