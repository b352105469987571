// internal/app/store/sqlstore/users.go
package sqlstore

import (
	"context"
	"time"

	"github.com/dalemusser/pipapal/internal/domain/models"
	"gorm.io/gorm"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return mapErr("insert user", s.q(ctx).Create(u).Error)
}

func (s *Store) firstUser(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	if err := s.q(ctx).Where(query, arg).First(&u).Error; err != nil {
		return models.User{}, mapErr("find user", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]models.User, error) {
	out := []models.User{}
	if len(ids) == 0 {
		return out, nil
	}
	err := s.q(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, mapErr("find users", err)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.firstUser(ctx, "username = ?", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.firstUser(ctx, "email = ?", email)
}

func (s *Store) GetUserByGoogleUID(ctx context.Context, uid string) (models.User, error) {
	return s.firstUser(ctx, "google_uid = ?", uid)
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	set := map[string]any{"updated_at": time.Now().UTC()}
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

	res := s.q(ctx).Model(&models.User{}).Where("id = ?", id).Updates(set)
	if res.Error != nil {
		return models.User{}, mapErr("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.User{}, mapErr("update user", gorm.ErrRecordNotFound)
	}
	return s.GetUser(ctx, id)
}

func (s *Store) AddPoints(ctx context.Context, id string, delta int) (int, error) {
	res := s.q(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"sustainability_score": gorm.Expr("sustainability_score + ?", delta),
		"updated_at":           time.Now().UTC(),
	})
	if res.Error != nil {
		return 0, mapErr("add points", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, mapErr("add points", gorm.ErrRecordNotFound)
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return 0, err
	}
	return u.SustainabilityScore, nil
}

func (s *Store) ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	out := []models.User{}
	err := s.q(ctx).Where("role = ?", role).Order("username").Find(&out).Error
	return out, mapErr("list users", err)
}
