// internal/app/services/accounts/accounts.go

// Package accounts registers users, checks credentials, links Google
// identities and edits profiles.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/pipapal/internal/app/services/ledger"
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/passwords"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is the only failure Login reports to callers.
var ErrInvalidCredentials = respond.Unauthorized("Invalid credentials")

// Service manages accounts.
type Service struct {
	st  store.Store
	log *zap.Logger
	now func() time.Time
}

// New returns a Service.
func New(st store.Store, logger *zap.Logger) *Service {
	return &Service{st: st, log: logger, now: func() time.Time { return time.Now().UTC() }}
}

// RegisterInput is a sign-up form.
type RegisterInput struct {
	Username     string `json:"username" validate:"required,min=3,max=50" label:"Username"`
	Email        string `json:"email" validate:"required,email" label:"Email"`
	Password     string `json:"password" validate:"required,min=6,max=200" label:"Password"`
	Role         string `json:"role" validate:"required,role" label:"Role"`
	FullName     string `json:"fullName" validate:"max=100" label:"Full name"`
	Phone        string `json:"phone" validate:"max=30" label:"Phone"`
	Address      string `json:"address" validate:"max=500" label:"Address"`
	BusinessName string `json:"businessName" validate:"max=100" label:"Business name"`
	BusinessType string `json:"businessType" validate:"max=50" label:"Business type"`
}

// LoginInput accepts a username or an email address.
type LoginInput struct {
	Username string `json:"username" validate:"required" label:"Username"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// GoogleInput is the identity asserted by Google sign-in.
type GoogleInput struct {
	UID         string `json:"uid" validate:"required" label:"Google id"`
	Email       string `json:"email" validate:"required,email" label:"Email"`
	DisplayName string `json:"displayName" validate:"max=100" label:"Display name"`
	Role        string `json:"role" validate:"omitempty,role" label:"Role"`

	// EmailVerified is set from Google's userinfo, never from a client.
	// Linking to an existing account requires it.
	EmailVerified bool `json:"-"`
}

// ProfileInput changes personal details. Nil fields are left alone.
type ProfileInput struct {
	FullName *string `json:"fullName" validate:"omitempty,max=100" label:"Full name"`
	Email    *string `json:"email" validate:"omitempty,email" label:"Email"`
	Phone    *string `json:"phone" validate:"omitempty,max=30" label:"Phone"`
	Address  *string `json:"address" validate:"omitempty,max=500" label:"Address"`
}

// PasswordInput changes the password of a signed-in user.
type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required" label:"Current password"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=200" label:"New password"`
}

// BusinessInput changes the business profile.
type BusinessInput struct {
	BusinessName        *string `json:"businessName" validate:"omitempty,max=100" label:"Business name"`
	BusinessType        *string `json:"businessType" validate:"omitempty,max=50" label:"Business type"`
	BusinessDescription *string `json:"businessDescription" validate:"omitempty,max=1000" label:"Business description"`
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

/*─────────────────────────────────────────────────────────────────────────────*
| Register / login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// Register creates an account with its starting impact row, welcome badge
// and activity entry.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := normEmail(in.Email)
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !models.IsValidRole(role) {
		return models.User{}, respond.BadRequest("Invalid role")
	}

	if _, err := s.st.GetUserByUsername(ctx, username); err == nil {
		return models.User{}, respond.BadRequest("Username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}
	if _, err := s.st.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, respond.BadRequest("Email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := passwords.Hash(in.Password)
	if err != nil {
		return models.User{}, err
	}
	now := s.now()
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if models.HasBusinessProfile(role) {
		u.BusinessName = strings.TrimSpace(in.BusinessName)
		u.BusinessType = strings.TrimSpace(in.BusinessType)
	}

	if err := s.create(ctx, &u); err != nil {
		return models.User{}, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", role))
	return u, nil
}

func (s *Service) create(ctx context.Context, u *models.User) error {
	err := s.st.RunInTx(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		return ledger.Welcome(ctx, tx, *u)
	})
	if errors.Is(err, store.ErrDuplicate) {
		return respond.BadRequest("Username or email already exists")
	}
	return err
}

// Login checks a username (or email) and password.
func (s *Service) Login(ctx context.Context, in LoginInput) (models.User, error) {
	ident := strings.TrimSpace(in.Username)
	u, err := s.st.GetUserByUsername(ctx, ident)
	if errors.Is(err, store.ErrNotFound) && strings.Contains(ident, "@") {
		u, err = s.st.GetUserByEmail(ctx, normEmail(ident))
	}
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	ok, err := passwords.Verify(in.Password, u.PasswordHash)
	if err != nil {
		s.log.Warn("stored password hash unreadable", zap.String("user_id", u.ID), zap.Error(err))
		return models.User{}, ErrInvalidCredentials
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Google                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

var usernameChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

func baseUsername(in GoogleInput) string {
	local, _, _ := strings.Cut(normEmail(in.Email), "@")
	base := usernameChars.ReplaceAllString(local, "")
	if len(base) < 3 {
		base = usernameChars.ReplaceAllString(strings.ToLower(strings.ReplaceAll(in.DisplayName, " ", ".")), "")
	}
	if len(base) < 3 {
		base = "user"
	}
	if len(base) > 40 {
		base = base[:40]
	}
	return base
}

// GoogleUpsert finds the account for a Google identity, linking it to an
// existing account with the same email, or creates one. created reports
// whether a new account was made. A new identity is linked to an existing
// account only when Google has verified the email; otherwise the email is
// reported as taken.
func (s *Service) GoogleUpsert(ctx context.Context, in GoogleInput) (u models.User, created bool, err error) {
	uid := strings.TrimSpace(in.UID)
	email := normEmail(in.Email)
	if uid == "" || email == "" {
		return models.User{}, false, respond.BadRequest("Google id and email are required")
	}

	u, err = s.st.GetUserByGoogleUID(ctx, uid)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, false, err
	}

	u, err = s.st.GetUserByEmail(ctx, email)
	if err == nil {
		if !in.EmailVerified {
			s.log.Warn("google link refused, email not verified", zap.String("user_id", u.ID))
			return models.User{}, false, respond.Conflict("An account with this email already exists")
		}
		if u.GoogleUID != nil && *u.GoogleUID != uid {
			return models.User{}, false, respond.Conflict("This account is linked to another Google identity")
		}
		linked, err := s.st.UpdateUser(ctx, u.ID, models.UserUpdate{GoogleUID: &uid})
		if err != nil {
			return models.User{}, false, err
		}
		s.log.Info("google identity linked", zap.String("user_id", u.ID))
		return linked, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, false, err
	}

	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleHousehold
	}
	if !models.IsValidRole(role) {
		return models.User{}, false, respond.BadRequest("Invalid role")
	}
	hash, err := passwords.Random()
	if err != nil {
		return models.User{}, false, err
	}

	username, err := s.freeUsername(ctx, baseUsername(in))
	if err != nil {
		return models.User{}, false, err
	}
	now := s.now()
	u = models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FullName:     strings.TrimSpace(in.DisplayName),
		GoogleUID:    &uid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.create(ctx, &u); err != nil {
		return models.User{}, false, err
	}
	s.log.Info("user registered via google", zap.String("user_id", u.ID), zap.String("role", role))
	return u, true, nil
}

func (s *Service) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 0; i < 5; i++ {
		_, err := s.st.GetUserByUsername(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%s", base, strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	}
	return "", respond.Conflict("Could not choose a username, please register manually")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Profile                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// Get returns the user with id.
func (s *Service) Get(ctx context.Context, id string) (models.User, error) {
	return s.st.GetUser(ctx, id)
}

// UpdateProfile changes personal details.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (models.User, error) {
	upd := models.UserUpdate{
		FullName: trimPtr(in.FullName),
		Phone:    trimPtr(in.Phone),
		Address:  trimPtr(in.Address),
	}
	if in.Email != nil {
		email := normEmail(*in.Email)
		existing, err := s.st.GetUserByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != userID:
			return models.User{}, respond.BadRequest("Email already in use")
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return models.User{}, err
		}
		upd.Email = &email
	}
	u, err := s.st.UpdateUser(ctx, userID, upd)
	if errors.Is(err, store.ErrDuplicate) {
		return models.User{}, respond.BadRequest("Email already in use")
	}
	return u, err
}

// CompleteOnboarding marks onboarding done and awards its badge once.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string) (models.User, bool, error) {
	var (
		u       models.User
		awarded bool
	)
	done := true
	err := s.st.RunInTx(ctx, func(tx store.Store) error {
		var err error
		if u, err = tx.UpdateUser(ctx, userID, models.UserUpdate{OnboardingCompleted: &done}); err != nil {
			return err
		}
		if awarded, err = ledger.Badge(ctx, tx, userID, models.BadgeOnboardingComplete); err != nil {
			return err
		}
		if !awarded {
			return nil
		}
		return ledger.Activity(ctx, tx, userID, models.ActivityOnboarding, "Completed onboarding", 0)
	})
	return u, awarded, err
}

// UpdateBusiness changes the business profile of roles that carry one.
func (s *Service) UpdateBusiness(ctx context.Context, userID, role string, in BusinessInput) (models.User, error) {
	if !models.HasBusinessProfile(strings.ToLower(role)) {
		return models.User{}, respond.Forbidden("Business profiles are only available to organizations, collectors and recyclers")
	}
	return s.st.UpdateUser(ctx, userID, models.UserUpdate{
		BusinessName:        trimPtr(in.BusinessName),
		BusinessType:        trimPtr(in.BusinessType),
		BusinessDescription: trimPtr(in.BusinessDescription),
	})
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID string, in PasswordInput) error {
	u, err := s.st.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if ok, _ := passwords.Verify(in.CurrentPassword, u.PasswordHash); !ok {
		return respond.BadRequest("Current password is incorrect")
	}
	hash, err := passwords.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.st.UpdateUser(ctx, userID, models.UserUpdate{PasswordHash: &hash}); err != nil {
		return err
	}
	s.log.Info("password changed", zap.String("user_id", userID))
	return nil
}
