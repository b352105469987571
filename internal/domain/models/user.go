// internal/domain/models/user.go
package models

import "time"

// User is any account holder: households and organizations that request
// pickups, collectors that carry them out, and recyclers that buy the
// recovered material.
type User struct {
	ID           string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Username     string `gorm:"uniqueIndex;size:50;not null" bson:"username" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255;not null" bson:"email" json:"email"`
	PasswordHash string `gorm:"not null" bson:"password_hash" json:"-"`
	Role         string `gorm:"index;size:20;not null" bson:"role" json:"role"`

	FullName string `bson:"full_name" json:"fullName"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address  string `bson:"address,omitempty" json:"address,omitempty"`

	// Business profile; only meaningful for organizations, collectors and recyclers.
	BusinessName        string `bson:"business_name,omitempty" json:"businessName,omitempty"`
	BusinessType        string `bson:"business_type,omitempty" json:"businessType,omitempty"`
	BusinessDescription string `bson:"business_description,omitempty" json:"businessDescription,omitempty"`

	GoogleUID *string `gorm:"uniqueIndex;size:128" bson:"google_uid,omitempty" json:"-"`

	SustainabilityScore int  `gorm:"not null;default:0" bson:"sustainability_score" json:"sustainabilityScore"`
	OnboardingCompleted bool `gorm:"not null;default:false" bson:"onboarding_completed" json:"onboardingCompleted"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// UserUpdate carries a partial profile change. Nil fields are left alone.
type UserUpdate struct {
	FullName            *string
	Email               *string
	Phone               *string
	Address             *string
	BusinessName        *string
	BusinessType        *string
	BusinessDescription *string
	GoogleUID           *string
	PasswordHash        *string
	OnboardingCompleted *bool
}

// DisplayName returns the full name when set, falling back to the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
