// internal/app/features/shared/views/views.go

// Package views holds the JSON shapes more than one feature returns.
package views

import (
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/authz"
	"github.com/dalemusser/pipapal/internal/domain/models"
)

// User is the public account shape returned by register, login, profile
// and current-user endpoints.
type User struct {
	models.User
	Permissions []string `json:"permissions"`
}

// NewUser wraps u with its role's permissions.
func NewUser(u models.User) User {
	perms := authz.Permissions(u.Role)
	if perms == nil {
		perms = []string{}
	}
	return User{User: u, Permissions: perms}
}

// SessionUser is the principal stored in the session cookie for u.
func SessionUser(u models.User) *auth.SessionUser {
	return &auth.SessionUser{ID: u.ID, Name: u.DisplayName(), Email: u.Email, Role: u.Role}
}
