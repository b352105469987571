// internal/domain/models/roles.go
package models

import "strings"

// Canonical role identifiers stored in User.Role.
const (
	RoleHousehold    = "household"
	RoleOrganization = "organization"
	RoleCollector    = "collector"
	RoleRecycler     = "recycler"
)

// Roles is the full set of roles a user may register with.
var Roles = []string{
	RoleHousehold,
	RoleOrganization,
	RoleCollector,
	RoleRecycler,
}

// IsValidRole reports whether role (case-insensitive, trimmed) is a known role.
func IsValidRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsOwnerRole reports whether role is one that requests pickups.
func IsOwnerRole(role string) bool {
	return role == RoleHousehold || role == RoleOrganization
}

// HasBusinessProfile reports whether role carries business profile fields.
func HasBusinessProfile(role string) bool {
	return role == RoleOrganization || role == RoleCollector || role == RoleRecycler
}
