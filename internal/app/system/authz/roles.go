// internal/app/system/authz/roles.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/pipapal/internal/app/system/auth"
)

// UserCtx returns the user's lowercased role, name and id. Without a
// signed-in user it returns "visitor", "", "", false.
func UserCtx(r *http.Request) (role, name, userID string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.ID == "" {
		return "visitor", "", "", false
	}
	return strings.ToLower(u.Role), u.Name, u.ID, true
}

// HasAnyRole reports whether the current user has any of roles.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// HasRole is HasAnyRole for a single role.
func HasRole(r *http.Request, role string) bool {
	return HasAnyRole(r, role)
}

// Can reports whether the current user's role grants permission.
func Can(r *http.Request, permission string) bool {
	role, _, _, ok := UserCtx(r)
	return ok && HasPermission(role, permission)
}
