// internal/app/system/authz/authz.go

// Package authz is the permission layer: a static role → permission table
// and the HTTP middleware that enforces it.
//
// Authorization rules:
//   - household, organization: create and manage their own collections
//   - collector: browse available collections, claim them, update status,
//     and decide on material interests for collections assigned to them
//   - recycler: browse completed material and express interest in it
//   - every role: impact, chat, eco tips, feedback
//
// Ownership: the signed-in user owns a resource when they are its UserID,
// or they are a collector and its assigned CollectorID.
package authz

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Permissions.
const (
	CreateCollection         = "create_collection"
	ViewOwnCollections       = "view_own_collections"
	UpdateOwnCollection      = "update_own_collection"
	ViewAvailableCollections = "view_available_collections"
	ClaimCollection          = "claim_collection"
	UpdateCollectionStatus   = "update_collection_status"
	ManageMaterialInterests  = "manage_material_interests"
	ViewCompletedCollections = "view_completed_collections"
	ExpressMaterialInterest  = "express_material_interest"
	ViewMaterialInterests    = "view_material_interests"
	ViewImpact               = "view_impact"
	Chat                     = "chat"
	ViewEcoTips              = "view_eco_tips"
	SubmitFeedback           = "submit_feedback"
)

var common = []string{ViewImpact, Chat, ViewEcoTips, SubmitFeedback}

var ownerPerms = append([]string{CreateCollection, ViewOwnCollections, UpdateOwnCollection}, common...)

var rolePermissions = map[string][]string{
	models.RoleHousehold:    ownerPerms,
	models.RoleOrganization: ownerPerms,
	models.RoleCollector: append([]string{
		ViewAvailableCollections, ClaimCollection, UpdateCollectionStatus, ManageMaterialInterests,
	}, common...),
	models.RoleRecycler: append([]string{
		ViewCompletedCollections, ExpressMaterialInterest, ViewMaterialInterests,
	}, common...),
}

// HasPermission reports whether role grants permission.
func HasPermission(role, permission string) bool {
	for _, p := range rolePermissions[strings.ToLower(role)] {
		if p == permission {
			return true
		}
	}
	return false
}

// Permissions lists what role grants.
func Permissions(role string) []string {
	src := rolePermissions[strings.ToLower(role)]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func unauthenticated(w http.ResponseWriter) {
	respond.Message(w, http.StatusUnauthorized, "Not authenticated")
}

func forbidden(w http.ResponseWriter) {
	respond.Message(w, http.StatusForbidden, "Forbidden")
}

// RequirePermission rejects users whose role lacks permission.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission passes users holding at least one of permissions.
func RequireAnyPermission(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.CurrentUser(r)
			if !ok {
				unauthenticated(w)
				return
			}
			for _, p := range permissions {
				if HasPermission(u.Role, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			forbidden(w)
		})
	}
}

// RequireRole passes users whose role is among roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.CurrentUser(r); !ok {
				unauthenticated(w)
				return
			}
			if !HasAnyRole(r, roles...) {
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Owned is the ownership-relevant part of a resource.
type Owned struct {
	UserID      string
	CollectorID *string
}

// OwnerFetcher loads the owner of the resource with the given id. It
// returns store.ErrNotFound when the resource does not exist.
type OwnerFetcher func(ctx context.Context, id string) (Owned, error)

// IsOwner applies the ownership rule.
func IsOwner(u *auth.SessionUser, o Owned) bool {
	if u == nil {
		return false
	}
	if o.UserID == u.ID {
		return true
	}
	return strings.EqualFold(u.Role, models.RoleCollector) &&
		o.CollectorID != nil && *o.CollectorID == u.ID
}

// RequireOwnership loads the resource named by the URL parameter param and
// rejects users who do not own it.
func RequireOwnership(fetch OwnerFetcher, param string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.CurrentUser(r)
			if !ok {
				unauthenticated(w)
				return
			}
			owned, err := fetch(r.Context(), chi.URLParam(r, param))
			switch {
			case errors.Is(err, store.ErrNotFound):
				respond.Message(w, http.StatusNotFound, "Resource not found")
				return
			case err != nil:
				log.Error("ownership check failed", zap.String("param", param), zap.Error(err))
				respond.Message(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !IsOwner(u, owned) {
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CollectionOwner adapts a collection lookup to an OwnerFetcher.
func CollectionOwner(get func(ctx context.Context, id string) (models.Collection, error)) OwnerFetcher {
	return func(ctx context.Context, id string) (Owned, error) {
		c, err := get(ctx, id)
		if err != nil {
			return Owned{}, err
		}
		return Owned{UserID: c.UserID, CollectorID: c.CollectorID}, nil
	}
}

// InterestOwner resolves a material interest to the collection it targets
// and applies the collection's ownership.
func InterestOwner(
	getInterest func(ctx context.Context, id string) (models.MaterialInterest, error),
	getCollection func(ctx context.Context, id string) (models.Collection, error),
) OwnerFetcher {
	byCollection := CollectionOwner(getCollection)
	return func(ctx context.Context, id string) (Owned, error) {
		mi, err := getInterest(ctx, id)
		if err != nil {
			return Owned{}, err
		}
		return byCollection(ctx, mi.CollectionID)
	}
}
