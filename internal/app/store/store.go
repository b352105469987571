// internal/app/store/store.go

// Package store defines the persistence contract shared by the memory,
// MongoDB and SQL backends.
//
// Every backend returns the sentinel errors below so callers can map
// failures without knowing which backend is active.
package store

import (
	"context"
	"errors"

	"github.com/dalemusser/pipapal/internal/domain/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key (username, email, google uid) is taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict is returned when a conditional write loses, e.g. a claim on
	// a collection another collector already holds.
	ErrConflict = errors.New("conflict")
)

// CollectionQuery filters collections. All set fields must match (AND).
// A nil Claimed matches both claimed and unclaimed rows.
type CollectionQuery struct {
	UserID      string
	CollectorID string
	Statuses    []string
	Claimed     *bool
}

// ImpactQuery selects impact rows by owner or by collection. A non-nil but
// empty CollectionIDs matches nothing.
type ImpactQuery struct {
	UserID        string
	CollectionIDs []string
}

// InterestQuery filters material interests. All set fields must match.
// A non-nil but empty CollectionIDs matches nothing.
type InterestQuery struct {
	CollectionIDs []string
	RecyclerID    string
	Statuses      []string
}

// Users persists accounts.
type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUsers(ctx context.Context, ids []string) ([]models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByGoogleUID(ctx context.Context, uid string) (models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error)
	// AddPoints atomically adds delta to the user's sustainability score and
	// returns the new total.
	AddPoints(ctx context.Context, id string, delta int) (int, error)
	ListUsersByRole(ctx context.Context, role string) ([]models.User, error)
}

// Collections persists pickup requests.
type Collections interface {
	CreateCollection(ctx context.Context, c *models.Collection) error
	GetCollection(ctx context.Context, id string) (models.Collection, error)
	// ListCollections returns matching rows, newest first.
	ListCollections(ctx context.Context, q CollectionQuery) ([]models.Collection, error)
	UpdateCollection(ctx context.Context, id string, upd models.CollectionUpdate) (models.Collection, error)
	// ClaimCollection assigns collectorID only if no collector is assigned and
	// the collection is not completed or cancelled. It returns ErrConflict
	// when the condition fails on an existing row.
	ClaimCollection(ctx context.Context, id, collectorID string) (models.Collection, error)
}

// Impacts is the append-only impact ledger.
type Impacts interface {
	CreateImpact(ctx context.Context, im *models.Impact) error
	ListImpacts(ctx context.Context, q ImpactQuery) ([]models.Impact, error)
}

// Activities is the append-only activity feed.
type Activities interface {
	CreateActivity(ctx context.Context, a *models.Activity) error
	// ListActivities returns the user's newest entries first; limit <= 0 means all.
	ListActivities(ctx context.Context, userID string, limit int) ([]models.Activity, error)
}

// Badges stores award-once badges.
type Badges interface {
	// AwardBadge inserts the badge unless the user already holds that type.
	// awarded is false when it was already held.
	AwardBadge(ctx context.Context, b *models.Badge) (awarded bool, err error)
	ListBadges(ctx context.Context, userID string) ([]models.Badge, error)
}

// EcoTips stores tip content.
type EcoTips interface {
	CreateEcoTip(ctx context.Context, t *models.EcoTip) error
	// ListEcoTips returns tips for wasteType plus general tips (no waste
	// type); an empty wasteType returns all. limit <= 0 means all.
	ListEcoTips(ctx context.Context, wasteType string, limit int) ([]models.EcoTip, error)
}

// MaterialInterests stores recycler interest in collections.
type MaterialInterests interface {
	CreateInterest(ctx context.Context, mi *models.MaterialInterest) error
	GetInterest(ctx context.Context, id string) (models.MaterialInterest, error)
	ListInterests(ctx context.Context, q InterestQuery) ([]models.MaterialInterest, error)
	UpdateInterestStatus(ctx context.Context, id, status string) (models.MaterialInterest, error)
}

// Messages stores chat messages.
type Messages interface {
	CreateMessage(ctx context.Context, m *models.ChatMessage) error
	// ListConversation returns messages between a and b, oldest first.
	ListConversation(ctx context.Context, a, b string) ([]models.ChatMessage, error)
	// ListMessagesForUser returns every message sent or received by userID, newest first.
	ListMessagesForUser(ctx context.Context, userID string) ([]models.ChatMessage, error)
	// MarkRead flips read on messages from senderID to receiverID and returns how many changed.
	MarkRead(ctx context.Context, receiverID, senderID string) (int64, error)
	CountUnread(ctx context.Context, receiverID string) (int64, error)
}

// Reference holds ancillary content tables.
type Reference interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) error
	ListFeedback(ctx context.Context, userID string) ([]models.Feedback, error)
	CreateRecyclingCenter(ctx context.Context, c *models.RecyclingCenter) error
	ListRecyclingCenters(ctx context.Context) ([]models.RecyclingCenter, error)
}

// Store is the full persistence surface.
type Store interface {
	Users
	Collections
	Impacts
	Activities
	Badges
	EcoTips
	MaterialInterests
	Messages
	Reference

	// RunInTx runs fn against a transactional view of the store. Writes made
	// through tx are discarded if fn returns an error.
	RunInTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// BoolPtr is a convenience for CollectionQuery.Claimed.
func BoolPtr(b bool) *bool { return &b }
