// internal/domain/models/collection.go
package models

import "time"

// Collection status values.
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// CollectionStatuses lists every status in lifecycle order.
var CollectionStatuses = []string{
	StatusPending,
	StatusScheduled,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// Collection is a single pickup request.
//
// WasteAmount stays nil until the collection is completed; the figure the
// owner supplies at creation time lives in EstimatedAmount.
type Collection struct {
	ID          string  `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID      string  `gorm:"index;size:36;not null" bson:"user_id" json:"userId"`
	CollectorID *string `gorm:"index;size:36" bson:"collector_id" json:"collectorId"`

	WasteType       string   `gorm:"size:32;not null" bson:"waste_type" json:"wasteType"`
	EstimatedAmount *float64 `bson:"estimated_amount,omitempty" json:"estimatedAmount"`
	WasteAmount     *float64 `bson:"waste_amount" json:"wasteAmount"`

	Address   string   `gorm:"not null" bson:"address" json:"address"`
	Location  string   `bson:"location,omitempty" json:"location,omitempty"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`

	ScheduledDate time.Time  `bson:"scheduled_date" json:"scheduledDate"`
	CompletedDate *time.Time `bson:"completed_date" json:"completedDate"`
	Status        string     `gorm:"index;size:20;not null" bson:"status" json:"status"`
	Notes         string     `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsClaimed reports whether a collector has been assigned.
func (c Collection) IsClaimed() bool {
	return c.CollectorID != nil && *c.CollectorID != ""
}

// IsAssignedTo reports whether userID is the assigned collector.
func (c Collection) IsAssignedTo(userID string) bool {
	return c.IsClaimed() && *c.CollectorID == userID
}

// CollectionUpdate is a partial change to a collection. Nil fields are left
// alone.
type CollectionUpdate struct {
	CollectorID     *string
	WasteType       *string
	EstimatedAmount *float64
	WasteAmount     *float64
	Address         *string
	Location        *string
	Latitude        *float64
	Longitude       *float64
	ScheduledDate   *time.Time
	CompletedDate   *time.Time
	Status          *string
	Notes           *string
}

// IsEmpty reports whether the update carries no changes.
func (u CollectionUpdate) IsEmpty() bool {
	return u == CollectionUpdate{}
}
