// internal/domain/models/materialinterest.go
package models

import "time"

// Material interest status values.
const (
	InterestPending   = "pending"
	InterestAccepted  = "accepted"
	InterestRejected  = "rejected"
	InterestCompleted = "completed"
)

// MaterialInterest records a recycler's intent to acquire the material
// from one collection. Only the collection's assigned collector changes
// its status.
type MaterialInterest struct {
	ID           string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	CollectionID string `gorm:"index;size:36;not null" bson:"collection_id" json:"collectionId"`
	RecyclerID   string `gorm:"index;size:36;not null" bson:"recycler_id" json:"recyclerId"`
	Status       string `gorm:"size:20;not null" bson:"status" json:"status"`

	AmountRequested *float64 `bson:"amount_requested,omitempty" json:"amountRequested"`
	PricePerKg      *float64 `bson:"price_per_kg,omitempty" json:"pricePerKg"`
	Message         string   `bson:"message,omitempty" json:"message,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
