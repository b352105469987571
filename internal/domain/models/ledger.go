// internal/domain/models/ledger.go
package models

import "time"

// Impact is an append-only ledger row of environmental metrics, written
// when a collection is created or completed and once (zeroed) at
// registration.
type Impact struct {
	ID              string  `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID          string  `gorm:"index;size:36;not null" bson:"user_id" json:"userId"`
	CollectionID    *string `gorm:"index;size:36" bson:"collection_id,omitempty" json:"collectionId"`
	WasteAmount     float64 `bson:"waste_amount" json:"wasteAmount"`
	WaterSaved      float64 `bson:"water_saved" json:"waterSaved"`
	CO2Reduced      float64 `gorm:"column:co2_reduced" bson:"co2_reduced" json:"co2Reduced"`
	TreesEquivalent float64 `bson:"trees_equivalent" json:"treesEquivalent"`
	EnergyConserved float64 `bson:"energy_conserved" json:"energyConserved"`

	CreatedAt time.Time `gorm:"index" bson:"created_at" json:"createdAt"`
}

// Activity types written to the feed.
const (
	ActivityRegistration        = "registration"
	ActivityOnboarding          = "onboarding"
	ActivityCollectionScheduled = "collection_scheduled"
	ActivityCollectionClaimed   = "collection_claimed"
	ActivityCollectionUpdated   = "collection_updated"
	ActivityCollectionCompleted = "collection_completed"
	ActivityCollectionCancelled = "collection_cancelled"
	ActivityInterestExpressed   = "material_interest"
	ActivityInterestUpdated     = "material_interest_update"
)

// Activity is an append-only feed entry.
type Activity struct {
	ID          string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID      string `gorm:"index;size:36;not null" bson:"user_id" json:"userId"`
	Type        string `gorm:"size:40;not null" bson:"type" json:"type"`
	Description string `bson:"description" json:"description"`
	Points      *int   `bson:"points,omitempty" json:"points"`

	CreatedAt time.Time `gorm:"index" bson:"created_at" json:"createdAt"`
}

// Badge types.
const (
	BadgeWelcome            = "welcome"
	BadgeOnboardingComplete = "onboarding_complete"
)

// Badge is awarded at most once per (UserID, BadgeType).
type Badge struct {
	ID          string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID      string `gorm:"uniqueIndex:idx_badge_user_type;size:36;not null" bson:"user_id" json:"userId"`
	BadgeType   string `gorm:"uniqueIndex:idx_badge_user_type;size:40;not null" bson:"badge_type" json:"badgeType"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`

	AwardedAt time.Time `bson:"awarded_at" json:"awardedAt"`
}
