// internal/domain/models/content.go
package models

import "time"

// ChatMessage is a direct message between two users. Only Read changes
// after creation.
type ChatMessage struct {
	ID         string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	SenderID   string `gorm:"index:idx_chat_pair,priority:1;size:36;not null" bson:"sender_id" json:"senderId"`
	ReceiverID string `gorm:"index:idx_chat_pair,priority:2;index;size:36;not null" bson:"receiver_id" json:"receiverId"`
	Content    string `gorm:"not null" bson:"content" json:"content"`
	Read       bool   `gorm:"not null;default:false" bson:"read" json:"read"`

	CreatedAt time.Time `gorm:"index" bson:"created_at" json:"createdAt"`
}

// EcoTip is a short piece of sustainability advice.
type EcoTip struct {
	ID        string `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Title     string `gorm:"not null" bson:"title" json:"title"`
	Content   string `gorm:"not null" bson:"content" json:"content"`
	Category  string `gorm:"size:40" bson:"category" json:"category"`
	WasteType string `gorm:"index;size:32" bson:"waste_type,omitempty" json:"wasteType,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Feedback is a user-submitted comment about the service.
type Feedback struct {
	ID       string  `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID   *string `gorm:"index;size:36" bson:"user_id,omitempty" json:"userId"`
	Category string  `gorm:"size:40" bson:"category" json:"category"`
	Message  string  `gorm:"not null" bson:"message" json:"message"`
	Rating   *int    `bson:"rating,omitempty" json:"rating,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// RecyclingCenter is a drop-off location.
type RecyclingCenter struct {
	ID                 string   `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name               string   `gorm:"not null" bson:"name" json:"name"`
	Address            string   `gorm:"not null" bson:"address" json:"address"`
	AcceptedWasteTypes []string `gorm:"serializer:json;type:text" bson:"accepted_waste_types" json:"acceptedWasteTypes"`
	Phone              string   `bson:"phone,omitempty" json:"phone,omitempty"`
	Hours              string   `bson:"hours,omitempty" json:"hours,omitempty"`
	Latitude           *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude          *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Accepts reports whether the center takes wasteType. An empty list
// accepts everything.
func (c RecyclingCenter) Accepts(wasteType string) bool {
	if len(c.AcceptedWasteTypes) == 0 {
		return true
	}
	for _, t := range c.AcceptedWasteTypes {
		if t == wasteType {
			return true
		}
	}
	return false
}
