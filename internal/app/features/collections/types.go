// internal/app/features/collections/types.go
package collections

import (
	"time"

	"github.com/dalemusser/pipapal/internal/domain/models"
)

// updateInput is the PATCH body. Absent fields are left alone; the service
// drops the fields the caller's role may not touch.
type updateInput struct {
	CollectorID     *string    `json:"collectorId" validate:"omitempty,max=64" label:"Collector"`
	WasteType       *string    `json:"wasteType" validate:"omitempty,max=32" label:"Waste type"`
	EstimatedAmount *float64   `json:"estimatedAmount" validate:"omitempty,gt=0" label:"Estimated amount"`
	WasteAmount     *float64   `json:"wasteAmount" validate:"omitempty,gt=0" label:"Waste amount"`
	Address         *string    `json:"address" validate:"omitempty,max=500" label:"Address"`
	Location        *string    `json:"location" validate:"omitempty,max=500" label:"Location"`
	Latitude        *float64   `json:"latitude" validate:"omitempty,min=-90,max=90" label:"Latitude"`
	Longitude       *float64   `json:"longitude" validate:"omitempty,min=-180,max=180" label:"Longitude"`
	ScheduledDate   *time.Time `json:"scheduledDate" label:"Scheduled date"`
	CompletedDate   *time.Time `json:"completedDate" label:"Completed date"`
	Status          *string    `json:"status" validate:"omitempty,collectionstatus" label:"Status"`
	Notes           *string    `json:"notes" validate:"omitempty,max=1000" label:"Notes"`
}

func (in updateInput) toUpdate() models.CollectionUpdate {
	return models.CollectionUpdate{
		CollectorID:     in.CollectorID,
		WasteType:       in.WasteType,
		EstimatedAmount: in.EstimatedAmount,
		WasteAmount:     in.WasteAmount,
		Address:         in.Address,
		Location:        in.Location,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		ScheduledDate:   in.ScheduledDate,
		CompletedDate:   in.CompletedDate,
		Status:          in.Status,
		Notes:           in.Notes,
	}
}
