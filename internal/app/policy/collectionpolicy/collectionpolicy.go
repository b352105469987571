// internal/app/policy/collectionpolicy/collectionpolicy.go

// Package collectionpolicy holds the rules of the collection lifecycle:
// who sees which collections, which status moves are legal, which fields
// each role may change, and the point and impact arithmetic.
package collectionpolicy

import (
	"math"
	"strings"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
)

// DefaultEstimateKg is used for creation-time arithmetic when the owner
// gives no estimate.
const DefaultEstimateKg = 10.0

// CompletionPointsPerKg is the score multiplier applied on completion.
const CompletionPointsPerKg = 5.0

/*─────────────────────────────────────────────────────────────────────────────*
| Points                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

var pointsPerKg = map[string]float64{
	models.WasteGeneral:    0.5,
	models.WastePlastic:    1.0,
	models.WastePaper:      0.8,
	models.WasteGlass:      0.8,
	models.WasteMetal:      1.2,
	models.WasteOrganic:    0.6,
	models.WasteElectronic: 1.5,
	models.WasteHazardous:  2.0,
}

// Rate returns points per kg for wasteType. Unknown types earn the
// general rate.
func Rate(wasteType string) float64 {
	if r, ok := pointsPerKg[strings.ToLower(strings.TrimSpace(wasteType))]; ok {
		return r
	}
	return pointsPerKg[models.WasteGeneral]
}

// Estimate returns the estimate or the default.
func Estimate(estimated *float64) float64 {
	if estimated != nil && *estimated > 0 {
		return *estimated
	}
	return DefaultEstimateKg
}

// CreationPoints is what the owner earns for scheduling a pickup.
func CreationPoints(wasteType string, estimated *float64) int {
	return int(math.Round(Rate(wasteType) * Estimate(estimated)))
}

// CompletionPoints is what the owner earns when kg are collected.
func CompletionPoints(kg float64) int {
	return int(math.Round(kg * CompletionPointsPerKg))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Impact                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Factors convert kilograms into environmental metrics.
type Factors struct {
	WaterL    float64
	CO2Kg     float64
	Trees     float64
	EnergyKWh float64
}

// Creation-time and completion-time factor sets. They differ; both are
// kept as the product defines them.
var (
	CreationFactors   = Factors{WaterL: 50, CO2Kg: 2, Trees: 0.01, EnergyKWh: 5}
	CompletionFactors = Factors{WaterL: 10, CO2Kg: 2.5, Trees: 0.1, EnergyKWh: 5}
)

// Fill sets the metric fields of im for kg.
func (f Factors) Fill(im *models.Impact, kg float64) {
	im.WasteAmount = kg
	im.WaterSaved = kg * f.WaterL
	im.CO2Reduced = kg * f.CO2Kg
	im.TreesEquivalent = kg * f.Trees
	im.EnergyConserved = kg * f.EnergyKWh
}

/*─────────────────────────────────────────────────────────────────────────────*
| Status transitions                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

var next = map[string][]string{
	models.StatusPending:    {models.StatusScheduled, models.StatusConfirmed},
	models.StatusScheduled:  {models.StatusConfirmed},
	models.StatusConfirmed:  {models.StatusInProgress},
	models.StatusInProgress: {models.StatusCompleted},
}

// IsTerminal reports whether status ends the lifecycle.
func IsTerminal(status string) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}

// IsKnown reports whether status is a collection status.
func IsKnown(status string) bool {
	for _, s := range models.CollectionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether a collection may move from one status to
// another. Repeating the current status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	if IsTerminal(from) || !IsKnown(to) {
		return false
	}
	if to == models.StatusCancelled {
		return true
	}
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InitialStatus resolves the status a new collection starts in.
func InitialStatus(requested string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "", models.StatusScheduled:
		return models.StatusScheduled, true
	case models.StatusPending:
		return models.StatusPending, true
	}
	return "", false
}

// StatusAfterClaim is where a claim moves the collection.
func StatusAfterClaim(current string) string {
	if current == models.StatusPending || current == models.StatusScheduled {
		return models.StatusConfirmed
	}
	return current
}

/*─────────────────────────────────────────────────────────────────────────────*
| Field restrictions                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ForCollector keeps only the fields a collector may change.
func ForCollector(u models.CollectionUpdate) models.CollectionUpdate {
	return models.CollectionUpdate{
		Status:        u.Status,
		CollectorID:   u.CollectorID,
		Notes:         u.Notes,
		WasteAmount:   u.WasteAmount,
		CompletedDate: u.CompletedDate,
	}
}

// ForOwner keeps only the fields an owner may change. Status is kept so
// the caller can reject anything but a cancellation.
func ForOwner(u models.CollectionUpdate) models.CollectionUpdate {
	return models.CollectionUpdate{
		Address:         u.Address,
		Location:        u.Location,
		Latitude:        u.Latitude,
		Longitude:       u.Longitude,
		ScheduledDate:   u.ScheduledDate,
		WasteType:       u.WasteType,
		EstimatedAmount: u.EstimatedAmount,
		Notes:           u.Notes,
		Status:          u.Status,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Visibility                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// availableStatuses are the statuses a collector may claim from.
var availableStatuses = []string{models.StatusPending, models.StatusScheduled}

// IsAvailable reports whether a collector may claim c.
func IsAvailable(c models.Collection) bool {
	return !c.IsClaimed() && (c.Status == models.StatusPending || c.Status == models.StatusScheduled)
}

// HasMaterial reports whether recyclers may see c.
func HasMaterial(c models.Collection) bool {
	return c.Status == models.StatusCompleted ||
		(c.Status == models.StatusInProgress && c.IsClaimed())
}

// CanView applies the read rule for one collection.
func CanView(role, userID string, c models.Collection) bool {
	switch strings.ToLower(role) {
	case models.RoleCollector:
		return c.IsAssignedTo(userID) || IsAvailable(c)
	case models.RoleRecycler:
		return HasMaterial(c)
	case models.RoleHousehold, models.RoleOrganization:
		return c.UserID == userID
	}
	return false
}

// Queries returns the store queries whose union is what role may list.
func Queries(role, userID string) []store.CollectionQuery {
	switch strings.ToLower(role) {
	case models.RoleCollector:
		return []store.CollectionQuery{
			{CollectorID: userID},
			{Claimed: store.BoolPtr(false), Statuses: availableStatuses},
		}
	case models.RoleRecycler:
		return []store.CollectionQuery{
			{Statuses: []string{models.StatusCompleted}},
			{Statuses: []string{models.StatusInProgress}, Claimed: store.BoolPtr(true)},
		}
	case models.RoleHousehold, models.RoleOrganization:
		return []store.CollectionQuery{{UserID: userID}}
	}
	return nil
}
