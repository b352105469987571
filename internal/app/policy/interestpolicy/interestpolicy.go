// internal/app/policy/interestpolicy/interestpolicy.go

// Package interestpolicy holds the rules of the materials marketplace.
package interestpolicy

import (
	"errors"
	"fmt"

	"github.com/dalemusser/pipapal/internal/domain/models"
)

// Eligibility failures. Their messages are shown to the recycler.
var (
	ErrNotAvailable   = errors.New("Material is only available from completed collections or collections in progress with a collector")
	ErrNoMaterial     = errors.New("Completed collection has no recorded waste amount")
	ErrAmountPositive = errors.New("Requested amount must be greater than zero")
	ErrPricePositive  = errors.New("Price per kg must be greater than zero")
	ErrUnknownStatus  = errors.New("Status must be one of: accepted, rejected, completed")
	ErrBadTransition  = errors.New("Invalid status transition")
)

// Available returns how many kg the collection offers. ok is false when
// no bound is known (an in-progress collection without an estimate).
func Available(c models.Collection) (kg float64, ok bool) {
	if c.WasteAmount != nil {
		return *c.WasteAmount, true
	}
	if c.Status == models.StatusInProgress && c.EstimatedAmount != nil {
		return *c.EstimatedAmount, true
	}
	return 0, false
}

// CheckRequest validates an interest against the collection it targets.
func CheckRequest(c models.Collection, amount, price *float64) error {
	switch {
	case c.Status == models.StatusCompleted:
		if c.WasteAmount == nil || *c.WasteAmount <= 0 {
			return ErrNoMaterial
		}
	case c.Status == models.StatusInProgress && c.IsClaimed():
	default:
		return ErrNotAvailable
	}

	if amount != nil {
		if *amount <= 0 {
			return ErrAmountPositive
		}
		if avail, ok := Available(c); ok && *amount > avail {
			return fmt.Errorf("Requested amount (%gkg) exceeds available amount (%gkg)", *amount, avail)
		}
	}
	if price != nil && *price <= 0 {
		return ErrPricePositive
	}
	return nil
}

// IsSettable reports whether a collector may set status.
func IsSettable(status string) bool {
	return status == models.InterestAccepted ||
		status == models.InterestRejected ||
		status == models.InterestCompleted
}

var next = map[string][]string{
	models.InterestPending:  {models.InterestAccepted, models.InterestRejected},
	models.InterestAccepted: {models.InterestCompleted, models.InterestRejected},
}

// CheckTransition validates moving an interest from one status to another.
// Repeats and skipped steps are rejected.
func CheckTransition(from, to string) error {
	if !IsSettable(to) {
		return ErrUnknownStatus
	}
	for _, s := range next[from] {
		if s == to {
			return nil
		}
	}
	return ErrBadTransition
}

// Points returns what the collector and recycler earn when an interest
// enters status.
func Points(status string) (collector, recycler int) {
	switch status {
	case models.InterestAccepted:
		return 10, 5
	case models.InterestCompleted:
		return 15, 20
	}
	return 0, 0
}
