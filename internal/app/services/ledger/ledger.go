// internal/app/services/ledger/ledger.go

// Package ledger writes the append-only side effects that accompany most
// mutations: activity feed entries, impact rows and badges. Callers pass
// the transactional store so the side effects commit with the mutation.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/pipapal/internal/app/policy/collectionpolicy"
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/google/uuid"
)

// Now is the clock used for ledger timestamps.
var Now = func() time.Time { return time.Now().UTC() }

// Activity appends a feed entry. Zero points are stored as no points.
func Activity(ctx context.Context, st store.Activities, userID, typ, description string, points int) error {
	a := models.Activity{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        typ,
		Description: description,
		CreatedAt:   Now(),
	}
	if points != 0 {
		a.Points = &points
	}
	if err := st.CreateActivity(ctx, &a); err != nil {
		return fmt.Errorf("record %s activity: %w", typ, err)
	}
	return nil
}

// Impact appends an impact row for kg using factors f.
func Impact(ctx context.Context, st store.Impacts, userID string, collectionID *string, kg float64, f collectionpolicy.Factors) error {
	im := models.Impact{
		ID:           uuid.NewString(),
		UserID:       userID,
		CollectionID: collectionID,
		CreatedAt:    Now(),
	}
	f.Fill(&im, kg)
	if err := st.CreateImpact(ctx, &im); err != nil {
		return fmt.Errorf("record impact: %w", err)
	}
	return nil
}

var badgeText = map[string][2]string{
	models.BadgeWelcome:            {"Welcome to PipaPal", "Joined the PipaPal community"},
	models.BadgeOnboardingComplete: {"Getting Started", "Completed the onboarding tour"},
}

// Badge awards badgeType to userID unless already held.
func Badge(ctx context.Context, st store.Badges, userID, badgeType string) (bool, error) {
	text := badgeText[badgeType]
	b := models.Badge{
		ID:          uuid.NewString(),
		UserID:      userID,
		BadgeType:   badgeType,
		Name:        text[0],
		Description: text[1],
		AwardedAt:   Now(),
	}
	awarded, err := st.AwardBadge(ctx, &b)
	if err != nil {
		return false, fmt.Errorf("award %s badge: %w", badgeType, err)
	}
	return awarded, nil
}

// Welcome writes what every new account starts with: a zero impact row,
// the welcome badge and a registration entry.
func Welcome(ctx context.Context, tx store.Store, u models.User) error {
	if err := Impact(ctx, tx, u.ID, nil, 0, collectionpolicy.CreationFactors); err != nil {
		return err
	}
	if _, err := Badge(ctx, tx, u.ID, models.BadgeWelcome); err != nil {
		return err
	}
	return Activity(ctx, tx, u.ID, models.ActivityRegistration,
		fmt.Sprintf("Joined PipaPal as a %s", u.Role), 0)
}
