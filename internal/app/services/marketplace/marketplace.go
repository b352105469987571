// internal/app/services/marketplace/marketplace.go

// Package marketplace lets recyclers bid for recovered material and lets
// the assigned collector settle those bids.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/pipapal/internal/app/policy/interestpolicy"
	"github.com/dalemusser/pipapal/internal/app/services/ledger"
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/pipapal/internal/app/system/notify"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLen = 1000

// Service implements the materials marketplace.
type Service struct {
	st     store.Store
	notify notify.Sender
	log    *zap.Logger
	now    func() time.Time
}

// New returns a Service.
func New(st store.Store, sender notify.Sender, logger *zap.Logger) *Service {
	return &Service{st: st, notify: sender, log: logger, now: func() time.Time { return time.Now().UTC() }}
}

// InterestInput is a recycler's request for material.
type InterestInput struct {
	CollectionID    string   `json:"collectionId" validate:"required" label:"Collection"`
	AmountRequested *float64 `json:"amountRequested" validate:"omitempty,gt=0" label:"Requested amount"`
	PricePerKg      *float64 `json:"pricePerKg" validate:"omitempty,gt=0" label:"Price per kg"`
	Message         string   `json:"message" validate:"max=1000" label:"Message"`
}

// StatusInput changes an interest's status.
type StatusInput struct {
	Status string `json:"status" validate:"required,intereststatus" label:"Status"`
}

// Notice is the payload of marketplace notifications.
type Notice struct {
	Title        string                  `json:"title"`
	Message      string                  `json:"message"`
	CollectionID string                  `json:"collectionId"`
	Interest     models.MaterialInterest `json:"interest"`
}

func (s *Service) collection(ctx context.Context, st store.Collections, id string) (models.Collection, error) {
	c, err := st.GetCollection(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Collection{}, respond.NotFound("Collection not found")
	}
	return c, err
}

// ExpressInterest records a pending interest and tells the owner and the
// assigned collector.
func (s *Service) ExpressInterest(ctx context.Context, actor auth.SessionUser, in InterestInput) (models.MaterialInterest, error) {
	if !strings.EqualFold(actor.Role, models.RoleRecycler) {
		return models.MaterialInterest{}, respond.Forbidden("Only recyclers can express interest in materials")
	}
	msg := htmlsanitize.PlainText(in.Message)
	if utf8.RuneCountInString(msg) > maxMessageLen {
		return models.MaterialInterest{}, respond.BadRequest("Message is too long")
	}

	var (
		c  models.Collection
		mi models.MaterialInterest
	)
	err := s.st.RunInTx(ctx, func(tx store.Store) error {
		var err error
		if c, err = s.collection(ctx, tx, in.CollectionID); err != nil {
			return err
		}
		if err := interestpolicy.CheckRequest(c, in.AmountRequested, in.PricePerKg); err != nil {
			return respond.BadRequest(err.Error())
		}

		open, err := tx.ListInterests(ctx, store.InterestQuery{
			CollectionIDs: []string{c.ID},
			RecyclerID:    actor.ID,
			Statuses:      []string{models.InterestPending},
		})
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return respond.Conflict("You already have a pending interest in this collection")
		}

		now := s.now()
		mi = models.MaterialInterest{
			ID:              uuid.NewString(),
			CollectionID:    c.ID,
			RecyclerID:      actor.ID,
			Status:          models.InterestPending,
			AmountRequested: in.AmountRequested,
			PricePerKg:      in.PricePerKg,
			Message:         msg,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.CreateInterest(ctx, &mi); err != nil {
			return err
		}
		return ledger.Activity(ctx, tx, actor.ID, models.ActivityInterestExpressed,
			fmt.Sprintf("Expressed interest in %s material", c.WasteType), 0)
	})
	if err != nil {
		return models.MaterialInterest{}, err
	}

	notice := notify.Event{Type: notify.TypeNotification, Data: Notice{
		Title:        "New material interest",
		Message:      fmt.Sprintf("%s is interested in your %s material", actor.Name, c.WasteType),
		CollectionID: c.ID,
		Interest:     mi,
	}}
	s.notify.SendToUser(c.UserID, notice)
	if c.IsClaimed() {
		s.notify.SendToUser(*c.CollectorID, notice)
	}
	s.log.Info("material interest expressed",
		zap.String("interest_id", mi.ID), zap.String("collection_id", c.ID), zap.String("recycler_id", actor.ID))
	return mi, nil
}

// UpdateStatus lets the assigned collector accept, reject or complete an
// interest, awarding points to both sides.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.SessionUser, interestID, status string) (models.MaterialInterest, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !interestpolicy.IsSettable(status) {
		return models.MaterialInterest{}, respond.BadRequest(interestpolicy.ErrUnknownStatus.Error())
	}

	var (
		c       models.Collection
		updated models.MaterialInterest
	)
	err := s.st.RunInTx(ctx, func(tx store.Store) error {
		mi, err := tx.GetInterest(ctx, interestID)
		if errors.Is(err, store.ErrNotFound) {
			return respond.NotFound("Interest not found")
		}
		if err != nil {
			return err
		}
		if c, err = s.collection(ctx, tx, mi.CollectionID); err != nil {
			return err
		}
		if !c.IsAssignedTo(actor.ID) {
			return respond.Forbidden("Only the assigned collector can update this interest")
		}
		if err := interestpolicy.CheckTransition(mi.Status, status); err != nil {
			return respond.BadRequest(fmt.Sprintf("Cannot change interest from %s to %s", mi.Status, status))
		}
		if updated, err = tx.UpdateInterestStatus(ctx, interestID, status); err != nil {
			return err
		}

		collectorPts, recyclerPts := interestpolicy.Points(status)
		if collectorPts > 0 {
			if _, err := tx.AddPoints(ctx, actor.ID, collectorPts); err != nil {
				return err
			}
		}
		if recyclerPts > 0 {
			if _, err := tx.AddPoints(ctx, mi.RecyclerID, recyclerPts); err != nil {
				return err
			}
		}
		if err := ledger.Activity(ctx, tx, actor.ID, models.ActivityInterestUpdated,
			fmt.Sprintf("Marked a %s material interest as %s", c.WasteType, status), collectorPts); err != nil {
			return err
		}
		return ledger.Activity(ctx, tx, mi.RecyclerID, models.ActivityInterestUpdated,
			fmt.Sprintf("Your interest in %s material was %s", c.WasteType, status), recyclerPts)
	})
	if err != nil {
		return models.MaterialInterest{}, err
	}

	s.notify.SendToUser(updated.RecyclerID, notify.Event{Type: notify.TypeNotification, Data: Notice{
		Title:        "Material interest " + status,
		Message:      fmt.Sprintf("%s marked your interest in %s material as %s", actor.Name, c.WasteType, status),
		CollectionID: c.ID,
		Interest:     updated,
	}})
	s.log.Info("material interest updated",
		zap.String("interest_id", updated.ID), zap.String("status", status))
	return updated, nil
}

// ListForUser returns a recycler's own interests, or the interests on
// collections a collector is assigned to or an owner owns.
func (s *Service) ListForUser(ctx context.Context, actor auth.SessionUser) ([]models.MaterialInterest, error) {
	var q store.InterestQuery
	switch role := strings.ToLower(actor.Role); {
	case role == models.RoleRecycler:
		q.RecyclerID = actor.ID
	case role == models.RoleCollector:
		ids, err := s.collectionIDs(ctx, store.CollectionQuery{CollectorID: actor.ID})
		if err != nil {
			return nil, err
		}
		q.CollectionIDs = ids
	case models.IsOwnerRole(role):
		ids, err := s.collectionIDs(ctx, store.CollectionQuery{UserID: actor.ID})
		if err != nil {
			return nil, err
		}
		q.CollectionIDs = ids
	default:
		return nil, respond.Forbidden("Forbidden")
	}
	return s.list(ctx, q)
}

// ListForCollection returns the interests on one collection. Recyclers
// only see their own.
func (s *Service) ListForCollection(ctx context.Context, actor auth.SessionUser, collectionID string) ([]models.MaterialInterest, error) {
	c, err := s.collection(ctx, s.st, collectionID)
	if err != nil {
		return nil, err
	}
	q := store.InterestQuery{CollectionIDs: []string{c.ID}}
	switch {
	case c.UserID == actor.ID, c.IsAssignedTo(actor.ID):
	case strings.EqualFold(actor.Role, models.RoleRecycler):
		q.RecyclerID = actor.ID
	default:
		return nil, respond.Forbidden("You do not have access to this collection")
	}
	return s.list(ctx, q)
}

func (s *Service) list(ctx context.Context, q store.InterestQuery) ([]models.MaterialInterest, error) {
	rows, err := s.st.ListInterests(ctx, q)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.MaterialInterest{}
	}
	return rows, nil
}

func (s *Service) collectionIDs(ctx context.Context, q store.CollectionQuery) ([]string, error) {
	cs, err := s.st.ListCollections(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids, nil
}
