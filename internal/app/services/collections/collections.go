// internal/app/services/collections/collections.go

// Package collections runs the pickup lifecycle: create, claim, update and
// the role-dependent read rules. Multi-step writes run in one store
// transaction; notifications go out only after it commits.
package collections

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/pipapal/internal/app/policy/collectionpolicy"
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

// Service implements the collection lifecycle.
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

// CreateInput is a new pickup request. WasteAmount is accepted as an alias
// for EstimatedAmount; the collected amount is only recorded on completion.
type CreateInput struct {
	WasteType       string    `json:"wasteType" validate:"required,max=32" label:"Waste type"`
	EstimatedAmount *float64  `json:"estimatedAmount" validate:"omitempty,gt=0" label:"Estimated amount"`
	WasteAmount     *float64  `json:"wasteAmount" validate:"omitempty,gt=0" label:"Waste amount"`
	Address         string    `json:"address" validate:"required,max=500" label:"Address"`
	Location        string    `json:"location" validate:"max=500" label:"Location"`
	Latitude        *float64  `json:"latitude" validate:"omitempty,min=-90,max=90" label:"Latitude"`
	Longitude       *float64  `json:"longitude" validate:"omitempty,min=-180,max=180" label:"Longitude"`
	ScheduledDate   time.Time `json:"scheduledDate" validate:"required" label:"Scheduled date"`
	Status          string    `json:"status" label:"Status"`
	Notes           string    `json:"notes" validate:"max=1000" label:"Notes"`
}

// Created is a new collection with the points it earned.
type Created struct {
	models.Collection
	PointsEarned   int `json:"pointsEarned"`
	NewTotalPoints int `json:"newTotalPoints"`
}

// Event is the payload of collection notifications.
type Event struct {
	Collection    models.Collection `json:"collection"`
	Message       string            `json:"message,omitempty"`
	CollectorID   string            `json:"collectorId,omitempty"`
	CollectorName string            `json:"collectorName,omitempty"`
}

func normalizeWasteType(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 32 {
		return "", respond.BadRequest("Invalid waste type")
	}
	return s, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Create                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Create schedules a pickup for an owner, awards creation points and
// records the estimated impact.
func (s *Service) Create(ctx context.Context, actor auth.SessionUser, in CreateInput) (Created, error) {
	if !models.IsOwnerRole(strings.ToLower(actor.Role)) {
		return Created{}, respond.Forbidden("Only households and organizations can schedule collections")
	}
	status, ok := collectionpolicy.InitialStatus(in.Status)
	if !ok {
		return Created{}, respond.BadRequest("Status must be pending or scheduled")
	}
	wasteType, err := normalizeWasteType(in.WasteType)
	if err != nil {
		return Created{}, err
	}
	estimate := in.EstimatedAmount
	if estimate == nil {
		estimate = in.WasteAmount
	}

	now := s.now()
	c := models.Collection{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		WasteType:       wasteType,
		EstimatedAmount: estimate,
		Address:         strings.TrimSpace(in.Address),
		Location:        strings.TrimSpace(in.Location),
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		ScheduledDate:   in.ScheduledDate.UTC(),
		Status:          status,
		Notes:           htmlsanitize.PlainText(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	points := collectionpolicy.CreationPoints(wasteType, estimate)

	var total int
	err = s.st.RunInTx(ctx, func(tx store.Store) error {
		if err := tx.CreateCollection(ctx, &c); err != nil {
			return err
		}
		var err error
		if total, err = tx.AddPoints(ctx, actor.ID, points); err != nil {
			return err
		}
		desc := fmt.Sprintf("Scheduled a %s collection", wasteType)
		if err := ledger.Activity(ctx, tx, actor.ID, models.ActivityCollectionScheduled, desc, points); err != nil {
			return err
		}
		return ledger.Impact(ctx, tx, actor.ID, &c.ID, collectionpolicy.Estimate(estimate), collectionpolicy.CreationFactors)
	})
	if err != nil {
		return Created{}, err
	}

	s.notify.SendToRole(models.RoleCollector, notify.Event{Type: notify.TypeNewCollection, Data: Event{
		Collection: c,
		Message:    fmt.Sprintf("New %s collection available", wasteType),
	}})
	s.notify.SendToUser(actor.ID, notify.Event{Type: notify.TypeCollectionUpdate, Data: Event{
		Collection: c,
		Message:    "Collection scheduled",
	}})
	s.log.Info("collection created",
		zap.String("collection_id", c.ID), zap.String("user_id", actor.ID), zap.Int("points", points))

	return Created{Collection: c, PointsEarned: points, NewTotalPoints: total}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Claim                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// Claim assigns the collection to the acting collector if nobody holds it.
func (s *Service) Claim(ctx context.Context, actor auth.SessionUser, id string) (models.Collection, error) {
	if !strings.EqualFold(actor.Role, models.RoleCollector) {
		return models.Collection{}, respond.Forbidden("Only collectors can claim collections")
	}

	var c models.Collection
	err := s.st.RunInTx(ctx, func(tx store.Store) error {
		var err error
		c, err = s.claimTx(ctx, tx, actor, id)
		return err
	})
	if err != nil {
		return models.Collection{}, err
	}

	s.notifyClaimed(actor, c)
	return c, nil
}

// claimTx is the claim compare-and-set plus its status move and activity
// row, run inside the caller's transaction.
func (s *Service) claimTx(ctx context.Context, tx store.Store, actor auth.SessionUser, id string) (models.Collection, error) {
	claimed, err := tx.ClaimCollection(ctx, id, actor.ID)
	switch {
	case errors.Is(err, store.ErrConflict):
		return models.Collection{}, respond.Conflict("Collection already claimed")
	case errors.Is(err, store.ErrNotFound):
		return models.Collection{}, respond.NotFound("Collection not found")
	case err != nil:
		return models.Collection{}, err
	}
	if next := collectionpolicy.StatusAfterClaim(claimed.Status); next != claimed.Status {
		if claimed, err = tx.UpdateCollection(ctx, id, models.CollectionUpdate{Status: &next}); err != nil {
			return models.Collection{}, err
		}
	}
	desc := fmt.Sprintf("Claimed a %s collection", claimed.WasteType)
	if err := ledger.Activity(ctx, tx, actor.ID, models.ActivityCollectionClaimed, desc, 0); err != nil {
		return models.Collection{}, err
	}
	return claimed, nil
}

func (s *Service) notifyClaimed(actor auth.SessionUser, c models.Collection) {
	s.notify.SendToUser(c.UserID, notify.Event{Type: notify.TypeCollectionUpdate, Data: Event{
		Collection:    c,
		Message:       fmt.Sprintf("%s will collect your %s", actor.Name, c.WasteType),
		CollectorID:   actor.ID,
		CollectorName: actor.Name,
	}})
	s.log.Info("collection claimed", zap.String("collection_id", c.ID), zap.String("collector_id", actor.ID))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Update                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Update applies a role-restricted change. A collector sending its own id
// as collectorId on an unclaimed collection claims it; the claim and the
// rest of the change commit together or not at all.
func (s *Service) Update(ctx context.Context, actor auth.SessionUser, id string, upd models.CollectionUpdate) (models.Collection, error) {
	c, err := s.st.GetCollection(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Collection{}, respond.NotFound("Collection not found")
	}
	if err != nil {
		return models.Collection{}, err
	}

	switch role := strings.ToLower(actor.Role); {
	case role == models.RoleCollector:
		u := collectionpolicy.ForCollector(upd)
		if u.CollectorID != nil && *u.CollectorID != actor.ID {
			return models.Collection{}, respond.Forbidden("Collectors can only assign themselves")
		}
		claim := false
		if !c.IsAssignedTo(actor.ID) {
			if u.CollectorID == nil || c.IsClaimed() {
				return models.Collection{}, respond.Forbidden("Only the assigned collector can update this collection")
			}
			claim = true
		}
		u.CollectorID = nil
		return s.apply(ctx, actor, id, u, claim)

	case models.IsOwnerRole(role):
		if c.UserID != actor.ID {
			return models.Collection{}, respond.Forbidden("You can only update your own collections")
		}
		u := collectionpolicy.ForOwner(upd)
		if u.Status != nil {
			st := strings.ToLower(strings.TrimSpace(*u.Status))
			if st != models.StatusCancelled && st != c.Status {
				return models.Collection{}, respond.Forbidden("Owners can only cancel a collection")
			}
		}
		if u.WasteType != nil {
			wt, err := normalizeWasteType(*u.WasteType)
			if err != nil {
				return models.Collection{}, err
			}
			u.WasteType = &wt
		}
		return s.apply(ctx, actor, id, u, false)
	}
	return models.Collection{}, respond.Forbidden("Forbidden")
}

// apply validates u against the current row inside a transaction and
// writes it with its side effects. With claim set the collection is first
// claimed for actor in the same transaction.
func (s *Service) apply(ctx context.Context, actor auth.SessionUser, id string, u models.CollectionUpdate, claim bool) (models.Collection, error) {
	if u.Status != nil {
		st := strings.ToLower(strings.TrimSpace(*u.Status))
		if !collectionpolicy.IsKnown(st) {
			return models.Collection{}, respond.BadRequest("Invalid status")
		}
		u.Status = &st
	}
	if u.WasteAmount != nil && *u.WasteAmount <= 0 {
		return models.Collection{}, respond.BadRequest("Waste amount must be greater than zero")
	}
	if u.Notes != nil {
		n := htmlsanitize.PlainText(*u.Notes)
		u.Notes = &n
	}

	var (
		claimed, after models.Collection
		completed      bool
	)
	err := s.st.RunInTx(ctx, func(tx store.Store) error {
		var err error
		if claim {
			if claimed, err = s.claimTx(ctx, tx, actor, id); err != nil {
				return err
			}
		}
		after, completed, err = s.applyTx(ctx, tx, actor, id, &u)
		return err
	})
	if err != nil {
		return models.Collection{}, err
	}

	if claim {
		s.notifyClaimed(actor, claimed)
	}
	if u.IsEmpty() {
		return after, nil
	}

	msg := "Collection updated"
	if u.Status != nil {
		msg = fmt.Sprintf("Collection is now %s", *u.Status)
	}
	ev := notify.Event{Type: notify.TypeCollectionUpdate, Data: Event{Collection: after, Message: msg}}
	s.notify.SendToUser(after.UserID, ev)
	if after.IsClaimed() && *after.CollectorID != after.UserID {
		s.notify.SendToUser(*after.CollectorID, ev)
	}
	if completed {
		s.log.Info("collection completed", zap.String("collection_id", after.ID))
	}
	return after, nil
}

// applyTx checks u against the stored row and writes it. u is trimmed of
// no-op fields and given a completion date when it completes the row.
func (s *Service) applyTx(ctx context.Context, tx store.Store, actor auth.SessionUser, id string, u *models.CollectionUpdate) (models.Collection, bool, error) {
	before, err := tx.GetCollection(ctx, id)
	if err != nil {
		return models.Collection{}, false, err
	}
	if u.Status != nil {
		if !collectionpolicy.CanTransition(before.Status, *u.Status) {
			return models.Collection{}, false, respond.BadRequest(fmt.Sprintf("Cannot change status from %s to %s", before.Status, *u.Status))
		}
		if *u.Status == before.Status {
			u.Status = nil
		}
	}
	completed := u.Status != nil && *u.Status == models.StatusCompleted
	if !completed && (u.WasteAmount != nil || u.CompletedDate != nil) {
		return models.Collection{}, false, respond.BadRequest("Waste amount and completion date are recorded when the collection is completed")
	}
	if collectionpolicy.IsTerminal(before.Status) && !u.IsEmpty() {
		return models.Collection{}, false, respond.BadRequest(fmt.Sprintf("Collection is %s and can no longer be changed", before.Status))
	}
	if completed && u.CompletedDate == nil {
		now := s.now()
		u.CompletedDate = &now
	}
	if u.IsEmpty() {
		return before, false, nil
	}

	after, err := tx.UpdateCollection(ctx, id, *u)
	if err != nil {
		return models.Collection{}, false, err
	}
	if err := s.recordUpdate(ctx, tx, actor, after, *u); err != nil {
		return models.Collection{}, false, err
	}
	return after, completed, nil
}

func (s *Service) recordUpdate(ctx context.Context, tx store.Store, actor auth.SessionUser, c models.Collection, u models.CollectionUpdate) error {
	if u.Status == nil {
		return ledger.Activity(ctx, tx, actor.ID, models.ActivityCollectionUpdated,
			fmt.Sprintf("Updated a %s collection", c.WasteType), 0)
	}

	switch *u.Status {
	case models.StatusCancelled:
		return ledger.Activity(ctx, tx, actor.ID, models.ActivityCollectionCancelled,
			fmt.Sprintf("Cancelled a %s collection", c.WasteType), 0)

	case models.StatusCompleted:
		if u.WasteAmount == nil {
			return ledger.Activity(ctx, tx, c.UserID, models.ActivityCollectionCompleted,
				fmt.Sprintf("Your %s collection was completed", c.WasteType), 0)
		}
		kg := *u.WasteAmount
		if err := ledger.Impact(ctx, tx, c.UserID, &c.ID, kg, collectionpolicy.CompletionFactors); err != nil {
			return err
		}
		points := collectionpolicy.CompletionPoints(kg)
		if _, err := tx.AddPoints(ctx, c.UserID, points); err != nil {
			return err
		}
		if err := ledger.Activity(ctx, tx, c.UserID, models.ActivityCollectionCompleted,
			fmt.Sprintf("%gkg of %s collected", kg, c.WasteType), points); err != nil {
			return err
		}
		if c.IsClaimed() {
			return ledger.Activity(ctx, tx, *c.CollectorID, models.ActivityCollectionCompleted,
				fmt.Sprintf("Collected %gkg of %s", kg, c.WasteType), 0)
		}
		return nil
	}

	return ledger.Activity(ctx, tx, actor.ID, models.ActivityCollectionUpdated,
		fmt.Sprintf("Collection moved to %s", *u.Status), 0)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Read                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// List returns the collections actor may see, newest first.
func (s *Service) List(ctx context.Context, actor auth.SessionUser) ([]models.Collection, error) {
	seen := make(map[string]bool)
	out := []models.Collection{}
	for _, q := range collectionpolicy.Queries(actor.Role, actor.ID) {
		rows, err := s.st.ListCollections(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, c := range rows {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Get returns one collection if actor may see it.
func (s *Service) Get(ctx context.Context, actor auth.SessionUser, id string) (models.Collection, error) {
	c, err := s.st.GetCollection(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Collection{}, respond.NotFound("Collection not found")
	}
	if err != nil {
		return models.Collection{}, err
	}
	if !collectionpolicy.CanView(actor.Role, actor.ID, c) {
		return models.Collection{}, respond.Forbidden("You do not have access to this collection")
	}
	return c, nil
}
