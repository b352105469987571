// internal/app/services/dashboards/dashboards.go

// Package dashboards builds the per-role summary shown after sign-in.
package dashboards

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/pipapal/internal/app/policy/collectionpolicy"
	"github.com/dalemusser/pipapal/internal/app/policy/interestpolicy"
	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"go.uber.org/zap"
)

// RecentActivity is how many feed entries the owner dashboard carries.
const RecentActivity = 5

// Dashboard builds one role's summary.
type Dashboard interface {
	Build(ctx context.Context, st store.Store, actor auth.SessionUser) (any, error)
}

// Service picks the Dashboard for the caller's role.
type Service struct {
	st     store.Store
	log    *zap.Logger
	boards map[string]Dashboard
}

// New returns a Service with the standard role mapping.
func New(st store.Store, logger *zap.Logger) *Service {
	clock := func() time.Time { return time.Now().UTC() }
	owner := OwnerDashboard{}
	return &Service{
		st:  st,
		log: logger,
		boards: map[string]Dashboard{
			models.RoleHousehold:    owner,
			models.RoleOrganization: owner,
			models.RoleCollector:    CollectorDashboard{Now: clock},
			models.RoleRecycler:     RecyclerDashboard{},
		},
	}
}

// Register replaces the Dashboard used for role.
func (s *Service) Register(role string, d Dashboard) { s.boards[strings.ToLower(role)] = d }

// Build returns the caller's dashboard.
func (s *Service) Build(ctx context.Context, actor auth.SessionUser) (any, error) {
	d, ok := s.boards[strings.ToLower(actor.Role)]
	if !ok {
		return nil, respond.Forbidden("No dashboard for this role")
	}
	return d.Build(ctx, s.st, actor)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Households and organizations                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// OwnerSummary is the household and organization dashboard.
type OwnerSummary struct {
	Role                string            `json:"role"`
	TotalCollections    int               `json:"totalCollections"`
	ByStatus            map[string]int    `json:"collectionsByStatus"`
	SustainabilityScore int               `json:"sustainabilityScore"`
	RecentActivity      []models.Activity `json:"recentActivity"`
	Badges              []models.Badge    `json:"badges"`
}

// OwnerDashboard summarizes the caller's own collections.
type OwnerDashboard struct{}

func (OwnerDashboard) Build(ctx context.Context, st store.Store, actor auth.SessionUser) (any, error) {
	u, err := st.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	cs, err := st.ListCollections(ctx, store.CollectionQuery{UserID: actor.ID})
	if err != nil {
		return nil, err
	}
	acts, err := st.ListActivities(ctx, actor.ID, RecentActivity)
	if err != nil {
		return nil, err
	}
	badges, err := st.ListBadges(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	sum := OwnerSummary{
		Role:                u.Role,
		TotalCollections:    len(cs),
		ByStatus:            make(map[string]int, len(models.CollectionStatuses)),
		SustainabilityScore: u.SustainabilityScore,
		RecentActivity:      nonNil(acts),
		Badges:              nonNil(badges),
	}
	for _, s := range models.CollectionStatuses {
		sum.ByStatus[s] = 0
	}
	for _, c := range cs {
		sum.ByStatus[c.Status]++
	}
	return sum, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Collectors                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// CollectorSummary is the collector dashboard.
type CollectorSummary struct {
	Role                string  `json:"role"`
	AssignedActive      int     `json:"assignedActive"`
	Available           int     `json:"available"`
	CompletedToday      int     `json:"completedToday"`
	KgCollected         float64 `json:"kgCollected"`
	SustainabilityScore int     `json:"sustainabilityScore"`
}

// CollectorDashboard summarizes assigned and claimable work.
type CollectorDashboard struct {
	Now func() time.Time
}

func (d CollectorDashboard) Build(ctx context.Context, st store.Store, actor auth.SessionUser) (any, error) {
	u, err := st.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	assigned, err := st.ListCollections(ctx, store.CollectionQuery{CollectorID: actor.ID})
	if err != nil {
		return nil, err
	}
	unclaimed, err := st.ListCollections(ctx, store.CollectionQuery{Claimed: store.BoolPtr(false)})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if d.Now != nil {
		now = d.Now()
	}
	y, m, day := now.Date()

	sum := CollectorSummary{Role: u.Role, SustainabilityScore: u.SustainabilityScore}
	for _, c := range assigned {
		if !collectionpolicy.IsTerminal(c.Status) {
			sum.AssignedActive++
		}
		if c.Status != models.StatusCompleted {
			continue
		}
		if c.WasteAmount != nil {
			sum.KgCollected += *c.WasteAmount
		}
		if c.CompletedDate != nil {
			cy, cm, cd := c.CompletedDate.UTC().Date()
			if cy == y && cm == m && cd == day {
				sum.CompletedToday++
			}
		}
	}
	for _, c := range unclaimed {
		if collectionpolicy.IsAvailable(c) {
			sum.Available++
		}
	}
	return sum, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Recyclers                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// RecyclerSummary is the recycler dashboard.
type RecyclerSummary struct {
	Role                string         `json:"role"`
	AvailableMaterials  int            `json:"availableMaterials"`
	InterestsByStatus   map[string]int `json:"interestsByStatus"`
	KgAcquired          float64        `json:"kgAcquired"`
	SustainabilityScore int            `json:"sustainabilityScore"`
}

// RecyclerDashboard summarizes the marketplace from a buyer's side.
type RecyclerDashboard struct{}

func (RecyclerDashboard) Build(ctx context.Context, st store.Store, actor auth.SessionUser) (any, error) {
	u, err := st.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	sum := RecyclerSummary{
		Role:                u.Role,
		SustainabilityScore: u.SustainabilityScore,
		InterestsByStatus: map[string]int{
			models.InterestPending:   0,
			models.InterestAccepted:  0,
			models.InterestRejected:  0,
			models.InterestCompleted: 0,
		},
	}
	for _, q := range collectionpolicy.Queries(models.RoleRecycler, actor.ID) {
		cs, err := st.ListCollections(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			if seen[c.ID] || !collectionpolicy.HasMaterial(c) {
				continue
			}
			seen[c.ID] = true
			if kg, ok := interestpolicy.Available(c); !ok || kg > 0 {
				sum.AvailableMaterials++
			}
		}
	}

	mis, err := st.ListInterests(ctx, store.InterestQuery{RecyclerID: actor.ID})
	if err != nil {
		return nil, err
	}
	for _, mi := range mis {
		sum.InterestsByStatus[mi.Status]++
		if mi.Status != models.InterestCompleted {
			continue
		}
		if mi.AmountRequested != nil {
			sum.KgAcquired += *mi.AmountRequested
			continue
		}
		c, err := st.GetCollection(ctx, mi.CollectionID)
		if err != nil {
			continue
		}
		if c.WasteAmount != nil {
			sum.KgAcquired += *c.WasteAmount
		}
	}
	return sum, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
