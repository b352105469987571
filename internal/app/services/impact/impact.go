// internal/app/services/impact/impact.go

// Package impact aggregates the impact ledger for the rows a user may see.
//
// Owners see their own rows, collectors see the rows of collections
// assigned to them, and recyclers see the rows of collections where they
// hold an accepted or completed interest.
package impact

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/auth"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"go.uber.org/zap"
)

// Months is how many calendar months Monthly reports.
const Months = 6

// Totals sums every visible impact row.
type Totals struct {
	WasteAmount     float64 `json:"wasteAmount"`
	WaterSaved      float64 `json:"waterSaved"`
	CO2Reduced      float64 `json:"co2Reduced"`
	TreesEquivalent float64 `json:"treesEquivalent"`
	EnergyConserved float64 `json:"energyConserved"`
	Collections     int     `json:"collections"`
}

// Month is one bucket of the monthly series.
type Month struct {
	Month       string  `json:"month"` // YYYY-MM
	WasteAmount float64 `json:"wasteAmount"`
	CO2Reduced  float64 `json:"co2Reduced"`
}

// WasteTypeAmount is completed kg for one waste type.
type WasteTypeAmount struct {
	WasteType string  `json:"wasteType"`
	Amount    float64 `json:"amount"`
}

// Service reads impact figures.
type Service struct {
	st  store.Store
	log *zap.Logger
	now func() time.Time
}

// New returns a Service.
func New(st store.Store, logger *zap.Logger) *Service {
	return &Service{st: st, log: logger, now: func() time.Time { return time.Now().UTC() }}
}

// scope is what one user may aggregate over.
type scope struct {
	impacts     store.ImpactQuery
	collections []models.Collection
}

func (s *Service) scope(ctx context.Context, actor auth.SessionUser) (scope, error) {
	switch strings.ToLower(actor.Role) {
	case models.RoleHousehold, models.RoleOrganization:
		cs, err := s.st.ListCollections(ctx, store.CollectionQuery{UserID: actor.ID})
		if err != nil {
			return scope{}, err
		}
		return scope{impacts: store.ImpactQuery{UserID: actor.ID}, collections: cs}, nil

	case models.RoleCollector:
		cs, err := s.st.ListCollections(ctx, store.CollectionQuery{CollectorID: actor.ID})
		if err != nil {
			return scope{}, err
		}
		return scope{impacts: store.ImpactQuery{CollectionIDs: ids(cs)}, collections: cs}, nil

	case models.RoleRecycler:
		cs, err := s.acquired(ctx, actor.ID)
		if err != nil {
			return scope{}, err
		}
		return scope{impacts: store.ImpactQuery{CollectionIDs: ids(cs)}, collections: cs}, nil
	}
	return scope{impacts: store.ImpactQuery{CollectionIDs: []string{}}}, nil
}

// acquired returns the collections where recyclerID holds an accepted or
// completed interest.
func (s *Service) acquired(ctx context.Context, recyclerID string) ([]models.Collection, error) {
	mis, err := s.st.ListInterests(ctx, store.InterestQuery{
		RecyclerID: recyclerID,
		Statuses:   []string{models.InterestAccepted, models.InterestCompleted},
	})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(mis))
	out := make([]models.Collection, 0, len(mis))
	for _, mi := range mis {
		if seen[mi.CollectionID] {
			continue
		}
		seen[mi.CollectionID] = true
		c, err := s.st.GetCollection(ctx, mi.CollectionID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func ids(cs []models.Collection) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

// Summary totals every visible row.
func (s *Service) Summary(ctx context.Context, actor auth.SessionUser) (Totals, error) {
	sc, err := s.scope(ctx, actor)
	if err != nil {
		return Totals{}, err
	}
	rows, err := s.st.ListImpacts(ctx, sc.impacts)
	if err != nil {
		return Totals{}, err
	}
	t := Totals{Collections: len(sc.collections)}
	for _, im := range rows {
		t.WasteAmount += im.WasteAmount
		t.WaterSaved += im.WaterSaved
		t.CO2Reduced += im.CO2Reduced
		t.TreesEquivalent += im.TreesEquivalent
		t.EnergyConserved += im.EnergyConserved
	}
	return t, nil
}

// Monthly returns the last Months calendar months, oldest first, with
// empty months present and zeroed.
func (s *Service) Monthly(ctx context.Context, actor auth.SessionUser) ([]Month, error) {
	sc, err := s.scope(ctx, actor)
	if err != nil {
		return nil, err
	}
	rows, err := s.st.ListImpacts(ctx, sc.impacts)
	if err != nil {
		return nil, err
	}

	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(Months - 1), 0)
	out := make([]Month, Months)
	index := make(map[string]int, Months)
	for i := range out {
		key := first.AddDate(0, i, 0).Format("2006-01")
		out[i].Month = key
		index[key] = i
	}
	for _, im := range rows {
		i, ok := index[im.CreatedAt.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		out[i].WasteAmount += im.WasteAmount
		out[i].CO2Reduced += im.CO2Reduced
	}
	return out, nil
}

// WasteTypes returns completed kg per waste type, largest first.
func (s *Service) WasteTypes(ctx context.Context, actor auth.SessionUser) ([]WasteTypeAmount, error) {
	sc, err := s.scope(ctx, actor)
	if err != nil {
		return nil, err
	}
	sums := map[string]float64{}
	for _, c := range sc.collections {
		if c.Status != models.StatusCompleted || c.WasteAmount == nil {
			continue
		}
		sums[c.WasteType] += *c.WasteAmount
	}
	out := make([]WasteTypeAmount, 0, len(sums))
	for wt, kg := range sums {
		out = append(out, WasteTypeAmount{WasteType: wt, Amount: kg})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].WasteType < out[j].WasteType
	})
	return out, nil
}
