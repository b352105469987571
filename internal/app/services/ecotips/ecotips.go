// internal/app/services/ecotips/ecotips.go

// Package ecotips serves sustainability tips from the store, falling back
// to a built-in set when the store has none or cannot be read.
package ecotips

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Builtin is the fallback tip set.
var Builtin = []models.EcoTip{
	{ID: "builtin-1", Title: "Rinse before you recycle", Category: "recycling", WasteType: models.WastePlastic,
		Content: "Food residue can spoil a whole bale of plastic. A quick rinse keeps your containers recyclable."},
	{ID: "builtin-2", Title: "Flatten your boxes", Category: "recycling", WasteType: models.WastePaper,
		Content: "Flattened cardboard takes a fraction of the space and makes each pickup go further."},
	{ID: "builtin-3", Title: "Keep glass whole", Category: "recycling", WasteType: models.WasteGlass,
		Content: "Broken glass is hard to sort and dangerous to handle. Put bottles and jars out intact."},
	{ID: "builtin-4", Title: "Start a compost bin", Category: "reduction", WasteType: models.WasteOrganic,
		Content: "Kitchen scraps make up a large share of household waste and turn into rich soil in a few months."},
	{ID: "builtin-5", Title: "Drop off old electronics", Category: "safety", WasteType: models.WasteElectronic,
		Content: "Batteries and circuit boards contain metals that should never go to landfill. Use a certified center."},
	{ID: "builtin-6", Title: "Crush your cans", Category: "recycling", WasteType: models.WasteMetal,
		Content: "Aluminium can be recycled endlessly. Crushed cans save space and are worth more to recyclers."},
	{ID: "builtin-7", Title: "Carry a reusable bag", Category: "reduction",
		Content: "The greenest waste is the waste you never create. Keep a bag by the door for shopping trips."},
	{ID: "builtin-8", Title: "Schedule pickups together", Category: "general",
		Content: "Grouping your recyclables into one larger pickup cuts the collector's fuel use per kilogram."},
}

// Service lists tips.
type Service struct {
	tips store.EcoTips
	log  *zap.Logger
}

// New returns a Service.
func New(tips store.EcoTips, logger *zap.Logger) *Service {
	return &Service{tips: tips, log: logger}
}

// List returns tips for wasteType (plus general tips); an empty wasteType
// returns all. limit <= 0 means no limit.
func (s *Service) List(ctx context.Context, wasteType string, limit int) []models.EcoTip {
	wasteType = strings.ToLower(strings.TrimSpace(wasteType))
	tips, err := s.tips.ListEcoTips(ctx, wasteType, limit)
	if err != nil {
		s.log.Warn("eco tips unavailable, using built-in set", zap.Error(err))
	}
	if err == nil && len(tips) > 0 {
		return tips
	}
	return builtin(wasteType, limit)
}

func builtin(wasteType string, limit int) []models.EcoTip {
	out := make([]models.EcoTip, 0, len(Builtin))
	for _, t := range Builtin {
		if wasteType != "" && t.WasteType != "" && t.WasteType != wasteType {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Seed copies the built-in set into an empty store.
func (s *Service) Seed(ctx context.Context) (int, error) {
	existing, err := s.tips.ListEcoTips(ctx, "", 1)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i, t := range Builtin {
		t.ID = uuid.NewString()
		t.CreatedAt = now
		if err := s.tips.CreateEcoTip(ctx, &t); err != nil {
			return i, err
		}
	}
	s.log.Info("seeded eco tips", zap.Int("count", len(Builtin)))
	return len(Builtin), nil
}
