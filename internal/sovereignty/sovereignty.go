// Package sovereignty decides which titles are genuinely independent.
// A title with a resolved holder and no liege is only a candidate; the
// holder must also hold at least one county-tier title somewhere in the
// graph, which separates real rulers from landless titular holders such as
// mercenary captains or claimants.
package sovereignty

import (
	"log/slog"

	"crownlink/internal/models"
	"crownlink/internal/tables"
)

// Classifier computes the independent-title set.
type Classifier struct {
	world  *tables.World
	logger *slog.Logger
}

// New creates a classifier over the given tables.
func New(world *tables.World, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{world: world, logger: logger}
}

// Classify returns the set of genuinely independent titles, keyed by tag.
func (c *Classifier) Classify() models.TitleSet {
	candidates := models.TitleSet{}
	for tag, title := range c.world.Titles {
		if title.Holder == nil {
			continue
		}
		if title.LiegeTag != "" {
			continue
		}
		candidates[tag] = title
	}

	// Holders of any county-tier title control real land. Only the holder
	// matters; no recursion needed, since a character holding a landless
	// titular title alongside an actual county is independent either way.
	countyHolders := map[int]bool{}
	for _, title := range c.world.Titles {
		if title.Holder != nil && title.HasTier(models.TierCounty) {
			countyHolders[title.Holder.ID] = true
		}
	}

	independent := models.TitleSet{}
	for tag, title := range candidates {
		if countyHolders[title.Holder.ID] {
			independent[tag] = title
		}
	}
	c.logger.Info("independent titles recognized", "count", len(independent), "candidates", len(candidates))
	return independent
}
