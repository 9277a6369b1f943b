// Package territory assigns provinces to independent titles and verifies
// the result. Aggregation walks each independent title's live vassal tree
// and unions the province sets below it; the sanity check is a watchdog
// that complains about overlapping ownership without correcting it.
package territory

import (
	"log/slog"
	"sort"

	"crownlink/internal/metrics"
	"crownlink/internal/models"
)

// Aggregator congregates and validates province ownership.
type Aggregator struct {
	logger *slog.Logger
}

// New creates an aggregator.
func New(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Congregate unions each independent title's subtree provinces into its own
// set and back-references the owning title on every collected province.
// Re-running without intervening restructuring reproduces the same
// assignment. Returns the total number of provinces held by independents.
func (a *Aggregator) Congregate(independent models.TitleSet) int {
	total := 0
	for _, tag := range independent.SortedTags() {
		title := independent[tag]
		title.CongregateProvinces(independent)
		for _, province := range title.Provinces {
			province.LoadHoldingTitle(title)
		}
		total += len(title.Provinces)
		metrics.Add(metrics.ProvincesCongregated, len(title.Provinces))
	}
	a.logger.Info("provinces held by independents", "count", total)
	return total
}

// SanityCheck reports every province claimed by more than one independent
// title. Violations are logged at warning level and returned for callers
// that want them; the run always continues.
func (a *Aggregator) SanityCheck(independent models.TitleSet) map[int][]string {
	claimants := map[int][]string{}
	for _, tag := range independent.SortedTags() {
		title := independent[tag]
		for id := range title.Provinces {
			claimants[id] = append(claimants[id], tag)
		}
	}

	violations := map[int][]string{}
	for id, owners := range claimants {
		if len(owners) > 1 {
			sort.Strings(owners)
			violations[id] = owners
		}
	}
	if len(violations) == 0 {
		a.logger.Info("province sanity check passed, all provinces accounted for")
		return violations
	}
	ids := make([]int, 0, len(violations))
	for id := range violations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		a.logger.Warn("province owned by multiple independents", "province", id, "owners", violations[id])
	}
	a.logger.Warn("province sanity check failed, excess provinces present", "violations", len(violations))
	return violations
}

// DropProvinceless removes independent titles that ended up with no
// provinces after congregation. Returns the number dropped.
func (a *Aggregator) DropProvinceless(independent models.TitleSet) int {
	var disposal []string
	for tag, title := range independent {
		if len(title.Provinces) == 0 {
			disposal = append(disposal, tag)
		}
	}
	for _, tag := range disposal {
		delete(independent, tag)
	}
	a.logger.Info("empty titles dropped", "dropped", len(disposal), "remaining", len(independent))
	return len(disposal)
}
