// Package annotate gathers courtier name pools and adviser assignments for
// the holders of independent titles. Purely additive; no entity
// relationships are touched. The pools feed downstream name-flavor
// generation.
package annotate

import (
	"log/slog"

	"crownlink/internal/models"
	"crownlink/internal/tables"
)

// Report summarizes an annotation run.
type Report struct {
	Courtiers int `json:"courtiers"`
	Advisers  int `json:"advisers"`
}

// Annotator copies court information onto independent holders.
type Annotator struct {
	world  *tables.World
	logger *slog.Logger
}

// New creates an annotator.
func New(world *tables.World, logger *slog.Logger) *Annotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{world: world, logger: logger}
}

// Run registers every hosted character's name (tagged by sex) in the host's
// courtier pool, notes office holders as advisers, and copies both onto the
// holder of each independent title.
func (a *Annotator) Run(independent models.TitleSet) *Report {
	// host -> name -> male, and host -> advisers
	hostCourtiers := map[int]map[string]bool{}
	hostAdvisers := map[int]map[int]*models.Character{}

	for _, character := range a.world.Characters {
		if character.HostID == 0 {
			continue
		}
		if hostCourtiers[character.HostID] == nil {
			hostCourtiers[character.HostID] = map[string]bool{}
		}
		hostCourtiers[character.HostID][character.Name] = !character.Female
		if character.Job != "" {
			if hostAdvisers[character.HostID] == nil {
				hostAdvisers[character.HostID] = map[int]*models.Character{}
			}
			hostAdvisers[character.HostID][character.ID] = character
		}
	}

	report := &Report{}
	for _, title := range independent {
		holder := title.Holder
		if holder == nil {
			continue
		}
		if names, ok := hostCourtiers[holder.ID]; ok {
			holder.SetCourtierNames(names)
			report.Courtiers += len(names)
		}
		if advisers, ok := hostAdvisers[holder.ID]; ok {
			holder.SetAdvisers(advisers)
			report.Advisers += len(advisers)
		}
	}
	a.logger.Info("court gathered for independent holders", "courtiers", report.Courtiers, "advisers", report.Advisers)
	return report
}
