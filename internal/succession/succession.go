// Package succession computes an heir for every independent title from its
// succession law, gender law and the holder's living children. Each title is
// resolved independently; there is no state across titles.
//
// Character IDs stand in for birth order: the upstream generator assigns
// higher IDs to younger characters, with the documented quirk that twins can
// be recorded with reversed IDs. The fixed id+1 lookahead in the
// primogeniture strategy compensates for that quirk.
package succession

import (
	"log/slog"
	"math"
	"sort"

	"crownlink/internal/metrics"
	"crownlink/internal/models"
)

// TanistryAgeOffset approximates an unknown elective successor as an aged
// sibling-generation stand-in. An intentional simplification, not a
// historical claim.
const TanistryAgeOffset = 35

// Gender laws.
const (
	GenderAgnatic      = "agnatic"
	GenderCognatic     = "cognatic"
	GenderTrueCognatic = "true_cognatic"
)

// Resolver assigns heirs to holders of independent titles.
type Resolver struct {
	logger *slog.Logger
}

// New creates a resolver.
func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Run resolves an heir for every independent title where the succession law
// is supported and a living candidate exists. Unsupported laws leave the
// holder without an heir. Returns the number of heirs assigned.
func (r *Resolver) Run(independent models.TitleSet) int {
	resolved := 0
	for _, tag := range independent.SortedTags() {
		title := independent[tag]
		holder := title.Holder
		if holder == nil {
			continue
		}
		before := holder.Heir

		switch title.SuccessionLaw {
		case "primogeniture", "elective_gavelkind", "gavelkind", "nomad_succession":
			r.resolvePrimogeniture(title.GenderLaw, holder)
		case "ultimogeniture":
			r.resolveUltimogeniture(title.GenderLaw, holder)
		case "tanistry", "eldership":
			r.resolveTanistry(title.GenderLaw, holder)
		case "turkish_succession":
			r.resolveTurkish(holder)
		default:
			r.logger.Debug("unsupported succession law, no heir assigned", "title", tag, "law", title.SuccessionLaw)
		}

		if holder.Heir != nil && holder.Heir != before {
			resolved++
			metrics.Inc(metrics.HeirsResolved)
		}
	}
	r.logger.Info("heirs resolved where possible", "count", resolved)
	return resolved
}

// livingChildren returns the holder's living children ordered by ascending
// character ID.
func livingChildren(holder *models.Character) []*models.Character {
	children := make([]*models.Character, 0, len(holder.Children))
	for _, child := range holder.Children {
		if !child.Alive() {
			continue
		}
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	return children
}

func (r *Resolver) resolvePrimogeniture(genderLaw string, holder *models.Character) {
	var son, daughter *models.Character
	for _, child := range livingChildren(holder) {
		if !child.Female {
			if son == nil {
				son = child
			} else if son.ID == child.ID-1 {
				// An adjacent-ID brother supersedes the pick; twins carry
				// reversed IDs in the save.
				son = child
			}
		} else {
			if daughter == nil {
				daughter = child
			} else if daughter.ID == child.ID-1 {
				daughter = child
			}
		}
	}
	if heir := pickByGenderLaw(genderLaw, son, daughter, true); heir != nil {
		holder.Heir = heir
	}
}

func (r *Resolver) resolveUltimogeniture(genderLaw string, holder *models.Character) {
	children := livingChildren(holder)
	var son, daughter *models.Character
	for i := len(children) - 1; i >= 0; i-- {
		child := children[i]
		if !child.Female && son == nil {
			son = child
		}
		if child.Female && daughter == nil {
			daughter = child
		}
	}
	if heir := pickByGenderLaw(genderLaw, son, daughter, false); heir != nil {
		holder.Heir = heir
	}
}

// resolveTanistry has no way to know an elective successor, so it takes the
// primogeniture heir and ages them a generation.
func (r *Resolver) resolveTanistry(genderLaw string, holder *models.Character) {
	r.resolvePrimogeniture(genderLaw, holder)
	if holder.Heir != nil {
		holder.Heir.AddYears(TanistryAgeOffset)
	}
}

// resolveTurkish picks the living child with the highest rounded prestige.
// The tie-break on equal rounded prestige is not a specified behavior; the
// lower character ID wins purely for determinism.
func (r *Resolver) resolveTurkish(holder *models.Character) {
	children := livingChildren(holder)
	if len(children) == 0 {
		return
	}
	sort.SliceStable(children, func(i, j int) bool {
		pi := int(math.Round(children[i].Prestige))
		pj := int(math.Round(children[j].Prestige))
		if pi != pj {
			return pi > pj
		}
		return children[i].ID < children[j].ID
	})
	holder.Heir = children[0]
}

// pickByGenderLaw resolves the son/daughter candidates against the title's
// gender law. The adjacency override only applies to the primogeniture
// strategy; ultimogeniture's otherwise-parallel logic does without it.
func pickByGenderLaw(genderLaw string, son, daughter *models.Character, adjacencyOverride bool) *models.Character {
	switch genderLaw {
	case GenderAgnatic:
		if son != nil {
			return son
		}
		return nil
	case GenderCognatic:
		if son != nil {
			return son
		}
		return daughter
	case GenderTrueCognatic:
		if son == nil {
			return daughter
		}
		if daughter == nil {
			return son
		}
		pick := daughter
		if son.ID < daughter.ID {
			pick = son
		}
		if adjacencyOverride {
			// Twin-ID correction: adjacent IDs flip the choice.
			if son.ID == daughter.ID-1 {
				pick = daughter
			}
			if daughter.ID == son.ID-1 {
				pick = son
			}
		}
		return pick
	default:
		return nil
	}
}
