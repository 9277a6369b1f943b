// Package restructure applies the historical-fidelity transforms that turn
// the nominal feudal hierarchy into a de-facto political map: barony
// reassignment, revolt merging, HRE dissolution, empire shattering and
// vassal liberation. Transforms run in a fixed order and mutate liege/vassal
// links destructively.
package restructure

import (
	"log/slog"

	"crownlink/internal/config"
	"crownlink/internal/metrics"
	"crownlink/internal/models"
	"crownlink/internal/tables"
)

// LiberationMargin is the extra share of the liege's total claim a vassal
// must control, on top of an equal split, before it is set free. Domain
// policy, not a derivable figure.
const LiberationMargin = 0.10

// shatterProtectedKingdoms are kingdom-tier members that survive shattering
// intact. Hard historical overrides.
var shatterProtectedKingdoms = map[string]bool{
	"k_papal_state": true,
	"k_orthodox":    true,
}

// splitProtectedTags are titles whose vassals are never liberated.
var splitProtectedTags = map[string]bool{
	"k_papal_state":         true,
	"e_outremer":            true,
	"e_china_west_governor": true,
}

// Governments without a meaningful vassal-share concept.
var unsplittableGovernments = map[string]bool{
	"tribal_government":  true,
	"nomadic_government": true,
}

// Options control the configurable transforms.
type Options struct {
	HREMode config.HREMode
	HRETag  string // designated empire tag; empty when HRE mode is disabled
	Shatter config.ShatterMode
}

// Engine runs the restructuring transforms over the title graph.
type Engine struct {
	world  *tables.World
	opts   Options
	logger *slog.Logger
}

// New creates a restructuring engine.
func New(world *tables.World, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{world: world, opts: opts, logger: logger}
}

// MergeIndependentBaronies reattaches sovereign baronies under their de-jure
// county. A standalone barony should not remain a country of its own.
func (e *Engine) MergeIndependentBaronies() int {
	merged := 0
	for _, title := range e.world.Titles {
		if title.Holder == nil {
			continue
		}
		if title.LiegeTag != "" {
			continue
		}
		if !title.HasTier(models.TierBarony) {
			continue
		}
		if title.DeJureLiege == nil || !title.DeJureLiege.HasTier(models.TierCounty) {
			continue
		}
		title.OverrideLiege()
		merged++
		metrics.Inc(metrics.BaroniesMerged)
	}
	e.logger.Info("independent baronies reassigned", "count", merged)
	return merged
}

// MergeRevolts folds major-revolt titles back into their base titles. No-op
// when no revolts are present; folding strips the revolt title, so a second
// run changes nothing.
func (e *Engine) MergeRevolts() int {
	merged := 0
	for _, tag := range sortedTags(e.world.DynamicTitles) {
		title := e.world.DynamicTitles[tag]
		if !title.MajorRevolt || title.Base == nil {
			continue
		}
		for _, vassal := range title.Vassals {
			vassal.Liege = title.Base
			vassal.LiegeTag = title.Base.Tag
			title.Base.AddVassal(vassal)
		}
		title.Brick()
		title.Base = nil
		title.BaseTag = ""
		merged++
		metrics.Inc(metrics.RevoltsMerged)
	}
	if merged > 0 {
		e.logger.Info("revolt titles merged into base", "count", merged)
	}
	return merged
}

// ShatterHRE dissolves the designated empire. Kingdom members are always
// bricked regardless of the empire-shatter level; HRE kingdoms are over-tier
// constructs with no place on the converted map. Exactly one member, the
// first whose holder matches the empire's, is flagged emperor.
func (e *Engine) ShatterHRE() {
	if e.opts.HREMode == config.HREDisabled {
		e.logger.Info("HRE mechanics and shattering disabled by configuration")
		return
	}
	hre, ok := e.world.Titles[e.opts.HRETag]
	if !ok {
		e.logger.Info("HRE shattering cancelled, designated empire not found", "tag", e.opts.HRETag)
		return
	}
	if len(hre.Vassals) == 0 {
		e.logger.Info("HRE shattering cancelled, designated empire has no vassals", "tag", e.opts.HRETag)
		return
	}
	hreHolder := hre.Holder

	members := models.TitleSet{}
	for _, tag := range hre.Vassals.SortedTags() {
		vassal := hre.Vassals[tag]
		switch {
		case vassal.HasTier(models.TierDuchy) || vassal.HasTier(models.TierCounty):
			members[tag] = vassal
		case vassal.HasTier(models.TierKingdom):
			if shatterProtectedKingdoms[tag] {
				members[tag] = vassal
				continue
			}
			for subTag, subVassal := range vassal.Vassals {
				if subVassal.HasTier(models.TierDuchy) || subVassal.HasTier(models.TierCounty) {
					members[subTag] = subVassal
				}
			}
			vassal.Brick()
		case vassal.HasTier(models.TierBarony):
			// Baronies under an empire are save oddities; quietly ignored.
		default:
			e.logger.Warn("unrecognized HRE vassal", "tag", tag)
		}
	}

	emperorSet := false
	for _, tag := range members.SortedTags() {
		member := members[tag]
		if !emperorSet && hreHolder != nil && member.Holder != nil && member.Holder.ID == hreHolder.ID {
			// The emperor may hold several member duchies; the first found
			// carries the flag.
			member.HREEmperor = true
			emperorSet = true
		}
		member.InHRE = true
		member.ClearLiege()
		metrics.Inc(metrics.TitlesShattered)
	}

	hre.ClearVassals()
	hre.ClearHolder()
	e.logger.Info("HRE members released", "tag", e.opts.HRETag, "count", len(members))
}

// ShatterEmpires breaks up every remaining empire-tier title with vassals.
// Kingdom vassals either survive as members (kingdom-level shattering, or
// protected tags) or are absorbed and bricked (duchy-level shattering).
func (e *Engine) ShatterEmpires() {
	if e.opts.Shatter == config.ShatterDisabled {
		e.logger.Info("empire shattering disabled by configuration")
		return
	}
	shatterKingdoms := e.opts.Shatter == config.ShatterToDuchy

	for _, tag := range e.world.SortedTitleTags() {
		empire := e.world.Titles[tag]
		if !empire.HasTier(models.TierEmpire) {
			continue
		}
		if len(empire.Vassals) == 0 {
			continue
		}

		members := models.TitleSet{}
		for _, vassalTag := range empire.Vassals.SortedTags() {
			vassal := empire.Vassals[vassalTag]
			switch {
			case vassal.HasTier(models.TierDuchy) || vassal.HasTier(models.TierCounty):
				members[vassalTag] = vassal
			case vassal.HasTier(models.TierKingdom):
				if shatterKingdoms && !shatterProtectedKingdoms[vassalTag] {
					for subTag, subVassal := range vassal.Vassals {
						members[subTag] = subVassal
					}
					vassal.Brick()
				} else {
					members[vassalTag] = vassal
				}
			default:
				e.logger.Warn("unrecognized vassal tier", "tag", vassalTag, "empire", tag)
			}
		}

		for _, member := range members {
			member.ClearLiege()
			metrics.Inc(metrics.TitlesShattered)
		}

		empire.ClearVassals()
		empire.ClearHolder()
		e.logger.Info("empire shattered", "tag", tag, "members", len(members))
	}
}

// SplitVassals liberates oversized vassals of currently-independent titles.
// A vassal one tier below its liege is set free when it holds land under a
// different character and its territorial claim exceeds an equal share of
// the liege's total claim by more than the liberation margin. Liberated
// titles join the independent set in place.
func (e *Engine) SplitVassals(independent models.TitleSet) int {
	newIndeps := models.TitleSet{}

	for _, tag := range independent.SortedTags() {
		title := independent[tag]
		if splitProtectedTags[tag] {
			continue
		}
		if title.Holder == nil || unsplittableGovernments[title.Holder.Government] {
			continue
		}
		var vassalTier string
		switch {
		case title.HasTier(models.TierEmpire):
			vassalTier = models.TierKingdom
		case title.HasTier(models.TierKingdom):
			vassalTier = models.TierDuchy
		default:
			// Counties are never split.
			continue
		}

		relevantVassals := 0
		for _, vassal := range title.Vassals {
			if !vassal.HasTier(vassalTier) {
				continue
			}
			if len(vassal.CoalesceProvinces()) == 0 {
				continue
			}
			relevantVassals++
		}
		if relevantVassals == 0 {
			continue
		}

		provincesClaimed := title.CoalesceProvinces()
		total := float64(len(provincesClaimed))
		threshold := total/float64(relevantVassals) + LiberationMargin*total

		for _, vassalTag := range title.Vassals.SortedTags() {
			vassal := title.Vassals[vassalTag]
			if !vassal.HasTier(vassalTier) {
				continue
			}
			if vassal.Holder == nil {
				continue
			}
			if title.Holder != nil && vassal.Holder.ID == title.Holder.ID {
				// The liege's own demesne stays put.
				continue
			}
			claimed := len(vassal.CoalesceProvinces())
			if claimed == 0 {
				continue
			}
			if float64(claimed) > threshold {
				newIndeps[vassalTag] = vassal
			}
		}
	}

	for _, tag := range newIndeps.SortedTags() {
		vassal := newIndeps[tag]
		liege := vassal.Liege
		if liege != nil {
			liege.RegisterGeneratedVassal(vassal)
		}
		vassal.ClearLiege()
		vassal.RegisterGeneratedLiege(liege)
		independent[tag] = vassal
		metrics.Inc(metrics.VassalsLiberated)
	}
	e.logger.Info("vassals liberated from immediate integration", "count", len(newIndeps))
	return len(newIndeps)
}

func sortedTags(titles map[string]*models.Title) []string {
	set := models.TitleSet(titles)
	return set.SortedTags()
}
