// Package engine runs the conversion pipeline over a loaded world: linking,
// post-link sanity recovery, political restructuring, sovereignty
// classification, territory aggregation, succession and annotation. The
// pipeline is single-threaded and strictly ordered; every stage mutates the
// shared tables and later stages depend on those side effects.
package engine

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"crownlink/internal/annotate"
	"crownlink/internal/dynsource"
	"crownlink/internal/linker"
	"crownlink/internal/metrics"
	"crownlink/internal/models"
	"crownlink/internal/restructure"
	"crownlink/internal/sovereignty"
	"crownlink/internal/succession"
	"crownlink/internal/tables"
	"crownlink/internal/territory"
)

// Fatal load-boundary errors, surfaced for the upstream save loader. All
// anomalies past the table boundary are logged rather than returned.
var (
	ErrSaveCorrupt    = errors.New("save archive is corrupt or unreadable")
	ErrUnknownArchive = errors.New("unrecognized archive internal structure")
)

// Report summarizes a full conversion run.
type Report struct {
	RunID string `json:"run_id"`

	Linked              *linker.Report   `json:"linked"`
	InsaneCharacters    int              `json:"insane_characters"`
	BaroniesMerged      int              `json:"baronies_merged"`
	RevoltsMerged       int              `json:"revolts_merged"`
	IndependentTitles   int              `json:"independent_titles"`
	VassalsLiberated    int              `json:"vassals_liberated"`
	ProvincesHeld       int              `json:"provinces_held"`
	SanityViolations    int              `json:"sanity_violations"`
	ProvincelessDropped int              `json:"provinceless_dropped"`
	HeirsResolved       int              `json:"heirs_resolved"`
	Annotation          *annotate.Report `json:"annotation"`
}

// Engine orchestrates the pipeline.
type Engine struct {
	world   *tables.World
	opts    restructure.Options
	sources []dynsource.Source
	logger  *slog.Logger
	runID   string

	independent models.TitleSet
}

// New creates an engine over loaded tables. The supplementary sources are
// consulted, in order, only if post-link sanity fails.
func New(world *tables.World, opts restructure.Options, sources []dynsource.Source, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	return &Engine{
		world:   world,
		opts:    opts,
		sources: sources,
		logger:  logger.With("run_id", runID),
		runID:   runID,
	}
}

// Run executes the whole pipeline once and returns its report. Stage order
// is load-bearing; do not reorder.
func (e *Engine) Run() *Report {
	report := &Report{RunID: e.runID}

	report.Linked = linker.New(e.world, e.logger).Run()

	report.InsaneCharacters = e.verifyReligionsAndCultures()

	restructurer := restructure.New(e.world, e.opts, e.logger)
	report.BaroniesMerged = restructurer.MergeIndependentBaronies()
	report.RevoltsMerged = restructurer.MergeRevolts()
	restructurer.ShatterHRE()
	restructurer.ShatterEmpires()

	e.independent = sovereignty.New(e.world, e.logger).Classify()
	report.VassalsLiberated = restructurer.SplitVassals(e.independent)

	aggregator := territory.New(e.logger)
	report.ProvincesHeld = aggregator.Congregate(e.independent)
	report.SanityViolations = len(aggregator.SanityCheck(e.independent))
	report.ProvincelessDropped = aggregator.DropProvinceless(e.independent)

	report.HeirsResolved = succession.New(e.logger).Run(e.independent)

	report.Annotation = annotate.New(e.world, e.logger).Run(e.independent)

	report.IndependentTitles = len(e.independent)
	e.logger.Info("conversion pipeline complete",
		"independent_titles", report.IndependentTitles,
		"provinces_held", report.ProvincesHeld,
		"heirs_resolved", report.HeirsResolved)
	return report
}

// IndependentTitles returns the final independent-title set. Valid after Run.
func (e *Engine) IndependentTitles() models.TitleSet {
	return e.independent
}

// World returns the annotated tables.
func (e *Engine) World() *tables.World {
	return e.world
}

// insaneCharacters counts characters with a missing religion or culture.
func (e *Engine) insaneCharacters() int {
	count := 0
	for _, character := range e.world.Characters {
		if character.Religion == "" || character.Culture == "" {
			count++
		}
	}
	return count
}

// verifyReligionsAndCultures checks every character for religion and
// culture, and on failure works through the supplementary dynasty sources
// until sanity is reached or sources are exhausted. Exhaustion is a
// warning, never an error; the run proceeds with whatever data exists.
func (e *Engine) verifyReligionsAndCultures() int {
	insane := e.insaneCharacters()
	if insane == 0 {
		e.logger.Info("all characters are sane", "characters", len(e.world.Characters))
		return 0
	}
	e.logger.Warn("characters with lacking definitions, attempting recovery", "count", insane)

	for _, source := range e.sources {
		dynasties, err := source.Load()
		if err != nil {
			e.logger.Warn("supplementary source failed, skipping", "source", source.Name(), "error", err)
			continue
		}
		added := e.world.AddDynasties(dynasties)
		metrics.Add(metrics.DynastiesSupplemented, added)
		e.backfillFromDynasties()
		insane = e.insaneCharacters()
		e.logger.Info("supplementary dynasties merged", "source", source.Name(), "added", added, "still_insane", insane)
		if insane == 0 {
			e.logger.Info("all characters sanified, cancelling rummage", "characters", len(e.world.Characters))
			return 0
		}
	}
	if insane > 0 {
		e.logger.Warn("supplementary sources exhausted, proceeding with lacking definitions", "count", insane)
	}
	return insane
}

// backfillFromDynasties fills missing character religion/culture from their
// dynasty's definition, resolving dynasty links that newly became possible.
func (e *Engine) backfillFromDynasties() {
	for _, character := range e.world.Characters {
		if character.Religion != "" && character.Culture != "" {
			continue
		}
		if character.Dynasty == nil && character.DynastyID != 0 {
			if dynasty, ok := e.world.Dynasties[character.DynastyID]; ok {
				character.Dynasty = dynasty
			}
		}
		if character.Dynasty == nil {
			continue
		}
		if character.Religion == "" {
			character.Religion = character.Dynasty.Religion
		}
		if character.Culture == "" {
			character.Culture = character.Dynasty.Culture
		}
	}
}
