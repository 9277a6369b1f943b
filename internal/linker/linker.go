// Package linker resolves every raw ID/tag reference stored during parsing
// into a live association between entities. Resolution order matters: each
// step may depend on all steps before it, never on steps after it. Dangling
// references are logged and skipped; the linker never fails hard on a single
// broken reference.
package linker

import (
	"log/slog"

	"crownlink/internal/metrics"
	"crownlink/internal/models"
	"crownlink/internal/tables"
)

// Report summarizes a linking run.
type Report struct {
	Resolved int `json:"resolved"`
	Dangling int `json:"dangling"`
}

// Linker wires the loaded tables into a live graph.
type Linker struct {
	world  *tables.World
	logger *slog.Logger
}

// New creates a linker over the given tables.
func New(world *tables.World, logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linker{world: world, logger: logger}
}

// Run performs every resolution step in the required order.
func (l *Linker) Run() *Report {
	report := &Report{}

	l.logger.Info("linking characters with dynasties")
	l.linkDynasties(report)
	l.logger.Info("linking characters with lieges and spouses")
	l.linkLiegesAndSpouses(report)
	l.logger.Info("linking characters with family")
	l.linkMothersAndFathers(report)
	l.logger.Info("linking characters with primary titles")
	l.linkPrimaryTitles(report)
	l.logger.Info("linking characters with capitals")
	l.linkCapitals(report)
	l.logger.Info("linking provinces with primary settlements")
	l.linkPrimarySettlements(report)
	l.logger.Info("linking provinces with wonders")
	l.linkWonders(report)
	l.logger.Info("linking titles with holders")
	l.linkHolders(report)
	l.logger.Info("linking titles with previous holders")
	l.linkPreviousHolders(report)
	l.logger.Info("linking titles with liege and de-jure liege titles")
	l.linkLieges(report)
	l.logger.Info("linking titles with vassals and de-jure vassals")
	l.linkVassals()
	l.logger.Info("linking titles with provinces")
	l.linkProvinces(report)
	l.logger.Info("linking titles with base titles")
	l.linkBaseTitles(report)
	l.logger.Info("linking the celestial emperor")
	l.linkCelestialEmperor()

	l.logger.Info("linking complete", "resolved", report.Resolved, "dangling", report.Dangling)
	return report
}

func (l *Linker) resolved(report *Report) {
	report.Resolved++
	metrics.Inc(metrics.LinksResolved)
}

func (l *Linker) dangling(report *Report, kind string, args ...any) {
	report.Dangling++
	metrics.Inc(metrics.LinksDangling)
	l.logger.Debug("dangling reference skipped", append([]any{"kind", kind}, args...)...)
}

func (l *Linker) linkDynasties(report *Report) {
	for _, character := range l.world.Characters {
		if character.DynastyID == 0 {
			continue
		}
		dynasty, ok := l.world.Dynasties[character.DynastyID]
		if !ok {
			l.dangling(report, "dynasty", "character", character.ID, "dynasty", character.DynastyID)
			continue
		}
		character.Dynasty = dynasty
		l.resolved(report)
	}
}

func (l *Linker) linkLiegesAndSpouses(report *Report) {
	for _, character := range l.world.Characters {
		if character.LiegeID != 0 {
			if liege, ok := l.world.Characters[character.LiegeID]; ok {
				character.Liege = liege
				l.resolved(report)
			} else {
				l.dangling(report, "liege", "character", character.ID, "liege", character.LiegeID)
			}
		}
		if character.SpouseID != 0 {
			if spouse, ok := l.world.Characters[character.SpouseID]; ok {
				character.Spouse = spouse
				l.resolved(report)
			} else {
				l.dangling(report, "spouse", "character", character.ID, "spouse", character.SpouseID)
			}
		}
	}
}

func (l *Linker) linkMothersAndFathers(report *Report) {
	registerChild := func(parent, child *models.Character) {
		if parent.Children == nil {
			parent.Children = map[int]*models.Character{}
		}
		parent.Children[child.ID] = child
	}
	for _, character := range l.world.Characters {
		if character.MotherID != 0 {
			if mother, ok := l.world.Characters[character.MotherID]; ok {
				character.Mother = mother
				registerChild(mother, character)
				l.resolved(report)
			} else {
				l.dangling(report, "mother", "character", character.ID, "mother", character.MotherID)
			}
		}
		if character.FatherID != 0 {
			if father, ok := l.world.Characters[character.FatherID]; ok {
				character.Father = father
				registerChild(father, character)
				l.resolved(report)
			} else {
				l.dangling(report, "father", "character", character.ID, "father", character.FatherID)
			}
		}
		for _, childID := range character.ChildrenIDs {
			if child, ok := l.world.Characters[childID]; ok {
				registerChild(character, child)
				l.resolved(report)
			} else {
				l.dangling(report, "child", "character", character.ID, "child", childID)
			}
		}
	}
}

// lookupTitle consults the main title table first, then dynamic titles.
func (l *Linker) lookupTitle(tag string) (*models.Title, bool) {
	if title, ok := l.world.Titles[tag]; ok {
		return title, true
	}
	title, ok := l.world.DynamicTitles[tag]
	return title, ok
}

func (l *Linker) linkPrimaryTitles(report *Report) {
	for _, character := range l.world.Characters {
		if character.PrimaryTitleTag == "" {
			continue
		}
		title, ok := l.lookupTitle(character.PrimaryTitleTag)
		if !ok {
			l.dangling(report, "primary_title", "character", character.ID, "title", character.PrimaryTitleTag)
			continue
		}
		character.PrimaryTitle = title
		l.resolved(report)
	}
}

func (l *Linker) linkCapitals(report *Report) {
	for _, character := range l.world.Characters {
		if character.CapitalID == 0 {
			continue
		}
		province, ok := l.world.Provinces[character.CapitalID]
		if !ok {
			l.dangling(report, "capital", "character", character.ID, "province", character.CapitalID)
			continue
		}
		character.Capital = province
		l.resolved(report)
	}
}

func (l *Linker) linkPrimarySettlements(report *Report) {
	for _, province := range l.world.Provinces {
		if province.PrimarySettlementTag == "" {
			continue
		}
		barony, ok := province.Baronies[province.PrimarySettlementTag]
		if !ok {
			l.dangling(report, "primary_settlement", "province", province.ID, "barony", province.PrimarySettlementTag)
			continue
		}
		province.PrimarySettlement = barony
		l.resolved(report)
	}
}

func (l *Linker) linkWonders(report *Report) {
	for _, wonder := range l.world.Wonders {
		if !wonder.Active || wonder.ProvinceID == 0 {
			continue
		}
		province, ok := l.world.Provinces[wonder.ProvinceID]
		if !ok {
			l.dangling(report, "wonder", "wonder", wonder.ID, "province", wonder.ProvinceID)
			continue
		}
		province.Wonder = wonder
		l.resolved(report)
	}
}

func (l *Linker) linkHolders(report *Report) {
	link := func(title *models.Title) {
		if title.HolderID == 0 {
			return
		}
		holder, ok := l.world.Characters[title.HolderID]
		if !ok {
			l.dangling(report, "holder", "title", title.Tag, "holder", title.HolderID)
			return
		}
		title.Holder = holder
		l.resolved(report)
	}
	for _, title := range l.world.Titles {
		link(title)
	}
	for _, title := range l.world.DynamicTitles {
		link(title)
	}
}

func (l *Linker) linkPreviousHolders(report *Report) {
	for _, title := range l.world.Titles {
		for _, id := range title.PreviousHolderIDs {
			holder, ok := l.world.Characters[id]
			if !ok {
				l.dangling(report, "previous_holder", "title", title.Tag, "holder", id)
				continue
			}
			title.PreviousHolders = append(title.PreviousHolders, holder)
			l.resolved(report)
		}
	}
}

func (l *Linker) linkLieges(report *Report) {
	link := func(title *models.Title) {
		if title.LiegeTag != "" {
			if liege, ok := l.lookupTitle(title.LiegeTag); ok {
				title.Liege = liege
				l.resolved(report)
			} else {
				l.dangling(report, "title_liege", "title", title.Tag, "liege", title.LiegeTag)
			}
		}
		if title.DeJureLiegeTag != "" {
			if liege, ok := l.lookupTitle(title.DeJureLiegeTag); ok {
				title.DeJureLiege = liege
				l.resolved(report)
			} else {
				l.dangling(report, "de_jure_liege", "title", title.Tag, "liege", title.DeJureLiegeTag)
			}
		}
	}
	for _, title := range l.world.Titles {
		link(title)
	}
	for _, title := range l.world.DynamicTitles {
		link(title)
	}
}

// linkVassals builds the reverse of the liege links resolved above.
func (l *Linker) linkVassals() {
	link := func(title *models.Title) {
		if title.Liege != nil {
			title.Liege.AddVassal(title)
		}
		if title.DeJureLiege != nil {
			if title.DeJureLiege.DeJureVassals == nil {
				title.DeJureLiege.DeJureVassals = models.TitleSet{}
			}
			title.DeJureLiege.DeJureVassals[title.Tag] = title
		}
	}
	for _, title := range l.world.Titles {
		link(title)
	}
	for _, title := range l.world.DynamicTitles {
		link(title)
	}
}

func (l *Linker) linkProvinces(report *Report) {
	for _, title := range l.world.Titles {
		for _, id := range title.ProvinceIDs {
			province, ok := l.world.Provinces[id]
			if !ok {
				l.dangling(report, "title_province", "title", title.Tag, "province", id)
				continue
			}
			if title.Provinces == nil {
				title.Provinces = map[int]*models.Province{}
			}
			title.Provinces[id] = province
			l.resolved(report)
		}
	}
}

func (l *Linker) linkBaseTitles(report *Report) {
	link := func(title *models.Title) {
		if title.BaseTag == "" {
			return
		}
		base, ok := l.lookupTitle(title.BaseTag)
		if !ok {
			l.dangling(report, "base_title", "title", title.Tag, "base", title.BaseTag)
			return
		}
		title.Base = base
		l.resolved(report)
	}
	for _, title := range l.world.Titles {
		link(title)
	}
	for _, title := range l.world.DynamicTitles {
		link(title)
	}
}

// linkCelestialEmperor resolves the one offmap polity that has a celestial
// emperor. Every unresolvable step aborts the linkage and says why; the rest
// of the run is unaffected.
func (l *Linker) linkCelestialEmperor() {
	offmap := l.world.CelestialOffmap()
	if offmap == nil {
		l.logger.Info("no celestial empire detected")
		return
	}
	if offmap.HolderID == 0 {
		l.logger.Info("celestial empire has no emperor")
		return
	}
	holder, ok := l.world.Characters[offmap.HolderID]
	if !ok {
		l.logger.Info("celestial emperor has no definition", "holder", offmap.HolderID)
		return
	}
	offmap.Holder = holder
	if holder.DynastyID == 0 {
		l.logger.Info("celestial emperor has no dynasty", "holder", holder.ID)
		return
	}
	dynasty, ok := l.world.Dynasties[holder.DynastyID]
	if !ok {
		l.logger.Info("celestial emperor's dynasty has no definition", "dynasty", holder.DynastyID)
		return
	}
	holder.Dynasty = dynasty
	l.logger.Info("celestial emperor linked", "holder", holder.ID)
}
