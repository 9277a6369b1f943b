package models

import "sort"

// Tier prefixes encode a title's rank in the feudal hierarchy.
const (
	TierEmpire  = "e_"
	TierKingdom = "k_"
	TierDuchy   = "d_"
	TierCounty  = "c_"
	TierBarony  = "b_"
)

// Title is a landed or titular feudal title, identified by its tag.
// Liege/vassal links are rewritten destructively during restructuring;
// later stages see whatever the previous stage left behind.
type Title struct {
	Tag           string `json:"tag"`
	SuccessionLaw string `json:"succession_law,omitempty"`
	GenderLaw     string `json:"gender_law,omitempty"`
	MajorRevolt   bool   `json:"major_revolt,omitempty"`

	// Raw references, resolved by the linker.
	HolderID          int    `json:"holder,omitempty"`
	PreviousHolderIDs []int  `json:"previous_holders,omitempty"`
	LiegeTag          string `json:"liege,omitempty"`
	DeJureLiegeTag    string `json:"de_jure_liege,omitempty"`
	BaseTag           string `json:"base_title,omitempty"`
	ProvinceIDs       []int  `json:"provinces,omitempty"`

	// Resolved associations.
	Holder          *Character        `json:"-"`
	PreviousHolders []*Character      `json:"-"`
	Liege           *Title            `json:"-"`
	DeJureLiege     *Title            `json:"-"`
	Base            *Title            `json:"-"`
	Vassals         TitleSet          `json:"-"`
	DeJureVassals   TitleSet          `json:"-"`
	Provinces       map[int]*Province `json:"-"`

	// Flags and back-references set by the restructuring engine.
	InHRE            bool     `json:"-"`
	HREEmperor       bool     `json:"-"`
	GeneratedLiege   *Title   `json:"-"`
	GeneratedVassals TitleSet `json:"-"`
}

// HasTier reports whether the title's tag carries the given tier prefix.
func (t *Title) HasTier(prefix string) bool {
	return len(t.Tag) >= len(prefix) && t.Tag[:len(prefix)] == prefix
}

// ClearLiege severs the liege link, both the live association and the raw tag.
func (t *Title) ClearLiege() {
	t.Liege = nil
	t.LiegeTag = ""
}

// ClearVassals drops all vassal links.
func (t *Title) ClearVassals() {
	t.Vassals = TitleSet{}
}

// ClearHolder drops the holder, both the live association and the raw ID.
func (t *Title) ClearHolder() {
	t.Holder = nil
	t.HolderID = 0
}

// Brick strips the title of vassals, holder and liege, leaving an inert husk.
func (t *Title) Brick() {
	t.ClearVassals()
	t.ClearHolder()
	t.ClearLiege()
}

// AddVassal registers a vassal under this title.
func (t *Title) AddVassal(vassal *Title) {
	if t.Vassals == nil {
		t.Vassals = TitleSet{}
	}
	t.Vassals[vassal.Tag] = vassal
}

// OverrideLiege reattaches the title under its de-jure liege. Used by the
// barony merge, where a standalone barony rejoins its de-jure county.
func (t *Title) OverrideLiege() {
	if t.DeJureLiege == nil {
		return
	}
	t.Liege = t.DeJureLiege
	t.LiegeTag = t.DeJureLiegeTag
	t.DeJureLiege.AddVassal(t)
}

// RegisterGeneratedVassal records a vassal this title lost to liberation.
func (t *Title) RegisterGeneratedVassal(vassal *Title) {
	if t.GeneratedVassals == nil {
		t.GeneratedVassals = TitleSet{}
	}
	t.GeneratedVassals[vassal.Tag] = vassal
}

// RegisterGeneratedLiege records the former liege of a liberated title.
func (t *Title) RegisterGeneratedLiege(liege *Title) {
	t.GeneratedLiege = liege
}

// CoalesceProvinces computes the full province set of the title's subtree,
// walking every vassal recursively. The receiver's stored province set is
// not modified.
func (t *Title) CoalesceProvinces() map[int]*Province {
	found := map[int]*Province{}
	t.coalesceInto(found, map[string]bool{})
	return found
}

func (t *Title) coalesceInto(found map[int]*Province, seen map[string]bool) {
	if seen[t.Tag] {
		return
	}
	seen[t.Tag] = true
	for id, province := range t.Provinces {
		found[id] = province
	}
	for _, vassal := range t.Vassals {
		vassal.coalesceInto(found, seen)
	}
}

// CongregateProvinces unions the subtree's provinces into the title's own
// province set. The walk does not descend into vassals that are themselves
// members of the independent set; those own their provinces outright.
// Repeated calls without intervening restructuring are idempotent.
func (t *Title) CongregateProvinces(independent TitleSet) {
	found := map[int]*Province{}
	for id, province := range t.Provinces {
		found[id] = province
	}
	seen := map[string]bool{t.Tag: true}
	for _, vassal := range t.Vassals {
		vassal.congregateInto(found, independent, seen)
	}
	t.Provinces = found
}

func (t *Title) congregateInto(found map[int]*Province, independent TitleSet, seen map[string]bool) {
	if seen[t.Tag] {
		return
	}
	seen[t.Tag] = true
	if _, isIndep := independent[t.Tag]; isIndep {
		return
	}
	for id, province := range t.Provinces {
		found[id] = province
	}
	for _, vassal := range t.Vassals {
		vassal.congregateInto(found, independent, seen)
	}
}

// TitleSet is a tag-keyed collection of titles. The engine's working set of
// independent titles is a TitleSet.
type TitleSet map[string]*Title

// SortedTags returns the member tags in ascending order, for deterministic
// iteration where processing order is observable.
func (s TitleSet) SortedTags() []string {
	tags := make([]string, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
