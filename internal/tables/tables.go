// Package tables holds the owning entity tables for a loaded world. Every
// other package refers to entities through these tables; entities are shared
// by pointer with the tables as the single canonical owner.
package tables

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"crownlink/internal/models"
)

// celestialOffmapName identifies the one offmap power that receives
// celestial-emperor linkage.
const celestialOffmapName = "offmap_china"

// World is the full set of entity tables produced by the parse layer.
// Shapes are immutable after load; contents are annotated throughout the run.
type World struct {
	Version   string      `json:"version,omitempty"`
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"date"`
	Invasion  bool        `json:"invasion,omitempty"`

	Characters    map[int]*models.Character `json:"characters"`
	Provinces     map[int]*models.Province  `json:"provinces"`
	Titles        map[string]*models.Title  `json:"titles"`
	DynamicTitles map[string]*models.Title  `json:"dynamic_titles,omitempty"`
	Dynasties     map[int]*models.Dynasty   `json:"dynasties"`
	Wonders       map[int]*models.Wonder    `json:"wonders,omitempty"`
	Offmaps       map[int]*models.Offmap    `json:"offmaps,omitempty"`
	Relations     []models.Relation         `json:"relations,omitempty"`
}

// Load reads world tables from a JSON file emitted by the parse layer.
func Load(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tables file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes world tables from r.
func Read(r io.Reader) (*World, error) {
	var w World
	dec := json.NewDecoder(r)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding tables: %w", err)
	}
	w.init()
	return &w, nil
}

func (w *World) init() {
	if w.Characters == nil {
		w.Characters = map[int]*models.Character{}
	}
	if w.Provinces == nil {
		w.Provinces = map[int]*models.Province{}
	}
	if w.Titles == nil {
		w.Titles = map[string]*models.Title{}
	}
	if w.DynamicTitles == nil {
		w.DynamicTitles = map[string]*models.Title{}
	}
	if w.Dynasties == nil {
		w.Dynasties = map[int]*models.Dynasty{}
	}
	if w.Wonders == nil {
		w.Wonders = map[int]*models.Wonder{}
	}
	if w.Offmaps == nil {
		w.Offmaps = map[int]*models.Offmap{}
	}
}

// NewWorld returns an empty world with initialized tables, for tests and
// programmatic construction.
func NewWorld() *World {
	w := &World{}
	w.init()
	return w
}

// CelestialOffmap returns the offmap power eligible for celestial-emperor
// linkage, or nil if none is present.
func (w *World) CelestialOffmap() *models.Offmap {
	for _, offmap := range w.Offmaps {
		if offmap.Name == celestialOffmapName {
			return offmap
		}
	}
	return nil
}

// AddDynasties merges supplementary dynasty records. Existing IDs win:
// sources are consulted in priority order, so a record already present came
// from a higher-priority source.
func (w *World) AddDynasties(extra map[int]*models.Dynasty) int {
	added := 0
	for id, dynasty := range extra {
		if _, ok := w.Dynasties[id]; ok {
			continue
		}
		w.Dynasties[id] = dynasty
		added++
	}
	return added
}

// SortedTitleTags returns all title tags in ascending order, for
// deterministic iteration where processing order is observable.
func (w *World) SortedTitleTags() []string {
	tags := make([]string, 0, len(w.Titles))
	for tag := range w.Titles {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SortedCharacterIDs returns all character IDs in ascending order.
func (w *World) SortedCharacterIDs() []int {
	ids := make([]int, 0, len(w.Characters))
	for id := range w.Characters {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
