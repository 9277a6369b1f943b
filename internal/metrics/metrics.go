// Package metrics provides application-level counters using stdlib expvar.
// Counters are exported on the /debug/vars HTTP endpoint when the binary
// serves one; for the one-shot CLI they feed the final report.
package metrics

import "expvar"

// Pipeline counters.
var (
	LinksResolved         = expvar.NewInt("crownlink_links_resolved_total")
	LinksDangling         = expvar.NewInt("crownlink_links_dangling_total")
	BaroniesMerged        = expvar.NewInt("crownlink_baronies_merged_total")
	RevoltsMerged         = expvar.NewInt("crownlink_revolts_merged_total")
	TitlesShattered       = expvar.NewInt("crownlink_titles_shattered_total")
	VassalsLiberated      = expvar.NewInt("crownlink_vassals_liberated_total")
	ProvincesCongregated  = expvar.NewInt("crownlink_provinces_congregated_total")
	HeirsResolved         = expvar.NewInt("crownlink_heirs_resolved_total")
	DynastiesSupplemented = expvar.NewInt("crownlink_dynasties_supplemented_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }

// Add increments the given counter by n.
func Add(counter *expvar.Int, n int) { counter.Add(int64(n)) }
