package restructure

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crownlink/internal/config"
	"crownlink/internal/models"
	"crownlink/internal/tables"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newEngine(w *tables.World, opts Options) *Engine {
	return New(w, opts, testLogger())
}

// withProvinces gives a title n fresh provinces with IDs starting at base.
func withProvinces(title *models.Title, base, n int) {
	if title.Provinces == nil {
		title.Provinces = map[int]*models.Province{}
	}
	for i := 0; i < n; i++ {
		id := base + i
		title.Provinces[id] = &models.Province{ID: id}
	}
}

func TestMergeIndependentBaronies(t *testing.T) {
	w := tables.NewWorld()
	holder := &models.Character{ID: 1}

	county := &models.Title{Tag: "c_venezia"}
	duchy := &models.Title{Tag: "d_venice"}
	w.Titles["c_venezia"] = county
	w.Titles["d_venice"] = duchy

	// Sovereign barony under a de-jure county: merged.
	merged := &models.Title{Tag: "b_rialto", Holder: holder, HolderID: 1, DeJureLiege: county, DeJureLiegeTag: "c_venezia"}
	w.Titles["b_rialto"] = merged

	// Sovereign barony whose de-jure liege is a duchy: left alone.
	odd := &models.Title{Tag: "b_odd", Holder: holder, HolderID: 1, DeJureLiege: duchy, DeJureLiegeTag: "d_venice"}
	w.Titles["b_odd"] = odd

	// Barony with a liege already: not independent, untouched.
	vassal := &models.Title{Tag: "b_vassal", Holder: holder, HolderID: 1, LiegeTag: "c_venezia", Liege: county, DeJureLiege: county, DeJureLiegeTag: "c_venezia"}
	w.Titles["b_vassal"] = vassal

	count := newEngine(w, Options{}).MergeIndependentBaronies()

	assert.Equal(t, 1, count)
	assert.Equal(t, county, merged.Liege)
	require.Contains(t, county.Vassals, "b_rialto")
	assert.Nil(t, odd.Liege)
}

func TestMergeRevolts_Idempotent(t *testing.T) {
	w := tables.NewWorld()
	base := &models.Title{Tag: "k_france", Vassals: models.TitleSet{}}
	w.Titles["k_france"] = base

	rebelDuchy := &models.Title{Tag: "d_rebellious"}
	revolt := &models.Title{
		Tag:         "e_rebels_1",
		MajorRevolt: true,
		Base:        base,
		BaseTag:     "k_france",
		Vassals:     models.TitleSet{"d_rebellious": rebelDuchy},
	}
	rebelDuchy.Liege = revolt
	rebelDuchy.LiegeTag = "e_rebels_1"
	w.DynamicTitles["e_rebels_1"] = revolt

	e := newEngine(w, Options{})
	assert.Equal(t, 1, e.MergeRevolts())

	assert.Equal(t, base, rebelDuchy.Liege)
	require.Contains(t, base.Vassals, "d_rebellious")
	assert.Empty(t, revolt.Vassals)
	assert.Nil(t, revolt.Base)

	// Second run is a no-op.
	assert.Zero(t, e.MergeRevolts())
	assert.Equal(t, base, rebelDuchy.Liege)
}

func TestMergeRevolts_NoRevolts(t *testing.T) {
	w := tables.NewWorld()
	assert.Zero(t, newEngine(w, Options{}).MergeRevolts())
}

// hreWorld builds the §8 scenario: the HRE with two kingdom vassals, one of
// them the protected papal state, plus a duchy held by the emperor himself.
func hreWorld() (*tables.World, map[string]*models.Title) {
	w := tables.NewWorld()
	emperor := &models.Character{ID: 10}
	bavarianKing := &models.Character{ID: 20}
	pope := &models.Character{ID: 30}

	hre := &models.Title{Tag: "e_hre", Holder: emperor, HolderID: 10, Vassals: models.TitleSet{}}

	franconia := &models.Title{Tag: "d_franconia", Holder: emperor, HolderID: 10, Liege: hre, LiegeTag: "e_hre"}

	bavaria := &models.Title{Tag: "k_bavaria", Holder: bavarianKing, HolderID: 20, Liege: hre, LiegeTag: "e_hre", Vassals: models.TitleSet{}}
	salzburg := &models.Title{Tag: "d_salzburg", Holder: bavarianKing, HolderID: 20, Liege: bavaria, LiegeTag: "k_bavaria"}
	tyrol := &models.Title{Tag: "d_tyrol", Holder: bavarianKing, HolderID: 20, Liege: bavaria, LiegeTag: "k_bavaria"}
	bavaria.Vassals["d_salzburg"] = salzburg
	bavaria.Vassals["d_tyrol"] = tyrol

	papal := &models.Title{Tag: "k_papal_state", Holder: pope, HolderID: 30, Liege: hre, LiegeTag: "e_hre", Vassals: models.TitleSet{}}
	latium := &models.Title{Tag: "d_latium", Holder: pope, HolderID: 30, Liege: papal, LiegeTag: "k_papal_state"}
	papal.Vassals["d_latium"] = latium

	hre.Vassals["d_franconia"] = franconia
	hre.Vassals["k_bavaria"] = bavaria
	hre.Vassals["k_papal_state"] = papal

	all := map[string]*models.Title{
		"e_hre": hre, "d_franconia": franconia, "k_bavaria": bavaria,
		"d_salzburg": salzburg, "d_tyrol": tyrol, "k_papal_state": papal, "d_latium": latium,
	}
	for tag, title := range all {
		w.Titles[tag] = title
	}
	return w, all
}

func TestShatterHRE(t *testing.T) {
	w, all := hreWorld()
	e := newEngine(w, Options{HREMode: config.HREDefault, HRETag: "e_hre"})
	e.ShatterHRE()

	hre := all["e_hre"]
	assert.Empty(t, hre.Vassals)
	assert.Nil(t, hre.Holder)

	// Protected kingdom survives intact with its own vassals untouched.
	papal := all["k_papal_state"]
	assert.True(t, papal.InHRE)
	assert.Nil(t, papal.Liege)
	require.Contains(t, papal.Vassals, "d_latium")
	assert.Equal(t, papal, all["d_latium"].Liege)

	// The other kingdom is bricked and its duchies are liege-less members.
	bavaria := all["k_bavaria"]
	assert.Nil(t, bavaria.Holder)
	assert.Nil(t, bavaria.Liege)
	assert.Empty(t, bavaria.Vassals)
	for _, tag := range []string{"d_salzburg", "d_tyrol"} {
		member := all[tag]
		assert.True(t, member.InHRE, "%s should be flagged as HRE member", tag)
		assert.Nil(t, member.Liege, "%s should be liege-less", tag)
	}

	// Exactly one member carries the emperor flag: the first (by tag) held
	// by the empire's holder.
	emperors := 0
	for _, title := range all {
		if title.HREEmperor {
			emperors++
			assert.Equal(t, "d_franconia", title.Tag)
		}
	}
	assert.Equal(t, 1, emperors)
}

func TestShatterHRE_Disabled(t *testing.T) {
	w, all := hreWorld()
	newEngine(w, Options{HREMode: config.HREDisabled}).ShatterHRE()
	assert.NotEmpty(t, all["e_hre"].Vassals)
	assert.NotNil(t, all["e_hre"].Holder)
}

func TestShatterHRE_MissingDesignatedEmpire(t *testing.T) {
	w, all := hreWorld()
	newEngine(w, Options{HREMode: config.HREByzantium, HRETag: "e_byzantium"}).ShatterHRE()
	assert.NotEmpty(t, all["e_hre"].Vassals, "absent designated empire cancels shattering")
}

func empireWorld() (*tables.World, map[string]*models.Title) {
	w := tables.NewWorld()
	basileus := &models.Character{ID: 1}
	king := &models.Character{ID: 2}

	empire := &models.Title{Tag: "e_byzantium", Holder: basileus, HolderID: 1, Vassals: models.TitleSet{}}
	kingdom := &models.Title{Tag: "k_sicily", Holder: king, HolderID: 2, Liege: empire, LiegeTag: "e_byzantium", Vassals: models.TitleSet{}}
	palermo := &models.Title{Tag: "d_palermo", Holder: king, HolderID: 2, Liege: kingdom, LiegeTag: "k_sicily"}
	kingdom.Vassals["d_palermo"] = palermo
	thrace := &models.Title{Tag: "d_thrace", Holder: basileus, HolderID: 1, Liege: empire, LiegeTag: "e_byzantium"}
	achaia := &models.Title{Tag: "c_achaia", Holder: basileus, HolderID: 1, Liege: empire, LiegeTag: "e_byzantium"}

	empire.Vassals["k_sicily"] = kingdom
	empire.Vassals["d_thrace"] = thrace
	empire.Vassals["c_achaia"] = achaia

	all := map[string]*models.Title{
		"e_byzantium": empire, "k_sicily": kingdom, "d_palermo": palermo,
		"d_thrace": thrace, "c_achaia": achaia,
	}
	for tag, title := range all {
		w.Titles[tag] = title
	}
	return w, all
}

func TestShatterEmpires_ToKingdom(t *testing.T) {
	w, all := empireWorld()
	newEngine(w, Options{Shatter: config.ShatterToKingdom}).ShatterEmpires()

	empire := all["e_byzantium"]
	assert.Empty(t, empire.Vassals)
	assert.Nil(t, empire.Holder)

	// Kingdoms survive as members at kingdom-level shattering.
	kingdom := all["k_sicily"]
	assert.Nil(t, kingdom.Liege)
	assert.NotNil(t, kingdom.Holder)
	require.Contains(t, kingdom.Vassals, "d_palermo")

	assert.Nil(t, all["d_thrace"].Liege)
	assert.Nil(t, all["c_achaia"].Liege)
}

func TestShatterEmpires_ToDuchy(t *testing.T) {
	w, all := empireWorld()
	newEngine(w, Options{Shatter: config.ShatterToDuchy}).ShatterEmpires()

	kingdom := all["k_sicily"]
	assert.Nil(t, kingdom.Holder, "kingdom is bricked at duchy-level shattering")
	assert.Empty(t, kingdom.Vassals)
	assert.Nil(t, all["d_palermo"].Liege, "absorbed sub-vassal is released")
}

func TestShatterEmpires_Disabled(t *testing.T) {
	w, all := empireWorld()
	newEngine(w, Options{Shatter: config.ShatterDisabled}).ShatterEmpires()
	assert.NotEmpty(t, all["e_byzantium"].Vassals)
}

// splitWorld builds an independent kingdom with total claim T=10: the big
// duchy holds `big` provinces, a small duchy holds one, and the king's own
// county holds the rest.
func splitWorld(big int) (*tables.World, models.TitleSet, map[string]*models.Title) {
	w := tables.NewWorld()
	king := &models.Character{ID: 1}
	duke := &models.Character{ID: 2}
	smallDuke := &models.Character{ID: 3}

	kingdom := &models.Title{Tag: "k_target", Holder: king, HolderID: 1, Vassals: models.TitleSet{}}

	bigDuchy := &models.Title{Tag: "d_big", Holder: duke, HolderID: 2, Liege: kingdom, LiegeTag: "k_target"}
	withProvinces(bigDuchy, 100, big)

	smallDuchy := &models.Title{Tag: "d_small", Holder: smallDuke, HolderID: 3, Liege: kingdom, LiegeTag: "k_target"}
	withProvinces(smallDuchy, 200, 1)

	demesne := &models.Title{Tag: "c_home", Holder: king, HolderID: 1, Liege: kingdom, LiegeTag: "k_target"}
	withProvinces(demesne, 300, 10-big-1)

	kingdom.Vassals["d_big"] = bigDuchy
	kingdom.Vassals["d_small"] = smallDuchy
	kingdom.Vassals["c_home"] = demesne

	for tag, title := range map[string]*models.Title{
		"k_target": kingdom, "d_big": bigDuchy, "d_small": smallDuchy, "c_home": demesne,
	} {
		w.Titles[tag] = title
	}
	independent := models.TitleSet{"k_target": kingdom}
	all := map[string]*models.Title{"k_target": kingdom, "d_big": bigDuchy, "d_small": smallDuchy}
	return w, independent, all
}

func TestSplitVassals_ThresholdBoundary(t *testing.T) {
	// T=10, two relevant duchy vassals: threshold = 10/2 + 0.1*10 = 6.
	t.Run("exactly at threshold stays", func(t *testing.T) {
		w, independent, all := splitWorld(6)
		require.Len(t, all["k_target"].CoalesceProvinces(), 10)
		count := newEngine(w, Options{}).SplitVassals(independent)
		assert.Zero(t, count)
		assert.NotContains(t, independent, "d_big")
		assert.Equal(t, all["k_target"], all["d_big"].Liege)
	})

	t.Run("one above threshold is liberated", func(t *testing.T) {
		w, independent, all := splitWorld(7)
		count := newEngine(w, Options{}).SplitVassals(independent)
		assert.Equal(t, 1, count)
		require.Contains(t, independent, "d_big")
		big := all["d_big"]
		assert.Nil(t, big.Liege)
		assert.Equal(t, all["k_target"], big.GeneratedLiege)
		require.Contains(t, all["k_target"].GeneratedVassals, "d_big")
	})
}

func TestSplitVassals_SameHolderNotSplit(t *testing.T) {
	w, independent, all := splitWorld(7)
	// The big duchy is held by the king himself: his own land stays put.
	all["d_big"].Holder = all["k_target"].Holder
	all["d_big"].HolderID = all["k_target"].HolderID

	count := newEngine(w, Options{}).SplitVassals(independent)
	assert.Zero(t, count)
}

func TestSplitVassals_ProtectedTag(t *testing.T) {
	w, independent, all := splitWorld(7)
	kingdom := all["k_target"]
	delete(independent, "k_target")
	delete(w.Titles, "k_target")
	kingdom.Tag = "k_papal_state"
	w.Titles["k_papal_state"] = kingdom
	independent["k_papal_state"] = kingdom

	assert.Zero(t, newEngine(w, Options{}).SplitVassals(independent))
	assert.Equal(t, kingdom, all["d_big"].Liege)
}

func TestSplitVassals_UnsplittableGovernments(t *testing.T) {
	for _, government := range []string{"tribal_government", "nomadic_government"} {
		t.Run(government, func(t *testing.T) {
			w, independent, all := splitWorld(7)
			all["k_target"].Holder.Government = government
			assert.Zero(t, newEngine(w, Options{}).SplitVassals(independent))
		})
	}
}

func TestSplitVassals_CountiesNeverSplit(t *testing.T) {
	w := tables.NewWorld()
	count := &models.Character{ID: 1}
	mayor := &models.Character{ID: 2}
	county := &models.Title{Tag: "c_big", Holder: count, HolderID: 1, Vassals: models.TitleSet{}}
	barony := &models.Title{Tag: "b_huge", Holder: mayor, HolderID: 2, Liege: county, LiegeTag: "c_big"}
	withProvinces(barony, 100, 9)
	withProvinces(county, 200, 1)
	county.Vassals["b_huge"] = barony
	w.Titles["c_big"] = county
	w.Titles["b_huge"] = barony

	independent := models.TitleSet{"c_big": county}
	assert.Zero(t, newEngine(w, Options{}).SplitVassals(independent))
}
