package territory

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crownlink/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// realm builds an independent kingdom over one duchy with two one-province
// counties, plus a liberated duchy that kept its single county.
func realm() (models.TitleSet, map[int]*models.Province) {
	provinces := map[int]*models.Province{}
	newCounty := func(tag string, id int, liege *models.Title) *models.Title {
		p := &models.Province{ID: id}
		provinces[id] = p
		county := &models.Title{
			Tag:       tag,
			Liege:     liege,
			LiegeTag:  liege.Tag,
			Provinces: map[int]*models.Province{id: p},
		}
		liege.AddVassal(county)
		return county
	}

	kingdom := &models.Title{Tag: "k_france", Vassals: models.TitleSet{}}
	duchy := &models.Title{Tag: "d_anjou", Liege: kingdom, LiegeTag: "k_france", Vassals: models.TitleSet{}}
	kingdom.AddVassal(duchy)
	newCounty("c_anjou", 1, duchy)
	newCounty("c_maine", 2, duchy)

	// Liberated earlier: still hangs in the kingdom's vassal map but owns
	// its subtree outright.
	free := &models.Title{Tag: "d_brittany", Vassals: models.TitleSet{}}
	kingdom.AddVassal(free)
	newCounty("c_nantes", 3, free)

	return models.TitleSet{"k_france": kingdom, "d_brittany": free}, provinces
}

func TestAggregator_Congregate(t *testing.T) {
	independent, provinces := realm()
	total := New(testLogger()).Congregate(independent)

	assert.Equal(t, 3, total)

	kingdom := independent["k_france"]
	require.Len(t, kingdom.Provinces, 2, "the liberated duchy's county stays out")
	assert.Contains(t, kingdom.Provinces, 1)
	assert.Contains(t, kingdom.Provinces, 2)

	free := independent["d_brittany"]
	require.Len(t, free.Provinces, 1)
	assert.Contains(t, free.Provinces, 3)

	// Every collected province back-references its holding title.
	assert.Equal(t, kingdom, provinces[1].HoldingTitle)
	assert.Equal(t, kingdom, provinces[2].HoldingTitle)
	assert.Equal(t, free, provinces[3].HoldingTitle)
}

func TestAggregator_Congregate_Idempotent(t *testing.T) {
	independent, _ := realm()
	a := New(testLogger())
	first := a.Congregate(independent)
	second := a.Congregate(independent)
	assert.Equal(t, first, second)
	assert.Len(t, independent["k_france"].Provinces, 2)
}

func TestAggregator_SanityCheck(t *testing.T) {
	shared := &models.Province{ID: 7}
	a := &models.Title{Tag: "k_alpha", Provinces: map[int]*models.Province{7: shared}}
	b := &models.Title{Tag: "k_beta", Provinces: map[int]*models.Province{7: shared, 8: {ID: 8}}}
	independent := models.TitleSet{"k_alpha": a, "k_beta": b}

	violations := New(testLogger()).SanityCheck(independent)

	require.Len(t, violations, 1)
	assert.Equal(t, []string{"k_alpha", "k_beta"}, violations[7])
}

func TestAggregator_SanityCheck_Clean(t *testing.T) {
	independent, _ := realm()
	New(testLogger()).Congregate(independent)
	assert.Empty(t, New(testLogger()).SanityCheck(independent))
}

func TestAggregator_DropProvinceless(t *testing.T) {
	independent, _ := realm()
	agg := New(testLogger())
	agg.Congregate(independent)

	// A titular realm with no land anywhere.
	independent["d_mercenaries"] = &models.Title{Tag: "d_mercenaries"}

	dropped := agg.DropProvinceless(independent)

	assert.Equal(t, 1, dropped)
	assert.NotContains(t, independent, "d_mercenaries")
	assert.Contains(t, independent, "k_france")
	assert.Contains(t, independent, "d_brittany")
}
