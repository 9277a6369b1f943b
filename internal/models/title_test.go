package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle_HasTier(t *testing.T) {
	tests := []struct {
		tag  string
		tier string
		want bool
	}{
		{"e_hre", TierEmpire, true},
		{"k_france", TierKingdom, true},
		{"d_normandy", TierDuchy, true},
		{"c_paris", TierCounty, true},
		{"b_montlhery", TierBarony, true},
		{"k_france", TierEmpire, false},
		{"e", TierEmpire, false},
	}
	for _, tt := range tests {
		title := &Title{Tag: tt.tag}
		assert.Equal(t, tt.want, title.HasTier(tt.tier), "tag %s tier %s", tt.tag, tt.tier)
	}
}

func TestTitle_Brick(t *testing.T) {
	holder := &Character{ID: 7}
	liege := &Title{Tag: "e_hre"}
	title := &Title{
		Tag:      "k_bavaria",
		Holder:   holder,
		HolderID: 7,
		Liege:    liege,
		LiegeTag: "e_hre",
		Vassals:  TitleSet{"d_salzburg": {Tag: "d_salzburg"}},
	}
	title.Brick()
	assert.Nil(t, title.Holder)
	assert.Zero(t, title.HolderID)
	assert.Nil(t, title.Liege)
	assert.Empty(t, title.LiegeTag)
	assert.Empty(t, title.Vassals)
}

func TestTitle_OverrideLiege(t *testing.T) {
	county := &Title{Tag: "c_venezia"}
	barony := &Title{Tag: "b_rialto", DeJureLiege: county, DeJureLiegeTag: "c_venezia"}

	barony.OverrideLiege()

	assert.Equal(t, county, barony.Liege)
	assert.Equal(t, "c_venezia", barony.LiegeTag)
	require.Contains(t, county.Vassals, "b_rialto")
	assert.Equal(t, barony, county.Vassals["b_rialto"])
}

func TestTitle_OverrideLiege_NoDeJure(t *testing.T) {
	barony := &Title{Tag: "b_rialto"}
	barony.OverrideLiege()
	assert.Nil(t, barony.Liege)
}

// buildTree wires a small kingdom: k holds two duchies, each duchy two
// counties, each county one province.
func buildTree() (*Title, map[string]*Title) {
	provinces := map[int]*Province{}
	next := 1
	newProvince := func() *Province {
		p := &Province{ID: next}
		provinces[next] = p
		next++
		return p
	}

	kingdom := &Title{Tag: "k_france", Vassals: TitleSet{}}
	all := map[string]*Title{"k_france": kingdom}
	for _, dTag := range []string{"d_normandy", "d_anjou"} {
		duchy := &Title{Tag: dTag, Vassals: TitleSet{}, Liege: kingdom, LiegeTag: "k_france"}
		kingdom.Vassals[dTag] = duchy
		all[dTag] = duchy
		for i := 0; i < 2; i++ {
			cTag := dTag + "_c" + string(rune('a'+i))
			p := newProvince()
			county := &Title{
				Tag:       "c_" + cTag,
				Liege:     duchy,
				LiegeTag:  dTag,
				Provinces: map[int]*Province{p.ID: p},
			}
			duchy.Vassals[county.Tag] = county
			all[county.Tag] = county
		}
	}
	return kingdom, all
}

func TestTitle_CoalesceProvinces(t *testing.T) {
	kingdom, _ := buildTree()
	coalesced := kingdom.CoalesceProvinces()
	assert.Len(t, coalesced, 4)
	// The stored set is untouched.
	assert.Empty(t, kingdom.Provinces)
}

func TestTitle_CongregateProvinces(t *testing.T) {
	kingdom, all := buildTree()
	kingdom.CongregateProvinces(TitleSet{"k_france": kingdom})
	assert.Len(t, kingdom.Provinces, 4)

	// Re-running without restructuring changes nothing.
	kingdom.CongregateProvinces(TitleSet{"k_france": kingdom})
	assert.Len(t, kingdom.Provinces, 4)

	// An independent vassal keeps its subtree to itself.
	duchy := all["d_normandy"]
	independent := TitleSet{"k_france": kingdom, "d_normandy": duchy}
	kingdom.Provinces = map[int]*Province{}
	kingdom.CongregateProvinces(independent)
	assert.Len(t, kingdom.Provinces, 2, "only d_anjou's counties remain under the kingdom")
}
