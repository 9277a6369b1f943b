package models

// Province is a map province. Its holding title is assigned during province
// congregation; before that it only knows its own settlements.
type Province struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name,omitempty"`
	Religion             string `json:"religion,omitempty"`
	Culture              string `json:"culture,omitempty"`
	PrimarySettlementTag string `json:"primary_settlement,omitempty"`

	Baronies map[string]*Barony `json:"baronies,omitempty"`

	// Resolved associations.
	PrimarySettlement *Barony `json:"-"`
	Wonder            *Wonder `json:"-"`
	HoldingTitle      *Title  `json:"-"`
}

// LoadHoldingTitle records the independent title that owns this province.
func (p *Province) LoadHoldingTitle(title *Title) {
	p.HoldingTitle = title
}

// Barony is a settlement inside a province (castle, city or temple).
type Barony struct {
	Tag       string          `json:"tag"`
	Type      string          `json:"type,omitempty"`
	Buildings map[string]bool `json:"buildings,omitempty"`
}

// Wonder is a great monument under construction or completed in a province.
type Wonder struct {
	ID         int    `json:"id"`
	Type       string `json:"type,omitempty"`
	Name       string `json:"name,omitempty"`
	Stage      int    `json:"stage,omitempty"`
	Active     bool   `json:"active,omitempty"`
	ProvinceID int    `json:"province,omitempty"`
}
