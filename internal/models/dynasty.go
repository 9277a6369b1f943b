package models

// Dynasty is a family line. Referenced weakly by characters and never
// mutated after load. Religion and culture, when present, backfill members
// whose own records lack them.
type Dynasty struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Religion string `json:"religion,omitempty"`
	Culture  string `json:"culture,omitempty"`
}

// Offmap is an off-map power (the celestial empire being the only one the
// engine treats specially).
type Offmap struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	HolderID int    `json:"holder,omitempty"`

	Holder *Character `json:"-"`
}

// Relation is a single directed diplomatic relation between two characters.
type Relation struct {
	FirstID  int    `json:"first"`
	SecondID int    `json:"second"`
	Type     string `json:"type,omitempty"`
}
