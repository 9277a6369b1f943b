package models

// Character is a single person in the loaded world. Raw reference fields
// (IDs and tags) come from the parse layer; pointer fields are populated by
// the linker and later stages. Characters are never destroyed during a run.
type Character struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Female     bool    `json:"female,omitempty"`
	Religion   string  `json:"religion,omitempty"`
	Culture    string  `json:"culture,omitempty"`
	Government string  `json:"government,omitempty"`
	Prestige   float64 `json:"prestige,omitempty"`
	BirthDate  Date    `json:"birth_date"`
	DeathDate  Date    `json:"death_date"`
	Job        string  `json:"job,omitempty"`
	HostID     int     `json:"host,omitempty"`

	// Raw references, resolved by the linker.
	DynastyID       int    `json:"dynasty,omitempty"`
	LiegeID         int    `json:"liege,omitempty"`
	SpouseID        int    `json:"spouse,omitempty"`
	MotherID        int    `json:"mother,omitempty"`
	FatherID        int    `json:"father,omitempty"`
	ChildrenIDs     []int  `json:"children,omitempty"`
	PrimaryTitleTag string `json:"primary_title,omitempty"`
	CapitalID       int    `json:"capital,omitempty"`

	// Resolved associations.
	Dynasty      *Dynasty           `json:"-"`
	Liege        *Character         `json:"-"`
	Spouse       *Character         `json:"-"`
	Mother       *Character         `json:"-"`
	Father       *Character         `json:"-"`
	Children     map[int]*Character `json:"-"`
	PrimaryTitle *Title             `json:"-"`
	Capital      *Province          `json:"-"`

	// Annotations added late in the pipeline.
	Heir          *Character         `json:"-"`
	CourtierNames map[string]bool    `json:"-"` // name -> male
	Advisers      map[int]*Character `json:"-"`
}

// Alive reports whether the character's death date is the null sentinel.
func (c *Character) Alive() bool {
	return c.DeathDate.IsNull()
}

// AddYears shifts the birth date back by n years, making the character older.
func (c *Character) AddYears(n int) {
	c.BirthDate = c.BirthDate.AddYears(-n)
}

// SetCourtierNames replaces the courtier name pool.
func (c *Character) SetCourtierNames(names map[string]bool) {
	c.CourtierNames = names
}

// SetAdvisers replaces the adviser set.
func (c *Character) SetAdvisers(advisers map[int]*Character) {
	c.Advisers = advisers
}
