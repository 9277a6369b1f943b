package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Date is a game-calendar date in "year.month.day" form (e.g. "1066.9.15").
type Date struct {
	Year  int
	Month int
	Day   int
}

// NullDate is the reserved sentinel meaning "no date". A character whose
// death date equals NullDate is alive.
var NullDate = Date{Year: 1, Month: 1, Day: 1}

// ParseDate parses a "year.month.day" string. Missing components default to 1.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || parts[0] == "" {
		return Date{}, fmt.Errorf("parsing date %q: empty", s)
	}
	d := Date{Month: 1, Day: 1}
	for i, part := range parts {
		if i > 2 {
			break
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
		}
		switch i {
		case 0:
			d.Year = n
		case 1:
			d.Month = n
		case 2:
			d.Day = n
		}
	}
	return d, nil
}

// IsNull reports whether the date equals the null sentinel.
func (d Date) IsNull() bool {
	return d == NullDate
}

// IsZero reports whether the date is entirely unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// AddYears returns the date shifted by n years (n may be negative).
func (d Date) AddYears(n int) Date {
	d.Year += n
	return d
}

// String renders the date in save-file form.
func (d Date) String() string {
	return fmt.Sprintf("%d.%d.%d", d.Year, d.Month, d.Day)
}

// MarshalText implements encoding.TextMarshaler so dates round-trip as
// "year.month.day" strings in table files.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
