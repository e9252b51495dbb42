// Package types implements value types shared by the command line and the
// state selectors.
package types

import (
	"fmt"
	"time"
)

// Month is a month in a specific year, in UTC.
type Month time.Time

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the Month in which t occurs in UTC.
func MonthOf(t time.Time) Month {
	year, month, _ := t.UTC().Date()
	return NewMonth(year, month)
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q, use YYYY-MM: %w", s, err)
	}

	return MonthOf(t), nil
}

// String returns the month formatted as YYYY-MM, or "" for the zero month.
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

// Set parses s into m. Together with String and Type, it lets a Month be
// used as a command line flag.
func (m *Month) Set(s string) error {
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m *Month) Type() string {
	return "month"
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return time.Time(m).IsZero()
}

// AddDate adds a specified amount of years and months.
func (m Month) AddDate(years, months int) Month {
	return Month(time.Time(m).AddDate(years, months, 0))
}

// Range returns the first instant of the month and the first instant of the
// following month.
func (m Month) Range() (from, until time.Time) {
	return time.Time(m), time.Time(m.AddDate(0, 1))
}

// Contains reports whether the time instant is in the month.
func (m Month) Contains(t time.Time) bool {
	from, until := m.Range()
	return !t.Before(from) && t.Before(until)
}
