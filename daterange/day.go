/*
Package daterange is the pure date computation core of the leave ledger.

PURPOSE:
  This package contains every piece of calendar arithmetic the system needs:
  business-day counting, range membership for the two-click date picker, and
  month-grid generation for the calendar view. It has no dependencies on the
  rest of the repository and performs no I/O.

KEY CONCEPTS IN THIS FILE (day.go):
  - Day: A calendar date at day granularity (no time-of-day, no timezone)
  - HolidaySet: Membership set of formatted holiday dates
  - Layout: The single wire format for dates, "YYYY-MM-DD"

DESIGN PRINCIPLES:
  1. Purity: Every function is deterministic in its inputs
  2. Loud failure: Malformed date strings are errors, never silent zeros
  3. String dates at the boundary: The wire and storage format is the
     "2006-01-02" string; Day is the in-memory working form

SEE ALSO:
  - daterange.go: The engine operations built on Day
  - ledger: The consumer that snapshots business-day counts
*/
package daterange

import (
	"fmt"
	"time"
)

// Layout is the lexical format every date in the system uses.
const Layout = "2006-01-02"

// =============================================================================
// DAY - Calendar date at day granularity
// =============================================================================

// Day is a calendar date with no time component. The zero Day is not a valid
// date; construct through ParseDay or NewDay.
type Day struct {
	t time.Time
}

// NewDay builds a Day from components.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a date in the YYYY-MM-DD layout. Anything else is an error.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Day{t: t}, nil
}

// Today returns the current calendar date.
func Today() Day {
	now := time.Now()
	return NewDay(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }
func (d Day) IsZero() bool          { return d.t.IsZero() }

// Arithmetic
func (d Day) AddDays(n int) Day   { return Day{t: d.t.AddDate(0, 0, n)} }
func (d Day) AddMonths(n int) Day { return Day{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) DayOfMonth() int       { return d.t.Day() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

func (d Day) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// String renders the Day in the wire layout.
func (d Day) String() string { return d.t.Format(Layout) }

// Format renders the Day with an arbitrary time layout. Display use only.
func (d Day) Format(layout string) string { return d.t.Format(layout) }

// =============================================================================
// HOLIDAY SET - Exclusion set for business-day counting
// =============================================================================

// HolidaySet is a membership set of formatted date strings. Exclusion is an
// exact string match on the YYYY-MM-DD form, so duplicate holiday records
// collapse harmlessly.
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from formatted date strings.
func NewHolidaySet(dates ...string) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Contains reports whether the day is in the set.
func (h HolidaySet) Contains(d Day) bool {
	_, ok := h[d.String()]
	return ok
}
