/*
daterange.go - Business-day counting, range membership, and the month grid

PURPOSE:
  The four engine operations the rest of the system is built on:

  BusinessDayCount  How many working days a leave entry consumes
  DateInRange       Membership test backing the two-click range picker
  MonthGrid         Full calendar-grid dates for a month view
  FormatDateRange   Human-readable rendering of an entry's span

CONTRACTS:
  All operations are total over well-formed YYYY-MM-DD strings. A string that
  fails to parse is reported as an error; it never degrades into a silently
  wrong count. Missing (empty) strings are a defined part of each contract,
  not an error: they mean "nothing selected".

SEE ALSO:
  - day.go: Day and HolidaySet
  - ledger: Snapshots BusinessDayCount results into entries at creation time
*/
package daterange

// =============================================================================
// BUSINESS DAY COUNT
// =============================================================================

// BusinessDayCount counts the days in the inclusive interval [start, end] that
// are neither a weekend day nor a member of holidays.
//
// Returns 0 (not an error) when either date is empty or start is strictly
// after end; ordering is the caller's responsibility and is never silently
// swapped here. Malformed dates are errors.
func BusinessDayCount(start, end string, holidays HolidaySet) (int, error) {
	if start == "" || end == "" {
		return 0, nil
	}

	from, err := ParseDay(start)
	if err != nil {
		return 0, err
	}
	to, err := ParseDay(end)
	if err != nil {
		return 0, err
	}

	if from.After(to) {
		return 0, nil
	}

	count := 0
	for d := from; !d.After(to); d = d.AddDays(1) {
		if d.IsWeekend() || holidays.Contains(d) {
			continue
		}
		count++
	}
	return count, nil
}

// =============================================================================
// RANGE MEMBERSHIP - Two-click selection support
// =============================================================================

// DateInRange reports whether d falls inside the selection described by start
// and end, either of which may be empty ("nothing selected yet"):
//
//   - start empty:           false, nothing is selected
//   - start only:            true exactly when d == start (single-day highlight)
//   - both present:          inclusive membership after normalizing so the
//                            earlier of the two bounds the range; the result is
//                            identical under swapped arguments
func DateInRange(d Day, start, end string) (bool, error) {
	if start == "" {
		return false, nil
	}

	from, err := ParseDay(start)
	if err != nil {
		return false, err
	}

	if end == "" {
		return d.Equal(from), nil
	}

	to, err := ParseDay(end)
	if err != nil {
		return false, err
	}

	if to.Before(from) {
		from, to = to, from
	}
	return !d.Before(from) && !d.After(to), nil
}

// =============================================================================
// MONTH GRID - Calendar view layout
// =============================================================================

// MonthGrid returns every date of the calendar grid for the month containing
// ref: from the Sunday on or before the first of the month through the
// Saturday on or after the last day. The result always has a length divisible
// by 7 and includes leading/trailing days from adjacent months.
func MonthGrid(ref Day) []Day {
	first := NewDay(ref.Year(), ref.Month(), 1)
	last := first.AddMonths(1).AddDays(-1)

	gridStart := first.AddDays(-int(first.Weekday()))
	gridEnd := last.AddDays(6 - int(last.Weekday()))

	var grid []Day
	for d := gridStart; !d.After(gridEnd); d = d.AddDays(1) {
		grid = append(grid, d)
	}
	return grid
}

// =============================================================================
// DISPLAY FORMATTING
// =============================================================================

// FormatDateRange renders a span for display: a single full date when start
// and end are equal, otherwise "Jan 2 - Jan 9, 2006" with the year only on
// the end date. Display concern only, never used in comparisons.
func FormatDateRange(start, end string) (string, error) {
	from, err := ParseDay(start)
	if err != nil {
		return "", err
	}
	if start == end {
		return from.Format("Jan 2, 2006"), nil
	}
	to, err := ParseDay(end)
	if err != nil {
		return "", err
	}
	return from.Format("Jan 2") + " - " + to.Format("Jan 2, 2006"), nil
}
