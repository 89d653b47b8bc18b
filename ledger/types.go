/*
Package ledger is the in-memory collection of leave entries and public
holidays, together with the quota aggregates derived from them.

PURPOSE:
  The Ledger owns all mutable state in the system: the leave entries, the
  holiday calendar, and nothing else. All date arithmetic is delegated to the
  daterange package; all durability is delegated to an injected Store.

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveType: Closed set of tracked leave categories (vacation, sick)
  - LeaveEntry: An immutable leave booking with its day count snapshot
  - PublicHoliday: A user-managed calendar exclusion
  - Quota / QuotaTotals: Fixed annual allowances and derived usage

SNAPSHOT SEMANTICS:
  An entry's Days value is computed once, at creation time, against the
  holiday set in effect at that moment. Editing holidays later does NOT
  recompute existing entries. Remaining balances are therefore allowed to go
  negative and are never clamped.

SEE ALSO:
  - ledger.go: Mutations and quota aggregation
  - store.go: Persistence contract
*/
package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// LEAVE TYPE - Closed set
// =============================================================================

type LeaveType string

const (
	LeaveVacation LeaveType = "VACATION"
	LeaveSick     LeaveType = "SICK"
)

// Types lists every tracked leave type in a stable order.
func Types() []LeaveType {
	return []LeaveType{LeaveVacation, LeaveSick}
}

// ParseLeaveType validates a wire value against the closed set.
func ParseLeaveType(s string) (LeaveType, error) {
	switch LeaveType(s) {
	case LeaveVacation, LeaveSick:
		return LeaveType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLeaveType, s)
}

// =============================================================================
// RECORDS
// =============================================================================

// LeaveEntry is a single leave booking. Entries are immutable once created;
// corrections are delete-and-recreate. Days is the business-day snapshot taken
// at creation time (see package comment).
type LeaveEntry struct {
	ID          string    `json:"id"`
	Type        LeaveType `json:"type"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Days        int       `json:"days"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PublicHoliday is a user-configured non-working day. Dates are not
// deduplicated; duplicates double-count as exclusions harmlessly because
// exclusion is a set-membership test.
type PublicHoliday struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// QUOTA - Derived, never stored
// =============================================================================

// Quota is the derived usage picture for one leave type. Remaining is
// deliberately unclamped: entries created under a different holiday
// configuration may push it negative.
type Quota struct {
	Used      int `json:"used"`
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
}

// QuotaTotals is the fixed annual allowance per leave type. Process-wide
// configuration, not per-entry state.
type QuotaTotals map[LeaveType]int

// DefaultQuotaTotals mirrors the stock annual allowances.
func DefaultQuotaTotals() QuotaTotals {
	return QuotaTotals{
		LeaveVacation: 20,
		LeaveSick:     14,
	}
}
