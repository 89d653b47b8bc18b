/*
store.go - Persistence contract and sentinel errors

PURPOSE:
  Defines the interface between the Ledger and durable storage, plus the
  sentinel errors the package signals with.

CHANNEL MODEL:
  Storage is two independent logical channels, "entries" and "holidays".
  Each Save call replaces the channel's whole value; there are no
  incremental writes. Each Load reports whether the channel existed at all,
  which is how first-run holiday seeding is triggered: an absent channel is
  different from a present-but-empty one.

IMPLEMENTATIONS:
  - store/bolt:   BoltDB file store (default)
  - store/sqlite: SQLite-backed channel table
  - store/memory: In-memory store for tests

SEE ALSO:
  - ledger.go: The single writer of both channels
*/
package ledger

import (
	"context"
	"errors"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownLeaveType is returned when a value outside the closed
	// LeaveType set reaches the ledger.
	ErrUnknownLeaveType = errors.New("unknown leave type")

	// ErrInvalidRange is returned when an entry's dates are missing or the
	// start is strictly after the end. Callers are expected to normalize
	// before the ledger is reached; the ledger still refuses rather than
	// recording a zero-day entry.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrHolidayIncomplete is returned when a holiday is missing its date
	// or name.
	ErrHolidayIncomplete = errors.New("holiday requires date and name")
)

// =============================================================================
// STORE - Two-channel durable storage
// =============================================================================

// Channel names used by every Store implementation.
const (
	ChannelEntries  = "entries"
	ChannelHolidays = "holidays"
)

// Store persists the two ledger collections as independent channels. Save
// replaces the channel's entire value. Load's second return reports channel
// presence so the caller can distinguish "never written" from "empty".
type Store interface {
	LoadEntries(ctx context.Context) ([]LeaveEntry, bool, error)
	SaveEntries(ctx context.Context, entries []LeaveEntry) error

	LoadHolidays(ctx context.Context) ([]PublicHoliday, bool, error)
	SaveHolidays(ctx context.Context, holidays []PublicHoliday) error

	Close() error
}
