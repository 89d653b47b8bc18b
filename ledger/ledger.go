/*
ledger.go - Ledger mutations and quota aggregation

PURPOSE:
  The Ledger is the single writer of system state. Every mutation updates the
  in-memory collection and then rewrites the affected storage channel in full.
  Reads are served from memory; quota summaries are recomputed on every read.

WRITE PATH:
  mutate in memory -> Save whole channel -> return record

  There is exactly one logical writer (the HTTP surface serializes through
  the ledger mutex), so no optimistic locking is needed.

ORDERING:
  The stored entry collection has no intrinsic order. Consumers that want
  recency or calendar order use the pure query methods EntriesByRecency and
  EntriesByStartDate; the stored order is never mutated as a rendering side
  effect.

SEE ALSO:
  - types.go: Record shapes and snapshot semantics
  - store.go: Channel persistence contract
  - daterange: Business-day computation
*/
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/leave-ledger/daterange"
)

// Ledger holds the entry and holiday collections and their derived quota
// aggregates. Construct with New; the zero value is not usable.
type Ledger struct {
	mu       sync.Mutex
	entries  []LeaveEntry
	holidays []PublicHoliday

	totals QuotaTotals
	store  Store
	logger *zap.Logger
}

// New loads both channels from the store and returns a ready Ledger.
//
// An absent holidays channel is first-run state and triggers seeding with the
// two default holidays for the current year. A channel that loads with an
// error (malformed persisted data) is logged and replaced by its empty or
// default form; startup never fails on bad payloads.
func New(ctx context.Context, store Store, totals QuotaTotals, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if totals == nil {
		totals = DefaultQuotaTotals()
	}

	l := &Ledger{
		totals: totals,
		store:  store,
		logger: logger,
	}

	entries, _, err := store.LoadEntries(ctx)
	if err != nil {
		logger.Warn("entries channel unreadable, starting empty", zap.Error(err))
		entries = nil
	}
	l.entries = entries

	holidays, present, err := store.LoadHolidays(ctx)
	if err != nil {
		logger.Warn("holidays channel unreadable, reseeding defaults", zap.Error(err))
		holidays = nil
		present = false
	}
	l.holidays = holidays

	if !present {
		if _, err := l.seedDefaultsLocked(ctx); err != nil {
			return nil, fmt.Errorf("seed default holidays: %w", err)
		}
	}

	return l, nil
}

// =============================================================================
// ENTRY MUTATIONS
// =============================================================================

// AddEntry books a new leave entry. The business-day count is snapshotted
// from the holiday set in effect right now and never recomputed afterwards.
//
// Quota is NOT checked here: exceeding the remaining balance is a
// presentation-layer policy, never a ledger rejection.
func (l *Ledger) AddEntry(ctx context.Context, typ LeaveType, start, end, description string) (LeaveEntry, error) {
	if _, err := ParseLeaveType(string(typ)); err != nil {
		return LeaveEntry{}, err
	}
	if err := validateRange(start, end); err != nil {
		return LeaveEntry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	days, err := daterange.BusinessDayCount(start, end, l.holidaySetLocked())
	if err != nil {
		return LeaveEntry{}, err
	}

	entry := LeaveEntry{
		ID:          uuid.NewString(),
		Type:        typ,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	updated := append(append([]LeaveEntry(nil), l.entries...), entry)
	if err := l.store.SaveEntries(ctx, updated); err != nil {
		return LeaveEntry{}, fmt.Errorf("persist entries: %w", err)
	}
	l.entries = updated

	l.logger.Info("leave entry added",
		zap.String("id", entry.ID),
		zap.String("type", string(entry.Type)),
		zap.Int("days", entry.Days))
	return entry, nil
}

// DeleteEntry removes the entry with the given id. Deleting an unknown id is
// a silent no-op; nothing is rewritten.
func (l *Ledger) DeleteEntry(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated := make([]LeaveEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.ID != id {
			updated = append(updated, e)
		}
	}
	if len(updated) == len(l.entries) {
		return nil
	}

	if err := l.store.SaveEntries(ctx, updated); err != nil {
		return fmt.Errorf("persist entries: %w", err)
	}
	l.entries = updated

	l.logger.Info("leave entry deleted", zap.String("id", id))
	return nil
}

// ProjectedDays computes the business-day cost a new entry over [start, end]
// would snapshot right now. Used by the presentation layer's quota gate
// before AddEntry is called.
func (l *Ledger) ProjectedDays(start, end string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return daterange.BusinessDayCount(start, end, l.holidaySetLocked())
}

// =============================================================================
// HOLIDAY MUTATIONS
// =============================================================================

// AddHoliday records a new public holiday. Duplicate dates are allowed.
// Existing entries keep their snapshotted day counts unchanged.
func (l *Ledger) AddHoliday(ctx context.Context, date, name string) (PublicHoliday, error) {
	if date == "" || name == "" {
		return PublicHoliday{}, ErrHolidayIncomplete
	}
	if _, err := daterange.ParseDay(date); err != nil {
		return PublicHoliday{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	holiday := PublicHoliday{
		ID:   uuid.NewString(),
		Date: date,
		Name: name,
	}

	updated := append(append([]PublicHoliday(nil), l.holidays...), holiday)
	if err := l.store.SaveHolidays(ctx, updated); err != nil {
		return PublicHoliday{}, fmt.Errorf("persist holidays: %w", err)
	}
	l.holidays = updated

	l.logger.Info("holiday added", zap.String("date", date), zap.String("name", name))
	return holiday, nil
}

// RemoveHoliday deletes a holiday by id. Unknown ids are a silent no-op.
// Existing entries keep their snapshotted day counts unchanged.
func (l *Ledger) RemoveHoliday(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	updated := make([]PublicHoliday, 0, len(l.holidays))
	for _, h := range l.holidays {
		if h.ID != id {
			updated = append(updated, h)
		}
	}
	if len(updated) == len(l.holidays) {
		return nil
	}

	if err := l.store.SaveHolidays(ctx, updated); err != nil {
		return fmt.Errorf("persist holidays: %w", err)
	}
	l.holidays = updated

	l.logger.Info("holiday removed", zap.String("id", id))
	return nil
}

// SeedDefaultHolidays appends the stock holidays for the current year:
// Christmas Day and New Year's Day. Also invoked automatically on first run.
func (l *Ledger) SeedDefaultHolidays(ctx context.Context) ([]PublicHoliday, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seedDefaultsLocked(ctx)
}

func (l *Ledger) seedDefaultsLocked(ctx context.Context) ([]PublicHoliday, error) {
	year := time.Now().Year()
	seeded := []PublicHoliday{
		{ID: uuid.NewString(), Date: fmt.Sprintf("%d-12-25", year), Name: "Christmas Day"},
		{ID: uuid.NewString(), Date: fmt.Sprintf("%d-01-01", year), Name: "New Year's Day"},
	}

	updated := append(append([]PublicHoliday(nil), l.holidays...), seeded...)
	if err := l.store.SaveHolidays(ctx, updated); err != nil {
		return nil, fmt.Errorf("persist holidays: %w", err)
	}
	l.holidays = updated

	l.logger.Info("default holidays seeded", zap.Int("count", len(seeded)))
	return seeded, nil
}

// =============================================================================
// QUERIES - Pure reads, never mutate stored order
// =============================================================================

// QuotaSummary recomputes per-type usage from the current entry collection.
// Remaining is total minus used, unclamped.
func (l *Ledger) QuotaSummary() map[LeaveType]Quota {
	l.mu.Lock()
	defer l.mu.Unlock()

	used := make(map[LeaveType]int, len(l.totals))
	for _, e := range l.entries {
		used[e.Type] += e.Days
	}

	summary := make(map[LeaveType]Quota, len(l.totals))
	for _, typ := range Types() {
		total := l.totals[typ]
		summary[typ] = Quota{
			Used:      used[typ],
			Total:     total,
			Remaining: total - used[typ],
		}
	}
	return summary
}

// Entries returns a copy of the entry collection in stored order.
func (l *Ledger) Entries() []LeaveEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LeaveEntry(nil), l.entries...)
}

// EntriesByRecency returns entries most-recently-created first.
func (l *Ledger) EntriesByRecency() []LeaveEntry {
	entries := l.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// EntriesByStartDate returns entries in calendar order.
func (l *Ledger) EntriesByStartDate() []LeaveEntry {
	entries := l.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartDate < entries[j].StartDate
	})
	return entries
}

// Holidays returns a copy of the holiday collection in stored order.
func (l *Ledger) Holidays() []PublicHoliday {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]PublicHoliday(nil), l.holidays...)
}

// HolidayDates returns the current holiday exclusion set.
func (l *Ledger) HolidayDates() daterange.HolidaySet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holidaySetLocked()
}

// Totals returns the configured annual allowance per leave type.
func (l *Ledger) Totals() QuotaTotals {
	totals := make(QuotaTotals, len(l.totals))
	for typ, n := range l.totals {
		totals[typ] = n
	}
	return totals
}

func (l *Ledger) holidaySetLocked() daterange.HolidaySet {
	set := make(daterange.HolidaySet, len(l.holidays))
	for _, h := range l.holidays {
		set[h.Date] = struct{}{}
	}
	return set
}

// validateRange enforces the caller-side normalization contract: both dates
// present, well-formed, start not after end.
func validateRange(start, end string) error {
	if start == "" || end == "" {
		return ErrInvalidRange
	}
	from, err := daterange.ParseDay(start)
	if err != nil {
		return err
	}
	to, err := daterange.ParseDay(end)
	if err != nil {
		return err
	}
	if from.After(to) {
		return fmt.Errorf("%w: %s after %s", ErrInvalidRange, start, end)
	}
	return nil
}
