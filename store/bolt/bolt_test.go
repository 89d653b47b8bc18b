package bolt_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-ledger/ledger"
	"github.com/warp/leave-ledger/store/bolt"
)

func newTestStore(t *testing.T) *bolt.Store {
	t.Helper()
	s, err := bolt.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestChannelsAbsentOnFreshDatabase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, present, err := s.LoadEntries(ctx)
	require.NoError(t, err)
	assert.False(t, present, "entries channel should not exist before first save")

	_, present, err = s.LoadHolidays(ctx)
	require.NoError(t, err)
	assert.False(t, present, "holidays channel should not exist before first save")
}

func TestEntriesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []ledger.LeaveEntry{
		{
			ID:          "e1",
			Type:        ledger.LeaveVacation,
			StartDate:   "2024-07-01",
			EndDate:     "2024-07-05",
			Days:        5,
			Description: "summer break",
			CreatedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        "e2",
			Type:      ledger.LeaveSick,
			StartDate: "2024-03-04",
			EndDate:   "2024-03-04",
			Days:      1,
			CreatedAt: time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC),
		},
	}
	require.NoError(t, s.SaveEntries(ctx, entries))

	loaded, present, err := s.LoadEntries(ctx)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, entries, loaded)
}

func TestHolidaysRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	holidays := []ledger.PublicHoliday{
		{ID: "h1", Date: "2024-12-25", Name: "Christmas Day"},
		{ID: "h2", Date: "2024-01-01", Name: "New Year's Day"},
	}
	require.NoError(t, s.SaveHolidays(ctx, holidays))

	loaded, present, err := s.LoadHolidays(ctx)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, holidays, loaded)
}

func TestSaveReplacesWholeChannel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveHolidays(ctx, []ledger.PublicHoliday{
		{ID: "h1", Date: "2024-12-25", Name: "Christmas Day"},
	}))
	require.NoError(t, s.SaveHolidays(ctx, []ledger.PublicHoliday{
		{ID: "h2", Date: "2024-01-01", Name: "New Year's Day"},
	}))

	loaded, _, err := s.LoadHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1, "second save should replace, not append")
	assert.Equal(t, "h2", loaded[0].ID)
}

func TestEmptySaveMarksChannelPresent(t *testing.T) {
	// Deleting the last entry persists an empty channel, which must not be
	// mistaken for first-run state on the next startup.
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEntries(ctx, nil))

	loaded, present, err := s.LoadEntries(ctx)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Empty(t, loaded)
}

func TestChannelsAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEntries(ctx, []ledger.LeaveEntry{{ID: "e1", Type: ledger.LeaveVacation}}))

	_, present, err := s.LoadHolidays(ctx)
	require.NoError(t, err)
	assert.False(t, present, "writing entries must not create the holidays channel")
}

func TestReopenPreservesData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reopen.db")
	ctx := context.Background()

	s, err := bolt.New(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveEntries(ctx, []ledger.LeaveEntry{{ID: "e1", Type: ledger.LeaveSick, Days: 2}}))
	require.NoError(t, s.Close())

	s, err = bolt.New(path)
	require.NoError(t, err)
	defer s.Close()

	loaded, present, err := s.LoadEntries(ctx)
	require.NoError(t, err)
	assert.True(t, present)
	require.Len(t, loaded, 1)
	assert.Equal(t, "e1", loaded[0].ID)
}
