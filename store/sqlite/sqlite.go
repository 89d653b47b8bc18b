/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Alternate driver to the default BoltDB store, for deployments that prefer a
  SQL file (or an in-memory database via ":memory:"). The storage model is
  identical: one row per logical channel, holding the channel's whole JSON
  blob. No relational schema is imposed on the records themselves - the
  ledger's write model is replace-whole-value, and the table mirrors that.

SCHEMA:
  channels(name TEXT PRIMARY KEY, payload BLOB, updated_at TEXT)

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block the
  single writer, and crash recovery is better than rollback-journal mode.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Channel contract
  - store/bolt: Default driver
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/leave-ledger/ledger"
)

// Store implements ledger.Store on a SQLite channels table.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS channels (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) LoadEntries(ctx context.Context) ([]ledger.LeaveEntry, bool, error) {
	var entries []ledger.LeaveEntry
	present, err := s.load(ctx, ledger.ChannelEntries, &entries)
	return entries, present, err
}

func (s *Store) SaveEntries(ctx context.Context, entries []ledger.LeaveEntry) error {
	if entries == nil {
		entries = []ledger.LeaveEntry{}
	}
	return s.save(ctx, ledger.ChannelEntries, entries)
}

func (s *Store) LoadHolidays(ctx context.Context) ([]ledger.PublicHoliday, bool, error) {
	var holidays []ledger.PublicHoliday
	present, err := s.load(ctx, ledger.ChannelHolidays, &holidays)
	return holidays, present, err
}

func (s *Store) SaveHolidays(ctx context.Context, holidays []ledger.PublicHoliday) error {
	if holidays == nil {
		holidays = []ledger.PublicHoliday{}
	}
	return s.save(ctx, ledger.ChannelHolidays, holidays)
}

// load reads a channel row into out. present=false means the channel was
// never written (first run).
func (s *Store) load(ctx context.Context, channel string, out any) (bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM channels WHERE name = ?`, channel).Scan(&blob)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read channel %s: %w", channel, err)
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return true, fmt.Errorf("decode channel %s: %w", channel, err)
	}
	return true, nil
}

// save upserts the channel's whole blob.
func (s *Store) save(ctx context.Context, channel string, value any) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode channel %s: %w", channel, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO channels (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		channel, blob, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write channel %s: %w", channel, err)
	}
	return nil
}
