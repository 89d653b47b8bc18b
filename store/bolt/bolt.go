// Package bolt provides the default BoltDB-backed ledger.Store.
//
// BoltDB is an embedded key/value store; all data lives in a single file, so
// no external database process is required. Each logical channel ("entries",
// "holidays") is its own bucket holding one JSON array blob under a fixed
// key. Every save replaces the blob in full, which matches the ledger's
// replace-whole-value write model exactly: there is one writer and the value
// is small, so incremental updates would buy nothing.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/warp/leave-ledger/ledger"
)

// blobKey is the single key per channel bucket.
const blobKey = "data"

// Store wraps a BoltDB database and exposes the two-channel contract.
type Store struct {
	db *bolt.DB
}

// New opens (or creates) a BoltDB database at the given path and ensures a
// bucket per channel exists. CreateBucketIfNotExists is safe to run on every
// startup.
func New(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, channel := range []string{ledger.ChannelEntries, ledger.ChannelHolidays} {
			if _, err := tx.CreateBucketIfNotExists([]byte(channel)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create channel buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadEntries(_ context.Context) ([]ledger.LeaveEntry, bool, error) {
	var entries []ledger.LeaveEntry
	present, err := s.load(ledger.ChannelEntries, &entries)
	return entries, present, err
}

func (s *Store) SaveEntries(_ context.Context, entries []ledger.LeaveEntry) error {
	if entries == nil {
		entries = []ledger.LeaveEntry{}
	}
	return s.save(ledger.ChannelEntries, entries)
}

func (s *Store) LoadHolidays(_ context.Context) ([]ledger.PublicHoliday, bool, error) {
	var holidays []ledger.PublicHoliday
	present, err := s.load(ledger.ChannelHolidays, &holidays)
	return holidays, present, err
}

func (s *Store) SaveHolidays(_ context.Context, holidays []ledger.PublicHoliday) error {
	if holidays == nil {
		holidays = []ledger.PublicHoliday{}
	}
	return s.save(ledger.ChannelHolidays, holidays)
}

// load reads a channel blob into out. Returns present=false when the channel
// has never been written, which is how first-run seeding is detected.
func (s *Store) load(channel string, out any) (bool, error) {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(channel)).Get([]byte(blobKey)); v != nil {
			blob = append(blob, v...)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("read channel %s: %w", channel, err)
	}
	if blob == nil {
		return false, nil
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return true, fmt.Errorf("decode channel %s: %w", channel, err)
	}
	return true, nil
}

// save serializes the collection and replaces the channel blob in full.
func (s *Store) save(channel string, value any) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode channel %s: %w", channel, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(channel)).Put([]byte(blobKey), blob)
	})
	if err != nil {
		return fmt.Errorf("write channel %s: %w", channel, err)
	}
	return nil
}
