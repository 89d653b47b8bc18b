// Package memory provides an in-memory ledger.Store for testing and dev.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/warp/leave-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory channel implementation
// =============================================================================

// Store keeps both channels as serialized blobs, mirroring how the file-backed
// drivers behave: Save replaces the whole channel, Load round-trips through
// JSON so tests exercise the same marshalling path as production.
type Store struct {
	mu       sync.RWMutex
	channels map[string][]byte
}

func New() *Store {
	return &Store{channels: make(map[string][]byte)}
}

func (s *Store) LoadEntries(_ context.Context) ([]ledger.LeaveEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.channels[ledger.ChannelEntries]
	if !ok {
		return nil, false, nil
	}
	var entries []ledger.LeaveEntry
	if err := json.Unmarshal(blob, &entries); err != nil {
		return nil, true, err
	}
	return entries, true, nil
}

func (s *Store) SaveEntries(_ context.Context, entries []ledger.LeaveEntry) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ledger.ChannelEntries] = blob
	return nil
}

func (s *Store) LoadHolidays(_ context.Context) ([]ledger.PublicHoliday, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.channels[ledger.ChannelHolidays]
	if !ok {
		return nil, false, nil
	}
	var holidays []ledger.PublicHoliday
	if err := json.Unmarshal(blob, &holidays); err != nil {
		return nil, true, err
	}
	return holidays, true, nil
}

func (s *Store) SaveHolidays(_ context.Context, holidays []ledger.PublicHoliday) error {
	blob, err := json.Marshal(holidays)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ledger.ChannelHolidays] = blob
	return nil
}

func (s *Store) Close() error { return nil }

// Corrupt overwrites a channel with an arbitrary payload. Test hook for the
// malformed-data fallback path.
func (s *Store) Corrupt(channel string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[channel] = payload
}
