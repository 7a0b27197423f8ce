// Package memory provides an in-memory implementation of the fortune.Store
// interface. This implementation is primarily intended for testing and
// development.
package memory

import (
	"context"
	"sync"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

// Store implements fortune.Store using an in-memory map
type Store struct {
	mu      sync.RWMutex
	records map[string]*fortune.UserRecord
}

// New creates a new in-memory store
func New() *Store {
	return &Store{records: make(map[string]*fortune.UserRecord)}
}

// Get implements fortune.Store
func (s *Store) Get(ctx context.Context, userID string) (*fortune.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}

	// Return a copy to prevent external mutations
	recCopy := *rec
	return &recCopy, nil
}

// Put implements fortune.Store
func (s *Store) Put(ctx context.Context, userID string, rec *fortune.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *rec
	s.records[userID] = &recCopy
	return nil
}

// Delete implements fortune.Store
func (s *Store) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
	return nil
}

// All implements fortune.Store
func (s *Store) All(ctx context.Context) (map[string]*fortune.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*fortune.UserRecord, len(s.records))
	for id, rec := range s.records {
		recCopy := *rec
		out[id] = &recCopy
	}
	return out, nil
}

// Reset implements fortune.Store
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*fortune.UserRecord)
	return nil
}
