// Package file provides a JSON-file implementation of the fortune.Store
// interface. All user records live in one document; every write rewrites the
// whole file atomically (temp file plus rename). A single mutex serializes
// load-mutate-save sequences, so the last successful save wins.
//
// Reads fail open: a missing file, unreadable content, or a schema mismatch
// yields empty state rather than an error. Single-process, single-writer
// discipline is required; the file is not safe against concurrent writers
// from multiple processes.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

// Store implements fortune.Store over a single JSON file
type Store struct {
	path   string
	logger fortune.Logger

	mu sync.Mutex
}

// Option configures the store
type Option func(*Store)

// WithLogger sets the logger used for recovered read faults
func WithLogger(l fortune.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a file-backed store at the given path. The file is created on
// first save.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: &fortune.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements fortune.Store
func (s *Store) Get(ctx context.Context, userID string) (*fortune.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadAll()[userID], nil
}

// Put implements fortune.Store
func (s *Store) Put(ctx context.Context, userID string, rec *fortune.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.loadAll()
	all[userID] = rec
	return s.saveAll(all)
}

// Delete implements fortune.Store
func (s *Store) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.loadAll()
	if _, ok := all[userID]; !ok {
		return nil
	}
	delete(all, userID)
	return s.saveAll(all)
}

// All implements fortune.Store
func (s *Store) All(ctx context.Context) (map[string]*fortune.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadAll(), nil
}

// Reset implements fortune.Store
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveAll(map[string]*fortune.UserRecord{})
}

// loadAll reads the whole document. It never fails: any fault degrades to an
// empty mapping, and individually undecodable records are skipped, since "no
// state" always means "eligible for a new grant".
func (s *Store) loadAll() map[string]*fortune.UserRecord {
	out := make(map[string]*fortune.UserRecord)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("state file unreadable, starting empty",
				fortune.Field{Key: "path", Value: s.path},
				fortune.Field{Key: "error", Value: err.Error()})
		}
		return out
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Very old deployments stored the registry as a bare list of user
		// ids. Convert each to an empty record.
		var ids []string
		if listErr := json.Unmarshal(data, &ids); listErr == nil {
			for _, id := range ids {
				out[id] = &fortune.UserRecord{}
			}
			return out
		}
		s.logger.Warn("state file corrupt, starting empty",
			fortune.Field{Key: "path", Value: s.path},
			fortune.Field{Key: "error", Value: err.Error()})
		return out
	}

	for id, msg := range raw {
		rec, err := fortune.UnmarshalRecord(msg)
		if err != nil {
			s.logger.Warn("skipping undecodable user record",
				fortune.Field{Key: "user_id", Value: id},
				fortune.Field{Key: "error", Value: err.Error()})
			continue
		}
		out[id] = rec
	}
	return out
}

// saveAll rewrites the whole document atomically.
func (s *Store) saveAll(all map[string]*fortune.UserRecord) error {
	raw := make(map[string]json.RawMessage, len(all))
	for id, rec := range all {
		data, err := fortune.MarshalRecord(rec)
		if err != nil {
			return fmt.Errorf("encode record for %s: %w", id, err)
		}
		raw[id] = data
	}

	doc, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
