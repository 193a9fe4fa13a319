// Package store keeps the analysis records produced during the lifetime of
// the process.
package store

import (
	"sync"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

// Store is an append-only, insertion-ordered collection of records.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records []punctuation.Record
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Append adds a record at the end of the set.
func (s *Store) Append(rec punctuation.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
}

// All returns a snapshot of every record in insertion order. The returned
// slice is owned by the caller.
func (s *Store) All() []punctuation.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]punctuation.Record, len(s.records))
	copy(out, s.records)

	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
