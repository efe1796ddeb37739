package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
)

// Store keeps records in process memory for the lifetime of the process.
// The zero value is an empty store ready to use.
type Store struct {
	mu    sync.Mutex
	items []core.Record
	ids   map[string]struct{}
}

func New() *Store {
	return &Store{ids: map[string]struct{}{}}
}

// Add appends the record. Records reach the store already validated, so the
// only rejection is a repeated id.
func (s *Store) Add(_ context.Context, r core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[r.ID]; dup {
		return fmt.Errorf("record %q already stored", r.ID)
	}
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	s.items = append(s.items, r)
	s.ids[r.ID] = struct{}{}
	return nil
}

// Remove replaces the sequence with one that excludes id. Remaining records
// keep their relative order.
func (s *Store) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return false, nil
	}
	next := make([]core.Record, 0, len(s.items)-1)
	for _, r := range s.items {
		if r.ID != id {
			next = append(next, r)
		}
	}
	s.items = next
	delete(s.ids, id)
	return true, nil
}

// List returns a snapshot of the records.
func (s *Store) List(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.items...), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
