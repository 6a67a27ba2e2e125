// Package store holds the canonical record set for one data load and the
// currently active filtered subset.
//
// A Store is owned by a single goroutine and is not safe for concurrent use.
package store

import (
	"slices"

	"github.com/couchcryptid/memory-map/internal/domain"
)

// Store keeps the canonical records and the current filtered subset.
type Store struct {
	all      []domain.Record
	filtered []domain.Record
	byID     map[int]int
	loaded   bool
}

// New returns an empty store.
func New() *Store {
	return &Store{byID: map[int]int{}}
}

// Load replaces the canonical set and resets the filtered subset to all of it.
func (s *Store) Load(records []domain.Record) {
	s.all = slices.Clone(records)
	s.filtered = slices.Clone(records)
	s.byID = make(map[int]int, len(records))
	for i, r := range s.all {
		s.byID[r.ID] = i
	}
	s.loaded = true
}

// SetFiltered replaces the current filtered subset.
func (s *Store) SetFiltered(subset []domain.Record) {
	s.filtered = slices.Clone(subset)
}

// Filtered returns a copy of the current filtered subset.
func (s *Store) Filtered() []domain.Record {
	return slices.Clone(s.filtered)
}

// All returns a copy of the canonical set in source order.
func (s *Store) All() []domain.Record {
	return slices.Clone(s.all)
}

// Lookup finds a canonical record by id.
func (s *Store) Lookup(id int) (domain.Record, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Record{}, false
	}
	return s.all[i], true
}

// Len is the size of the canonical set.
func (s *Store) Len() int { return len(s.all) }

// FilteredLen is the size of the current filtered subset.
func (s *Store) FilteredLen() int { return len(s.filtered) }

// Loaded reports whether Load has been called.
func (s *Store) Loaded() bool { return s.loaded }
