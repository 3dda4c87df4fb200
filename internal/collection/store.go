// Package collection holds the in-memory ordered list of notes shown to the user.
package collection

import (
	"fmt"
	"sync"

	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
)

// Store is an insertion-ordered note list. Every mutation is atomic with respect to readers.
type Store struct {
	mu    sync.RWMutex
	notes []model.Note
	index map[string]int // id -> position in notes
}

// New returns an empty Store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// ReplaceAll swaps the whole collection. Notes without an id are skipped and
// for duplicate ids the last occurrence wins at the first occurrence's position.
func (s *Store) ReplaceAll(notes []model.Note) {
	next := make([]model.Note, 0, len(notes))
	idx := make(map[string]int, len(notes))
	for _, n := range notes {
		if !n.Persisted() {
			continue
		}
		if i, ok := idx[n.ID]; ok {
			next[i] = n
			continue
		}
		idx[n.ID] = len(next)
		next = append(next, n)
	}

	s.mu.Lock()
	s.notes, s.index = next, idx
	s.mu.Unlock()
}

// Append adds a persisted note at the end. An id already present is replaced in place.
func (s *Store) Append(n model.Note) error {
	if !n.Persisted() {
		return fmt.Errorf("%w: note without id", errs.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[n.ID]; ok {
		s.notes[i] = n
		return nil
	}
	s.index[n.ID] = len(s.notes)
	s.notes = append(s.notes, n)
	return nil
}

// ReplaceByID replaces the note with the given id, keeping its position.
// It reports false when id is not present.
func (s *Store) ReplaceByID(id string, n model.Note) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	if n.ID != id {
		// id is immutable after creation
		n.ID = id
	}
	s.notes[i] = n
	return true
}

// RemoveByID deletes the note with the given id. It reports false when id is not present.
func (s *Store) RemoveByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.notes); j++ {
		s.index[s.notes[j].ID] = j
	}
	return true
}

// Clear empties the collection.
func (s *Store) Clear() {
	s.mu.Lock()
	s.notes = nil
	s.index = make(map[string]int)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current notes in order.
func (s *Store) Snapshot() []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Get returns the note with id.
func (s *Store) Get(id string) (model.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Note{}, false
	}
	return s.notes[i], true
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}
