// Package selection tracks which unprocessed lots the operator marked for the next run.
package selection

import (
	"slices"

	"github.com/walteh/lotmig/pkg/inventory"
	"gitlab.com/tozd/go/errors"
)

// ErrProcessed is returned when a processed lot is toggled
var ErrProcessed = errors.Base("lot is already processed")

// 🏷️ Entry is one selected lot
type Entry struct {
	ID     string
	Status inventory.Status
}

// 🗂️ Set is an ordered selection; insertion order is selection order.
// The zero value is an empty set. A Set is owned by a single goroutine.
type Set struct {
	entries []Entry

	// undo remembers the slot of the last deselection so that an immediate
	// re-toggle puts the lot back where it was
	undo *slot
}

type slot struct {
	id    string
	index int
}

// 🔀 Toggle selects an unselected lot or deselects a selected one.
// It reports whether the lot is selected afterwards.
func (s *Set) Toggle(c inventory.Candidate) (bool, error) {
	if i := s.index(c.ID); i >= 0 {
		s.entries = slices.Delete(s.entries, i, i+1)
		s.undo = &slot{id: c.ID, index: i}
		return false, nil
	}

	if c.Status == inventory.Processed {
		return false, errors.Errorf("selecting %s: %w", c.ID, ErrProcessed)
	}

	entry := Entry{ID: c.ID, Status: c.Status}
	if s.undo != nil && s.undo.id == c.ID && s.undo.index <= len(s.entries) {
		s.entries = slices.Insert(s.entries, s.undo.index, entry)
	} else {
		s.entries = append(s.entries, entry)
	}
	s.undo = nil
	return true, nil
}

// SelectAllUnprocessed replaces the selection with every unprocessed candidate, in listing order.
func (s *Set) SelectAllUnprocessed(candidates []inventory.Candidate) {
	s.Reset()
	for _, c := range candidates {
		if c.Status != inventory.Unprocessed || s.index(c.ID) >= 0 {
			continue
		}
		s.entries = append(s.entries, Entry{ID: c.ID, Status: c.Status})
	}
}

// Reset empties the selection.
func (s *Set) Reset() {
	s.entries = nil
	s.undo = nil
}

// 📤 Take returns the selection and clears it.
func (s *Set) Take() []Entry {
	out := s.entries
	s.Reset()
	return out
}

// Entries returns a copy of the current selection.
func (s *Set) Entries() []Entry {
	return slices.Clone(s.entries)
}

// IDs returns the selected lot ids in selection order.
func (s *Set) IDs() []string {
	return IDs(s.entries)
}

// Contains reports whether id is selected.
func (s *Set) Contains(id string) bool {
	return s.index(id) >= 0
}

// Len returns the number of selected lots.
func (s *Set) Len() int {
	return len(s.entries)
}

func (s *Set) index(id string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

// IDs extracts the lot ids from entries.
func IDs(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
