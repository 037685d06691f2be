// Package selection tracks which entities are chosen while composing a test run.
package selection

import (
	"sort"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rpattn/testplan/internal/domain"
)

// Set is a set of selected entity ids. Filtering never changes it; only the
// owner clears it. It is not safe for concurrent writers. A nil *Set reads as
// an empty selection.
type Set struct {
	ids map[uuid.UUID]struct{}
}

// New returns a selection seeded with ids. Any other id starts unselected.
func New(seed ...uuid.UUID) *Set {
	s := &Set{ids: make(map[uuid.UUID]struct{}, len(seed))}
	for _, id := range seed {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle flips membership of id and returns the new state.
func (s *Set) Toggle(id uuid.UUID) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// IsSelected reports whether id is selected.
func (s *Set) IsSelected(id uuid.UUID) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of selected ids.
func (s *Set) Count() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns the selected ids sorted by their string form.
func (s *Set) IDs() []uuid.UUID {
	if s == nil {
		return []uuid.UUID{}
	}
	ids := lo.Keys(s.ids)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Clear unselects everything.
func (s *Set) Clear() {
	clear(s.ids)
}

// Materialize returns the entities whose id is selected, in input order.
// Selected ids missing from entities are ignored; a nil s selects nothing.
func Materialize[E domain.Identifiable](s *Set, entities []E) []E {
	return lo.Filter(entities, func(entity E, _ int) bool {
		return s.IsSelected(entity.GetID())
	})
}
