package ecs

// SparseSet stores one component value per entity slot. Dense arrays keep
// iteration tight; the sparse index maps slot id to dense position.
type SparseSet struct {
	denseEntities []Entity
	denseValues   []any
	sparse        []int
}

// Has reports whether the exact entity handle (slot and generation) is stored.
func (s *SparseSet) Has(e Entity) bool {
	idx, ok := s.index(e.id())
	return ok && s.denseEntities[idx] == e
}

// Get returns the stored value for e, or nil.
func (s *SparseSet) Get(e Entity) any {
	idx, ok := s.index(e.id())
	if !ok || s.denseEntities[idx] != e {
		return nil
	}
	return s.denseValues[idx]
}

// Set inserts or replaces the value for e.
func (s *SparseSet) Set(e Entity, v any) {
	id := int(e.id())
	if id <= 0 {
		return
	}
	for len(s.sparse) <= id {
		s.sparse = append(s.sparse, -1)
	}
	if idx := s.sparse[id]; idx >= 0 && idx < len(s.denseEntities) {
		s.denseEntities[idx] = e
		s.denseValues[idx] = v
		return
	}
	s.denseEntities = append(s.denseEntities, e)
	s.denseValues = append(s.denseValues, v)
	s.sparse[id] = len(s.denseEntities) - 1
}

// Remove deletes the value stored for e's slot.
func (s *SparseSet) Remove(e Entity) bool {
	idx, ok := s.index(e.id())
	if !ok {
		return false
	}
	last := len(s.denseEntities) - 1
	moved := s.denseEntities[last]

	s.denseEntities[idx] = moved
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[moved.id()] = idx

	s.denseEntities[last] = 0
	s.denseValues[last] = nil
	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[e.id()] = -1
	return true
}

// Entities returns a copy of the dense entity list so callers may mutate the
// set while iterating.
func (s *SparseSet) Entities() []Entity {
	if s == nil || len(s.denseEntities) == 0 {
		return nil
	}
	out := make([]Entity, len(s.denseEntities))
	copy(out, s.denseEntities)
	return out
}

func (s *SparseSet) index(id entityID) (int, bool) {
	if s == nil || int(id) >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id]
	if idx < 0 || idx >= len(s.denseEntities) {
		return 0, false
	}
	return idx, true
}
