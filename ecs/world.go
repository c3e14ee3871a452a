package ecs

import "github.com/milk9111/crashthatcar/ecs/component"

// World owns entities and their component stores. It is not safe for
// concurrent use; the game loop is the only writer.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w == nil {
		return nil
	}
	s := w.stores[id]
	if s == nil && create {
		if w.stores == nil {
			w.stores = make(map[component.ComponentID]*SparseSet)
		}
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity drops every component of e and retires its handle. It returns
// false when e was already dead.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		if s.Has(e) {
			s.Remove(e)
		}
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is still valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Count returns the number of live entities.
func Count(w *World) int {
	if w == nil {
		return 0
	}
	return w.entities.count
}
