package ecs

import (
	"fmt"

	"github.com/milk9111/crashthatcar/ecs/component"
)

// Add stores value as e's component of the given kind, replacing any
// previous value.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return fmt.Errorf("add %s to %s: %w", kind.Name(), e, component.ErrNilComponent)
	}
	if !IsAlive(w, e) {
		return fmt.Errorf("add %s to %s: %w", kind.Name(), e, component.ErrEntityNotAlive)
	}
	w.store(kind.ID(), true).Set(e, value)
	return nil
}

// Has reports whether e carries a component of the given kind.
func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	return w.store(kind.ID(), false).Has(e)
}

// Get returns e's component of the given kind. The pointer aliases the stored
// value, so writes through it are visible to later readers.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	v, ok := w.store(kind.ID(), false).Get(e).(*T)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// First returns the first live entity carrying the given kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	s := w.store(kind.ID(), false)
	for _, e := range s.Entities() {
		if IsAlive(w, e) {
			return e, true
		}
	}
	return 0, false
}

// ForEach calls fn for every live entity with the given kind. fn may destroy
// entities; those not yet visited are skipped.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	for _, e := range w.store(kind.ID(), false).Entities() {
		if v, ok := Get(w, e, kind); ok {
			fn(e, v)
		}
	}
}
