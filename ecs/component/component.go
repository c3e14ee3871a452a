package component

import (
	"errors"
	"reflect"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID identifies a component store inside a world.
type ComponentID uint32

var nextComponentID atomic.Uint32

// ComponentKind is a typed key for a component store. The zero value is
// invalid.
type ComponentKind[T any] struct {
	id   ComponentID
	name string
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{
		id:   ComponentID(nextComponentID.Add(1)),
		name: reflect.TypeFor[T]().Name(),
	}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

// Name is the component's Go type name, for error messages.
func (k ComponentKind[T]) Name() string {
	if k.name == "" {
		return "component"
	}
	return k.name
}

// ComponentHandle is the package-level declaration of a component type.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}
