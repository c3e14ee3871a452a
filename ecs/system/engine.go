package system

import (
	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
)

// Contact is one contact-begin report from the physics engine.
type Contact struct {
	A, B                 ecs.Entity
	CategoryA, CategoryB component.Category
}

// Engine is the physics host. The core only reads positions, applies
// impulses and sets velocities; the engine owns integration.
type Engine interface {
	AddBody(e ecs.Entity, body component.Body) error
	RemoveBody(e ecs.Entity)
	Position(e ecs.Entity) (common.Vec3, bool)
	Velocity(e ecs.Entity) (common.Vec3, bool)
	SetVelocity(e ecs.Entity, v common.Vec3)
	SetPosition(e ecs.Entity, p common.Vec3)
	ApplyImpulse(e ecs.Entity, impulse common.Vec3)
	// Step advances the simulation and returns the contacts that began.
	Step(dt float64) []Contact
	// HitTest returns the body under a world point.
	HitTest(p common.Vec3) (ecs.Entity, bool)
}
