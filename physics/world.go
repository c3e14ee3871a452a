package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/ecs/system"
)

// Every shape shares one collision type; the category masks decide what
// happens in the begin handler.
const collisionTypeBody cp.CollisionType = 1

const (
	maxSubsteps    = 8
	hitRadius      = 0.75
	segmentRadius  = 0.05
	lineFriction   = 0
	bodyFriction   = 0.4
	bodyElasticity = 0.5
)

// World is the Chipmunk engine behind system.Engine. The race is planar:
// world X maps to space X and world Z to space Y, while world Y is a fixed
// per-body height kept for presentation.
type World struct {
	space   *cp.Space
	step    float64
	acc     float64
	bodies  map[ecs.Entity]*bodyInfo
	shapes  map[*cp.Shape]ecs.Entity
	pending []system.Contact
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	desc   component.BodyDescriptor
	kind   component.BodyKind
	height float64
}

var _ system.Engine = (*World)(nil)

// New builds an empty space stepping at a fixed interval.
func New(step float64, iterations int) *World {
	if step <= 0 {
		step = 1.0 / 60.0
	}
	if iterations <= 0 {
		iterations = 10
	}
	space := cp.NewSpace()
	space.Iterations = uint(iterations)
	space.SetGravity(cp.Vector{})
	space.SetDamping(1)

	w := &World{
		space:  space,
		step:   step,
		bodies: make(map[ecs.Entity]*bodyInfo),
		shapes: make(map[*cp.Shape]ecs.Entity),
	}
	handler := space.NewCollisionHandler(collisionTypeBody, collisionTypeBody)
	handler.UserData = w
	handler.BeginFunc = beginContact
	return w
}

// beginContact queues a contact when either side asks to be told about the
// other, and lets the pair collide only when a collision mask says so.
func beginContact(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
	w, ok := userData.(*World)
	if !ok || w == nil {
		return true
	}
	shapeA, shapeB := arb.Shapes()
	a, okA := w.shapes[shapeA]
	b, okB := w.shapes[shapeB]
	if !okA || !okB {
		return true
	}
	infoA, infoB := w.bodies[a], w.bodies[b]
	if infoA == nil || infoB == nil {
		return true
	}
	if infoA.desc.Notifies(infoB.desc) {
		w.pending = append(w.pending, system.Contact{
			A:         a,
			B:         b,
			CategoryA: infoA.desc.Category,
			CategoryB: infoB.desc.Category,
		})
	}
	return infoA.desc.Collides(infoB.desc)
}

func filterFor(d component.BodyDescriptor) cp.ShapeFilter {
	return cp.ShapeFilter{
		Group:      cp.NO_GROUP,
		Categories: uint(d.Category),
		Mask:       uint(d.CollisionMask | d.ContactMask),
	}
}

func toSpace(v common.Vec3) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Z}
}

func fromSpace(v cp.Vector, height float64) common.Vec3 {
	return common.Vec3{X: v.X, Y: height, Z: v.Y}
}

func (w *World) AddBody(e ecs.Entity, body component.Body) error {
	if _, exists := w.bodies[e]; exists {
		return fmt.Errorf("physics: entity %v already has a body", e)
	}

	var cpBody *cp.Body
	switch body.Kind {
	case component.BodyDynamic:
		mass := body.Mass
		if mass <= 0 {
			mass = 1
		}
		moment := math.Inf(1)
		if body.Shape.Kind == component.ShapeCircle {
			moment = cp.MomentForCircle(mass, 0, body.Shape.Radius, cp.Vector{})
		}
		cpBody = cp.NewBody(mass, moment)
	case component.BodyKinematic:
		cpBody = cp.NewKinematicBody()
	default:
		cpBody = cp.NewStaticBody()
	}
	cpBody.SetPosition(toSpace(body.Position))

	var shape *cp.Shape
	switch body.Shape.Kind {
	case component.ShapeBox:
		if body.Shape.Width <= 0 || body.Shape.Depth <= 0 {
			return fmt.Errorf("physics: entity %v: box without extent", e)
		}
		shape = cp.NewBox(cpBody, body.Shape.Width, body.Shape.Depth, 0)
	case component.ShapeCircle:
		if body.Shape.Radius <= 0 {
			return fmt.Errorf("physics: entity %v: circle without radius", e)
		}
		shape = cp.NewCircle(cpBody, body.Shape.Radius, cp.Vector{})
	case component.ShapeSegment:
		shape = cp.NewSegment(cpBody, toSpace(body.Shape.From), toSpace(body.Shape.To), segmentRadius)
	default:
		return fmt.Errorf("physics: entity %v: unknown shape kind %d", e, body.Shape.Kind)
	}

	shape.SetCollisionType(collisionTypeBody)
	shape.SetFilter(filterFor(body.Descriptor))
	if body.Kind == component.BodyStatic {
		shape.SetFriction(lineFriction)
	} else {
		shape.SetFriction(bodyFriction)
		shape.SetElasticity(bodyElasticity)
	}

	w.space.AddBody(cpBody)
	w.space.AddShape(shape)
	if body.Kind == component.BodyDynamic && body.AngularVelocity != 0 {
		cpBody.SetAngularVelocity(body.AngularVelocity)
	}

	w.bodies[e] = &bodyInfo{
		body:   cpBody,
		shape:  shape,
		desc:   body.Descriptor,
		kind:   body.Kind,
		height: body.Position.Y,
	}
	w.shapes[shape] = e
	return nil
}

func (w *World) RemoveBody(e ecs.Entity) {
	info, ok := w.bodies[e]
	if !ok {
		return
	}
	if w.space.ContainsShape(info.shape) {
		w.space.RemoveShape(info.shape)
	}
	if w.space.ContainsBody(info.body) {
		w.space.RemoveBody(info.body)
	}
	delete(w.shapes, info.shape)
	delete(w.bodies, e)
}

func (w *World) Position(e ecs.Entity) (common.Vec3, bool) {
	info, ok := w.bodies[e]
	if !ok {
		return common.Vec3{}, false
	}
	return fromSpace(info.body.Position(), info.height), true
}

func (w *World) Velocity(e ecs.Entity) (common.Vec3, bool) {
	info, ok := w.bodies[e]
	if !ok {
		return common.Vec3{}, false
	}
	return fromSpace(info.body.Velocity(), 0), true
}

// Angle returns the body's rotation in radians, for drawing.
func (w *World) Angle(e ecs.Entity) float64 {
	info, ok := w.bodies[e]
	if !ok {
		return 0
	}
	return info.body.Angle()
}

func (w *World) SetVelocity(e ecs.Entity, v common.Vec3) {
	info, ok := w.bodies[e]
	if !ok || info.kind == component.BodyStatic {
		return
	}
	info.body.SetVelocityVector(toSpace(v))
}

func (w *World) SetPosition(e ecs.Entity, p common.Vec3) {
	info, ok := w.bodies[e]
	if !ok {
		return
	}
	info.height = p.Y
	if info.kind != component.BodyStatic {
		info.body.SetPosition(toSpace(p))
		return
	}
	// Static shapes are only re-indexed when they are added.
	w.space.RemoveShape(info.shape)
	info.body.SetPosition(toSpace(p))
	w.space.AddShape(info.shape)
}

func (w *World) ApplyImpulse(e ecs.Entity, impulse common.Vec3) {
	info, ok := w.bodies[e]
	if !ok || info.kind != component.BodyDynamic {
		return
	}
	info.body.ApplyImpulseAtWorldPoint(toSpace(impulse), info.body.Position())
}

// Step runs whole fixed substeps covered by dt and returns the contacts that
// began during them.
func (w *World) Step(dt float64) []system.Contact {
	w.acc += dt
	for n := 0; w.acc >= w.step && n < maxSubsteps; n++ {
		w.space.Step(w.step)
		w.acc -= w.step
	}
	if w.acc > w.step {
		w.acc = 0
	}
	out := w.pending
	w.pending = nil
	return out
}

// HitTest returns the obstacle nearest to p. Only obstacles are pickable.
func (w *World) HitTest(p common.Vec3) (ecs.Entity, bool) {
	filter := cp.ShapeFilter{
		Group:      cp.NO_GROUP,
		Categories: cp.ALL_CATEGORIES,
		Mask:       uint(component.CategoryObstacle),
	}
	info := w.space.PointQueryNearest(toSpace(p), hitRadius, filter)
	if info == nil || info.Shape == nil {
		return 0, false
	}
	e, ok := w.shapes[info.Shape]
	return e, ok
}

// Len returns the number of bodies in the space.
func (w *World) Len() int {
	return len(w.bodies)
}
