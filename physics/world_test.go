package physics

import (
	"testing"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/ecs/system"
)

const testStep = 1.0 / 60.0

type testWorld struct {
	*World
	ents *ecs.World
}

func newTestWorld() *testWorld {
	return &testWorld{World: New(testStep, 10), ents: ecs.NewWorld()}
}

func (w *testWorld) add(t *testing.T, category component.Category, kind component.BodyKind, shape component.Shape, pos common.Vec3) ecs.Entity {
	t.Helper()
	desc, ok := system.Classify(category)
	if !ok {
		t.Fatalf("unclassified category %v", category)
	}
	e := ecs.CreateEntity(w.ents)
	if err := w.AddBody(e, component.Body{Descriptor: desc, Kind: kind, Shape: shape, Mass: 1, Position: pos}); err != nil {
		t.Fatalf("add body: %v", err)
	}
	return e
}

func carShape() component.Shape {
	return component.Shape{Kind: component.ShapeBox, Width: 2, Depth: 1}
}

func lineAcross(halfWidth float64) component.Shape {
	return component.Shape{Kind: component.ShapeSegment, From: common.Vec3{Z: -halfWidth}, To: common.Vec3{Z: halfWidth}}
}

func lineAlong(from, to float64) component.Shape {
	return component.Shape{Kind: component.ShapeSegment, From: common.Vec3{X: from}, To: common.Vec3{X: to}}
}

func (w *testWorld) run(seconds float64) []system.Contact {
	var out []system.Contact
	for t := 0.0; t < seconds; t += testStep {
		out = append(out, w.Step(testStep)...)
	}
	return out
}

func TestCarCrossesFinishLine(t *testing.T) {
	w := newTestWorld()
	car := w.add(t, component.CategoryCar, component.BodyDynamic, carShape(), common.Vec3{Y: 0.3, Z: 5})
	finish := w.add(t, component.CategoryFinishLine, component.BodyStatic, lineAcross(10), common.Vec3{X: 10})
	w.SetVelocity(car, common.Vec3{X: 5})

	contacts := w.run(3)

	found := false
	for _, c := range contacts {
		pair := (c.A == car && c.B == finish) || (c.A == finish && c.B == car)
		if !pair {
			t.Fatalf("unexpected contact %+v", c)
		}
		found = true
	}
	if !found {
		t.Fatalf("no finish contact reported")
	}
	pos, ok := w.Position(car)
	if !ok || pos.X <= 10 {
		t.Fatalf("car stopped at %v, finish line must not block", pos)
	}
	if pos.Y != 0.3 {
		t.Fatalf("height = %v, want 0.3", pos.Y)
	}
}

func TestBorderBlocksCarSilently(t *testing.T) {
	w := newTestWorld()
	car := w.add(t, component.CategoryCar, component.BodyDynamic, carShape(), common.Vec3{Z: 5})
	w.add(t, component.CategoryBorderLine, component.BodyStatic, lineAlong(-50, 50), common.Vec3{Z: 10})
	w.SetVelocity(car, common.Vec3{Z: 5})

	if contacts := w.run(3); len(contacts) != 0 {
		t.Fatalf("contacts = %+v, want none", contacts)
	}
	if pos, _ := w.Position(car); pos.Z >= 10 {
		t.Fatalf("car went through the border: %v", pos)
	}
}

func TestCarPassesThroughObstacle(t *testing.T) {
	w := newTestWorld()
	car := w.add(t, component.CategoryCar, component.BodyDynamic, carShape(), common.Vec3{})
	obstacle := w.add(t, component.CategoryObstacle, component.BodyDynamic,
		component.Shape{Kind: component.ShapeCircle, Radius: 0.5}, common.Vec3{X: 5})
	w.SetVelocity(car, common.Vec3{X: 5})

	contacts := w.run(2)
	if len(contacts) == 0 {
		t.Fatalf("no car/obstacle contact")
	}
	c := contacts[0]
	cats := c.CategoryA | c.CategoryB
	if cats != component.CategoryCar|component.CategoryObstacle {
		t.Fatalf("contact categories = %v/%v", c.CategoryA, c.CategoryB)
	}
	if v, _ := w.Velocity(obstacle); v != (common.Vec3{}) {
		t.Fatalf("obstacle was pushed: %v", v)
	}
}

func TestMovedBarrierCatchesObstacle(t *testing.T) {
	w := newTestWorld()
	barrier := w.add(t, component.CategoryBarrier, component.BodyKinematic,
		component.Shape{Kind: component.ShapeBox, Width: 0.6, Depth: 2.6}, common.Vec3{})
	obstacle := w.add(t, component.CategoryObstacle, component.BodyDynamic,
		component.Shape{Kind: component.ShapeCircle, Radius: 0.5}, common.Vec3{X: 5})

	if contacts := w.Step(testStep); len(contacts) != 0 {
		t.Fatalf("contacts before the move: %+v", contacts)
	}
	w.SetPosition(barrier, common.Vec3{X: 5})
	contacts := w.Step(testStep)
	if len(contacts) != 1 {
		t.Fatalf("contacts = %+v, want one", contacts)
	}
	c := contacts[0]
	if !((c.A == barrier && c.B == obstacle) || (c.A == obstacle && c.B == barrier)) {
		t.Fatalf("contact = %+v", c)
	}
}

func TestHitTestPicksObstacles(t *testing.T) {
	w := newTestWorld()
	car := w.add(t, component.CategoryCar, component.BodyDynamic, carShape(), common.Vec3{Z: 5})
	obstacle := w.add(t, component.CategoryObstacle, component.BodyDynamic,
		component.Shape{Kind: component.ShapeCircle, Radius: 0.5}, common.Vec3{X: 10, Y: 0.4, Z: 3})

	tests := []struct {
		name string
		at   common.Vec3
		want ecs.Entity
		hit  bool
	}{
		{"inside", common.Vec3{X: 10.2, Z: 3.1}, obstacle, true},
		{"near edge", common.Vec3{X: 10.9, Z: 3}, obstacle, true},
		{"empty track", common.Vec3{X: 20}, 0, false},
		{"on a car", common.Vec3{Z: 5}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.HitTest(tt.at)
			if ok != tt.hit || (ok && got != tt.want) {
				t.Fatalf("HitTest(%v) = %v, %v", tt.at, got, ok)
			}
		})
	}
	_ = car
}

func TestRemoveBody(t *testing.T) {
	w := newTestWorld()
	obstacle := w.add(t, component.CategoryObstacle, component.BodyDynamic,
		component.Shape{Kind: component.ShapeCircle, Radius: 0.5}, common.Vec3{X: 3})
	line := w.add(t, component.CategoryMiddleLine, component.BodyStatic, lineAlong(-5, 5), common.Vec3{})

	w.RemoveBody(obstacle)
	w.RemoveBody(obstacle)
	w.RemoveBody(line)
	if w.Len() != 0 {
		t.Fatalf("Len = %d after removal", w.Len())
	}
	if _, ok := w.Position(obstacle); ok {
		t.Fatalf("removed body still has a position")
	}
	if _, ok := w.HitTest(common.Vec3{X: 3}); ok {
		t.Fatalf("removed obstacle still hit-testable")
	}
	w.Step(testStep)
}

func TestApplyImpulse(t *testing.T) {
	w := newTestWorld()
	obstacle := w.add(t, component.CategoryObstacle, component.BodyDynamic,
		component.Shape{Kind: component.ShapeCircle, Radius: 0.5}, common.Vec3{})
	line := w.add(t, component.CategoryMiddleLine, component.BodyStatic, lineAlong(-5, 5), common.Vec3{Z: 3})

	w.ApplyImpulse(obstacle, common.Vec3{X: 2, Z: -4})
	if v, _ := w.Velocity(obstacle); v.X != 2 || v.Z != -4 {
		t.Fatalf("velocity = %v, want (2, _, -4)", v)
	}
	w.ApplyImpulse(line, common.Vec3{X: 1})
	if v, _ := w.Velocity(line); v != (common.Vec3{}) {
		t.Fatalf("static body moved: %v", v)
	}
}

func TestStepAccumulates(t *testing.T) {
	w := newTestWorld()
	car := w.add(t, component.CategoryCar, component.BodyDynamic, carShape(), common.Vec3{})
	w.SetVelocity(car, common.Vec3{X: 6})

	w.Step(testStep / 2)
	if pos, _ := w.Position(car); pos.X != 0 {
		t.Fatalf("half a step moved the car to %v", pos)
	}
	w.Step(testStep / 2)
	if pos, _ := w.Position(car); pos.X <= 0 {
		t.Fatalf("a full step did not move the car")
	}
}

func TestAddBodyErrors(t *testing.T) {
	w := newTestWorld()
	desc, _ := system.Classify(component.CategoryCar)
	e := ecs.CreateEntity(w.ents)

	if err := w.AddBody(e, component.Body{Descriptor: desc, Shape: component.Shape{Kind: component.ShapeBox}}); err == nil {
		t.Fatalf("box without extent accepted")
	}
	if err := w.AddBody(e, component.Body{Descriptor: desc, Shape: component.Shape{Kind: component.ShapeCircle}}); err == nil {
		t.Fatalf("circle without radius accepted")
	}
	if err := w.AddBody(e, component.Body{Descriptor: desc, Shape: carShape()}); err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	if err := w.AddBody(e, component.Body{Descriptor: desc, Shape: carShape()}); err == nil {
		t.Fatalf("duplicate body accepted")
	}
}
