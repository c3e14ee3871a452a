package system

import (
	"errors"
	"testing"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/prefabs"
)

type fakeBody struct {
	body component.Body
	pos  common.Vec3
	vel  common.Vec3
}

// fakeEngine integrates velocities and replays scripted contacts.
type fakeEngine struct {
	bodies   map[ecs.Entity]*fakeBody
	pending  []Contact
	impulses map[ecs.Entity]common.Vec3
	removed  []ecs.Entity
	reject   bool
	// frozen skips integration so tests control positions exactly.
	frozen bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		bodies:   map[ecs.Entity]*fakeBody{},
		impulses: map[ecs.Entity]common.Vec3{},
	}
}

func (f *fakeEngine) AddBody(e ecs.Entity, body component.Body) error {
	if f.reject {
		return errors.New("rejected")
	}
	f.bodies[e] = &fakeBody{body: body, pos: body.Position}
	return nil
}

func (f *fakeEngine) RemoveBody(e ecs.Entity) {
	if _, ok := f.bodies[e]; ok {
		delete(f.bodies, e)
		f.removed = append(f.removed, e)
	}
}

func (f *fakeEngine) Position(e ecs.Entity) (common.Vec3, bool) {
	b, ok := f.bodies[e]
	if !ok {
		return common.Vec3{}, false
	}
	return b.pos, true
}

func (f *fakeEngine) Velocity(e ecs.Entity) (common.Vec3, bool) {
	b, ok := f.bodies[e]
	if !ok {
		return common.Vec3{}, false
	}
	return b.vel, true
}

func (f *fakeEngine) SetVelocity(e ecs.Entity, v common.Vec3) {
	if b, ok := f.bodies[e]; ok {
		b.vel = v
	}
}

func (f *fakeEngine) SetPosition(e ecs.Entity, p common.Vec3) {
	if b, ok := f.bodies[e]; ok {
		b.pos = p
	}
}

func (f *fakeEngine) ApplyImpulse(e ecs.Entity, impulse common.Vec3) {
	b, ok := f.bodies[e]
	if !ok {
		return
	}
	f.impulses[e] = f.impulses[e].Add(impulse)
	mass := b.body.Mass
	if mass <= 0 {
		mass = 1
	}
	b.vel = b.vel.Add(impulse.Scale(1 / mass))
}

func (f *fakeEngine) Step(dt float64) []Contact {
	if !f.frozen {
		for _, b := range f.bodies {
			if b.body.Kind == component.BodyDynamic {
				b.pos = b.pos.Add(b.vel.Scale(dt))
			}
		}
	}
	out := f.pending
	f.pending = nil
	return out
}

func (f *fakeEngine) HitTest(p common.Vec3) (ecs.Entity, bool) {
	for e, b := range f.bodies {
		d := b.pos.Sub(p)
		d.Y = 0
		if d.Length() <= 1 {
			return e, true
		}
	}
	return 0, false
}

func (f *fakeEngine) contact(a, b ecs.Entity) {
	f.pending = append(f.pending, Contact{
		A: a, B: b,
		CategoryA: f.bodies[a].body.Descriptor.Category,
		CategoryB: f.bodies[b].body.Descriptor.Category,
	})
}

// testRace is a context with two cars and their barriers registered in the
// world and the fake engine.
type testRace struct {
	ctx      *GameContext
	engine   *fakeEngine
	cars     map[component.Player]ecs.Entity
	barriers map[component.Player]ecs.Entity
}

func testTuning() prefabs.TuningSpec {
	t := prefabs.DefaultTuning()
	t.Seed = 7
	return t
}

func newTestRace(t *testing.T) *testRace {
	t.Helper()
	engine := newFakeEngine()
	ctx := NewGameContext(ecs.NewWorld(), engine, testTuning(), nil)
	r := &testRace{
		ctx:      ctx,
		engine:   engine,
		cars:     map[component.Player]ecs.Entity{},
		barriers: map[component.Player]ecs.Entity{},
	}
	for _, p := range []component.Player{component.Player1, component.Player2} {
		z := 5.0
		if p == component.Player2 {
			z = -5
		}
		start := common.Vec3{Y: 0.3, Z: z}
		r.cars[p] = r.addBody(t, component.CategoryCar, component.BodyDynamic, start)
		if err := ecs.Add(ctx.World, r.cars[p], component.CarComponent.Kind(), &component.Car{Player: p, Start: start}); err != nil {
			t.Fatalf("add car: %v", err)
		}
		r.barriers[p] = r.addBody(t, component.CategoryBarrier, component.BodyKinematic, start.Add(common.Vec3{X: 2.5}))
		if err := ecs.Add(ctx.World, r.barriers[p], component.BarrierComponent.Kind(), &component.Barrier{Owner: p, Lead: 2.5}); err != nil {
			t.Fatalf("add barrier: %v", err)
		}
	}
	return r
}

func (r *testRace) addBody(t *testing.T, category component.Category, kind component.BodyKind, pos common.Vec3) ecs.Entity {
	t.Helper()
	desc, ok := Classify(category)
	if !ok {
		t.Fatalf("unclassified category %v", category)
	}
	e := ecs.CreateEntity(r.ctx.World)
	body := component.Body{Descriptor: desc, Kind: kind, Position: pos, Mass: 1}
	if err := ecs.Add(r.ctx.World, e, component.BodyComponent.Kind(), &body); err != nil {
		t.Fatalf("add body: %v", err)
	}
	if err := r.engine.AddBody(e, body); err != nil {
		t.Fatalf("engine add: %v", err)
	}
	return e
}

// addObstacle registers a live obstacle in the given state.
func (r *testRace) addObstacle(t *testing.T, pos common.Vec3, state component.ObstacleState) ecs.Entity {
	t.Helper()
	e := r.addBody(t, component.CategoryObstacle, component.BodyDynamic, pos)
	if err := ecs.Add(r.ctx.World, e, component.ObstacleComponent.Kind(), &component.Obstacle{State: state}); err != nil {
		t.Fatalf("add obstacle: %v", err)
	}
	return e
}

func (r *testRace) addSpeedUp(t *testing.T, pos common.Vec3) ecs.Entity {
	t.Helper()
	e := r.addBody(t, component.CategorySpeedUp, component.BodyStatic, pos)
	if err := ecs.Add(r.ctx.World, e, component.SpeedUpComponent.Kind(), &component.SpeedUp{}); err != nil {
		t.Fatalf("add speed-up: %v", err)
	}
	return e
}

func (r *testRace) state(t *testing.T, e ecs.Entity) component.ObstacleState {
	t.Helper()
	obs, ok := ecs.Get(r.ctx.World, e, component.ObstacleComponent.Kind())
	if !ok {
		t.Fatalf("obstacle %v not alive", e)
	}
	return obs.State
}

func countEvents(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
