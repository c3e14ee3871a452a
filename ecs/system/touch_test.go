package system

import (
	"math"
	"testing"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/prefabs"
)

func TestLaunchVector(t *testing.T) {
	tests := []struct {
		name       string
		start, end common.Vec2
		want       common.Vec3
	}{
		{"drag right", common.Vec2{X: 100, Y: 100}, common.Vec2{X: 101, Y: 100}, common.Vec3{Z: 10}},
		{"drag left", common.Vec2{X: 100, Y: 100}, common.Vec2{X: 40, Y: 100}, common.Vec3{Z: -10}},
		{"drag up", common.Vec2{X: 100, Y: 100}, common.Vec2{X: 100, Y: 20}, common.Vec3{X: 10}},
		{"drag down", common.Vec2{X: 100, Y: 100}, common.Vec2{X: 100, Y: 300}, common.Vec3{X: -10}},
		{"no drag", common.Vec2{X: 5, Y: 5}, common.Vec2{X: 5, Y: 5}, common.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LaunchVector(tt.start, tt.end, 10)
			if got.Sub(tt.want).Length() > 1e-9 {
				t.Fatalf("LaunchVector = %v, want %v", got, tt.want)
			}
			if got.Y != 0 {
				t.Fatalf("launch must stay planar, got %v", got)
			}
		})
	}

	diag := LaunchVector(common.Vec2{}, common.Vec2{X: 3, Y: -4}, 10)
	if math.Abs(diag.Length()-10) > 1e-9 {
		t.Fatalf("diagonal length = %v, want 10", diag.Length())
	}
}

func touchRace(t *testing.T) (*testRace, *TouchInterpreter) {
	t.Helper()
	r := newTestRace(t)
	obstacles := NewObstacleManager()
	session := NewSessionSystem(obstacles, NewCameraRig(nil))
	return r, NewTouchInterpreter(obstacles, session)
}

func began(id int, screen common.Vec2, world common.Vec3) TouchEvent {
	return TouchEvent{ID: id, Phase: TouchBegan, Screen: screen, World: world, HasWorld: true}
}

func TestTapStartsRace(t *testing.T) {
	r, touch := touchRace(t)
	r.ctx.Session.State = component.StateTapToPlay
	touch.Handle(r.ctx, began(0, common.Vec2{X: 10, Y: 10}, common.Vec3{}))
	if r.ctx.Session.State != component.StatePlay {
		t.Fatalf("state = %v", r.ctx.Session.State)
	}
}

func TestTouchGrabAndShoot(t *testing.T) {
	r, touch := touchRace(t)
	r.ctx.Session.State = component.StatePlay
	obstacle := r.addObstacle(t, common.Vec3{X: 20, Z: 3}, component.ObstacleInBarrier)

	start := common.Vec2{X: 200, Y: 300}
	touch.Handle(r.ctx, began(1, start, common.Vec3{X: 20, Z: 3}))
	if r.state(t, obstacle) != component.ObstacleBeingShotFromPlayer1 {
		t.Fatalf("state = %v", r.state(t, obstacle))
	}
	if !r.ctx.Session.ReadyToShoot || r.ctx.Session.LastTouch != start {
		t.Fatalf("session = %+v", r.ctx.Session)
	}

	touch.Handle(r.ctx, TouchEvent{ID: 1, Phase: TouchMoved, Screen: common.Vec2{X: 201, Y: 300}})
	if r.state(t, obstacle) != component.ObstacleShotFromPlayer1 {
		t.Fatalf("state = %v", r.state(t, obstacle))
	}
	if imp := r.engine.impulses[obstacle]; imp.Z <= 0 || imp.X != 0 {
		t.Fatalf("impulse = %v, want positive lateral", imp)
	}
	if r.ctx.Session.ReadyToShoot {
		t.Fatalf("ReadyToShoot should clear after the first drag sample")
	}

	// Later samples of the same drag do nothing.
	touch.Handle(r.ctx, TouchEvent{ID: 1, Phase: TouchMoved, Screen: common.Vec2{X: 300, Y: 100}})
	if imp := r.engine.impulses[obstacle]; imp != (common.Vec3{Z: 10}) {
		t.Fatalf("impulse = %v after extra drag", imp)
	}
}

func TestTouchIgnoresUncaughtObstacles(t *testing.T) {
	r, touch := touchRace(t)
	r.ctx.Session.State = component.StatePlay
	obstacle := r.addObstacle(t, common.Vec3{X: 20, Z: -3}, component.ObstacleNormal)

	touch.Handle(r.ctx, began(1, common.Vec2{}, common.Vec3{X: 20, Z: -3}))
	if r.state(t, obstacle) != component.ObstacleNormal || r.ctx.Session.ReadyToShoot {
		t.Fatalf("free obstacle was grabbed")
	}

	touch.Handle(r.ctx, TouchEvent{ID: 1, Phase: TouchMoved, Screen: common.Vec2{X: 50}})
	if len(r.engine.impulses) != 0 {
		t.Fatalf("drag without a grab shot something")
	}
}

func TestTouchDetonatesArmedObstacle(t *testing.T) {
	r, touch := touchRace(t)
	r.ctx.Session.State = component.StatePlay
	obstacle := r.addObstacle(t, common.Vec3{X: 20, Z: -3}, component.ObstacleReadyToBeExploded)

	touch.Handle(r.ctx, began(1, common.Vec2{}, common.Vec3{X: 20.2, Z: -3.1}))
	if ecs.IsAlive(r.ctx.World, obstacle) {
		t.Fatalf("armed obstacle survived the tap")
	}
	if r.ctx.Session.ReadyToShoot {
		t.Fatalf("detonation should not arm a shot")
	}
}

func TestTouchOutsidePlayIgnored(t *testing.T) {
	r, touch := touchRace(t)
	r.ctx.Session.State = component.StateGameOver
	obstacle := r.addObstacle(t, common.Vec3{X: 20, Z: 3}, component.ObstacleInBarrier)
	touch.Handle(r.ctx, began(1, common.Vec2{}, common.Vec3{X: 20, Z: 3}))
	if r.state(t, obstacle) != component.ObstacleInBarrier {
		t.Fatalf("state changed outside play")
	}
}

func TestSteeringControls(t *testing.T) {
	r, touch := touchRace(t)
	r.ctx.Tuning.Variant = prefabs.VariantControls
	r.ctx.Session.State = component.StatePlay

	left := ecs.CreateEntity(r.ctx.World)
	_ = ecs.Add(r.ctx.World, left, component.SteeringControlComponent.Kind(), &component.SteeringControl{
		Owner: component.Player2, Direction: -1, Visible: true, Opacity: 1,
		Bounds: common.Rect{X: 0, Y: 500, Width: 80, Height: 80},
	})

	touch.Handle(r.ctx, TouchEvent{ID: 4, Phase: TouchBegan, Screen: common.Vec2{X: 40, Y: 540}})
	ctrl, _ := ecs.Get(r.ctx.World, left, component.SteeringControlComponent.Kind())
	car, _ := ecs.Get(r.ctx.World, r.cars[component.Player2], component.CarComponent.Kind())
	if !ctrl.Pressed || ctrl.Opacity != r.ctx.Tuning.Shot.PressedOpacity || car.Steer != -1 {
		t.Fatalf("control = %+v, steer = %v", ctrl, car.Steer)
	}

	// A different finger lifting does not release the control.
	touch.Handle(r.ctx, TouchEvent{ID: 5, Phase: TouchEnded})
	if !ctrl.Pressed {
		t.Fatalf("released by another touch")
	}

	touch.Handle(r.ctx, TouchEvent{ID: 4, Phase: TouchEnded, Screen: common.Vec2{X: 40, Y: 540}})
	if ctrl.Pressed || ctrl.Opacity != 1 || car.Steer != 0 {
		t.Fatalf("control = %+v, steer = %v", ctrl, car.Steer)
	}
}

func TestSteeringControlsHiddenInClassic(t *testing.T) {
	r, touch := touchRace(t)
	r.ctx.Session.State = component.StatePlay
	ctrl := ecs.CreateEntity(r.ctx.World)
	_ = ecs.Add(r.ctx.World, ctrl, component.SteeringControlComponent.Kind(), &component.SteeringControl{
		Owner: component.Player1, Direction: 1, Visible: true, Opacity: 1,
		Bounds: common.Rect{Width: 100, Height: 100},
	})
	touch.Handle(r.ctx, TouchEvent{ID: 1, Phase: TouchBegan, Screen: common.Vec2{X: 10, Y: 10}})
	c, _ := ecs.Get(r.ctx.World, ctrl, component.SteeringControlComponent.Kind())
	if c.Pressed {
		t.Fatalf("classic variant should ignore steering controls")
	}
}

func TestLayoutControls(t *testing.T) {
	r := newTestRace(t)
	controls := map[[2]float64]ecs.Entity{}
	for _, owner := range []component.Player{component.Player1, component.Player2} {
		for _, dir := range []float64{-1, 1} {
			e := ecs.CreateEntity(r.ctx.World)
			_ = ecs.Add(r.ctx.World, e, component.SteeringControlComponent.Kind(), &component.SteeringControl{Owner: owner, Direction: dir})
			controls[[2]float64{float64(owner), dir}] = e
		}
	}

	LayoutControls(r.ctx, 400, 1000)

	tests := []struct {
		owner component.Player
		dir   float64
		x     float64
	}{
		{component.Player2, -1, 0},
		{component.Player2, 1, 100},
		{component.Player1, -1, 200},
		{component.Player1, 1, 300},
	}
	for _, tt := range tests {
		c, _ := ecs.Get(r.ctx.World, controls[[2]float64{float64(tt.owner), tt.dir}], component.SteeringControlComponent.Kind())
		want := common.Rect{X: tt.x, Y: 880, Width: 100, Height: 120}
		if c.Bounds != want {
			t.Fatalf("%v %v bounds = %+v, want %+v", tt.owner, tt.dir, c.Bounds, want)
		}
	}
}
