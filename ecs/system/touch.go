package system

import (
	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/prefabs"
)

type TouchPhase int

const (
	TouchBegan TouchPhase = iota + 1
	TouchMoved
	TouchEnded
)

func (p TouchPhase) String() string {
	switch p {
	case TouchBegan:
		return "began"
	case TouchMoved:
		return "moved"
	case TouchEnded:
		return "ended"
	}
	return "unknown"
}

// TouchEvent is a raw pointer sample. World is the screen point projected
// onto the track plane by the client; it is only meaningful when HasWorld.
type TouchEvent struct {
	ID       int
	Phase    TouchPhase
	Screen   common.Vec2
	World    common.Vec3
	HasWorld bool
}

// LaunchVector turns a screen drag into a planar launch impulse. Screen right
// maps to +Z and screen up to +X.
func LaunchVector(start, current common.Vec2, speed float64) common.Vec3 {
	d := current.Sub(start).Normalize()
	return common.Vec3{X: -d.Y * speed, Y: 0, Z: d.X * speed}
}

// TouchInterpreter turns touches into game actions.
type TouchInterpreter struct {
	obstacles *ObstacleManager
	session   *SessionSystem
}

func NewTouchInterpreter(obstacles *ObstacleManager, session *SessionSystem) *TouchInterpreter {
	return &TouchInterpreter{obstacles: obstacles, session: session}
}

func (t *TouchInterpreter) Handle(ctx *GameContext, ev TouchEvent) {
	switch ev.Phase {
	case TouchBegan:
		t.began(ctx, ev)
	case TouchMoved:
		t.moved(ctx, ev)
	case TouchEnded:
		t.ended(ctx, ev)
	}
}

func (t *TouchInterpreter) began(ctx *GameContext, ev TouchEvent) {
	switch ctx.Session.State {
	case component.StateTapToPlay:
		t.session.Start(ctx)
		return
	case component.StatePlay:
	default:
		return
	}

	if t.pressControl(ctx, ev) {
		return
	}
	if !ev.HasWorld {
		return
	}
	hit, ok := ctx.Engine.HitTest(ev.World)
	if !ok {
		return
	}
	obs, ok := ecs.Get(ctx.World, hit, component.ObstacleComponent.Kind())
	if !ok {
		return
	}
	switch obs.State {
	case component.ObstacleInBarrier:
		if t.obstacles.Arm(ctx, hit) {
			ctx.Session.LastTouch = ev.Screen
			ctx.Session.ReadyToShoot = true
		}
	case component.ObstacleReadyToBeExploded:
		t.obstacles.Detonate(ctx, hit)
	}
}

func (t *TouchInterpreter) moved(ctx *GameContext, ev TouchEvent) {
	if ctx.Session.State != component.StatePlay || !ctx.Session.ReadyToShoot {
		return
	}
	if ev.Screen == ctx.Session.LastTouch {
		return
	}
	impulse := LaunchVector(ctx.Session.LastTouch, ev.Screen, ctx.Tuning.Shot.LaunchSpeed)
	t.obstacles.Shoot(ctx, impulse)
	ctx.Session.ReadyToShoot = false
}

func (t *TouchInterpreter) ended(ctx *GameContext, ev TouchEvent) {
	ecs.ForEach(ctx.World, component.SteeringControlComponent.Kind(), func(e ecs.Entity, c *component.SteeringControl) {
		if !c.Pressed || c.Touch != ev.ID {
			return
		}
		c.Pressed = false
		c.Opacity = 1
		setSteer(ctx, c.Owner, 0)
		ctx.Emit(Event{Kind: EventControlPressed, Entity: e, Visible: c.Visible, Opacity: c.Opacity})
	})
}

// pressControl dims and engages the steering control under the touch.
func (t *TouchInterpreter) pressControl(ctx *GameContext, ev TouchEvent) bool {
	if ctx.Tuning.Variant != prefabs.VariantControls {
		return false
	}
	pressed := false
	ecs.ForEach(ctx.World, component.SteeringControlComponent.Kind(), func(e ecs.Entity, c *component.SteeringControl) {
		if pressed || !c.Visible || !c.Bounds.Contains(ev.Screen) {
			return
		}
		pressed = true
		c.Pressed = true
		c.Touch = ev.ID
		c.Opacity = ctx.Tuning.Shot.PressedOpacity
		setSteer(ctx, c.Owner, c.Direction)
		ctx.Emit(Event{Kind: EventControlPressed, Entity: e, Visible: true, Opacity: c.Opacity})
	})
	return pressed
}

func setSteer(ctx *GameContext, owner component.Player, dir float64) {
	ecs.ForEach(ctx.World, component.CarComponent.Kind(), func(_ ecs.Entity, car *component.Car) {
		if car.Player == owner {
			car.Steer = common.Clamp(dir, -1, 1)
		}
	})
}

// LayoutControls places the steering controls along the bottom of a
// width x height screen. Each racer owns the half of the screen on its side
// of the track, split into a -Z and a +Z button.
func LayoutControls(ctx *GameContext, width, height float64) {
	bw := width / 4
	bh := height * 0.12
	y := height - bh
	ecs.ForEach(ctx.World, component.SteeringControlComponent.Kind(), func(_ ecs.Entity, c *component.SteeringControl) {
		x := 0.0
		if c.Owner == component.Player1 {
			x = width / 2
		}
		if c.Direction > 0 {
			x += bw
		}
		c.Bounds = common.Rect{X: x, Y: y, Width: bw, Height: bh}
	})
}
