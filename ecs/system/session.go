package system

import (
	"math"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/prefabs"
)

// SessionSystem runs the race state machine: intro, start, per-frame race
// rules, game over and replay.
type SessionSystem struct {
	obstacles *ObstacleManager
	camera    *CameraRig
}

func NewSessionSystem(obstacles *ObstacleManager, camera *CameraRig) *SessionSystem {
	if camera == nil {
		camera = NewCameraRig(nil)
	}
	return &SessionSystem{obstacles: obstacles, camera: camera}
}

// Begin enters PreparingScene with the intro starting from the home camera.
func (s *SessionSystem) Begin(ctx *GameContext) {
	ctx.Session.Camera = ctx.Tuning.Camera.Home
	s.camera.Restart(ctx.Session.Camera)
	ctx.Session.State = component.StatePreparingScene
	ctx.Emit(Event{Kind: EventStateChanged, State: component.StatePreparingScene})
}

func (s *SessionSystem) Update(ctx *GameContext) {
	switch ctx.Session.State {
	case component.StatePreparingScene:
		ctx.Session.Camera = s.camera.Advance(ctx.Session.Camera, ctx.Dt)
		if s.camera.Done() {
			ctx.SetState(component.StateTapToPlay)
			ctx.Emit(Event{Kind: EventPromptVisible, Visible: true})
			ctx.cue(CuePop)
		}
	case component.StatePlay:
		s.steer(ctx)
		s.trackBarriers(ctx)
		s.followCars(ctx)
		s.checkStuck(ctx)
	}
}

// Start launches the race from TapToPlay.
func (s *SessionSystem) Start(ctx *GameContext) bool {
	if ctx.Session.State != component.StateTapToPlay {
		return false
	}
	ctx.Emit(Event{Kind: EventPromptVisible, Visible: false})

	drive := common.Vec3{X: ctx.Tuning.Car.DriveSpeed}
	ecs.ForEach(ctx.World, component.CarComponent.Kind(), func(e ecs.Entity, car *component.Car) {
		ctx.Engine.SetVelocity(e, common.Vec3{})
		ctx.Engine.SetVelocity(e, drive)
		car.Steer = 0
	})
	if ctx.Tuning.Variant == prefabs.VariantControls {
		s.setControlsVisible(ctx, true)
	}

	ctx.Session.Round++
	ctx.Session.ReadyToShoot = false
	ctx.Session.Winner = 0
	ctx.Session.WinnerLabel = ""
	ctx.Session.AtFinish = false
	ctx.SetState(component.StatePlay)
	ctx.cue(CueStart)
	return true
}

// GameOver ends the round with winner. It only fires from Play, so repeated
// triggers in the same or later frames are ignored.
func (s *SessionSystem) GameOver(ctx *GameContext, winner component.Player, atFinish bool) bool {
	if ctx.Session.State != component.StatePlay {
		return false
	}

	label := "second"
	resetCars := ctx.Tuning.Car.ResetOnGameOver || ctx.Tuning.Variant == prefabs.VariantControls
	ecs.ForEach(ctx.World, component.CarComponent.Kind(), func(e ecs.Entity, car *component.Car) {
		if car.Player == winner {
			if pos, ok := ctx.Engine.Position(e); ok && pos.Z > 0 {
				label = "first"
			}
		}
		ctx.Engine.SetVelocity(e, common.Vec3{})
		car.Steer = 0
		if resetCars {
			ctx.Engine.SetPosition(e, car.Start)
		}
	})
	if resetCars {
		s.trackBarriers(ctx)
	}
	s.setControlsVisible(ctx, false)

	ctx.Session.Winner = winner
	ctx.Session.WinnerLabel = label
	ctx.Session.AtFinish = atFinish
	ctx.Session.ReadyToShoot = false
	ctx.SetState(component.StateGameOver)

	cancelled := s.obstacles.CancelPending(ctx)
	exploded := s.obstacles.ExplodeAll(ctx)
	ctx.Log.Infow("game over", "winner", winner, "label", label, "at_finish", atFinish, "cleared", exploded, "cancelled", cancelled)
	ctx.Emit(Event{Kind: EventGameOver, Winner: winner, Label: label, AtFinish: atFinish})
	ctx.cue(CueFinish)
	return true
}

// ApplyRequests consumes game-over requests posted during contact
// resolution.
func (s *SessionSystem) ApplyRequests(ctx *GameContext) {
	for _, req := range ctx.GameOvers.Drain() {
		s.GameOver(ctx, req.Winner, req.AtFinish)
	}
}

// Replay restores the starting grid and replays the intro.
func (s *SessionSystem) Replay(ctx *GameContext) bool {
	if ctx.Session.State != component.StateGameOver {
		return false
	}
	ctx.Emit(Event{Kind: EventOverlayHidden})

	ecs.ForEach(ctx.World, component.CarComponent.Kind(), func(e ecs.Entity, car *component.Car) {
		ctx.Engine.SetPosition(e, car.Start)
		ctx.Engine.SetVelocity(e, common.Vec3{})
		car.Steer = 0
	})
	s.trackBarriers(ctx)

	ctx.Session.Camera = ctx.Tuning.Camera.Home
	s.camera.Restart(ctx.Session.Camera)
	s.obstacles.ResetForReplay(ctx)
	ctx.SetState(component.StatePreparingScene)
	return true
}

// SetCameraPath swaps the intro path, e.g. after a script reload.
func (s *SessionSystem) SetCameraPath(path []prefabs.Waypoint) {
	s.camera.SetPath(path)
}

func (s *SessionSystem) steer(ctx *GameContext) {
	ecs.ForEach(ctx.World, component.CarComponent.Kind(), func(e ecs.Entity, car *component.Car) {
		v, ok := ctx.Engine.Velocity(e)
		if !ok {
			return
		}
		lateral := car.Steer * ctx.Tuning.Car.SteerSpeed
		if v.Z == lateral {
			return
		}
		v.Z = lateral
		ctx.Engine.SetVelocity(e, v)
	})
}

// trackBarriers keeps each barrier Lead units ahead of its car.
func (s *SessionSystem) trackBarriers(ctx *GameContext) {
	cars := carsByPlayer(ctx)
	ecs.ForEach(ctx.World, component.BarrierComponent.Kind(), func(e ecs.Entity, b *component.Barrier) {
		car, ok := cars[b.Owner]
		if !ok {
			return
		}
		pos, ok := ctx.Engine.Position(car)
		if !ok {
			return
		}
		pos.X += b.Lead
		ctx.Engine.SetPosition(e, pos)
	})
}

func (s *SessionSystem) followCars(ctx *GameContext) {
	lead := math.Inf(-1)
	ecs.ForEach(ctx.World, component.CarComponent.Kind(), func(e ecs.Entity, _ *component.Car) {
		if pos, ok := ctx.Engine.Position(e); ok && pos.X > lead {
			lead = pos.X
		}
	})
	if math.IsInf(lead, -1) {
		return
	}
	cam := ctx.Tuning.Camera.Home
	cam.X += lead
	ctx.Session.Camera = cam
}

// checkStuck hands the race to the opponent of a car that has left the
// start but stopped moving forward.
func (s *SessionSystem) checkStuck(ctx *GameContext) {
	var loser component.Player
	ecs.ForEach(ctx.World, component.CarComponent.Kind(), func(e ecs.Entity, car *component.Car) {
		if loser != 0 {
			return
		}
		pos, okP := ctx.Engine.Position(e)
		vel, okV := ctx.Engine.Velocity(e)
		if !okP || !okV {
			return
		}
		if pos.X > 0 && math.Abs(vel.X) < ctx.Tuning.Car.StuckThreshold {
			loser = car.Player
		}
	})
	if loser != 0 {
		s.GameOver(ctx, loser.Opponent(), false)
	}
}

func (s *SessionSystem) setControlsVisible(ctx *GameContext, visible bool) {
	changed := false
	ecs.ForEach(ctx.World, component.SteeringControlComponent.Kind(), func(_ ecs.Entity, c *component.SteeringControl) {
		if c.Visible != visible {
			changed = true
		}
		c.Visible = visible
		c.Pressed = false
		c.Opacity = 1
	})
	if changed {
		ctx.Emit(Event{Kind: EventControlsVisible, Visible: visible})
	}
}

func carsByPlayer(ctx *GameContext) map[component.Player]ecs.Entity {
	cars := make(map[component.Player]ecs.Entity, 2)
	ecs.ForEach(ctx.World, component.CarComponent.Kind(), func(e ecs.Entity, car *component.Car) {
		cars[car.Player] = e
	})
	return cars
}
