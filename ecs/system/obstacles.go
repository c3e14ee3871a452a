package system

import (
	"fmt"
	"math"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/prefabs"
)

// ObstacleManager owns the live obstacles and speed-ups. Every registry
// insert or removal is mirrored to the engine in the same call.
type ObstacleManager struct {
	wave    prefabs.WaveSpec
	spawned bool
}

func NewObstacleManager() *ObstacleManager {
	return &ObstacleManager{}
}

// SpawnWave schedules wave.Count pairs of obstacles, one on each side of the
// middle line, plus one speed-up per lane. Insertions are staggered by
// wave.StaggerInterval in insertion order.
func (m *ObstacleManager) SpawnWave(ctx *GameContext, wave prefabs.WaveSpec) {
	m.wave = wave
	m.spawned = true

	maxLateral := lateralBound(ctx.Tuning)
	k := 0
	schedule := func(pos common.Vec3, category component.Category, lane int) {
		delay := float64(k) * wave.StaggerInterval
		k++
		spin := (ctx.Rand.Float64()*2 - 1) * wave.MaxSpin
		ctx.Timers.At(ctx.Now+delay, func(ctx *GameContext) {
			m.insert(ctx, wave, pos, category, lane, spin)
		})
	}

	for i := 1; i <= wave.Count; i++ {
		x := float64(i) * wave.LaneSpacing
		for _, sign := range [...]float64{-1, 1} {
			z := sign * (1 + ctx.Rand.Float64()*(maxLateral-1))
			schedule(common.Vec3{X: x, Y: wave.ObstacleHeight, Z: z}, component.CategoryObstacle, i)
		}
		side := 1.0
		if ctx.Rand.Intn(2) == 0 {
			side = -1
		}
		z := side * (1 + ctx.Rand.Float64()*(maxLateral-1))
		schedule(common.Vec3{X: x + wave.LaneSpacing/2, Y: wave.ObstacleHeight, Z: z}, component.CategorySpeedUp, i)
	}
	ctx.Log.Debugw("wave scheduled", "count", wave.Count, "insertions", k)
}

func (m *ObstacleManager) insert(ctx *GameContext, wave prefabs.WaveSpec, pos common.Vec3, category component.Category, lane int, spin float64) {
	desc, ok := Classify(category)
	if !ok {
		return
	}
	body := component.Body{
		Descriptor: desc,
		Position:   pos,
	}
	e := ecs.CreateEntity(ctx.World)
	if err := m.attach(ctx, e, wave, &body, lane, spin); err != nil {
		ctx.Log.Warnw("spawn rejected", "entity", e, "category", category, "error", err)
		ecs.DestroyEntity(ctx.World, e)
		return
	}
	ctx.Emit(Event{Kind: EventSpawned, Entity: e, Category: category, Position: pos})
	ctx.cue(CuePop)
}

// attach gives e its role component and body, then registers the body with
// the engine. The caller destroys e on error.
func (m *ObstacleManager) attach(ctx *GameContext, e ecs.Entity, wave prefabs.WaveSpec, body *component.Body, lane int, spin float64) error {
	switch body.Descriptor.Category {
	case component.CategoryObstacle:
		body.Kind = component.BodyDynamic
		body.Shape = component.Shape{Kind: component.ShapeCircle, Radius: wave.ObstacleRadius}
		body.Mass = 1
		body.AngularVelocity = spin
		if err := ecs.Add(ctx.World, e, component.ObstacleComponent.Kind(), &component.Obstacle{Wave: lane}); err != nil {
			return err
		}
	case component.CategorySpeedUp:
		body.Kind = component.BodyStatic
		body.Shape = component.Shape{Kind: component.ShapeCircle, Radius: wave.SpeedUpRadius}
		if err := ecs.Add(ctx.World, e, component.SpeedUpComponent.Kind(), &component.SpeedUp{Wave: lane}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("not a spawnable category: %v", body.Descriptor.Category)
	}
	if err := ecs.Add(ctx.World, e, component.BodyComponent.Kind(), body); err != nil {
		return err
	}
	if err := ctx.Engine.AddBody(e, *body); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// Retune replaces the wave used by the next ResetForReplay.
func (m *ObstacleManager) Retune(wave prefabs.WaveSpec) {
	m.wave = wave
}

// CancelPending drops every insertion that has not fired yet.
func (m *ObstacleManager) CancelPending(ctx *GameContext) int {
	return ctx.Timers.CancelAll()
}

// Pending reports how many insertions have not fired yet.
func (m *ObstacleManager) Pending(ctx *GameContext) int {
	return ctx.Timers.Len()
}

// Live returns the live obstacle and speed-up entities.
func (m *ObstacleManager) Live(ctx *GameContext) (obstacles, speedUps []ecs.Entity) {
	ecs.ForEach(ctx.World, component.ObstacleComponent.Kind(), func(e ecs.Entity, _ *component.Obstacle) {
		obstacles = append(obstacles, e)
	})
	ecs.ForEach(ctx.World, component.SpeedUpComponent.Kind(), func(e ecs.Entity, _ *component.SpeedUp) {
		speedUps = append(speedUps, e)
	})
	return obstacles, speedUps
}

// OnEnteredBarrier arms a fresh obstacle for shooting, or arms a shot
// obstacle for detonation once it is on the opposing half of the track.
func (m *ObstacleManager) OnEnteredBarrier(ctx *GameContext, e ecs.Entity) bool {
	obs, ok := ecs.Get(ctx.World, e, component.ObstacleComponent.Kind())
	if !ok {
		return false
	}
	switch obs.State {
	case component.ObstacleNormal:
		if !obs.Advance(component.ObstacleInBarrier) {
			return false
		}
		ctx.Log.Debugw("obstacle caught", "entity", e)
		return true
	case component.ObstacleShotFromPlayer1, component.ObstacleShotFromPlayer2:
		pos, ok := ctx.Engine.Position(e)
		if !ok {
			return false
		}
		crossed := (obs.State == component.ObstacleShotFromPlayer1 && pos.Z < 0) ||
			(obs.State == component.ObstacleShotFromPlayer2 && pos.Z > 0)
		if !crossed || !obs.Advance(component.ObstacleReadyToBeExploded) {
			return false
		}
		ctx.Emit(Event{Kind: EventObstacleArmed, Entity: e, Position: pos})
		ctx.cue(CueArmed)
		return true
	}
	return false
}

// Arm marks a caught obstacle as being shot by the player whose half of the
// track it sits on.
func (m *ObstacleManager) Arm(ctx *GameContext, e ecs.Entity) bool {
	obs, ok := ecs.Get(ctx.World, e, component.ObstacleComponent.Kind())
	if !ok || obs.State != component.ObstacleInBarrier {
		return false
	}
	pos, ok := ctx.Engine.Position(e)
	if !ok {
		return false
	}
	next := component.ObstacleBeingShotFromPlayer2
	if pos.Z > 0 {
		next = component.ObstacleBeingShotFromPlayer1
	}
	if !obs.Advance(next) {
		return false
	}
	ctx.Emit(Event{Kind: EventObstacleGrabbed, Entity: e, Position: pos})
	return true
}

// Shoot applies impulse to every obstacle being shot and returns how many
// were launched.
func (m *ObstacleManager) Shoot(ctx *GameContext, impulse common.Vec3) int {
	n := 0
	ecs.ForEach(ctx.World, component.ObstacleComponent.Kind(), func(e ecs.Entity, obs *component.Obstacle) {
		var next component.ObstacleState
		switch obs.State {
		case component.ObstacleBeingShotFromPlayer1:
			next = component.ObstacleShotFromPlayer1
		case component.ObstacleBeingShotFromPlayer2:
			next = component.ObstacleShotFromPlayer2
		default:
			return
		}
		ctx.Engine.ApplyImpulse(e, impulse)
		obs.Advance(next)
		pos, _ := ctx.Engine.Position(e)
		ctx.Emit(Event{Kind: EventObstacleShot, Entity: e, Position: pos, Impulse: impulse})
		n++
	})
	if n > 0 {
		ctx.cue(CueShot)
	}
	return n
}

// Explode removes an obstacle or speed-up from the registry and the engine.
// Dead or unknown handles are ignored.
func (m *ObstacleManager) Explode(ctx *GameContext, e ecs.Entity, big bool) bool {
	if !ecs.IsAlive(ctx.World, e) {
		return false
	}
	category := component.CategoryObstacle
	if !ecs.Has(ctx.World, e, component.ObstacleComponent.Kind()) {
		if !ecs.Has(ctx.World, e, component.SpeedUpComponent.Kind()) {
			return false
		}
		category = component.CategorySpeedUp
	}

	pos, _ := ctx.Engine.Position(e)
	ctx.Engine.RemoveBody(e)
	ecs.DestroyEntity(ctx.World, e)

	ctx.Emit(Event{Kind: EventExploded, Entity: e, Category: category, Position: pos, Big: big})
	if big {
		ctx.cue(CueBigExplosion)
	} else {
		ctx.cue(CueExplosion)
	}
	return true
}

// Detonate explodes an obstacle that has been armed for detonation.
func (m *ObstacleManager) Detonate(ctx *GameContext, e ecs.Entity) bool {
	obs, ok := ecs.Get(ctx.World, e, component.ObstacleComponent.Kind())
	if !ok || obs.State != component.ObstacleReadyToBeExploded {
		return false
	}
	return m.Explode(ctx, e, false)
}

// ExplodeAll clears the track.
func (m *ObstacleManager) ExplodeAll(ctx *GameContext) int {
	obstacles, speedUps := m.Live(ctx)
	n := 0
	for _, e := range obstacles {
		if m.Explode(ctx, e, false) {
			n++
		}
	}
	for _, e := range speedUps {
		if m.Explode(ctx, e, false) {
			n++
		}
	}
	return n
}

// ResetForReplay drops pending insertions and the live set, then schedules
// the last wave again.
func (m *ObstacleManager) ResetForReplay(ctx *GameContext) {
	dropped := m.CancelPending(ctx)
	obstacles, speedUps := m.Live(ctx)
	for _, e := range append(obstacles, speedUps...) {
		ctx.Engine.RemoveBody(e)
		ecs.DestroyEntity(ctx.World, e)
	}
	ctx.Log.Debugw("obstacles reset", "cancelled", dropped, "removed", len(obstacles)+len(speedUps))
	if m.spawned {
		m.SpawnWave(ctx, m.wave)
	}
}

// lateralBound is the widest |z| a spawned body may take.
func lateralBound(t prefabs.TuningSpec) float64 {
	return math.Max(1, t.Track.HalfWidth-t.Track.Margin)
}
