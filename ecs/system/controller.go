package system

import (
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/prefabs"
)

// Controller is the race orchestrator. One Frame call runs, in order: due
// spawn timers, the session, the physics step and contact resolution.
type Controller struct {
	ctx       *GameContext
	Obstacles *ObstacleManager
	Contacts  *ContactResolver
	Session   *SessionSystem
	Touches   *TouchInterpreter

	scheduler *ecs.Scheduler[*GameContext]
	contacts  []Contact
}

func NewController(ctx *GameContext, intro []prefabs.Waypoint) *Controller {
	obstacles := NewObstacleManager()
	session := NewSessionSystem(obstacles, NewCameraRig(intro))
	c := &Controller{
		ctx:       ctx,
		Obstacles: obstacles,
		Contacts:  NewContactResolver(obstacles),
		Session:   session,
		Touches:   NewTouchInterpreter(obstacles, session),
	}
	c.scheduler = ecs.NewScheduler[*GameContext](
		ctx.Timers,
		session,
		ecs.SystemFunc[*GameContext](c.step),
		ecs.SystemFunc[*GameContext](c.resolve),
	)
	return c
}

func (c *Controller) Context() *GameContext {
	return c.ctx
}

// Begin starts the first intro and schedules the opening wave.
func (c *Controller) Begin() {
	c.Session.Begin(c.ctx)
	c.Obstacles.SpawnWave(c.ctx, c.ctx.Tuning.Wave)
}

// Frame advances the game by dt seconds and returns the events it produced,
// including those raised by touches since the previous frame.
func (c *Controller) Frame(dt float64) []Event {
	c.ctx.Dt = dt
	c.ctx.Now += dt
	c.scheduler.Update(c.ctx)
	return c.ctx.Events.Drain()
}

func (c *Controller) HandleTouch(ev TouchEvent) {
	c.Touches.Handle(c.ctx, ev)
}

func (c *Controller) Replay() bool {
	return c.Session.Replay(c.ctx)
}

// ApplyTuning swaps tuning between rounds. It is refused mid-race.
func (c *Controller) ApplyTuning(t prefabs.TuningSpec) bool {
	if c.ctx.Session.State == component.StatePlay {
		return false
	}
	c.ctx.Tuning = t
	c.Obstacles.Retune(t.Wave)
	ecs.ForEach(c.ctx.World, component.BarrierComponent.Kind(), func(_ ecs.Entity, b *component.Barrier) {
		b.Lead = t.Car.BarrierLead
	})
	return true
}

func (c *Controller) step(ctx *GameContext) {
	c.contacts = append(c.contacts[:0], ctx.Engine.Step(ctx.Dt)...)
}

func (c *Controller) resolve(ctx *GameContext) {
	for _, contact := range c.contacts {
		c.Contacts.Handle(ctx, contact)
	}
	c.Session.ApplyRequests(ctx)
}
