package system

import (
	"math"

	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
)

// Outcome is the semantic meaning of a contact.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCarHitObstacle
	OutcomeCarHitSpeedUp
	OutcomeCarCrossedFinish
	OutcomeObstacleEnteredBarrier
	OutcomeObstacleHitBorder
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCarHitObstacle:
		return "car_hit_obstacle"
	case OutcomeCarHitSpeedUp:
		return "car_hit_speed_up"
	case OutcomeCarCrossedFinish:
		return "car_crossed_finish"
	case OutcomeObstacleEnteredBarrier:
		return "obstacle_entered_barrier"
	case OutcomeObstacleHitBorder:
		return "obstacle_hit_border"
	}
	return "none"
}

// Resolution is a classified contact. Actor is the car or barrier side,
// Subject the obstacle, speed-up or line side.
type Resolution struct {
	Outcome Outcome
	Actor   ecs.Entity
	Subject ecs.Entity
}

type contactRule struct {
	actor, subject component.Category
	outcome        Outcome
}

// contactRules is evaluated in order; the first match wins.
var contactRules = []contactRule{
	{component.CategoryCar, component.CategoryObstacle, OutcomeCarHitObstacle},
	{component.CategoryCar, component.CategorySpeedUp, OutcomeCarHitSpeedUp},
	{component.CategoryCar, component.CategoryFinishLine, OutcomeCarCrossedFinish},
	{component.CategoryBarrier, component.CategoryObstacle, OutcomeObstacleEnteredBarrier},
	{component.CategoryBorderLine, component.CategoryObstacle, OutcomeObstacleHitBorder},
}

// Resolve classifies a contact without side effects. Pairs outside the table
// and contacts naming dead entities resolve to OutcomeNone.
func Resolve(w *ecs.World, c Contact) Resolution {
	if !ecs.IsAlive(w, c.A) || !ecs.IsAlive(w, c.B) {
		return Resolution{}
	}
	for _, r := range contactRules {
		switch {
		case c.CategoryA == r.actor && c.CategoryB == r.subject:
			return Resolution{Outcome: r.outcome, Actor: c.A, Subject: c.B}
		case c.CategoryB == r.actor && c.CategoryA == r.subject:
			return Resolution{Outcome: r.outcome, Actor: c.B, Subject: c.A}
		}
	}
	return Resolution{}
}

// ContactResolver applies resolved contacts. It only acts during Play.
type ContactResolver struct {
	obstacles *ObstacleManager
}

func NewContactResolver(obstacles *ObstacleManager) *ContactResolver {
	return &ContactResolver{obstacles: obstacles}
}

// Handle resolves and applies one contact, returning what it did.
func (r *ContactResolver) Handle(ctx *GameContext, c Contact) Outcome {
	if ctx.Session.State != component.StatePlay {
		return OutcomeNone
	}
	res := Resolve(ctx.World, c)
	switch res.Outcome {
	case OutcomeCarHitObstacle:
		if r.obstacles.Explode(ctx, res.Subject, true) {
			adjustCarSpeed(ctx, res.Actor, -ctx.Tuning.Car.SpeedDecrement)
		}
	case OutcomeCarHitSpeedUp:
		if r.obstacles.Explode(ctx, res.Subject, false) {
			adjustCarSpeed(ctx, res.Actor, ctx.Tuning.Car.SpeedIncrement)
			ctx.cue(CueSpeedUp)
		}
	case OutcomeCarCrossedFinish:
		car, ok := ecs.Get(ctx.World, res.Actor, component.CarComponent.Kind())
		if !ok {
			return OutcomeNone
		}
		ctx.GameOvers.Push(GameOverRequest{Winner: car.Player, AtFinish: true})
	case OutcomeObstacleEnteredBarrier:
		r.obstacles.OnEnteredBarrier(ctx, res.Subject)
	case OutcomeObstacleHitBorder:
		r.obstacles.Explode(ctx, res.Subject, false)
	default:
		return OutcomeNone
	}
	ctx.Log.Debugw("contact", "outcome", res.Outcome, "actor", res.Actor, "subject", res.Subject)
	return res.Outcome
}

// adjustCarSpeed changes a car's forward speed, never below zero.
func adjustCarSpeed(ctx *GameContext, car ecs.Entity, delta float64) {
	v, ok := ctx.Engine.Velocity(car)
	if !ok {
		return
	}
	v.X = math.Max(0, v.X+delta)
	ctx.Engine.SetVelocity(car, v)
}
