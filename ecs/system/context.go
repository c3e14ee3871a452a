package system

import (
	"math/rand"
	"time"

	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
	"github.com/milk9111/crashthatcar/logger"
	"github.com/milk9111/crashthatcar/prefabs"
)

// GameContext is everything a system may touch during a frame. Systems keep
// no references to each other; they talk through the queues here.
type GameContext struct {
	World   *ecs.World
	Session *component.Session
	Engine  Engine
	Timers  *TimerQueue
	Events  *ecs.EventQueue[Event]
	// GameOvers carries finish-line outcomes from contact resolution to the
	// session.
	GameOvers *ecs.EventQueue[GameOverRequest]
	Tuning    prefabs.TuningSpec
	Log       *logger.Logger
	Rand      *rand.Rand

	// Now is game time in seconds; Dt the length of the current frame.
	Now float64
	Dt  float64
}

func NewGameContext(w *ecs.World, engine Engine, tuning prefabs.TuningSpec, log *logger.Logger) *GameContext {
	if log == nil {
		log = logger.Nop()
	}
	seed := tuning.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &GameContext{
		World:     w,
		Session:   &component.Session{Camera: tuning.Camera.Home},
		Engine:    engine,
		Timers:    NewTimerQueue(),
		Events:    &ecs.EventQueue[Event]{},
		GameOvers: &ecs.EventQueue[GameOverRequest]{},
		Tuning:    tuning,
		Log:       log,
		Rand:      rand.New(rand.NewSource(seed)),
	}
}

// Emit queues an outbound event.
func (ctx *GameContext) Emit(evt Event) {
	ctx.Events.Push(evt)
}

func (ctx *GameContext) cue(c Cue) {
	ctx.Events.Push(Event{Kind: EventCue, Cue: c})
}

// SetState moves the session to s and reports the change.
func (ctx *GameContext) SetState(s component.GameState) {
	if ctx.Session.State == s {
		return
	}
	ctx.Log.Infow("session state", "from", ctx.Session.State, "to", s)
	ctx.Session.State = s
	ctx.Emit(Event{Kind: EventStateChanged, State: s})
}
