package system

import (
	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs"
	"github.com/milk9111/crashthatcar/ecs/component"
)

// EventKind names an outbound notification for the host.
type EventKind int

const (
	EventSpawned EventKind = iota + 1
	EventExploded
	EventObstacleArmed
	EventObstacleGrabbed
	EventObstacleShot
	EventStateChanged
	EventPromptVisible
	EventControlsVisible
	EventControlPressed
	EventGameOver
	EventOverlayHidden
	EventCue
)

var eventKindNames = map[EventKind]string{
	EventSpawned:         "spawned",
	EventExploded:        "exploded",
	EventObstacleArmed:   "obstacle_armed",
	EventObstacleGrabbed: "obstacle_grabbed",
	EventObstacleShot:    "obstacle_shot",
	EventStateChanged:    "state_changed",
	EventPromptVisible:   "prompt_visible",
	EventControlsVisible: "controls_visible",
	EventControlPressed:  "control_pressed",
	EventGameOver:        "game_over",
	EventOverlayHidden:   "overlay_hidden",
	EventCue:             "cue",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Cue is a one-shot audio cue name.
type Cue string

const (
	CuePop          Cue = "pop"
	CueExplosion    Cue = "explosion"
	CueBigExplosion Cue = "big_explosion"
	CueSpeedUp      Cue = "speed_up"
	CueShot         Cue = "shot"
	CueArmed        Cue = "armed"
	CueFinish       Cue = "finish"
	CueStart        Cue = "start"
)

// Event is the single outbound message type. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind     EventKind           `json:"type"`
	Entity   ecs.Entity          `json:"entity,omitempty"`
	Category component.Category  `json:"category,omitempty"`
	Position common.Vec3         `json:"position"`
	Impulse  common.Vec3         `json:"impulse"`
	Big      bool                `json:"big,omitempty"`
	State    component.GameState `json:"state,omitempty"`
	Visible  bool                `json:"visible,omitempty"`
	Opacity  float64             `json:"opacity,omitempty"`
	Winner   component.Player    `json:"winner,omitempty"`
	Label    string              `json:"label,omitempty"`
	AtFinish bool                `json:"at_finish,omitempty"`
	Cue      Cue                 `json:"cue,omitempty"`
}

// GameOverRequest is posted by the contact resolver and consumed by the
// session once contacts for the frame are resolved.
type GameOverRequest struct {
	Winner   component.Player
	AtFinish bool
}
