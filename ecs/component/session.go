package component

import "github.com/milk9111/crashthatcar/common"

// GameState gates which inputs and updates are processed.
type GameState int

const (
	StatePreparingScene GameState = iota
	StateTapToPlay
	StatePlay
	StateGameOver
	// Reserved: declared for future flows, no behavior is attached.
	StateShowingTutorial
	StateCountDown
	StateGameOverTapToPlay
)

func (s GameState) String() string {
	switch s {
	case StatePreparingScene:
		return "preparing_scene"
	case StateTapToPlay:
		return "tap_to_play"
	case StatePlay:
		return "play"
	case StateGameOver:
		return "game_over"
	case StateShowingTutorial:
		return "showing_tutorial"
	case StateCountDown:
		return "count_down"
	case StateGameOverTapToPlay:
		return "game_over_tap_to_play"
	}
	return "unknown"
}

// Session is the process-wide race state. Only the controller mutates it.
type Session struct {
	State        GameState
	ReadyToShoot bool
	LastTouch    common.Vec2
	// Winner and WinnerLabel are set on game over.
	Winner      Player
	WinnerLabel string
	AtFinish    bool
	// Camera is the current camera rig position.
	Camera common.Vec3
	// Round counts started races.
	Round int
}
