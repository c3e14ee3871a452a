package component

import "github.com/milk9111/crashthatcar/common"

// Player identifies one of the two racers.
type Player int

const (
	Player1 Player = iota + 1
	Player2
)

func (p Player) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	}
	return "unknown"
}

// Opponent returns the other racer.
func (p Player) Opponent() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Car is one of the two racing cars.
type Car struct {
	Player Player
	// Start is the recorded presentation position restored on replay.
	Start common.Vec3
	// Steer is the current lateral input in [-1, 1] from the on-screen controls.
	Steer float64
}

var CarComponent = NewComponent[Car]()

// Barrier is the kinematic shield that rides Lead units ahead of its car.
type Barrier struct {
	Owner Player
	Lead  float64
}

var BarrierComponent = NewComponent[Barrier]()

// SteeringControl is an on-screen button that steers its owner's car
// laterally while pressed.
type SteeringControl struct {
	Owner     Player
	Direction float64
	Visible   bool
	Pressed   bool
	Opacity   float64
	// Bounds is the on-screen hit area, laid out by the client.
	Bounds common.Rect
	// Touch is the id of the touch holding the control down.
	Touch int
}

var SteeringControlComponent = NewComponent[SteeringControl]()
