package component

// ObstacleState is the launchable obstacle lifecycle. Values are ordered; a
// state may only move to one of its successors in obstacleTransitions.
type ObstacleState int

const (
	ObstacleNormal ObstacleState = iota
	ObstacleInBarrier
	ObstacleBeingShotFromPlayer1
	ObstacleBeingShotFromPlayer2
	ObstacleShotFromPlayer1
	ObstacleShotFromPlayer2
	ObstacleReadyToBeExploded
)

var obstacleStateNames = [...]string{
	ObstacleNormal:               "normal",
	ObstacleInBarrier:            "in_barrier",
	ObstacleBeingShotFromPlayer1: "being_shot_p1",
	ObstacleBeingShotFromPlayer2: "being_shot_p2",
	ObstacleShotFromPlayer1:      "shot_p1",
	ObstacleShotFromPlayer2:      "shot_p2",
	ObstacleReadyToBeExploded:    "ready_to_explode",
}

func (s ObstacleState) String() string {
	if s < 0 || int(s) >= len(obstacleStateNames) {
		return "unknown"
	}
	return obstacleStateNames[s]
}

var obstacleTransitions = map[ObstacleState][]ObstacleState{
	ObstacleNormal:               {ObstacleInBarrier},
	ObstacleInBarrier:            {ObstacleBeingShotFromPlayer1, ObstacleBeingShotFromPlayer2},
	ObstacleBeingShotFromPlayer1: {ObstacleShotFromPlayer1},
	ObstacleBeingShotFromPlayer2: {ObstacleShotFromPlayer2},
	ObstacleShotFromPlayer1:      {ObstacleReadyToBeExploded},
	ObstacleShotFromPlayer2:      {ObstacleReadyToBeExploded},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to ObstacleState) bool {
	for _, next := range obstacleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BeingShot reports whether s is one of the BeingShotFromPlayerN states.
func (s ObstacleState) BeingShot() bool {
	return s == ObstacleBeingShotFromPlayer1 || s == ObstacleBeingShotFromPlayer2
}

// Obstacle is a launchable obstacle.
type Obstacle struct {
	State ObstacleState
	// Wave is the spawn index inside its wave, kept for logging.
	Wave int
}

// Advance moves the obstacle to next when the edge is legal.
func (o *Obstacle) Advance(next ObstacleState) bool {
	if o == nil || !CanTransition(o.State, next) {
		return false
	}
	o.State = next
	return true
}

var ObstacleComponent = NewComponent[Obstacle]()

// SpeedUp is a static pickup that boosts the car touching it.
type SpeedUp struct {
	Wave int
}

var SpeedUpComponent = NewComponent[SpeedUp]()
