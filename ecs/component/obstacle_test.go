package component

import "testing"

func TestObstacleTransitions(t *testing.T) {
	legal := map[[2]ObstacleState]bool{
		{ObstacleNormal, ObstacleInBarrier}:                     true,
		{ObstacleInBarrier, ObstacleBeingShotFromPlayer1}:       true,
		{ObstacleInBarrier, ObstacleBeingShotFromPlayer2}:       true,
		{ObstacleBeingShotFromPlayer1, ObstacleShotFromPlayer1}: true,
		{ObstacleBeingShotFromPlayer2, ObstacleShotFromPlayer2}: true,
		{ObstacleShotFromPlayer1, ObstacleReadyToBeExploded}:    true,
		{ObstacleShotFromPlayer2, ObstacleReadyToBeExploded}:    true,
	}
	for from := ObstacleNormal; from <= ObstacleReadyToBeExploded; from++ {
		for to := ObstacleNormal; to <= ObstacleReadyToBeExploded; to++ {
			want := legal[[2]ObstacleState{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%v, %v) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestObstacleAdvance(t *testing.T) {
	o := &Obstacle{}
	if o.Advance(ObstacleReadyToBeExploded) {
		t.Fatalf("skipped straight to ready")
	}
	if o.State != ObstacleNormal {
		t.Fatalf("rejected advance changed state to %v", o.State)
	}
	steps := []ObstacleState{
		ObstacleInBarrier,
		ObstacleBeingShotFromPlayer2,
		ObstacleShotFromPlayer2,
		ObstacleReadyToBeExploded,
	}
	for _, s := range steps {
		if !o.Advance(s) {
			t.Fatalf("advance to %v rejected from %v", s, o.State)
		}
	}
	if o.Advance(ObstacleNormal) || o.Advance(ObstacleInBarrier) {
		t.Fatalf("moved backwards from %v", o.State)
	}

	var nilObs *Obstacle
	if nilObs.Advance(ObstacleInBarrier) {
		t.Fatalf("nil obstacle advanced")
	}
}

func TestDescriptorMasks(t *testing.T) {
	a := BodyDescriptor{Category: CategoryCar, ContactMask: CategoryObstacle}
	b := BodyDescriptor{Category: CategoryObstacle}
	if !a.Notifies(b) || !b.Notifies(a) {
		t.Fatalf("contact should be reported when either side asks")
	}
	if a.Collides(b) {
		t.Fatalf("no collision mask set")
	}
	if CategoryBorderLine.String() != "border_line" || (CategoryCar|CategoryFloor).String() != "mask" {
		t.Fatalf("category names")
	}
}

func TestPlayerOpponent(t *testing.T) {
	if Player1.Opponent() != Player2 || Player2.Opponent() != Player1 {
		t.Fatalf("opponents")
	}
}
