package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/ecs/system"
)

// mouseTouchID stands in for a touch id when playing with a mouse.
const mouseTouchID = -1

// Input turns touches and the left mouse button into touch events projected
// onto the track plane.
type Input struct {
	proj   common.Projection
	active map[int]common.Vec2
	ids    []ebiten.TouchID
}

func NewInput(proj common.Projection) *Input {
	return &Input{proj: proj, active: make(map[int]common.Vec2)}
}

// Poll returns the touch events of this tick.
func (in *Input) Poll(cam common.Vec3) []system.TouchEvent {
	var events []system.TouchEvent
	emit := func(id int, phase system.TouchPhase, x, y int) {
		screen := common.Vec2{X: float64(x), Y: float64(y)}
		events = append(events, system.TouchEvent{
			ID:       id,
			Phase:    phase,
			Screen:   screen,
			World:    in.proj.Unproject(cam, screen),
			HasWorld: true,
		})
		if phase == system.TouchEnded {
			delete(in.active, id)
		} else {
			in.active[id] = screen
		}
	}

	in.ids = inpututil.AppendJustPressedTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		x, y := ebiten.TouchPosition(id)
		emit(int(id), system.TouchBegan, x, y)
	}
	in.ids = ebiten.AppendTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		last, ok := in.active[int(id)]
		if !ok {
			continue
		}
		x, y := ebiten.TouchPosition(id)
		if float64(x) != last.X || float64(y) != last.Y {
			emit(int(id), system.TouchMoved, x, y)
		}
	}
	in.ids = inpututil.AppendJustReleasedTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		emit(int(id), system.TouchEnded, x, y)
	}

	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		emit(mouseTouchID, system.TouchBegan, x, y)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		if _, ok := in.active[mouseTouchID]; ok {
			emit(mouseTouchID, system.TouchEnded, x, y)
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if last, ok := in.active[mouseTouchID]; ok && (float64(x) != last.X || float64(y) != last.Y) {
			emit(mouseTouchID, system.TouchMoved, x, y)
		}
	}
	return events
}
