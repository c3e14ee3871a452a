package system

import "github.com/milk9111/crashthatcar/ecs/component"

var bodyTable = map[component.Category]component.BodyDescriptor{
	component.CategoryCar: {
		Category:      component.CategoryCar,
		CollisionMask: component.CategoryFloor | component.CategoryBorderLine | component.CategoryMiddleLine,
		ContactMask:   component.CategoryObstacle | component.CategorySpeedUp | component.CategoryFinishLine,
	},
	component.CategoryBarrier: {
		Category:    component.CategoryBarrier,
		ContactMask: component.CategoryObstacle,
	},
	component.CategoryObstacle: {
		Category:      component.CategoryObstacle,
		CollisionMask: component.CategoryObstacle,
		ContactMask:   component.CategoryCar | component.CategoryBarrier | component.CategoryBorderLine,
	},
	component.CategorySpeedUp: {
		Category:    component.CategorySpeedUp,
		ContactMask: component.CategoryCar,
	},
	component.CategoryFinishLine: {
		Category:    component.CategoryFinishLine,
		ContactMask: component.CategoryCar,
	},
	component.CategoryBorderLine: {
		Category:      component.CategoryBorderLine,
		CollisionMask: component.CategoryCar,
		ContactMask:   component.CategoryObstacle,
	},
	component.CategoryMiddleLine: {
		Category:      component.CategoryMiddleLine,
		CollisionMask: component.CategoryCar,
	},
}

// Classify returns the bitmask triple for a body role. Unknown roles are
// left inert and report false.
func Classify(c component.Category) (component.BodyDescriptor, bool) {
	d, ok := bodyTable[c]
	return d, ok
}
