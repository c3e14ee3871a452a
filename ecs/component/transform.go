package component

import "github.com/milk9111/crashthatcar/common"

// Transform places an entity that has no physics body, such as the camera or
// the tap-to-play prompt.
type Transform struct {
	Position common.Vec3
}

var TransformComponent = NewComponent[Transform]()
