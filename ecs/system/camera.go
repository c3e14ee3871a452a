package system

import (
	"math"

	"github.com/milk9111/crashthatcar/common"
	"github.com/milk9111/crashthatcar/prefabs"
)

// CameraRig plays the intro path during PreparingScene and otherwise leaves
// the camera to the session's follow logic.
type CameraRig struct {
	path    []prefabs.Waypoint
	leg     int
	elapsed float64
	from    common.Vec3
	done    bool
}

func NewCameraRig(path []prefabs.Waypoint) *CameraRig {
	rig := &CameraRig{}
	rig.SetPath(path)
	return rig
}

// SetPath replaces the intro path. It takes effect on the next Restart.
func (c *CameraRig) SetPath(path []prefabs.Waypoint) {
	c.path = append([]prefabs.Waypoint(nil), path...)
}

// Restart rewinds the intro to start from the given camera position.
func (c *CameraRig) Restart(from common.Vec3) {
	c.leg = 0
	c.elapsed = 0
	c.from = from
	c.done = len(c.path) == 0
}

func (c *CameraRig) Done() bool {
	return c.done
}

// Advance moves the camera along the path by dt and returns its new
// position.
func (c *CameraRig) Advance(current common.Vec3, dt float64) common.Vec3 {
	for !c.done && dt >= 0 {
		wp := c.path[c.leg]
		target := wp.Target
		if wp.Hold {
			target = c.from
		}

		remaining := wp.Duration - c.elapsed
		if remaining > dt {
			c.elapsed += dt
			t := smoothStep(c.elapsed / wp.Duration)
			return c.from.Lerp(target, t)
		}

		dt -= math.Max(remaining, 0)
		current = target
		c.from = target
		c.elapsed = 0
		c.leg++
		if c.leg >= len(c.path) {
			c.done = true
		}
		if dt == 0 {
			break
		}
	}
	return current
}

func smoothStep(t float64) float64 {
	t = common.Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}
