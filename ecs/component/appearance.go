package component

import "image/color"

// Appearance is how the client draws an entity.
type Appearance struct {
	Color color.NRGBA
	// Width is the stroke width for segment shapes, in pixels.
	Width     float32
	AntiAlias bool
}

var AppearanceComponent = NewComponent[Appearance]()
