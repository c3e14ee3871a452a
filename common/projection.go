package common

// Projection maps the track plane onto a top-down screen. Screen up is world
// +X and screen right is world +Z; the camera height sets the zoom.
type Projection struct {
	Width, Height float64
	// Focal is pixels per world unit at camera height 1.
	Focal float64
	// Anchor is the fraction of the screen height where the camera's X sits.
	Anchor float64
}

// Scale returns pixels per world unit for a camera at cam.
func (p Projection) Scale(cam Vec3) float64 {
	h := cam.Y
	if h < 1 {
		h = 1
	}
	return p.Focal / h
}

func (p Projection) Project(cam, world Vec3) Vec2 {
	s := p.Scale(cam)
	return Vec2{
		X: p.Width/2 + (world.Z-cam.Z)*s,
		Y: p.Height*p.Anchor - (world.X-cam.X)*s,
	}
}

// Unproject returns the point on the track plane under a screen point.
func (p Projection) Unproject(cam Vec3, screen Vec2) Vec3 {
	s := p.Scale(cam)
	return Vec3{
		X: cam.X + (p.Height*p.Anchor-screen.Y)/s,
		Z: cam.Z + (screen.X-p.Width/2)/s,
	}
}
