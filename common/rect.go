package common

// Rect is an axis-aligned screen rectangle in pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}
