package component

import "github.com/milk9111/crashthatcar/common"

// Category is a single-bit physics category. Masks are unions of categories.
type Category uint32

const (
	CategoryNone       Category = 0
	CategoryCar        Category = 1 << 0
	CategoryBarrier    Category = 1 << 1
	CategoryObstacle   Category = 1 << 2
	CategorySpeedUp    Category = 1 << 3
	CategoryFinishLine Category = 1 << 4
	CategoryBorderLine Category = 1 << 5
	CategoryMiddleLine Category = 1 << 6
	CategoryFloor      Category = 1 << 7
)

func (c Category) Has(other Category) bool {
	return c&other != 0
}

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryCar:
		return "car"
	case CategoryBarrier:
		return "barrier"
	case CategoryObstacle:
		return "obstacle"
	case CategorySpeedUp:
		return "speed_up"
	case CategoryFinishLine:
		return "finish_line"
	case CategoryBorderLine:
		return "border_line"
	case CategoryMiddleLine:
		return "middle_line"
	case CategoryFloor:
		return "floor"
	}
	return "mask"
}

// BodyDescriptor is the bitmask triple handed to the physics engine.
// CollisionMask lists categories that produce a physical response,
// ContactMask those that only report a contact.
type BodyDescriptor struct {
	Category      Category
	CollisionMask Category
	ContactMask   Category
}

// Collides reports whether d physically responds to other.
func (d BodyDescriptor) Collides(other BodyDescriptor) bool {
	return d.CollisionMask.Has(other.Category) || other.CollisionMask.Has(d.Category)
}

// Notifies reports whether a contact between d and other must be reported.
func (d BodyDescriptor) Notifies(other BodyDescriptor) bool {
	return d.ContactMask.Has(other.Category) || other.ContactMask.Has(d.Category)
}

type BodyKind int

const (
	BodyDynamic BodyKind = iota
	BodyKinematic
	BodyStatic
)

type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
	ShapeSegment
)

// Shape is a planar collider. Width runs along X (forward), Depth along Z
// (lateral). Segment endpoints are offsets from the body position.
type Shape struct {
	Kind   ShapeKind
	Width  float64
	Depth  float64
	Radius float64
	From   common.Vec3
	To     common.Vec3
}

// Body describes how an entity participates in the physics world. Position is
// owned by the engine once the body is added.
type Body struct {
	Descriptor      BodyDescriptor
	Kind            BodyKind
	Shape           Shape
	Mass            float64
	Position        common.Vec3
	AngularVelocity float64
}

var BodyComponent = NewComponent[Body]()
