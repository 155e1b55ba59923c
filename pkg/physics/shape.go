// pkg/physics/shape.go
package physics

import "math"

// ShapeKind tags the variant held by a Shape
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCircle:
		return "circle"
	default:
		return "unknown"
	}
}

// Shape is a collision shape in the owner's local space. Kind selects which
// of HalfExtents (box) or Radius (circle) is meaningful.
type Shape struct {
	Kind        ShapeKind
	HalfExtents Vector2D
	Radius      float64

	// Offset from the owner's origin, before scale and rotation.
	Offset Vector2D
	// InheritRotation makes the shape follow the owner's rotation.
	InheritRotation bool
	// LocalAngle is added to the shape's world angle (radians).
	LocalAngle float64
}

// NewBox returns a box shape with the given half extents
func NewBox(halfWidth, halfHeight float64) Shape {
	s := Shape{Kind: ShapeBox, InheritRotation: true}
	s.SetHalfExtents(Vector2D{X: halfWidth, Y: halfHeight})
	return s
}

// NewCircle returns a circle shape with the given radius
func NewCircle(radius float64) Shape {
	s := Shape{Kind: ShapeCircle, InheritRotation: true}
	s.SetRadius(radius)
	return s
}

// SetHalfExtents sets the box half extents, clamping negatives to zero
func (s *Shape) SetHalfExtents(h Vector2D) {
	s.HalfExtents = Vector2D{X: math.Max(0, h.X), Y: math.Max(0, h.Y)}
}

// SetRadius sets the circle radius, clamping negatives to zero
func (s *Shape) SetRadius(r float64) {
	s.Radius = math.Max(0, r)
}

// Degenerate reports whether the shape has no area and therefore can never
// produce a contact.
func (s Shape) Degenerate() bool {
	switch s.Kind {
	case ShapeBox:
		return s.HalfExtents.X <= 0 || s.HalfExtents.Y <= 0
	case ShapeCircle:
		return s.Radius <= 0
	default:
		return true
	}
}

// MinDimension returns the smallest local extent of the shape: the diameter
// for circles and the shorter side for boxes.
func (s Shape) MinDimension() float64 {
	if s.Kind == ShapeCircle {
		return 2 * s.Radius
	}
	return 2 * math.Min(s.HalfExtents.X, s.HalfExtents.Y)
}

// Inertia returns the rotational inertia of a solid shape of the given mass
// about its own center.
func (s Shape) Inertia(mass float64) float64 {
	if s.Kind == ShapeCircle {
		return 0.5 * mass * s.Radius * s.Radius
	}
	w, h := 2*s.HalfExtents.X, 2*s.HalfExtents.Y
	return mass * (w*w + h*h) / 12
}

// Pose is a world-space placement: position, an ordering depth that never
// takes part in collision, non-uniform scale and rotation in radians.
type Pose struct {
	Position Vector2D
	Depth    float64
	Scale    Vector2D
	Rotation float64
}

// IdentityPose returns a pose at the origin with unit scale
func IdentityPose() Pose {
	return Pose{Scale: Vector2D{X: 1, Y: 1}}
}
