// pkg/physics/query.go
package physics

import "math"

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Collides checks if two circles are colliding
func (c Circle) Collides(other Circle) bool {
	r := c.Radius + other.Radius
	return c.Center.Sub(other.Center).LengthSquared() < r*r
}

// OrientedBox is a box in world space rotated by Angle radians about Center
type OrientedBox struct {
	Center Vector2D
	Half   Vector2D
	Angle  float64
}

// Axes returns the box's local x and y axes in world space
func (b OrientedBox) Axes() (Vector2D, Vector2D) {
	return Basis(b.Angle)
}

// shapeCenter applies scale then (optionally) rotation to the local offset.
func shapeCenter(pose Pose, shape Shape) Vector2D {
	offs := shape.Offset.Mul(pose.Scale)
	if shape.InheritRotation {
		offs = offs.Rotate(pose.Rotation)
	}
	return pose.Position.Add(offs)
}

func boxAngle(pose Pose, shape Shape) float64 {
	if shape.InheritRotation {
		return pose.Rotation + shape.LocalAngle
	}
	return shape.LocalAngle
}

// WorldCenter returns the world-space center of the shape
func WorldCenter(pose Pose, shape Shape) Vector2D {
	return shapeCenter(pose, shape)
}

// WorldBox returns the world-space oriented box for a box shape
func WorldBox(pose Pose, shape Shape) OrientedBox {
	half := Vector2D{
		X: math.Abs(shape.HalfExtents.X * pose.Scale.X),
		Y: math.Abs(shape.HalfExtents.Y * pose.Scale.Y),
	}
	return OrientedBox{
		Center: shapeCenter(pose, shape),
		Half:   half,
		Angle:  boxAngle(pose, shape),
	}
}

// WorldCircle returns the world-space circle for a circle shape. The radius
// is scaled by the larger scale axis, so non-uniform scale inflates the circle
// to cover the ellipse rather than shrinking it.
func WorldCircle(pose Pose, shape Shape) Circle {
	return Circle{
		Center: shapeCenter(pose, shape),
		Radius: shape.Radius * math.Max(math.Abs(pose.Scale.X), math.Abs(pose.Scale.Y)),
	}
}

// WorldAABB returns the axis-aligned bounds of the shape in world space
func WorldAABB(pose Pose, shape Shape) Rect {
	center := shapeCenter(pose, shape)

	if shape.Kind == ShapeCircle {
		r := WorldCircle(pose, shape).Radius
		return RectFromExtents(center, r, r)
	}

	hx := math.Abs(shape.HalfExtents.X * pose.Scale.X)
	hy := math.Abs(shape.HalfExtents.Y * pose.Scale.Y)
	angle := boxAngle(pose, shape)

	var ex, ey float64
	switch even, odd := quarterTurns(angle); {
	case even:
		ex, ey = hx, hy
	case odd:
		ex, ey = hy, hx
	default:
		c, s := math.Cos(angle), math.Sin(angle)
		ex = math.Abs(c*hx) + math.Abs(s*hy)
		ey = math.Abs(s*hx) + math.Abs(c*hy)
	}
	return RectFromExtents(center, ex, ey)
}
