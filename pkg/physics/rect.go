// pkg/physics/rect.go
package physics

// Rect represents a rectangular area
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// RectFromExtents builds a rectangle from its center and half extents.
func RectFromExtents(center Vector2D, ex, ey float64) Rect {
	return Rect{Center: center, Width: 2 * ex, Height: 2 * ey}
}

// Min returns the lower-left corner
func (r Rect) Min() Vector2D {
	return Vector2D{X: r.Center.X - r.Width/2, Y: r.Center.Y - r.Height/2}
}

// Max returns the upper-right corner
func (r Rect) Max() Vector2D {
	return Vector2D{X: r.Center.X + r.Width/2, Y: r.Center.Y + r.Height/2}
}

// Contains reports whether point lies inside the half-open rectangle
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// Overlaps reports whether two rectangles intersect. Touching edges count.
func (r Rect) Overlaps(other Rect) bool {
	aMin, aMax := r.Min(), r.Max()
	bMin, bMax := other.Min(), other.Max()
	return aMin.X <= bMax.X && bMin.X <= aMax.X &&
		aMin.Y <= bMax.Y && bMin.Y <= aMax.Y
}
