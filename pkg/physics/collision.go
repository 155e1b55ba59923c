// pkg/physics/collision.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultTieEpsilon is the default tolerance under which two candidate
// separating-axis overlaps are considered equal.
const DefaultTieEpsilon = 1e-4

// Contact describes a single contact between shapes A and B
type Contact struct {
	Point       Vector2D
	Normal      Vector2D // unit, from A toward B
	Penetration float64  // non-negative depth
}

// Flip returns the same contact as seen from B
func (c Contact) Flip() Contact {
	c.Normal = c.Normal.Neg()
	return c
}

// CheckCollision performs detailed collision detection between two circles.
// Circles that exactly touch are not colliding.
func CheckCollision(a, b Circle) (Contact, bool) {
	return CircleCircle(a, b)
}

// CircleCircle computes the contact between two circles
func CircleCircle(a, b Circle) (Contact, bool) {
	// Vector from A to B
	d := b.Center.Sub(a.Center)
	distSq := d.LengthSquared()
	r := a.Radius + b.Radius

	// No collision
	if distSq >= r*r {
		return Contact{}, false
	}

	dist := 0.0
	normal := AxisX
	if distSq > 1e-12 {
		dist = math.Sqrt(distSq)
		normal = d.Scale(1 / dist)
	}

	penetration := r - dist
	return Contact{
		// half the penetration inward from A's surface
		Point:       a.Center.Add(normal.Scale(a.Radius - penetration*0.5)),
		Normal:      normal,
		Penetration: penetration,
	}, true
}

func projectRadius(axis, ux, uy, half Vector2D) float64 {
	return math.Abs(axis.Dot(ux))*half.X + math.Abs(axis.Dot(uy))*half.Y
}

// BoxBox computes the contact between two oriented boxes using the separating
// axis theorem over both boxes' local axes. Overlaps within tieEps of the
// current best keep the earlier axis, so A's axes win over B's and lower
// indices win within a box.
func BoxBox(a, b OrientedBox, tieEps float64) (Contact, bool) {
	ax, ay := a.Axes()
	bx, by := b.Axes()
	axes := [4]Vector2D{ax, ay, bx, by}
	d := b.Center.Sub(a.Center)

	bestPen := math.MaxFloat64
	bestAxis := AxisX
	found := false

	for _, axis := range axes {
		axis = axis.NormalizeOr(AxisX)
		ra := projectRadius(axis, ax, ay, a.Half)
		rb := projectRadius(axis, bx, by, b.Half)
		along := d.Dot(axis)

		pen := ra + rb - math.Abs(along)
		if pen <= 0 {
			return Contact{}, false
		}
		if found && pen >= bestPen-tieEps {
			continue
		}
		found = true
		bestPen = pen
		if along < 0 {
			axis = axis.Neg()
		}
		bestAxis = axis
	}

	ra := projectRadius(bestAxis, ax, ay, a.Half)
	rb := projectRadius(bestAxis, bx, by, b.Half)
	pA := a.Center.Add(bestAxis.Scale(ra))
	pB := b.Center.Sub(bestAxis.Scale(rb))

	return Contact{
		Point:       pA.Add(pB).Scale(0.5),
		Normal:      bestAxis,
		Penetration: bestPen,
	}, true
}

// CircleBox computes the contact between circle A and oriented box B. The
// normal points from the circle toward the box.
func CircleBox(c Circle, b OrientedBox, tieEps float64) (Contact, bool) {
	ux, uy := b.Axes()
	rel := c.Center.Sub(b.Center)
	local := Vector2D{X: rel.Dot(ux), Y: rel.Dot(uy)}

	closestLocal := Vector2D{
		X: mgl64.Clamp(local.X, -b.Half.X, b.Half.X),
		Y: mgl64.Clamp(local.Y, -b.Half.Y, b.Half.Y),
	}
	toWorld := func(p Vector2D) Vector2D {
		return b.Center.Add(ux.Scale(p.X)).Add(uy.Scale(p.Y))
	}
	closest := toWorld(closestLocal)

	delta := closest.Sub(c.Center)
	if distSq := delta.LengthSquared(); distSq > 1e-12 {
		dist := math.Sqrt(distSq)
		pen := c.Radius - dist
		if pen <= 0 {
			return Contact{}, false
		}
		return Contact{
			Point:       closest,
			Normal:      delta.Scale(1 / dist),
			Penetration: pen,
		}, true
	}

	// Center inside the box: leave through the nearest face pair.
	dx := b.Half.X - math.Abs(local.X)
	dy := b.Half.Y - math.Abs(local.Y)
	useX := dx < dy
	// absolute tolerance, as for the separating-axis ties
	if math.Abs(dx-dy) <= tieEps {
		useX = math.Abs(local.X) > math.Abs(local.Y)
	}

	var nLocal, pLocal Vector2D
	var margin float64
	if useX {
		side := sign(local.X)
		nLocal = Vector2D{X: -side}
		pLocal = Vector2D{X: side * b.Half.X, Y: local.Y}
		margin = dx
	} else {
		side := sign(local.Y)
		nLocal = Vector2D{Y: -side}
		pLocal = Vector2D{X: local.X, Y: side * b.Half.Y}
		margin = dy
	}

	return Contact{
		Point:       toWorld(pLocal),
		Normal:      ux.Scale(nLocal.X).Add(uy.Scale(nLocal.Y)).NormalizeOr(AxisX),
		Penetration: math.Max(c.Radius+margin, 0),
	}, true
}

func sign(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return -1
}

// Collide dispatches on the shape kinds of A and B and returns the contact
// with its normal pointing from A toward B. Degenerate shapes never collide.
func Collide(poseA Pose, a Shape, poseB Pose, b Shape, tieEps float64) (Contact, bool) {
	if a.Degenerate() || b.Degenerate() {
		return Contact{}, false
	}

	switch a.Kind {
	case ShapeCircle:
		switch b.Kind {
		case ShapeCircle:
			return CircleCircle(WorldCircle(poseA, a), WorldCircle(poseB, b))
		case ShapeBox:
			return CircleBox(WorldCircle(poseA, a), WorldBox(poseB, b), tieEps)
		}
	case ShapeBox:
		switch b.Kind {
		case ShapeCircle:
			c, ok := CircleBox(WorldCircle(poseB, b), WorldBox(poseA, a), tieEps)
			if !ok {
				return Contact{}, false
			}
			return c.Flip(), true
		case ShapeBox:
			return BoxBox(WorldBox(poseA, a), WorldBox(poseB, b), tieEps)
		}
	}
	return Contact{}, false
}
