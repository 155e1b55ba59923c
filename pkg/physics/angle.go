// pkg/physics/angle.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AxisSnapTolerance is how close (in radians) an angle must be to a multiple
// of a right angle for bounding boxes to skip trigonometry. About 0.001°.
const AxisSnapTolerance = 1.75e-5

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 {
	return mgl64.DegToRad(deg)
}

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 {
	return mgl64.RadToDeg(rad)
}

// Basis returns the unit x and y axes of a frame rotated by angle radians.
func Basis(angle float64) (ux, uy Vector2D) {
	m := mgl64.Rotate2D(angle)
	cx, cy := m.Col(0), m.Col(1)
	return Vector2D{X: cx.X(), Y: cx.Y()}, Vector2D{X: cy.X(), Y: cy.Y()}
}

// quarterTurns reports whether angle is within tolerance of an even multiple
// of 90° (0°/180°) or an odd one (90°/270°).
func quarterTurns(angle float64) (even, odd bool) {
	a := math.Mod(math.Abs(angle), math.Pi)
	if a <= AxisSnapTolerance || math.Pi-a <= AxisSnapTolerance {
		return true, false
	}
	if math.Abs(a-math.Pi/2) <= AxisSnapTolerance {
		return false, true
	}
	return false, false
}
