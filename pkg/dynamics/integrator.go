// pkg/dynamics/integrator.go
package dynamics

import (
	"math"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// Frame is the placement a body moves. Rotation is in radians.
type Frame interface {
	WorldPosition() physics.Vector2D
	SetWorldPosition(physics.Vector2D)
	WorldRotation() float64
	SetWorldRotation(float64)
}

// Entry pairs an active body with the frame it drives. Size is the smallest
// local dimension of the body's shape, used to size continuous substeps;
// zero means the body has no shape.
type Entry struct {
	Body  *RigidBody
	Frame Frame
	Size  float64
}

// Integrate advances every entry by dt using semi-implicit Euler. Force and
// acceleration accumulators are consumed and cleared exactly once.
func Integrate(entries []Entry, dt float64, gravity physics.Vector2D) {
	for _, e := range entries {
		b := e.Body
		if b == nil {
			continue
		}
		if e.Frame == nil {
			b.ClearForces()
			continue
		}

		switch b.kind {
		case Static:
			b.Velocity = physics.Vector2D{}
			b.AngularVelocity = 0
		case Kinematic:
			integrateKinematic(b, e.Frame, dt)
		case Dynamic:
			integrateDynamic(b, e.Frame, dt, gravity)
		}
		b.ClearForces()
	}
}

func integrateKinematic(b *RigidBody, f Frame, dt float64) {
	v := b.Constraints.mask(b.Velocity)
	w := b.AngularVelocity
	if b.Constraints.Has(FreezeRotation) {
		w = 0
	}
	advance(f, v, w, dt)
	b.Velocity = v
	b.AngularVelocity = w
}

func integrateDynamic(b *RigidBody, f Frame, dt float64, gravity physics.Vector2D) {
	a := b.force.Scale(b.InvMass()).Add(b.accel).Add(gravity.Scale(b.GravityScale))
	a = b.Constraints.mask(a)
	v := b.Constraints.mask(b.Velocity)

	alpha := b.torque*b.InvInertia() + b.angularAccel
	w := b.AngularVelocity
	if b.Constraints.Has(FreezeRotation) {
		alpha, w = 0, 0
	}

	v = v.Add(a.Scale(dt))
	w += alpha * dt

	if b.linearDamping > 0 {
		v = v.Scale(math.Max(0, 1-b.linearDamping*dt))
	}
	if b.angularDamping > 0 {
		w *= math.Max(0, 1-b.angularDamping*dt)
	}

	advance(f, v, w, dt)
	b.Velocity = v
	b.AngularVelocity = w
}

func advance(f Frame, v physics.Vector2D, w, dt float64) {
	if v != (physics.Vector2D{}) {
		f.SetWorldPosition(f.WorldPosition().Add(v.Scale(dt)))
	}
	if w != 0 {
		f.SetWorldRotation(f.WorldRotation() + w*dt)
	}
}

// Substeps returns how many substeps dt must be split into so that no
// continuous dynamic body travels further than size*minSizeFactor in one
// substep. The result is clamped to [1, maxSubsteps].
func Substeps(entries []Entry, dt float64, maxSubsteps int, minSizeFactor float64) int {
	if maxSubsteps < 1 {
		maxSubsteps = 1
	}

	steps := 1
	for _, e := range entries {
		b := e.Body
		if b == nil || e.Frame == nil || b.kind != Dynamic || b.Detection != Continuous {
			continue
		}
		if e.Size <= 0 {
			continue
		}

		size := math.Max(0.001, e.Size)
		dist := b.Velocity.Length() * dt
		denom := math.Max(0.001, size*minSizeFactor)
		need := math.Ceil(dist / denom)
		if need >= float64(maxSubsteps) {
			return maxSubsteps
		}
		if n := int(need); n > steps {
			steps = n
		}
	}
	return steps
}
