// pkg/dynamics/body.go
package dynamics

import (
	"math"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// BodyKind selects how a rigid body responds to forces and contacts
type BodyKind uint8

const (
	// Dynamic bodies integrate forces and respond to contacts
	Dynamic BodyKind = iota
	// Static bodies never move
	Static
	// Kinematic bodies move from their velocity only and push others
	Kinematic
)

func (k BodyKind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// CollisionDetection selects discrete or continuous (substepped) stepping
type CollisionDetection uint8

const (
	Discrete CollisionDetection = iota
	Continuous
)

// ForceMode selects how AddForce and AddTorque interpret their input
type ForceMode uint8

const (
	// Force accumulates until the next integration and is scaled by inverse mass
	Force ForceMode = iota
	// Acceleration accumulates until the next integration, ignoring mass
	Acceleration
	// Impulse changes velocity immediately, scaled by inverse mass
	Impulse
	// VelocityChange changes velocity immediately, ignoring mass
	VelocityChange
)

// Constraints is a set of freeze flags
type Constraints uint8

const (
	FreezePositionX Constraints = 1 << iota
	FreezePositionY
	FreezeRotation

	FreezePosition = FreezePositionX | FreezePositionY
	FreezeAll      = FreezePosition | FreezeRotation
)

// Has reports whether all flags in f are set
func (c Constraints) Has(f Constraints) bool {
	return c&f == f
}

// mask zeroes the frozen components of a linear vector
func (c Constraints) mask(v physics.Vector2D) physics.Vector2D {
	if c.Has(FreezePositionX) {
		v.X = 0
	}
	if c.Has(FreezePositionY) {
		v.Y = 0
	}
	return v
}

// RigidBody holds the kinematic state of one simulated body. Fields that
// carry invariants are only reachable through setters.
type RigidBody struct {
	kind      BodyKind
	mass      float64
	inertia   float64
	inertiaOK bool

	Velocity        physics.Vector2D
	AngularVelocity float64

	linearDamping  float64
	angularDamping float64
	restitution    float64

	GravityScale float64
	Constraints  Constraints
	Detection    CollisionDetection

	force        physics.Vector2D
	torque       float64
	accel        physics.Vector2D
	angularAccel float64
}

// NewRigidBody creates a dynamic body with unit mass and gravity scale
func NewRigidBody(kind BodyKind) *RigidBody {
	return &RigidBody{
		kind:         kind,
		mass:         1,
		inertia:      1,
		GravityScale: 1,
	}
}

// Kind returns the body kind
func (b *RigidBody) Kind() BodyKind { return b.kind }

// SetKind changes the body kind. Becoming static drops all motion.
func (b *RigidBody) SetKind(k BodyKind) {
	b.kind = k
	if k == Static {
		b.Velocity = physics.Vector2D{}
		b.AngularVelocity = 0
		b.ClearForces()
	}
}

// Mass returns the body mass
func (b *RigidBody) Mass() float64 { return b.mass }

// SetMass sets the mass, clamped to a small positive minimum
func (b *RigidBody) SetMass(m float64) {
	b.mass = math.Max(1e-6, m)
}

// Inertia returns the rotational inertia
func (b *RigidBody) Inertia() float64 { return b.inertia }

// SetInertia sets the rotational inertia explicitly. Bodies with an explicit
// inertia are left alone by automatic inertia derivation.
func (b *RigidBody) SetInertia(i float64) {
	b.inertia = math.Max(1e-6, i)
	b.inertiaOK = true
}

// HasExplicitInertia reports whether SetInertia has been called
func (b *RigidBody) HasExplicitInertia() bool { return b.inertiaOK }

// DeriveInertia sets the inertia from a shape unless it was set explicitly
func (b *RigidBody) DeriveInertia(s physics.Shape) {
	if b.inertiaOK || s.Degenerate() {
		return
	}
	b.inertia = math.Max(1e-6, s.Inertia(b.mass))
}

// LinearDamping returns the linear damping coefficient
func (b *RigidBody) LinearDamping() float64 { return b.linearDamping }

// SetLinearDamping sets linear damping, clamped to be non-negative
func (b *RigidBody) SetLinearDamping(d float64) { b.linearDamping = math.Max(0, d) }

// AngularDamping returns the angular damping coefficient
func (b *RigidBody) AngularDamping() float64 { return b.angularDamping }

// SetAngularDamping sets angular damping, clamped to be non-negative
func (b *RigidBody) SetAngularDamping(d float64) { b.angularDamping = math.Max(0, d) }

// Restitution returns the bounciness in [0, 1]
func (b *RigidBody) Restitution() float64 { return b.restitution }

// SetRestitution sets the bounciness, clamped to [0, 1]
func (b *RigidBody) SetRestitution(e float64) {
	b.restitution = math.Min(1, math.Max(0, e))
}

// InvMass returns the inverse mass, zero unless the body is dynamic
func (b *RigidBody) InvMass() float64 {
	if b.kind != Dynamic || b.mass <= 0 {
		return 0
	}
	return 1 / b.mass
}

// InvInertia returns the inverse inertia, zero unless the body is dynamic
// and free to rotate
func (b *RigidBody) InvInertia() float64 {
	if b.kind != Dynamic || b.inertia <= 0 || b.Constraints.Has(FreezeRotation) {
		return 0
	}
	return 1 / b.inertia
}

// AddForce applies a linear input. Force and Acceleration accumulate until
// the next integration; Impulse and VelocityChange act immediately.
func (b *RigidBody) AddForce(f physics.Vector2D, mode ForceMode) {
	if b.kind != Dynamic {
		return
	}
	switch mode {
	case Force:
		b.force = b.force.Add(f)
	case Acceleration:
		b.accel = b.accel.Add(f)
	case Impulse:
		b.Velocity = b.Velocity.Add(b.Constraints.mask(f.Scale(b.InvMass())))
	case VelocityChange:
		b.Velocity = b.Velocity.Add(b.Constraints.mask(f))
	}
}

// AddTorque applies an angular input, with the same modes as AddForce
func (b *RigidBody) AddTorque(t float64, mode ForceMode) {
	if b.kind != Dynamic || b.Constraints.Has(FreezeRotation) {
		return
	}
	switch mode {
	case Force:
		b.torque += t
	case Acceleration:
		b.angularAccel += t
	case Impulse:
		b.AngularVelocity += t * b.InvInertia()
	case VelocityChange:
		b.AngularVelocity += t
	}
}

// ClearForces empties the accumulators
func (b *RigidBody) ClearForces() {
	b.force = physics.Vector2D{}
	b.torque = 0
	b.accel = physics.Vector2D{}
	b.angularAccel = 0
}

// AccumulatedForce returns the pending force
func (b *RigidBody) AccumulatedForce() physics.Vector2D { return b.force }

// AccumulatedTorque returns the pending torque
func (b *RigidBody) AccumulatedTorque() float64 { return b.torque }
