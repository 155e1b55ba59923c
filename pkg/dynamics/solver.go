// pkg/dynamics/solver.go
package dynamics

import (
	"math"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// ContactConstraint is one non-trigger contact between two owners. A nil
// body is treated as immovable. Centers are the shape centers used for
// lever arms and for orienting the normal.
type ContactConstraint struct {
	BodyA, BodyB     *RigidBody
	FrameA, FrameB   Frame
	CenterA, CenterB physics.Vector2D
	Contact          physics.Contact
}

// normal returns the contact normal oriented from A's center toward B's
func (c *ContactConstraint) normal() physics.Vector2D {
	n := c.Contact.Normal
	if c.CenterB.Sub(c.CenterA).Dot(n) < 0 {
		n = n.Neg()
	}
	return n
}

// Solver resolves contacts with sequential impulses followed by a separate
// positional correction pass.
type Solver struct {
	// BaumgarteFactor scales the penetration bias fed into the velocity pass
	BaumgarteFactor float64
	// Slop is the penetration left uncorrected
	Slop float64
	// Percent of the remaining penetration removed by CorrectPositions
	Percent float64
	// RestitutionThreshold is the closing speed below which contacts don't bounce
	RestitutionThreshold float64
}

func dynamicBody(b *RigidBody) bool {
	return b != nil && b.kind == Dynamic
}

func invMass(b *RigidBody) float64 {
	if !dynamicBody(b) {
		return 0
	}
	return b.InvMass()
}

func invInertia(b *RigidBody) float64 {
	if !dynamicBody(b) {
		return 0
	}
	return b.InvInertia()
}

func velocity(b *RigidBody) (physics.Vector2D, float64) {
	if b == nil {
		return physics.Vector2D{}, 0
	}
	return b.Velocity, b.AngularVelocity
}

// SolveVelocities runs one sequential-impulse pass over all constraints.
// It returns the number of contacts that received an impulse.
func (s *Solver) SolveVelocities(cs []ContactConstraint, dt float64) int {
	if dt <= 0 {
		return 0
	}

	applied := 0
	for i := range cs {
		c := &cs[i]
		imA, imB := invMass(c.BodyA), invMass(c.BodyB)
		iiA, iiB := invInertia(c.BodyA), invInertia(c.BodyB)
		if imA+imB <= 0 {
			continue
		}

		n := c.normal()
		p := c.Contact.Point
		rA := p.Sub(c.CenterA)
		rB := p.Sub(c.CenterB)

		vA, wA := velocity(c.BodyA)
		vB, wB := velocity(c.BodyB)
		rv := vB.Add(physics.Perp(wB, rB)).Sub(vA.Add(physics.Perp(wA, rA)))
		vn := rv.Dot(n)

		e := 0.0
		if c.BodyA != nil {
			e = math.Max(e, c.BodyA.restitution)
		}
		if c.BodyB != nil {
			e = math.Max(e, c.BodyB.restitution)
		}
		if -vn < s.RestitutionThreshold {
			e = 0
		}

		raN := rA.Cross(n)
		rbN := rB.Cross(n)
		k := imA + imB + raN*raN*iiA + rbN*rbN*iiB
		if k <= 1e-8 {
			continue
		}

		bias := -(s.BaumgarteFactor / dt) * math.Max(c.Contact.Penetration-s.Slop, 0)
		j := -((1+e)*vn + bias) / k
		if j <= 0 {
			continue
		}
		impulse := n.Scale(j)

		if dynamicBody(c.BodyA) {
			a := c.BodyA
			a.Velocity = a.Velocity.Sub(a.Constraints.mask(impulse.Scale(imA)))
			if iiA > 0 {
				a.AngularVelocity -= raN * j * iiA
			} else {
				a.AngularVelocity = 0
			}
		}
		if dynamicBody(c.BodyB) {
			b := c.BodyB
			b.Velocity = b.Velocity.Add(b.Constraints.mask(impulse.Scale(imB)))
			if iiB > 0 {
				b.AngularVelocity += rbN * j * iiB
			} else {
				b.AngularVelocity = 0
			}
		}
		applied++
	}
	return applied
}

// CorrectPositions pushes penetrating dynamic bodies apart along the contact
// normal in proportion to their inverse masses.
func (s *Solver) CorrectPositions(cs []ContactConstraint) {
	for i := range cs {
		c := &cs[i]
		imA, imB := invMass(c.BodyA), invMass(c.BodyB)
		sum := imA + imB
		if sum <= 0 {
			continue
		}

		mag := math.Max(c.Contact.Penetration-s.Slop, 0) / sum * s.Percent
		if mag <= 0 {
			continue
		}
		corr := c.normal().Scale(mag)

		if dynamicBody(c.BodyA) && c.FrameA != nil {
			d := c.BodyA.Constraints.mask(corr.Scale(imA))
			c.FrameA.SetWorldPosition(c.FrameA.WorldPosition().Sub(d))
		}
		if dynamicBody(c.BodyB) && c.FrameB != nil {
			d := c.BodyB.Constraints.mask(corr.Scale(imB))
			c.FrameB.SetWorldPosition(c.FrameB.WorldPosition().Add(d))
		}
	}
}
