// pkg/world/registry.go
package world

import (
	"sort"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
	"github.com/opd-ai/go-rigid2d/pkg/dynamics"
)

// maxAncestorDepth bounds the parent walk done when resolving bodies
const maxAncestorDepth = 1 << 12

type bodyReg struct {
	owner  collision.ID
	body   *dynamics.RigidBody
	frame  dynamics.Frame
	active bool
}

// RegisterShape adds a collider. Registering the same collider again only
// re-activates it.
func (s *Simulation) RegisterShape(c *collision.Collider) {
	if c == nil {
		return
	}
	if registered, _ := s.detector.Registered(c); !registered {
		s.shapes[c.Owner] = append(s.shapes[c.Owner], c)
	} else {
		s.logger.Debug(s.ctx, "shape already registered", "owner", uint64(c.Owner))
	}
	s.detector.Register(c)

	if reg, ok := s.bodies[c.Owner]; ok {
		reg.body.DeriveInertia(c.Shape)
	}
}

// UnregisterShape removes a collider. Its pairs end with an Exit at the
// next dispatch unless another collider keeps them overlapping.
func (s *Simulation) UnregisterShape(c *collision.Collider) {
	if c == nil {
		return
	}
	if registered, _ := s.detector.Registered(c); !registered {
		return
	}
	s.detector.Remove(c)

	list := s.shapes[c.Owner]
	for i, other := range list {
		if other == c {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.shapes, c.Owner)
	} else {
		s.shapes[c.Owner] = list
	}
}

// SetShapeActive toggles a registered collider without unregistering it.
// Inactive colliders take no part in detection.
func (s *Simulation) SetShapeActive(c *collision.Collider, active bool) {
	if !s.detector.SetActive(c, active) {
		s.logger.Debug(s.ctx, "activity change for unregistered shape")
	}
}

// Shapes returns the colliders registered for owner
func (s *Simulation) Shapes(owner collision.ID) []*collision.Collider {
	return s.shapes[owner]
}

// RegisterBody attaches a rigid body to owner, moving frame. A body without
// an explicit inertia gets one derived from the owner's first shape.
// Registering the same body again only re-activates it.
func (s *Simulation) RegisterBody(owner collision.ID, body *dynamics.RigidBody, frame dynamics.Frame) {
	if body == nil {
		return
	}
	if reg, ok := s.bodies[owner]; ok {
		if reg.body != body {
			s.logger.Debug(s.ctx, "replacing body registration", "owner", uint64(owner))
		}
		reg.body = body
		reg.frame = frame
		reg.active = true
	} else {
		s.bodies[owner] = &bodyReg{owner: owner, body: body, frame: frame, active: true}
	}

	if shapes := s.shapes[owner]; len(shapes) > 0 {
		body.DeriveInertia(shapes[0].Shape)
	}
}

// UnregisterBody detaches the body of owner
func (s *Simulation) UnregisterBody(owner collision.ID) {
	delete(s.bodies, owner)
}

// SetBodyActive toggles the body of owner. An inactive body is neither
// integrated nor pushed by contacts.
func (s *Simulation) SetBodyActive(owner collision.ID, active bool) {
	reg, ok := s.bodies[owner]
	if !ok {
		s.logger.Debug(s.ctx, "activity change for unregistered body", "owner", uint64(owner))
		return
	}
	reg.active = active
}

// Body returns the body registered for owner
func (s *Simulation) Body(owner collision.ID) (*dynamics.RigidBody, bool) {
	reg, ok := s.bodies[owner]
	if !ok {
		return nil, false
	}
	return reg.body, true
}

// SetListener routes pair events of owner to l. A nil listener removes it.
func (s *Simulation) SetListener(owner collision.ID, l collision.Listener) {
	if l == nil {
		delete(s.listeners, owner)
		return
	}
	s.listeners[owner] = l
}

// SetParentLookup installs the hierarchy used to find the body a collider
// is attached to through its ancestors.
func (s *Simulation) SetParentLookup(parentOf func(collision.ID) (collision.ID, bool)) {
	s.parentOf = parentOf
}

// SetAliveCheck installs the predicate that decides whether an owner may
// still receive events. A nil check treats every owner as alive.
func (s *Simulation) SetAliveCheck(alive func(collision.ID) bool) {
	s.alive = alive
}

// RemoveOwner drops every registration of owner and forgets its pairs
// without reporting exits.
func (s *Simulation) RemoveOwner(owner collision.ID) {
	for _, c := range s.shapes[owner] {
		s.detector.Remove(c)
	}
	delete(s.shapes, owner)
	delete(s.bodies, owner)
	delete(s.listeners, owner)
	s.detector.Forget(owner)
	if s.guard != nil {
		s.guard.Forget(uint64(owner))
	}

	if s.bus != nil {
		s.bus.Publish(newOwnerRemoved(s, owner))
	}
}

// bodyOf resolves the active body owner a collider owner moves with
func (s *Simulation) bodyOf(owner collision.ID) (collision.ID, bool) {
	id := owner
	for depth := 0; depth < maxAncestorDepth; depth++ {
		if reg, ok := s.bodies[id]; ok && reg.active {
			return id, true
		}
		if s.parentOf == nil {
			return 0, false
		}
		parent, ok := s.parentOf(id)
		if !ok || parent == id {
			return 0, false
		}
		id = parent
	}
	return 0, false
}

// activeBody returns the registration of owner if it can move
func (s *Simulation) activeBody(owner collision.ID) *bodyReg {
	reg, ok := s.bodies[owner]
	if !ok || !reg.active || reg.frame == nil {
		return nil
	}
	return reg
}

// entries lists the active bodies in owner order with the smallest shape
// dimension of the colliders that move with them.
func (s *Simulation) entries(dst []dynamics.Entry) []dynamics.Entry {
	owners := make([]collision.ID, 0, len(s.bodies))
	for id, reg := range s.bodies {
		if reg.active && reg.frame != nil {
			owners = append(owners, id)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })

	sizes := make(map[collision.ID]float64, len(owners))
	for _, c := range s.detector.Active() {
		if c.Shape.Degenerate() {
			continue
		}
		body, ok := s.bodyOf(c.Owner)
		if !ok {
			continue
		}
		d := c.Shape.MinDimension()
		if cur, seen := sizes[body]; !seen || d < cur {
			sizes[body] = d
		}
	}

	for _, id := range owners {
		reg := s.bodies[id]
		dst = append(dst, dynamics.Entry{Body: reg.body, Frame: reg.frame, Size: sizes[id]})
	}
	return dst
}

// constraints converts the solid hits into solver constraints. Pairs where
// neither side can move are skipped.
func (s *Simulation) constraints(dst []dynamics.ContactConstraint, hits []collision.Hit) []dynamics.ContactConstraint {
	for _, h := range hits {
		if h.Trigger {
			continue
		}
		ra, rb := s.activeBody(h.A), s.activeBody(h.B)
		if !movable(ra) && !movable(rb) {
			continue
		}

		cc := dynamics.ContactConstraint{
			CenterA: h.ColliderA.Center(),
			CenterB: h.ColliderB.Center(),
			Contact: h.Contact,
		}
		if ra != nil {
			cc.BodyA, cc.FrameA = ra.body, ra.frame
		}
		if rb != nil {
			cc.BodyB, cc.FrameB = rb.body, rb.frame
		}
		dst = append(dst, cc)
	}
	return dst
}

func movable(reg *bodyReg) bool {
	return reg != nil && reg.body.InvMass() > 0
}
