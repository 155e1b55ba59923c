// pkg/collision/broadphase.go
package collision

import (
	"sort"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// BodyResolver returns the owner of the rigid body a collider owner is
// attached to, either directly or through an ancestor.
type BodyResolver func(owner ID) (body ID, ok bool)

// Stats counts the work done by the last BuildContacts call
type Stats struct {
	BroadphaseTests  int
	NarrowphaseTests int
	ContactsBuilt    int
}

// sortColliders orders colliders by owner, then by registration order, so
// pair iteration is reproducible.
func sortColliders(cs []*Collider) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Owner != cs[j].Owner {
			return cs[i].Owner < cs[j].Owner
		}
		return cs[i].serial < cs[j].serial
	})
}

// ShouldTest reports whether two colliders may ever touch: they must have
// different owners, not share a rigid body, and pass the layer masks both
// ways.
func ShouldTest(a, b *Collider, bodyOf BodyResolver) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if a.Owner == b.Owner {
		return false
	}
	if bodyOf != nil {
		ba, okA := bodyOf(a.Owner)
		bb, okB := bodyOf(b.Owner)
		if okA && okB && ba == bb {
			return false
		}
	}
	return a.Layer&b.Mask != 0 && b.Layer&a.Mask != 0
}

// reportOwner returns the owner a contact on c is delivered to
func reportOwner(c *Collider, bodyOf BodyResolver) ID {
	if bodyOf != nil {
		if body, ok := bodyOf(c.Owner); ok {
			return body
		}
	}
	return c.Owner
}

// sweep tests every unordered pair of the sorted active colliders once and
// appends the resulting hits to dst.
func sweep(dst []Hit, active []*Collider, bodyOf BodyResolver, tieEps float64, stats *Stats) []Hit {
	aabbs := make([]physics.Rect, len(active))
	poses := make([]physics.Pose, len(active))
	for i, c := range active {
		poses[i] = c.Pose()
		aabbs[i] = physics.WorldAABB(poses[i], c.Shape)
	}

	for i := 0; i < len(active); i++ {
		a := active[i]
		for j := i + 1; j < len(active); j++ {
			b := active[j]
			if !ShouldTest(a, b, bodyOf) {
				continue
			}

			stats.BroadphaseTests++
			if !aabbs[i].Overlaps(aabbs[j]) {
				continue
			}

			stats.NarrowphaseTests++
			contact, ok := physics.Collide(poses[i], a.Shape, poses[j], b.Shape, tieEps)
			if !ok {
				continue
			}

			ownerA, ownerB := reportOwner(a, bodyOf), reportOwner(b, bodyOf)
			if ownerA == ownerB {
				continue
			}

			dst = append(dst, Hit{
				PairRecord: PairRecord{
					A:         ownerA,
					B:         ownerB,
					ColliderA: a,
					ColliderB: b,
					Trigger:   a.Trigger || b.Trigger,
				},
				Contact: contact,
			})
			stats.ContactsBuilt++
		}
	}
	return dst
}
