// pkg/collision/pair.go
package collision

import (
	"fmt"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// PairKey identifies an unordered pair of owners
type PairKey struct {
	Lo, Hi ID
}

// MakePairKey returns the key for a and b. MakePairKey(a, b) equals
// MakePairKey(b, a).
func MakePairKey(a, b ID) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

func (k PairKey) String() string {
	return fmt.Sprintf("%d:%d", k.Lo, k.Hi)
}

func (k PairKey) less(o PairKey) bool {
	if k.Lo != o.Lo {
		return k.Lo < o.Lo
	}
	return k.Hi < o.Hi
}

// PairRecord is what the tracker remembers about a colliding pair so that
// its exit can be reported once the geometry is gone.
type PairRecord struct {
	A, B                 ID
	ColliderA, ColliderB *Collider
	Trigger              bool
}

// Hit is one narrow-phase result. A and B are the owners the contact is
// reported to: the owner of the attached body when there is one, otherwise
// the collider's own owner. Contact.Normal points from A to B.
type Hit struct {
	PairRecord
	Contact physics.Contact
}

// Key returns the pair key of the hit
func (h Hit) Key() PairKey {
	return MakePairKey(h.A, h.B)
}
