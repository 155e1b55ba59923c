// pkg/collision/info.go
package collision

import "github.com/opd-ai/go-rigid2d/pkg/physics"

// EventKind names a pair-state transition
type EventKind uint8

const (
	CollisionEnter EventKind = iota
	CollisionStay
	CollisionExit
	TriggerEnter
	TriggerStay
	TriggerExit
)

func (k EventKind) String() string {
	switch k {
	case CollisionEnter:
		return "collision_enter"
	case CollisionStay:
		return "collision_stay"
	case CollisionExit:
		return "collision_exit"
	case TriggerEnter:
		return "trigger_enter"
	case TriggerStay:
		return "trigger_stay"
	case TriggerExit:
		return "trigger_exit"
	default:
		return "unknown"
	}
}

// IsTrigger reports whether k is one of the trigger kinds
func (k EventKind) IsTrigger() bool {
	return k >= TriggerEnter && k <= TriggerExit
}

func eventKind(trigger bool, phase EventKind) EventKind {
	if trigger {
		return phase + TriggerEnter
	}
	return phase
}

// Info is delivered to one side of a pair. Contacts is empty for trigger
// events and for exits; otherwise every normal points from Self to Other.
type Info struct {
	Self, Other                 ID
	SelfCollider, OtherCollider *Collider
	Contacts                    []physics.Contact
}

// Listener receives pair-state events for an owner
type Listener interface {
	OnCollisionEvent(kind EventKind, info Info)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(kind EventKind, info Info)

func (f ListenerFunc) OnCollisionEvent(kind EventKind, info Info) {
	f(kind, info)
}

// Deliverer routes events to owners. Alive reports whether an owner still
// exists; events are never delivered to owners that are not alive.
type Deliverer interface {
	Alive(id ID) bool
	Deliver(id ID, kind EventKind, info Info)
}
