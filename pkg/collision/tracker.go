// pkg/collision/tracker.go
package collision

import (
	"sort"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// Solid and trigger overlaps between the same two owners are tracked apart.
type trackKey struct {
	pair    PairKey
	trigger bool
}

func (k trackKey) less(o trackKey) bool {
	if k.pair != o.pair {
		return k.pair.less(o.pair)
	}
	return !k.trigger && o.trigger
}

type pairState struct {
	record   PairRecord
	contacts []physics.Contact
}

// Tracker turns per-frame hits into enter/stay/exit transitions. It keeps
// the records of the previous frame so exits can be reported after the
// colliders involved are gone.
type Tracker struct {
	prev  map[trackKey]*pairState
	curr  map[trackKey]*pairState
	order []trackKey
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		prev: make(map[trackKey]*pairState),
		curr: make(map[trackKey]*pairState),
	}
}

// Observe records a hit for the current frame. The first hit seen for a
// pair fixes its record; later hits only add contacts.
func (t *Tracker) Observe(h Hit) {
	k := trackKey{pair: h.Key(), trigger: h.Trigger}
	st, ok := t.curr[k]
	if !ok {
		st = &pairState{record: h.PairRecord}
		t.curr[k] = st
		t.order = append(t.order, k)
	}
	if h.Trigger {
		return
	}

	c := h.Contact
	// store every contact as seen from the record's A side
	if h.A != st.record.A {
		c = c.Flip()
	}
	st.contacts = append(st.contacts, c)
}

// Colliding reports whether the pair was observed in the last dispatched frame
func (t *Tracker) Colliding(a, b ID) bool {
	k := MakePairKey(a, b)
	_, solid := t.prev[trackKey{pair: k}]
	_, trig := t.prev[trackKey{pair: k, trigger: true}]
	return solid || trig
}

// Len returns the number of pairs carried into the next frame
func (t *Tracker) Len() int {
	return len(t.prev)
}

type pending struct {
	kind     EventKind
	record   PairRecord
	contacts []physics.Contact
}

// Dispatch delivers Enter or Stay for every pair observed this frame, then
// Exit for every pair of the previous frame that was not. The transitions
// are collected and the frames swapped before any listener runs, so
// listeners may remove shapes or owners while events are delivered.
func (t *Tracker) Dispatch(d Deliverer) {
	events := make([]pending, 0, len(t.order))
	for _, k := range t.order {
		st := t.curr[k]
		phase := CollisionEnter
		if _, was := t.prev[k]; was {
			phase = CollisionStay
		}
		events = append(events, pending{eventKind(k.trigger, phase), st.record, st.contacts})
	}

	var exits []trackKey
	for k := range t.prev {
		if _, still := t.curr[k]; !still {
			exits = append(exits, k)
		}
	}
	sort.Slice(exits, func(i, j int) bool { return exits[i].less(exits[j]) })
	for _, k := range exits {
		events = append(events, pending{eventKind(k.trigger, CollisionExit), t.prev[k].record, nil})
	}

	t.prev, t.curr = t.curr, t.prev
	clear(t.curr)
	t.order = t.order[:0]

	for _, e := range events {
		deliverPair(d, e.kind, e.record, e.contacts)
	}
}

// Forget drops every remembered pair involving owner, without an exit.
func (t *Tracker) Forget(owner ID) {
	for k := range t.prev {
		if k.pair.Lo == owner || k.pair.Hi == owner {
			delete(t.prev, k)
		}
	}
}

// Reset drops all state
func (t *Tracker) Reset() {
	clear(t.prev)
	clear(t.curr)
	t.order = t.order[:0]
}

func deliverPair(d Deliverer, kind EventKind, rec PairRecord, contacts []physics.Contact) {
	if d == nil || !d.Alive(rec.A) || !d.Alive(rec.B) {
		return
	}

	ab := Info{Self: rec.A, Other: rec.B, SelfCollider: rec.ColliderA, OtherCollider: rec.ColliderB}
	ba := Info{Self: rec.B, Other: rec.A, SelfCollider: rec.ColliderB, OtherCollider: rec.ColliderA}
	if !kind.IsTrigger() && len(contacts) > 0 {
		ab.Contacts = append([]physics.Contact(nil), contacts...)
		ba.Contacts = make([]physics.Contact, len(contacts))
		for i, c := range contacts {
			ba.Contacts[i] = c.Flip()
		}
	}

	d.Deliver(rec.A, kind, ab)
	// A's listener may have destroyed B
	if d.Alive(rec.B) {
		d.Deliver(rec.B, kind, ba)
	}
}
