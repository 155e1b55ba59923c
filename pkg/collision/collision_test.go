// pkg/collision/collision_test.go
package collision

import (
	"testing"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

type testSource struct {
	pose physics.Pose
}

func (s *testSource) Pose() physics.Pose { return s.pose }

func at(x, y float64) *testSource {
	p := physics.IdentityPose()
	p.Position = physics.Vector2D{X: x, Y: y}
	return &testSource{pose: p}
}

type delivered struct {
	id   ID
	kind EventKind
	info Info
}

type recorder struct {
	events []delivered
	dead   map[ID]bool
}

func (r *recorder) Alive(id ID) bool { return !r.dead[id] }

func (r *recorder) Deliver(id ID, kind EventKind, info Info) {
	r.events = append(r.events, delivered{id: id, kind: kind, info: info})
}

func (r *recorder) kindsFor(id ID) []EventKind {
	var out []EventKind
	for _, e := range r.events {
		if e.id == id {
			out = append(out, e.kind)
		}
	}
	return out
}

func TestMakePairKey_Symmetric(t *testing.T) {
	tests := []struct {
		name string
		a, b ID
	}{
		{"ordered", 1, 2},
		{"reversed", 9, 3},
		{"large_ids", 1 << 40, 1<<40 + 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if MakePairKey(tt.a, tt.b) != MakePairKey(tt.b, tt.a) {
				t.Errorf("Expected symmetric key for %d and %d", tt.a, tt.b)
			}
		})
	}

	if MakePairKey(1, 1<<32) == MakePairKey(1<<32, 2) {
		t.Error("Expected distinct pairs to have distinct keys")
	}
}

func TestShouldTest(t *testing.T) {
	shape := physics.NewCircle(1)
	bodies := map[ID]ID{10: 1, 11: 1, 12: 12}
	bodyOf := func(owner ID) (ID, bool) {
		b, ok := bodies[owner]
		return b, ok
	}

	tests := []struct {
		name     string
		a, b     *Collider
		expected bool
	}{
		{"different_owners", NewCollider(1, shape, at(0, 0)), NewCollider(2, shape, at(0, 0)), true},
		{"same_owner", NewCollider(1, shape, at(0, 0)), NewCollider(1, shape, at(0, 0)), false},
		{"shared_body_via_parent", NewCollider(10, shape, at(0, 0)), NewCollider(11, shape, at(0, 0)), false},
		{"distinct_bodies", NewCollider(10, shape, at(0, 0)), NewCollider(12, shape, at(0, 0)), true},
		{"mask_rejects_one_way", &Collider{Owner: 1, Layer: 1, Mask: 2}, &Collider{Owner: 2, Layer: 2, Mask: 4}, false},
		{"masks_match_both_ways", &Collider{Owner: 1, Layer: 1, Mask: 2}, &Collider{Owner: 2, Layer: 2, Mask: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldTest(tt.a, tt.b, bodyOf); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if got := ShouldTest(tt.b, tt.a, bodyOf); got != tt.expected {
				t.Errorf("Expected symmetric %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDetector_PairLifecycle(t *testing.T) {
	d := NewDetector()
	srcB := at(1.5, 0)
	d.Register(NewCollider(1, physics.NewCircle(1), at(0, 0)))
	d.Register(NewCollider(2, physics.NewCircle(1), srcB))

	rec := &recorder{}
	for frame := 0; frame < 3; frame++ {
		d.DetectAndDispatch(rec)
	}
	srcB.pose.Position = physics.Vector2D{X: 10, Y: 0}
	d.DetectAndDispatch(rec)
	d.DetectAndDispatch(rec)

	expected := []EventKind{CollisionEnter, CollisionStay, CollisionStay, CollisionExit}
	for _, id := range []ID{1, 2} {
		got := rec.kindsFor(id)
		if len(got) != len(expected) {
			t.Fatalf("owner %d: expected %v, got %v", id, expected, got)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("owner %d event %d: expected %v, got %v", id, i, expected[i], got[i])
			}
		}
	}
}

func TestDetector_MirroredContacts(t *testing.T) {
	d := NewDetector()
	d.Register(NewCollider(1, physics.NewCircle(1), at(0, 0)))
	d.Register(NewCollider(2, physics.NewCircle(1), at(1.5, 0)))

	rec := &recorder{}
	d.DetectAndDispatch(rec)
	if len(rec.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(rec.events))
	}

	for _, e := range rec.events {
		if len(e.info.Contacts) != 1 {
			t.Fatalf("Expected one contact for owner %d, got %d", e.id, len(e.info.Contacts))
		}
		n := e.info.Contacts[0].Normal
		want := physics.Vector2D{X: 1}
		if e.id == 2 {
			want = physics.Vector2D{X: -1}
		}
		if n != want {
			t.Errorf("owner %d: expected normal %v, got %v", e.id, want, n)
		}
		if e.info.Self != e.id || e.info.SelfCollider.Owner != e.id {
			t.Errorf("Expected self to be %d, got %+v", e.id, e.info)
		}
	}
}

func TestDetector_TriggerEvents(t *testing.T) {
	d := NewDetector()
	trig := NewCollider(1, physics.NewBox(2, 2), at(0, 0))
	trig.Trigger = true
	src := at(0.5, 0)
	d.Register(trig)
	d.Register(NewCollider(2, physics.NewCircle(0.5), src))

	rec := &recorder{}
	d.DetectAndDispatch(rec)
	d.DetectAndDispatch(rec)
	src.pose.Position.X = 50
	d.DetectAndDispatch(rec)

	expected := []EventKind{TriggerEnter, TriggerStay, TriggerExit}
	got := rec.kindsFor(2)
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("event %d: expected %v, got %v", i, expected[i], got[i])
		}
	}
	for _, e := range rec.events {
		if len(e.info.Contacts) != 0 {
			t.Errorf("Expected no contacts on %v, got %d", e.kind, len(e.info.Contacts))
		}
	}
}

func TestDetector_ExitSkippedForDeadOwner(t *testing.T) {
	d := NewDetector()
	src := at(1, 0)
	d.Register(NewCollider(1, physics.NewCircle(1), at(0, 0)))
	d.Register(NewCollider(2, physics.NewCircle(1), src))

	rec := &recorder{dead: map[ID]bool{}}
	d.DetectAndDispatch(rec)

	rec.dead[2] = true
	src.pose.Position.X = 100
	d.DetectAndDispatch(rec)

	for _, e := range rec.events {
		if e.kind == CollisionExit {
			t.Errorf("Expected no exit once owner 2 is gone, got one for %d", e.id)
		}
	}
	if d.Tracker().Len() != 0 {
		t.Errorf("Expected pair history to be dropped, got %d", d.Tracker().Len())
	}
}

func TestDetector_RemoveReportsExit(t *testing.T) {
	d := NewDetector()
	a := NewCollider(1, physics.NewCircle(1), at(0, 0))
	d.Register(a)
	d.Register(NewCollider(2, physics.NewCircle(1), at(1, 0)))

	rec := &recorder{}
	d.DetectAndDispatch(rec)
	d.Remove(a)
	d.DetectAndDispatch(rec)
	d.DetectAndDispatch(rec)

	expected := []EventKind{CollisionEnter, CollisionExit}
	for _, id := range []ID{1, 2} {
		kinds := rec.kindsFor(id)
		if len(kinds) != len(expected) || kinds[0] != expected[0] || kinds[1] != expected[1] {
			t.Errorf("Expected %v for owner %d, got %v", expected, id, kinds)
		}
	}
	// the exit carries the last record, removed collider included
	last := rec.events[len(rec.events)-1]
	if last.info.SelfCollider != a && last.info.OtherCollider != a {
		t.Errorf("Expected exit info to reference the removed collider, got %+v", last.info)
	}
	if d.Tracker().Len() != 0 {
		t.Errorf("Expected no pairs after the exit, got %d", d.Tracker().Len())
	}
}

func TestDetector_CompoundPairStaysWhileOneColliderOverlaps(t *testing.T) {
	d := NewDetector()
	// owner 3 is a child collider of body owner 1
	d.BodyOf = func(owner ID) (ID, bool) {
		switch owner {
		case 1, 3:
			return 1, true
		}
		return 0, false
	}
	hull := NewCollider(1, physics.NewCircle(1), at(0, 0))
	wing := NewCollider(3, physics.NewCircle(1), at(0, 0.5))
	d.Register(hull)
	d.Register(wing)
	d.Register(NewCollider(2, physics.NewCircle(1), at(1, 0)))

	rec := &recorder{}
	d.DetectAndDispatch(rec)
	d.Remove(hull)
	d.DetectAndDispatch(rec)
	d.Remove(wing)
	d.DetectAndDispatch(rec)

	expected := []EventKind{CollisionEnter, CollisionStay, CollisionExit}
	kinds := rec.kindsFor(2)
	if len(kinds) != len(expected) {
		t.Fatalf("Expected %v for owner 2, got %v", expected, kinds)
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Errorf("Expected event %d to be %v, got %v", i, expected[i], kinds[i])
		}
	}
}

// removingDeliverer removes colliders and forgets owners from inside
// delivery, the way a scene listener tearing down objects does
type removingDeliverer struct {
	recorder
	d      *Detector
	remove map[ID]*Collider
}

func (r *removingDeliverer) Deliver(id ID, kind EventKind, info Info) {
	r.recorder.Deliver(id, kind, info)
	if id != 1 || kind != CollisionExit {
		return
	}
	for owner, c := range r.remove {
		r.d.Remove(c)
		r.d.Forget(owner)
	}
}

func TestDetector_ListenerRemovesOwnersDuringExits(t *testing.T) {
	d := NewDetector()
	src := at(0, 0)
	d.Register(NewCollider(1, physics.NewCircle(1), src))
	b := NewCollider(2, physics.NewCircle(1), at(1, 0))
	c := NewCollider(3, physics.NewCircle(1), at(0.5, 0.5))
	d.Register(b)
	d.Register(c)

	rec := &removingDeliverer{d: d, remove: map[ID]*Collider{2: b, 3: c}}
	d.DetectAndDispatch(rec)

	src.pose.Position.X = -50
	d.DetectAndDispatch(rec)

	exits := 0
	for _, e := range rec.events {
		if e.id == 1 && e.kind == CollisionExit {
			exits++
		}
	}
	if exits != 2 {
		t.Errorf("Expected owner 1 to receive both exits, got %d", exits)
	}
	if d.Tracker().Colliding(2, 3) {
		t.Error("Expected the forgotten pair 2-3 to be gone")
	}
	d.DetectAndDispatch(rec)
	if d.Len() != 1 || d.Tracker().Len() != 0 {
		t.Errorf("Expected only owner 1 left with no pairs, got %d colliders and %d pairs", d.Len(), d.Tracker().Len())
	}
}

func TestDetector_InactiveAndLayers(t *testing.T) {
	d := NewDetector()
	a := NewCollider(1, physics.NewCircle(1), at(0, 0))
	b := NewCollider(2, physics.NewCircle(1), at(1, 0))
	c := NewCollider(3, physics.NewCircle(1), at(-1, 0))
	c.Layer = 4
	c.Mask = 4
	d.Register(a)
	d.Register(b)
	d.Register(c)

	hits := d.BuildContacts(nil)
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(hits))
	}
	st := d.Stats()
	if st.BroadphaseTests != 1 || st.NarrowphaseTests != 1 || st.ContactsBuilt != 1 {
		t.Errorf("Unexpected stats %+v", st)
	}

	if !d.SetActive(b, false) {
		t.Fatal("Expected SetActive to find b")
	}
	if hits := d.BuildContacts(nil); len(hits) != 0 {
		t.Errorf("Expected no hits with b inactive, got %d", len(hits))
	}
	if registered, active := d.Registered(b); !registered || active {
		t.Errorf("Expected b registered but inactive, got %v %v", registered, active)
	}
}

func TestDetector_RegisterIsIdempotent(t *testing.T) {
	d := NewDetector()
	a := NewCollider(1, physics.NewCircle(1), at(0, 0))
	d.Register(a)
	serial := a.serial
	d.Register(a)

	if d.Len() != 1 {
		t.Errorf("Expected 1 collider, got %d", d.Len())
	}
	if a.serial != serial {
		t.Errorf("Expected serial to stay %d, got %d", serial, a.serial)
	}
}

func TestDetector_AttachedBodyOwnsContact(t *testing.T) {
	d := NewDetector()
	// owner 5 is a child of body owner 4
	d.BodyOf = func(owner ID) (ID, bool) {
		switch owner {
		case 4, 5:
			return 4, true
		}
		return 0, false
	}
	d.Register(NewCollider(5, physics.NewCircle(1), at(0, 0)))
	d.Register(NewCollider(7, physics.NewCircle(1), at(1, 0)))

	hits := d.BuildContacts(nil)
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(hits))
	}
	if hits[0].A != 4 || hits[0].B != 7 {
		t.Errorf("Expected hit between 4 and 7, got %d and %d", hits[0].A, hits[0].B)
	}
	if hits[0].ColliderA.Owner != 5 {
		t.Errorf("Expected collider to keep its owner 5, got %d", hits[0].ColliderA.Owner)
	}
}

func TestDetector_SweepOrder(t *testing.T) {
	d := NewDetector()
	var cs []*Collider
	for _, owner := range []ID{9, 3, 7, 3} {
		c := NewCollider(owner, physics.NewCircle(1), at(0, 0))
		cs = append(cs, c)
		d.Register(c)
	}

	active := d.Active()
	want := []*Collider{cs[1], cs[3], cs[2], cs[0]}
	for i := range want {
		if active[i] != want[i] {
			t.Errorf("position %d: expected owner %d serial %d, got owner %d serial %d",
				i, want[i].Owner, want[i].serial, active[i].Owner, active[i].serial)
		}
	}
}
