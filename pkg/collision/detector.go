// pkg/collision/detector.go
package collision

import "github.com/opd-ai/go-rigid2d/pkg/physics"

// Detector owns the collider registrations and the pair history of one
// simulation. It is not safe for concurrent use.
type Detector struct {
	colliders  map[*Collider]bool
	nextSerial uint64
	tracker    *Tracker
	stats      Stats

	// BodyOf resolves the rigid body a collider owner is attached to
	BodyOf BodyResolver
	// TieEpsilon is the separating-axis tie tolerance
	TieEpsilon float64
}

// NewDetector creates an empty detector
func NewDetector() *Detector {
	return &Detector{
		colliders:  make(map[*Collider]bool),
		tracker:    NewTracker(),
		TieEpsilon: physics.DefaultTieEpsilon,
	}
}

// Register adds c as active. Registering a collider twice only re-activates
// it; it keeps its place in the sweep order.
func (d *Detector) Register(c *Collider) {
	if c == nil {
		return
	}
	if _, ok := d.colliders[c]; !ok {
		d.nextSerial++
		c.serial = d.nextSerial
	}
	d.colliders[c] = true
}

// Remove unregisters c. Pairs it took part in keep their last record, so
// the next dispatch reports Exit for them, or Stay when another collider of
// the same owners still overlaps.
func (d *Detector) Remove(c *Collider) {
	if c == nil {
		return
	}
	delete(d.colliders, c)
}

// SetActive toggles a registered collider without unregistering it.
// Returns false if c is not registered.
func (d *Detector) SetActive(c *Collider, active bool) bool {
	if _, ok := d.colliders[c]; !ok {
		return false
	}
	d.colliders[c] = active
	return true
}

// Registered reports whether c is registered, and if so whether it is active
func (d *Detector) Registered(c *Collider) (registered, active bool) {
	active, registered = d.colliders[c]
	return registered, active
}

// Len returns the number of registered colliders
func (d *Detector) Len() int {
	return len(d.colliders)
}

// Forget drops the pair history of owner without reporting exits
func (d *Detector) Forget(owner ID) {
	d.tracker.Forget(owner)
}

// Clear removes every collider and all pair history
func (d *Detector) Clear() {
	clear(d.colliders)
	d.tracker.Reset()
	d.stats = Stats{}
}

// Stats returns the counters of the last BuildContacts call
func (d *Detector) Stats() Stats {
	return d.stats
}

// Tracker exposes the pair history
func (d *Detector) Tracker() *Tracker {
	return d.tracker
}

// Active returns the active colliders in sweep order. Colliders without a
// pose source are skipped.
func (d *Detector) Active() []*Collider {
	out := make([]*Collider, 0, len(d.colliders))
	for c, on := range d.colliders {
		if on && c.Source != nil {
			out = append(out, c)
		}
	}
	sortColliders(out)
	return out
}

// BuildContacts runs the broad and narrow phase over the active colliders
// and appends every hit, trigger pairs included, to dst.
func (d *Detector) BuildContacts(dst []Hit) []Hit {
	d.stats = Stats{}
	return sweep(dst, d.Active(), d.BodyOf, d.TieEpsilon, &d.stats)
}

// DetectAndDispatch builds this frame's contacts, diffs them against the
// previous frame and delivers enter/stay/exit events. It returns the hits
// it found.
func (d *Detector) DetectAndDispatch(dl Deliverer) []Hit {
	hits := d.BuildContacts(nil)
	for _, h := range hits {
		d.tracker.Observe(h)
	}
	d.tracker.Dispatch(dl)
	return hits
}
