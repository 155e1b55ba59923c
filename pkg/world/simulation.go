// pkg/world/simulation.go
package world

import (
	"context"
	"math"
	"time"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
	"github.com/opd-ai/go-rigid2d/pkg/config"
	"github.com/opd-ai/go-rigid2d/pkg/dynamics"
	"github.com/opd-ai/go-rigid2d/pkg/event"
	"github.com/opd-ai/go-rigid2d/pkg/logging"
)

// Simulation is one physics context: its registrations, pair history and
// tuning. Registration and stepping must happen on the same goroutine.
type Simulation struct {
	cfg      config.PhysicsConfig
	solver   dynamics.Solver
	detector *collision.Detector

	shapes    map[collision.ID][]*collision.Collider
	bodies    map[collision.ID]*bodyReg
	listeners map[collision.ID]collision.Listener
	parentOf  func(collision.ID) (collision.ID, bool)
	alive     func(collision.ID) bool

	bus   *event.Bus
	guard *event.Guard

	logger *logging.Logger
	ctx    context.Context

	tick  uint64
	stats Stats

	// scratch buffers reused between substeps
	entryBuf []dynamics.Entry
	hitBuf   []collision.Hit
	ccBuf    []dynamics.ContactConstraint
}

// NewSimulation creates an empty simulation. A nil logger discards output.
func NewSimulation(cfg config.PhysicsConfig, logger *logging.Logger) *Simulation {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Simulation{
		detector:  collision.NewDetector(),
		shapes:    make(map[collision.ID][]*collision.Collider),
		bodies:    make(map[collision.ID]*bodyReg),
		listeners: make(map[collision.ID]collision.Listener),
		logger:    logger,
		ctx:       logging.WithRunID(context.Background(), ""),
	}
	s.detector.BodyOf = s.bodyOf
	s.SetConfig(cfg)
	return s
}

// SetConfig replaces the tuning. Out of range substep and size settings
// are clamped; it takes effect on the next Step.
func (s *Simulation) SetConfig(cfg config.PhysicsConfig) {
	cfg.SetMaxSubsteps(cfg.MaxSubsteps)
	cfg.SetCCDMinSizeFactor(cfg.CCDMinSizeFactor)
	if cfg.VelocityIterations < 1 {
		cfg.VelocityIterations = 1
	}
	if cfg.SATTieEpsilon < 0 {
		cfg.SATTieEpsilon = 0
	}

	s.cfg = cfg
	s.solver = dynamics.Solver{
		BaumgarteFactor:      cfg.BaumgarteFactor,
		Slop:                 cfg.PenetrationSlop,
		Percent:              cfg.PenetrationPercent,
		RestitutionThreshold: cfg.RestitutionThreshold,
	}
	s.detector.TieEpsilon = cfg.SATTieEpsilon
}

// Config returns the tuning in effect
func (s *Simulation) Config() config.PhysicsConfig {
	return s.cfg
}

// SetEventBus publishes every delivered pair event, each completed step and
// each removed owner to bus. A nil bus disables publishing.
func (s *Simulation) SetEventBus(bus *event.Bus) {
	s.bus = bus
}

// SetGuard runs every listener call through g, keyed by the listening owner
func (s *Simulation) SetGuard(g *event.Guard) {
	s.guard = g
}

// WithContext sets the context whose run ID is attached to log entries
func (s *Simulation) WithContext(ctx context.Context) {
	if ctx != nil {
		s.ctx = ctx
	}
}

// Detector exposes the collision detector
func (s *Simulation) Detector() *collision.Detector {
	return s.detector
}

// Tick returns the number of completed steps
func (s *Simulation) Tick() uint64 {
	return s.tick
}

// Stats returns the statistics of the last Step
func (s *Simulation) Stats() Stats {
	return s.stats
}

// Step advances the simulation by fixedDt seconds. The step is split into
// substeps when a continuous body would otherwise outrun its own size; each
// substep integrates, builds contacts, runs the velocity iterations and one
// positional correction.
func (s *Simulation) Step(fixedDt float64) {
	if fixedDt <= 0 || math.IsNaN(fixedDt) || math.IsInf(fixedDt, 0) {
		s.logger.Debug(s.ctx, "ignoring step with unusable timestep", "dt", fixedDt)
		return
	}
	start := time.Now()
	stats := Stats{Tick: s.tick + 1}

	entries := s.entries(s.entryBuf[:0])
	s.entryBuf = entries

	substeps := dynamics.Substeps(entries, fixedDt, s.cfg.MaxSubsteps, s.cfg.CCDMinSizeFactor)
	if substeps == s.cfg.MaxSubsteps && substeps > 1 {
		s.logger.Warn(s.ctx, "substeps saturated", "tick", stats.Tick, "max", s.cfg.MaxSubsteps)
	}
	dt := fixedDt / float64(substeps)

	for i := 0; i < substeps; i++ {
		t0 := time.Now()
		dynamics.Integrate(entries, dt, s.cfg.Gravity)
		t1 := time.Now()

		s.hitBuf = s.detector.BuildContacts(s.hitBuf[:0])
		stats.addCollision(s.detector.Stats())
		s.ccBuf = s.constraints(s.ccBuf[:0], s.hitBuf)
		t2 := time.Now()

		for it := 0; it < s.cfg.VelocityIterations; it++ {
			stats.ContactsProcessed += s.solver.SolveVelocities(s.ccBuf, dt)
		}
		stats.SolverIterations += s.cfg.VelocityIterations
		s.solver.CorrectPositions(s.ccBuf)
		t3 := time.Now()

		stats.IntegrateTime += t1.Sub(t0)
		stats.BuildTime += t2.Sub(t1)
		stats.SolveTime += t3.Sub(t2)
	}

	stats.Substeps = substeps
	stats.StepTime = time.Since(start)
	s.tick = stats.Tick
	s.stats = stats

	s.logger.Debug(s.ctx, "step complete", stats.logArgs()...)
	if s.bus != nil {
		s.bus.Publish(event.NewStepEvent(s, stats.Tick, substeps, stats.Collision.ContactsBuilt))
	}
}

// DetectAndDispatch runs detection once on the current poses and delivers
// enter, stay and exit events to the listeners of both owners of each pair.
func (s *Simulation) DetectAndDispatch() {
	s.detector.DetectAndDispatch(deliverer{s})
}

// Colliding reports whether a and b touched at the last dispatch
func (s *Simulation) Colliding(a, b collision.ID) bool {
	return s.detector.Tracker().Colliding(a, b)
}

type deliverer struct {
	s *Simulation
}

func (d deliverer) Alive(id collision.ID) bool {
	if d.s.alive == nil {
		return true
	}
	return d.s.alive(id)
}

func (d deliverer) Deliver(id collision.ID, kind collision.EventKind, info collision.Info) {
	s := d.s
	if l, ok := s.listeners[id]; ok {
		if s.guard == nil {
			l.OnCollisionEvent(kind, info)
		} else if err := s.guard.Call(uint64(id), func() error {
			l.OnCollisionEvent(kind, info)
			return nil
		}); err != nil {
			s.logger.Debug(s.ctx, "listener call skipped", "owner", uint64(id), "kind", kind.String())
		}
	}

	if s.bus != nil {
		s.bus.Publish(event.NewCollisionEvent(s, kind, info))
	}
}

func newOwnerRemoved(s *Simulation, owner collision.ID) event.Event {
	return event.NewOwnerEvent(event.OwnerRemoved, s, owner)
}
