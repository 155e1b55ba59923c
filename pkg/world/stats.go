// pkg/world/stats.go
package world

import (
	"time"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
)

// Stats describes the work done by the last Step
type Stats struct {
	Tick              uint64
	Substeps          int
	SolverIterations  int
	ContactsProcessed int

	// Collision sums the detector counters over all substeps
	Collision collision.Stats

	StepTime      time.Duration
	IntegrateTime time.Duration
	BuildTime     time.Duration
	SolveTime     time.Duration
}

func (st *Stats) addCollision(c collision.Stats) {
	st.Collision.BroadphaseTests += c.BroadphaseTests
	st.Collision.NarrowphaseTests += c.NarrowphaseTests
	st.Collision.ContactsBuilt += c.ContactsBuilt
}

// logArgs flattens the stats into slog key/value pairs
func (st Stats) logArgs() []any {
	return []any{
		"tick", st.Tick,
		"substeps", st.Substeps,
		"solver_iterations", st.SolverIterations,
		"contacts_processed", st.ContactsProcessed,
		"broadphase_tests", st.Collision.BroadphaseTests,
		"narrowphase_tests", st.Collision.NarrowphaseTests,
		"contacts_built", st.Collision.ContactsBuilt,
		"step_time", st.StepTime,
		"integrate_time", st.IntegrateTime,
		"build_time", st.BuildTime,
		"solve_time", st.SolveTime,
	}
}
