// Package health runs named checks against a running simulation. Checks
// catch divergence (non-finite or runaway bodies) and steps that overrun
// their time budget.
package health

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/opd-ai/go-rigid2d/pkg/world"
)

// HealthCheck defines the interface for individual health checks.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of a simulation.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// Healthy reports whether every check passed
func (s HealthStatus) Healthy() bool {
	return s.Status == "healthy"
}

// Failed returns the names of the failing checks, sorted
func (s HealthStatus) Failed() []string {
	var out []string
	for name, c := range s.Checks {
		if c.Status != "healthy" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ComponentHealth represents the health status of an individual check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a new health check with the health checker.
// If a check with the same name already exists, it will be replaced.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth executes all registered health checks and returns the aggregated status.
// The overall status is "healthy" only if all individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: "healthy",
			}
		}
	}

	return status
}

// StabilityCheck fails when any body has a non-finite state or moves faster
// than MaxSpeed.
type StabilityCheck struct {
	snapshot func() world.Snapshot
	maxSpeed float64
}

// NewStabilityCheck creates a stability check. A maxSpeed <= 0 only checks
// for non-finite values.
func NewStabilityCheck(snapshot func() world.Snapshot, maxSpeed float64) *StabilityCheck {
	return &StabilityCheck{
		snapshot: snapshot,
		maxSpeed: maxSpeed,
	}
}

// Name returns the name of this health check.
func (s *StabilityCheck) Name() string {
	return "stability"
}

// Check scans every body of the current snapshot.
func (s *StabilityCheck) Check(ctx context.Context) error {
	snap := s.snapshot()
	for _, b := range snap.Bodies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !b.Position.IsFinite() || !b.Velocity.IsFinite() ||
			math.IsNaN(b.Rotation) || math.IsInf(b.Rotation, 0) ||
			math.IsNaN(b.AngularVelocity) || math.IsInf(b.AngularVelocity, 0) {
			return fmt.Errorf("body %d has a non-finite state at tick %d", b.Owner, snap.Tick)
		}
		if s.maxSpeed > 0 && b.Velocity.Length() > s.maxSpeed {
			return fmt.Errorf("body %d speed %.3f exceeds limit %.3f", b.Owner, b.Velocity.Length(), s.maxSpeed)
		}
	}
	return nil
}

// StepBudgetCheck fails when the last step took longer than the budget.
type StepBudgetCheck struct {
	stats  func() world.Stats
	budget time.Duration
}

// NewStepBudgetCheck creates a health check for step duration.
func NewStepBudgetCheck(budget time.Duration, stats func() world.Stats) *StepBudgetCheck {
	return &StepBudgetCheck{
		stats:  stats,
		budget: budget,
	}
}

// Name returns the name of this health check.
func (b *StepBudgetCheck) Name() string {
	return "step_budget"
}

// Check verifies that the last step fit in the budget.
func (b *StepBudgetCheck) Check(ctx context.Context) error {
	st := b.stats()
	if st.StepTime > b.budget {
		return fmt.Errorf("step %d took %v, budget %v", st.Tick, st.StepTime, b.budget)
	}
	return nil
}
