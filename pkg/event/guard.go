// pkg/event/guard.go
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-rigid2d/pkg/logging"
)

// ErrListenerPanic wraps the value recovered from a panicking callback
var ErrListenerPanic = errors.New("listener panicked")

// GuardSettings configures the circuit breaker kept for each guarded callback
type GuardSettings struct {
	Name string
	// MaxConsecutiveFailures trips the breaker
	MaxConsecutiveFailures uint32
	// Timeout is how long a tripped breaker stays open
	Timeout time.Duration
	// MaxRequests allowed through while half-open
	MaxRequests uint32
}

// DefaultGuardSettings trips after three consecutive failures and retries
// after five seconds.
func DefaultGuardSettings() GuardSettings {
	return GuardSettings{
		Name:                   "rigid2d-listener",
		MaxConsecutiveFailures: 3,
		Timeout:                5 * time.Second,
		MaxRequests:            1,
	}
}

// Guard isolates callbacks keyed by an ID. A callback that keeps failing or
// panicking has its breaker opened and is skipped until the timeout passes.
type Guard struct {
	settings GuardSettings
	logger   *logging.Logger
	breakers map[uint64]*gobreaker.CircuitBreaker
	mu       sync.Mutex
}

// NewGuard creates a guard. A nil logger discards output.
func NewGuard(settings GuardSettings, logger *logging.Logger) *Guard {
	if logger == nil {
		logger = logging.Discard()
	}
	if settings.MaxConsecutiveFailures == 0 {
		settings.MaxConsecutiveFailures = 1
	}
	return &Guard{
		settings: settings,
		logger:   logger,
		breakers: make(map[uint64]*gobreaker.CircuitBreaker),
	}
}

func (g *Guard) breaker(key uint64) *gobreaker.CircuitBreaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cb, ok := g.breakers[key]; ok {
		return cb
	}

	maxFails := g.settings.MaxConsecutiveFailures
	logger := g.logger
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        fmt.Sprintf("%s-%d", g.settings.Name, key),
		MaxRequests: g.settings.MaxRequests,
		Timeout:     g.settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "listener guard state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	g.breakers[key] = cb
	return cb
}

// Call runs fn through the breaker for key. A panic in fn is recovered and
// counted as a failure. When the breaker is open fn is not called and
// gobreaker.ErrOpenState is returned.
func (g *Guard) Call(key uint64, fn func() error) error {
	cb := g.breaker(key)
	_, err := cb.Execute(func() (res interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrListenerPanic, r)
			}
		}()
		return nil, fn()
	})
	if err != nil && !errors.Is(err, gobreaker.ErrOpenState) {
		g.logger.Error(context.Background(), "guarded listener failed", err,
			"key", key,
			"state", cb.State().String(),
		)
	}
	return err
}

// State returns the breaker state for key
func (g *Guard) State(key uint64) gobreaker.State {
	return g.breaker(key).State()
}

// Counts returns the breaker counters for key
func (g *Guard) Counts(key uint64) gobreaker.Counts {
	return g.breaker(key).Counts()
}

// Forget drops the breaker for key
func (g *Guard) Forget(key uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.breakers, key)
}
