// pkg/scene/system.go
package scene

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
)

// DefaultMaxTicksPerUpdate caps how many fixed ticks one frame may run
const DefaultMaxTicksPerUpdate = 5

// PhysicsSystem lets an ecs.World drive a scene. Variable frame times are
// accumulated and consumed in fixed ticks.
type PhysicsSystem struct {
	Scene *Scene
	// FixedDt is the tick length in seconds; zero uses the simulation config
	FixedDt float64
	// MaxTicksPerUpdate bounds catch-up after a long frame; leftover time
	// is dropped
	MaxTicksPerUpdate int

	accumulator float64
	ticks       uint64
}

// NewPhysicsSystem creates a system ticking scene at its configured rate
func NewPhysicsSystem(scene *Scene) *PhysicsSystem {
	return &PhysicsSystem{
		Scene:             scene,
		MaxTicksPerUpdate: DefaultMaxTicksPerUpdate,
	}
}

func (p *PhysicsSystem) fixedDt() float64 {
	if p.FixedDt > 0 {
		return p.FixedDt
	}
	return p.Scene.Simulation().Config().FixedTimestep
}

// Add spawns a node through the system
func (p *PhysicsSystem) Add(n *Node) {
	p.Scene.Spawn(n)
}

// Update satisfies the ecs.System interface
func (p *PhysicsSystem) Update(dt float32) {
	if dt <= 0 {
		return
	}
	step := p.fixedDt()
	if step <= 0 {
		return
	}
	maxTicks := p.MaxTicksPerUpdate
	if maxTicks < 1 {
		maxTicks = 1
	}

	p.accumulator += float64(dt)
	n := 0
	for p.accumulator >= step && n < maxTicks {
		p.Scene.Tick(step)
		p.accumulator -= step
		p.ticks++
		n++
	}
	if n == maxTicks && p.accumulator >= step {
		p.Scene.logger.Warn(p.Scene.ctx, "physics falling behind, dropping time",
			"dropped", p.accumulator, "ticks", n)
		p.accumulator = 0
	}
}

// Remove satisfies the ecs.System interface
func (p *PhysicsSystem) Remove(e ecs.BasicEntity) {
	if n, ok := p.Scene.Node(collision.ID(e.ID())); ok {
		p.Scene.Destroy(n)
	}
}

// Alpha is how far the accumulator sits between two ticks, in [0, 1)
func (p *PhysicsSystem) Alpha() float64 {
	step := p.fixedDt()
	if step <= 0 {
		return 0
	}
	return p.accumulator / step
}

// Ticks returns the number of fixed ticks run so far
func (p *PhysicsSystem) Ticks() uint64 {
	return p.ticks
}
