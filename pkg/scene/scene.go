// pkg/scene/scene.go
package scene

import (
	"context"
	"fmt"
	"sort"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
	"github.com/opd-ai/go-rigid2d/pkg/logging"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
	"github.com/opd-ai/go-rigid2d/pkg/transform"
	"github.com/opd-ai/go-rigid2d/pkg/world"
)

// Scene owns nodes and feeds them to a simulation. Spawns and destroys are
// queued and applied between ticks, so the active set never changes while
// the simulation iterates it.
type Scene struct {
	sim    *world.Simulation
	tree   *transform.Tree
	logger *logging.Logger
	ctx    context.Context

	nodes   map[collision.ID]*Node
	byName  map[string]*Node
	pending []*Node
	doomed  []*Node
}

// NewScene creates an empty scene driving sim. A nil logger discards output.
func NewScene(sim *world.Simulation, logger *logging.Logger) *Scene {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Scene{
		sim:    sim,
		tree:   transform.NewTree(),
		logger: logger,
		ctx:    context.Background(),
		nodes:  make(map[collision.ID]*Node),
		byName: make(map[string]*Node),
	}
	sim.SetParentLookup(s.parentOf)
	sim.SetAliveCheck(s.alive)
	return s
}

// Simulation returns the simulation the scene drives
func (s *Scene) Simulation() *world.Simulation {
	return s.sim
}

// Tree returns the transform hierarchy of the scene's nodes
func (s *Scene) Tree() *transform.Tree {
	return s.tree
}

// NewNode creates a node under parent (nil for a root). The node is not
// part of the simulation until it is spawned.
func (s *Scene) NewNode(name string, parent *Node, local physics.Pose) (*Node, error) {
	parentID := transform.None
	if parent != nil {
		if parent.state == Destroyed || parent.state == PendingDestroy {
			return nil, fmt.Errorf("failed to create node %q: parent %q is being destroyed", name, parent.Name)
		}
		parentID = parent.Transform.ID()
	}

	id, err := s.tree.Add(parentID, local)
	if err != nil {
		return nil, fmt.Errorf("failed to create node %q: %w", name, err)
	}

	n := &Node{
		BasicEntity: ecs.NewBasic(),
		Name:        name,
		Transform:   s.tree.Handle(id),
		parent:      parent,
		state:       Pending,
		enabled:     true,
	}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	s.nodes[n.Owner()] = n
	if name != "" {
		s.byName[name] = n
	}
	return n, nil
}

// Spawn queues n to join the simulation at the start of the next tick
func (s *Scene) Spawn(n *Node) {
	if n == nil || n.state != Pending {
		return
	}
	for _, p := range s.pending {
		if p == n {
			return
		}
	}
	s.pending = append(s.pending, n)
}

// Destroy marks n and its descendants for removal at the end of the
// current tick. They stop receiving events immediately.
func (s *Scene) Destroy(n *Node) {
	if n == nil || n.state == PendingDestroy || n.state == Destroyed {
		return
	}
	n.state = PendingDestroy
	s.doomed = append(s.doomed, n)
	for _, c := range n.children {
		s.Destroy(c)
	}
}

// SetEnabled toggles a node's collider and body without unregistering them
func (s *Scene) SetEnabled(n *Node, enabled bool) {
	if n == nil || n.enabled == enabled {
		return
	}
	n.enabled = enabled
	if n.state != Active {
		return
	}
	if n.Collider != nil {
		s.sim.SetShapeActive(n.Collider, enabled)
	}
	if n.Body != nil {
		s.sim.SetBodyActive(n.Owner(), enabled)
	}
}

// Tick joins pending nodes, steps the simulation by fixedDt, dispatches pair
// events and then removes the nodes destroyed along the way.
func (s *Scene) Tick(fixedDt float64) {
	s.flushSpawns()
	s.sim.Step(fixedDt)
	s.sim.DetectAndDispatch()
	s.flushDestroys()
}

func (s *Scene) flushSpawns() {
	if len(s.pending) == 0 {
		return
	}
	queue := s.pending
	s.pending = nil

	for _, n := range queue {
		if n.state != Pending {
			continue
		}
		owner := n.Owner()
		if n.Collider != nil {
			s.sim.RegisterShape(n.Collider)
		}
		if n.Body != nil {
			s.sim.RegisterBody(owner, n.Body, n.Transform)
		}
		if n.Listener != nil {
			s.sim.SetListener(owner, n.Listener)
		}
		n.state = Active
		if !n.enabled {
			n.enabled = true
			s.SetEnabled(n, false)
		}
		s.logger.Debug(s.ctx, "node spawned", "name", n.Name, "owner", uint64(owner))
	}
}

func (s *Scene) flushDestroys() {
	if len(s.doomed) == 0 {
		return
	}
	queue := s.doomed
	s.doomed = nil

	// children first, so a subtree is removed bottom-up
	for i := len(queue) - 1; i >= 0; i-- {
		n := queue[i]
		if n.state != PendingDestroy {
			continue
		}
		owner := n.Owner()
		s.sim.RemoveOwner(owner)
		if n.Transform.Valid() {
			s.tree.Remove(n.Transform.ID())
		}
		if n.parent != nil {
			n.parent.children = removeNode(n.parent.children, n)
		}
		delete(s.nodes, owner)
		if s.byName[n.Name] == n {
			delete(s.byName, n.Name)
		}
		n.state = Destroyed
		s.logger.Debug(s.ctx, "node destroyed", "name", n.Name, "owner", uint64(owner))
	}
}

func removeNode(list []*Node, n *Node) []*Node {
	for i, c := range list {
		if c == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Node looks a node up by owner
func (s *Scene) Node(owner collision.ID) (*Node, bool) {
	n, ok := s.nodes[owner]
	return n, ok
}

// Find looks a node up by name
func (s *Scene) Find(name string) (*Node, bool) {
	n, ok := s.byName[name]
	return n, ok
}

// Nodes returns every node that is not destroyed, in creation order
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *Scene) parentOf(owner collision.ID) (collision.ID, bool) {
	n, ok := s.nodes[owner]
	if !ok || n.parent == nil {
		return 0, false
	}
	return n.parent.Owner(), true
}

func (s *Scene) alive(owner collision.ID) bool {
	n, ok := s.nodes[owner]
	return ok && n.state == Active
}
