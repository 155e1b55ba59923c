// pkg/scene/node.go
package scene

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
	"github.com/opd-ai/go-rigid2d/pkg/dynamics"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
	"github.com/opd-ai/go-rigid2d/pkg/transform"
)

// State is the lifecycle stage of a node
type State int

const (
	// Pending nodes are queued and join the simulation at the next tick
	Pending State = iota
	// Active nodes are registered with the simulation
	Active
	// PendingDestroy nodes are unregistered at the end of the current tick
	PendingDestroy
	// Destroyed nodes are gone and must not be reused
	Destroyed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Active:
		return "active"
	case PendingDestroy:
		return "pending_destroy"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Node is one object of a scene: a transform plus an optional collider,
// rigid body and listener.
type Node struct {
	ecs.BasicEntity

	Name      string
	Transform transform.Handle
	Collider  *collision.Collider
	Body      *dynamics.RigidBody
	Listener  collision.Listener

	parent   *Node
	children []*Node
	state    State
	enabled  bool
}

// Owner returns the identity the simulation knows this node by
func (n *Node) Owner() collision.ID {
	return collision.ID(n.ID())
}

// State returns the node's lifecycle stage
func (n *Node) State() State {
	return n.state
}

// Enabled reports whether the node takes part in the simulation
func (n *Node) Enabled() bool {
	return n.enabled
}

// Parent returns the parent node, or nil for a root
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children
func (n *Node) Children() []*Node {
	return n.children
}

// AttachShape gives the node a solid collider following its transform
func (n *Node) AttachShape(shape physics.Shape) *collision.Collider {
	n.Collider = collision.NewCollider(n.Owner(), shape, n.Transform)
	return n.Collider
}

// AttachBody gives the node a rigid body moving its transform
func (n *Node) AttachBody(kind dynamics.BodyKind) *dynamics.RigidBody {
	n.Body = dynamics.NewRigidBody(kind)
	return n.Body
}
