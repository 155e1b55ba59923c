// pkg/transform/tree.go
package transform

import (
	"errors"
	"math"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// NodeID indexes a node in a Tree. IDs of removed nodes are recycled.
type NodeID int32

// None is the parent of root nodes
const None NodeID = -1

var (
	// ErrNegativeScale is returned when a scale component below zero is set
	ErrNegativeScale = errors.New("transform: negative scale")
	// ErrInvalidNode is returned for operations on removed or unknown nodes
	ErrInvalidNode = errors.New("transform: invalid node")
	// ErrCycle is returned when reparenting would make a node its own ancestor
	ErrCycle = errors.New("transform: parent cycle")
)

type node struct {
	local    physics.Pose
	world    physics.Pose
	parent   NodeID
	children []NodeID
	dirty    bool
	alive    bool
}

// Tree stores local poses in a flat arena and derives world poses lazily.
// A node's cached world pose is invalidated whenever it or any ancestor
// changes.
type Tree struct {
	nodes []node
	free  []NodeID
}

// NewTree creates an empty transform tree
func NewTree() *Tree {
	return &Tree{}
}

// Add inserts a node under parent (None for a root) and returns its ID.
func (t *Tree) Add(parent NodeID, local physics.Pose) (NodeID, error) {
	if parent != None && !t.Valid(parent) {
		return None, ErrInvalidNode
	}
	if err := checkScale(local.Scale); err != nil {
		return None, err
	}

	n := node{local: local, parent: parent, dirty: true, alive: true}
	var id NodeID
	if k := len(t.free); k > 0 {
		id = t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[id] = n
	} else {
		id = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, n)
	}

	if parent != None {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id, nil
}

// Valid reports whether id refers to a live node
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && t.nodes[id].alive
}

// Len returns the number of live nodes
func (t *Tree) Len() int {
	return len(t.nodes) - len(t.free)
}

// Remove deletes the node and its whole subtree
func (t *Tree) Remove(id NodeID) {
	if !t.Valid(id) {
		return
	}
	t.detach(id)

	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, t.nodes[cur].children...)
		t.nodes[cur] = node{parent: None}
		t.free = append(t.free, cur)
	}
}

// Parent returns the parent of id, or None
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.Valid(id) {
		return None
	}
	return t.nodes[id].parent
}

// Children returns a copy of the direct children of id
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.Valid(id) {
		return nil
	}
	return append([]NodeID(nil), t.nodes[id].children...)
}

// SetParent moves id under parent. When keepWorld is set the node's local
// pose is rewritten so that its world pose is unchanged.
func (t *Tree) SetParent(id, parent NodeID, keepWorld bool) error {
	if !t.Valid(id) || (parent != None && !t.Valid(parent)) {
		return ErrInvalidNode
	}
	for p := parent; p != None; p = t.nodes[p].parent {
		if p == id {
			return ErrCycle
		}
	}

	world := t.World(id)
	t.detach(id)
	t.nodes[id].parent = parent
	if parent != None {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}

	if keepWorld {
		local := t.toLocal(parent, world)
		if err := checkScale(local.Scale); err != nil {
			// a negative parent scale cannot be undone; keep the old local scale
			local.Scale = t.nodes[id].local.Scale
		}
		t.nodes[id].local = local
	}
	t.markDirty(id)
	return nil
}

func (t *Tree) detach(id NodeID) {
	p := t.nodes[id].parent
	if p == None {
		return
	}
	siblings := t.nodes[p].children
	for i, c := range siblings {
		if c == id {
			t.nodes[p].children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	t.nodes[id].parent = None
}

// Local returns the local pose of id
func (t *Tree) Local(id NodeID) physics.Pose {
	if !t.Valid(id) {
		return physics.IdentityPose()
	}
	return t.nodes[id].local
}

// SetLocal replaces the local pose of id
func (t *Tree) SetLocal(id NodeID, local physics.Pose) error {
	if !t.Valid(id) {
		return ErrInvalidNode
	}
	if err := checkScale(local.Scale); err != nil {
		return err
	}
	t.nodes[id].local = local
	t.markDirty(id)
	return nil
}

// SetLocalPosition sets the position relative to the parent
func (t *Tree) SetLocalPosition(id NodeID, p physics.Vector2D) {
	if !t.Valid(id) {
		return
	}
	t.nodes[id].local.Position = p
	t.markDirty(id)
}

// SetLocalRotation sets the rotation relative to the parent, in radians
func (t *Tree) SetLocalRotation(id NodeID, r float64) {
	if !t.Valid(id) {
		return
	}
	t.nodes[id].local.Rotation = r
	t.markDirty(id)
}

// SetLocalScale sets the scale relative to the parent
func (t *Tree) SetLocalScale(id NodeID, s physics.Vector2D) error {
	if !t.Valid(id) {
		return ErrInvalidNode
	}
	if err := checkScale(s); err != nil {
		return err
	}
	t.nodes[id].local.Scale = s
	t.markDirty(id)
	return nil
}

// World returns the world pose of id, recomputing the cached value if it or
// any ancestor changed since the last call.
func (t *Tree) World(id NodeID) physics.Pose {
	if !t.Valid(id) {
		return physics.IdentityPose()
	}
	n := &t.nodes[id]
	if !n.dirty {
		return n.world
	}

	if n.parent == None {
		n.world = n.local
	} else {
		n.world = compose(t.World(n.parent), n.local)
	}
	n.dirty = false
	return n.world
}

// SetWorldPosition moves id so that its world position is p
func (t *Tree) SetWorldPosition(id NodeID, p physics.Vector2D) {
	if !t.Valid(id) {
		return
	}
	local := t.toLocal(t.nodes[id].parent, physics.Pose{Position: p, Scale: physics.Vector2D{X: 1, Y: 1}})
	t.nodes[id].local.Position = local.Position
	t.markDirty(id)
}

// SetWorldRotation rotates id so that its world rotation is r radians
func (t *Tree) SetWorldRotation(id NodeID, r float64) {
	if !t.Valid(id) {
		return
	}
	if p := t.nodes[id].parent; p != None {
		r -= t.World(p).Rotation
	}
	t.nodes[id].local.Rotation = r
	t.markDirty(id)
}

// SetWorldScale scales id so that its world scale is s
func (t *Tree) SetWorldScale(id NodeID, s physics.Vector2D) error {
	if !t.Valid(id) {
		return ErrInvalidNode
	}
	if err := checkScale(s); err != nil {
		return err
	}
	local := t.toLocal(t.nodes[id].parent, physics.Pose{Scale: s})
	if err := checkScale(local.Scale); err != nil {
		return err
	}
	t.nodes[id].local.Scale = local.Scale
	t.markDirty(id)
	return nil
}

// Translate moves id by delta in world space
func (t *Tree) Translate(id NodeID, delta physics.Vector2D) {
	t.SetWorldPosition(id, t.World(id).Position.Add(delta))
}

// Right returns the node's world x axis
func (t *Tree) Right(id NodeID) physics.Vector2D {
	ux, _ := physics.Basis(t.World(id).Rotation)
	return ux
}

// Up returns the node's world y axis
func (t *Tree) Up(id NodeID) physics.Vector2D {
	_, uy := physics.Basis(t.World(id).Rotation)
	return uy
}

// LookAt rotates id so that its x axis points at target
func (t *Tree) LookAt(id NodeID, target physics.Vector2D) {
	d := target.Sub(t.World(id).Position)
	if d.LengthSquared() <= 1e-12 {
		return
	}
	t.SetWorldRotation(id, d.Angle())
}

func (t *Tree) markDirty(id NodeID) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[cur]
		// children of a dirty node are already dirty
		if n.dirty && cur != id {
			continue
		}
		n.dirty = true
		stack = append(stack, n.children...)
	}
}

// toLocal expresses a world pose in the frame of parent.
func (t *Tree) toLocal(parent NodeID, world physics.Pose) physics.Pose {
	if parent == None {
		return world
	}
	pw := t.World(parent)
	rel := world.Position.Sub(pw.Position).Rotate(-pw.Rotation)
	return physics.Pose{
		Position: physics.Vector2D{X: safeDiv(rel.X, pw.Scale.X), Y: safeDiv(rel.Y, pw.Scale.Y)},
		Depth:    world.Depth - pw.Depth,
		Scale:    physics.Vector2D{X: safeDiv(world.Scale.X, pw.Scale.X), Y: safeDiv(world.Scale.Y, pw.Scale.Y)},
		Rotation: world.Rotation - pw.Rotation,
	}
}

func compose(parent, local physics.Pose) physics.Pose {
	return physics.Pose{
		Position: parent.Position.Add(local.Position.Mul(parent.Scale).Rotate(parent.Rotation)),
		Depth:    parent.Depth + local.Depth,
		Scale:    parent.Scale.Mul(local.Scale),
		Rotation: parent.Rotation + local.Rotation,
	}
}

func safeDiv(a, b float64) float64 {
	if math.Abs(b) < 1e-12 {
		return 0
	}
	return a / b
}

func checkScale(s physics.Vector2D) error {
	if s.X < 0 || s.Y < 0 {
		return ErrNegativeScale
	}
	return nil
}

// Handle binds a node to its tree. It satisfies the pose source and frame
// interfaces used by the collision and dynamics packages.
type Handle struct {
	tree *Tree
	id   NodeID
}

// Handle returns a handle for id
func (t *Tree) Handle(id NodeID) Handle {
	return Handle{tree: t, id: id}
}

// ID returns the node ID behind the handle
func (h Handle) ID() NodeID { return h.id }

// Valid reports whether the handle still points at a live node
func (h Handle) Valid() bool { return h.tree != nil && h.tree.Valid(h.id) }

// Pose returns the world pose
func (h Handle) Pose() physics.Pose { return h.tree.World(h.id) }

func (h Handle) WorldPosition() physics.Vector2D { return h.tree.World(h.id).Position }

func (h Handle) SetWorldPosition(p physics.Vector2D) { h.tree.SetWorldPosition(h.id, p) }

func (h Handle) WorldRotation() float64 { return h.tree.World(h.id).Rotation }

func (h Handle) SetWorldRotation(r float64) { h.tree.SetWorldRotation(h.id, r) }
