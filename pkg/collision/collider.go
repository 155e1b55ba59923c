// pkg/collision/collider.go
package collision

import (
	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// ID is the stable identity of a shape or body owner
type ID uint64

// Layer bits used by default
const (
	DefaultLayer uint32 = 1
	AllLayers    uint32 = 0xFFFFFFFF
)

// PoseSource supplies the world pose a collider follows
type PoseSource interface {
	Pose() physics.Pose
}

// Collider attaches a shape to an owner. Two colliders are only tested when
// each one's Layer intersects the other's Mask.
type Collider struct {
	Owner   ID
	Shape   physics.Shape
	Trigger bool
	Layer   uint32
	Mask    uint32
	Source  PoseSource

	serial uint64
}

// NewCollider creates a solid collider on the default layer that collides
// with every layer.
func NewCollider(owner ID, shape physics.Shape, src PoseSource) *Collider {
	return &Collider{
		Owner:  owner,
		Shape:  shape,
		Layer:  DefaultLayer,
		Mask:   AllLayers,
		Source: src,
	}
}

// Pose returns the world pose of the collider's source, or the identity pose
// when it has none.
func (c *Collider) Pose() physics.Pose {
	if c.Source == nil {
		return physics.IdentityPose()
	}
	return c.Source.Pose()
}

// AABB returns the collider's world-space bounding rectangle
func (c *Collider) AABB() physics.Rect {
	return physics.WorldAABB(c.Pose(), c.Shape)
}

// Center returns the world-space center of the collider's shape
func (c *Collider) Center() physics.Vector2D {
	return physics.WorldCenter(c.Pose(), c.Shape)
}
