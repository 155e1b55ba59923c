// pkg/scene/validate.go
package scene

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Scene file limits
const (
	MaxSceneFileSize = 4 << 20
	MaxNodeNameLen   = 64
	MaxSceneNodes    = 100000
)

// ErrInvalidScene is wrapped by every scene validation failure
var ErrInvalidScene = errors.New("invalid scene")

// Allow alphanumeric, hyphens, underscores, dots and slashes in node names
var validNodeNameChars = regexp.MustCompile(`^[a-zA-Z0-9\-_./]+$`)

// ValidateNodeName checks a node name. Empty names are allowed for
// anonymous nodes.
func ValidateNodeName(name string) error {
	if name == "" {
		return nil
	}
	if len(name) > MaxNodeNameLen {
		return fmt.Errorf("%w: node name too long: %d characters (max %d)", ErrInvalidScene, len(name), MaxNodeNameLen)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: node name contains invalid UTF-8 characters", ErrInvalidScene)
	}
	if !validNodeNameChars.MatchString(name) {
		return fmt.Errorf("%w: node name %q contains invalid characters", ErrInvalidScene, name)
	}
	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks names, parent references, sizes and numeric ranges
func (f *File) Validate() error {
	if f.Physics != nil {
		if err := f.Physics.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidScene, err)
		}
	}
	if len(f.Nodes) > MaxSceneNodes {
		return fmt.Errorf("%w: too many nodes: %d (max %d)", ErrInvalidScene, len(f.Nodes), MaxSceneNodes)
	}

	seen := make(map[string]bool, len(f.Nodes))
	for i := range f.Nodes {
		if err := f.Nodes[i].validate(seen); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		if name := f.Nodes[i].Name; name != "" {
			seen[name] = true
		}
	}

	if f.Scatter != nil {
		if err := f.Scatter.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (n *NodeSpec) validate(seen map[string]bool) error {
	if err := ValidateNodeName(n.Name); err != nil {
		return err
	}
	if n.Name != "" && seen[n.Name] {
		return fmt.Errorf("%w: duplicate node name %q", ErrInvalidScene, n.Name)
	}
	if n.Parent != "" && !seen[n.Parent] {
		return fmt.Errorf("%w: parent %q must be declared before %q", ErrInvalidScene, n.Parent, n.Name)
	}
	if !n.Position.IsFinite() || !finite(n.Rotation) {
		return fmt.Errorf("%w: position and rotation must be finite", ErrInvalidScene)
	}
	if n.Scale != nil && (!n.Scale.IsFinite() || n.Scale.X < 0 || n.Scale.Y < 0) {
		return fmt.Errorf("%w: scale must be finite and non-negative, got %v", ErrInvalidScene, *n.Scale)
	}
	if n.Shape != nil {
		if err := n.Shape.validate(); err != nil {
			return err
		}
	}
	if n.Body != nil {
		if err := n.Body.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ShapeSpec) validate() error {
	switch strings.ToLower(s.Type) {
	case "circle":
		if !finite(s.Radius) || s.Radius <= 0 {
			return fmt.Errorf("%w: circle radius must be > 0, got %v", ErrInvalidScene, s.Radius)
		}
	case "box":
		if !finite(s.Width, s.Height) || s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("%w: box size must be > 0, got %vx%v", ErrInvalidScene, s.Width, s.Height)
		}
	default:
		return fmt.Errorf("%w: unknown shape type %q", ErrInvalidScene, s.Type)
	}
	if !s.Offset.IsFinite() || !finite(s.LocalAngle) {
		return fmt.Errorf("%w: shape offset and angle must be finite", ErrInvalidScene)
	}
	return nil
}

func (b *BodySpec) validate() error {
	if _, err := b.BodyKind(); err != nil {
		return err
	}
	if _, err := parseFreeze(b.Freeze); err != nil {
		return err
	}
	if !finite(b.Mass, b.Inertia, b.Restitution, b.LinearDamping, b.AngularDamping, b.AngularVelocity) ||
		!b.Velocity.IsFinite() {
		return fmt.Errorf("%w: body values must be finite", ErrInvalidScene)
	}
	if b.Mass < 0 || b.Inertia < 0 {
		return fmt.Errorf("%w: mass and inertia must be >= 0", ErrInvalidScene)
	}
	if b.Restitution < 0 || b.Restitution > 1 {
		return fmt.Errorf("%w: restitution must be within [0,1], got %v", ErrInvalidScene, b.Restitution)
	}
	if b.LinearDamping < 0 || b.AngularDamping < 0 {
		return fmt.Errorf("%w: damping must be >= 0", ErrInvalidScene)
	}
	if b.GravityScale != nil && !finite(*b.GravityScale) {
		return fmt.Errorf("%w: gravity scale must be finite", ErrInvalidScene)
	}
	return nil
}
