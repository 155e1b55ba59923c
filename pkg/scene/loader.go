// pkg/scene/loader.go
package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-rigid2d/pkg/config"
	"github.com/opd-ai/go-rigid2d/pkg/dynamics"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// File is a scene description. Angles are in radians.
type File struct {
	// Physics is always set once parsed
	Physics *config.PhysicsConfig `json:"physics,omitempty" yaml:"physics,omitempty"`
	Nodes   []NodeSpec            `json:"nodes" yaml:"nodes"`
	Scatter *ScatterSpec          `json:"scatter,omitempty" yaml:"scatter,omitempty"`
}

// NodeSpec describes one node. Parent names a node declared earlier.
type NodeSpec struct {
	Name     string            `json:"name" yaml:"name"`
	Parent   string            `json:"parent,omitempty" yaml:"parent,omitempty"`
	Position physics.Vector2D  `json:"position" yaml:"position"`
	Rotation float64           `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale    *physics.Vector2D `json:"scale,omitempty" yaml:"scale,omitempty"`
	Disabled bool              `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Shape    *ShapeSpec        `json:"shape,omitempty" yaml:"shape,omitempty"`
	Body     *BodySpec         `json:"body,omitempty" yaml:"body,omitempty"`
}

// ShapeSpec describes a collider
type ShapeSpec struct {
	Type            string           `json:"type" yaml:"type"`
	Radius          float64          `json:"radius,omitempty" yaml:"radius,omitempty"`
	Width           float64          `json:"width,omitempty" yaml:"width,omitempty"`
	Height          float64          `json:"height,omitempty" yaml:"height,omitempty"`
	Offset          physics.Vector2D `json:"offset,omitempty" yaml:"offset,omitempty"`
	InheritRotation *bool            `json:"inheritRotation,omitempty" yaml:"inheritRotation,omitempty"`
	LocalAngle      float64          `json:"localAngle,omitempty" yaml:"localAngle,omitempty"`
	Trigger         bool             `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Layer           uint32           `json:"layer,omitempty" yaml:"layer,omitempty"`
	Mask            uint32           `json:"mask,omitempty" yaml:"mask,omitempty"`
}

// BodySpec describes a rigid body. Zero mass and inertia keep the defaults;
// a zero inertia is derived from the shape.
type BodySpec struct {
	Type            string           `json:"type" yaml:"type"`
	Mass            float64          `json:"mass,omitempty" yaml:"mass,omitempty"`
	Inertia         float64          `json:"inertia,omitempty" yaml:"inertia,omitempty"`
	Restitution     float64          `json:"restitution,omitempty" yaml:"restitution,omitempty"`
	LinearDamping   float64          `json:"linearDamping,omitempty" yaml:"linearDamping,omitempty"`
	AngularDamping  float64          `json:"angularDamping,omitempty" yaml:"angularDamping,omitempty"`
	GravityScale    *float64         `json:"gravityScale,omitempty" yaml:"gravityScale,omitempty"`
	Velocity        physics.Vector2D `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	AngularVelocity float64          `json:"angularVelocity,omitempty" yaml:"angularVelocity,omitempty"`
	Continuous      bool             `json:"continuous,omitempty" yaml:"continuous,omitempty"`
	Freeze          []string         `json:"freeze,omitempty" yaml:"freeze,omitempty"`
}

// LoadFile reads a JSON or YAML scene file, chosen by extension
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	if len(data) > MaxSceneFileSize {
		return nil, fmt.Errorf("%w: scene file too large: %d bytes (max %d)", ErrInvalidScene, len(data), MaxSceneFileSize)
	}

	ext := strings.ToLower(filepath.Ext(path))
	f, err := ParseFile(data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes and validates a scene description. Physics fields the
// file leaves out keep their defaults.
func ParseFile(data []byte, isYAML bool) (*File, error) {
	defaults := config.DefaultPhysicsConfig()
	f := File{Physics: &defaults}
	var err error
	if isYAML {
		err = yaml.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if f.Physics == nil {
		f.Physics = &defaults
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// BuildShape converts the shape description into a shape
func (s *ShapeSpec) BuildShape() (physics.Shape, error) {
	var shape physics.Shape
	switch strings.ToLower(s.Type) {
	case "circle":
		shape = physics.NewCircle(s.Radius)
	case "box":
		shape = physics.NewBox(s.Width/2, s.Height/2)
	default:
		return physics.Shape{}, fmt.Errorf("%w: unknown shape type %q", ErrInvalidScene, s.Type)
	}
	shape.Offset = s.Offset
	if s.InheritRotation != nil {
		shape.InheritRotation = *s.InheritRotation
	}
	shape.LocalAngle = s.LocalAngle
	return shape, nil
}

// BodyKind parses the body type
func (b *BodySpec) BodyKind() (dynamics.BodyKind, error) {
	switch strings.ToLower(b.Type) {
	case "", "dynamic":
		return dynamics.Dynamic, nil
	case "static":
		return dynamics.Static, nil
	case "kinematic":
		return dynamics.Kinematic, nil
	default:
		return 0, fmt.Errorf("%w: unknown body type %q", ErrInvalidScene, b.Type)
	}
}

func parseFreeze(names []string) (dynamics.Constraints, error) {
	var c dynamics.Constraints
	for _, name := range names {
		switch strings.ToLower(name) {
		case "x":
			c |= dynamics.FreezePositionX
		case "y":
			c |= dynamics.FreezePositionY
		case "position":
			c |= dynamics.FreezePosition
		case "rotation":
			c |= dynamics.FreezeRotation
		case "all":
			c |= dynamics.FreezeAll
		default:
			return 0, fmt.Errorf("%w: unknown freeze flag %q", ErrInvalidScene, name)
		}
	}
	return c, nil
}

// Build creates and spawns a node for every spec, in order. Nodes join the
// simulation at the next tick.
func (s *Scene) Build(specs []NodeSpec) ([]*Node, error) {
	built := make(map[string]*Node, len(specs))
	out := make([]*Node, 0, len(specs))

	for i := range specs {
		spec := &specs[i]
		n, err := s.buildNode(spec, built)
		if err != nil {
			return out, fmt.Errorf("failed to build node %d (%s): %w", i, spec.Name, err)
		}
		if spec.Name != "" {
			built[spec.Name] = n
		}
		s.Spawn(n)
		out = append(out, n)
	}
	return out, nil
}

func (s *Scene) buildNode(spec *NodeSpec, built map[string]*Node) (*Node, error) {
	var parent *Node
	if spec.Parent != "" {
		p, ok := built[spec.Parent]
		if !ok {
			if p, ok = s.Find(spec.Parent); !ok {
				return nil, fmt.Errorf("%w: unknown parent %q", ErrInvalidScene, spec.Parent)
			}
		}
		parent = p
	}

	pose := physics.IdentityPose()
	pose.Position = spec.Position
	pose.Rotation = spec.Rotation
	if spec.Scale != nil {
		pose.Scale = *spec.Scale
	}

	n, err := s.NewNode(spec.Name, parent, pose)
	if err != nil {
		return nil, err
	}
	if spec.Disabled {
		n.enabled = false
	}

	if spec.Shape != nil {
		shape, err := spec.Shape.BuildShape()
		if err != nil {
			return nil, err
		}
		c := n.AttachShape(shape)
		c.Trigger = spec.Shape.Trigger
		if spec.Shape.Layer != 0 {
			c.Layer = spec.Shape.Layer
		}
		if spec.Shape.Mask != 0 {
			c.Mask = spec.Shape.Mask
		}
	}

	if spec.Body != nil {
		if err := applyBody(n, spec.Body); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func applyBody(n *Node, spec *BodySpec) error {
	kind, err := spec.BodyKind()
	if err != nil {
		return err
	}
	freeze, err := parseFreeze(spec.Freeze)
	if err != nil {
		return err
	}

	b := n.AttachBody(kind)
	if spec.Mass > 0 {
		b.SetMass(spec.Mass)
	}
	if spec.Inertia > 0 {
		b.SetInertia(spec.Inertia)
	}
	b.SetRestitution(spec.Restitution)
	b.SetLinearDamping(spec.LinearDamping)
	b.SetAngularDamping(spec.AngularDamping)
	if spec.GravityScale != nil {
		b.GravityScale = *spec.GravityScale
	}
	b.Constraints = freeze
	if spec.Continuous {
		b.Detection = dynamics.Continuous
	}
	if kind != dynamics.Static {
		b.Velocity = spec.Velocity
		b.AngularVelocity = spec.AngularVelocity
	}
	return nil
}

// Load builds every node of f, scattered nodes included, using the scene's
// own scatter seed.
func (s *Scene) Load(f *File) ([]*Node, error) {
	specs := f.Nodes
	if f.Scatter != nil {
		specs = append(append([]NodeSpec(nil), specs...), f.Scatter.Generate()...)
	}
	return s.Build(specs)
}
