// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid physics configuration")

// Config is the on-disk configuration file
type Config struct {
	Physics PhysicsConfig `json:"physics" yaml:"physics"`
}

// PhysicsConfig contains the tunables of a simulation
type PhysicsConfig struct {
	Gravity              physics.Vector2D `json:"gravity" yaml:"gravity"`
	PenetrationSlop      float64          `json:"penetrationSlop" yaml:"penetrationSlop"`
	PenetrationPercent   float64          `json:"penetrationPercent" yaml:"penetrationPercent"`
	MaxSubsteps          int              `json:"maxSubsteps" yaml:"maxSubsteps"`
	CCDMinSizeFactor     float64          `json:"ccdMinSizeFactor" yaml:"ccdMinSizeFactor"`
	VelocityIterations   int              `json:"velocityIterations" yaml:"velocityIterations"`
	BaumgarteFactor      float64          `json:"baumgarteFactor" yaml:"baumgarteFactor"`
	RestitutionThreshold float64          `json:"restitutionThreshold" yaml:"restitutionThreshold"`
	SATTieEpsilon        float64          `json:"satTieEpsilon" yaml:"satTieEpsilon"`
	FixedTimestep        float64          `json:"fixedTimestep" yaml:"fixedTimestep"`
}

// DefaultPhysicsConfig returns the stock tuning. Gravity points down the
// screen (+Y).
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Gravity:              physics.Vector2D{X: 0, Y: 9.81},
		PenetrationSlop:      0.01,
		PenetrationPercent:   0.8,
		MaxSubsteps:          8,
		CCDMinSizeFactor:     0.5,
		VelocityIterations:   8,
		BaumgarteFactor:      0.10,
		RestitutionThreshold: 0.5,
		SATTieEpsilon:        physics.DefaultTieEpsilon,
		FixedTimestep:        1.0 / 60.0,
	}
}

// DefaultConfig returns a default configuration file
func DefaultConfig() *Config {
	return &Config{Physics: DefaultPhysicsConfig()}
}

// SetMaxSubsteps sets the substep ceiling, never below one
func (c *PhysicsConfig) SetMaxSubsteps(n int) {
	if n < 1 {
		n = 1
	}
	c.MaxSubsteps = n
}

// SetCCDMinSizeFactor sets the continuous detection size factor, never below zero
func (c *PhysicsConfig) SetCCDMinSizeFactor(f float64) {
	if f < 0 || math.IsNaN(f) {
		f = 0
	}
	c.CCDMinSizeFactor = f
}

// Validate checks that every field is usable by a simulation
func (c *PhysicsConfig) Validate() error {
	if !c.Gravity.IsFinite() {
		return fmt.Errorf("%w: gravity must be finite, got %v", ErrInvalidConfig, c.Gravity)
	}
	if !finite(c.PenetrationSlop) || c.PenetrationSlop < 0 {
		return fmt.Errorf("%w: penetrationSlop must be >= 0, got %v", ErrInvalidConfig, c.PenetrationSlop)
	}
	if !finite(c.PenetrationPercent) || c.PenetrationPercent < 0 || c.PenetrationPercent > 1 {
		return fmt.Errorf("%w: penetrationPercent must be within [0,1], got %v", ErrInvalidConfig, c.PenetrationPercent)
	}
	if c.MaxSubsteps < 1 {
		return fmt.Errorf("%w: maxSubsteps must be >= 1, got %d", ErrInvalidConfig, c.MaxSubsteps)
	}
	if !finite(c.CCDMinSizeFactor) || c.CCDMinSizeFactor < 0 {
		return fmt.Errorf("%w: ccdMinSizeFactor must be >= 0, got %v", ErrInvalidConfig, c.CCDMinSizeFactor)
	}
	if c.VelocityIterations < 1 {
		return fmt.Errorf("%w: velocityIterations must be >= 1, got %d", ErrInvalidConfig, c.VelocityIterations)
	}
	if !finite(c.BaumgarteFactor) || c.BaumgarteFactor < 0 {
		return fmt.Errorf("%w: baumgarteFactor must be >= 0, got %v", ErrInvalidConfig, c.BaumgarteFactor)
	}
	if !finite(c.RestitutionThreshold) || c.RestitutionThreshold < 0 {
		return fmt.Errorf("%w: restitutionThreshold must be >= 0, got %v", ErrInvalidConfig, c.RestitutionThreshold)
	}
	if !finite(c.SATTieEpsilon) || c.SATTieEpsilon < 0 {
		return fmt.Errorf("%w: satTieEpsilon must be >= 0, got %v", ErrInvalidConfig, c.SATTieEpsilon)
	}
	if !finite(c.FixedTimestep) || c.FixedTimestep <= 0 {
		return fmt.Errorf("%w: fixedTimestep must be > 0, got %v", ErrInvalidConfig, c.FixedTimestep)
	}
	return nil
}

// Validate checks the physics block
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	return c.Physics.Validate()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads a configuration from a JSON or YAML file, chosen by
// extension. Fields missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config file %s: %w", path, err)
	}
	return config, nil
}

// SaveConfig saves a configuration to a JSON or YAML file, chosen by extension
func SaveConfig(config *Config, path string) error {
	if config == nil {
		return fmt.Errorf("failed to marshal config: %w", ErrInvalidConfig)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
