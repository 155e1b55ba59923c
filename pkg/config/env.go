// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by LoadConfigFromEnv
const (
	EnvGravityX           = "RIGID2D_GRAVITY_X"
	EnvGravityY           = "RIGID2D_GRAVITY_Y"
	EnvPenetrationSlop    = "RIGID2D_PENETRATION_SLOP"
	EnvPenetrationPercent = "RIGID2D_PENETRATION_PERCENT"
	EnvMaxSubsteps        = "RIGID2D_MAX_SUBSTEPS"
	EnvCCDMinSizeFactor   = "RIGID2D_CCD_MIN_SIZE_FACTOR"
	EnvVelocityIterations = "RIGID2D_VELOCITY_ITERATIONS"
	EnvFixedTimestep      = "RIGID2D_FIXED_TIMESTEP"
)

// LoadConfigFromEnv applies environment overrides on top of base. A nil base
// starts from DefaultConfig. base itself is not modified.
func LoadConfigFromEnv(base *Config) (*Config, error) {
	config := DefaultConfig()
	if base != nil {
		c := *base
		config = &c
	}
	p := &config.Physics

	var err error
	if p.Gravity.X, err = getEnvFloat(EnvGravityX, p.Gravity.X); err != nil {
		return nil, err
	}
	if p.Gravity.Y, err = getEnvFloat(EnvGravityY, p.Gravity.Y); err != nil {
		return nil, err
	}
	if p.PenetrationSlop, err = getEnvFloat(EnvPenetrationSlop, p.PenetrationSlop); err != nil {
		return nil, err
	}
	if p.PenetrationPercent, err = getEnvFloat(EnvPenetrationPercent, p.PenetrationPercent); err != nil {
		return nil, err
	}
	if p.CCDMinSizeFactor, err = getEnvFloat(EnvCCDMinSizeFactor, p.CCDMinSizeFactor); err != nil {
		return nil, err
	}
	if p.FixedTimestep, err = getEnvFloat(EnvFixedTimestep, p.FixedTimestep); err != nil {
		return nil, err
	}
	if p.MaxSubsteps, err = getEnvInt(EnvMaxSubsteps, p.MaxSubsteps); err != nil {
		return nil, err
	}
	if p.VelocityIterations, err = getEnvInt(EnvVelocityIterations, p.VelocityIterations); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("environment configuration validation failed: %w", err)
	}
	return config, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return f, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return n, nil
}
