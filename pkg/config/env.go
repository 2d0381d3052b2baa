// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnvironmentOverrides.
const (
	EnvGravityX       = "PHYSICS2D_GRAVITY_X"
	EnvGravityY       = "PHYSICS2D_GRAVITY_Y"
	EnvFixedTimeStep  = "PHYSICS2D_FIXED_TIMESTEP"
	EnvMinFrameRate   = "PHYSICS2D_MIN_FRAMERATE"
	EnvDefaultDensity = "PHYSICS2D_DEFAULT_DENSITY"
)

// ApplyEnvironmentOverrides replaces physics settings with the values of
// any PHYSICS2D_* variables that are set. A variable that does not parse
// is an error and leaves config unchanged.
func ApplyEnvironmentOverrides(config *Config) error {
	updated := config.Physics

	overrides := []struct {
		key    string
		target *float64
	}{
		{EnvGravityX, &updated.Gravity.X},
		{EnvGravityY, &updated.Gravity.Y},
		{EnvFixedTimeStep, &updated.FixedTimeStep},
		{EnvMinFrameRate, &updated.MinFrameRate},
		{EnvDefaultDensity, &updated.DefaultDensity},
	}

	for _, o := range overrides {
		value, ok, err := lookupFloat(o.key)
		if err != nil {
			return err
		}
		if ok {
			*o.target = value
		}
	}

	config.Physics = updated
	return nil
}

func lookupFloat(key string) (float64, bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, true, nil
}
