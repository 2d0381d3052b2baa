// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// Config contains configuration for a physics simulation
type Config struct {
	Physics   PhysicsConfig               `json:"physics" yaml:"physics"`
	Materials map[string]physics.Material `json:"materials,omitempty" yaml:"materials,omitempty"`
	Scene     SceneConfig                 `json:"scene" yaml:"scene"`
}

// PhysicsConfig contains engine-wide settings
type PhysicsConfig struct {
	Gravity          physics.Vector2D `json:"gravity" yaml:"gravity"`
	FixedTimeStep    float64          `json:"fixedTimeStep" yaml:"fixed_time_step"`
	MinFrameRate     float64          `json:"minFrameRate" yaml:"min_frame_rate"`
	DefaultDensity   float64          `json:"defaultDensity" yaml:"default_density"`
	QuadTreeCapacity int              `json:"quadTreeCapacity" yaml:"quad_tree_capacity"`
}

// MaxTimeStep is the largest dt a single frame may advance.
func (p PhysicsConfig) MaxTimeStep() float64 {
	if p.MinFrameRate <= 0 {
		return p.FixedTimeStep
	}
	return 1 / p.MinFrameRate
}

// SceneConfig describes the bodies spawned into a scene
type SceneConfig struct {
	Bounds *BoundsConfig `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Bodies []BodyConfig  `json:"bodies" yaml:"bodies"`
}

// BoundsConfig describes the static walls around a scene
type BoundsConfig struct {
	Center    physics.Vector2D `json:"center" yaml:"center"`
	HalfSize  physics.Vector2D `json:"halfSize" yaml:"half_size"`
	Thickness float64          `json:"thickness" yaml:"thickness"`
}

// BodyConfig describes one rectangular body
type BodyConfig struct {
	Name            string           `json:"name" yaml:"name"`
	Center          physics.Vector2D `json:"center" yaml:"center"`
	Rotation        float64          `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	HalfExtents     physics.Vector2D `json:"halfExtents" yaml:"half_extents"`
	Velocity        physics.Vector2D `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	AngularVelocity float64          `json:"angularVelocity,omitempty" yaml:"angular_velocity,omitempty"`
	Material        string           `json:"material,omitempty" yaml:"material,omitempty"`
	Density         float64          `json:"density,omitempty" yaml:"density,omitempty"`
	Static          bool             `json:"static,omitempty" yaml:"static,omitempty"`
	Kinematic       bool             `json:"kinematic,omitempty" yaml:"kinematic,omitempty"`
	GravityFactor   *float64         `json:"gravityFactor,omitempty" yaml:"gravity_factor,omitempty"`
}

// Material resolves a material name. Names from the config table take
// precedence over the built-in presets; the empty name is the default
// material. An exact key wins over keys differing only in case, which
// are otherwise tried in sorted order.
func (c *Config) Material(name string) (physics.Material, bool) {
	if name == "" {
		return physics.MaterialDefault, true
	}
	if m, ok := c.Materials[name]; ok {
		return m, true
	}
	for _, key := range c.MaterialNames() {
		if strings.EqualFold(key, name) {
			return c.Materials[key], true
		}
	}
	return physics.MaterialPreset(name)
}

// MaterialNames returns the keys of the material table in sorted order.
func (c *Config) MaterialNames() []string {
	names := make([]string, 0, len(c.Materials))
	for name := range c.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPhysicsConfig returns the engine defaults
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		FixedTimeStep:    1.0 / 60.0,
		MinFrameRate:     20,
		DefaultDensity:   1,
		QuadTreeCapacity: 8,
	}
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// LoadConfig loads a configuration from a file. Files ending in .yaml or
// .yml are parsed as YAML, anything else as JSON. Physics settings
// missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	config := &Config{Physics: DefaultPhysicsConfig()}
	switch formatFor(path) {
	case formatYAML:
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file, in the format chosen by
// its extension.
func SaveConfig(config *Config, path string) error {
	if config == nil {
		return fmt.Errorf("failed to marshal config: nil config")
	}

	var (
		data []byte
		err  error
	)
	switch formatFor(path) {
	case formatYAML:
		data, err = yaml.Marshal(config)
	default:
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

// DefaultConfig returns a small demonstration scene: a walled box with a
// static ramp, a sliding platform and two falling bodies.
func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			Gravity:          physics.Vector2D{X: 0, Y: -9.81},
			FixedTimeStep:    1.0 / 60.0,
			MinFrameRate:     20,
			DefaultDensity:   1,
			QuadTreeCapacity: 8,
		},
		Materials: map[string]physics.Material{
			"rubber": {Restitution: 0.6, StaticFriction: 0.9, DynamicFriction: 0.7},
		},
		Scene: SceneConfig{
			Bounds: &BoundsConfig{
				Center:    physics.Vector2D{X: 0, Y: 20},
				HalfSize:  physics.Vector2D{X: 40, Y: 20},
				Thickness: 2,
			},
			Bodies: []BodyConfig{
				{
					Name:        "ramp",
					Center:      physics.Vector2D{X: -15, Y: 8},
					Rotation:    -0.3,
					HalfExtents: physics.Vector2D{X: 12, Y: 1},
					Material:    "wood",
					Static:      true,
				},
				{
					Name:        "crate",
					Center:      physics.Vector2D{X: -18, Y: 25},
					HalfExtents: physics.Vector2D{X: 2, Y: 2},
					Material:    "wood",
				},
				{
					Name:        "ball",
					Center:      physics.Vector2D{X: 10, Y: 30},
					Rotation:    0.5,
					HalfExtents: physics.Vector2D{X: 1, Y: 1},
					Velocity:    physics.Vector2D{X: -4, Y: 0},
					Material:    "rubber",
				},
				{
					Name:        "platform",
					Center:      physics.Vector2D{X: 20, Y: 12},
					HalfExtents: physics.Vector2D{X: 5, Y: 0.5},
					Velocity:    physics.Vector2D{X: -2, Y: 0},
					Material:    "metal",
					Kinematic:   true,
				},
			},
		},
	}
}
