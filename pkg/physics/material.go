// pkg/physics/material.go
package physics

import (
	"math"
	"sort"
	"strings"
)

// Material holds the surface coefficients of a collider.
type Material struct {
	Restitution     float64 `json:"restitution" yaml:"restitution"`
	StaticFriction  float64 `json:"staticFriction" yaml:"static_friction"`
	DynamicFriction float64 `json:"dynamicFriction" yaml:"dynamic_friction"`
}

// Material presets.
var (
	MaterialDefault = Material{Restitution: 0.2, StaticFriction: 0.5, DynamicFriction: 0.3}
	MaterialRock    = Material{Restitution: 0.1, StaticFriction: 0.6, DynamicFriction: 0.4}
	MaterialWood    = Material{Restitution: 0.2, StaticFriction: 0.5, DynamicFriction: 0.3}
	MaterialMetal   = Material{Restitution: 0.05, StaticFriction: 0.4, DynamicFriction: 0.25}
	MaterialBouncy  = Material{Restitution: 0.9, StaticFriction: 0.3, DynamicFriction: 0.2}
	MaterialSticky  = Material{Restitution: 0, StaticFriction: 1, DynamicFriction: 0.9}
	MaterialIce     = Material{Restitution: 0.05, StaticFriction: 0.05, DynamicFriction: 0.02}
)

var materialPresets = map[string]Material{
	"default": MaterialDefault,
	"rock":    MaterialRock,
	"wood":    MaterialWood,
	"metal":   MaterialMetal,
	"bouncy":  MaterialBouncy,
	"sticky":  MaterialSticky,
	"ice":     MaterialIce,
}

// MaterialPreset looks up a preset by case-insensitive name.
func MaterialPreset(name string) (Material, bool) {
	m, ok := materialPresets[strings.ToLower(name)]
	return m, ok
}

// MaterialPresetNames returns the preset names in sorted order.
func MaterialPresetNames() []string {
	names := make([]string, 0, len(materialPresets))
	for name := range materialPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CombineRestitution returns the restitution of a contact pair.
func CombineRestitution(a, b float64) float64 {
	return math.Min(a, b)
}

// CombineFriction returns the friction coefficient of a contact pair.
func CombineFriction(a, b float64) float64 {
	return math.Sqrt(a * b)
}
