// pkg/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opd-ai/go-physics2d/pkg/physics"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Physics.FixedTimeStep != 1.0/60.0 {
		t.Errorf("Expected FixedTimeStep 1/60, got %f", config.Physics.FixedTimeStep)
	}
	if config.Physics.MaxTimeStep() != 0.05 {
		t.Errorf("Expected MaxTimeStep 0.05, got %f", config.Physics.MaxTimeStep())
	}
	if config.Physics.DefaultDensity != 1 {
		t.Errorf("Expected DefaultDensity 1, got %f", config.Physics.DefaultDensity)
	}
	if config.Scene.Bounds == nil {
		t.Fatal("Expected default scene bounds")
	}
	if len(config.Scene.Bodies) == 0 {
		t.Fatal("Expected default scene bodies")
	}
	for _, body := range config.Scene.Bodies {
		if _, ok := config.Material(body.Material); !ok {
			t.Errorf("body %q uses unknown material %q", body.Name, body.Material)
		}
	}
}

func TestPhysicsConfig_MaxTimeStep(t *testing.T) {
	tests := []struct {
		name     string
		config   PhysicsConfig
		expected float64
	}{
		{"min_frame_rate", PhysicsConfig{FixedTimeStep: 0.01, MinFrameRate: 10}, 0.1},
		{"no_min_frame_rate", PhysicsConfig{FixedTimeStep: 0.01}, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.MaxTimeStep(); got != tt.expected {
				t.Errorf("MaxTimeStep() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_Material(t *testing.T) {
	config := &Config{
		Materials: map[string]physics.Material{
			"Rubber": {Restitution: 0.6},
			"ice":    {Restitution: 0.5},
		},
	}

	tests := []struct {
		name     string
		material string
		expected physics.Material
		found    bool
	}{
		{"empty_is_default", "", physics.MaterialDefault, true},
		{"custom_case_insensitive", "rubber", physics.Material{Restitution: 0.6}, true},
		{"custom_overrides_preset", "ICE", physics.Material{Restitution: 0.5}, true},
		{"preset", "rock", physics.MaterialRock, true},
		{"unknown", "plasma", physics.Material{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := config.Material(tt.material)
			if ok != tt.found || got != tt.expected {
				t.Errorf("Material(%q) = %+v, %v, want %+v, %v", tt.material, got, ok, tt.expected, tt.found)
			}
		})
	}
}

func TestConfig_MaterialCaseCollision(t *testing.T) {
	config := &Config{
		Materials: map[string]physics.Material{
			"rubber": {Restitution: 0.7},
			"Rubber": {Restitution: 0.6},
		},
	}

	tests := []struct {
		name     string
		material string
		expected float64
	}{
		{"exact_lower", "rubber", 0.7},
		{"exact_title", "Rubber", 0.6},
		{"folded_takes_first_sorted", "RUBBER", 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				got, ok := config.Material(tt.material)
				if !ok || got.Restitution != tt.expected {
					t.Fatalf("Material(%q) = %+v, %v, want restitution %v", tt.material, got, ok, tt.expected)
				}
			}
		})
	}

	names := config.MaterialNames()
	if len(names) != 2 || names[0] != "Rubber" || names[1] != "rubber" {
		t.Errorf("MaterialNames() = %v, want [Rubber rubber]", names)
	}
}

func TestLoadConfig_Formats(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
	}{
		{
			name: "json",
			file: "scene.json",
			contents: `{
  "physics": {"gravity": {"x": 0, "y": -5}},
  "materials": {"felt": {"restitution": 0, "staticFriction": 0.8, "dynamicFriction": 0.6}},
  "scene": {
    "bounds": {"center": {"x": 0, "y": 0}, "halfSize": {"x": 10, "y": 10}, "thickness": 1},
    "bodies": [
      {"name": "box", "center": {"x": 1, "y": 2}, "halfExtents": {"x": 0.5, "y": 0.5}, "material": "felt", "gravityFactor": 0.5},
      {"name": "floor", "center": {"x": 0, "y": -5}, "halfExtents": {"x": 8, "y": 1}, "static": true}
    ]
  }
}`,
		},
		{
			name: "yaml",
			file: "scene.yaml",
			contents: `physics:
  gravity: {x: 0, y: -5}
materials:
  felt: {restitution: 0, static_friction: 0.8, dynamic_friction: 0.6}
scene:
  bounds:
    center: {x: 0, y: 0}
    half_size: {x: 10, y: 10}
    thickness: 1
  bodies:
    - name: box
      center: {x: 1, y: 2}
      half_extents: {x: 0.5, y: 0.5}
      material: felt
      gravity_factor: 0.5
    - name: floor
      center: {x: 0, y: -5}
      half_extents: {x: 8, y: 1}
      static: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			if config.Physics.Gravity != (physics.Vector2D{Y: -5}) {
				t.Errorf("Expected gravity (0, -5), got %v", config.Physics.Gravity)
			}
			if config.Physics.FixedTimeStep != 1.0/60.0 || config.Physics.MinFrameRate != 20 {
				t.Errorf("Expected omitted physics settings to keep defaults, got %+v", config.Physics)
			}
			if m, ok := config.Material("felt"); !ok || m.StaticFriction != 0.8 {
				t.Errorf("Expected felt material, got %+v, %v", m, ok)
			}
			if config.Scene.Bounds == nil || config.Scene.Bounds.HalfSize != (physics.Vector2D{X: 10, Y: 10}) {
				t.Errorf("Expected bounds half size (10, 10), got %+v", config.Scene.Bounds)
			}
			if len(config.Scene.Bodies) != 2 {
				t.Fatalf("Expected 2 bodies, got %d", len(config.Scene.Bodies))
			}

			box, floor := config.Scene.Bodies[0], config.Scene.Bodies[1]
			if box.Name != "box" || box.Center != (physics.Vector2D{X: 1, Y: 2}) || box.HalfExtents.X != 0.5 {
				t.Errorf("Unexpected box %+v", box)
			}
			if box.GravityFactor == nil || *box.GravityFactor != 0.5 {
				t.Errorf("Expected gravity factor 0.5, got %v", box.GravityFactor)
			}
			if !floor.Static || floor.GravityFactor != nil {
				t.Errorf("Unexpected floor %+v", floor)
			}
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))

	if err == nil {
		t.Fatal("Expected error when loading non-existent file, got nil")
	}
	if config != nil {
		t.Error("Expected nil config when file not found, got non-nil")
	}
	if !strings.Contains(err.Error(), "failed to open config file") {
		t.Errorf("Unexpected error %q", err.Error())
	}
}

func TestLoadConfig_InvalidContents(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
	}{
		{"json", "bad.json", `{"physics": {"gravity": invalid}}`},
		{"yaml", "bad.yml", "physics: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			config, err := LoadConfig(path)
			if err == nil {
				t.Fatal("Expected parse error, got nil")
			}
			if config != nil {
				t.Error("Expected nil config on parse error")
			}
			if !strings.Contains(err.Error(), "failed to parse config file") {
				t.Errorf("Unexpected error %q", err.Error())
			}
		})
	}
}

func TestSaveConfig_RoundTripsDefault(t *testing.T) {
	for _, file := range []string{"out.json", "out.yaml"} {
		t.Run(file, func(t *testing.T) {
			original := DefaultConfig()
			path := filepath.Join(t.TempDir(), file)

			if err := SaveConfig(original, path); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("Failed to load saved config: %v", err)
			}

			if loaded.Physics != original.Physics {
				t.Errorf("Physics = %+v, want %+v", loaded.Physics, original.Physics)
			}
			if len(loaded.Scene.Bodies) != len(original.Scene.Bodies) {
				t.Fatalf("Expected %d bodies, got %d", len(original.Scene.Bodies), len(loaded.Scene.Bodies))
			}
			for i := range original.Scene.Bodies {
				if loaded.Scene.Bodies[i].Name != original.Scene.Bodies[i].Name {
					t.Errorf("body %d = %q, want %q", i, loaded.Scene.Bodies[i].Name, original.Scene.Bodies[i].Name)
				}
			}
			if *loaded.Scene.Bounds != *original.Scene.Bounds {
				t.Errorf("Bounds = %+v, want %+v", loaded.Scene.Bounds, original.Scene.Bounds)
			}
		})
	}
}

func TestSaveConfig_Errors(t *testing.T) {
	if err := SaveConfig(nil, filepath.Join(t.TempDir(), "nil.json")); err == nil {
		t.Error("Expected error when saving nil config")
	}

	err := SaveConfig(DefaultConfig(), filepath.Join(t.TempDir(), "missing", "dir", "config.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to write config file") {
		t.Errorf("Expected write error, got %v", err)
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Run("overrides_applied", func(t *testing.T) {
		t.Setenv(EnvGravityX, "1.5")
		t.Setenv(EnvGravityY, "-20")
		t.Setenv(EnvFixedTimeStep, "0.01")
		t.Setenv(EnvMinFrameRate, "30")
		t.Setenv(EnvDefaultDensity, " 2.5 ")

		config := DefaultConfig()
		if err := ApplyEnvironmentOverrides(config); err != nil {
			t.Fatalf("ApplyEnvironmentOverrides failed: %v", err)
		}

		expected := PhysicsConfig{
			Gravity:          physics.Vector2D{X: 1.5, Y: -20},
			FixedTimeStep:    0.01,
			MinFrameRate:     30,
			DefaultDensity:   2.5,
			QuadTreeCapacity: 8,
		}
		if config.Physics != expected {
			t.Errorf("Physics = %+v, want %+v", config.Physics, expected)
		}
	})

	t.Run("unset_keeps_values", func(t *testing.T) {
		t.Setenv(EnvGravityY, "")
		config := DefaultConfig()
		before := config.Physics

		if err := ApplyEnvironmentOverrides(config); err != nil {
			t.Fatalf("ApplyEnvironmentOverrides failed: %v", err)
		}
		if config.Physics != before {
			t.Errorf("Physics changed to %+v", config.Physics)
		}
	})

	t.Run("invalid_value_rejected", func(t *testing.T) {
		t.Setenv(EnvGravityX, "3")
		t.Setenv(EnvMinFrameRate, "fast")
		config := DefaultConfig()
		before := config.Physics

		err := ApplyEnvironmentOverrides(config)
		if err == nil || !strings.Contains(err.Error(), EnvMinFrameRate) {
			t.Fatalf("Expected error naming %s, got %v", EnvMinFrameRate, err)
		}
		if config.Physics != before {
			t.Errorf("Physics partially updated to %+v", config.Physics)
		}
	})
}
