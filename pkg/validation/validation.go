// Package validation checks simulation configs before a scene is built
// from them.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-physics2d/pkg/config"
	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// Limits on config contents
const (
	MaxBodyNameLen = 32
	MaxBodies      = 4096
)

var validBodyNameChars = regexp.MustCompile(`^[a-zA-Z0-9\-_.]+$`)

// FieldError reports one invalid config field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateBodyName validates a body name and returns it trimmed
func ValidateBodyName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("body name cannot be empty")
	}

	if len(name) > MaxBodyNameLen {
		return "", fmt.Errorf("body name too long: %d characters (max %d)", len(name), MaxBodyNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("body name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("body name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("body name contains control characters")
		}
	}

	if !validBodyNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("body name contains invalid characters (only alphanumeric, hyphens, underscores and dots allowed)")
	}

	return trimmed, nil
}

// validator collects field errors for one config.
type validator struct {
	errs []error
}

func (v *validator) add(field, format string, args ...any) {
	v.errs = append(v.errs, &FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) finite(field string, values ...float64) bool {
	for _, f := range values {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			v.add(field, "must be finite")
			return false
		}
	}
	return true
}

func (v *validator) positive(field string, values ...float64) {
	if !v.finite(field, values...) {
		return
	}
	for _, f := range values {
		if f <= 0 {
			v.add(field, "must be positive, got %g", f)
			return
		}
	}
}

// ValidateConfig checks every field of cfg. All problems are reported
// together; each joined error is a *FieldError.
func ValidateConfig(cfg *config.Config) error {
	if cfg == nil {
		return &FieldError{Field: "config", Message: "is nil"}
	}

	v := &validator{}
	v.physics(cfg.Physics)

	folded := make(map[string]string, len(cfg.Materials))
	for _, name := range cfg.MaterialNames() {
		field := "materials." + name
		v.material(field, cfg.Materials[name])
		key := strings.ToLower(name)
		if first, dup := folded[key]; dup {
			v.add(field, "differs from material %q only in case", first)
			continue
		}
		folded[key] = name
	}

	if b := cfg.Scene.Bounds; b != nil {
		v.finite("scene.bounds.center", b.Center.X, b.Center.Y)
		v.positive("scene.bounds.half_size", b.HalfSize.X, b.HalfSize.Y)
		v.positive("scene.bounds.thickness", b.Thickness)
	}

	if len(cfg.Scene.Bodies) > MaxBodies {
		v.add("scene.bodies", "too many bodies: %d (max %d)", len(cfg.Scene.Bodies), MaxBodies)
	}
	seen := make(map[string]int, len(cfg.Scene.Bodies))
	for i, body := range cfg.Scene.Bodies {
		v.body(cfg, fmt.Sprintf("scene.bodies[%d]", i), body)
		if prev, ok := seen[body.Name]; ok && body.Name != "" {
			v.add(fmt.Sprintf("scene.bodies[%d].name", i), "duplicate of scene.bodies[%d]", prev)
			continue
		}
		seen[body.Name] = i
	}

	return errors.Join(v.errs...)
}

func (v *validator) physics(p config.PhysicsConfig) {
	v.finite("physics.gravity", p.Gravity.X, p.Gravity.Y)
	v.positive("physics.fixed_time_step", p.FixedTimeStep)
	if v.finite("physics.min_frame_rate", p.MinFrameRate) && p.MinFrameRate < 0 {
		v.add("physics.min_frame_rate", "cannot be negative, got %g", p.MinFrameRate)
	}
	v.positive("physics.default_density", p.DefaultDensity)
	if p.QuadTreeCapacity < 1 {
		v.add("physics.quad_tree_capacity", "must be at least 1, got %d", p.QuadTreeCapacity)
	}
}

func (v *validator) material(field string, m physics.Material) {
	if !v.finite(field, m.Restitution, m.StaticFriction, m.DynamicFriction) {
		return
	}
	if m.Restitution < 0 || m.Restitution > 1 {
		v.add(field+".restitution", "must be within [0, 1], got %g", m.Restitution)
	}
	if m.StaticFriction < 0 {
		v.add(field+".static_friction", "cannot be negative, got %g", m.StaticFriction)
	}
	if m.DynamicFriction < 0 {
		v.add(field+".dynamic_friction", "cannot be negative, got %g", m.DynamicFriction)
	}
}

func (v *validator) body(cfg *config.Config, field string, b config.BodyConfig) {
	if _, err := ValidateBodyName(b.Name); err != nil {
		v.add(field+".name", "%v", err)
	}

	v.finite(field+".center", b.Center.X, b.Center.Y)
	v.finite(field+".rotation", b.Rotation)
	v.positive(field+".half_extents", b.HalfExtents.X, b.HalfExtents.Y)
	v.finite(field+".velocity", b.Velocity.X, b.Velocity.Y, b.AngularVelocity)

	if v.finite(field+".density", b.Density) && b.Density < 0 {
		v.add(field+".density", "cannot be negative, got %g", b.Density)
	}
	if b.GravityFactor != nil {
		v.finite(field+".gravity_factor", *b.GravityFactor)
	}

	if _, ok := cfg.Material(b.Material); !ok {
		v.add(field+".material", "unknown material %q", b.Material)
	}

	if b.Static && b.Kinematic {
		v.add(field, "cannot be both static and kinematic")
	}
	if b.Static && (b.Velocity != (physics.Vector2D{}) || b.AngularVelocity != 0) {
		v.add(field+".velocity", "static bodies cannot move")
	}
}

// ValidateBody checks a single body against cfg, for bodies spawned
// after the scene was built.
func ValidateBody(cfg *config.Config, body config.BodyConfig) error {
	if cfg == nil {
		return &FieldError{Field: "config", Message: "is nil"}
	}
	v := &validator{}
	v.body(cfg, "body", body)
	return errors.Join(v.errs...)
}
