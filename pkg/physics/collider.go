// pkg/physics/collider.go
package physics

import "strings"

// ColliderFlags configures how a collider takes part in the simulation.
type ColliderFlags uint32

const (
	// FlagNoMove marks an immovable body with infinite mass.
	FlagNoMove ColliderFlags = 1 << iota
	// FlagNoVelocityChanges marks a body that ignores impulses.
	FlagNoVelocityChanges
	// FlagKinematic marks a body that moves by its own velocity but is
	// unaffected by impulses from other bodies.
	FlagKinematic
	// FlagContinuous requests continuous collision detection. Carried as
	// data only.
	FlagContinuous
	// FlagImageMask requests an image derived mask. Carried as data only.
	FlagImageMask
	// FlagInternal marks colliders owned by scene helpers for cleanup.
	FlagInternal
)

var flagNames = []struct {
	flag ColliderFlags
	name string
}{
	{FlagNoMove, "no_move"},
	{FlagNoVelocityChanges, "no_velocity_changes"},
	{FlagKinematic, "kinematic"},
	{FlagContinuous, "continuous"},
	{FlagImageMask, "image_mask"},
	{FlagInternal, "internal"},
}

func (f ColliderFlags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Collider is the physical description of a body: a shape, behaviour
// flags and dynamics coefficients. InvMass and InvInertia of zero encode
// infinite mass and inertia.
type Collider struct {
	Shape           Shape
	Flags           ColliderFlags
	Restitution     float64
	InvMass         float64
	InvInertia      float64
	StaticFriction  float64
	DynamicFriction float64
	GravityFactor   float64
}

// NewRectangleCollider creates a rectangle collider with the given
// material. The collider has infinite mass until RecalculateMass is
// called.
func NewRectangleCollider(halfExtents Vector2D, material Material, flags ColliderFlags) Collider {
	c := Collider{
		Shape:         Rectangle{HalfExtents: halfExtents},
		Flags:         flags,
		GravityFactor: 1,
	}
	c.SetMaterial(material)
	return c
}

// SetMaterial copies the material coefficients into the collider.
func (c *Collider) SetMaterial(m Material) {
	c.Restitution = m.Restitution
	c.StaticFriction = m.StaticFriction
	c.DynamicFriction = m.DynamicFriction
}

// Material returns the collider surface coefficients.
func (c Collider) Material() Material {
	return Material{
		Restitution:     c.Restitution,
		StaticFriction:  c.StaticFriction,
		DynamicFriction: c.DynamicFriction,
	}
}

// Has reports whether all bits of flag are set.
func (c Collider) Has(flag ColliderFlags) bool {
	return c.Flags&flag == flag
}

// ShapeKind returns the kind of the active shape.
func (c Collider) ShapeKind() ShapeKind {
	if c.Shape == nil {
		return ShapeNone
	}
	return c.Shape.Kind()
}

// IsStatic reports whether the solver treats the body as immovable.
func (c Collider) IsStatic() bool {
	return c.InvMass == 0 || c.Has(FlagNoMove) || c.Has(FlagNoVelocityChanges)
}

// IsKinematic reports whether the body moves without impulse response.
func (c Collider) IsKinematic() bool {
	return c.Has(FlagKinematic)
}

// storedAsStatic reports whether the engine keeps the body in the
// static table. Kinematic bodies always move.
func (c Collider) storedAsStatic() bool {
	return !c.IsKinematic() && c.IsStatic()
}

// RecalculateMass derives inverse mass and inverse inertia from density.
// Only rectangles are supported.
func (c *Collider) RecalculateMass(density float64) {
	rect, ok := c.Shape.(Rectangle)
	if !ok {
		fatalf(ErrUnsupportedShape, "recalculate mass for %s collider", c.ShapeKind())
	}
	w, h := rect.HalfExtents.X, rect.HalfExtents.Y
	c.InvMass = 1 / (density * w * h)
	c.InvInertia = c.InvMass * 12 / (w*w + h*h)
}

// PointsWorldSpace returns the collider outline placed at pos.
func (c Collider) PointsWorldSpace(pos Position) WorldPolygon {
	if c.Shape == nil {
		fatalf(ErrUnsupportedShape, "collider has no shape")
	}
	return c.Shape.PointsWorldSpace(pos)
}
