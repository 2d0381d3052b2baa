// pkg/physics/aabb.go
package physics

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vector2D `json:"min" yaml:"min"`
	Max Vector2D `json:"max" yaml:"max"`
}

// NewAABB builds a box from its center and half-extents.
func NewAABB(center, halfExtents Vector2D) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// Center returns the midpoint of the box
func (b AABB) Center() Vector2D {
	return b.Min.Lerp(b.Max, 0.5)
}

// Size returns the width and height of the box
func (b AABB) Size() Vector2D {
	return b.Max.Sub(b.Min)
}

// Contains reports whether point lies in the box. The max edges are
// exclusive so that adjacent quadrants never both own a point.
func (b AABB) Contains(point Vector2D) bool {
	return point.X >= b.Min.X && point.X < b.Max.X &&
		point.Y >= b.Min.Y && point.Y < b.Max.Y
}

// Intersects reports whether the two boxes overlap or touch.
func (b AABB) Intersects(other AABB) bool {
	return !(other.Min.X > b.Max.X || other.Max.X < b.Min.X ||
		other.Min.Y > b.Max.Y || other.Max.Y < b.Min.Y)
}

// Extend grows the box to include point.
func (b AABB) Extend(point Vector2D) AABB {
	return AABB{
		Min: Vector2D{X: math.Min(b.Min.X, point.X), Y: math.Min(b.Min.Y, point.Y)},
		Max: Vector2D{X: math.Max(b.Max.X, point.X), Y: math.Max(b.Max.Y, point.Y)},
	}
}
