// pkg/physics/shape.go
package physics

import "math"

// ShapeKind discriminates the shape held by a collider.
type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeRectangle
	ShapePolygon
	ShapeCircle
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRectangle:
		return "rectangle"
	case ShapePolygon:
		return "polygon"
	case ShapeCircle:
		return "circle"
	default:
		return "none"
	}
}

// Shape is the geometry of a collider. Exactly one concrete shape is
// active per collider; its kind is the single source of truth for
// narrow-phase dispatch.
type Shape interface {
	Kind() ShapeKind
	// PointsWorldSpace returns the shape as a convex polygon placed at pos.
	PointsWorldSpace(pos Position) WorldPolygon
	// Bounds returns the axis-aligned box enclosing the shape at pos.
	Bounds(pos Position) AABB
}

// Rectangle is an oriented box described by its half-extents.
type Rectangle struct {
	HalfExtents Vector2D `json:"halfExtents" yaml:"half_extents"`
}

// Kind implements Shape.
func (r Rectangle) Kind() ShapeKind { return ShapeRectangle }

// PointsWorldSpace returns the four corners of the rectangle, rotated
// about its center, and the outward normal of each edge. Edge i runs
// from corner i-1 to corner i; corners are wound clockwise so the +90°
// rotation of an edge direction faces outward.
func (r Rectangle) PointsWorldSpace(pos Position) WorldPolygon {
	hw, hh := r.HalfExtents.X, r.HalfExtents.Y
	local := [4]Vector2D{
		{X: -hw, Y: -hh},
		{X: -hw, Y: hh},
		{X: hw, Y: hh},
		{X: hw, Y: -hh},
	}

	cos := math.Cos(pos.Rotation)
	sin := math.Sin(pos.Rotation)

	poly := WorldPolygon{
		Points:  make([]Vector2D, 4),
		Normals: make([]Vector2D, 4),
	}
	for i, p := range local {
		poly.Points[i] = Vector2D{
			X: pos.Point.X + p.X*cos - p.Y*sin,
			Y: pos.Point.Y + p.X*sin + p.Y*cos,
		}
	}
	for i := range poly.Points {
		poly.Normals[i] = poly.Points[i].Sub(poly.Points[prevIndex(i, 4)]).RotatedL().Normalize()
	}
	return poly
}

// Bounds implements Shape.
func (r Rectangle) Bounds(pos Position) AABB {
	return r.PointsWorldSpace(pos).Bounds()
}

// Polygon is a convex polygon in local space. Narrow phase support is
// not implemented; the type exists so scenes can carry the data.
type Polygon struct {
	Vertices []Vector2D `json:"vertices" yaml:"vertices"`
}

// Kind implements Shape.
func (p Polygon) Kind() ShapeKind { return ShapePolygon }

// PointsWorldSpace panics: polygon colliders have no world-space routine.
func (p Polygon) PointsWorldSpace(Position) WorldPolygon {
	fatalf(ErrNotImplemented, "polygon world-space points")
	return WorldPolygon{}
}

// Bounds panics for the same reason as PointsWorldSpace.
func (p Polygon) Bounds(Position) AABB {
	fatalf(ErrNotImplemented, "polygon bounds")
	return AABB{}
}

// Circle is a disc of the given radius around the body center.
type Circle struct {
	Radius float64 `json:"radius" yaml:"radius"`
}

// Kind implements Shape.
func (c Circle) Kind() ShapeKind { return ShapeCircle }

// PointsWorldSpace panics: circle colliders have no world-space routine.
func (c Circle) PointsWorldSpace(Position) WorldPolygon {
	fatalf(ErrNotImplemented, "circle world-space points")
	return WorldPolygon{}
}

// Bounds panics for the same reason as PointsWorldSpace.
func (c Circle) Bounds(Position) AABB {
	fatalf(ErrNotImplemented, "circle bounds")
	return AABB{}
}

// Projection is the interval covered by a polygon on an axis.
type Projection struct {
	Min float64
	Max float64
}

// Edge is a polygon edge from Start to End with its outward normal.
type Edge struct {
	Start  Vector2D
	End    Vector2D
	Normal Vector2D
}

// WorldPolygon is a convex polygon in world space.
type WorldPolygon struct {
	Points  []Vector2D
	Normals []Vector2D
}

// Edge returns edge i, the segment from point i-1 to point i.
func (p WorldPolygon) Edge(i int) Edge {
	return Edge{
		Start:  p.Points[prevIndex(i, len(p.Points))],
		End:    p.Points[i],
		Normal: p.Normals[i],
	}
}

// ProjectionOnNormal returns the SAT projection interval of the polygon
// on normal.
func (p WorldPolygon) ProjectionOnNormal(normal Vector2D) Projection {
	proj := Projection{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, pt := range p.Points {
		d := pt.Dot(normal)
		proj.Min = math.Min(proj.Min, d)
		proj.Max = math.Max(proj.Max, d)
	}
	return proj
}

// EdgeWithMostOpposedNormal returns the edge whose normal is the most
// anti-parallel to normal.
func (p WorldPolygon) EdgeWithMostOpposedNormal(normal Vector2D) Edge {
	best := 0
	bestDot := math.Inf(1)
	for i, n := range p.Normals {
		if d := n.Dot(normal); d < bestDot {
			bestDot = d
			best = i
		}
	}
	return p.Edge(best)
}

// Bounds returns the axis-aligned box enclosing the polygon.
func (p WorldPolygon) Bounds() AABB {
	box := AABB{
		Min: Vector2D{X: math.Inf(1), Y: math.Inf(1)},
		Max: Vector2D{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, pt := range p.Points {
		box = box.Extend(pt)
	}
	return box
}

// ClipResult holds up to two points of a clipped segment.
type ClipResult struct {
	Points [2]Vector2D
	Count  int
}

// NewClipResult returns the two-point segment a-b.
func NewClipResult(a, b Vector2D) ClipResult {
	return ClipResult{Points: [2]Vector2D{a, b}, Count: 2}
}

// ClipToHalfspace clips the segment to dot(normal, p) <= offset. Points
// on or inside the plane are kept, and if the segment crosses the plane
// the intersection point is appended.
func (c ClipResult) ClipToHalfspace(normal Vector2D, offset float64) ClipResult {
	var out ClipResult
	if c.Count < 2 {
		return c.DiscardToHalfspace(normal, offset)
	}

	a, b := c.Points[0], c.Points[1]
	da := normal.Dot(a) - offset
	db := normal.Dot(b) - offset

	if da <= 0 {
		out.push(a)
	}
	if db <= 0 {
		out.push(b)
	}
	if da*db < 0 {
		out.push(a.Lerp(b, da/(da-db)))
	}
	return out
}

// DiscardToHalfspace keeps only the points already satisfying
// dot(normal, p) <= offset.
func (c ClipResult) DiscardToHalfspace(normal Vector2D, offset float64) ClipResult {
	var out ClipResult
	for i := 0; i < c.Count; i++ {
		if normal.Dot(c.Points[i]) <= offset {
			out.push(c.Points[i])
		}
	}
	return out
}

func (c *ClipResult) push(p Vector2D) {
	if c.Count < len(c.Points) {
		c.Points[c.Count] = p
		c.Count++
	}
}

func prevIndex(i, n int) int {
	if i == 0 {
		return n - 1
	}
	return i - 1
}
