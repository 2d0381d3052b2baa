// pkg/physics/shape_test.go
package physics

import (
	"errors"
	"math"
	"testing"
)

// expectPanic runs fn and fails unless it panics with an error wrapping
// target.
func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v, got none", target)
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected error panic, got %T: %v", r, r)
		}
		if !errors.Is(err, target) {
			t.Fatalf("panic %v does not wrap %v", err, target)
		}
	}()
	fn()
}

func TestRectangle_PointsWorldSpace(t *testing.T) {
	rect := Rectangle{HalfExtents: Vector2D{X: 1, Y: 2}}
	poly := rect.PointsWorldSpace(Position{})

	expectedPoints := []Vector2D{
		{X: -1, Y: -2},
		{X: -1, Y: 2},
		{X: 1, Y: 2},
		{X: 1, Y: -2},
	}
	expectedNormals := []Vector2D{
		{X: 0, Y: -1},
		{X: -1, Y: 0},
		{X: 0, Y: 1},
		{X: 1, Y: 0},
	}

	if len(poly.Points) != 4 || len(poly.Normals) != 4 {
		t.Fatalf("expected 4 points and normals, got %d and %d", len(poly.Points), len(poly.Normals))
	}
	for i := range expectedPoints {
		if !vecApproxEqual(poly.Points[i], expectedPoints[i], epsilon) {
			t.Errorf("point %d = %v, expected %v", i, poly.Points[i], expectedPoints[i])
		}
		if !vecApproxEqual(poly.Normals[i], expectedNormals[i], epsilon) {
			t.Errorf("normal %d = %v, expected %v", i, poly.Normals[i], expectedNormals[i])
		}
	}
}

func TestRectangle_NormalsFaceOutward(t *testing.T) {
	positions := []Position{
		{},
		{Point: Vector2D{X: 3, Y: -2}, Rotation: 0.3},
		{Point: Vector2D{X: -7, Y: 11}, Rotation: math.Pi / 4},
		{Point: Vector2D{X: 0, Y: 1}, Rotation: -2.5},
	}
	rect := Rectangle{HalfExtents: Vector2D{X: 3, Y: 1}}

	for _, pos := range positions {
		poly := rect.PointsWorldSpace(pos)
		for i := range poly.Points {
			edge := poly.Edge(i)
			mid := edge.Start.Lerp(edge.End, 0.5)
			if mid.Sub(pos.Point).Dot(edge.Normal) <= 0 {
				t.Errorf("edge %d normal %v points inward at %+v", i, edge.Normal, pos)
			}
			if !approxEqual(edge.Normal.Length(), 1, epsilon) {
				t.Errorf("edge %d normal %v is not unit length", i, edge.Normal)
			}
		}
	}
}

func TestRectangle_Bounds(t *testing.T) {
	rect := Rectangle{HalfExtents: Vector2D{X: 1, Y: 2}}
	box := rect.Bounds(Position{Point: Vector2D{X: 5, Y: 5}, Rotation: math.Pi / 2})

	if !vecApproxEqual(box.Min, Vector2D{X: 3, Y: 4}, epsilon) {
		t.Errorf("Bounds().Min = %v, expected (3, 4)", box.Min)
	}
	if !vecApproxEqual(box.Max, Vector2D{X: 7, Y: 6}, epsilon) {
		t.Errorf("Bounds().Max = %v, expected (7, 6)", box.Max)
	}
}

func TestUnsupportedShapesPanic(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		kind  ShapeKind
	}{
		{"polygon", Polygon{Vertices: []Vector2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}}, ShapePolygon},
		{"circle", Circle{Radius: 2}, ShapeCircle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shape.Kind() != tt.kind {
				t.Errorf("Kind() = %v, expected %v", tt.shape.Kind(), tt.kind)
			}
			expectPanic(t, ErrNotImplemented, func() { tt.shape.PointsWorldSpace(Position{}) })
			expectPanic(t, ErrNotImplemented, func() { tt.shape.Bounds(Position{}) })
		})
	}
}

func TestShapeKind_String(t *testing.T) {
	tests := map[ShapeKind]string{
		ShapeNone:      "none",
		ShapeRectangle: "rectangle",
		ShapePolygon:   "polygon",
		ShapeCircle:    "circle",
	}
	for kind, expected := range tests {
		if kind.String() != expected {
			t.Errorf("%d.String() = %q, expected %q", kind, kind.String(), expected)
		}
	}
}

func TestWorldPolygon_ProjectionOnNormal(t *testing.T) {
	poly := Rectangle{HalfExtents: Vector2D{X: 1, Y: 2}}.PointsWorldSpace(Position{Point: Vector2D{X: 10}})

	tests := []struct {
		name     string
		normal   Vector2D
		expected Projection
	}{
		{"x_axis", Vector2D{X: 1}, Projection{Min: 9, Max: 11}},
		{"y_axis", Vector2D{Y: 1}, Projection{Min: -2, Max: 2}},
		{"negative_x_axis", Vector2D{X: -1}, Projection{Min: -11, Max: -9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := poly.ProjectionOnNormal(tt.normal)
			if !approxEqual(got.Min, tt.expected.Min, epsilon) || !approxEqual(got.Max, tt.expected.Max, epsilon) {
				t.Errorf("ProjectionOnNormal() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestWorldPolygon_EdgeWithMostOpposedNormal(t *testing.T) {
	poly := Rectangle{HalfExtents: Vector2D{X: 1, Y: 2}}.PointsWorldSpace(Position{})

	edge := poly.EdgeWithMostOpposedNormal(Vector2D{Y: 1})
	if !vecApproxEqual(edge.Normal, Vector2D{Y: -1}, epsilon) {
		t.Errorf("edge normal = %v, expected (0, -1)", edge.Normal)
	}
	if !vecApproxEqual(edge.Start, Vector2D{X: 1, Y: -2}, epsilon) || !vecApproxEqual(edge.End, Vector2D{X: -1, Y: -2}, epsilon) {
		t.Errorf("edge = %v -> %v, expected (1,-2) -> (-1,-2)", edge.Start, edge.End)
	}
}

func TestClipResult_ClipToHalfspace(t *testing.T) {
	normal := Vector2D{X: 1}

	tests := []struct {
		name     string
		a, b     Vector2D
		expected []Vector2D
	}{
		{
			name:     "crossing_segment_is_cut",
			a:        Vector2D{X: -2},
			b:        Vector2D{X: 2},
			expected: []Vector2D{{X: -2}, {X: 1}},
		},
		{
			name:     "inside_segment_is_kept",
			a:        Vector2D{X: -2, Y: 1},
			b:        Vector2D{X: 0, Y: 3},
			expected: []Vector2D{{X: -2, Y: 1}, {X: 0, Y: 3}},
		},
		{
			name:     "outside_segment_is_dropped",
			a:        Vector2D{X: 2},
			b:        Vector2D{X: 3},
			expected: nil,
		},
		{
			name:     "point_on_plane_is_kept_alone",
			a:        Vector2D{X: 1},
			b:        Vector2D{X: 2},
			expected: []Vector2D{{X: 1}},
		},
		{
			name:     "crossing_from_outside",
			a:        Vector2D{X: 3, Y: 2},
			b:        Vector2D{X: -1, Y: 0},
			expected: []Vector2D{{X: -1, Y: 0}, {X: 1, Y: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewClipResult(tt.a, tt.b).ClipToHalfspace(normal, 1)
			if got.Count != len(tt.expected) {
				t.Fatalf("Count = %d, expected %d (%v)", got.Count, len(tt.expected), got.Points)
			}
			for i, p := range tt.expected {
				if !vecApproxEqual(got.Points[i], p, epsilon) {
					t.Errorf("point %d = %v, expected %v", i, got.Points[i], p)
				}
			}
		})
	}
}

func TestClipResult_DiscardToHalfspace(t *testing.T) {
	clip := NewClipResult(Vector2D{Y: 3}, Vector2D{Y: -1})

	got := clip.DiscardToHalfspace(Vector2D{Y: 1}, 0)
	if got.Count != 1 || got.Points[0] != (Vector2D{Y: -1}) {
		t.Errorf("DiscardToHalfspace() = %+v, expected single point (0, -1)", got)
	}

	if got := clip.DiscardToHalfspace(Vector2D{Y: 1}, -5); got.Count != 0 {
		t.Errorf("DiscardToHalfspace() kept %d points, expected 0", got.Count)
	}
}

func TestAABB(t *testing.T) {
	box := NewAABB(Vector2D{X: 1, Y: 1}, Vector2D{X: 2, Y: 1})

	if box.Min != (Vector2D{X: -1, Y: 0}) || box.Max != (Vector2D{X: 3, Y: 2}) {
		t.Fatalf("NewAABB() = %+v", box)
	}
	if box.Center() != (Vector2D{X: 1, Y: 1}) {
		t.Errorf("Center() = %v", box.Center())
	}
	if box.Size() != (Vector2D{X: 4, Y: 2}) {
		t.Errorf("Size() = %v", box.Size())
	}

	containsTests := []struct {
		name     string
		point    Vector2D
		expected bool
	}{
		{"center", Vector2D{X: 1, Y: 1}, true},
		{"min_corner", Vector2D{X: -1, Y: 0}, true},
		{"max_edge_exclusive", Vector2D{X: 3, Y: 1}, false},
		{"outside", Vector2D{X: 10, Y: 10}, false},
	}
	for _, tt := range containsTests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.point); got != tt.expected {
				t.Errorf("Contains(%v) = %v, expected %v", tt.point, got, tt.expected)
			}
		})
	}

	if !box.Intersects(AABB{Min: Vector2D{X: 3, Y: 2}, Max: Vector2D{X: 5, Y: 5}}) {
		t.Error("touching boxes should intersect")
	}
	if box.Intersects(AABB{Min: Vector2D{X: 4, Y: 0}, Max: Vector2D{X: 5, Y: 1}}) {
		t.Error("separated boxes should not intersect")
	}

	grown := box.Extend(Vector2D{X: -5, Y: 7})
	if grown.Min != (Vector2D{X: -5, Y: 0}) || grown.Max != (Vector2D{X: 3, Y: 7}) {
		t.Errorf("Extend() = %+v", grown)
	}
}
