// pkg/physics/quadtree_test.go
package physics

import (
	"sort"
	"testing"
)

func TestNewQuadTree(t *testing.T) {
	boundary := AABB{Max: Vector2D{X: 100, Y: 100}}
	qt := NewQuadTree[int](boundary, 0)

	if qt.Boundary != boundary {
		t.Errorf("Boundary = %+v, expected %+v", qt.Boundary, boundary)
	}
	if qt.Capacity != 1 {
		t.Errorf("Capacity = %d, expected capacity clamped to 1", qt.Capacity)
	}
	if qt.Divided {
		t.Error("new quadtree should not be divided")
	}
}

func TestQuadTree_Insert(t *testing.T) {
	qt := NewQuadTree[string](AABB{Max: Vector2D{X: 100, Y: 100}}, 2)

	tests := []struct {
		name     string
		point    Vector2D
		expected bool
	}{
		{"inside", Vector2D{X: 10, Y: 10}, true},
		{"second_inside", Vector2D{X: 90, Y: 90}, true},
		{"forces_subdivision", Vector2D{X: 60, Y: 20}, true},
		{"on_max_edge", Vector2D{X: 100, Y: 50}, false},
		{"outside", Vector2D{X: -1, Y: 50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := qt.Insert(tt.point, tt.name); got != tt.expected {
				t.Errorf("Insert(%v) = %v, expected %v", tt.point, got, tt.expected)
			}
		})
	}

	if !qt.Divided {
		t.Error("quadtree should subdivide past capacity")
	}
}

func TestQuadTree_Subdivide(t *testing.T) {
	qt := NewQuadTree[int](AABB{Max: Vector2D{X: 100, Y: 50}}, 4)
	qt.Subdivide()

	quadrants := []struct {
		name     string
		node     *QuadTree[int]
		expected AABB
	}{
		{"north_west", qt.NorthWest, AABB{Min: Vector2D{X: 0, Y: 25}, Max: Vector2D{X: 50, Y: 50}}},
		{"north_east", qt.NorthEast, AABB{Min: Vector2D{X: 50, Y: 25}, Max: Vector2D{X: 100, Y: 50}}},
		{"south_west", qt.SouthWest, AABB{Min: Vector2D{X: 0, Y: 0}, Max: Vector2D{X: 50, Y: 25}}},
		{"south_east", qt.SouthEast, AABB{Min: Vector2D{X: 50, Y: 0}, Max: Vector2D{X: 100, Y: 25}}},
	}

	for _, q := range quadrants {
		t.Run(q.name, func(t *testing.T) {
			if q.node == nil {
				t.Fatal("quadrant not created")
			}
			if q.node.Boundary != q.expected {
				t.Errorf("Boundary = %+v, expected %+v", q.node.Boundary, q.expected)
			}
			if q.node.Capacity != 4 {
				t.Errorf("Capacity = %d, expected 4", q.node.Capacity)
			}
		})
	}
}

func TestQuadTree_Query(t *testing.T) {
	qt := NewQuadTree[int](AABB{Max: Vector2D{X: 100, Y: 100}}, 1)
	points := []Vector2D{
		{X: 5, Y: 5},
		{X: 20, Y: 20},
		{X: 30, Y: 10},
		{X: 75, Y: 75},
		{X: 99, Y: 1},
	}
	for i, p := range points {
		if !qt.Insert(p, i) {
			t.Fatalf("Insert(%v) failed", p)
		}
	}

	tests := []struct {
		name     string
		area     AABB
		expected []int
	}{
		{"lower_left", AABB{Max: Vector2D{X: 35, Y: 35}}, []int{0, 1, 2}},
		{"upper_right", AABB{Min: Vector2D{X: 50, Y: 50}, Max: Vector2D{X: 100, Y: 100}}, []int{3}},
		{"everything", AABB{Max: Vector2D{X: 100, Y: 100}}, []int{0, 1, 2, 3, 4}},
		{"empty_region", AABB{Min: Vector2D{X: 40, Y: 40}, Max: Vector2D{X: 60, Y: 60}}, nil},
		{"outside_tree", AABB{Min: Vector2D{X: 200, Y: 200}, Max: Vector2D{X: 300, Y: 300}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := qt.Query(tt.area)
			sort.Ints(got)
			if len(got) != len(tt.expected) {
				t.Fatalf("Query() = %v, expected %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Query() = %v, expected %v", got, tt.expected)
					break
				}
			}
		})
	}
}

func TestQuadTree_CoincidentPoints(t *testing.T) {
	qt := NewQuadTree[int](AABB{Max: Vector2D{X: 10, Y: 10}}, 1)
	for i := 0; i < 64; i++ {
		if !qt.Insert(Vector2D{X: 3, Y: 3}, i) {
			t.Fatalf("Insert #%d failed", i)
		}
	}
	if got := qt.Query(AABB{Min: Vector2D{X: 2, Y: 2}, Max: Vector2D{X: 4, Y: 4}}); len(got) != 64 {
		t.Errorf("Query() found %d objects, expected 64", len(got))
	}
}

func BenchmarkQuadTree_Insert(b *testing.B) {
	qt := NewQuadTree[int](AABB{Max: Vector2D{X: 1000, Y: 1000}}, 8)
	for i := 0; i < b.N; i++ {
		qt.Insert(Vector2D{X: float64(i % 1000), Y: float64((i * 7) % 1000)}, i)
	}
}
