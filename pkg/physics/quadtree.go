// pkg/physics/quadtree.go
package physics

// minQuadExtent stops subdivision when many objects share a location.
const minQuadExtent = 1e-6

// QuadTree is a point quadtree for spatial queries. It is not consulted
// by Engine.Update; the broad phase tests every pair.
type QuadTree[T any] struct {
	Boundary  AABB
	Capacity  int
	Points    []Vector2D
	Objects   []T
	Divided   bool
	NorthWest *QuadTree[T]
	NorthEast *QuadTree[T]
	SouthWest *QuadTree[T]
	SouthEast *QuadTree[T]
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree[T any](boundary AABB, capacity int) *QuadTree[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree[T]{
		Boundary: boundary,
		Capacity: capacity,
		Points:   make([]Vector2D, 0, capacity),
		Objects:  make([]T, 0, capacity),
	}
}

// Insert adds object at point. It returns false if point lies outside
// the tree boundary.
func (qt *QuadTree[T]) Insert(point Vector2D, object T) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	size := qt.Boundary.Size()
	leaf := size.X < minQuadExtent || size.Y < minQuadExtent
	if !qt.Divided && (len(qt.Points) < qt.Capacity || leaf) {
		qt.Points = append(qt.Points, point)
		qt.Objects = append(qt.Objects, object)
		return true
	}

	if !qt.Divided {
		qt.Subdivide()
	}

	return qt.NorthWest.Insert(point, object) ||
		qt.NorthEast.Insert(point, object) ||
		qt.SouthWest.Insert(point, object) ||
		qt.SouthEast.Insert(point, object)
}

// Subdivide splits the quadtree into four quadrants
func (qt *QuadTree[T]) Subdivide() {
	c := qt.Boundary.Center()
	lo, hi := qt.Boundary.Min, qt.Boundary.Max

	qt.NorthWest = NewQuadTree[T](AABB{Min: Vector2D{X: lo.X, Y: c.Y}, Max: Vector2D{X: c.X, Y: hi.Y}}, qt.Capacity)
	qt.NorthEast = NewQuadTree[T](AABB{Min: c, Max: hi}, qt.Capacity)
	qt.SouthWest = NewQuadTree[T](AABB{Min: lo, Max: c}, qt.Capacity)
	qt.SouthEast = NewQuadTree[T](AABB{Min: Vector2D{X: c.X, Y: lo.Y}, Max: Vector2D{X: hi.X, Y: c.Y}}, qt.Capacity)
	qt.Divided = true
}

// Query returns all objects whose point lies within area
func (qt *QuadTree[T]) Query(area AABB) []T {
	var found []T
	return qt.query(area, found)
}

func (qt *QuadTree[T]) query(area AABB, found []T) []T {
	if !qt.Boundary.Intersects(area) {
		return found
	}

	for i, point := range qt.Points {
		if area.Contains(point) {
			found = append(found, qt.Objects[i])
		}
	}

	if !qt.Divided {
		return found
	}

	found = qt.NorthWest.query(area, found)
	found = qt.NorthEast.query(area, found)
	found = qt.SouthWest.query(area, found)
	return qt.SouthEast.query(area, found)
}
