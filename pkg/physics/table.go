// pkg/physics/table.go
package physics

// bodyTable is dense storage keyed by ColliderHandle. Iteration follows
// the dense order, which is insertion order perturbed only by
// swap-removal.
type bodyTable[T any] struct {
	handles []ColliderHandle
	values  []*T
	index   map[ColliderHandle]int
}

func newBodyTable[T any]() bodyTable[T] {
	return bodyTable[T]{index: make(map[ColliderHandle]int)}
}

func (t *bodyTable[T]) get(h ColliderHandle) (*T, bool) {
	i, ok := t.index[h]
	if !ok {
		return nil, false
	}
	return t.values[i], true
}

func (t *bodyTable[T]) set(h ColliderHandle, v *T) {
	if i, ok := t.index[h]; ok {
		t.values[i] = v
		return
	}
	t.index[h] = len(t.handles)
	t.handles = append(t.handles, h)
	t.values = append(t.values, v)
}

func (t *bodyTable[T]) remove(h ColliderHandle) bool {
	i, ok := t.index[h]
	if !ok {
		return false
	}
	last := len(t.handles) - 1
	lastHandle := t.handles[last]

	t.handles[i] = lastHandle
	t.values[i] = t.values[last]
	t.index[lastHandle] = i

	t.values[last] = nil
	t.handles = t.handles[:last]
	t.values = t.values[:last]
	delete(t.index, h)
	return true
}

func (t *bodyTable[T]) count() int {
	return len(t.handles)
}
