// pkg/physics/handle.go
package physics

import "fmt"

// ColliderHandle identifies a collider owned by an Engine. It is stored
// on the owning entity in place of the collider itself. The top bit
// selects the moving table; the remaining bits are a per-table counter.
type ColliderHandle uint64

const movingHandleBit ColliderHandle = 1 << 63

func newStaticHandle(seq uint64) ColliderHandle {
	return ColliderHandle(seq) &^ movingHandleBit
}

func newMovingHandle(seq uint64) ColliderHandle {
	return ColliderHandle(seq) | movingHandleBit
}

// IsMoving reports whether the handle refers to the moving table.
func (h ColliderHandle) IsMoving() bool {
	return h&movingHandleBit != 0
}

// IsStatic reports whether the handle refers to the static table.
func (h ColliderHandle) IsStatic() bool {
	return !h.IsMoving()
}

// Sequence returns the per-table counter value of the handle.
func (h ColliderHandle) Sequence() uint64 {
	return uint64(h &^ movingHandleBit)
}

func (h ColliderHandle) String() string {
	if h.IsMoving() {
		return fmt.Sprintf("moving#%d", h.Sequence())
	}
	return fmt.Sprintf("static#%d", h.Sequence())
}
