// pkg/physics/errors.go
package physics

import (
	"errors"
	"fmt"
)

// Misuse of the physics core is not recoverable at runtime: the engine
// panics with an error wrapping one of these sentinels.
var (
	ErrMissingPosition    = errors.New("entity has no position component")
	ErrColliderTypeChange = errors.New("collider cannot change between static and moving")
	ErrUnsupportedShape   = errors.New("unsupported collider shape")
	ErrNotImplemented     = errors.New("not implemented")
	ErrDegenerateContact  = errors.New("degenerate contact manifold")
	ErrNoCollider         = errors.New("entity has no collider")
	ErrColliderExists     = errors.New("entity already has a collider")
)

// fatalf panics with err wrapped in a formatted message.
func fatalf(err error, format string, args ...any) {
	panic(fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err))
}
