// pkg/physics/system.go
package physics

import "github.com/EngoEngine/ecs"

// System runs an Engine inside an ecs.World. Removing an entity from the
// world removes its collider.
type System struct {
	engine   *Engine
	registry Registry
}

// NewSystem binds engine to the registry holding its components.
func NewSystem(engine *Engine, registry Registry) *System {
	return &System{engine: engine, registry: registry}
}

// Engine returns the wrapped engine.
func (s *System) Engine() *Engine {
	return s.engine
}

// Update satisfies the ecs.System interface
func (s *System) Update(dt float32) {
	s.engine.Update(s.registry, float64(dt))
}

// Remove satisfies the ecs.System interface
func (s *System) Remove(basic ecs.BasicEntity) {
	if s.engine.HasCollider(s.registry, basic) {
		s.engine.RemoveCollider(s.registry, basic)
	}
}

var _ ecs.System = (*System)(nil)
