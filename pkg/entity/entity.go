// pkg/entity/entity.go
package entity

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// DestroyHook runs before an entity's components are dropped.
type DestroyHook func(e ecs.BasicEntity)

// record holds the components of one entity.
type record struct {
	basic    ecs.BasicEntity
	position *physics.Position
	velocity *physics.Velocity
	handle   physics.ColliderHandle
	hasLink  bool
}

// Registry is the entity/component store used by the physics engine.
// Entities are ecs.BasicEntity values; components are held by pointer so
// the engine can mutate them in place. Iteration follows creation order.
type Registry struct {
	records map[uint64]*record
	order   []uint64
	hooks   []DestroyHook
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[uint64]*record),
	}
}

// CreateEntity allocates a new entity with no components.
func (r *Registry) CreateEntity() ecs.BasicEntity {
	basic := ecs.NewBasic()
	r.records[basic.ID()] = &record{basic: basic}
	r.order = append(r.order, basic.ID())
	return basic
}

// OnDestroy registers a hook run by DestroyEntity.
func (r *Registry) OnDestroy(hook DestroyHook) {
	r.hooks = append(r.hooks, hook)
}

// DestroyEntity runs the destroy hooks and drops the entity. It returns
// false if the entity is not alive.
func (r *Registry) DestroyEntity(e ecs.BasicEntity) bool {
	if !r.IsAlive(e) {
		return false
	}
	for _, hook := range r.hooks {
		hook(e)
	}
	delete(r.records, e.ID())
	for i, id := range r.order {
		if id == e.ID() {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// IsAlive reports whether an entity handle is valid.
func (r *Registry) IsAlive(e ecs.BasicEntity) bool {
	_, ok := r.records[e.ID()]
	return ok
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.order)
}

// Entities returns the live entities in creation order.
func (r *Registry) Entities() []ecs.BasicEntity {
	out := make([]ecs.BasicEntity, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id].basic)
	}
	return out
}

// SetPosition stores a position component and returns it.
func (r *Registry) SetPosition(e ecs.BasicEntity, p physics.Position) *physics.Position {
	rec := r.mustRecord(e)
	if rec.position == nil {
		rec.position = &physics.Position{}
	}
	*rec.position = p
	return rec.position
}

// Position returns the position component of e.
func (r *Registry) Position(e ecs.BasicEntity) (*physics.Position, bool) {
	rec, ok := r.records[e.ID()]
	if !ok || rec.position == nil {
		return nil, false
	}
	return rec.position, true
}

// RemovePosition drops the position component of e.
func (r *Registry) RemovePosition(e ecs.BasicEntity) {
	if rec, ok := r.records[e.ID()]; ok {
		rec.position = nil
	}
}

// SetVelocity stores a velocity component and returns it.
func (r *Registry) SetVelocity(e ecs.BasicEntity, v physics.Velocity) *physics.Velocity {
	rec := r.mustRecord(e)
	if rec.velocity == nil {
		rec.velocity = &physics.Velocity{}
	}
	*rec.velocity = v
	return rec.velocity
}

// Velocity returns the velocity component of e.
func (r *Registry) Velocity(e ecs.BasicEntity) (*physics.Velocity, bool) {
	rec, ok := r.records[e.ID()]
	if !ok || rec.velocity == nil {
		return nil, false
	}
	return rec.velocity, true
}

// RemoveVelocity drops the velocity component of e.
func (r *Registry) RemoveVelocity(e ecs.BasicEntity) {
	if rec, ok := r.records[e.ID()]; ok {
		rec.velocity = nil
	}
}

// ColliderHandle returns the collider handle stored on e.
func (r *Registry) ColliderHandle(e ecs.BasicEntity) (physics.ColliderHandle, bool) {
	rec, ok := r.records[e.ID()]
	if !ok || !rec.hasLink {
		return 0, false
	}
	return rec.handle, true
}

// SetColliderHandle stores the collider handle component on e.
func (r *Registry) SetColliderHandle(e ecs.BasicEntity, h physics.ColliderHandle) {
	rec := r.mustRecord(e)
	rec.handle = h
	rec.hasLink = true
}

// RemoveColliderHandle drops the collider handle component of e.
func (r *Registry) RemoveColliderHandle(e ecs.BasicEntity) {
	if rec, ok := r.records[e.ID()]; ok {
		rec.handle = 0
		rec.hasLink = false
	}
}

// EachMover calls fn for every entity holding both a position and a
// velocity, in creation order.
func (r *Registry) EachMover(fn func(e ecs.BasicEntity, pos *physics.Position, vel *physics.Velocity)) {
	for _, id := range r.order {
		rec := r.records[id]
		if rec.position != nil && rec.velocity != nil {
			fn(rec.basic, rec.position, rec.velocity)
		}
	}
}

func (r *Registry) mustRecord(e ecs.BasicEntity) *record {
	rec, ok := r.records[e.ID()]
	if !ok {
		panic("entity: component set on dead entity")
	}
	return rec
}

var _ physics.Registry = (*Registry)(nil)
