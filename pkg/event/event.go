// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// Type represents the type of event
type Type string

// Scene event types
const (
	BodyAdded   Type = "body_added"
	BodyRemoved Type = "body_removed"
	Collision   Type = "collision"
	BoundsSet   Type = "bounds_set"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription is returned by Subscribe. Cancel removes the handler.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers. Handlers run on the
// publishing goroutine, in subscription order.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// BodyEvent reports a collider being attached to or detached from an entity
type BodyEvent struct {
	BaseEvent
	Entity uint64
	Handle physics.ColliderHandle
	Flags  physics.ColliderFlags
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source interface{}, entity uint64, handle physics.ColliderHandle, flags physics.ColliderFlags) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Entity: entity,
		Handle: handle,
		Flags:  flags,
	}
}

// CollisionEvent contains information about one colliding pair for a frame
type CollisionEvent struct {
	BaseEvent
	EntityA     uint64
	EntityB     uint64
	Normal      physics.Vector2D
	Penetration float64
	Contacts    []physics.Vector2D
}

// NewCollisionEvent copies the pair data out of m, which is only valid
// during the frame that produced it.
func NewCollisionEvent(source interface{}, m *physics.CollisionManifold) *CollisionEvent {
	contacts := make([]physics.Vector2D, m.ContactCount)
	copy(contacts, m.Contacts[:m.ContactCount])
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: Collision,
			Source:    source,
		},
		EntityA:     m.A.Entity.ID(),
		EntityB:     m.B.Entity.ID(),
		Normal:      m.Normal,
		Penetration: m.Penetration,
		Contacts:    contacts,
	}
}

// BoundsEvent reports the walls placed around a scene
type BoundsEvent struct {
	BaseEvent
	Area  physics.AABB
	Walls []uint64
}

// NewBoundsEvent creates a new bounds event
func NewBoundsEvent(source interface{}, area physics.AABB, walls []uint64) *BoundsEvent {
	return &BoundsEvent{
		BaseEvent: BaseEvent{
			EventType: BoundsSet,
			Source:    source,
		},
		Area:  area,
		Walls: walls,
	}
}
