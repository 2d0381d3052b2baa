// pkg/physics/engine.go
package physics

import (
	"context"
	"fmt"
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-physics2d/pkg/logging"
)

// Registry is the entity/component store the engine reads positions and
// velocities from. Components are returned by pointer and mutated in
// place.
type Registry interface {
	Position(e ecs.BasicEntity) (*Position, bool)
	Velocity(e ecs.BasicEntity) (*Velocity, bool)
	ColliderHandle(e ecs.BasicEntity) (ColliderHandle, bool)
	SetColliderHandle(e ecs.BasicEntity, h ColliderHandle)
	RemoveColliderHandle(e ecs.BasicEntity)
	// EachMover calls fn for every entity that has both a Position and a
	// Velocity.
	EachMover(fn func(e ecs.BasicEntity, pos *Position, vel *Velocity))
}

// DebugDrawer receives debug geometry from the engine.
type DebugDrawer interface {
	DrawLine(a, b Vector2D)
	DrawPoint(p Vector2D)
}

// FrameStats summarises one Update call.
type FrameStats struct {
	StaticBodies int
	MovingBodies int
	PairsTested  int
	Manifolds    int
	Contacts     int
	Duration     time.Duration
}

type staticBody struct {
	entity   ecs.BasicEntity
	position Position
	collider Collider
}

type movingBody struct {
	entity   ecs.BasicEntity
	collider Collider
}

// Engine owns every collider and runs the per-frame collision pipeline.
// It is not safe for concurrent use.
type Engine struct {
	statics    bodyTable[staticBody]
	movers     bodyTable[movingBody]
	nextStatic uint64
	nextMoving uint64

	gravity   Vector2D
	logger    *logging.Logger
	debug     DebugDrawer
	statsHook func(FrameStats)
	listeners []func(*CollisionManifold)

	manifolds []*CollisionManifold
	refs      []BodyRef
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithGravity sets the acceleration applied to dynamic moving bodies.
func WithGravity(g Vector2D) Option {
	return func(e *Engine) { e.gravity = g }
}

// WithDebugDrawer injects a sink for contact debug geometry.
func WithDebugDrawer(d DebugDrawer) Option {
	return func(e *Engine) { e.debug = d }
}

// WithStatsHook registers fn to receive statistics after each Update.
func WithStatsHook(fn func(FrameStats)) Option {
	return func(e *Engine) { e.statsHook = fn }
}

// WithContactListener registers fn to be called with every colliding
// manifold at the end of Update. The manifold must not be retained.
func WithContactListener(fn func(*CollisionManifold)) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, fn) }
}

// NewEngine creates an engine with empty body tables.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		statics: newBodyTable[staticBody](),
		movers:  newBodyTable[movingBody](),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewLogger()
	}
	return e
}

// SetDebugDrawer replaces the debug sink. A nil drawer disables drawing.
func (e *Engine) SetDebugDrawer(d DebugDrawer) {
	e.debug = d
}

// StaticCount returns the number of static bodies.
func (e *Engine) StaticCount() int {
	return e.statics.count()
}

// MovingCount returns the number of moving bodies.
func (e *Engine) MovingCount() int {
	return e.movers.count()
}

// fail logs a fatal misuse and panics.
func (e *Engine) fail(err error, format string, args ...any) {
	e.logger.Error(context.Background(), "physics precondition violated", err,
		"detail", fmt.Sprintf(format, args...),
	)
	fatalf(err, format, args...)
}

// AddCollider registers c for entity and stores its handle on the
// entity. The entity must already have a Position; static colliders
// snapshot it.
func (e *Engine) AddCollider(reg Registry, entity ecs.BasicEntity, c Collider) ColliderHandle {
	if c.Shape == nil {
		e.fail(ErrUnsupportedShape, "add collider without shape to entity %d", entity.ID())
	}
	if h, ok := reg.ColliderHandle(entity); ok {
		e.fail(ErrColliderExists, "entity %d already owns collider %s", entity.ID(), h)
	}

	pos, ok := reg.Position(entity)
	if !ok {
		e.fail(ErrMissingPosition, "add collider to entity %d", entity.ID())
	}

	var h ColliderHandle
	if c.storedAsStatic() {
		h = newStaticHandle(e.nextStatic)
		e.nextStatic++
		e.statics.set(h, &staticBody{entity: entity, position: *pos, collider: c})
	} else {
		h = newMovingHandle(e.nextMoving)
		e.nextMoving++
		e.movers.set(h, &movingBody{entity: entity, collider: c})
	}
	reg.SetColliderHandle(entity, h)

	e.logger.Debug(context.Background(), "collider added",
		"entity", entity.ID(),
		"handle", h.String(),
		"shape", c.ShapeKind().String(),
		"flags", c.Flags.String(),
	)
	return h
}

// SetCollider replaces the collider of entity in place. The collider must
// stay in the same static or moving class.
func (e *Engine) SetCollider(reg Registry, entity ecs.BasicEntity, c Collider) {
	h := e.mustHandle(reg, entity)
	if c.Shape == nil {
		e.fail(ErrUnsupportedShape, "set collider without shape on entity %d", entity.ID())
	}
	if h.IsStatic() != c.storedAsStatic() {
		e.fail(ErrColliderTypeChange, "set collider %s on entity %d", h, entity.ID())
	}
	*e.colliderFor(h) = c
}

// HasCollider reports whether entity owns a live collider.
func (e *Engine) HasCollider(reg Registry, entity ecs.BasicEntity) bool {
	h, ok := reg.ColliderHandle(entity)
	if !ok {
		return false
	}
	_, ok = e.Collider(h)
	return ok
}

// GetCollider returns the collider of entity for in-place modification.
func (e *Engine) GetCollider(reg Registry, entity ecs.BasicEntity) *Collider {
	return e.colliderFor(e.mustHandle(reg, entity))
}

// Collider looks a collider up by handle.
func (e *Engine) Collider(h ColliderHandle) (*Collider, bool) {
	if h.IsMoving() {
		body, ok := e.movers.get(h)
		if !ok {
			return nil, false
		}
		return &body.collider, true
	}
	body, ok := e.statics.get(h)
	if !ok {
		return nil, false
	}
	return &body.collider, true
}

// RemoveCollider drops the collider of entity and removes its handle
// component. It reports whether a collider was removed.
func (e *Engine) RemoveCollider(reg Registry, entity ecs.BasicEntity) bool {
	h, ok := reg.ColliderHandle(entity)
	if !ok {
		return false
	}
	var removed bool
	if h.IsMoving() {
		removed = e.movers.remove(h)
	} else {
		removed = e.statics.remove(h)
	}
	reg.RemoveColliderHandle(entity)

	e.logger.Debug(context.Background(), "collider removed",
		"entity", entity.ID(),
		"handle", h.String(),
	)
	return removed
}

func (e *Engine) mustHandle(reg Registry, entity ecs.BasicEntity) ColliderHandle {
	h, ok := reg.ColliderHandle(entity)
	if ok {
		if _, live := e.Collider(h); live {
			return h
		}
	}
	e.fail(ErrNoCollider, "entity %d", entity.ID())
	return 0
}

func (e *Engine) colliderFor(h ColliderHandle) *Collider {
	c, _ := e.Collider(h)
	return c
}

// Update advances the simulation by dt: pairs are tested, impulses
// applied, positions integrated, and the pre-integration manifolds used
// for positional correction.
func (e *Engine) Update(reg Registry, dt float64) {
	start := time.Now()

	e.collectMovers(reg)
	e.applyGravity(reg, dt)

	pairs := e.broadPhase()

	for _, m := range e.manifolds {
		m.ApplyImpulse()
	}

	reg.EachMover(func(_ ecs.BasicEntity, pos *Position, vel *Velocity) {
		pos.Integrate(*vel, dt)
	})

	contacts := 0
	for _, m := range e.manifolds {
		m.PositionalCorrection()
		contacts += m.ContactCount
	}

	for _, m := range e.manifolds {
		e.drawManifold(m)
		for _, fn := range e.listeners {
			fn(m)
		}
	}

	if e.statsHook != nil {
		e.statsHook(FrameStats{
			StaticBodies: e.statics.count(),
			MovingBodies: e.movers.count(),
			PairsTested:  pairs,
			Manifolds:    len(e.manifolds),
			Contacts:     contacts,
			Duration:     time.Since(start),
		})
	}

	clear(e.manifolds)
	e.manifolds = e.manifolds[:0]
	clear(e.refs)
	e.refs = e.refs[:0]
}

func (e *Engine) applyGravity(reg Registry, dt float64) {
	if e.gravity == (Vector2D{}) {
		return
	}
	for _, body := range e.movers.values {
		c := body.collider
		if c.IsStatic() || c.IsKinematic() || c.GravityFactor == 0 {
			continue
		}
		vel, ok := reg.Velocity(body.entity)
		if !ok {
			continue
		}
		vel.Linear = vel.Linear.Add(e.gravity.Scale(c.GravityFactor * dt))
	}
}

// collectMovers resolves the components of every moving body. It runs
// before anything is mutated, so a missing Position fails the frame
// with all bodies untouched.
func (e *Engine) collectMovers(reg Registry) {
	e.refs = e.refs[:0]
	for _, body := range e.movers.values {
		pos, ok := reg.Position(body.entity)
		if !ok {
			e.fail(ErrMissingPosition, "moving collider on entity %d", body.entity.ID())
		}
		vel, _ := reg.Velocity(body.entity)
		e.refs = append(e.refs, BodyRef{
			Entity:   body.entity,
			Collider: &body.collider,
			Position: pos,
			Velocity: vel,
		})
	}
}

// broadPhase tests every moving body against every static body and
// every later moving body, keeping colliding manifolds in discovery
// order. It returns the number of pairs tested.
func (e *Engine) broadPhase() int {
	e.manifolds = e.manifolds[:0]
	pairs := 0
	for i := range e.refs {
		for _, sb := range e.statics.values {
			pairs++
			e.test(e.refs[i], BodyRef{
				Entity:   sb.entity,
				Collider: &sb.collider,
				Position: &sb.position,
			})
		}
		for j := i + 1; j < len(e.refs); j++ {
			pairs++
			e.test(e.refs[i], e.refs[j])
		}
	}
	return pairs
}

func (e *Engine) test(a, b BodyRef) {
	m := NewCollisionManifold(a, b)
	m.CalculateManifold()
	if m.DoesCollide() {
		e.manifolds = append(e.manifolds, m)
	}
}

func (e *Engine) drawManifold(m *CollisionManifold) {
	if e.debug == nil {
		return
	}
	for i := 0; i < m.ContactCount; i++ {
		p := m.Contacts[i]
		e.debug.DrawPoint(p)
		e.debug.DrawLine(p, p.Add(m.Normal.Scale(m.Penetration)))
	}
}

// DebugDraw sends the outline of every rectangle collider to the debug
// sink. Static bodies are drawn at their snapshot position.
func (e *Engine) DebugDraw(reg Registry) {
	if e.debug == nil {
		return
	}
	for _, sb := range e.statics.values {
		e.drawOutline(sb.collider, sb.position)
	}
	for _, body := range e.movers.values {
		if pos, ok := reg.Position(body.entity); ok {
			e.drawOutline(body.collider, *pos)
		}
	}
}

func (e *Engine) drawOutline(c Collider, pos Position) {
	if c.ShapeKind() != ShapeRectangle {
		return
	}
	poly := c.PointsWorldSpace(pos)
	for i := range poly.Points {
		edge := poly.Edge(i)
		e.debug.DrawLine(edge.Start, edge.End)
	}
}

// QueryRegion returns the entities whose body center lies inside area.
// Static bodies are reported at their snapshot position.
func (e *Engine) QueryRegion(reg Registry, area AABB, capacity int) []ecs.BasicEntity {
	type entry struct {
		point  Vector2D
		entity ecs.BasicEntity
	}
	entries := make([]entry, 0, e.statics.count()+e.movers.count())
	for _, sb := range e.statics.values {
		entries = append(entries, entry{sb.position.Point, sb.entity})
	}
	for _, body := range e.movers.values {
		if pos, ok := reg.Position(body.entity); ok {
			entries = append(entries, entry{pos.Point, body.entity})
		}
	}
	if len(entries) == 0 {
		return nil
	}

	bounds := AABB{Min: entries[0].point, Max: entries[0].point}
	for _, en := range entries[1:] {
		bounds = bounds.Extend(en.point)
	}
	// Max edges are exclusive; pad so the extreme points are inserted.
	bounds.Max = bounds.Max.Add(Vector2D{X: 1, Y: 1})

	tree := NewQuadTree[ecs.BasicEntity](bounds, capacity)
	for _, en := range entries {
		tree.Insert(en.point, en.entity)
	}
	return tree.Query(area)
}
