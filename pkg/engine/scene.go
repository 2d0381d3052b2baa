// pkg/engine/scene.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-physics2d/pkg/config"
	"github.com/opd-ai/go-physics2d/pkg/entity"
	"github.com/opd-ai/go-physics2d/pkg/event"
	"github.com/opd-ai/go-physics2d/pkg/logging"
	"github.com/opd-ai/go-physics2d/pkg/metrics"
	"github.com/opd-ai/go-physics2d/pkg/physics"
	"github.com/opd-ai/go-physics2d/pkg/validation"
)

// ErrDuplicateBody is returned when a body name is already in use.
var ErrDuplicateBody = errors.New("duplicate body name")

// Totals accumulates frame statistics over the life of a scene.
type Totals struct {
	Frames      uint64
	PairsTested uint64
	Manifolds   uint64
	Contacts    uint64
	Duration    time.Duration
}

// Scene owns a physics engine, the entity registry it reads and the
// ecs.World that drives it. It is not safe for concurrent use.
type Scene struct {
	Config   *config.Config
	Registry *entity.Registry
	Physics  *physics.Engine
	World    ecs.World
	EventBus *event.Bus

	CurrentFrame uint64
	ElapsedTime  float64 // simulated seconds

	logger    *logging.Logger
	ctx       context.Context
	metrics   *metrics.PhysicsMetrics
	frameHook func(*Scene)
	debug     physics.DebugDrawer

	bodies  map[string]ecs.BasicEntity
	names   map[uint64]string
	pending []*event.CollisionEvent
	totals  Totals
	last    physics.FrameStats
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger shared by the scene and its engine.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scene) { s.logger = l }
}

// WithRunID tags every scene log line with id.
func WithRunID(id string) Option {
	return func(s *Scene) { s.ctx = logging.WithRunID(context.Background(), id) }
}

// WithEventBus publishes scene events on bus instead of a private one.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Scene) { s.EventBus = bus }
}

// WithMetrics feeds every frame's stats to m.
func WithMetrics(m *metrics.PhysicsMetrics) Option {
	return func(s *Scene) { s.metrics = m }
}

// WithDebugDrawer passes d to the engine.
func WithDebugDrawer(d physics.DebugDrawer) Option {
	return func(s *Scene) { s.debug = d }
}

// WithFrameHook calls fn after every frame stepped by Run.
func WithFrameHook(fn func(*Scene)) Option {
	return func(s *Scene) { s.frameHook = fn }
}

// NewScene validates cfg and builds a scene from it: the bounds walls
// first, then every configured body in order.
func NewScene(cfg *config.Config, opts ...Option) (*Scene, error) {
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, logging.WrapError(err, "invalid scene config")
	}

	s := &Scene{
		Config:   cfg,
		Registry: entity.NewRegistry(),
		bodies:   make(map[string]ecs.BasicEntity),
		names:    make(map[uint64]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewLogger()
	}
	if s.ctx == nil {
		s.ctx = logging.WithRunID(context.Background(), "")
	}
	if s.EventBus == nil {
		s.EventBus = event.NewEventBus()
	}

	s.Physics = physics.NewEngine(
		physics.WithLogger(s.logger),
		physics.WithGravity(cfg.Physics.Gravity),
		physics.WithDebugDrawer(s.debug),
		physics.WithStatsHook(s.recordStats),
		physics.WithContactListener(s.queueCollision),
	)
	s.World.AddSystem(physics.NewSystem(s.Physics, s.Registry))
	s.Registry.OnDestroy(s.detach)

	if b := cfg.Scene.Bounds; b != nil {
		if _, err := s.AddBoundingBox(b.Center, b.HalfSize, b.Thickness); err != nil {
			return nil, err
		}
	}
	for _, body := range cfg.Scene.Bodies {
		if _, err := s.Spawn(body); err != nil {
			return nil, err
		}
	}

	s.logger.Info(s.ctx, "scene built",
		"static_bodies", s.Physics.StaticCount(),
		"moving_bodies", s.Physics.MovingCount(),
		"gravity_x", cfg.Physics.Gravity.X,
		"gravity_y", cfg.Physics.Gravity.Y,
	)
	return s, nil
}

// Context returns the logging context of the scene.
func (s *Scene) Context() context.Context {
	return s.ctx
}

// Spawn creates one rectangular body. Static bodies get an immovable
// collider snapshotting their center; every other body carries a
// velocity and a mass derived from its density.
func (s *Scene) Spawn(body config.BodyConfig) (ecs.BasicEntity, error) {
	if err := validation.ValidateBody(s.Config, body); err != nil {
		return ecs.BasicEntity{}, logging.WrapError(err, "spawn %q", body.Name)
	}
	name := strings.TrimSpace(body.Name)
	if _, exists := s.bodies[name]; exists {
		return ecs.BasicEntity{}, fmt.Errorf("spawn %q: %w", name, ErrDuplicateBody)
	}

	material, _ := s.Config.Material(body.Material)
	var flags physics.ColliderFlags
	switch {
	case body.Static:
		flags = physics.FlagNoMove
	case body.Kinematic:
		flags = physics.FlagKinematic
	}

	collider := physics.NewRectangleCollider(body.HalfExtents, material, flags)
	if body.GravityFactor != nil {
		collider.GravityFactor = *body.GravityFactor
	}

	e := s.Registry.CreateEntity()
	s.Registry.SetPosition(e, physics.Position{Point: body.Center, Rotation: body.Rotation})
	if !body.Static {
		density := body.Density
		if density == 0 {
			density = s.Config.Physics.DefaultDensity
		}
		collider.RecalculateMass(density)
		s.Registry.SetVelocity(e, physics.Velocity{Linear: body.Velocity, Angular: body.AngularVelocity})
	}

	h := s.Physics.AddCollider(s.Registry, e, collider)
	s.bodies[name] = e
	s.names[e.ID()] = name

	s.EventBus.Publish(event.NewBodyEvent(event.BodyAdded, s, e.ID(), h, flags))
	s.logger.Debug(s.ctx, "body spawned",
		"name", name,
		"entity", e.ID(),
		"handle", h.String(),
	)
	return e, nil
}

// Body looks a spawned body up by name.
func (s *Scene) Body(name string) (ecs.BasicEntity, bool) {
	e, ok := s.bodies[name]
	return e, ok
}

// Name returns the configured name of e, or "" for unnamed entities
// such as walls.
func (s *Scene) Name(e ecs.BasicEntity) string {
	return s.names[e.ID()]
}

// Destroy removes e from the world, dropping its collider, and deletes
// the entity. It reports whether e was alive.
func (s *Scene) Destroy(e ecs.BasicEntity) bool {
	return s.Registry.DestroyEntity(e)
}

// detach runs before the registry drops an entity.
func (s *Scene) detach(e ecs.BasicEntity) {
	h, hasCollider := s.Registry.ColliderHandle(e)
	var flags physics.ColliderFlags
	if hasCollider {
		if c, ok := s.Physics.Collider(h); ok {
			flags = c.Flags
		}
	}

	s.World.RemoveEntity(e)

	if name, ok := s.names[e.ID()]; ok {
		delete(s.bodies, name)
		delete(s.names, e.ID())
	}
	if hasCollider {
		s.EventBus.Publish(event.NewBodyEvent(event.BodyRemoved, s, e.ID(), h, flags))
	}
}

// Step advances the scene by frameTime seconds, clamped to the longest
// step the configured minimum frame rate allows. It returns the dt used;
// non-positive frame times do nothing.
func (s *Scene) Step(frameTime float64) float64 {
	if frameTime <= 0 {
		return 0
	}
	dt := frameTime
	if limit := s.Config.Physics.MaxTimeStep(); limit > 0 && dt > limit {
		dt = limit
	}

	s.World.Update(float32(dt))
	s.CurrentFrame++
	s.ElapsedTime += dt

	pending := s.pending
	s.pending = nil
	for _, ev := range pending {
		s.EventBus.Publish(ev)
	}
	return dt
}

// Run steps the scene frames times at the fixed time step. It stops early
// with the context error if ctx is cancelled between frames.
func (s *Scene) Run(ctx context.Context, frames int) error {
	dt := s.Config.Physics.FixedTimeStep
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.logger.Warn(s.ctx, "run cancelled", "frame", s.CurrentFrame)
			return ctx.Err()
		default:
		}

		s.Step(dt)
		if s.frameHook != nil {
			s.frameHook(s)
		}
	}

	s.logger.Info(s.ctx, "run finished",
		"frames", s.CurrentFrame,
		"elapsed", s.ElapsedTime,
		"contacts", s.totals.Contacts,
	)
	return nil
}

// QueryRegion returns the bodies whose center lies inside area, using a
// quadtree with the configured node capacity.
func (s *Scene) QueryRegion(area physics.AABB) []ecs.BasicEntity {
	return s.Physics.QueryRegion(s.Registry, area, s.Config.Physics.QuadTreeCapacity)
}

// Totals returns the statistics accumulated so far.
func (s *Scene) Totals() Totals {
	return s.totals
}

// LastFrame returns the statistics of the most recent frame.
func (s *Scene) LastFrame() physics.FrameStats {
	return s.last
}

// Finite reports whether every moving body still has a finite position
// and velocity. A diverged simulation produces NaN or infinite values.
func (s *Scene) Finite() bool {
	finite := true
	s.Registry.EachMover(func(_ ecs.BasicEntity, pos *physics.Position, vel *physics.Velocity) {
		if !pos.Point.IsFinite() || !vel.Linear.IsFinite() ||
			math.IsNaN(pos.Rotation) || math.IsInf(pos.Rotation, 0) ||
			math.IsNaN(vel.Angular) || math.IsInf(vel.Angular, 0) {
			finite = false
		}
	})
	return finite
}

func (s *Scene) recordStats(stats physics.FrameStats) {
	s.last = stats
	s.totals.Frames++
	s.totals.PairsTested += uint64(stats.PairsTested)
	s.totals.Manifolds += uint64(stats.Manifolds)
	s.totals.Contacts += uint64(stats.Contacts)
	s.totals.Duration += stats.Duration
	if s.metrics != nil {
		s.metrics.Observe(stats)
	}
}

// queueCollision copies m for publication once the frame is complete.
func (s *Scene) queueCollision(m *physics.CollisionManifold) {
	s.pending = append(s.pending, event.NewCollisionEvent(s, m))
}
