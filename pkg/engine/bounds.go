// pkg/engine/bounds.go
package engine

import (
	"fmt"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-physics2d/pkg/event"
	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// WallOverhang is how far each bounds wall extends past the box corners,
// so bodies pushed through a corner still meet a wall.
const WallOverhang = 10000

// AddBoundingBox surrounds the area centred on center with four static
// walls of the given thickness. The walls carry physics.FlagInternal and
// are removed by ClearBounds.
func (s *Scene) AddBoundingBox(center, halfSize physics.Vector2D, thickness float64) ([]ecs.BasicEntity, error) {
	if halfSize.X <= 0 || halfSize.Y <= 0 || thickness <= 0 {
		return nil, fmt.Errorf("invalid bounds: half size %v, thickness %g", halfSize, thickness)
	}

	half := thickness / 2
	horizontal := physics.Vector2D{X: halfSize.X + WallOverhang, Y: half}
	vertical := physics.Vector2D{X: half, Y: halfSize.Y + WallOverhang}

	walls := []struct {
		offset physics.Vector2D
		extent physics.Vector2D
	}{
		{physics.Vector2D{Y: -halfSize.Y - half}, horizontal},
		{physics.Vector2D{Y: halfSize.Y + half}, horizontal},
		{physics.Vector2D{X: -halfSize.X - half}, vertical},
		{physics.Vector2D{X: halfSize.X + half}, vertical},
	}

	material, _ := s.Config.Material("")
	flags := physics.FlagNoMove | physics.FlagInternal

	entities := make([]ecs.BasicEntity, 0, len(walls))
	ids := make([]uint64, 0, len(walls))
	for _, w := range walls {
		e := s.Registry.CreateEntity()
		s.Registry.SetPosition(e, physics.Position{Point: center.Add(w.offset)})
		h := s.Physics.AddCollider(s.Registry, e, physics.NewRectangleCollider(w.extent, material, flags))
		s.EventBus.Publish(event.NewBodyEvent(event.BodyAdded, s, e.ID(), h, flags))

		entities = append(entities, e)
		ids = append(ids, e.ID())
	}

	area := physics.NewAABB(center, halfSize)
	s.EventBus.Publish(event.NewBoundsEvent(s, area, ids))
	s.logger.Debug(s.ctx, "bounds added",
		"center_x", center.X,
		"center_y", center.Y,
		"half_x", halfSize.X,
		"half_y", halfSize.Y,
	)
	return entities, nil
}

// ClearBounds destroys every entity whose collider is internal and
// returns how many were removed.
func (s *Scene) ClearBounds() int {
	var internal []ecs.BasicEntity
	for _, e := range s.Registry.Entities() {
		h, ok := s.Registry.ColliderHandle(e)
		if !ok {
			continue
		}
		if c, ok := s.Physics.Collider(h); ok && c.Has(physics.FlagInternal) {
			internal = append(internal, e)
		}
	}

	for _, e := range internal {
		s.Destroy(e)
	}
	return len(internal)
}
