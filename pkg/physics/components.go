// pkg/physics/components.go
package physics

// Position is an oriented point in world space. Rotation is in radians
// about the point.
type Position struct {
	Point    Vector2D `json:"point" yaml:"point"`
	Rotation float64  `json:"rotation" yaml:"rotation"`
}

// Velocity carries the linear and angular velocity of an entity.
type Velocity struct {
	Linear  Vector2D `json:"linear" yaml:"linear"`
	Angular float64  `json:"angular" yaml:"angular"`
}

// Integrate advances p by v over dt.
func (p *Position) Integrate(v Velocity, dt float64) {
	p.Point = p.Point.Add(v.Linear.Scale(dt))
	p.Rotation += v.Angular * dt
}
