// pkg/physics/manifold.go
package physics

import (
	"math"

	"github.com/EngoEngine/ecs"
)

// frictionEpsilon is the smallest tangential impulse worth applying.
const frictionEpsilon = 1e-4

// BodyRef is a borrowed view of one side of a contact pair. Velocity is
// nil for static bodies. The pointers are only valid during the Update
// call that produced them.
type BodyRef struct {
	Entity   ecs.BasicEntity
	Collider *Collider
	Position *Position
	Velocity *Velocity
}

// immovable reports whether impulses never change this body.
func (b BodyRef) immovable() bool {
	return b.Velocity == nil || b.Collider.IsStatic()
}

// unresponsive reports whether this body ignores impulses, either
// because it is static or kinematic.
func (b BodyRef) unresponsive() bool {
	return b.immovable() || b.Collider.IsKinematic()
}

// solverMass returns the inverse mass and inertia the solver uses for
// this body.
func (b BodyRef) solverMass() (invMass, invInertia float64) {
	if b.unresponsive() {
		return 0, 0
	}
	return b.Collider.InvMass, b.Collider.InvInertia
}

func (b BodyRef) velocity() Velocity {
	if b.Velocity == nil {
		return Velocity{}
	}
	return *b.Velocity
}

// CollisionManifold describes the contact between two bodies for one
// frame. After CalculateManifold, Normal points from A to B and
// Penetration is the positive overlap depth along it.
type CollisionManifold struct {
	A, B         BodyRef
	Normal       Vector2D
	Penetration  float64
	Contacts     [2]Vector2D
	ContactCount int
}

// NewCollisionManifold creates an empty manifold for the pair a, b.
func NewCollisionManifold(a, b BodyRef) *CollisionManifold {
	return &CollisionManifold{A: a, B: b}
}

// DoesCollide reports whether the manifold holds any contact point.
func (m *CollisionManifold) DoesCollide() bool {
	return m.ContactCount != 0
}

// CalculateManifold runs the narrow phase for the pair. Pairs of NoMove
// bodies are never tested.
func (m *CollisionManifold) CalculateManifold() {
	m.ContactCount = 0
	if m.A.Collider.Has(FlagNoMove) && m.B.Collider.Has(FlagNoMove) {
		return
	}

	kindA, kindB := m.A.Collider.ShapeKind(), m.B.Collider.ShapeKind()
	switch {
	case kindA == ShapeRectangle && kindB == ShapeRectangle:
		m.rectangleToRectangle()
	case kindA == ShapeNone || kindB == ShapeNone:
		fatalf(ErrUnsupportedShape, "narrow phase %s vs %s", kindA, kindB)
	default:
		fatalf(ErrNotImplemented, "narrow phase %s vs %s", kindA, kindB)
	}
}

func (m *CollisionManifold) rectangleToRectangle() {
	polyA := m.A.Collider.PointsWorldSpace(*m.A.Position)
	polyB := m.B.Collider.PointsWorldSpace(*m.B.Position)

	res := polygonToPolygon(polyA, polyB)
	if res.contacts.Count == 0 {
		return
	}

	// A negative depth means B owned the reference face, so the normal
	// points from B to A.
	m.Normal = res.normal
	m.Penetration = res.penetration
	if res.penetration < 0 {
		m.Normal = res.normal.Neg()
		m.Penetration = -res.penetration
	}
	m.Contacts = res.contacts.Points
	m.ContactCount = res.contacts.Count
}

type contactResult struct {
	normal      Vector2D
	penetration float64
	contacts    ClipResult
}

// polygonToPolygon runs SAT over the edge normals of both polygons and
// clips the incident edge against the reference edge. The returned
// normal is the outward normal of the reference face; penetration is
// positive when A holds the reference face and negative when B does.
//
// A face is only a candidate when the other polygon lies in front of it
// (negative signed penetration). Taking the smallest absolute overlap
// alone can select the back face of a deeply overlapped polygon, whose
// normal points away from the other body.
//
// Overlapping polygons that yield no reference face, or an incident edge
// that does not clip to two points, panic with ErrDegenerateContact.
func polygonToPolygon(polyA, polyB WorldPolygon) contactResult {
	var (
		best     = math.Inf(1)
		bIsRef   bool
		found    bool
		normal   Vector2D
		refStart Vector2D
		refEnd   Vector2D
	)

	for i, n := range polyA.Normals {
		projA := polyA.ProjectionOnNormal(n)
		projB := polyB.ProjectionOnNormal(n)
		if projA.Max <= projB.Min || projB.Max <= projA.Min {
			return contactResult{}
		}
		pen := smallerMagnitude(projB.Max-projA.Min, projB.Min-projA.Max)
		if pen < 0 && -pen < best {
			best = -pen
			found = true
			normal = n
			edge := polyA.Edge(i)
			refStart, refEnd = edge.Start, edge.End
		}
	}

	for i, n := range polyB.Normals {
		projA := polyA.ProjectionOnNormal(n)
		projB := polyB.ProjectionOnNormal(n)
		if projA.Max <= projB.Min || projB.Max <= projA.Min {
			return contactResult{}
		}
		pen := smallerMagnitude(projA.Max-projB.Min, projA.Min-projB.Max)
		if pen < 0 && -pen < best {
			best = -pen
			found = true
			bIsRef = true
			normal = n
			edge := polyB.Edge(i)
			refStart, refEnd = edge.Start, edge.End
		}
	}

	if !found {
		fatalf(ErrDegenerateContact, "no reference face for overlapping polygons")
	}

	incident := polyB
	if bIsRef {
		incident = polyA
	}
	incEdge := incident.EdgeWithMostOpposedNormal(normal)

	side := normal.RotatedL()
	clip := NewClipResult(incEdge.Start, incEdge.End).
		ClipToHalfspace(side, refStart.Dot(side))
	if clip.Count != 2 {
		fatalf(ErrDegenerateContact, "incident edge clipped to %d points by first side plane", clip.Count)
	}
	side = normal.RotatedR()
	clip = clip.ClipToHalfspace(side, refEnd.Dot(side))
	if clip.Count != 2 {
		fatalf(ErrDegenerateContact, "incident edge clipped to %d points by second side plane", clip.Count)
	}

	clip = clip.DiscardToHalfspace(normal, refStart.Dot(normal))
	if clip.Count == 0 {
		fatalf(ErrDegenerateContact, "no contact below reference face")
	}

	res := contactResult{normal: normal, penetration: best, contacts: clip}
	if bIsRef {
		res.penetration = -best
	}
	return res
}

// smallerMagnitude returns whichever of a and b is closer to zero,
// preferring the negative one on ties.
func smallerMagnitude(a, b float64) float64 {
	switch {
	case math.Abs(a) < math.Abs(b):
		return a
	case math.Abs(b) < math.Abs(a):
		return b
	default:
		return math.Min(a, b)
	}
}

// ApplyImpulse resolves the relative velocity of the pair at each
// contact, with Coulomb friction. Static and kinematic sides take part
// in the math with their current velocity but are never modified.
func (m *CollisionManifold) ApplyImpulse() {
	if m.A.unresponsive() && m.B.unresponsive() {
		return
	}
	if m.ContactCount == 0 {
		return
	}

	imA, iLA := m.A.solverMass()
	imB, iLB := m.B.solverMass()
	velA, velB := m.A.velocity(), m.B.velocity()

	e := CombineRestitution(m.A.Collider.Restitution, m.B.Collider.Restitution)
	sf := CombineFriction(m.A.Collider.StaticFriction, m.B.Collider.StaticFriction)
	df := CombineFriction(m.A.Collider.DynamicFriction, m.B.Collider.DynamicFriction)
	count := float64(m.ContactCount)
	n := m.Normal

	apply := func(impulse Vector2D, rA, rB Vector2D) {
		velA.Linear = velA.Linear.Sub(impulse.Scale(imA))
		velA.Angular -= rA.Cross(impulse) * iLA
		velB.Linear = velB.Linear.Add(impulse.Scale(imB))
		velB.Angular += rB.Cross(impulse) * iLB
	}

	for i := 0; i < m.ContactCount; i++ {
		rA := m.Contacts[i].Sub(m.A.Position.Point)
		rB := m.Contacts[i].Sub(m.B.Position.Point)

		rv := relativeVelocity(velA, velB, rA, rB)
		vn := rv.Dot(n)
		if vn > 0 {
			break
		}

		rAn := rA.Cross(n)
		rBn := rB.Cross(n)
		denom := imA + imB + rAn*rAn*iLA + rBn*rBn*iLB

		j := -(1 + e) * vn / denom / count
		apply(n.Scale(j), rA, rB)

		rv = relativeVelocity(velA, velB, rA, rB)
		t := rv.Sub(n.Scale(rv.Dot(n))).Normalize()

		jt := -rv.Dot(t) / denom / count
		if math.Abs(jt) < frictionEpsilon {
			continue
		}
		if math.Abs(jt) >= j*sf {
			jt = -j * df
		}
		apply(t.Scale(jt), rA, rB)
	}

	if !m.A.unresponsive() {
		*m.A.Velocity = velA
	}
	if !m.B.unresponsive() {
		*m.B.Velocity = velB
	}
}

// relativeVelocity returns the velocity of B relative to A at the
// contact offsets rA and rB.
func relativeVelocity(a, b Velocity, rA, rB Vector2D) Vector2D {
	return b.Linear.Add(CrossScalar(b.Angular, rB)).
		Sub(a.Linear.Add(CrossScalar(a.Angular, rA)))
}

// PositionalCorrection pushes the bodies apart along the normal by the
// full penetration, split by inverse mass.
func (m *CollisionManifold) PositionalCorrection() {
	if m.ContactCount == 0 {
		return
	}
	imA, _ := m.A.solverMass()
	imB, _ := m.B.solverMass()
	sum := imA + imB
	if sum == 0 {
		return
	}

	correction := m.Normal.Scale(m.Penetration)
	if imA != 0 {
		m.A.Position.Point = m.A.Position.Point.Sub(correction.Scale(imA / sum))
	}
	if imB != 0 {
		m.B.Position.Point = m.B.Position.Point.Add(correction.Scale(imB / sum))
	}
}
