package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypePlane
	ShapeTypeCapsule
)

// RayHit is the result of a ray intersection
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// PlaneContact is a point of a shape lying below a plane
type PlaneContact struct {
	Position    mgl64.Vec3
	Penetration float64
}

// ShapeInterface is the interface that all collision shapes must implement
type ShapeInterface interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeMass calculates mass data for the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	// Raycast works in shape local space. Rays starting inside the shape never hit it.
	Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RayHit, bool)
	// CollideWithPlane returns the world-space points of the shape below the plane
	// normal·p + distance = 0
	CollideWithPlane(normal mgl64.Vec3, distance float64, transform Transform) (bool, []PlaneContact)
}

// Rounded shapes are a segment swept by a radius: spheres and capsules
type Rounded interface {
	Core(transform Transform) (a, b mgl64.Vec3, radius float64)
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	aabb        AABB
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) corners() [8]mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	return [8]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

func (b *Box) ComputeAABB(transform Transform) {
	corners := b.corners()

	worldCorner := transform.Rotation.Rotate(corners[0]).Add(transform.Position)
	min := worldCorner
	max := worldCorner

	for i := 1; i < 8; i++ {
		worldCorner = transform.Rotation.Rotate(corners[i]).Add(transform.Position)
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], worldCorner[axis])
			max[axis] = math.Max(max[axis], worldCorner[axis])
		}
	}

	b.aabb = AABB{Min: min, Max: max}
}

func (b *Box) GetAABB() AABB {
	return b.aabb
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0
	return mgl64.Mat3{
		factor * (y*y + z*z), 0, 0,
		0, factor * (x*x + z*z), 0,
		0, 0, factor * (x*x + y*y),
	}
}

func (b *Box) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	local := AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
	if local.ContainsPoint(origin) {
		return RayHit{}, false
	}

	t, ok := local.IntersectRay(origin, direction, maxDistance)
	if !ok {
		return RayHit{}, false
	}

	point := origin.Add(direction.Mul(t))

	// The entry face is the one the hit point lies closest to
	var normal mgl64.Vec3
	best := math.MaxFloat64
	for axis := 0; axis < 3; axis++ {
		if d := math.Abs(point[axis] - b.HalfExtents[axis]); d < best {
			best = d
			normal = mgl64.Vec3{}
			normal[axis] = 1
		}
		if d := math.Abs(point[axis] + b.HalfExtents[axis]); d < best {
			best = d
			normal = mgl64.Vec3{}
			normal[axis] = -1
		}
	}

	return RayHit{Point: point, Normal: normal, Distance: t}, true
}

func (b *Box) CollideWithPlane(normal mgl64.Vec3, distance float64, transform Transform) (bool, []PlaneContact) {
	var contacts []PlaneContact
	for _, corner := range b.corners() {
		worldCorner := transform.Rotation.Rotate(corner).Add(transform.Position)
		if signed := normal.Dot(worldCorner) + distance; signed < 0 {
			contacts = append(contacts, PlaneContact{Position: worldCorner, Penetration: -signed})
		}
	}

	return len(contacts) > 0, contacts
}

// ClosestPoint returns the point of the box at transform closest to p (p itself when inside)
func (b *Box) ClosestPoint(transform Transform, p mgl64.Vec3) mgl64.Vec3 {
	local := transform.InverseRotation.Rotate(p.Sub(transform.Position))
	for axis := 0; axis < 3; axis++ {
		local[axis] = mgl64.Clamp(local[axis], -b.HalfExtents[axis], b.HalfExtents[axis])
	}

	return transform.Rotation.Rotate(local).Add(transform.Position)
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
	aabb   AABB
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) {
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

func (s *Sphere) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	if origin.LenSqr() <= s.Radius*s.Radius {
		return RayHit{}, false
	}

	t, ok := raySphere(origin, direction, mgl64.Vec3{}, s.Radius)
	if !ok || t > maxDistance {
		return RayHit{}, false
	}

	point := origin.Add(direction.Mul(t))
	return RayHit{Point: point, Normal: point.Normalize(), Distance: t}, true
}

func (s *Sphere) CollideWithPlane(normal mgl64.Vec3, distance float64, transform Transform) (bool, []PlaneContact) {
	signed := normal.Dot(transform.Position) + distance
	if penetration := s.Radius - signed; penetration > 0 {
		return true, []PlaneContact{{
			Position:    transform.Position.Sub(normal.Mul(s.Radius)),
			Penetration: penetration,
		}}
	}

	return false, nil
}

func (s *Sphere) Core(transform Transform) (mgl64.Vec3, mgl64.Vec3, float64) {
	return transform.Position, transform.Position, s.Radius
}

// Capsule is a segment along the local Y axis swept by Radius.
// HalfHeight is half the length of the segment, the total height is 2*(HalfHeight+Radius).
type Capsule struct {
	Radius     float64
	HalfHeight float64
	aabb       AABB
}

func (c *Capsule) Type() ShapeType { return ShapeTypeCapsule }

func (c *Capsule) Core(transform Transform) (mgl64.Vec3, mgl64.Vec3, float64) {
	axis := transform.Rotation.Rotate(mgl64.Vec3{0, c.HalfHeight, 0})
	return transform.Position.Sub(axis), transform.Position.Add(axis), c.Radius
}

func (c *Capsule) ComputeAABB(transform Transform) {
	a, b, r := c.Core(transform)
	radiusVec := mgl64.Vec3{r, r, r}

	var min, max mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		min[axis] = math.Min(a[axis], b[axis])
		max[axis] = math.Max(a[axis], b[axis])
	}

	c.aabb = AABB{Min: min.Sub(radiusVec), Max: max.Add(radiusVec)}
}

func (c *Capsule) GetAABB() AABB {
	return c.aabb
}

func (c *Capsule) volumes() (cylinder, spheres float64) {
	cylinder = math.Pi * c.Radius * c.Radius * 2 * c.HalfHeight
	spheres = (4.0 / 3.0) * math.Pi * math.Pow(c.Radius, 3)
	return cylinder, spheres
}

func (c *Capsule) ComputeMass(density float64) float64 {
	cylinder, spheres := c.volumes()
	return density * (cylinder + spheres)
}

// ComputeInertia splits the mass between the cylinder and the two hemispheres
func (c *Capsule) ComputeInertia(mass float64) mgl64.Mat3 {
	cylinder, spheres := c.volumes()
	total := cylinder + spheres
	if total == 0 {
		return mgl64.Mat3{}
	}

	mc := mass * cylinder / total
	ms := mass * spheres / total
	r := c.Radius
	h := 2 * c.HalfHeight

	iy := mc*r*r/2 + ms*2*r*r/5
	ix := mc*(h*h/12+r*r/4) + ms*(2*r*r/5+h*h/4+3*h*r/8)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, ix,
	}
}

func (c *Capsule) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	a := mgl64.Vec3{0, -c.HalfHeight, 0}
	b := mgl64.Vec3{0, c.HalfHeight, 0}
	if ClosestPointOnSegment(a, b, origin).Sub(origin).LenSqr() <= c.Radius*c.Radius {
		return RayHit{}, false
	}

	best := math.Inf(1)
	var center mgl64.Vec3

	// Cylinder body, side surface around Y
	qa := direction.X()*direction.X() + direction.Z()*direction.Z()
	if qa > 1e-12 {
		qb := origin.X()*direction.X() + origin.Z()*direction.Z()
		qc := origin.X()*origin.X() + origin.Z()*origin.Z() - c.Radius*c.Radius
		if disc := qb*qb - qa*qc; disc >= 0 {
			t := (-qb - math.Sqrt(disc)) / qa
			if y := origin.Y() + direction.Y()*t; t >= 0 && y >= -c.HalfHeight && y <= c.HalfHeight {
				best = t
				center = mgl64.Vec3{0, y, 0}
			}
		}
	}

	// Hemispherical caps
	for _, end := range []mgl64.Vec3{a, b} {
		if t, ok := raySphere(origin, direction, end, c.Radius); ok && t < best {
			best = t
			center = end
		}
	}

	if math.IsInf(best, 1) || best > maxDistance {
		return RayHit{}, false
	}

	point := origin.Add(direction.Mul(best))
	return RayHit{Point: point, Normal: point.Sub(center).Normalize(), Distance: best}, true
}

func (c *Capsule) CollideWithPlane(normal mgl64.Vec3, distance float64, transform Transform) (bool, []PlaneContact) {
	a, b, r := c.Core(transform)

	var contacts []PlaneContact
	for _, end := range []mgl64.Vec3{a, b} {
		if signed := normal.Dot(end) + distance - r; signed < 0 {
			contacts = append(contacts, PlaneContact{Position: end.Sub(normal.Mul(r)), Penetration: -signed})
		}
	}

	return len(contacts) > 0, contacts
}

// Plane represents an infinite plane collision shape
// The plane is defined by the equation: Normal · p + Distance = 0
// where Normal is the plane's normal vector (must be normalized)
// and Distance is the signed distance from the origin along the normal
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
	aabb     AABB
}

func (p *Plane) Type() ShapeType { return ShapeTypePlane }

// ComputeAABB builds a slab one unit thick below the surface, unbounded along the tangents.
// Planes are kept out of the spatial grid, the box only serves bounds queries.
func (p *Plane) ComputeAABB(transform Transform) {
	const thickness = 1.0
	const infinity = 1e10

	normal, distance := p.World(transform)
	planePoint := normal.Mul(-distance)

	min := planePoint.Sub(normal.Mul(thickness))
	max := planePoint
	for axis := 0; axis < 3; axis++ {
		if min[axis] > max[axis] {
			min[axis], max[axis] = max[axis], min[axis]
		}
		if math.Abs(normal[axis]) < 1.0 {
			min[axis] = -infinity
			max[axis] = infinity
		}
	}

	p.aabb = AABB{Min: min, Max: max}
}

func (p *Plane) GetAABB() AABB {
	return p.aabb
}

// ComputeMass: planes are always static with infinite mass
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// Raycast only hits the front face: origins on or behind the plane are inside it
func (p *Plane) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	signed := p.Normal.Dot(origin) + p.Distance
	denominator := p.Normal.Dot(direction)
	if signed <= 0 || denominator >= 0 {
		return RayHit{}, false
	}

	t := -signed / denominator
	if t > maxDistance {
		return RayHit{}, false
	}

	return RayHit{Point: origin.Add(direction.Mul(t)), Normal: p.Normal, Distance: t}, true
}

// CollideWithPlane: two planes never produce contacts
func (p *Plane) CollideWithPlane(normal mgl64.Vec3, distance float64, transform Transform) (bool, []PlaneContact) {
	return false, nil
}

// World returns the plane equation once the body transform is applied
func (p *Plane) World(transform Transform) (mgl64.Vec3, float64) {
	rotation := transform.Rotation
	if rotation == (mgl64.Quat{}) {
		rotation = mgl64.QuatIdent()
	}

	normal := rotation.Rotate(p.Normal)
	point := rotation.Rotate(p.Normal.Mul(-p.Distance)).Add(transform.Position)
	return normal, -normal.Dot(point)
}

// raySphere returns the first non-negative intersection distance with a sphere
func raySphere(origin, direction, center mgl64.Vec3, radius float64) (float64, bool) {
	m := origin.Sub(center)
	a := direction.Dot(direction)
	b := m.Dot(direction)
	c := m.Dot(m) - radius*radius
	if c > 0 && b > 0 {
		return 0, false
	}

	disc := b*b - a*c
	if disc < 0 || a < 1e-12 {
		return 0, false
	}

	t := (-b - math.Sqrt(disc)) / a
	if t < 0 {
		t = 0
	}
	return t, true
}

// ClosestPointOnSegment projects p on the segment [a, b]
func ClosestPointOnSegment(a, b, p mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	lengthSqr := ab.LenSqr()
	if lengthSqr < 1e-12 {
		return a
	}

	t := mgl64.Clamp(p.Sub(a).Dot(ab)/lengthSqr, 0, 1)
	return a.Add(ab.Mul(t))
}
