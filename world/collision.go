package world

import (
	"math"

	"github.com/akmonengine/motor/actor"
	"github.com/akmonengine/motor/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// closestPointIterations refines segment/box closest points by alternating projections
const closestPointIterations = 4

// BroadPhase returns the pairs worth testing: grid overlaps for finite bodies, and every
// plane against every non-static body
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.RigidBody) []Pair {
	finite := make([]*actor.RigidBody, 0, len(bodies))
	var planes []*actor.RigidBody
	for _, body := range bodies {
		if body.Shape.Type() == actor.ShapeTypePlane {
			planes = append(planes, body)
		} else {
			finite = append(finite, body)
		}
	}

	spatialGrid.Clear()
	for i, body := range finite {
		spatialGrid.Insert(i, body)
	}
	spatialGrid.SortCells()

	pairs := spatialGrid.FindPairs(finite)
	for _, plane := range planes {
		for _, body := range finite {
			if body.BodyType != actor.BodyTypeStatic {
				pairs = append(pairs, Pair{BodyA: plane, BodyB: body})
			}
		}
	}

	return pairs
}

// NarrowPhase builds contact constraints, including overlaps with triggers
func NarrowPhase(pairs []Pair) []*constraint.ContactConstraint {
	contacts := make([]*constraint.ContactConstraint, 0, len(pairs))
	for _, pair := range pairs {
		if contact, ok := collide(pair.BodyA, pair.BodyB); ok {
			contacts = append(contacts, contact)
		}
	}

	return contacts
}

// collide dispatches on the shape pair. Box/box pairs are not supported.
func collide(bodyA, bodyB *actor.RigidBody) (*constraint.ContactConstraint, bool) {
	if bodyB.Shape.Type() == actor.ShapeTypePlane {
		bodyA, bodyB = bodyB, bodyA
	}
	if plane, ok := bodyA.Shape.(*actor.Plane); ok {
		return collidePlane(bodyA, plane, bodyB)
	}

	roundedA, aIsRounded := bodyA.Shape.(actor.Rounded)
	roundedB, bIsRounded := bodyB.Shape.(actor.Rounded)

	switch {
	case aIsRounded && bIsRounded:
		return collideRounded(bodyA, roundedA, bodyB, roundedB)
	case aIsRounded:
		if box, ok := bodyB.Shape.(*actor.Box); ok {
			return collideBox(bodyB, box, bodyA, roundedA)
		}
	case bIsRounded:
		if box, ok := bodyA.Shape.(*actor.Box); ok {
			return collideBox(bodyA, box, bodyB, roundedB)
		}
	}

	return nil, false
}

func collidePlane(planeBody *actor.RigidBody, plane *actor.Plane, object *actor.RigidBody) (*constraint.ContactConstraint, bool) {
	normal, distance := plane.World(planeBody.Transform)

	collision, result := object.Shape.CollideWithPlane(normal, distance, object.Transform)
	if !collision {
		return nil, false
	}

	points := make([]constraint.ContactPoint, 0, len(result))
	for _, point := range result {
		points = append(points, constraint.ContactPoint{Position: point.Position, Penetration: point.Penetration})
	}

	return &constraint.ContactConstraint{
		BodyA:  planeBody,
		BodyB:  object,
		Normal: normal,
		Points: points,
	}, true
}

func collideRounded(bodyA *actor.RigidBody, shapeA actor.Rounded, bodyB *actor.RigidBody, shapeB actor.Rounded) (*constraint.ContactConstraint, bool) {
	a1, b1, radiusA := shapeA.Core(bodyA.Transform)
	a2, b2, radiusB := shapeB.Core(bodyB.Transform)

	pA, pB := closestPointsSegments(a1, b1, a2, b2)
	delta := pB.Sub(pA)
	distance := delta.Len()
	penetration := radiusA + radiusB - distance
	if penetration <= 0 {
		return nil, false
	}

	normal := mgl64.Vec3{0, 1, 0}
	if distance > 1e-9 {
		normal = delta.Mul(1.0 / distance)
	}

	return &constraint.ContactConstraint{
		BodyA:  bodyA,
		BodyB:  bodyB,
		Normal: normal,
		Points: []constraint.ContactPoint{{Position: pB.Sub(normal.Mul(radiusB)), Penetration: penetration}},
	}, true
}

func collideBox(boxBody *actor.RigidBody, box *actor.Box, body *actor.RigidBody, shape actor.Rounded) (*constraint.ContactConstraint, bool) {
	a, b, radius := shape.Core(body.Transform)

	p := actor.ClosestPointOnSegment(a, b, boxBody.Transform.Position)
	q := box.ClosestPoint(boxBody.Transform, p)
	for range closestPointIterations {
		p = actor.ClosestPointOnSegment(a, b, q)
		q = box.ClosestPoint(boxBody.Transform, p)
	}

	delta := p.Sub(q)
	distance := delta.Len()

	var normal mgl64.Vec3
	var penetration float64
	if distance > 1e-9 {
		if distance >= radius {
			return nil, false
		}
		normal = delta.Mul(1.0 / distance)
		penetration = radius - distance
	} else {
		// Core inside the box: leave through the shallowest face
		local := boxBody.Transform.InverseRotation.Rotate(p.Sub(boxBody.Transform.Position))
		depth := math.MaxFloat64
		for axis := 0; axis < 3; axis++ {
			if d := box.HalfExtents[axis] - math.Abs(local[axis]); d < depth {
				depth = d
				normal = mgl64.Vec3{}
				normal[axis] = math.Copysign(1, local[axis])
			}
		}
		normal = boxBody.Transform.Rotation.Rotate(normal)
		penetration = depth + radius
	}

	return &constraint.ContactConstraint{
		BodyA:  boxBody,
		BodyB:  body,
		Normal: normal,
		Points: []constraint.ContactPoint{{Position: q, Penetration: penetration}},
	}, true
}

// closestPointsSegments returns the closest points of segments [p1,q1] and [p2,q2]
func closestPointsSegments(p1, q1, p2, q2 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	const epsilon = 1e-12

	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a <= epsilon && e <= epsilon:
		return p1, p2
	case a <= epsilon:
		t = mgl64.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= epsilon {
			s = mgl64.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denominator := a*e - b*b
			if denominator > epsilon {
				s = mgl64.Clamp((b*f-c*e)/denominator, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = mgl64.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = mgl64.Clamp((b-c)/a, 0, 1)
			}
		}
	}

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}
