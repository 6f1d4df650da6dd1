package constraint

import (
	"math"

	"github.com/akmonengine/motor/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCompliance controls soft constraint stiffness for contact resolution.
	// Lower values = stiffer contacts (less penetration, potential jitter)
	// Higher values = softer contacts (more penetration, smoother)
	DefaultCompliance = 1e-7

	penetrationSlop = 1e-8
)

type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

// ContactConstraint pushes BodyB away from BodyA along Normal (pointing from A to B)
type ContactConstraint struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Points []ContactPoint
	Normal mgl64.Vec3
}

// effectiveMass is the inverse mass seen along direction at the lever arms rA and rB
func effectiveMass(bodyA, bodyB *actor.RigidBody, rA, rB, direction mgl64.Vec3) float64 {
	rACrossN := rA.Cross(direction)
	rBCrossN := rB.Cross(direction)

	angularA := bodyA.GetInverseInertiaWorld().Mul3x1(rACrossN).Dot(rACrossN)
	angularB := bodyB.GetInverseInertiaWorld().Mul3x1(rBCrossN).Dot(rBCrossN)

	return bodyA.InverseMass() + bodyB.InverseMass() + angularA + angularB
}

// SolvePosition resolves penetration (XPBD, one global correction per manifold)
func (c *ContactConstraint) SolvePosition(dt float64) {
	if len(c.Points) == 0 {
		return
	}

	bodyA, bodyB := c.BodyA, c.BodyB

	var totalWeight, totalPenetration float64
	var deepest []ContactPoint
	for _, point := range c.Points {
		if point.Penetration <= penetrationSlop {
			continue
		}
		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)

		totalWeight += effectiveMass(bodyA, bodyB, rA, rB, c.Normal)
		totalPenetration += point.Penetration
		deepest = append(deepest, point)
	}
	if totalWeight <= 1e-8 {
		return
	}

	alphaTilde := DefaultCompliance / (dt * dt)
	deltaLambda := -totalPenetration / (totalWeight + alphaTilde)
	impulse := c.Normal.Mul(deltaLambda)

	bodyA.Transform.Position = bodyA.Transform.Position.Add(impulse.Mul(bodyA.InverseMass()))
	bodyB.Transform.Position = bodyB.Transform.Position.Sub(impulse.Mul(bodyB.InverseMass()))

	// One rotation correction per body, from the accumulated moments
	var torqueA, torqueB mgl64.Vec3
	for _, point := range deepest {
		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)
		torqueA = torqueA.Add(rA.Cross(impulse))
		torqueB = torqueB.Add(rB.Cross(impulse.Mul(-1)))
	}

	rotate(bodyA, bodyA.GetInverseInertiaWorld().Mul3x1(torqueA))
	rotate(bodyB, bodyB.GetInverseInertiaWorld().Mul3x1(torqueB))

	bodyA.Shape.ComputeAABB(bodyA.Transform)
	bodyB.Shape.ComputeAABB(bodyB.Transform)
}

// rotate applies a small rotation δθ as q_delta ≈ [1, δθ/2]
func rotate(body *actor.RigidBody, deltaRotation mgl64.Vec3) {
	if body.BodyType == actor.BodyTypeStatic || body.FreezeRotation || deltaRotation.Len() <= 1e-10 {
		return
	}

	qDelta := mgl64.Quat{W: 1.0, V: deltaRotation.Mul(0.5)}.Normalize()
	body.Transform.Rotation = qDelta.Mul(body.Transform.Rotation).Normalize()
	body.Transform.InverseRotation = body.Transform.Rotation.Inverse()
}

// SolveVelocity applies restitution and Coulomb friction
func (c *ContactConstraint) SolveVelocity(dt float64) {
	if len(c.Points) == 0 {
		return
	}

	bodyA, bodyB := c.BodyA, c.BodyB
	invMassA, invMassB := bodyA.InverseMass(), bodyB.InverseMass()
	inertiaA, inertiaB := bodyA.GetInverseInertiaWorld(), bodyB.GetInverseInertiaWorld()

	restitution := ComputeRestitution(bodyA.Material, bodyB.Material)
	staticFriction := ComputeStaticFriction(bodyA.Material, bodyB.Material)
	dynamicFriction := ComputeDynamicFriction(bodyA.Material, bodyB.Material)

	var linearA, linearB, angularA, angularB mgl64.Vec3

	applyImpulse := func(impulse, rA, rB mgl64.Vec3) {
		linearA = linearA.Sub(impulse.Mul(invMassA))
		linearB = linearB.Add(impulse.Mul(invMassB))
		angularA = angularA.Add(inertiaA.Mul3x1(rA.Cross(impulse.Mul(-1))))
		angularB = angularB.Add(inertiaB.Mul3x1(rB.Cross(impulse)))
	}

	for _, point := range c.Points {
		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)

		vA := bodyA.Velocity.Add(bodyA.AngularVelocity.Cross(rA))
		vB := bodyB.Velocity.Add(bodyB.AngularVelocity.Cross(rB))
		relativeVelocity := vB.Sub(vA)
		normalVelocity := relativeVelocity.Dot(c.Normal)

		vAPrev := bodyA.PresolveVelocity.Add(bodyA.PresolveAngularVelocity.Cross(rA))
		vBPrev := bodyB.PresolveVelocity.Add(bodyB.PresolveAngularVelocity.Cross(rB))
		normalVelocityPrev := vBPrev.Sub(vAPrev).Dot(c.Normal)

		massNormal := effectiveMass(bodyA, bodyB, rA, rB, c.Normal)
		if massNormal < 1e-10 {
			continue
		}

		// Never pull the bodies together
		lambdaNormal := math.Max(0, (-restitution*normalVelocityPrev-normalVelocity)/massNormal)
		applyImpulse(c.Normal.Mul(lambdaNormal), rA, rB)

		if lambdaNormal == 0 {
			continue
		}

		tangentVelocity := relativeVelocity.Sub(c.Normal.Mul(normalVelocity))
		tangentSpeed := tangentVelocity.Len()
		if tangentSpeed <= 1e-6 {
			continue
		}
		tangent := tangentVelocity.Mul(1.0 / tangentSpeed)

		massTangent := effectiveMass(bodyA, bodyB, rA, rB, tangent)
		if massTangent < 1e-10 {
			continue
		}

		lambdaTangent := -tangentSpeed / massTangent
		if math.Abs(lambdaTangent) > staticFriction*lambdaNormal {
			lambdaTangent = -dynamicFriction * lambdaNormal
		}
		applyImpulse(tangent.Mul(lambdaTangent), rA, rB)
	}

	bodyA.Velocity = bodyA.Velocity.Add(linearA)
	bodyB.Velocity = bodyB.Velocity.Add(linearB)
	if !bodyA.FreezeRotation {
		bodyA.AngularVelocity = bodyA.AngularVelocity.Add(angularA)
	}
	if !bodyB.FreezeRotation {
		bodyB.AngularVelocity = bodyB.AngularVelocity.Add(angularB)
	}

	clampSmallVelocities(bodyA)
	clampSmallVelocities(bodyB)
}
