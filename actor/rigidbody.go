package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

// ForceMode selects how AddForce and AddTorque affect the body
type ForceMode int

const (
	// ForceModeForce accumulates a continuous force, applied at the next integration
	// as Δv = F·dt/m (Δω = I⁻¹·τ·dt for torques)
	ForceModeForce ForceMode = iota

	// ForceModeVelocityChange changes the velocity immediately, ignoring mass and inertia
	ForceModeVelocityChange
)

// DefaultMaxAngularVelocity caps the angular speed of dynamic bodies (rad/s)
const DefaultMaxAngularVelocity = 7.0

type Material struct {
	Density     float64
	mass        float64
	Restitution float64 // 0= no rebound, 1= perfect restitution

	StaticFriction  float64
	DynamicFriction float64
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion
	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3 // Linear velocity (m/s)

	// Angular motion
	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3 // rad/s
	InertiaLocal            mgl64.Mat3
	InverseInertiaLocal     mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	// Drag is an exponential linear damping rate (1/s), AngularDrag the angular one
	Drag               float64
	AngularDrag        float64
	MaxAngularVelocity float64

	UseGravity     bool
	FreezeRotation bool

	// Layer is the collision layer index (0-31) tested against ray masks
	Layer     int
	IsTrigger bool

	// Physical properties
	Material Material
	BodyType BodyType // Dynamic or Static

	// Collision shape
	Shape ShapeInterface
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static)
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, density float64) *RigidBody {
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.InverseRotation = transform.Rotation.Inverse()

	rb := &RigidBody{
		PreviousTransform:  transform,
		Transform:          transform,
		Shape:              shape,
		BodyType:           bodyType,
		UseGravity:         true,
		MaxAngularVelocity: DefaultMaxAngularVelocity,
	}

	if bodyType == BodyTypeStatic {
		// Static bodies have infinite mass
		rb.Material = Material{
			Density: 0,
			mass:    math.Inf(1),
		}
		rb.UseGravity = false
	} else {
		rb.Material = Material{
			Density: density,
			mass:    shape.ComputeMass(density),
		}
	}

	rb.InertiaLocal = shape.ComputeInertia(rb.Material.mass)
	rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
	rb.Shape.ComputeAABB(rb.Transform)

	return rb
}

// Integrate predicts the next transform from the current velocities and accumulated forces
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.Rotation = rb.Transform.Rotation

	// Linear
	if rb.UseGravity {
		rb.Velocity = rb.Velocity.Add(gravity.Mul(dt))
	}
	rb.Velocity = rb.Velocity.Add(rb.accumulatedForce.Mul(dt / rb.Material.GetMass()))
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Drag * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	// Angular
	if rb.FreezeRotation {
		rb.AngularVelocity = mgl64.Vec3{}
	} else {
		angularAccel := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
		rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
		rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.AngularDrag * dt))
		rb.clampAngularVelocity()

		omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
		qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
		rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
		rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
	}

	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
}

// Update derives the velocities from the solved positions
func (rb *RigidBody) Update(dt float64) {
	if rb.BodyType == BodyTypeStatic {
		return
	}

	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / dt)
	if rb.FreezeRotation {
		return
	}

	qDelta := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate()).Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}
}

// AddForce applies a linear force according to mode
func (rb *RigidBody) AddForce(force mgl64.Vec3, mode ForceMode) {
	if rb.BodyType == BodyTypeStatic {
		return
	}

	switch mode {
	case ForceModeVelocityChange:
		rb.Velocity = rb.Velocity.Add(force)
	default:
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// AddTorque applies a torque according to mode. Frozen bodies ignore torques.
func (rb *RigidBody) AddTorque(torque mgl64.Vec3, mode ForceMode) {
	if rb.BodyType == BodyTypeStatic || rb.FreezeRotation {
		return
	}

	switch mode {
	case ForceModeVelocityChange:
		rb.AngularVelocity = rb.AngularVelocity.Add(torque)
		rb.clampAngularVelocity()
	default:
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// SetPosition teleports the body, keeping the previous transform in sync so the move
// does not turn into velocity at the next Update
func (rb *RigidBody) SetPosition(position mgl64.Vec3) {
	rb.Transform.Position = position
	rb.PreviousTransform.Position = position
	rb.Shape.ComputeAABB(rb.Transform)
}

func (rb *RigidBody) SetRotation(rotation mgl64.Quat) {
	rotation = rotation.Normalize()
	rb.Transform.Rotation = rotation
	rb.Transform.InverseRotation = rotation.Inverse()
	rb.PreviousTransform.Rotation = rotation
	rb.Shape.ComputeAABB(rb.Transform)
}

func (rb *RigidBody) clampAngularVelocity() {
	if rb.MaxAngularVelocity <= 0 {
		return
	}
	if speed := rb.AngularVelocity.Len(); speed > rb.MaxAngularVelocity {
		rb.AngularVelocity = rb.AngularVelocity.Mul(rb.MaxAngularVelocity / speed)
	}
}

// GetInverseInertiaWorld returns I_world^(-1) = R * I_local^(-1) * R^T, zero for static or frozen bodies
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType == BodyTypeStatic || rb.FreezeRotation {
		return mgl64.Mat3{}
	}

	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// InverseMass is zero for static bodies
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType == BodyTypeStatic {
		return 0
	}
	return 1.0 / rb.Material.GetMass()
}

// Raycast intersects a world-space ray with the body's shape
func (rb *RigidBody) Raycast(origin, direction mgl64.Vec3, maxDistance float64) (RayHit, bool) {
	localOrigin := rb.Transform.InverseRotation.Rotate(origin.Sub(rb.Transform.Position))
	localDirection := rb.Transform.InverseRotation.Rotate(direction)

	hit, ok := rb.Shape.Raycast(localOrigin, localDirection, maxDistance)
	if !ok {
		return RayHit{}, false
	}

	hit.Point = rb.Transform.Rotation.Rotate(hit.Point).Add(rb.Transform.Position)
	hit.Normal = rb.Transform.Rotation.Rotate(hit.Normal)
	return hit, true
}
