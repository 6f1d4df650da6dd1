package bind

import (
	"github.com/akmonengine/motor"
	"github.com/akmonengine/motor/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Body adapts a rigid body to the controller. Pivot is the character root relative to
// the body center, in body space.
type Body struct {
	RigidBody *actor.RigidBody
	Pivot     mgl64.Vec3
}

var (
	_ motor.Body     = (*Body)(nil)
	_ motor.Collider = (*Body)(nil)
)

// NewBody hands gravity over to the controller, which applies it itself
func NewBody(rigidBody *actor.RigidBody, pivot mgl64.Vec3) *Body {
	rigidBody.UseGravity = false
	return &Body{RigidBody: rigidBody, Pivot: pivot}
}

// FeetPivot is the lowest point of a capsule or sphere, the root of a standing character
func FeetPivot(shape actor.ShapeInterface) mgl64.Vec3 {
	switch s := shape.(type) {
	case *actor.Capsule:
		return mgl64.Vec3{0, -(s.HalfHeight + s.Radius), 0}
	case *actor.Sphere:
		return mgl64.Vec3{0, -s.Radius, 0}
	case *actor.Box:
		return mgl64.Vec3{0, -s.HalfExtents.Y(), 0}
	default:
		return mgl64.Vec3{}
	}
}

func (b *Body) Position() mgl64.Vec3 {
	transform := b.RigidBody.Transform
	return transform.Position.Add(transform.Rotation.Rotate(b.Pivot))
}

func (b *Body) SetPosition(position mgl64.Vec3) {
	b.RigidBody.SetPosition(position.Sub(b.RigidBody.Transform.Rotation.Rotate(b.Pivot)))
}

func (b *Body) Rotation() mgl64.Quat {
	return b.RigidBody.Transform.Rotation
}

func (b *Body) SetRotation(rotation mgl64.Quat) {
	b.RigidBody.SetRotation(rotation)
}

func (b *Body) Velocity() mgl64.Vec3 {
	return b.RigidBody.Velocity
}

func (b *Body) SetVelocity(velocity mgl64.Vec3) {
	b.RigidBody.Velocity = velocity
}

func (b *Body) AngularVelocity() mgl64.Vec3 {
	return b.RigidBody.AngularVelocity
}

func (b *Body) FreezeRotation() bool {
	return b.RigidBody.FreezeRotation
}

func (b *Body) SetFreezeRotation(freeze bool) {
	b.RigidBody.FreezeRotation = freeze
	if freeze {
		b.RigidBody.AngularVelocity = mgl64.Vec3{}
	}
}

func (b *Body) Drag() float64 {
	return b.RigidBody.Drag
}

func (b *Body) SetDrag(drag float64) {
	b.RigidBody.Drag = drag
}

func (b *Body) AngularDrag() float64 {
	return b.RigidBody.AngularDrag
}

func (b *Body) SetAngularDrag(drag float64) {
	b.RigidBody.AngularDrag = drag
}

func (b *Body) AddForce(force mgl64.Vec3, mode motor.ForceMode) {
	b.RigidBody.AddForce(force, forceMode(mode))
}

func (b *Body) AddTorque(torque mgl64.Vec3, mode motor.ForceMode) {
	b.RigidBody.AddTorque(torque, forceMode(mode))
}

// BoundsCenter is the center of the shape's world bounding box
func (b *Body) BoundsCenter() mgl64.Vec3 {
	return b.RigidBody.Shape.GetAABB().Center()
}

func forceMode(mode motor.ForceMode) actor.ForceMode {
	if mode == motor.ForceModeForce {
		return actor.ForceModeForce
	}
	return actor.ForceModeVelocityChange
}
