package motor

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl64"
)

// ForceMode selects how a force or torque is handed to the physics body
type ForceMode int

const (
	// ForceModeVelocityChange changes the velocity at once, ignoring mass
	ForceModeVelocityChange ForceMode = iota
	// ForceModeForce is a continuous force integrated over the physics step
	ForceModeForce
)

// LayerMask filters the ground query, bit i stands for layer i
type LayerMask uint32

// AllLayers matches every layer
const AllLayers LayerMask = 0xFFFFFFFF

// Body is the physics collaborator state read and written by the stages.
// Position is the root pivot of the character, at its feet.
type Body interface {
	Position() mgl64.Vec3
	SetPosition(position mgl64.Vec3)
	Rotation() mgl64.Quat
	SetRotation(rotation mgl64.Quat)
	Velocity() mgl64.Vec3
	SetVelocity(velocity mgl64.Vec3)
	AngularVelocity() mgl64.Vec3
	FreezeRotation() bool
	SetFreezeRotation(freeze bool)
	Drag() float64
	SetDrag(drag float64)
	AngularDrag() float64
	SetAngularDrag(drag float64)
	AddForce(force mgl64.Vec3, mode ForceMode)
	AddTorque(torque mgl64.Vec3, mode ForceMode)
}

// Collider exposes the world-space center of the collision shape bounds
type Collider interface {
	BoundsCenter() mgl64.Vec3
}

// RaycastHit is the surface point found by a SpatialQuery
type RaycastHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// SpatialQuery casts rays against the scene, ignoring trigger volumes
type SpatialQuery interface {
	Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool)
}

// InputSource is polled once per frame
type InputSource interface {
	// Axis returns the horizontal and vertical move intent, each in [-1, 1]
	Axis() (x, y float64)
	// JumpPressed reports a jump press since the previous poll
	JumpPressed() bool
}

// CameraRig is the camera composition subsystem
type CameraRig interface {
	ManualUpdate() bool
	SetManualUpdate(manual bool)
	// Update recomputes the camera from its follow transform
	Update()
	// Yaw is the camera world yaw in degrees
	Yaw() float64
	SetDistance(distance float64)
}

// RenderToggle shows or hides the character's own visuals
type RenderToggle interface {
	SetVisible(visible bool)
}

// Binding holds an optional collaborator
type Binding[T any] struct {
	value T
	bound bool
}

// Bind wraps value; a nil value stays unbound, including a nil pointer held by an interface
func Bind[T any](value T) Binding[T] {
	if isNil(any(value)) {
		return Binding[T]{}
	}
	return Binding[T]{value: value, bound: true}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (b Binding[T]) Get() (T, bool) {
	return b.value, b.bound
}

func (b Binding[T]) Bound() bool {
	return b.bound
}

// Refs lists every collaborator of a Controller. Stages skip their work when the
// references they need are unbound.
type Refs struct {
	Body     Binding[Body]
	Collider Binding[Collider]
	Query    Binding[SpatialQuery]
	Input    Binding[InputSource]
	Camera   Binding[CameraRig]
	Visuals  Binding[RenderToggle]
	// Follow is the transform the camera rig follows, Target the pose it chases
	Follow Binding[Transform]
	Target Binding[PoseSource]
}
