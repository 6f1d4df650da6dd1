package camera

import (
	"math"

	"github.com/akmonengine/motor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_ORBIT_SPEED = 5.0
	MIN_PITCH           = -80.0
	MAX_PITCH           = 80.0
)

// Rig orbits a camera around a follow transform. Angles are in degrees, a positive
// pitch looks down on the target.
type Rig struct {
	Follow     motor.PoseSource
	OrbitSpeed float64

	yaw      float64
	pitch    float64
	distance float64
	manual   bool

	position mgl64.Vec3
	rotation mgl64.Quat
	updates  uint64
}

var _ motor.CameraRig = (*Rig)(nil)

func NewRig(follow motor.PoseSource, distance float64) *Rig {
	r := &Rig{
		Follow:     follow,
		OrbitSpeed: DEFAULT_ORBIT_SPEED,
		pitch:      20,
		distance:   max(0, distance),
		rotation:   mgl64.QuatIdent(),
	}
	r.Update()

	return r
}

func (r *Rig) ManualUpdate() bool {
	return r.manual
}

func (r *Rig) SetManualUpdate(manual bool) {
	r.manual = manual
}

// LateUpdate is the per-frame automatic path, skipped once the rig is pumped manually
func (r *Rig) LateUpdate() {
	if !r.manual {
		r.Update()
	}
}

// Update places the camera behind the follow point at the current angles and distance
func (r *Rig) Update() {
	r.updates++
	if r.Follow == nil {
		return
	}

	target := r.Follow.Pose().Position
	r.rotation = motor.YawRotation(r.yaw).Mul(mgl64.QuatRotate(mgl64.DegToRad(r.pitch), mgl64.Vec3{1, 0, 0}))
	r.position = target.Sub(r.rotation.Rotate(motor.Forward).Mul(r.distance))
}

func (r *Rig) Yaw() float64 {
	return r.yaw
}

func (r *Rig) Pitch() float64 {
	return r.pitch
}

func (r *Rig) SetYaw(yaw float64) {
	r.yaw = wrapDegrees(yaw)
}

func (r *Rig) SetPitch(pitch float64) {
	r.pitch = mgl64.Clamp(pitch, MIN_PITCH, MAX_PITCH)
}

// Orbit turns the camera by steps of OrbitSpeed degrees
func (r *Rig) Orbit(yawSteps, pitchSteps float64) {
	r.SetYaw(r.yaw + yawSteps*r.OrbitSpeed)
	r.SetPitch(r.pitch + pitchSteps*r.OrbitSpeed)
}

func (r *Rig) Distance() float64 {
	return r.distance
}

func (r *Rig) SetDistance(distance float64) {
	r.distance = max(0, distance)
}

func (r *Rig) Position() mgl64.Vec3 {
	return r.position
}

func (r *Rig) Rotation() mgl64.Quat {
	return r.rotation
}

// Updates counts the recomputations since creation
func (r *Rig) Updates() uint64 {
	return r.updates
}

// wrapDegrees maps an angle to (-180, 180]
func wrapDegrees(angle float64) float64 {
	angle = math.Mod(angle, 360)
	switch {
	case angle > 180:
		angle -= 360
	case angle <= -180:
		angle += 360
	}
	return angle
}
