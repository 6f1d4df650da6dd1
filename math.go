package motor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the input magnitude under which the character is idle
const Epsilon = 0.001

var (
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// YawOfDirection is the heading of a direction in degrees, 0 along +Z and 90 along +X
func YawOfDirection(direction mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Atan2(direction.X(), direction.Z()))
}

// YawOfQuaternion is the heading of the rotated forward axis in degrees
func YawOfQuaternion(q mgl64.Quat) float64 {
	return YawOfDirection(q.Rotate(Forward))
}

// YawRotation is a rotation of yaw degrees around Up
func YawRotation(yaw float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(yaw), Up)
}

// horizontal drops the vertical component
func horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

func clamp01(t float64) float64 {
	return mgl64.Clamp(t, 0, 1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// nlerp interpolates along the shortest arc and normalizes, t is clamped to [0, 1]
func nlerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = clamp01(t)
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return a.Scale(1 - t).Add(b.Scale(t)).Normalize()
}

// angleBetween is the rotation angle in degrees separating two orientations
func angleBetween(a, b mgl64.Quat) float64 {
	dot := math.Min(math.Abs(a.Normalize().Dot(b.Normalize())), 1)
	return mgl64.RadToDeg(2 * math.Acos(dot))
}

func hasNaN(v mgl64.Vec3) bool {
	return math.IsNaN(v.X()) || math.IsNaN(v.Y()) || math.IsNaN(v.Z()) ||
		math.IsInf(v.X(), 0) || math.IsInf(v.Y(), 0) || math.IsInf(v.Z(), 0)
}
