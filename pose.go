package motor

import "github.com/go-gl/mathgl/mgl64"

// Pose is a world position and orientation
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// PoseSource is read-only
type PoseSource interface {
	Pose() Pose
}

// Transform is a mutable pose, such as the camera follow transform
type Transform interface {
	PoseSource
	SetPose(pose Pose)
}

// TransformRef is a plain Transform shared between the controller and a camera rig
type TransformRef struct {
	pose Pose
}

func NewTransformRef(pose Pose) *TransformRef {
	if pose.Rotation == (mgl64.Quat{}) {
		pose.Rotation = mgl64.QuatIdent()
	}
	return &TransformRef{pose: pose}
}

func (t *TransformRef) Pose() Pose {
	return t.pose
}

func (t *TransformRef) SetPose(pose Pose) {
	t.pose = pose
}

// BodyAnchor is a point fixed above the body root, the default camera target
type BodyAnchor struct {
	Body   Body
	Offset float64
}

func (a BodyAnchor) Pose() Pose {
	rotation := a.Body.Rotation()
	return Pose{
		Position: a.Body.Position().Add(rotation.Rotate(Up.Mul(a.Offset))),
		Rotation: rotation,
	}
}
