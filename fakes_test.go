package motor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type appliedForce struct {
	vector mgl64.Vec3
	mode   ForceMode
}

// fakeBody applies velocity changes at once and records every force and torque
type fakeBody struct {
	position        mgl64.Vec3
	rotation        mgl64.Quat
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3
	freeze          bool
	drag            float64
	angularDrag     float64

	forces           []appliedForce
	torques          []appliedForce
	freezeWrites     int
	dragWrites       int
	angularDragWrite int
}

func newFakeBody(position mgl64.Vec3) *fakeBody {
	return &fakeBody{position: position, rotation: mgl64.QuatIdent()}
}

func (b *fakeBody) Position() mgl64.Vec3            { return b.position }
func (b *fakeBody) SetPosition(position mgl64.Vec3) { b.position = position }
func (b *fakeBody) Rotation() mgl64.Quat            { return b.rotation }
func (b *fakeBody) SetRotation(rotation mgl64.Quat) { b.rotation = rotation }
func (b *fakeBody) Velocity() mgl64.Vec3            { return b.velocity }
func (b *fakeBody) SetVelocity(velocity mgl64.Vec3) { b.velocity = velocity }
func (b *fakeBody) AngularVelocity() mgl64.Vec3     { return b.angularVelocity }
func (b *fakeBody) FreezeRotation() bool            { return b.freeze }
func (b *fakeBody) Drag() float64                   { return b.drag }
func (b *fakeBody) AngularDrag() float64            { return b.angularDrag }

func (b *fakeBody) SetFreezeRotation(freeze bool) {
	b.freeze = freeze
	b.freezeWrites++
}

func (b *fakeBody) SetDrag(drag float64) {
	b.drag = drag
	b.dragWrites++
}

func (b *fakeBody) SetAngularDrag(drag float64) {
	b.angularDrag = drag
	b.angularDragWrite++
}

func (b *fakeBody) AddForce(force mgl64.Vec3, mode ForceMode) {
	b.forces = append(b.forces, appliedForce{vector: force, mode: mode})
	if mode == ForceModeVelocityChange {
		b.velocity = b.velocity.Add(force)
	}
}

func (b *fakeBody) AddTorque(torque mgl64.Vec3, mode ForceMode) {
	b.torques = append(b.torques, appliedForce{vector: torque, mode: mode})
	if mode == ForceModeVelocityChange {
		b.angularVelocity = b.angularVelocity.Add(torque)
	}
}

// fakeCollider keeps its center at a fixed height above the body root
type fakeCollider struct {
	body   *fakeBody
	height float64
}

func (c fakeCollider) BoundsCenter() mgl64.Vec3 {
	return c.body.position.Add(Up.Mul(c.height))
}

type raycastCall struct {
	origin      mgl64.Vec3
	direction   mgl64.Vec3
	maxDistance float64
	mask        LayerMask
}

// fakeGround is an infinite horizontal surface at height
type fakeGround struct {
	height float64
	calls  []raycastCall
}

func (g *fakeGround) Raycast(origin, direction mgl64.Vec3, maxDistance float64, mask LayerMask) (RaycastHit, bool) {
	g.calls = append(g.calls, raycastCall{origin, direction, maxDistance, mask})
	if direction.Y() >= 0 || origin.Y() < g.height {
		return RaycastHit{}, false
	}

	distance := (origin.Y() - g.height) / -direction.Y()
	if distance > maxDistance {
		return RaycastHit{}, false
	}
	return RaycastHit{
		Point:    origin.Add(direction.Mul(distance)),
		Normal:   Up,
		Distance: distance,
	}, true
}

type fakeInput struct {
	x, y float64
	jump bool
}

func (i *fakeInput) Axis() (float64, float64) { return i.x, i.y }

func (i *fakeInput) JumpPressed() bool {
	pressed := i.jump
	i.jump = false
	return pressed
}

type fakeCamera struct {
	manual       bool
	manualWrites int
	updates      int
	yaw          float64
	distance     float64
	distances    []float64
}

func (c *fakeCamera) ManualUpdate() bool { return c.manual }
func (c *fakeCamera) Update()            { c.updates++ }
func (c *fakeCamera) Yaw() float64       { return c.yaw }

func (c *fakeCamera) SetManualUpdate(manual bool) {
	c.manual = manual
	c.manualWrites++
}

func (c *fakeCamera) SetDistance(distance float64) {
	c.distance = distance
	c.distances = append(c.distances, distance)
}

type fakeVisuals struct {
	visible bool
	writes  int
}

func (v *fakeVisuals) SetVisible(visible bool) {
	v.visible = visible
	v.writes++
}

// rig bundles a fully bound controller and its fakes
type rig struct {
	controller *Controller
	body       *fakeBody
	ground     *fakeGround
	input      *fakeInput
	camera     *fakeCamera
	visuals    *fakeVisuals
	follow     *TransformRef
}

func newRig(cfg Config, groundHeight float64) *rig {
	body := newFakeBody(mgl64.Vec3{0, 0, 0})
	r := &rig{
		body:    body,
		ground:  &fakeGround{height: groundHeight},
		input:   &fakeInput{},
		camera:  &fakeCamera{},
		visuals: &fakeVisuals{},
		follow:  NewTransformRef(Pose{}),
	}

	controller, err := New(cfg, Refs{
		Body:     Bind[Body](body),
		Collider: Bind[Collider](fakeCollider{body: body, height: 1}),
		Query:    Bind[SpatialQuery](r.ground),
		Input:    Bind[InputSource](r.input),
		Camera:   Bind[CameraRig](r.camera),
		Visuals:  Bind[RenderToggle](r.visuals),
		Follow:   Bind[Transform](r.follow),
		Target:   Bind[PoseSource](BodyAnchor{Body: body, Offset: cfg.FollowOffset}),
	})
	if err != nil {
		panic(err)
	}
	r.controller = controller

	return r
}

func (r *rig) step(dt float64) {
	r.controller.StepFrame(dt)
	r.controller.StepTick(dt)
}

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}
