package motor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestYawOfDirection(t *testing.T) {
	tests := []struct {
		direction mgl64.Vec3
		want      float64
	}{
		{mgl64.Vec3{0, 0, 1}, 0},
		{mgl64.Vec3{1, 0, 0}, 90},
		{mgl64.Vec3{-1, 0, 0}, -90},
		{mgl64.Vec3{0, 0, -1}, 180},
		{mgl64.Vec3{1, 5, 1}, 45},
	}

	for _, tt := range tests {
		if got := YawOfDirection(tt.direction); !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("YawOfDirection(%v) = %v, want %v", tt.direction, got, tt.want)
		}
	}
}

func TestYawRotation_RoundTrip(t *testing.T) {
	for _, yaw := range []float64{-135, -30, 0, 45, 90, 170} {
		if got := YawOfQuaternion(YawRotation(yaw)); !almostEqual(got, yaw, 1e-9) {
			t.Errorf("YawOfQuaternion(YawRotation(%v)) = %v", yaw, got)
		}
	}
}

func TestNlerp(t *testing.T) {
	a := mgl64.QuatIdent()
	b := YawRotation(90)

	if got := nlerp(a, b, 0); got != a {
		t.Errorf("nlerp(t=0) = %v, want %v", got, a)
	}
	if got := angleBetween(nlerp(a, b, 1), b); !almostEqual(got, 0, 1e-6) {
		t.Errorf("nlerp(t=1) is %v degrees from the target", got)
	}
	if got := angleBetween(nlerp(a, b, 2), b); !almostEqual(got, 0, 1e-6) {
		t.Errorf("nlerp(t=2) overshoots by %v degrees", got)
	}

	// Takes the short way around a negated target
	half := nlerp(a, b.Scale(-1), 0.5)
	if got := angleBetween(half, a); !almostEqual(got, 45, 1e-6) {
		t.Errorf("nlerp halfway = %v degrees, want 45", got)
	}
}

func TestBinding(t *testing.T) {
	var nilBody Body
	if Bind(nilBody).Bound() {
		t.Error("a nil interface was bound")
	}

	body := newFakeBody(mgl64.Vec3{})
	binding := Bind[Body](body)
	got, ok := binding.Get()
	if !ok || got != Body(body) {
		t.Errorf("Get() = %v, %v, want the bound body", got, ok)
	}

	var unbound Binding[Body]
	if _, ok := unbound.Get(); ok {
		t.Error("zero Binding reports bound")
	}

	var nilCamera *fakeCamera
	if Bind[CameraRig](nilCamera).Bound() {
		t.Error("a nil *fakeCamera was bound")
	}
	var nilFakeBody *fakeBody
	if Bind[Body](nilFakeBody).Bound() {
		t.Error("a nil *fakeBody was bound")
	}
	var nilFollow *TransformRef
	if Bind[Transform](nilFollow).Bound() {
		t.Error("a nil *TransformRef was bound")
	}
	if !Bind[Collider](fakeCollider{}).Bound() {
		t.Error("a zero struct value was left unbound")
	}
}

func TestStepTick_NilPointerReferences(t *testing.T) {
	var nilBody *fakeBody
	var nilCamera *fakeCamera
	var nilFollow *TransformRef

	t.Run("no body", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strafe = true

		controller, err := New(cfg, Refs{
			Body:   Bind[Body](nilBody),
			Input:  Bind[InputSource](&fakeInput{x: 1}),
			Camera: Bind[CameraRig](nilCamera),
			Follow: Bind[Transform](nilFollow),
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		for range 3 {
			controller.StepFrame(0.02)
			controller.StepTick(0.02)
		}

		if controller.State().Grounded {
			t.Error("grounded = true without a body")
		}
	})

	t.Run("no camera", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Strafe = true
		body := newFakeBody(mgl64.Vec3{})

		controller, err := New(cfg, Refs{
			Body:     Bind[Body](body),
			Collider: Bind[Collider](fakeCollider{body: body, height: 1}),
			Query:    Bind[SpatialQuery](&fakeGround{}),
			Input:    Bind[InputSource](&fakeInput{y: 1}),
			Camera:   Bind[CameraRig](nilCamera),
			Follow:   Bind[Transform](nilFollow),
			Target:   Bind[PoseSource](BodyAnchor{Body: body}),
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		for range 3 {
			controller.StepFrame(0.02)
			controller.StepTick(0.02)
		}

		if !controller.State().Grounded {
			t.Error("grounded = false on the ground")
		}
		if hasNaN(body.velocity) {
			t.Errorf("velocity = %v", body.velocity)
		}
	})
}

func TestBodyAnchor(t *testing.T) {
	body := newFakeBody(mgl64.Vec3{1, 2, 3})
	body.rotation = mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 0, 1})

	pose := BodyAnchor{Body: body, Offset: 2}.Pose()

	if !vec3AlmostEqual(pose.Position, mgl64.Vec3{-1, 2, 3}, 1e-9) {
		t.Errorf("anchor position = %v, want (-1, 2, 3)", pose.Position)
	}
}
