package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func mat3Equal(a, b mgl64.Mat3, tolerance float64) bool {
	for i := range 9 {
		if !almostEqual(a[i], b[i], tolerance) {
			return false
		}
	}
	return true
}

// =============================================================================
// Mass and Inertia Tests
// =============================================================================

func TestComputeMass(t *testing.T) {
	tests := []struct {
		name     string
		shape    ShapeInterface
		density  float64
		expected float64
	}{
		{"unit box", &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, 3, 3},
		{"box", &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}, 1, 48},
		{"sphere", &Sphere{Radius: 2}, 1, 32.0 / 3.0 * math.Pi},
		{"capsule", &Capsule{Radius: 1, HalfHeight: 1}, 1, 2*math.Pi + 4.0/3.0*math.Pi},
		{"flat capsule is a sphere", &Capsule{Radius: 1}, 1, 4.0 / 3.0 * math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.ComputeMass(tt.density); !almostEqual(got, tt.expected, 1e-10) {
				t.Errorf("ComputeMass() = %v, want %v", got, tt.expected)
			}
		})
	}

	if !math.IsInf((&Plane{}).ComputeMass(1), 1) {
		t.Error("plane mass is finite")
	}
}

func TestComputeInertia(t *testing.T) {
	tests := []struct {
		name     string
		shape    ShapeInterface
		mass     float64
		expected mgl64.Mat3
	}{
		{
			name:     "cube",
			shape:    &Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
			mass:     6,
			expected: mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1},
		},
		{
			name:     "sphere",
			shape:    &Sphere{Radius: 1},
			mass:     5,
			expected: mgl64.Mat3{2, 0, 0, 0, 2, 0, 0, 0, 2},
		},
		{
			name:     "flat capsule matches a sphere",
			shape:    &Capsule{Radius: 1},
			mass:     5,
			expected: mgl64.Mat3{2, 0, 0, 0, 2, 0, 0, 0, 2},
		},
		{
			name:     "plane",
			shape:    &Plane{Normal: mgl64.Vec3{0, 1, 0}},
			mass:     math.Inf(1),
			expected: mgl64.Mat3{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.ComputeInertia(tt.mass); !mat3Equal(got, tt.expected, 1e-10) {
				t.Errorf("ComputeInertia() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCapsuleInertia_TallerSpinsEasierAroundY(t *testing.T) {
	inertia := (&Capsule{Radius: 0.4, HalfHeight: 0.5}).ComputeInertia(1)

	if inertia.At(1, 1) >= inertia.At(0, 0) {
		t.Errorf("Iy = %v, want below Ix = %v", inertia.At(1, 1), inertia.At(0, 0))
	}
	if inertia.At(0, 0) != inertia.At(2, 2) {
		t.Errorf("Ix = %v, Iz = %v, want equal", inertia.At(0, 0), inertia.At(2, 2))
	}
}

// =============================================================================
// AABB Tests
// =============================================================================

func TestComputeAABB(t *testing.T) {
	quarterTurnZ := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})

	tests := []struct {
		name      string
		shape     ShapeInterface
		transform Transform
		min, max  mgl64.Vec3
	}{
		{
			name:      "sphere",
			shape:     &Sphere{Radius: 1},
			transform: Transform{Position: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()},
			min:       mgl64.Vec3{0, 1, 2},
			max:       mgl64.Vec3{2, 3, 4},
		},
		{
			name:      "rotated box",
			shape:     &Box{HalfExtents: mgl64.Vec3{2, 1, 1}},
			transform: Transform{Rotation: quarterTurnZ},
			min:       mgl64.Vec3{-1, -2, -1},
			max:       mgl64.Vec3{1, 2, 1},
		},
		{
			name:      "upright capsule",
			shape:     &Capsule{Radius: 0.5, HalfHeight: 1},
			transform: Transform{Position: mgl64.Vec3{0, 1.5, 0}, Rotation: mgl64.QuatIdent()},
			min:       mgl64.Vec3{-0.5, 0, -0.5},
			max:       mgl64.Vec3{0.5, 3, 0.5},
		},
		{
			name:      "lying capsule",
			shape:     &Capsule{Radius: 0.5, HalfHeight: 1},
			transform: Transform{Rotation: quarterTurnZ},
			min:       mgl64.Vec3{-1.5, -0.5, -0.5},
			max:       mgl64.Vec3{1.5, 0.5, 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.shape.ComputeAABB(tt.transform)
			aabb := tt.shape.GetAABB()

			if !vec3AlmostEqual(aabb.Min, tt.min, 1e-10) || !vec3AlmostEqual(aabb.Max, tt.max, 1e-10) {
				t.Errorf("AABB = %v..%v, want %v..%v", aabb.Min, aabb.Max, tt.min, tt.max)
			}
		})
	}
}

func TestPlaneAABB(t *testing.T) {
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: -2}
	plane.ComputeAABB(NewTransform())
	aabb := plane.GetAABB()

	if aabb.Max.Y() != 2 || aabb.Min.Y() != 1 {
		t.Errorf("plane slab y = %v..%v, want 1..2", aabb.Min.Y(), aabb.Max.Y())
	}
	if aabb.Min.X() > -1e9 || aabb.Max.Z() < 1e9 {
		t.Errorf("plane AABB %v..%v is bounded along its tangents", aabb.Min, aabb.Max)
	}
}

// =============================================================================
// Raycast Tests
// =============================================================================

func TestShapeRaycast(t *testing.T) {
	down := mgl64.Vec3{0, -1, 0}

	tests := []struct {
		name       string
		shape      ShapeInterface
		origin     mgl64.Vec3
		direction  mgl64.Vec3
		wantHit    bool
		wantPoint  mgl64.Vec3
		wantNormal mgl64.Vec3
	}{
		{"sphere top", &Sphere{Radius: 1}, mgl64.Vec3{0, 5, 0}, down, true, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}},
		{"sphere miss", &Sphere{Radius: 1}, mgl64.Vec3{2, 5, 0}, down, false, mgl64.Vec3{}, mgl64.Vec3{}},
		{"sphere from inside", &Sphere{Radius: 1}, mgl64.Vec3{0, 0.5, 0}, down, false, mgl64.Vec3{}, mgl64.Vec3{}},
		{"box side", &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{-5, 0.5, 0}, mgl64.Vec3{1, 0, 0}, true, mgl64.Vec3{-1, 0.5, 0}, mgl64.Vec3{-1, 0, 0}},
		{"box from inside", &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{0, 0, 0}, down, false, mgl64.Vec3{}, mgl64.Vec3{}},
		{"capsule cap", &Capsule{Radius: 0.5, HalfHeight: 1}, mgl64.Vec3{0, 5, 0}, down, true, mgl64.Vec3{0, 1.5, 0}, mgl64.Vec3{0, 1, 0}},
		{"capsule side", &Capsule{Radius: 0.5, HalfHeight: 1}, mgl64.Vec3{0, 0.3, -4}, mgl64.Vec3{0, 0, 1}, true, mgl64.Vec3{0, 0.3, -0.5}, mgl64.Vec3{0, 0, -1}},
		{"capsule from inside", &Capsule{Radius: 0.5, HalfHeight: 1}, mgl64.Vec3{0, 1.2, 0}, down, false, mgl64.Vec3{}, mgl64.Vec3{}},
		{"plane front", &Plane{Normal: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{3, 2, 3}, down, true, mgl64.Vec3{3, 0, 3}, mgl64.Vec3{0, 1, 0}},
		{"plane from behind", &Plane{Normal: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{3, -2, 3}, mgl64.Vec3{0, 1, 0}, false, mgl64.Vec3{}, mgl64.Vec3{}},
		{"plane parallel", &Plane{Normal: mgl64.Vec3{0, 1, 0}}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}, false, mgl64.Vec3{}, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := tt.shape.Raycast(tt.origin, tt.direction, 10)
			if ok != tt.wantHit {
				t.Fatalf("Raycast() hit = %v, want %v", ok, tt.wantHit)
			}
			if !ok {
				return
			}
			if !vec3AlmostEqual(hit.Point, tt.wantPoint, 1e-9) {
				t.Errorf("hit point = %v, want %v", hit.Point, tt.wantPoint)
			}
			if !vec3AlmostEqual(hit.Normal, tt.wantNormal, 1e-9) {
				t.Errorf("hit normal = %v, want %v", hit.Normal, tt.wantNormal)
			}
			if want := hit.Point.Sub(tt.origin).Len(); !almostEqual(hit.Distance, want, 1e-9) {
				t.Errorf("hit distance = %v, want %v", hit.Distance, want)
			}
		})
	}
}

func TestShapeRaycast_MaxDistance(t *testing.T) {
	shapes := []ShapeInterface{
		&Sphere{Radius: 1},
		&Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
		&Capsule{Radius: 1, HalfHeight: 0.5},
		&Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: -1},
	}

	for _, shape := range shapes {
		if _, ok := shape.Raycast(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, -1, 0}, 5); ok {
			t.Errorf("shape %v hit beyond the max distance", shape.Type())
		}
	}
}

// =============================================================================
// Plane Contact Tests
// =============================================================================

func TestCollideWithPlane(t *testing.T) {
	up := mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name            string
		shape           ShapeInterface
		position        mgl64.Vec3
		wantContacts    int
		wantPenetration float64
	}{
		{"sphere resting", &Sphere{Radius: 1}, mgl64.Vec3{0, 1.5, 0}, 0, 0},
		{"sphere sunk", &Sphere{Radius: 1}, mgl64.Vec3{0, 0.75, 0}, 1, 0.25},
		{"box sunk", &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{0, 0.9, 0}, 4, 0.1},
		{"capsule standing", &Capsule{Radius: 0.4, HalfHeight: 0.5}, mgl64.Vec3{0, 0.8, 0}, 1, 0.1},
		{"capsule above", &Capsule{Radius: 0.4, HalfHeight: 0.5}, mgl64.Vec3{0, 2, 0}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transform := Transform{Position: tt.position, Rotation: mgl64.QuatIdent()}
			ok, contacts := tt.shape.CollideWithPlane(up, 0, transform)

			if ok != (tt.wantContacts > 0) || len(contacts) != tt.wantContacts {
				t.Fatalf("CollideWithPlane() = %v with %d contacts, want %d", ok, len(contacts), tt.wantContacts)
			}
			for _, contact := range contacts {
				if !almostEqual(contact.Penetration, tt.wantPenetration, 1e-10) {
					t.Errorf("penetration = %v, want %v", contact.Penetration, tt.wantPenetration)
				}
			}
		})
	}
}

func TestPlaneWorld(t *testing.T) {
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: -1}

	normal, distance := plane.World(Transform{Position: mgl64.Vec3{0, 2, 0}})

	if !vec3AlmostEqual(normal, mgl64.Vec3{0, 1, 0}, 1e-12) || !almostEqual(distance, -3, 1e-12) {
		t.Errorf("World() = %v, %v, want up and -3", normal, distance)
	}
}

func TestClosestPointOnSegment(t *testing.T) {
	a, b := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0}

	tests := []struct {
		p, expected mgl64.Vec3
	}{
		{mgl64.Vec3{1, 1, 0}, mgl64.Vec3{0, 1, 0}},
		{mgl64.Vec3{0, -3, 0}, a},
		{mgl64.Vec3{0, 5, 1}, b},
	}

	for _, tt := range tests {
		if got := ClosestPointOnSegment(a, b, tt.p); !vec3AlmostEqual(got, tt.expected, 1e-12) {
			t.Errorf("ClosestPointOnSegment(%v) = %v, want %v", tt.p, got, tt.expected)
		}
	}

	if got := ClosestPointOnSegment(a, a, mgl64.Vec3{4, 4, 4}); got != a {
		t.Errorf("degenerate segment = %v, want %v", got, a)
	}
}

func TestBoxClosestPoint(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}
	transform := Transform{Position: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatIdent(), InverseRotation: mgl64.QuatIdent()}

	if got := box.ClosestPoint(transform, mgl64.Vec3{3, 1.5, 0}); !vec3AlmostEqual(got, mgl64.Vec3{1, 1.5, 0}, 1e-12) {
		t.Errorf("ClosestPoint() = %v, want (1, 1.5, 0)", got)
	}
	if got := box.ClosestPoint(transform, mgl64.Vec3{0.5, 1, 0}); !vec3AlmostEqual(got, mgl64.Vec3{0.5, 1, 0}, 1e-12) {
		t.Errorf("ClosestPoint() inside = %v, want the point itself", got)
	}
}
