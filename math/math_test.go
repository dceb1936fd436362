package math

import (
	"math"
	"testing"
)

const tolerance = 1e-4

func nearlyEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

func vecNearlyEqual(a, b Vec3) bool {
	return nearlyEqual(a.X, b.X) && nearlyEqual(a.Y, b.Y) && nearlyEqual(a.Z, b.Z)
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if result, expected := v1.Add(v2), NewVec3(5, 7, 9); result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}
	if result, expected := v2.Sub(v1), NewVec3(3, 3, 3); result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}
	if dot := v1.Dot(v2); dot != 32 {
		t.Errorf("Dot: expected 32, got %v", dot)
	}

	// Up x Front = Right in a left-handed basis
	if cross := Vec3Up.Cross(Vec3Front); cross != Vec3Right {
		t.Errorf("Cross: expected %v, got %v", Vec3Right, cross)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if n := Vec3Zero.Normalize(); n != Vec3Zero {
		t.Errorf("Normalize: expected zero vector to stay zero, got %v", n)
	}
	if n := NewVec3(3, 0, 0).Normalize(); n != Vec3Right {
		t.Errorf("Normalize: expected %v, got %v", Vec3Right, n)
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	if m.Translation() != translation {
		t.Errorf("Translation: expected %v, got %v", translation, m.Translation())
	}
	if p := Vec3Zero.TransformCoord(m); p != translation {
		t.Errorf("TransformCoord: expected %v, got %v", translation, p)
	}
	if n := Vec3Up.TransformNormal(m); n != Vec3Up {
		t.Errorf("TransformNormal: expected translation to be ignored, got %v", n)
	}
}

func TestMat4Inverse(t *testing.T) {
	m := Mat4Scale(NewVec3(2, 3, 4)).
		Mul(Mat4RotationY(0.7)).
		Mul(Mat4RotationX(-0.3)).
		Mul(Mat4Translation(NewVec3(5, -1, 2)))
	id := m.Mul(m.Inverse())

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			expected := float32(0)
			if i == j {
				expected = 1
			}
			if !nearlyEqual(id[i][j], expected) {
				t.Fatalf("Inverse: m*inv(m) [%d][%d] = %v, expected %v", i, j, id[i][j], expected)
			}
		}
	}
}

func TestMat4InverseSingular(t *testing.T) {
	if inv := (Mat4{}).Inverse(); inv != Mat4Identity() {
		t.Errorf("Inverse: expected identity for singular matrix, got %v", inv)
	}
}

func TestMat4PerspectiveFovLHDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	m := Mat4PerspectiveFovLH(ToRadians(70), 16.0/9.0, near, far)

	if z := NewVec3(0, 0, near).TransformCoord(m).Z; !nearlyEqual(z, 0) {
		t.Errorf("Perspective: near plane depth expected 0, got %v", z)
	}
	if z := NewVec3(0, 0, far).TransformCoord(m).Z; !nearlyEqual(z, 1) {
		t.Errorf("Perspective: far plane depth expected 1, got %v", z)
	}
}

func TestMat4OrthographicOffCenterLH(t *testing.T) {
	m := Mat4OrthographicOffCenterLH(-2, 2, -1, 1, 0.5, 10)

	corner := NewVec3(2, 1, 10).TransformCoord(m)
	if !vecNearlyEqual(corner, NewVec3(1, 1, 1)) {
		t.Errorf("Ortho: expected far corner at (1,1,1), got %v", corner)
	}
	corner = NewVec3(-2, -1, 0.5).TransformCoord(m)
	if !vecNearlyEqual(corner, NewVec3(-1, -1, 0)) {
		t.Errorf("Ortho: expected near corner at (-1,-1,0), got %v", corner)
	}
}

func TestMat4LookAtLH(t *testing.T) {
	eye := NewVec3(0, 0, -5)
	m := Mat4LookAtLH(eye, Vec3Zero, Vec3Up)

	if p := eye.TransformCoord(m); !vecNearlyEqual(p, Vec3Zero) {
		t.Errorf("LookAt: expected eye at origin, got %v", p)
	}
	// The target sits on +Z in view space for a left-handed camera.
	if p := Vec3Zero.TransformCoord(m); !vecNearlyEqual(p, NewVec3(0, 0, 5)) {
		t.Errorf("LookAt: expected target at (0,0,5), got %v", p)
	}
}

func TestMat4LookAtLHDegenerate(t *testing.T) {
	m := Mat4LookAtLH(Vec3Zero, Vec3Down, Vec3Up)
	if m.IsFinite() {
		t.Errorf("LookAt: expected non-finite matrix for up parallel to view direction")
	}
}

func TestQuaternionMatchesMatrix(t *testing.T) {
	q := QuaternionFromAxisAngle(Vec3Up, Pi/2)

	if r := q.RotateVector(Vec3Right); !vecNearlyEqual(r, Vec3Back) {
		t.Errorf("RotateVector: expected %v, got %v", Vec3Back, r)
	}
	if r := Vec3Right.TransformNormal(q.ToMat4()); !vecNearlyEqual(r, Vec3Back) {
		t.Errorf("ToMat4: expected %v, got %v", Vec3Back, r)
	}
	if r := Vec3Right.TransformNormal(Mat4RotationY(Pi / 2)); !vecNearlyEqual(r, Vec3Back) {
		t.Errorf("RotationY: expected %v, got %v", Vec3Back, r)
	}
}

func TestQuaternionZeroAxis(t *testing.T) {
	if q := QuaternionFromAxisAngle(Vec3Zero, 1); q != QuaternionIdentity() {
		t.Errorf("FromAxisAngle: expected identity for zero axis, got %v", q)
	}
}

func TestRaySphere(t *testing.T) {
	ray := Ray{Origin: NewVec3(0, 0, -5), Direction: Vec3Front}
	sphere := BoundingSphere{Center: Vec3Zero, Radius: 1}

	dist, ok := RaySphere(ray, sphere)
	if !ok || !nearlyEqual(dist, 4) {
		t.Errorf("RaySphere: expected hit at 4, got %v (hit=%v)", dist, ok)
	}

	if _, ok := RaySphere(Ray{Origin: NewVec3(0, 3, -5), Direction: Vec3Front}, sphere); ok {
		t.Errorf("RaySphere: expected miss above the sphere")
	}
	if _, ok := RaySphere(Ray{Origin: NewVec3(0, 0, 5), Direction: Vec3Front}, sphere); ok {
		t.Errorf("RaySphere: expected miss for sphere behind origin")
	}

	dist, ok = RaySphere(Ray{Origin: Vec3Zero, Direction: Vec3Front}, sphere)
	if !ok || !nearlyEqual(dist, 1) {
		t.Errorf("RaySphere: expected exit distance 1 from inside, got %v (hit=%v)", dist, ok)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4RotationY(0.3)
	m2 := Mat4Translation(NewVec3(1, 2, 3))

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Mat4PerspectiveFovLH(ToRadians(70), 1.5, 0.1, 100)

	for i := 0; i < b.N; i++ {
		_ = m.Inverse()
	}
}
