package math

import "math"

// Ray is a half line. Direction is expected to be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

type BoundingSphere struct {
	Center Vec3
	Radius float32
}

// RaySphere returns the distance along r to the sphere surface. When the
// origin is inside the sphere the exit distance is returned.
func RaySphere(r Ray, s BoundingSphere) (float32, bool) {
	l := s.Center.Sub(r.Origin)
	proj := l.Dot(r.Direction)
	l2 := l.Dot(l)
	r2 := s.Radius * s.Radius
	m2 := l2 - proj*proj

	inside := l2 <= r2
	if !inside && (proj < 0 || m2 > r2) {
		return 0, false
	}
	q := float32(math.Sqrt(float64(r2 - m2)))
	if inside {
		return proj + q, true
	}
	return proj - q, true
}
