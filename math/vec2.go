package math

type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) Mul(scalar float32) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

// Clamp limits both components to [lo, hi].
func (v Vec2) Clamp(lo, hi float32) Vec2 {
	return Vec2{X: Clamp(v.X, lo, hi), Y: Clamp(v.Y, lo, hi)}
}
