package math

import "math"

const (
	Pi    = float32(math.Pi)
	TwoPi = float32(2 * math.Pi)
)

func ToRadians(deg float32) float32 {
	return deg * Pi / 180
}

func ToDegrees(rad float32) float32 {
	return rad * 180 / Pi
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func Acos(v float32) float32 {
	return float32(math.Acos(float64(v)))
}

func Sin(v float32) float32 { return float32(math.Sin(float64(v))) }
func Cos(v float32) float32 { return float32(math.Cos(float64(v))) }

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func Sqrt(v float32) float32 { return float32(math.Sqrt(float64(v))) }
