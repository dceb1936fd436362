package scene

import (
	"deferred-renderer/math"
)

const MaxLights = 3

// LightType is a bitmask. LightShadow combines with one of the shape bits.
type LightType uint32

const (
	LightOff         LightType = 0x00
	LightDirectional LightType = 0x01
	LightPoint       LightType = 0x02
	LightSpot        LightType = 0x04
	LightShadow      LightType = 0x10
)

func (t LightType) Has(bit LightType) bool {
	return t&bit != 0
}

func (t LightType) IsOff() bool {
	return t&(LightDirectional|LightPoint|LightSpot) == 0
}

func (t LightType) String() string {
	var s string
	switch {
	case t.Has(LightDirectional):
		s = "directional"
	case t.Has(LightPoint):
		s = "point"
	case t.Has(LightSpot):
		s = "spot"
	default:
		return "off"
	}
	if t.Has(LightShadow) {
		s += "+shadow"
	}
	return s
}

// Light is one of the fixed light slots.
//
// Radius softens shading and shadow edges. MarkerScale only sizes the sphere
// drawn at the light position.
type Light struct {
	Radiance     math.Vec3
	FallOffStart float32
	Direction    math.Vec3
	FallOffEnd   float32
	Position     math.Vec3
	SpotPower    float32
	Color        math.Vec3
	Type         LightType
	Radius       float32
	MarkerScale  float32

	// Filled by the shadow pass setup each frame for shadow casting lights.
	ViewProj math.Mat4
	InvProj  math.Mat4
	ShadowUp math.Vec3
}

func DefaultLight() Light {
	return Light{
		Radiance:     math.Splat3(5),
		FallOffStart: 0,
		Direction:    math.Vec3Front,
		FallOffEnd:   20,
		SpotPower:    1,
		Color:        math.Vec3One,
		Type:         LightOff,
		Radius:       0.035,
		MarkerScale:  0.035,
		ViewProj:     math.Mat4Identity(),
		InvProj:      math.Mat4Identity(),
	}
}

// CastsShadow reports whether the light is on and has the shadow bit.
func (l *Light) CastsShadow() bool {
	return !l.Type.IsOff() && l.Type.Has(LightShadow)
}
