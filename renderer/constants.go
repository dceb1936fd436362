package renderer

import (
	"encoding/binary"
	"fmt"

	"deferred-renderer/core"
	"deferred-renderer/math"
	"deferred-renderer/scene"
)

// Constant buffer binding slots, shared by every shader stage.
const (
	SlotMesh       = 0
	SlotGlobal     = 1
	SlotPass       = 2 // SSAO kernel or post effects, depending on the pass
	SlotMaterial   = 3
	SlotInstanced  = 4
	SlotShadowCube = 5
)

// Shader resource slots.
const (
	SRVAlbedo     = 0
	SRVNormal     = 1
	SRVAO         = 2
	SRVMetallic   = 3
	SRVRoughness  = 4
	SRVGBuffer    = 5  // color, normal, specPow, depth
	SRVAux        = 9  // SSAO noise or blurred SSAO
	SRVCommon     = 10 // specular, irradiance, env, brdf
	SRVShadowMap  = 14 // one per light slot
	SRVShadowCube = 17 // one per light slot
	SRVEmissive   = 20
	SRVHeight     = 21
)

const (
	MaxSamples   = 64
	MaxInstances = 16
)

// The structs below mirror std140 uniform blocks. Field order and the
// blank padding fields are part of the layout.

type LightConstants struct {
	Radiance     math.Vec3
	FallOffStart float32
	Direction    math.Vec3
	FallOffEnd   float32
	Position     math.Vec3
	SpotPower    float32
	Color        math.Vec3
	_            float32
	Type         uint32
	Radius       float32
	_            [2]float32
	ViewProj     math.Mat4
	InvProj      math.Mat4
}

type GlobalConstants struct {
	View        math.Mat4
	Proj        math.Mat4
	InvProj     math.Mat4
	ViewProj    math.Mat4
	InvViewProj math.Mat4

	EyeWorld    math.Vec3
	StrengthIBL float32

	TextureToDraw int32 // 0 env, 1 specular, 2 irradiance, other black
	EnvLodBias    float32
	LodBias       float32
	UseSSAO       int32

	UseIBL int32
	_      [3]float32

	Lights [scene.MaxLights]LightConstants
}

type MeshConstants struct {
	World        math.Mat4
	WorldIT      math.Mat4
	UseHeightMap int32
	HeightScale  float32
	_            [2]float32
}

type MaterialConstants struct {
	AlbedoFactor    math.Vec3
	RoughnessFactor float32
	EmissionFactor  math.Vec3
	MetallicFactor  float32

	UseAlbedoMap     int32
	UseNormalMap     int32
	UseAOMap         int32
	InvertNormalMapY int32

	UseMetallicMap  int32
	UseRoughnessMap int32
	UseEmissiveMap  int32
	_               float32
}

type InstancedConstants struct {
	Offsets       [MaxInstances]math.Vec4
	Count         int32
	UseInstancing int32
	_             [2]float32
}

// PostEffectsConstants: Mode 1 shows the rendered image, 2 the depth buffer.
type PostEffectsConstants struct {
	Mode        int32
	DepthScale  float32
	FogStrength float32
	Edge        int32
	Exposure    float32
	GammaScale  float32
	_           [2]float32
}

type SSAOConstants struct {
	Samples    [MaxSamples]math.Vec4
	NoiseScale math.Vec2
	Radius     float32
	Bias       float32
}

type ShadowCubeConstants struct {
	ViewProj [6]math.Mat4
}

// DefaultPostEffects converts the [post] config section.
func DefaultPostEffects(cfg core.PostConfig) PostEffectsConstants {
	return PostEffectsConstants{
		Mode:        int32(cfg.Mode),
		DepthScale:  cfg.DepthScale,
		FogStrength: cfg.FogStrength,
		Edge:        boolToInt32(cfg.Edge),
		Exposure:    cfg.Exposure,
		GammaScale:  cfg.Gamma,
	}
}

// Encode lays v out little-endian with its padding fields zeroed.
func Encode[T any](v *T) ([]byte, error) {
	data, err := binary.Append(nil, binary.LittleEndian, v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", *v, err)
	}
	return data, nil
}

// NewConstantBuffer creates a GPU buffer initialised with v.
func NewConstantBuffer[T any](dev Device, name string, v *T) (Buffer, error) {
	data, err := Encode(v)
	if err != nil {
		return Buffer{}, err
	}
	buf, err := dev.CreateConstantBuffer(name, data)
	if err != nil {
		return Buffer{}, fmt.Errorf("constant buffer %s: %w: %w", name, core.ErrResourceCreation, err)
	}
	return buf, nil
}

// Upload overwrites buf with v.
func Upload[T any](dev Device, buf Buffer, v *T) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	if err := dev.UpdateBuffer(buf, data); err != nil {
		return fmt.Errorf("upload %s: %w: %w", buf.Name, core.ErrConstantUpload, err)
	}
	return nil
}

func lightConstants(l *scene.Light) LightConstants {
	return LightConstants{
		Radiance:     l.Radiance,
		FallOffStart: l.FallOffStart,
		Direction:    l.Direction,
		FallOffEnd:   l.FallOffEnd,
		Position:     l.Position,
		SpotPower:    l.SpotPower,
		Color:        l.Color,
		Type:         uint32(l.Type),
		Radius:       l.Radius,
		ViewProj:     l.ViewProj,
		InvProj:      l.InvProj,
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
