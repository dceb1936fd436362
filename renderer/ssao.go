package renderer

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"deferred-renderer/core"
	"deferred-renderer/math"
)

const (
	SSAOSeed   = 0x5eed
	noiseSize  = 4
	ssaoRadius = 0.5
	ssaoBias   = 0.025
)

// NewSSAOKernel draws the hemisphere kernel from a seeded generator so two
// runs produce identical images. The noise vectors are drawn first and
// discarded here; SSAONoise repeats the same sequence.
func NewSSAOKernel(seed uint64) SSAOConstants {
	rng := rand.New(rand.NewPCG(seed, seed))
	drawNoise(rng)

	c := SSAOConstants{Radius: ssaoRadius, Bias: ssaoBias}
	for i := range c.Samples {
		c.Samples[i] = math.Vec4{
			X: rng.Float32()*2 - 1,
			Y: rng.Float32()*2 - 1,
			Z: rng.Float32(),
		}
	}
	return c
}

// SSAONoise returns the 4x4 rotation vectors, tangent-plane only.
func SSAONoise(seed uint64) [noiseSize * noiseSize]math.Vec4 {
	return drawNoise(rand.New(rand.NewPCG(seed, seed)))
}

func drawNoise(rng *rand.Rand) [noiseSize * noiseSize]math.Vec4 {
	var noise [noiseSize * noiseSize]math.Vec4
	for i := range noise {
		noise[i] = math.Vec4{X: rng.Float32()*2 - 1, Y: rng.Float32()*2 - 1}
	}
	return noise
}

// NewNoiseTexture uploads the noise as a 4x4 RGBA32F texture.
func NewNoiseTexture(dev Device, seed uint64) (Texture, error) {
	noise := SSAONoise(seed)
	data, err := binary.Append(nil, binary.LittleEndian, noise)
	if err != nil {
		return Texture{}, err
	}
	tex, err := dev.CreateTexture(TextureDesc{
		Width: noiseSize, Height: noiseSize, Format: FormatRGBA32F, Usage: UsageShaderResource,
	}, data)
	if err != nil {
		return Texture{}, fmt.Errorf("ssao noise: %w: %w", core.ErrResourceCreation, err)
	}
	return tex, nil
}

// noiseScale tiles the noise texture across a width x height target.
func noiseScale(width, height int) math.Vec2 {
	return math.Vec2{X: float32(width) / noiseSize, Y: float32(height) / noiseSize}
}
