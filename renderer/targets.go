package renderer

import (
	"fmt"

	"deferred-renderer/core"
)

// FrameTargets are the screen-sized surfaces outside the G-buffer.
type FrameTargets struct {
	dev Device

	SceneDepth Texture // stencil mask and fullscreen passes
	Cubemap    Texture // skybox reflected into the background
	SSAO       Texture
	SSAOBlur   Texture
	Resolved   Texture // HDR lighting result

	width, height int
}

// NewFrameTargets returns empty targets. Init creates the surfaces.
func NewFrameTargets(dev Device) *FrameTargets {
	return &FrameTargets{dev: dev}
}

// Init (re)creates every target at width x height, releasing the old
// ones first.
func (t *FrameTargets) Init(width, height int) error {
	t.Deinit()

	var err error
	t.SceneDepth, err = t.dev.CreateTexture(TextureDesc{
		Width: width, Height: height, Format: FormatD24S8, Usage: UsageDepthStencil,
	}, nil)
	if err != nil {
		return fmt.Errorf("scene depth: %w: %w", core.ErrResourceCreation, err)
	}
	for _, tex := range []*Texture{&t.Cubemap, &t.SSAO, &t.SSAOBlur, &t.Resolved} {
		*tex, err = t.dev.CreateTexture(TextureDesc{
			Width: width, Height: height, Format: FormatRGBA16F,
			Usage: UsageRenderTarget | UsageShaderResource,
		}, nil)
		if err != nil {
			t.Deinit()
			return fmt.Errorf("frame target: %w: %w", core.ErrResourceCreation, err)
		}
	}
	t.width, t.height = width, height
	return nil
}

// Deinit releases every target.
func (t *FrameTargets) Deinit() {
	for _, tex := range []*Texture{&t.SceneDepth, &t.Cubemap, &t.SSAO, &t.SSAOBlur, &t.Resolved} {
		if tex.Valid() {
			t.dev.ReleaseTexture(*tex)
		}
		*tex = Texture{}
	}
	t.width, t.height = 0, 0
}

// Width is zero until Init succeeds.
func (t *FrameTargets) Width() int { return t.width }

// Height is zero until Init succeeds.
func (t *FrameTargets) Height() int { return t.height }
