package renderer

import (
	"fmt"

	"deferred-renderer/core"
)

// GBuffer holds the geometry pass surfaces: a depth-stencil target and
// three colour targets. Color stores albedo, Normal the world normal and
// SpecPow the metallic/roughness/AO terms.
type GBuffer struct {
	dev Device

	Depth   Texture
	Color   Texture
	Normal  Texture
	SpecPow Texture

	width, height int
}

// NewGBuffer returns an empty G-buffer. Init creates the surfaces.
func NewGBuffer(dev Device) *GBuffer {
	return &GBuffer{dev: dev}
}

// Init (re)creates every surface at width x height. Calling it again
// releases the previous surfaces first.
func (g *GBuffer) Init(width, height int) error {
	g.Deinit()

	var err error
	g.Depth, err = g.dev.CreateTexture(TextureDesc{
		Width: width, Height: height, Format: FormatD24S8,
		Usage: UsageDepthStencil | UsageShaderResource,
	}, nil)
	if err != nil {
		return fmt.Errorf("gbuffer depth: %w: %w", core.ErrResourceCreation, err)
	}
	for _, t := range []*Texture{&g.Color, &g.Normal, &g.SpecPow} {
		*t, err = g.dev.CreateTexture(TextureDesc{
			Width: width, Height: height, Format: FormatRGBA8,
			Usage: UsageRenderTarget | UsageShaderResource,
		}, nil)
		if err != nil {
			g.Deinit()
			return fmt.Errorf("gbuffer target: %w: %w", core.ErrResourceCreation, err)
		}
	}
	g.width, g.height = width, height
	return nil
}

// Deinit releases every surface. It is safe on an empty G-buffer.
func (g *GBuffer) Deinit() {
	for _, t := range []*Texture{&g.Depth, &g.Color, &g.Normal, &g.SpecPow} {
		if t.Valid() {
			g.dev.ReleaseTexture(*t)
		}
		*t = Texture{}
	}
	g.width, g.height = 0, 0
}

// PreRender clears every surface and binds them for the geometry pass.
func (g *GBuffer) PreRender() {
	g.dev.ClearDepthStencil(DSV(g.Depth), ClearDepth|ClearStencil, 1, 0)
	rtvs := g.RTVs()
	for _, rtv := range rtvs {
		g.dev.ClearRenderTarget(rtv, [4]float32{})
	}
	g.dev.SetRenderTargets(rtvs, DSV(g.Depth))
	g.dev.SetDepthStencilState(DepthStencilMarkReplace, 1)
}

// PostRender unbinds the colour targets so they can be sampled, keeping the
// depth bound read-only.
func (g *GBuffer) PostRender() {
	g.dev.SetRenderTargets(nil, ReadOnlyDSV(g.Depth))
	g.dev.SetDepthStencilState(DepthStencilDefault, 0)
}

// RTVs returns color, normal and specPow, in render target order.
func (g *GBuffer) RTVs() []View {
	return []View{RTV(g.Color), RTV(g.Normal), RTV(g.SpecPow)}
}

// SRVs returns color, normal, specPow and depth, in SRVGBuffer order.
func (g *GBuffer) SRVs() []View {
	return []View{SRV(g.Color), SRV(g.Normal), SRV(g.SpecPow), SRV(g.Depth)}
}

// Views returns every view the G-buffer exposes.
func (g *GBuffer) Views() []View {
	views := append(g.RTVs(), DSV(g.Depth), ReadOnlyDSV(g.Depth))
	return append(views, g.SRVs()...)
}

// Width is zero until Init succeeds.
func (g *GBuffer) Width() int { return g.width }

// Height is zero until Init succeeds.
func (g *GBuffer) Height() int { return g.height }
