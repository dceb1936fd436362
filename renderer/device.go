package renderer

import (
	"image"

	"deferred-renderer/core"
)

type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGBA8SRGB
	FormatRGBA16F
	FormatRGBA32F
	FormatD24S8
	FormatD32F
)

// IsDepth reports whether f can back a depth-stencil view.
func (f Format) IsDepth() bool {
	return f == FormatD24S8 || f == FormatD32F
}

// Usage is a bitmask of the ways a texture will be bound.
type Usage uint8

const (
	UsageShaderResource Usage = 1 << iota
	UsageRenderTarget
	UsageDepthStencil
)

type TextureDesc struct {
	Width  int
	Height int
	Format Format
	Usage  Usage
	Cube   bool
}

// Texture is an opaque handle. The zero value is no texture.
type Texture struct {
	ID   uint32
	Desc TextureDesc
}

// Valid is false for the zero Texture.
func (t Texture) Valid() bool { return t.ID != 0 }

type ViewKind int

const (
	ViewNone ViewKind = iota
	ViewRTV
	ViewDSV
	ViewReadOnlyDSV
	ViewSRV
)

func (k ViewKind) String() string {
	switch k {
	case ViewRTV:
		return "rtv"
	case ViewDSV:
		return "dsv"
	case ViewReadOnlyDSV:
		return "dsv-ro"
	case ViewSRV:
		return "srv"
	}
	return "none"
}

// View selects how a texture is bound. The zero value binds nothing.
type View struct {
	Texture Texture
	Kind    ViewKind
}

var NoView View

// RTV views t as a render target.
func RTV(t Texture) View { return View{Texture: t, Kind: ViewRTV} }

// DSV views t as a writable depth-stencil target.
func DSV(t Texture) View { return View{Texture: t, Kind: ViewDSV} }

// ReadOnlyDSV binds t for depth and stencil tests without depth writes.
func ReadOnlyDSV(t Texture) View { return View{Texture: t, Kind: ViewReadOnlyDSV} }

// SRV views t as a sampled texture.
func SRV(t Texture) View { return View{Texture: t, Kind: ViewSRV} }

// IsNone reports an unbound view.
func (v View) IsNone() bool { return v.Kind == ViewNone }

type BufferKind int

const (
	BufferConstant BufferKind = iota
	BufferVertex
	BufferIndex
)

// Buffer is an opaque handle. The zero value is no buffer.
type Buffer struct {
	ID   uint32
	Kind BufferKind
	Size int
	Name string
}

// Valid is false for the zero Buffer.
func (b Buffer) Valid() bool { return b.ID != 0 }

type ClearFlags uint8

const (
	ClearDepth ClearFlags = 1 << iota
	ClearStencil
)

func (f ClearFlags) String() string {
	switch f {
	case ClearDepth | ClearStencil:
		return "depth|stencil"
	case ClearDepth:
		return "depth"
	case ClearStencil:
		return "stencil"
	}
	return "none"
}

// Pipeline names a complete fixed state: shaders, rasterizer, blend and
// the default depth/stencil state.
type Pipeline int

const (
	PipelineDepthOnly Pipeline = iota
	PipelineShadowCube
	PipelineStencilMask
	PipelineReflectSkybox
	PipelineGBuffer
	PipelineSSAO
	PipelineSSAOBlur
	PipelineAmbientEmission
	PipelineDeferredLighting
	PipelinePostEffects
	PipelineRenderPass
	pipelineCount
)

var pipelineNames = [pipelineCount]string{
	"depth-only", "shadow-cube", "stencil-mask", "reflect-skybox", "gbuffer",
	"ssao", "ssao-blur", "ambient-emission", "deferred-lighting",
	"post-effects", "render-pass",
}

func (p Pipeline) String() string {
	if p < 0 || p >= pipelineCount {
		return "unknown"
	}
	return pipelineNames[p]
}

// DepthStencilState overrides the pipeline's depth/stencil behaviour.
type DepthStencilState int

const (
	DepthStencilDefault DepthStencilState = iota
	// DepthStencilMarkReplace writes the reference value for every drawn pixel.
	DepthStencilMarkReplace
)

// Device records rendering commands in order on the render thread. It is
// the only way the renderer touches the GPU.
type Device interface {
	CreateTexture(desc TextureDesc, data []byte) (Texture, error)
	CreateTextureFromFile(path string, srgb bool) (Texture, error)
	CreateCubemapFromFile(path string) (Texture, error)
	ReleaseTexture(t Texture)

	CreateConstantBuffer(name string, data []byte) (Buffer, error)
	CreateVertexBuffer(vertices []core.Vertex) (Buffer, error)
	CreateIndexBuffer(indices []uint32) (Buffer, error)
	UpdateBuffer(b Buffer, data []byte) error
	ReleaseBuffer(b Buffer)

	// BackBuffer is the presentable surface. It is resized by Resize.
	BackBuffer() Texture
	Resize(width, height int) error

	SetViewport(vp core.Viewport)
	ClearRenderTarget(rtv View, color [4]float32)
	ClearDepthStencil(dsv View, flags ClearFlags, depth float32, stencil uint8)
	SetRenderTargets(rtvs []View, dsv View)
	SetPipelineState(p Pipeline)
	SetDepthStencilState(s DepthStencilState, stencilRef uint8)
	SetWireframe(on bool)
	SetShaderResources(slot int, views []View)
	SetConstantBuffers(slot int, bufs []Buffer)

	DrawIndexed(vb, ib Buffer, indexCount uint32)
	DrawIndexedInstanced(vb, ib Buffer, indexCount, instances uint32)
	DrawFullscreen()

	PushMarker(name string)
	PopMarker()

	Present(syncInterval int) error
	Capture() (image.Image, error)
	Close()
}
