package renderer

import (
	"fmt"
	"slices"

	"deferred-renderer/core"
	"deferred-renderer/scene"
)

// Resources are the GPU objects a frame reads and writes. The sequencer
// does not own them.
type Resources struct {
	Store   *Store
	GBuffer *GBuffer
	Targets *FrameTargets
	Shadows *ShadowMaps
	Models  *Models

	// IBL holds specular, irradiance, env and brdf, bound at SRVCommon.
	IBL   [4]Texture
	Noise Texture
}

// Frame is what the sequencer needs from the scenario each frame.
type Frame struct {
	Registry *scene.Registry
	// Skybox and DebugQuads live in the registry but are only drawn by
	// their own passes.
	Skybox     scene.ObjectID
	DebugQuads [4]scene.ObjectID
}

// NewFrame returns a frame with no skybox and no debug quads.
func NewFrame(reg *scene.Registry) Frame {
	f := Frame{Registry: reg, Skybox: scene.NoObject}
	for i := range f.DebugQuads {
		f.DebugQuads[i] = scene.NoObject
	}
	return f
}

func (f *Frame) fixed(id scene.ObjectID) bool {
	return id == f.Skybox || slices.Contains(f.DebugQuads[:], id)
}

// Sequencer records one frame of the deferred pipeline.
type Sequencer struct {
	dev   Device
	res   Resources
	graph *PassGraph

	DebugPasses bool
	Wireframe   bool
}

var clearBlack = [4]float32{0, 0, 0, 1}

// NewSequencer validates the frame graph before any frame is recorded.
func NewSequencer(dev Device, res Resources) (*Sequencer, error) {
	s := &Sequencer{dev: dev, res: res, graph: FrameGraph()}
	if err := s.graph.Validate(); err != nil {
		return nil, fmt.Errorf("frame graph: %w", err)
	}
	return s, nil
}

// Graph is the declared frame graph.
func (s *Sequencer) Graph() *PassGraph { return s.graph }

// FrameGraph declares every pass in execution order with the resources
// it touches.
func FrameGraph() *PassGraph {
	g := NewPassGraph("env", "ibl", "noise", "meshes", "materials")
	gbuffer := []string{"gbuffer.color", "gbuffer.normal", "gbuffer.specPow", "gbuffer.depth"}
	var shadows []string
	for i := range scene.MaxLights {
		maps := []string{fmt.Sprintf("shadowmap%d", i), fmt.Sprintf("shadowcube%d", i)}
		g.Add(Pass{Name: fmt.Sprintf("shadow%d", i), Reads: []string{"meshes"}, Writes: maps})
		shadows = append(shadows, maps...)
	}
	g.Add(Pass{Name: "stencil", Reads: []string{"meshes"}, Writes: []string{"sceneDepth"}})
	g.Add(Pass{Name: "cubemap", Reads: []string{"meshes", "env", "sceneDepth"}, Writes: []string{"cubemap"}})
	g.Add(Pass{Name: "gbuffer", Reads: []string{"meshes", "materials"}, Writes: gbuffer})
	g.Add(Pass{Name: "ssao", Reads: append(slices.Clone(gbuffer), "noise"), Writes: []string{"ssao", "sceneDepth"}})
	g.Add(Pass{Name: "ssao-blur", Reads: []string{"ssao"}, Writes: []string{"ssaoBlur", "sceneDepth"}})
	g.Add(Pass{Name: "ambient", Reads: append(slices.Clone(gbuffer), "ssaoBlur", "ibl", "env"), Writes: []string{"resolved", "sceneDepth"}})
	g.Add(Pass{Name: "lighting", Reads: append(slices.Clone(gbuffer), shadows...), Writes: []string{"resolved", "sceneDepth"}})
	g.Add(Pass{Name: "post", Reads: []string{"resolved", "gbuffer.depth", "cubemap"}, Writes: []string{"backbuffer"}})
	g.Add(Pass{Name: "debug", Reads: []string{"meshes", "gbuffer.color", "gbuffer.normal", "gbuffer.specPow", "ssaoBlur"}, Writes: []string{"backbuffer"}})
	return g
}

// Render records the whole frame. A non-nil error means the frame must not
// be presented.
func (s *Sequencer) Render(f Frame) error {
	r := s.res
	if r.GBuffer.Width() == 0 || r.Targets.Width() == 0 {
		return fmt.Errorf("render targets not initialised: %w", core.ErrResourceCreation)
	}
	if err := r.Models.Sync(f.Registry); err != nil {
		return fmt.Errorf("sync models: %w", err)
	}

	for i := range scene.MaxLights {
		s.shadowPass(f, i)
	}

	dev := s.dev
	sceneDepth := DSV(r.Targets.SceneDepth)
	dev.SetViewport(core.FullViewport(r.Targets.Width(), r.Targets.Height()))
	dev.SetConstantBuffers(SlotGlobal, []Buffer{r.Store.GlobalBuf})
	dev.SetShaderResources(SRVCommon, []View{SRV(r.IBL[0]), SRV(r.IBL[1]), SRV(r.IBL[2]), SRV(r.IBL[3])})
	maps, cubes := r.Shadows.SRVs()
	dev.SetShaderResources(SRVShadowMap, maps)
	dev.SetShaderResources(SRVShadowCube, cubes)

	s.pass("stencil", func() {
		dev.ClearDepthStencil(sceneDepth, ClearDepth|ClearStencil, 1, 0)
		dev.SetRenderTargets(nil, sceneDepth)
		dev.SetPipelineState(PipelineStencilMask)
		dev.SetDepthStencilState(DepthStencilMarkReplace, 1)
		s.drawVisible(f, false)
		dev.SetDepthStencilState(DepthStencilDefault, 0)
	})

	s.pass("cubemap", func() {
		dev.ClearRenderTarget(RTV(r.Targets.Cubemap), clearBlack)
		dev.SetRenderTargets([]View{RTV(r.Targets.Cubemap)}, sceneDepth)
		dev.SetPipelineState(PipelineReflectSkybox)
		if obj, err := f.Registry.Object(f.Skybox); err == nil {
			r.Models.Draw(f.Skybox, obj, false, false)
		}
	})

	s.pass("gbuffer", func() {
		dev.SetPipelineState(PipelineGBuffer)
		dev.SetWireframe(s.Wireframe)
		r.GBuffer.PreRender()
		s.drawVisible(f, true)
		r.GBuffer.PostRender()
		dev.SetWireframe(false)
	})

	s.pass("ssao", func() {
		dev.ClearDepthStencil(sceneDepth, ClearDepth|ClearStencil, 1, 0)
		dev.ClearRenderTarget(RTV(r.Targets.SSAO), clearBlack)
		dev.SetRenderTargets([]View{RTV(r.Targets.SSAO)}, sceneDepth)
		dev.SetPipelineState(PipelineSSAO)
		dev.SetConstantBuffers(SlotPass, []Buffer{r.Store.SSAOBuf})
		dev.SetShaderResources(SRVGBuffer, r.GBuffer.SRVs())
		dev.SetShaderResources(SRVAux, []View{SRV(r.Noise)})
		dev.DrawFullscreen()
	})

	s.pass("ssao-blur", func() {
		dev.ClearDepthStencil(sceneDepth, ClearDepth|ClearStencil, 1, 0)
		dev.ClearRenderTarget(RTV(r.Targets.SSAOBlur), clearBlack)
		dev.SetRenderTargets([]View{RTV(r.Targets.SSAOBlur)}, sceneDepth)
		dev.SetPipelineState(PipelineSSAOBlur)
		dev.SetShaderResources(SRVGBuffer, []View{SRV(r.Targets.SSAO)})
		dev.DrawFullscreen()
	})

	s.pass("ambient", func() {
		dev.SetPipelineState(PipelineAmbientEmission)
		dev.ClearRenderTarget(RTV(r.Targets.Resolved), clearBlack)
		dev.ClearDepthStencil(sceneDepth, ClearDepth|ClearStencil, 1, 0)
		dev.SetRenderTargets([]View{RTV(r.Targets.Resolved)}, sceneDepth)
		dev.SetShaderResources(SRVGBuffer, r.GBuffer.SRVs())
		dev.SetShaderResources(SRVAux, []View{SRV(r.Targets.SSAOBlur)})
		dev.DrawFullscreen()
	})

	s.pass("lighting", func() {
		dev.SetPipelineState(PipelineDeferredLighting)
		dev.ClearDepthStencil(sceneDepth, ClearDepth, 1, 0)
		dev.SetRenderTargets([]View{RTV(r.Targets.Resolved)}, sceneDepth)
		dev.SetShaderResources(SRVGBuffer, r.GBuffer.SRVs())
		dev.DrawFullscreen()
	})

	back := dev.BackBuffer()
	s.pass("post", func() {
		dev.ClearRenderTarget(RTV(back), clearBlack)
		dev.SetRenderTargets([]View{RTV(back)}, NoView)
		dev.SetPipelineState(PipelinePostEffects)
		dev.SetConstantBuffers(SlotPass, []Buffer{r.Store.PostBuf})
		dev.SetShaderResources(SRVGBuffer, []View{
			SRV(r.Targets.Resolved), SRV(r.GBuffer.Depth), SRV(r.Targets.Cubemap),
		})
		dev.DrawFullscreen()
	})

	if s.DebugPasses {
		s.pass("debug", func() {
			dev.SetPipelineState(PipelineRenderPass)
			shown := []Texture{r.GBuffer.Color, r.GBuffer.Normal, r.GBuffer.SpecPow, r.Targets.SSAOBlur}
			for i, id := range f.DebugQuads {
				obj, err := f.Registry.Object(id)
				if err != nil {
					continue
				}
				dev.SetShaderResources(SRVGBuffer, []View{SRV(shown[i])})
				r.Models.Draw(id, obj, false, false)
			}
		})
	}
	return nil
}

// shadowPass clears both depth targets of slot i and, when the light has a
// valid shadow view, draws every shadow caster into the matching one.
func (s *Sequencer) shadowPass(f Frame, i int) {
	r := s.res
	dev := s.dev
	s.pass(fmt.Sprintf("shadow%d", i), func() {
		dev.ClearDepthStencil(DSV(r.Shadows.Maps[i]), ClearDepth, 1, 0)
		dev.ClearDepthStencil(DSV(r.Shadows.Cubes[i]), ClearDepth, 1, 0)
		if !r.Store.ShadowActive(i) {
			return
		}
		light := f.Registry.Light(scene.LightID(i))
		dev.SetConstantBuffers(SlotGlobal, []Buffer{r.Store.ShadowBufs[i]})
		if light.Type.Has(scene.LightPoint) {
			size := r.Shadows.Cubes[i].Desc.Width
			dev.SetViewport(core.FullViewport(size, size))
			dev.SetRenderTargets(nil, DSV(r.Shadows.Cubes[i]))
			dev.SetPipelineState(PipelineShadowCube)
			dev.SetConstantBuffers(SlotShadowCube, []Buffer{r.Store.ShadowCubeBuf[i]})
		} else {
			dev.SetViewport(core.FullViewport(r.Shadows.Size, r.Shadows.Size))
			dev.SetRenderTargets(nil, DSV(r.Shadows.Maps[i]))
			dev.SetPipelineState(PipelineDepthOnly)
		}
		for id, obj := range f.Registry.ShadowCasters() {
			if f.fixed(id) {
				continue
			}
			r.Models.Draw(id, obj, false, true)
		}
	})
}

func (s *Sequencer) drawVisible(f Frame, textures bool) {
	for id, obj := range f.Registry.Visible() {
		if f.fixed(id) {
			continue
		}
		s.res.Models.Draw(id, obj, textures, true)
	}
}

func (s *Sequencer) pass(name string, record func()) {
	s.dev.PushMarker(name)
	record()
	s.dev.PopMarker()
}
