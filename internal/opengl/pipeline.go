package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"deferred-renderer/renderer"
)

type stencilMode int

const (
	stencilOff stencilMode = iota
	stencilReplace
	stencilNotEqual
)

type cullMode int

const (
	cullNone cullMode = iota
	cullBack
)

// pipelineState is the fixed state of one renderer.Pipeline.
type pipelineState struct {
	prog       uint32
	depthTest  bool
	depthWrite bool
	cull       cullMode
	additive   bool
	stencil    stencilMode
	stencilRef int32
}

var blockSlots = map[string]uint32{
	"MeshConstants":        renderer.SlotMesh,
	"GlobalConstants":      renderer.SlotGlobal,
	"SSAOConstants":        renderer.SlotPass,
	"PostEffectsConstants": renderer.SlotPass,
	"MaterialConstants":    renderer.SlotMaterial,
	"InstancedConstants":   renderer.SlotInstanced,
	"ShadowCubeConstants":  renderer.SlotShadowCube,
}

var (
	materialSamplers = map[string]int32{
		"albedoTex":    renderer.SRVAlbedo,
		"normalTex":    renderer.SRVNormal,
		"aoTex":        renderer.SRVAO,
		"metallicTex":  renderer.SRVMetallic,
		"roughnessTex": renderer.SRVRoughness,
		"emissiveTex":  renderer.SRVEmissive,
		"heightTex":    renderer.SRVHeight,
	}
	commonSamplers = map[string]int32{
		"specularTex":   renderer.SRVCommon,
		"irradianceTex": renderer.SRVCommon + 1,
		"envTex":        renderer.SRVCommon + 2,
		"brdfTex":       renderer.SRVCommon + 3,
	}
	gbufferSamplers = map[string]int32{
		"colorTex":   renderer.SRVGBuffer,
		"normalTex":  renderer.SRVGBuffer + 1,
		"specPowTex": renderer.SRVGBuffer + 2,
		"depthTex":   renderer.SRVGBuffer + 3,
	}
	shadowSamplers = map[string]int32{
		"shadowMaps[0]":  renderer.SRVShadowMap,
		"shadowMaps[1]":  renderer.SRVShadowMap + 1,
		"shadowMaps[2]":  renderer.SRVShadowMap + 2,
		"shadowCubes[0]": renderer.SRVShadowCube,
		"shadowCubes[1]": renderer.SRVShadowCube + 1,
		"shadowCubes[2]": renderer.SRVShadowCube + 2,
	}
)

func merge(maps ...map[string]int32) map[string]int32 {
	out := make(map[string]int32)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

type pipelineDesc struct {
	program programDesc
	state   pipelineState
}

func pipelineDescs() [renderer.PipelineRenderPass + 1]pipelineDesc {
	var d [renderer.PipelineRenderPass + 1]pipelineDesc
	d[renderer.PipelineDepthOnly] = pipelineDesc{
		programDesc{vert: meshVertSrc, frag: emptyFragSrc, samplers: materialSamplers},
		pipelineState{depthTest: true, depthWrite: true, cull: cullBack},
	}
	d[renderer.PipelineShadowCube] = pipelineDesc{
		programDesc{vert: shadowCubeVertSrc, geom: shadowCubeGeomSrc, frag: emptyFragSrc},
		pipelineState{depthTest: true, depthWrite: true},
	}
	d[renderer.PipelineStencilMask] = pipelineDesc{
		programDesc{vert: meshVertSrc, frag: emptyFragSrc, samplers: materialSamplers},
		pipelineState{depthTest: true, depthWrite: true, cull: cullBack, stencil: stencilReplace, stencilRef: 1},
	}
	d[renderer.PipelineReflectSkybox] = pipelineDesc{
		programDesc{vert: skyVertSrc, frag: skyFragSrc, samplers: commonSamplers},
		pipelineState{stencil: stencilNotEqual, stencilRef: 1},
	}
	d[renderer.PipelineGBuffer] = pipelineDesc{
		programDesc{vert: meshVertSrc, frag: gbufferFragSrc, samplers: materialSamplers},
		pipelineState{depthTest: true, depthWrite: true, cull: cullBack},
	}
	d[renderer.PipelineSSAO] = pipelineDesc{
		programDesc{vert: fullscreenVertSrc, frag: ssaoFragSrc, samplers: merge(gbufferSamplers, map[string]int32{
			"noiseTex": renderer.SRVAux,
		})},
		pipelineState{},
	}
	d[renderer.PipelineSSAOBlur] = pipelineDesc{
		programDesc{vert: fullscreenVertSrc, frag: ssaoBlurFragSrc, samplers: map[string]int32{
			"ssaoTex": renderer.SRVGBuffer,
		}},
		pipelineState{},
	}
	d[renderer.PipelineAmbientEmission] = pipelineDesc{
		programDesc{vert: fullscreenVertSrc, frag: ambientFragSrc, samplers: merge(gbufferSamplers, commonSamplers, map[string]int32{
			"ssaoTex": renderer.SRVAux,
		})},
		pipelineState{},
	}
	d[renderer.PipelineDeferredLighting] = pipelineDesc{
		programDesc{vert: fullscreenVertSrc, frag: lightingFragSrc, samplers: merge(gbufferSamplers, shadowSamplers)},
		pipelineState{additive: true},
	}
	d[renderer.PipelinePostEffects] = pipelineDesc{
		programDesc{vert: fullscreenVertSrc, frag: postFragSrc, samplers: map[string]int32{
			"renderTex":    renderer.SRVGBuffer,
			"depthOnlyTex": renderer.SRVGBuffer + 1,
			"cubemapTex":   renderer.SRVGBuffer + 2,
		}},
		pipelineState{},
	}
	d[renderer.PipelineRenderPass] = pipelineDesc{
		programDesc{vert: quadVertSrc, frag: quadFragSrc, samplers: map[string]int32{
			"quadTex": renderer.SRVGBuffer,
		}},
		pipelineState{},
	}
	return d
}

func buildPipelines() ([]pipelineState, error) {
	descs := pipelineDescs()
	states := make([]pipelineState, len(descs))
	for i, d := range descs {
		d.program.blocks = blockSlots
		prog, err := newProgram(d.program)
		if err != nil {
			for _, s := range states[:i] {
				gl.DeleteProgram(s.prog)
			}
			return nil, fmt.Errorf("pipeline %s: %w", renderer.Pipeline(i), err)
		}
		states[i] = d.state
		states[i].prog = prog
	}
	return states, nil
}

// writesDepth reports whether draws with this state update the depth
// buffer. A read-only depth view masks writes whatever the pipeline asks.
func (s *pipelineState) writesDepth(readOnlyDepth bool) bool {
	return s.depthWrite && !readOnlyDepth
}

// apply sets every piece of fixed state, so pipelines never inherit from
// each other. The stencil override comes from SetDepthStencilState.
func (s *pipelineState) apply(override renderer.DepthStencilState, ref uint8, readOnlyDepth bool) {
	gl.UseProgram(s.prog)

	if s.depthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(s.writesDepth(readOnlyDepth))

	if s.cull == cullBack {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	} else {
		gl.Disable(gl.CULL_FACE)
	}

	if s.additive {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
	} else {
		gl.Disable(gl.BLEND)
	}

	mode, stencilRef := s.stencil, s.stencilRef
	if override == renderer.DepthStencilMarkReplace {
		mode, stencilRef = stencilReplace, int32(ref)
	}
	switch mode {
	case stencilReplace:
		gl.Enable(gl.STENCIL_TEST)
		gl.StencilMask(0xFF)
		gl.StencilFunc(gl.ALWAYS, stencilRef, 0xFF)
		gl.StencilOp(gl.KEEP, gl.KEEP, gl.REPLACE)
	case stencilNotEqual:
		gl.Enable(gl.STENCIL_TEST)
		gl.StencilMask(0x00)
		gl.StencilFunc(gl.NOTEQUAL, stencilRef, 0xFF)
		gl.StencilOp(gl.KEEP, gl.KEEP, gl.KEEP)
	default:
		gl.Disable(gl.STENCIL_TEST)
	}
}
