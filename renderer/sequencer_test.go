package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/core"
	"deferred-renderer/internal/nullgpu"
	"deferred-renderer/math"
	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

func TestSequencerPassOrder(t *testing.T) {
	f := newFixture(t)
	f.addBox("box", true)
	f.render(t)

	assert.Equal(t, []string{
		"shadow0", "shadow1", "shadow2",
		"stencil", "cubemap", "gbuffer", "ssao", "ssao-blur",
		"ambient", "lighting", "post", "debug",
	}, f.dev.PassOrder())
}

func TestSequencerDebugPassesOff(t *testing.T) {
	f := newFixture(t)
	f.seq.DebugPasses = false
	f.render(t)

	assert.NotContains(t, f.dev.PassOrder(), "debug")
	assert.Equal(t, "post", f.dev.PassOrder()[len(f.dev.PassOrder())-1])
}

func firstClear(t *testing.T, cmds []nullgpu.Command) nullgpu.Command {
	t.Helper()
	for _, c := range cmds {
		if c.Op == "ClearDepthStencil" {
			return c
		}
	}
	require.Fail(t, "no depth clear")
	return nullgpu.Command{}
}

func TestSequencerClearFlags(t *testing.T) {
	f := newFixture(t)
	f.addBox("box", true)
	f.render(t)

	both := renderer.ClearDepth | renderer.ClearStencil
	for _, pass := range []string{"stencil", "ssao", "ssao-blur", "ambient"} {
		assert.Equal(t, both, firstClear(t, f.dev.InPass(pass)).Flags, pass)
	}
	assert.Equal(t, renderer.ClearDepth, firstClear(t, f.dev.InPass("lighting")).Flags)

	// The G-buffer clears its own depth-stencil and three colour targets.
	gb := f.dev.InPass("gbuffer")
	assert.Equal(t, both, firstClear(t, gb).Flags)
	assert.Equal(t, f.res.GBuffer.Depth.ID, firstClear(t, gb).DSV.Texture.ID)
	assert.Equal(t, 3, countOps(gb, "ClearRenderTarget"))
}

func TestSequencerBindings(t *testing.T) {
	f := newFixture(t)
	f.render(t)

	var stencilTargets, postTargets nullgpu.Command
	for _, c := range f.dev.InPass("stencil") {
		if c.Op == "SetRenderTargets" {
			stencilTargets = c
		}
	}
	for _, c := range f.dev.InPass("post") {
		if c.Op == "SetRenderTargets" {
			postTargets = c
		}
	}
	assert.Empty(t, stencilTargets.Views)
	assert.Equal(t, renderer.ViewDSV, stencilTargets.DSV.Kind)
	require.Len(t, postTargets.Views, 1)
	assert.Equal(t, f.dev.BackBuffer().ID, postTargets.Views[0].Texture.ID)
	assert.True(t, postTargets.DSV.IsNone())

	var postSRVs []renderer.View
	for _, c := range f.dev.InPass("post") {
		if c.Op == "SetShaderResources" && c.Slot == renderer.SRVGBuffer {
			postSRVs = c.Views
		}
	}
	require.Len(t, postSRVs, 3)
	assert.Equal(t, f.res.Targets.Resolved.ID, postSRVs[0].Texture.ID)
	assert.Equal(t, f.res.GBuffer.Depth.ID, postSRVs[1].Texture.ID)
	assert.Equal(t, f.res.Targets.Cubemap.ID, postSRVs[2].Texture.ID)
}

func TestSequencerDrawsEachObjectInItsPass(t *testing.T) {
	f := newFixture(t)
	f.addBox("a", true)
	f.addBox("b", false)
	hidden := f.addBox("hidden", true)
	obj, err := f.reg.Object(hidden)
	require.NoError(t, err)
	obj.Visible = false
	f.render(t)

	assert.Equal(t, 2, countOps(f.dev.InPass("stencil"), "DrawIndexed"))
	assert.Equal(t, 2, countOps(f.dev.InPass("gbuffer"), "DrawIndexed"))
	assert.Equal(t, 1, countOps(f.dev.InPass("cubemap"), "DrawIndexed"))
	assert.Equal(t, 4, countOps(f.dev.InPass("debug"), "DrawIndexed"))
	for _, pass := range []string{"ssao", "ssao-blur", "ambient", "lighting", "post"} {
		assert.Equal(t, 1, countOps(f.dev.InPass(pass), "DrawFullscreen"), pass)
	}
}

func TestSequencerShadowPasses(t *testing.T) {
	f := newFixture(t)
	f.addBox("caster", true)
	f.addBox("receiver", false)

	spot := scene.DefaultLight()
	spot.Type = scene.LightSpot | scene.LightShadow
	spot.Position = math.Vec3{Y: 2}
	spot.Direction = math.Vec3Down
	f.reg.SetLight(0, spot)

	point := scene.DefaultLight()
	point.Type = scene.LightPoint | scene.LightShadow
	point.Position = math.Vec3{X: -1.3, Y: -0.4, Z: -1}
	f.reg.SetLight(2, point)
	f.render(t)

	shadow0 := f.dev.InPass("shadow0")
	assert.Equal(t, 1, countOps(shadow0, "DrawIndexed"))
	assert.Contains(t, shadow0, nullgpu.Command{Op: "SetPipelineState", Pass: "shadow0", Pipeline: renderer.PipelineDepthOnly})

	// Off lights still clear their maps but draw nothing.
	shadow1 := f.dev.InPass("shadow1")
	assert.Equal(t, 2, countOps(shadow1, "ClearDepthStencil"))
	assert.Zero(t, countOps(shadow1, "DrawIndexed"))

	shadow2 := f.dev.InPass("shadow2")
	assert.Contains(t, shadow2, nullgpu.Command{Op: "SetPipelineState", Pass: "shadow2", Pipeline: renderer.PipelineShadowCube})
	assert.Equal(t, 1, countOps(shadow2, "DrawIndexed"))
}

func TestSequencerInstancedDraw(t *testing.T) {
	f := newFixture(t)
	id := f.addBox("grass", false)
	obj, err := f.reg.Object(id)
	require.NoError(t, err)
	obj.Instances = []math.Vec4{{X: 1}, {X: 2}, {X: 3}}
	obj.UseInstancing = true
	f.render(t)

	var instanced []nullgpu.Command
	for _, c := range f.dev.InPass("gbuffer") {
		if c.Op == "DrawIndexedInstanced" {
			instanced = append(instanced, c)
		}
	}
	require.Len(t, instanced, 1)
	assert.Equal(t, uint32(3), instanced[0].Count)
}

func TestSequencerRejectsUninitialisedTargets(t *testing.T) {
	f := newFixture(t)
	f.res.GBuffer.Deinit()

	err := f.seq.Render(f.frame)
	assert.ErrorIs(t, err, core.ErrResourceCreation)
	assert.Zero(t, f.dev.Presents())
}
