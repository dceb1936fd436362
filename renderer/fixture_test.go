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

type fixture struct {
	dev   *nullgpu.Device
	res   renderer.Resources
	seq   *renderer.Sequencer
	reg   *scene.Registry
	frame renderer.Frame
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Render.ShadowMapSize = 64
	w, h := cfg.Window.Width, cfg.Window.Height

	dev := nullgpu.New(w, h)
	store, err := renderer.NewStore(dev, cfg)
	require.NoError(t, err)
	gb := renderer.NewGBuffer(dev)
	require.NoError(t, gb.Init(w, h))
	targets := renderer.NewFrameTargets(dev)
	require.NoError(t, targets.Init(w, h))
	shadows, err := renderer.NewShadowMaps(dev, cfg.Render.ShadowMapSize)
	require.NoError(t, err)
	models, err := renderer.NewModels(dev)
	require.NoError(t, err)
	noise, err := renderer.NewNoiseTexture(dev, 1)
	require.NoError(t, err)

	res := renderer.Resources{
		Store: store, GBuffer: gb, Targets: targets, Shadows: shadows,
		Models: models, Noise: noise,
	}
	seq, err := renderer.NewSequencer(dev, res)
	require.NoError(t, err)
	seq.DebugPasses = true

	reg := scene.NewRegistry()
	frame := renderer.NewFrame(reg)
	box := scene.CreateMeshFromData("box", scene.MakeBox(1, false))
	frame.Skybox = reg.AddObject(scene.NewObject("skybox", box))
	square := scene.CreateMeshFromData("square", scene.MakeSquare(0.2, math.Vec2{X: 1, Y: 1}))
	for i := range frame.DebugQuads {
		frame.DebugQuads[i] = reg.AddObject(scene.NewObject("quad", square))
	}
	return &fixture{dev: dev, res: res, seq: seq, reg: reg, frame: frame}
}

// addBox adds a visible box and returns its id.
func (f *fixture) addBox(name string, castShadow bool) scene.ObjectID {
	obj := scene.NewObject(name, scene.CreateMeshFromData(name, scene.MakeBox(1, false)))
	obj.CastShadow = castShadow
	return f.reg.AddObject(obj)
}

func (f *fixture) render(t *testing.T) {
	t.Helper()
	require.NoError(t, renderer.UpdateShadowLights(f.reg, f.res.Store))
	f.res.Store.SetLights(f.reg.Lights())
	require.NoError(t, f.res.Store.UpdateGlobalConstants(math.Vec3Zero, math.Mat4Identity(), math.Mat4Identity()))
	f.dev.Reset()
	require.NoError(t, f.seq.Render(f.frame))
}

func countOps(cmds []nullgpu.Command, op string) int {
	n := 0
	for _, c := range cmds {
		if c.Op == op {
			n++
		}
	}
	return n
}

func assertVec3InDelta(t *testing.T, want, got math.Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "x: want %v got %v", want, got)
	assert.InDelta(t, want.Y, got.Y, delta, "y: want %v got %v", want, got)
	assert.InDelta(t, want.Z, got.Z, delta, "z: want %v got %v", want, got)
}
