package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/core"
	"deferred-renderer/internal/nullgpu"
	"deferred-renderer/math"
)

type testApp struct {
	app   *App
	dev   *nullgpu.Device
	win   *Headless
	scene *DeferredScene
	cfg   core.Config
}

// newTestApp runs the demo scene on the recording device. Every asset path
// points at an empty directory, so loading falls back the way it does on a
// machine without the asset pack.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()
	cfg := core.DefaultConfig()
	cfg.Render.ShadowMapSize = 64
	cfg.Assets.CubemapDir = dir
	cfg.Assets.ModelDir = dir
	cfg.Assets.TextureDir = dir
	cfg.Assets.CapturePNG = filepath.Join(dir, "captured.png")

	dev := nullgpu.New(cfg.Window.Width, cfg.Window.Height)
	win := NewHeadless(cfg.Window.Width, cfg.Window.Height)
	sc := NewDeferredScene()
	app, err := NewApp(cfg, dev, win, sc)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return &testApp{app: app, dev: dev, win: win, scene: sc, cfg: cfg}
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	ta := newTestApp(t)
	ta.app.FrameLimit = 3

	require.NoError(t, ta.app.Run(context.Background()))
	assert.Equal(t, 3, ta.app.Frames())
	assert.Equal(t, 3, ta.dev.Presents())
	assert.Equal(t, 3, ta.win.Polls())
	assert.Contains(t, ta.dev.PassOrder(), "gbuffer")
	assert.Contains(t, ta.dev.PassOrder(), "post")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ta := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, ta.app.Run(ctx))
	assert.Zero(t, ta.dev.Presents())
}

func TestFailedUploadAbortsFrame(t *testing.T) {
	ta := newTestApp(t)
	ta.app.FrameLimit = 1
	ta.dev.FailUpdates = true

	err := ta.app.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConstantUpload)
	assert.Zero(t, ta.dev.Presents())
}

func TestNewAppFailsWithoutResources(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Render.ShadowMapSize = 64
	dev := nullgpu.New(cfg.Window.Width, cfg.Window.Height)
	dev.FailCreates = true

	_, err := NewApp(cfg, dev, NewHeadless(cfg.Window.Width, cfg.Window.Height), NewDeferredScene())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInitFailed)
	// Only the back buffer survives the failed start.
	assert.Equal(t, 1, dev.LiveTextures())
	assert.Zero(t, dev.LiveBuffers())
}

func TestResizeRecreatesTargets(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	live := ta.dev.LiveTextures()

	ta.app.OnResize(1920, 1080)
	require.NoError(t, ta.app.takeDeferredErr())

	assert.Equal(t, 1920, ctx.Res.GBuffer.Width())
	assert.Equal(t, 1080, ctx.Res.GBuffer.Height())
	assert.Equal(t, 1920, ctx.Res.Targets.Width())
	assert.Equal(t, 1920, ta.dev.BackBuffer().Desc.Width)
	assert.InDelta(t, 1920.0/1080.0, ctx.Camera.AspectRatio, 1e-5)
	assert.Equal(t, math.Vec2{X: 480, Y: 270}, ctx.Res.Store.SSAO.NoiseScale)
	assert.Equal(t, live, ta.dev.LiveTextures(), "old targets are released")

	ta.dev.Commands = nil
	ta.app.FrameLimit = 1
	require.NoError(t, ta.app.Run(context.Background()))

	// The screen passes share the viewport set outside any pass marker;
	// shadow passes set their own inside theirs.
	var main []core.Viewport
	for _, c := range ta.dev.Commands {
		if c.Op == "SetViewport" && c.Pass == "" {
			main = append(main, c.Viewport)
		}
	}
	require.Len(t, main, 1)
	assert.Equal(t, core.FullViewport(1920, 1080), main[0])
}

func TestResizeIgnoresMinimisedWindow(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	live := ta.dev.LiveTextures()

	ta.app.OnResize(0, 0)
	require.NoError(t, ta.app.takeDeferredErr())
	assert.Equal(t, ta.cfg.Window.Width, ctx.Res.GBuffer.Width())
	assert.Equal(t, live, ta.dev.LiveTextures())
}

func TestKeys(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()

	ta.app.OnKey(core.KeySpace, true)
	ta.app.OnKey(core.KeySpace, false)
	assert.True(t, ctx.LightRotate)

	ta.app.OnKey(core.KeyF, true)
	assert.False(t, ctx.Camera.FirstPersonView, "toggles on release")
	ta.app.OnKey(core.KeyF, false)
	assert.True(t, ctx.Camera.FirstPersonView)

	assert.Equal(t, []int{core.KeySpace, core.KeyF}, ctx.Pressed)

	ta.app.OnKey(core.KeyEscape, true)
	assert.True(t, ta.win.ShouldClose())
	require.NoError(t, ta.app.Run(context.Background()))
	assert.Zero(t, ta.dev.Presents())
}

func TestCaptureOnKeyRelease(t *testing.T) {
	ta := newTestApp(t)
	ta.app.FrameLimit = 1

	ta.app.OnKey(core.KeyC, true)
	ta.app.OnKey(core.KeyC, false)
	require.NoError(t, ta.app.Run(context.Background()))
	assert.FileExists(t, ta.cfg.Assets.CapturePNG)
}

func TestReloadApplied(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	ta.app.FrameLimit = 1

	reloads := make(chan Reload, 1)
	ta.app.SetReloads(reloads)
	r := Reload{Render: ta.cfg.Render, Post: ta.cfg.Post}
	r.Render.UseSSAO = false
	r.Render.DebugPasses = false
	r.Render.ShadowMapSize = 4096
	r.Post.Exposure = 2
	reloads <- r

	require.NoError(t, ta.app.Run(context.Background()))
	assert.Zero(t, ctx.Res.Store.Global.UseSSAO)
	assert.Equal(t, float32(2), ctx.Res.Store.Post.Exposure)
	assert.False(t, ctx.Sequencer.DebugPasses)
	assert.Equal(t, 64, ctx.Config.Render.ShadowMapSize, "shadow map size is fixed at startup")
	assert.NotContains(t, ta.dev.PassOrder(), "debug")
}
