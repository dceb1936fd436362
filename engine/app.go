// Package engine runs a Scenario on a renderer.Device: it owns the frame
// loop, the shared GPU resources and the window event dispatch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"

	"deferred-renderer/core"
	"deferred-renderer/editor"
	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

// Platform is the window side of the loop. core.Window implements it;
// Headless stands in for it without a display.
type Platform interface {
	PollEvents()
	ShouldClose() bool
	RequestClose()
	SetTitle(title string)
	GetFramebufferSize() (int, int)
}

// Scenario is one demo scene driven by App.
type Scenario interface {
	Initialize(ctx *Context) error
	// UpdateGUI runs the debug overlay. Changes it makes are uploaded by
	// the following Update.
	UpdateGUI(ctx *Context)
	Update(ctx *Context, dt float32) error
	// Render records the frame. An error means it must not be presented.
	Render(ctx *Context) error
	Resize(ctx *Context, width, height int) error
	Close()
}

// Context is the state shared between App and its Scenario. Everything in
// it is touched only by the render thread.
type Context struct {
	Config    core.Config
	Device    renderer.Device
	Window    Platform
	Input     *editor.InputState
	Camera    *scene.Camera
	Registry  *scene.Registry
	Res       renderer.Resources
	Sequencer *renderer.Sequencer

	Width  int
	Height int

	// LightRotate is toggled with Space.
	LightRotate bool
	// Pressed lists the keys pressed since the last UpdateGUI.
	Pressed []int
	// FPS is the frame count of the last full second.
	FPS int
}

type App struct {
	ctx      *Context
	scenario Scenario
	reloads  <-chan Reload

	// FrameLimit stops Run after that many presented frames. Zero runs
	// until the window closes.
	FrameLimit int

	frames      int
	capture     bool
	deferredErr error
}

// NewApp creates the frame resources for the current framebuffer size and
// initialises the scenario. The caller keeps ownership of dev and window.
func NewApp(cfg core.Config, dev renderer.Device, window Platform, sc Scenario) (*App, error) {
	w, h := window.GetFramebufferSize()
	if w <= 0 || h <= 0 {
		w, h = cfg.Window.Width, cfg.Window.Height
	}
	cfg.Window.Width, cfg.Window.Height = w, h

	ctx := &Context{
		Config:   cfg,
		Device:   dev,
		Window:   window,
		Input:    editor.NewInputState(w, h),
		Camera:   scene.NewCamera(cfg.Camera, float32(w)/float32(h)),
		Registry: scene.NewRegistry(),
		Width:    w,
		Height:   h,
	}
	a := &App{ctx: ctx, scenario: sc}
	if err := a.createResources(); err != nil {
		a.releaseResources()
		return nil, fmt.Errorf("%w: %w", core.ErrInitFailed, err)
	}
	if err := sc.Initialize(ctx); err != nil {
		a.releaseResources()
		return nil, fmt.Errorf("%w: scenario: %w", core.ErrInitFailed, err)
	}
	core.LogInfo("app ready at %dx%d", w, h)
	return a, nil
}

func (a *App) createResources() error {
	ctx := a.ctx
	cfg := ctx.Config
	dev := ctx.Device
	res := &ctx.Res

	var err error
	if res.Store, err = renderer.NewStore(dev, cfg); err != nil {
		return err
	}
	res.GBuffer = renderer.NewGBuffer(dev)
	if err = res.GBuffer.Init(ctx.Width, ctx.Height); err != nil {
		return err
	}
	res.Targets = renderer.NewFrameTargets(dev)
	if err = res.Targets.Init(ctx.Width, ctx.Height); err != nil {
		return err
	}
	if res.Shadows, err = renderer.NewShadowMaps(dev, cfg.Render.ShadowMapSize); err != nil {
		return err
	}
	if res.Models, err = renderer.NewModels(dev); err != nil {
		return err
	}
	if res.Noise, err = renderer.NewNoiseTexture(dev, renderer.SSAOSeed); err != nil {
		return err
	}
	if res.IBL, err = loadIBL(dev, cfg.Assets); err != nil {
		return err
	}
	if ctx.Sequencer, err = renderer.NewSequencer(dev, *res); err != nil {
		return err
	}
	ctx.Sequencer.DebugPasses = cfg.Render.DebugPasses
	ctx.Sequencer.Wireframe = cfg.Render.Wireframe
	return nil
}

func (a *App) releaseResources() {
	res := &a.ctx.Res
	dev := a.ctx.Device
	if res.Models != nil {
		res.Models.Release()
	}
	if res.Shadows != nil {
		res.Shadows.Release()
	}
	if res.Targets != nil {
		res.Targets.Deinit()
	}
	if res.GBuffer != nil {
		res.GBuffer.Deinit()
	}
	if res.Store != nil {
		res.Store.Release()
	}
	for _, t := range append(res.IBL[:], res.Noise) {
		if t.Valid() {
			dev.ReleaseTexture(t)
		}
	}
	*res = renderer.Resources{}
}

// Context exposes the shared state, mainly for tests.
func (a *App) Context() *Context { return a.ctx }

// Frames is the number of frames presented so far.
func (a *App) Frames() int { return a.frames }

// SetReloads connects a config watcher. Pending reloads are applied at the
// start of each frame.
func (a *App) SetReloads(c <-chan Reload) { a.reloads = c }

// Run is the poll-then-render loop. It returns when the window closes, the
// frame limit is reached or ctx is cancelled, or with the first error that
// aborted a frame.
func (a *App) Run(ctx context.Context) error {
	last := time.Now()
	second := last
	fpsFrames := 0

	for !a.ctx.Window.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		a.ctx.Window.PollEvents()
		if err := a.takeDeferredErr(); err != nil {
			return err
		}
		a.drainReloads()

		a.scenario.UpdateGUI(a.ctx)
		a.ctx.Pressed = a.ctx.Pressed[:0]

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if err := a.scenario.Update(a.ctx, dt); err != nil {
			return fmt.Errorf("frame %d update: %w", a.frames, err)
		}
		if err := a.scenario.Render(a.ctx); err != nil {
			return fmt.Errorf("frame %d render: %w", a.frames, err)
		}
		if a.capture {
			a.capture = false
			if err := a.Capture(a.ctx.Config.Assets.CapturePNG); err != nil {
				core.LogError("capture: %v", err)
			}
		}
		if err := a.ctx.Device.Present(swapInterval(a.ctx.Config.Window.VSync)); err != nil {
			return fmt.Errorf("frame %d present: %w", a.frames, err)
		}
		a.frames++
		fpsFrames++

		if now.Sub(second) >= time.Second {
			a.ctx.FPS = fpsFrames
			fpsFrames = 0
			second = now
		}
		if a.FrameLimit > 0 && a.frames >= a.FrameLimit {
			return nil
		}
	}
	return nil
}

func swapInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}

func (a *App) takeDeferredErr() error {
	err := a.deferredErr
	a.deferredErr = nil
	return err
}

func (a *App) drainReloads() {
	if a.reloads == nil {
		return
	}
	for {
		select {
		case r := <-a.reloads:
			a.applyReload(r)
		default:
			return
		}
	}
}

func (a *App) applyReload(r Reload) {
	ctx := a.ctx
	store := ctx.Res.Store
	// The shadow map size only applies at startup.
	r.Render.ShadowMapSize = ctx.Config.Render.ShadowMapSize
	ctx.Config.Render = r.Render
	ctx.Config.Post = r.Post

	store.ApplyRenderConfig(r.Render)
	store.Post = renderer.DefaultPostEffects(r.Post)
	if err := store.UpdatePostEffects(); err != nil {
		core.LogError("reload: %v", err)
	}
	ctx.Sequencer.DebugPasses = r.Render.DebugPasses
	ctx.Sequencer.Wireframe = r.Render.Wireframe
}

// Resize recreates every size-dependent target before the next frame.
// A zero size (minimised window) is ignored.
func (a *App) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	ctx := a.ctx
	if width == ctx.Width && height == ctx.Height {
		return nil
	}
	if err := ctx.Device.Resize(width, height); err != nil {
		return fmt.Errorf("resize back buffer: %w", err)
	}
	if err := ctx.Res.GBuffer.Init(width, height); err != nil {
		return fmt.Errorf("resize gbuffer: %w", err)
	}
	if err := ctx.Res.Targets.Init(width, height); err != nil {
		return fmt.Errorf("resize targets: %w", err)
	}
	if err := ctx.Res.Store.Resize(width, height); err != nil {
		return fmt.Errorf("resize ssao: %w", err)
	}
	ctx.Width, ctx.Height = width, height
	ctx.Config.Window.Width, ctx.Config.Window.Height = width, height
	ctx.Camera.SetAspectRatio(float32(width) / float32(height))
	ctx.Input.SetScreenSize(width, height)
	core.LogDebug("resized to %dx%d", width, height)
	return a.scenario.Resize(ctx, width, height)
}

// Capture writes the back buffer to path as PNG.
func (a *App) Capture(path string) error {
	img, err := a.ctx.Device.Capture()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	core.LogInfo("captured %s", path)
	return nil
}

// Close releases the scenario and every resource App created.
func (a *App) Close() {
	a.scenario.Close()
	a.releaseResources()
}

// ── core.EventHandler ─────────────────────────────────────────────────────────

func (a *App) OnMouseMove(x, y float64) {
	in := a.ctx.Input
	in.SetCursor(x, y)
	a.ctx.Camera.UpdateMouse(in.CursorNDC.X, in.CursorNDC.Y)
}

func (a *App) OnMouseButton(button int, pressed bool) {
	a.ctx.Input.SetButton(button, pressed)
}

func (a *App) OnKey(key int, pressed bool) {
	a.ctx.Input.SetKey(key, pressed)
	if pressed {
		a.ctx.Pressed = append(a.ctx.Pressed, key)
		switch key {
		case core.KeyEscape:
			a.ctx.Window.RequestClose()
		case core.KeySpace:
			a.ctx.LightRotate = !a.ctx.LightRotate
		}
		return
	}
	switch key {
	case core.KeyF:
		a.ctx.Camera.FirstPersonView = !a.ctx.Camera.FirstPersonView
	case core.KeyC:
		a.capture = true
	}
}

// OnResize runs inside PollEvents; a failure stops Run before the next
// frame.
func (a *App) OnResize(width, height int) {
	if err := a.Resize(width, height); err != nil {
		a.deferredErr = errors.Join(a.deferredErr, err)
	}
}

var _ core.EventHandler = (*App)(nil)
