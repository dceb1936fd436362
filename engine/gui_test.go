package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/core"
	"deferred-renderer/math"
	"deferred-renderer/scene"
)

func pressKeys(o *Overlay, ctx *Context, keys ...int) Changes {
	ctx.Pressed = keys
	ch := o.Update(ctx)
	ctx.Pressed = nil
	return ch
}

func TestOverlayToggles(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay
	store := ctx.Res.Store

	ch := pressKeys(o, ctx, core.KeyM)
	assert.True(t, ch.Post)
	assert.Equal(t, int32(2), store.Post.Mode)
	pressKeys(o, ctx, core.KeyM)
	assert.Equal(t, int32(1), store.Post.Mode)

	pressKeys(o, ctx, core.KeyO, core.KeyI)
	assert.Zero(t, store.Global.UseSSAO)
	assert.Zero(t, store.Global.UseIBL)

	wasDebug := ctx.Sequencer.DebugPasses
	pressKeys(o, ctx, core.KeyP, core.KeyHome)
	assert.Equal(t, !wasDebug, ctx.Sequencer.DebugPasses)
	assert.True(t, ctx.Sequencer.Wireframe)
}

func TestOverlaySliderClamps(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay
	post := &ctx.Res.Store.Post

	// depthScale starts at its upper bound.
	ch := pressKeys(o, ctx, core.KeyPageDown, core.KeyEqual)
	assert.True(t, ch.Post)
	assert.Equal(t, float32(1), post.DepthScale)

	pressKeys(o, ctx, core.KeyMinus)
	assert.InDelta(t, 0.95, post.DepthScale, 1e-6)

	// strengthIBL is a global constant and needs no post upload.
	ch = pressKeys(o, ctx, core.KeyPageUp, core.KeyEqual)
	assert.False(t, ch.Post)
	assert.InDelta(t, 1.1, ctx.Res.Store.Global.StrengthIBL, 1e-6)
}

func TestOverlayLightToggle(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay
	reg := ctx.Registry
	want := reg.Light(1).Type

	pressKeys(o, ctx, core.KeyRightBracket, core.KeyL)
	assert.True(t, reg.Light(1).Type.IsOff())

	pressKeys(o, ctx, core.KeyL)
	assert.Equal(t, want, reg.Light(1).Type, "the saved type comes back")
}

func TestOverlayNormalMaps(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay

	main, err := ctx.Registry.Object(ta.scene.MainObject())
	require.NoError(t, err)
	main.ClearDirty()

	pressKeys(o, ctx, core.KeyN, core.KeyT)
	assert.False(t, main.Material.UseNormalMap)
	assert.False(t, main.Material.InvertNormalMapY)
	assert.True(t, main.Dirty())

	ground, err := ctx.Registry.Object(ta.scene.ground)
	require.NoError(t, err)
	assert.False(t, ground.Material.UseNormalMap)
	assert.True(t, ground.Material.InvertNormalMapY)
}

func TestOverlayTitle(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay

	pressKeys(o, ctx)
	assert.Contains(t, ta.win.Title, ctx.Config.Window.Title)
	assert.Contains(t, ta.win.Title, "FPS")
	assert.Contains(t, ta.win.Title, "light0 "+scene.LightSpot.String()+"+shadow")
}

func TestOverlayMovesLight(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay
	spot := ctx.Registry.Light(0)

	ch := pressKeys(o, ctx, core.KeyRight, core.KeyPeriod, core.KeyDown)
	assert.True(t, ch.Lights[0])
	assert.False(t, ch.Lights[1])
	assertVec3InDelta(t, math.NewVec3(0.1, 2.1, -0.1), spot.Position)
	assert.Equal(t, math.NewVec3(0, -1, 0), spot.Direction)

	spot.Position.X = 9.95
	pressKeys(o, ctx, core.KeyRight, core.KeyRight)
	assert.Equal(t, float32(10), spot.Position.X, "placement stops at the range edge")
}

func TestOverlayTurnsDirectionalLight(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay
	sun := ctx.Registry.Light(1)
	pos := sun.Position

	ch := pressKeys(o, ctx, core.KeyRightBracket, core.KeyDown)
	assert.True(t, ch.Lights[1])
	assertVec3InDelta(t, math.NewVec3(0.5, -1.5, -0.1), sun.Direction)
	assert.Equal(t, pos, sun.Position)
}

func TestOverlayLightColor(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay
	spot := ctx.Registry.Light(0)
	spot.Color = math.Splat3(1)

	pressKeys(o, ctx, core.KeyEnd)
	assert.Contains(t, ta.win.Title, "edit color")

	pressKeys(o, ctx, core.KeyLeft, core.KeyComma, core.KeyComma, core.KeyUp)
	assertVec3InDelta(t, math.NewVec3(0.95, 0.9, 1), spot.Color)

	spot.Color.Z = 0.02
	pressKeys(o, ctx, core.KeyDown)
	assert.Zero(t, spot.Color.Z)
}

func TestOverlayMovesMainObject(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay
	main, err := ctx.Registry.Object(ta.scene.MainObject())
	require.NoError(t, err)
	before := main.World
	main.ClearDirty()

	pressKeys(o, ctx, core.KeyEnd, core.KeyEnd)
	assert.Contains(t, ta.win.Title, "edit main position")
	pressKeys(o, ctx, core.KeyRight, core.KeyPeriod)

	assertVec3InDelta(t, math.NewVec3(0.1, 0.6, 1), main.World.Translation())
	assert.Equal(t, main.World.Translation(), main.Bounds.Center)
	assert.True(t, main.Dirty())

	ctx.Pressed = []int{core.KeyZ, core.KeyZ}
	ta.scene.UpdateGUI(ctx)
	ctx.Pressed = nil
	assert.Equal(t, before, main.World, "each step is one undo")
	assert.Equal(t, before.Translation(), main.Bounds.Center)
}

func TestOverlayRotatesMainObject(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	o := &ta.scene.overlay
	main, err := ctx.Registry.Object(ta.scene.MainObject())
	require.NoError(t, err)
	center := main.World.Translation()

	pressKeys(o, ctx, core.KeyEnd, core.KeyEnd, core.KeyEnd)
	assert.Contains(t, ta.win.Title, "edit main rotation")
	for range 18 {
		pressKeys(o, ctx, core.KeyPeriod)
	}

	// Eighteen 5 degree steps about +Y turn +X a quarter of the way round.
	assertVec3InDelta(t, center, main.World.Translation())
	turned := math.Vec3Right.TransformNormal(main.World)
	want := math.Vec3Right.TransformNormal(math.Mat4RotationY(math.Pi / 2))
	assertVec3InDelta(t, want, turned)
}

func assertVec3InDelta(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x: want %v got %v", want, got)
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y: want %v got %v", want, got)
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z: want %v got %v", want, got)
}
