package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/core"
	"deferred-renderer/editor"
	"deferred-renderer/math"
	"deferred-renderer/scene"
)

func TestSceneLayout(t *testing.T) {
	ta := newTestApp(t)
	reg := ta.app.Context().Registry
	frame := ta.scene.Frame()

	sky, err := reg.Object(frame.Skybox)
	require.NoError(t, err)
	assert.False(t, sky.CastShadow)
	for _, id := range frame.DebugQuads {
		assert.NotEqual(t, scene.NoObject, id)
	}

	main, err := reg.Object(ta.scene.MainObject())
	require.NoError(t, err)
	assert.True(t, main.CastShadow)
	assert.True(t, main.Material.InvertNormalMapY)
	assert.Equal(t, math.NewVec3(0, 0.5, 1), main.Bounds.Center)
	assert.Equal(t, float32(0.5), main.Bounds.Radius)
	assert.Len(t, main.Meshes, 1, "a box stands in for the missing model")

	for i := range scene.MaxLights {
		id := scene.LightID(i)
		assert.True(t, reg.Light(id).CastsShadow(), "light %d", i)
		assert.NotEqual(t, scene.NoObject, reg.LightMarker(id))
	}
}

func TestUpdateUploadsLights(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()

	require.NoError(t, ta.scene.Update(ctx, 0.016))
	lights := ctx.Res.Store.Global.Lights
	assert.Equal(t, math.NewVec3(0, 2, 0), lights[0].Position)
	assert.Equal(t, math.NewVec3(0, -1, 0), lights[0].Direction)
	assert.True(t, scene.LightType(lights[0].Type).Has(scene.LightSpot))
	assert.True(t, scene.LightType(lights[1].Type).Has(scene.LightDirectional))
	assert.True(t, scene.LightType(lights[2].Type).Has(scene.LightPoint))
	assert.Equal(t, ctx.Camera.EyePos(), ctx.Res.Store.Global.EyeWorld)
}

func TestLightRotation(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	reg := ctx.Registry
	start := reg.Light(1).Position

	ctx.LightRotate = true
	require.NoError(t, ta.scene.Update(ctx, 1))

	l := reg.Light(1)
	assert.NotEqual(t, start, l.Position)
	assert.InDelta(t, start.Y, l.Position.Y, 1e-5)
	assert.InDelta(t, start.Length(), l.Position.Length(), 1e-5)

	marker, err := reg.Object(reg.LightMarker(1))
	require.NoError(t, err)
	assert.Equal(t, l.Position, marker.Bounds.Center, "marker follows the light")

	assert.Equal(t, math.NewVec3(0, 2, 0), reg.Light(0).Position, "the spot light stays put")
}

func TestMarkerHiddenWhenLightOff(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	reg := ctx.Registry

	reg.Light(2).Type = scene.LightOff
	require.NoError(t, ta.scene.Update(ctx, 0.016))

	marker, err := reg.Object(reg.LightMarker(2))
	require.NoError(t, err)
	assert.False(t, marker.Visible)
}

func TestUndoRedoKeys(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	reg := ctx.Registry
	id := ta.scene.MainObject()

	main, err := reg.Object(id)
	require.NoError(t, err)
	before := main.World
	moved := before.Mul(math.Mat4Translation(math.NewVec3(1, 0, 0)))
	ta.scene.history.Do(editor.NewTransformCommand(reg, id, before, moved, "move main"))
	assert.Equal(t, moved, main.World)

	ctx.Pressed = []int{core.KeyZ}
	ta.scene.UpdateGUI(ctx)
	assert.Equal(t, before, main.World)

	ctx.Pressed = []int{core.KeyR}
	ta.scene.UpdateGUI(ctx)
	assert.Equal(t, moved, main.World)
}

func TestEditedLightKeepsOrbiting(t *testing.T) {
	ta := newTestApp(t)
	ctx := ta.app.Context()
	reg := ctx.Registry
	ctx.LightRotate = true
	require.NoError(t, ta.scene.Update(ctx, 1))

	ctx.Pressed = []int{core.KeyRightBracket, core.KeyRight, core.KeyPeriod}
	ta.scene.UpdateGUI(ctx)
	ctx.Pressed = nil
	edited := *reg.Light(1)

	require.NoError(t, ta.scene.Update(ctx, 0))
	assert.Equal(t, edited.Position, reg.Light(1).Position)
	assert.InDelta(t, edited.Direction.X, reg.Light(1).Direction.X, 1e-6)
	assert.InDelta(t, edited.Direction.Y, reg.Light(1).Direction.Y, 1e-6)
	assert.InDelta(t, edited.Direction.Z, reg.Light(1).Direction.Z, 1e-6)

	require.NoError(t, ta.scene.Update(ctx, 1))
	l := reg.Light(1)
	assert.InDelta(t, edited.Direction.Y, l.Direction.Y, 1e-5, "the orbit turns about Y only")
	assert.InDelta(t, edited.Direction.Length(), l.Direction.Length(), 1e-5)
}
