package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/math"
	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

func shadowLight(typ scene.LightType, pos, dir math.Vec3) *scene.Light {
	l := scene.DefaultLight()
	l.Type = typ | scene.LightShadow
	l.Position = pos
	l.Direction = dir
	return &l
}

func TestShadowTransformSubstitutesUpWhenLookingDown(t *testing.T) {
	l := shadowLight(scene.LightSpot, math.Vec3{Y: 2}, math.Vec3Down)
	st, ok := renderer.ComputeShadowTransform(l)
	require.True(t, ok)
	assert.Equal(t, math.Vec3Right, st.Up)
	assert.True(t, st.ViewProj.IsFinite())
	assert.Equal(t, st.View.Mul(st.Proj), st.ViewProj)
}

func TestShadowTransformKeepsUp(t *testing.T) {
	l := shadowLight(scene.LightDirectional, math.Vec3{X: -0.5, Y: 1.2}, math.Vec3{X: 0.5, Y: -1.5})
	st, ok := renderer.ComputeShadowTransform(l)
	require.True(t, ok)
	assert.Equal(t, math.Vec3Up, st.Up)
	assert.True(t, st.InvProj.IsFinite())
}

func TestShadowTransformRejects(t *testing.T) {
	noShadow := shadowLight(scene.LightSpot, math.Vec3{Y: 2}, math.Vec3Down)
	noShadow.Type = scene.LightSpot
	_, ok := renderer.ComputeShadowTransform(noShadow)
	assert.False(t, ok)

	off := shadowLight(scene.LightOff, math.Vec3{Y: 2}, math.Vec3Down)
	_, ok = renderer.ComputeShadowTransform(off)
	assert.False(t, ok)

	zeroDir := shadowLight(scene.LightSpot, math.Vec3{Y: 2}, math.Vec3Zero)
	_, ok = renderer.ComputeShadowTransform(zeroDir)
	assert.False(t, ok)

	// The eye coincides with the look-at target.
	degenerate := shadowLight(scene.LightSpot, math.Vec3{Z: 1}, math.Vec3Front)
	_, ok = renderer.ComputeShadowTransform(degenerate)
	assert.False(t, ok)
}

func TestPointFacesCenterTheirDirection(t *testing.T) {
	pos := math.Vec3{X: -1.3, Y: -0.4, Z: -1}
	dirs := []math.Vec3{
		math.Vec3Right, math.Vec3Left, math.Vec3Up,
		math.Vec3Down, math.Vec3Front, math.Vec3Back,
	}
	faces := renderer.ComputePointFaces(pos)
	for i, dir := range dirs {
		ndc := pos.Add(dir.Mul(5)).TransformCoord(faces[i])
		assert.InDelta(t, 0, ndc.X, 1e-4, "face %d", i)
		assert.InDelta(t, 0, ndc.Y, 1e-4, "face %d", i)
		assert.True(t, ndc.Z > 0 && ndc.Z < 1, "face %d depth %v", i, ndc.Z)
	}
}

func TestUpdateShadowLightsWritesBack(t *testing.T) {
	_, store := newStore(t)
	reg := scene.NewRegistry()
	reg.SetLight(0, *shadowLight(scene.LightSpot, math.Vec3{Y: 2}, math.Vec3Down))
	point := shadowLight(scene.LightPoint, math.Vec3{X: -1.3, Y: -0.4, Z: -1}, math.Vec3Front)
	reg.SetLight(2, *point)

	require.NoError(t, renderer.UpdateShadowLights(reg, store))

	l := reg.Light(0)
	st, ok := renderer.ComputeShadowTransform(l)
	require.True(t, ok)
	assert.Equal(t, st.ViewProj.Transpose(), l.ViewProj)
	assert.Equal(t, st.InvProj.Transpose(), l.InvProj)
	assert.Equal(t, math.Vec3Right, l.ShadowUp)
	assert.Equal(t, l.Position, store.Shadow[0].EyeWorld)
	assert.Equal(t, st.View.Transpose(), store.Shadow[0].View)

	assert.True(t, store.ShadowActive(0))
	assert.False(t, store.ShadowActive(1))
	assert.True(t, store.ShadowActive(2))

	faces := renderer.ComputePointFaces(reg.Light(2).Position)
	assert.Equal(t, faces[4].Transpose(), store.ShadowCube[2].ViewProj[4])
}
