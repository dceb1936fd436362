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

func newStore(t *testing.T) (*nullgpu.Device, *renderer.Store) {
	t.Helper()
	dev := nullgpu.New(1280, 720)
	store, err := renderer.NewStore(dev, core.DefaultConfig())
	require.NoError(t, err)
	return dev, store
}

func testCameraMatrices() (math.Vec3, math.Mat4, math.Mat4) {
	eye := math.Vec3{X: 1, Y: 2, Z: -3}
	view := math.Mat4Translation(eye.Negate()).
		Mul(math.Mat4RotationY(-0.4)).
		Mul(math.Mat4RotationX(0.2))
	proj := math.Mat4PerspectiveFovLH(math.ToRadians(70), 16.0/9.0, 0.1, 100)
	return eye, view, proj
}

func TestStoreGlobalMatricesAreTransposed(t *testing.T) {
	_, store := newStore(t)
	eye, view, proj := testCameraMatrices()
	require.NoError(t, store.UpdateGlobalConstants(eye, view, proj))

	g := store.Global
	assert.Equal(t, eye, g.EyeWorld)
	assert.Equal(t, view.Transpose(), g.View)
	assert.Equal(t, proj.Transpose(), g.Proj)
	assert.Equal(t, view.Mul(proj).Transpose(), g.ViewProj)
	assert.Equal(t, proj.Inverse().Transpose(), g.InvProj)
}

func TestStoreInvViewProjUnprojects(t *testing.T) {
	_, store := newStore(t)
	eye, view, proj := testCameraMatrices()
	require.NoError(t, store.UpdateGlobalConstants(eye, view, proj))

	// invViewProj is the inverse of the uploaded (transposed) viewProj, so
	// transposing it back gives the row-vector inverse.
	g := store.Global
	assert.Equal(t, g.ViewProj.Inverse(), g.InvViewProj)

	world := math.Vec3{X: 0.5, Y: 1.5, Z: 4}
	clip := world.ToVec4(1).MulMat(view.Mul(proj))
	back := clip.MulMat(g.InvViewProj.Transpose()).ToVec3DivW()
	assertVec3InDelta(t, world, back, 1e-3)
}

func TestStoreUploadFailureWrapsSentinel(t *testing.T) {
	dev, store := newStore(t)
	dev.FailUpdates = true
	eye, view, proj := testCameraMatrices()

	err := store.UpdateGlobalConstants(eye, view, proj)
	assert.ErrorIs(t, err, core.ErrConstantUpload)
	assert.ErrorIs(t, err, nullgpu.ErrInjected)
	assert.ErrorIs(t, store.UpdatePostEffects(), core.ErrConstantUpload)
}

func TestStoreSetLightsDropsInactiveShadowBit(t *testing.T) {
	_, store := newStore(t)
	reg := scene.NewRegistry()
	l := scene.DefaultLight()
	l.Type = scene.LightSpot | scene.LightShadow
	l.Direction = math.Vec3Zero
	reg.SetLight(0, l)

	require.NoError(t, renderer.UpdateShadowLights(reg, store))
	store.SetLights(reg.Lights())

	assert.False(t, store.ShadowActive(0))
	assert.Equal(t, uint32(scene.LightSpot), store.Global.Lights[0].Type)
	assert.Equal(t, uint32(scene.LightOff), store.Global.Lights[1].Type)
}

func encodedSize[T any](t *testing.T) int {
	t.Helper()
	var v T
	data, err := renderer.Encode(&v)
	require.NoError(t, err)
	return len(data)
}

func TestConstantLayoutsArePadded(t *testing.T) {
	assert.Equal(t, 992, encodedSize[renderer.GlobalConstants](t))
	assert.Equal(t, 208, encodedSize[renderer.LightConstants](t))
	assert.Equal(t, 144, encodedSize[renderer.MeshConstants](t))
	assert.Equal(t, 64, encodedSize[renderer.MaterialConstants](t))
	assert.Equal(t, 272, encodedSize[renderer.InstancedConstants](t))
	assert.Equal(t, 32, encodedSize[renderer.PostEffectsConstants](t))
	assert.Equal(t, 1040, encodedSize[renderer.SSAOConstants](t))
	assert.Equal(t, 384, encodedSize[renderer.ShadowCubeConstants](t))
}
