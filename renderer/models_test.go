package renderer_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/internal/nullgpu"
	"deferred-renderer/math"
	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestModelsMaterialFlagsFollowLoadedTextures(t *testing.T) {
	dev := nullgpu.New(64, 64)
	models, err := renderer.NewModels(dev)
	require.NoError(t, err)

	albedo := filepath.Join(t.TempDir(), "albedo.png")
	writePNG(t, albedo)

	data := scene.MakeBox(1, false)
	data.AlbedoTexture = albedo
	data.NormalTexture = filepath.Join(t.TempDir(), "missing.png")
	obj := scene.NewObject("box", scene.CreateMeshFromData("box", data))
	obj.Material.InvertNormalMapY = true

	reg := scene.NewRegistry()
	id := reg.AddObject(obj)
	require.NoError(t, models.Sync(reg))

	b, ok := models.Binding(id)
	require.True(t, ok)
	assert.Equal(t, int32(1), b.Material.UseAlbedoMap)
	assert.Equal(t, int32(0), b.Material.UseNormalMap)
	assert.Equal(t, int32(0), b.Material.UseEmissiveMap)
	assert.Equal(t, int32(1), b.Material.InvertNormalMapY)

	o, err := reg.Object(id)
	require.NoError(t, err)
	assert.False(t, o.Dirty())
	g, ok := o.Meshes[0].GPUData.(*renderer.GPUMesh)
	require.True(t, ok)
	assert.Equal(t, uint32(36), g.IndexCount)
}

func TestModelsReuploadDirtyObjects(t *testing.T) {
	dev := nullgpu.New(64, 64)
	models, err := renderer.NewModels(dev)
	require.NoError(t, err)

	reg := scene.NewRegistry()
	id := reg.AddObject(scene.NewObject("box", scene.CreateMeshFromData("box", scene.MakeBox(1, false))))
	require.NoError(t, models.Sync(reg))

	dev.Reset()
	require.NoError(t, models.Sync(reg))
	assert.Zero(t, countOps(dev.Commands, "UpdateBuffer"))

	o, err := reg.Object(id)
	require.NoError(t, err)
	o.UpdateWorld(math.Mat4Translation(math.Vec3{X: 2}))
	require.NoError(t, models.Sync(reg))
	assert.Equal(t, 3, countOps(dev.Commands, "UpdateBuffer"))

	b, _ := models.Binding(id)
	assert.Equal(t, o.World.Transpose(), b.Mesh.World)
	assert.False(t, o.Dirty())
}

func TestModelsReleaseFreesEverything(t *testing.T) {
	dev := nullgpu.New(64, 64)
	baseTex, baseBuf := dev.LiveTextures(), dev.LiveBuffers()
	models, err := renderer.NewModels(dev)
	require.NoError(t, err)

	reg := scene.NewRegistry()
	mesh := scene.CreateMeshFromData("box", scene.MakeBox(1, false))
	reg.AddObject(scene.NewObject("a", mesh))
	reg.AddObject(scene.NewObject("b", mesh))
	require.NoError(t, models.Sync(reg))
	// One shared mesh, three constant buffers per object.
	assert.Equal(t, baseBuf+2+6, dev.LiveBuffers())

	models.Release()
	assert.Equal(t, baseTex, dev.LiveTextures())
	assert.Equal(t, baseBuf, dev.LiveBuffers())
	assert.Nil(t, mesh.GPUData)
}
