package engine

import (
	"path/filepath"

	"deferred-renderer/core"
	"deferred-renderer/renderer"
)

// IBL maps follow the <set><Kind>.png naming under the cubemap directory.
var iblCubes = [3]string{"Specular", "Diffuse", "Env"}

// loadIBL returns specular, irradiance, env and brdf in SRVCommon order.
// A map that cannot be read is replaced by a black one and logged.
func loadIBL(dev renderer.Device, assets core.AssetConfig) ([4]renderer.Texture, error) {
	var ibl [4]renderer.Texture
	base := filepath.Join(assets.CubemapDir, assets.CubemapSet)

	for i, kind := range iblCubes {
		path := base + kind + ".png"
		t, err := dev.CreateCubemapFromFile(path)
		if err != nil {
			core.LogWarn("cubemap %s: %v", path, err)
			if t, err = blackTexture(dev, true); err != nil {
				releaseAll(dev, ibl[:i])
				return ibl, err
			}
		}
		ibl[i] = t
	}

	path := base + "Brdf.png"
	t, err := dev.CreateTextureFromFile(path, false)
	if err != nil {
		core.LogWarn("brdf %s: %v", path, err)
		if t, err = blackTexture(dev, false); err != nil {
			releaseAll(dev, ibl[:3])
			return ibl, err
		}
	}
	ibl[3] = t
	return ibl, nil
}

func blackTexture(dev renderer.Device, cube bool) (renderer.Texture, error) {
	desc := renderer.TextureDesc{
		Width: 1, Height: 1, Format: renderer.FormatRGBA8,
		Usage: renderer.UsageShaderResource, Cube: cube,
	}
	faces := 1
	if cube {
		faces = 6
	}
	data := make([]byte, 4*faces)
	for i := 3; i < len(data); i += 4 {
		data[i] = 0xff
	}
	return dev.CreateTexture(desc, data)
}

func releaseAll(dev renderer.Device, ts []renderer.Texture) {
	for _, t := range ts {
		dev.ReleaseTexture(t)
	}
}
