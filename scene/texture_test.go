package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/core"
)

func writeStripPNG(t *testing.T, path string, face int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6*face, face))
	for f := 0; f < 6; f++ {
		c := color.NRGBA{R: uint8(f * 40), G: 10, B: 20, A: 255}
		for y := 0; y < face; y++ {
			for x := 0; x < face; x++ {
				img.SetNRGBA(f*face+x, y, c)
			}
		}
	}
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, png.Encode(out, img))
}

func TestLoadTextureAndSplitStrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.png")
	writeStripPNG(t, path, 2)

	tex, err := LoadTexture(path)
	require.NoError(t, err)
	assert.Equal(t, 12, tex.Width)
	assert.Equal(t, 2, tex.Height)
	assert.Len(t, tex.Pixels, 12*2*4)

	faces, err := SplitCubemapStrip(tex)
	require.NoError(t, err)
	for f, face := range faces {
		require.Equal(t, 2, face.Width)
		require.Len(t, face.Pixels, 2*2*4)
		for p := 0; p < 4; p++ {
			assert.Equal(t, uint8(f*40), face.Pixels[p*4], "face %s pixel %d", CubeFaceOrder[f], p)
		}
	}
}

func TestSplitCubemapStripRejectsWrongShape(t *testing.T) {
	_, err := SplitCubemapStrip(NewSolidTexture("one", 0, 0, 0, 255))
	assert.ErrorIs(t, err, core.ErrAssetRead)
}

func TestLoadTextureMissing(t *testing.T) {
	_, err := LoadTexture(filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, core.ErrAssetRead)
}
