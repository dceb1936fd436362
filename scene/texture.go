package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"deferred-renderer/core"
)

// Texture holds CPU-side RGBA8 pixels, row-major, top row first.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// LoadTexture decodes png, jpeg, bmp, tiff or webp from disk into RGBA8.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w: %w", path, core.ErrAssetRead, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w: %w", path, core.ErrAssetRead, err)
	}
	return textureFromImage(path, img), nil
}

func textureFromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(rgba, image.Point{}, img, b, draw.Src, nil)
	}
	return &Texture{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: rgba.Pix,
	}
}

// NewSolidTexture creates a 1x1 texture, used in place of assets that
// failed to load.
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}

// CubeFaceOrder is the face order of a horizontal cubemap strip.
var CubeFaceOrder = [6]string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"}

// SplitCubemapStrip cuts a horizontal strip of six square faces, ordered as
// CubeFaceOrder, into separate textures.
func SplitCubemapStrip(t *Texture) ([6]*Texture, error) {
	var faces [6]*Texture
	if t.Width != 6*t.Height {
		return faces, fmt.Errorf("cubemap %q is %dx%d, want a 6:1 strip: %w", t.Name, t.Width, t.Height, core.ErrAssetRead)
	}
	size := t.Height
	stride := t.Width * 4
	for f := range faces {
		pix := make([]byte, size*size*4)
		for y := 0; y < size; y++ {
			src := y*stride + f*size*4
			copy(pix[y*size*4:(y+1)*size*4], t.Pixels[src:src+size*4])
		}
		faces[f] = &Texture{
			Name:   t.Name + CubeFaceOrder[f],
			Width:  size,
			Height: size,
			Pixels: pix,
		}
	}
	return faces, nil
}
