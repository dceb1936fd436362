package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"deferred-renderer/renderer"
	"deferred-renderer/scene"
)

type glFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

var glFormats = map[renderer.Format]glFormat{
	renderer.FormatRGBA8:     {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	renderer.FormatRGBA8SRGB: {gl.SRGB8_ALPHA8, gl.RGBA, gl.UNSIGNED_BYTE},
	renderer.FormatRGBA16F:   {gl.RGBA16F, gl.RGBA, gl.FLOAT},
	renderer.FormatRGBA32F:   {gl.RGBA32F, gl.RGBA, gl.FLOAT},
	renderer.FormatD24S8:     {gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8},
	renderer.FormatD32F:      {gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT},
}

func target(desc renderer.TextureDesc) uint32 {
	if desc.Cube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

// allocTexture creates storage for desc and uploads data when given. Cube
// data holds the six faces back to back.
func allocTexture(desc renderer.TextureDesc, data []byte, mipmaps bool) (uint32, error) {
	f, ok := glFormats[desc.Format]
	if !ok {
		return 0, fmt.Errorf("unsupported format %d", desc.Format)
	}
	tgt := target(desc)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(tgt, id)

	minFilter, magFilter := int32(gl.LINEAR), int32(gl.LINEAR)
	if mipmaps {
		minFilter = gl.LINEAR_MIPMAP_LINEAR
	}
	if desc.Format.IsDepth() || desc.Format == renderer.FormatRGBA32F {
		minFilter, magFilter = gl.NEAREST, gl.NEAREST
	}
	wrap := int32(gl.REPEAT)
	if desc.Cube || desc.Usage&renderer.UsageRenderTarget != 0 || desc.Format.IsDepth() {
		wrap = gl.CLAMP_TO_EDGE
	}
	gl.TexParameteri(tgt, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(tgt, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(tgt, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(tgt, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(tgt, gl.TEXTURE_WRAP_R, wrap)

	w, h := int32(desc.Width), int32(desc.Height)
	if desc.Cube {
		faceSize := len(data) / 6
		for face := range 6 {
			var ptr unsafe.Pointer
			if len(data) > 0 {
				ptr = gl.Ptr(data[face*faceSize:])
			}
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), 0, f.internal, w, h, 0, f.format, f.xtype, ptr)
		}
	} else {
		var ptr unsafe.Pointer
		if len(data) > 0 {
			ptr = gl.Ptr(data)
		}
		gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal, w, h, 0, f.format, f.xtype, ptr)
	}
	if mipmaps {
		gl.GenerateMipmap(tgt)
	}
	gl.BindTexture(tgt, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &id)
		return 0, fmt.Errorf("texture %dx%d format %d: gl error 0x%X", desc.Width, desc.Height, desc.Format, e)
	}
	return id, nil
}

// cubeFaces concatenates the faces of a horizontal strip in upload order.
func cubeFaces(strip *scene.Texture) ([]byte, int, error) {
	faces, err := scene.SplitCubemapStrip(strip)
	if err != nil {
		return nil, 0, err
	}
	var data []byte
	for _, f := range faces {
		data = append(data, f.Pixels...)
	}
	return data, faces[0].Width, nil
}
