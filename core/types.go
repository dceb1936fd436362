package core

import (
	"deferred-renderer/math"
)

// Vertex is the single vertex layout used by every mesh.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Tangent  math.Vec3
}

// MeshData is what asset loading and the primitive generators hand to the
// renderer. Texture fields are file paths; empty means not present.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32

	AlbedoTexture    string
	EmissiveTexture  string
	NormalTexture    string
	HeightTexture    string
	AOTexture        string
	MetallicTexture  string
	RoughnessTexture string
}

type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// FullViewport covers a width x height target with the [0, 1] depth range.
func FullViewport(width, height int) Viewport {
	return Viewport{Width: float32(width), Height: float32(height), MaxDepth: 1}
}
