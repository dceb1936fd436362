package scene

import (
	"deferred-renderer/core"
	"deferred-renderer/math"
)

// Mesh holds CPU-side vertex/index data and the texture file references of
// one draw call. GPU upload is managed by the renderer.
type Mesh struct {
	Name       string
	Data       core.MeshData
	IndexCount uint32

	// LocalBounds encloses every vertex position in model space.
	LocalBounds math.BoundingSphere

	// GPUData is set by the renderer once the buffers exist.
	GPUData interface{}
}

func CreateMeshFromData(name string, data core.MeshData) *Mesh {
	m := &Mesh{
		Name:       name,
		Data:       data,
		IndexCount: uint32(len(data.Indices)),
	}
	if len(data.Vertices) > 0 {
		m.LocalBounds = computeLocalBounds(data.Vertices)
	}
	return m
}

// computeLocalBounds returns the sphere around the AABB center that reaches
// the farthest vertex.
func computeLocalBounds(vertices []core.Vertex) math.BoundingSphere {
	lo, hi := aabb(vertices)
	center := lo.Add(hi).Mul(0.5)
	var r2 float32
	for _, v := range vertices {
		if d := v.Position.Sub(center).LengthSqr(); d > r2 {
			r2 = d
		}
	}
	return math.BoundingSphere{Center: center, Radius: math.Sqrt(r2)}
}

func aabb(vertices []core.Vertex) (math.Vec3, math.Vec3) {
	min := vertices[0].Position
	max := vertices[0].Position
	for i := 1; i < len(vertices); i++ {
		p := vertices[i].Position
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max
}
