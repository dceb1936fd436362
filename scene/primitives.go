package scene

import (
	"slices"

	"deferred-renderer/core"
	"deferred-renderer/math"
)

// MakeSquare is a quad in the XY plane facing -Z, spanning [-scale, scale].
func MakeSquare(scale float32, texScale math.Vec2) core.MeshData {
	positions := [4]math.Vec3{{X: -1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: -1}}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	var data core.MeshData
	for i := range positions {
		data.Vertices = append(data.Vertices, core.Vertex{
			Position: positions[i].Mul(scale),
			Normal:   math.Vec3Back,
			UV:       math.Vec2{X: uvs[i].X * texScale.X, Y: uvs[i].Y * texScale.Y},
			Tangent:  math.Vec3Right,
		})
	}
	data.Indices = []uint32{0, 1, 2, 0, 2, 3}
	return data
}

// boxFaces lists each face's corners in clockwise order seen from outside.
var boxFaces = [6]struct {
	normal  math.Vec3
	corners [4]math.Vec3
}{
	{math.Vec3Up, [4]math.Vec3{{X: -1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}}},
	{math.Vec3Down, [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: 1}}},
	{math.Vec3Back, [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: -1, Z: -1}}},
	{math.Vec3Front, [4]math.Vec3{{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}}},
	{math.Vec3Left, [4]math.Vec3{{X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: -1}}},
	{math.Vec3Right, [4]math.Vec3{{X: 1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}}},
}

// MakeBox builds a cube of half extent scale with 4 vertices per face.
// invertNormal points the normals inward, for boxes seen from inside.
func MakeBox(scale float32, invertNormal bool) core.MeshData {
	flag := float32(1)
	if invertNormal {
		flag = -1
	}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	var data core.MeshData
	for f, face := range boxFaces {
		for i, c := range face.corners {
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: c.Mul(scale),
				Normal:   face.normal.Mul(flag),
				UV:       uvs[i],
			})
		}
		base := uint32(f * 4)
		data.Indices = append(data.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	ComputeTangents(&data)
	return data
}

// MakeSphere builds a UV sphere by sweeping a meridian around Y.
func MakeSphere(radius float32, numSlices, numStacks int, texScale math.Vec2) core.MeshData {
	if numSlices < 3 {
		numSlices = 3
	}
	if numStacks < 2 {
		numStacks = 2
	}
	dTheta := -math.TwoPi / float32(numSlices)
	dPhi := -math.Pi / float32(numStacks)

	var data core.MeshData
	for j := 0; j <= numStacks; j++ {
		start := math.NewVec3(0, -radius, 0).TransformCoord(math.Mat4RotationZ(dPhi * float32(j)))
		for i := 0; i <= numSlices; i++ {
			pos := start.TransformCoord(math.Mat4RotationY(dTheta * float32(i)))
			normal := pos.Normalize()

			biTangent := math.Vec3Up
			normalOrth := normal.Sub(normal.Mul(biTangent.Dot(normal))).Normalize()

			data.Vertices = append(data.Vertices, core.Vertex{
				Position: pos,
				Normal:   normal,
				UV: math.Vec2{
					X: float32(i) / float32(numSlices) * texScale.X,
					Y: (1 - float32(j)/float32(numStacks)) * texScale.Y,
				},
				Tangent: biTangent.Cross(normalOrth).Normalize(),
			})
		}
	}

	for j := 0; j < numStacks; j++ {
		offset := uint32((numSlices + 1) * j)
		for i := uint32(0); i < uint32(numSlices); i++ {
			next := uint32(numSlices + 1)
			data.Indices = append(data.Indices,
				offset+i, offset+i+next, offset+i+1+next,
				offset+i, offset+i+1+next, offset+i+1,
			)
		}
	}
	return data
}

// ReverseWinding flips every triangle so the inside faces the viewer.
func ReverseWinding(data core.MeshData) core.MeshData {
	data.Indices = slices.Clone(data.Indices)
	slices.Reverse(data.Indices)
	return data
}
