package scene

import (
	"deferred-renderer/core"
	"deferred-renderer/math"
)

// ComputeTangents fills the per-vertex tangents of data from its UVs, for
// tangent-space normal mapping. Triangles with a degenerate UV area are
// skipped; vertices left without a tangent get one perpendicular to the
// normal.
func ComputeTangents(data *core.MeshData) {
	verts := data.Vertices
	for i := range verts {
		verts[i].Tangent = math.Vec3{}
	}

	accum := func(i0, i1, i2 uint32) {
		v0, v1, v2 := verts[i0], verts[i1], verts[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1 := v1.UV.X - v0.UV.X
		dv1 := v1.UV.Y - v0.UV.Y
		du2 := v2.UV.X - v0.UV.X
		dv2 := v2.UV.Y - v0.UV.Y

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			return
		}
		t := e1.Mul(dv2 / denom).Sub(e2.Mul(dv1 / denom))

		verts[i0].Tangent = verts[i0].Tangent.Add(t)
		verts[i1].Tangent = verts[i1].Tangent.Add(t)
		verts[i2].Tangent = verts[i2].Tangent.Add(t)
	}

	if len(data.Indices) > 0 {
		for i := 0; i+2 < len(data.Indices); i += 3 {
			accum(data.Indices[i], data.Indices[i+1], data.Indices[i+2])
		}
	} else {
		for i := 0; i+2 < len(verts); i += 3 {
			accum(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	// Gram-Schmidt against the normal.
	for i := range verts {
		n := verts[i].Normal
		t := verts[i].Tangent.Sub(n.Mul(n.Dot(verts[i].Tangent)))
		if t.LengthSqr() < 1e-8 {
			if math.Abs(n.X) < 0.9 {
				t = math.Vec3Right.Sub(n.Mul(n.X))
			} else {
				t = math.Vec3Up.Sub(n.Mul(n.Y))
			}
		}
		verts[i].Tangent = t.Normalize()
	}
}
