package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/math"
)

func TestMakeSquare(t *testing.T) {
	data := MakeSquare(4, math.NewVec2(1, 1))
	require.Len(t, data.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, data.Indices)
	assert.Equal(t, math.NewVec3(-4, 4, 0), data.Vertices[0].Position)
	assert.Equal(t, math.Vec3Back, data.Vertices[0].Normal)
}

func TestMakeBoxNormalsPointOutward(t *testing.T) {
	for _, invert := range []bool{false, true} {
		data := MakeBox(2, invert)
		require.Len(t, data.Vertices, 24)
		require.Len(t, data.Indices, 36)
		for _, v := range data.Vertices {
			d := v.Position.Dot(v.Normal)
			if invert {
				assert.Less(t, d, float32(0))
			} else {
				assert.Greater(t, d, float32(0))
			}
			assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), 1e-5)
			assert.InDelta(t, 1, v.Tangent.Length(), 1e-5)
		}
	}
}

func TestMakeSphereRadius(t *testing.T) {
	data := MakeSphere(0.3, 20, 20, math.NewVec2(1, 1))
	require.Len(t, data.Vertices, 21*21)
	require.Len(t, data.Indices, 20*20*6)
	for _, v := range data.Vertices {
		assert.InDelta(t, 0.3, v.Position.Length(), 1e-5)
	}
	m := CreateMeshFromData("sphere", data)
	assert.InDelta(t, 0.3, m.LocalBounds.Radius, 1e-4)
	assert.Equal(t, uint32(len(data.Indices)), m.IndexCount)
}

func TestReverseWinding(t *testing.T) {
	data := MakeSquare(1, math.NewVec2(1, 1))
	rev := ReverseWinding(data)
	assert.Equal(t, []uint32{3, 2, 0, 2, 1, 0}, rev.Indices)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, data.Indices, "source indices are untouched")
}
