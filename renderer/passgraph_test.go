package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/core"
	"deferred-renderer/renderer"
)

func TestFrameGraphIsValid(t *testing.T) {
	g := renderer.FrameGraph()
	require.NoError(t, g.Validate())

	lighting, ok := g.Pass("lighting")
	require.True(t, ok)
	assert.Contains(t, lighting.Reads, "shadowmap0")
	assert.Contains(t, lighting.Reads, "shadowcube2")
	assert.NotContains(t, lighting.Reads, "resolved")

	_, ok = g.Pass("missing")
	assert.False(t, ok)
}

func TestPassGraphReadBeforeWrite(t *testing.T) {
	g := renderer.NewPassGraph("env")
	g.Add(renderer.Pass{Name: "sky", Reads: []string{"env"}, Writes: []string{"cubemap"}})
	g.Add(renderer.Pass{Name: "post", Reads: []string{"resolved", "cubemap"}, Writes: []string{"backbuffer"}})
	g.Add(renderer.Pass{Name: "lighting", Writes: []string{"resolved"}})

	err := g.Validate()
	require.ErrorIs(t, err, core.ErrPassOrder)
	assert.Contains(t, err.Error(), `"post"`)
	assert.Contains(t, err.Error(), `"resolved"`)
}

func TestPassGraphReadOwnWrite(t *testing.T) {
	g := renderer.NewPassGraph()
	g.Add(renderer.Pass{Name: "clear", Writes: []string{"resolved"}})
	g.Add(renderer.Pass{Name: "feedback", Reads: []string{"resolved"}, Writes: []string{"resolved"}})

	assert.ErrorIs(t, g.Validate(), core.ErrPassOrder)
}

func TestPassGraphExternals(t *testing.T) {
	g := renderer.NewPassGraph("noise")
	g.Add(renderer.Pass{Name: "ssao", Reads: []string{"noise"}, Writes: []string{"ssao"}})
	g.Add(renderer.Pass{Name: "blur", Reads: []string{"ssao"}, Writes: []string{"ssaoBlur"}})

	assert.NoError(t, g.Validate())
	assert.Len(t, g.Passes(), 2)
}
