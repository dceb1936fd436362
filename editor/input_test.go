package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deferred-renderer/core"
	"deferred-renderer/math"
)

func TestCursorToClampedNDC(t *testing.T) {
	in := NewInputState(100, 50)

	cases := []struct {
		x, y float64
		want math.Vec2
	}{
		{0, 0, math.NewVec2(-1, 1)},
		{50, 25, math.NewVec2(0, 0)},
		{100, 50, math.NewVec2(1, -1)},
		{-20, 200, math.NewVec2(-1, -1)},
	}
	for _, c := range cases {
		in.SetCursor(c.x, c.y)
		assert.InDelta(t, c.want.X, in.CursorNDC.X, 1e-6, "x for (%v, %v)", c.x, c.y)
		assert.InDelta(t, c.want.Y, in.CursorNDC.Y, 1e-6, "y for (%v, %v)", c.x, c.y)
	}
}

func TestDragStartConsumedOnce(t *testing.T) {
	in := NewInputState(100, 100)

	in.SetButton(core.MouseLeft, true)
	in.SetButton(core.MouseLeft, true)
	assert.True(t, in.consumeDragStart(core.MouseLeft))
	assert.False(t, in.consumeDragStart(core.MouseLeft))
	assert.False(t, in.consumeDragStart(core.MouseRight))

	in.SetButton(core.MouseLeft, false)
	assert.False(t, in.Dragging())
	in.SetButton(core.MouseLeft, true)
	assert.True(t, in.consumeDragStart(core.MouseLeft))
}

func TestKeysOutOfRange(t *testing.T) {
	in := NewInputState(100, 100)
	in.SetKey(-1, true)
	in.SetKey(core.KeyLast+1, true)
	assert.False(t, in.IsKeyDown(-1))

	in.SetKey(core.KeyW, true)
	assert.True(t, in.IsKeyDown(core.KeyW))
	in.SetKey(core.KeyW, false)
	assert.False(t, in.IsKeyDown(core.KeyW))
}
