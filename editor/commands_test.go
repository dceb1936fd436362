package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deferred-renderer/math"
	"deferred-renderer/scene"
)

func TestDragRecorderUndoRedo(t *testing.T) {
	reg := scene.NewRegistry()
	id := reg.AddObject(scene.NewObject("box"))
	h := NewHistory(8)
	var rec DragRecorder

	obj, err := reg.Object(id)
	require.NoError(t, err)
	start := obj.World

	rec.Track(h, reg, id, true)
	obj.UpdateWorld(math.Mat4Translation(math.NewVec3(1, 0, 0)))
	rec.Track(h, reg, id, true)
	assert.False(t, h.CanUndo(), "nothing is recorded while the drag is held")

	rec.Track(h, reg, id, false)
	require.True(t, h.CanUndo())

	require.True(t, h.Undo())
	obj, _ = reg.Object(id)
	assert.Equal(t, start, obj.World)
	assert.Equal(t, math.Vec3Zero, obj.Bounds.Center)

	require.True(t, h.Redo())
	obj, _ = reg.Object(id)
	assert.Equal(t, math.NewVec3(1, 0, 0), obj.World.Translation())
	assert.False(t, h.CanRedo())
}

func TestDragWithoutMotionRecordsNothing(t *testing.T) {
	reg := scene.NewRegistry()
	id := reg.AddObject(scene.NewObject("box"))
	h := NewHistory(8)
	var rec DragRecorder

	rec.Track(h, reg, id, true)
	rec.Track(h, reg, id, false)
	assert.False(t, h.CanUndo())
}

func TestHistoryDepthLimit(t *testing.T) {
	reg := scene.NewRegistry()
	id := reg.AddObject(scene.NewObject("box"))
	h := NewHistory(2)

	for i := range 3 {
		world := math.Mat4Translation(math.NewVec3(float32(i+1), 0, 0))
		h.Do(NewTransformCommand(reg, id, math.Mat4Identity(), world, "move"))
	}
	assert.True(t, h.Undo())
	assert.True(t, h.Undo())
	assert.False(t, h.Undo())
}
