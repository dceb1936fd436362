package editor

import (
	"deferred-renderer/core"
	"deferred-renderer/math"
	"deferred-renderer/scene"
)

// Command represents an undoable editor action
type Command interface {
	Execute()
	Undo()
	Description() string
}

// History manages undo/redo stacks
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
}

func NewHistory(maxDepth int) *History {
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  max(maxDepth, 1),
	}
}

// Do executes a command and pushes it to the undo stack
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.Push(cmd)
}

// Push records a command whose effect is already applied.
func (h *History) Push(cmd Command) {
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	h.redoStack = h.redoStack[:0]
}

// Undo reverts the last action
func (h *History) Undo() bool {
	if len(h.undoStack) == 0 {
		return false
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	core.LogDebug("undo: %s", cmd.Description())
	return true
}

// Redo reapplies the last undone action
func (h *History) Redo() bool {
	if len(h.redoStack) == 0 {
		return false
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	core.LogDebug("redo: %s", cmd.Description())
	return true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

// TransformCommand swaps an object's world matrix. The object is looked up
// by ID each time, so registry growth does not invalidate it.
type TransformCommand struct {
	Registry *scene.Registry
	ID       scene.ObjectID
	Old      math.Mat4
	New      math.Mat4
	desc     string
}

func NewTransformCommand(reg *scene.Registry, id scene.ObjectID, oldWorld, newWorld math.Mat4, desc string) *TransformCommand {
	return &TransformCommand{Registry: reg, ID: id, Old: oldWorld, New: newWorld, desc: desc}
}

func (c *TransformCommand) Execute()            { c.set(c.New) }
func (c *TransformCommand) Undo()               { c.set(c.Old) }
func (c *TransformCommand) Description() string { return c.desc }

func (c *TransformCommand) set(world math.Mat4) {
	obj, err := c.Registry.Object(c.ID)
	if err != nil {
		core.LogWarn("%s: %v", c.desc, err)
		return
	}
	obj.UpdateWorld(world)
	obj.Bounds.Center = world.Translation()
}

// DragRecorder turns each finished drag into a single TransformCommand.
type DragRecorder struct {
	active bool
	start  math.Mat4
}

// Track is called once per frame after the drag delta is applied.
func (d *DragRecorder) Track(h *History, reg *scene.Registry, id scene.ObjectID, dragging bool) {
	obj, err := reg.Object(id)
	if err != nil {
		return
	}
	switch {
	case dragging && !d.active:
		d.active = true
		d.start = obj.World
	case !dragging && d.active:
		d.active = false
		if obj.World != d.start {
			h.Push(NewTransformCommand(reg, id, d.start, obj.World, "drag "+obj.Name))
		}
	}
}
