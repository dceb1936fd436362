package editor

import (
	"deferred-renderer/core"
	"deferred-renderer/math"
)

// InputState is fed by window events and read once per frame. The cursor
// is kept in NDC clamped to [-1, 1], +Y up.
type InputState struct {
	CursorNDC math.Vec2

	LeftButton  bool
	RightButton bool

	// A drag-start flag is raised on the button-down transition and
	// cleared by the first Manipulator.Update that reads it.
	leftDragStart  bool
	rightDragStart bool

	keys [core.KeyLast + 1]bool

	width  int
	height int
}

func NewInputState(width, height int) *InputState {
	return &InputState{width: max(width, 1), height: max(height, 1)}
}

func (s *InputState) SetScreenSize(width, height int) {
	s.width, s.height = max(width, 1), max(height, 1)
}

// SetCursor converts a pixel position to clamped NDC.
func (s *InputState) SetCursor(x, y float64) {
	ndc := math.NewVec2(
		float32(x)*2/float32(s.width)-1,
		-float32(y)*2/float32(s.height)+1,
	)
	s.CursorNDC = ndc.Clamp(-1, 1)
}

func (s *InputState) SetButton(button int, pressed bool) {
	switch button {
	case core.MouseLeft:
		if pressed && !s.LeftButton {
			s.leftDragStart = true
		}
		s.LeftButton = pressed
	case core.MouseRight:
		if pressed && !s.RightButton {
			s.rightDragStart = true
		}
		s.RightButton = pressed
	}
}

func (s *InputState) SetKey(key int, pressed bool) {
	if key < 0 || key >= len(s.keys) {
		return
	}
	s.keys[key] = pressed
}

func (s *InputState) IsKeyDown(key int) bool {
	if key < 0 || key >= len(s.keys) {
		return false
	}
	return s.keys[key]
}

// Dragging reports whether either manipulation button is held.
func (s *InputState) Dragging() bool {
	return s.LeftButton || s.RightButton
}

func (s *InputState) consumeDragStart(button int) bool {
	var flag *bool
	switch button {
	case core.MouseLeft:
		flag = &s.leftDragStart
	case core.MouseRight:
		flag = &s.rightDragStart
	default:
		return false
	}
	started := *flag
	*flag = false
	return started
}
