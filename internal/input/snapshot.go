package input

import (
	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

// Snapshot is the input state of one frame. It is a plain value: copying it
// copies everything, and nothing can change it after Sample returns.
type Snapshot struct {
	held     [platform.KeyCount]bool
	pressed  [platform.KeyCount]bool
	released [platform.KeyCount]bool

	actionHeld    [actionCount]bool
	actionPressed [actionCount]bool

	buttons        [maxButtons]bool
	buttonsPressed [maxButtons]bool

	cursor      core.Vec2
	cursorDelta core.Vec2

	closeRequested bool
	resized        bool
	width, height  int
	events         int
}

func validKey(k platform.Key) bool {
	return k > 0 && int(k) < platform.KeyCount
}

// Held reports whether the key is down at the end of the frame.
func (s Snapshot) Held(k platform.Key) bool {
	return validKey(k) && s.held[k]
}

// Pressed reports whether the key went down since the previous sample.
func (s Snapshot) Pressed(k platform.Key) bool {
	return validKey(k) && s.pressed[k]
}

// Released reports whether the key went up since the previous sample.
func (s Snapshot) Released(k platform.Key) bool {
	return validKey(k) && s.released[k]
}

// Action reports whether any key bound to a is held.
func (s Snapshot) Action(a Action) bool {
	return a > ActionNone && a < actionCount && s.actionHeld[a]
}

// ActionPressed reports whether any key bound to a went down this frame.
func (s Snapshot) ActionPressed(a Action) bool {
	return a > ActionNone && a < actionCount && s.actionPressed[a]
}

// Axis returns the movement direction from the four move actions.
// The result is not normalized.
func (s Snapshot) Axis() core.Vec2 {
	var v core.Vec2
	if s.Action(ActionMoveLeft) {
		v.X--
	}
	if s.Action(ActionMoveRight) {
		v.X++
	}
	if s.Action(ActionMoveUp) {
		v.Y--
	}
	if s.Action(ActionMoveDown) {
		v.Y++
	}
	return v
}

// Button reports whether a mouse button is held.
func (s Snapshot) Button(b int) bool {
	return b >= 0 && b < maxButtons && s.buttons[b]
}

// ButtonPressed reports whether a mouse button went down this frame.
func (s Snapshot) ButtonPressed(b int) bool {
	return b >= 0 && b < maxButtons && s.buttonsPressed[b]
}

// Cursor returns the cursor position in window units.
func (s Snapshot) Cursor() core.Vec2 {
	return s.cursor
}

// CursorDelta returns the cursor movement since the previous sample.
func (s Snapshot) CursorDelta() core.Vec2 {
	return s.cursorDelta
}

// CloseRequested reports whether the window asked to close this frame.
func (s Snapshot) CloseRequested() bool {
	return s.closeRequested
}

// Resized returns the new window size if it changed this frame.
func (s Snapshot) Resized() (w, h int, ok bool) {
	return s.width, s.height, s.resized
}

// Events returns how many raw events went into this snapshot.
func (s Snapshot) Events() int {
	return s.events
}

// Continued returns the snapshot as seen by a second fixed step in the same
// frame: held state and cursor stay, one-shot edges are cleared.
func (s Snapshot) Continued() Snapshot {
	c := s
	c.pressed = [platform.KeyCount]bool{}
	c.released = [platform.KeyCount]bool{}
	c.actionPressed = [actionCount]bool{}
	c.buttonsPressed = [maxButtons]bool{}
	c.cursorDelta = core.Vec2{}
	c.closeRequested = false
	c.resized = false
	return c
}
