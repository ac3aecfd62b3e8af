package input

import (
	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

const maxButtons = 8

// State accumulates window events between samples.
// It is owned by the game loop goroutine.
type State struct {
	bindings *Bindings

	held     [platform.KeyCount]bool
	pressed  [platform.KeyCount]bool
	released [platform.KeyCount]bool

	buttons        [maxButtons]bool
	buttonsPressed [maxButtons]bool

	cursor     core.Vec2
	lastCursor core.Vec2

	closeRequested bool
	resized        bool
	width, height  int
	events         int
}

// NewState creates an input state using the given bindings.
// A nil bindings value uses DefaultBindings.
func NewState(b *Bindings) *State {
	if b == nil {
		b = DefaultBindings()
	}
	return &State{bindings: b}
}

// Feed records events drained from the window. Repeated key events are
// folded into the held state; a press followed by a release before the next
// sample still shows up as Pressed in that sample.
func (s *State) Feed(events []platform.Event) {
	for _, ev := range events {
		s.events++
		switch e := ev.(type) {
		case platform.KeyEvent:
			s.feedKey(e)
		case platform.MouseMove:
			s.cursor = core.V(e.X, e.Y)
		case platform.MouseButton:
			if e.Button < 0 || e.Button >= maxButtons {
				continue
			}
			if e.Down && !s.buttons[e.Button] {
				s.buttonsPressed[e.Button] = true
			}
			s.buttons[e.Button] = e.Down
			s.cursor = core.V(e.X, e.Y)
		case platform.Resize:
			s.resized = true
			s.width, s.height = e.W, e.H
		case platform.CloseRequest:
			s.closeRequested = true
		}
	}
}

func (s *State) feedKey(e platform.KeyEvent) {
	k := int(e.Key)
	if k <= 0 || k >= platform.KeyCount {
		return
	}
	switch e.Kind {
	case platform.KeyPress, platform.KeyRepeat:
		// A repeat without a prior press means the press was lost by the
		// backend; treat it as the press.
		if !s.held[k] {
			s.pressed[k] = true
		}
		s.held[k] = true
	case platform.KeyRelease:
		if s.held[k] || s.pressed[k] {
			s.released[k] = true
		}
		s.held[k] = false
	}
}

// Sample produces the snapshot for the current frame and resets the
// per-frame edges. Call it exactly once per frame.
func (s *State) Sample() Snapshot {
	snap := Snapshot{
		held:           s.held,
		pressed:        s.pressed,
		released:       s.released,
		buttons:        s.buttons,
		buttonsPressed: s.buttonsPressed,
		cursor:         s.cursor,
		cursorDelta:    s.cursor.Sub(s.lastCursor),
		closeRequested: s.closeRequested,
		resized:        s.resized,
		width:          s.width,
		height:         s.height,
		events:         s.events,
	}
	for a := ActionNone + 1; a < actionCount; a++ {
		for _, k := range s.bindings.keys[a] {
			if s.held[k] {
				snap.actionHeld[a] = true
			}
			if s.pressed[k] {
				snap.actionPressed[a] = true
			}
		}
	}

	s.pressed = [platform.KeyCount]bool{}
	s.released = [platform.KeyCount]bool{}
	s.buttonsPressed = [maxButtons]bool{}
	s.lastCursor = s.cursor
	s.closeRequested = false
	s.resized = false
	s.events = 0
	return snap
}
