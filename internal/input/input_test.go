package input

import (
	"testing"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

func press(k platform.Key) platform.Event {
	return platform.KeyEvent{Key: k, Kind: platform.KeyPress}
}

func repeat(k platform.Key) platform.Event {
	return platform.KeyEvent{Key: k, Kind: platform.KeyRepeat}
}

func release(k platform.Key) platform.Event {
	return platform.KeyEvent{Key: k, Kind: platform.KeyRelease}
}

func TestPressHoldRelease(t *testing.T) {
	s := NewState(nil)

	s.Feed([]platform.Event{press(platform.KeyW)})
	snap := s.Sample()
	if !snap.Pressed(platform.KeyW) || !snap.Held(platform.KeyW) {
		t.Errorf("frame 1: Pressed=%v Held=%v, expected both true", snap.Pressed(platform.KeyW), snap.Held(platform.KeyW))
	}

	s.Feed([]platform.Event{repeat(platform.KeyW), repeat(platform.KeyW)})
	snap = s.Sample()
	if snap.Pressed(platform.KeyW) {
		t.Error("repeat should not produce a new press")
	}
	if !snap.Held(platform.KeyW) {
		t.Error("key should still be held")
	}

	s.Feed([]platform.Event{release(platform.KeyW)})
	snap = s.Sample()
	if !snap.Released(platform.KeyW) || snap.Held(platform.KeyW) {
		t.Errorf("frame 3: Released=%v Held=%v, expected true/false", snap.Released(platform.KeyW), snap.Held(platform.KeyW))
	}

	snap = s.Sample()
	if snap.Released(platform.KeyW) || snap.Pressed(platform.KeyW) {
		t.Error("edges should clear after one sample")
	}
}

func TestTapWithinOneFrame(t *testing.T) {
	s := NewState(nil)
	s.Feed([]platform.Event{press(platform.KeySpace), release(platform.KeySpace)})
	snap := s.Sample()

	if !snap.Pressed(platform.KeySpace) {
		t.Error("a tap inside one frame must still be seen as a press")
	}
	if !snap.Released(platform.KeySpace) {
		t.Error("a tap inside one frame must be seen as a release")
	}
	if snap.Held(platform.KeySpace) {
		t.Error("key should not be held after release")
	}
	if !snap.ActionPressed(ActionFire) {
		t.Error("ActionPressed(Fire) = false, expected true")
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := NewState(nil)
	s.Feed([]platform.Event{press(platform.KeyA)})
	snap := s.Sample()

	s.Feed([]platform.Event{release(platform.KeyA), press(platform.KeyD)})
	_ = s.Sample()

	if !snap.Held(platform.KeyA) {
		t.Error("earlier snapshot changed after later events")
	}
	if snap.Held(platform.KeyD) {
		t.Error("earlier snapshot sees a later key")
	}
}

func TestActionsAndAxis(t *testing.T) {
	tests := []struct {
		name string
		keys []platform.Key
		want core.Vec2
	}{
		{"none", nil, core.V(0, 0)},
		{"wasd up", []platform.Key{platform.KeyW}, core.V(0, -1)},
		{"arrow right", []platform.Key{platform.KeyRight}, core.V(1, 0)},
		{"diagonal", []platform.Key{platform.KeyS, platform.KeyA}, core.V(-1, 1)},
		{"opposed cancel", []platform.Key{platform.KeyA, platform.KeyD}, core.V(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(nil)
			var evs []platform.Event
			for _, k := range tt.keys {
				evs = append(evs, press(k))
			}
			s.Feed(evs)
			got := s.Sample().Axis()
			if got != tt.want {
				t.Errorf("Axis() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestCustomBindings(t *testing.T) {
	b := &Bindings{}
	b.Bind(ActionFire, platform.KeyX)
	s := NewState(b)

	s.Feed([]platform.Event{press(platform.KeySpace)})
	if s.Sample().Action(ActionFire) {
		t.Error("space should not be bound to fire")
	}

	s.Feed([]platform.Event{press(platform.KeyX)})
	if !s.Sample().Action(ActionFire) {
		t.Error("x should be bound to fire")
	}
	if got := b.Keys(ActionNone); got != nil {
		t.Errorf("Keys(ActionNone) = %v, expected nil", got)
	}
}

func TestMouseCloseResize(t *testing.T) {
	s := NewState(nil)
	s.Feed([]platform.Event{
		platform.MouseMove{X: 10, Y: 5},
		platform.MouseButton{Button: 0, Down: true, X: 12, Y: 6},
		platform.Resize{W: 100, H: 40},
		platform.CloseRequest{},
	})
	snap := s.Sample()

	if snap.Cursor() != core.V(12, 6) {
		t.Errorf("Cursor() = %v, expected (12, 6)", snap.Cursor())
	}
	if snap.CursorDelta() != core.V(12, 6) {
		t.Errorf("CursorDelta() = %v, expected (12, 6)", snap.CursorDelta())
	}
	if !snap.Button(0) || !snap.ButtonPressed(0) {
		t.Error("button 0 should be held and pressed")
	}
	if w, h, ok := snap.Resized(); !ok || w != 100 || h != 40 {
		t.Errorf("Resized() = %d, %d, %v, expected 100, 40, true", w, h, ok)
	}
	if !snap.CloseRequested() {
		t.Error("CloseRequested() = false, expected true")
	}
	if snap.Events() != 4 {
		t.Errorf("Events() = %d, expected 4", snap.Events())
	}

	s.Feed([]platform.Event{platform.MouseMove{X: 15, Y: 6}})
	snap = s.Sample()
	if snap.CursorDelta() != core.V(3, 0) {
		t.Errorf("CursorDelta() = %v, expected (3, 0)", snap.CursorDelta())
	}
	if snap.ButtonPressed(0) || !snap.Button(0) {
		t.Error("button 0 should be held without a new press")
	}
	if snap.CloseRequested() {
		t.Error("close request should not persist")
	}
	if _, _, ok := snap.Resized(); ok {
		t.Error("resize should not persist")
	}
}

func TestZeroSnapshot(t *testing.T) {
	var snap Snapshot
	if snap.Held(platform.KeyW) || snap.Action(ActionQuit) || snap.Held(platform.Key(9999)) {
		t.Error("zero snapshot should report nothing")
	}
}

func TestActionString(t *testing.T) {
	if ActionMoveUp.String() != "MoveUp" {
		t.Errorf("String() = %q, expected %q", ActionMoveUp.String(), "MoveUp")
	}
	if Action(99).String() != "Unknown" {
		t.Errorf("String() = %q, expected Unknown", Action(99).String())
	}
}

func TestContinuedClearsEdges(t *testing.T) {
	s := NewState(nil)
	s.Feed([]platform.Event{press(platform.KeySpace), platform.MouseMove{X: 3, Y: 4}})
	snap := s.Sample().Continued()
	if snap.Pressed(platform.KeySpace) || snap.ActionPressed(ActionFire) {
		t.Error("Continued() kept the press edge")
	}
	if !snap.Held(platform.KeySpace) || !snap.Action(ActionFire) {
		t.Error("Continued() dropped the held state")
	}
	if snap.CursorDelta() != (core.Vec2{}) || snap.Cursor() != core.V(3, 4) {
		t.Errorf("Continued() cursor = %v delta %v", snap.Cursor(), snap.CursorDelta())
	}
}
