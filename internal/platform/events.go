package platform

// Event is anything a window reports through PollEvents.
type Event interface {
	isEvent()
}

// KeyKind distinguishes the phases of a key event.
type KeyKind uint8

const (
	KeyPress KeyKind = iota
	KeyRepeat
	KeyRelease
)

// KeyEvent reports a keyboard transition.
type KeyEvent struct {
	Key  Key
	Kind KeyKind
}

// MouseMove reports a new cursor position in window units.
type MouseMove struct {
	X, Y float64
}

// MouseButton reports a button transition at a cursor position.
type MouseButton struct {
	Button int
	Down   bool
	X, Y   float64
}

// Resize reports a new drawable size.
type Resize struct {
	W, H int
}

// CloseRequest is emitted when the user asks the window to close.
type CloseRequest struct{}

func (KeyEvent) isEvent()     {}
func (MouseMove) isEvent()    {}
func (MouseButton) isEvent()  {}
func (Resize) isEvent()       {}
func (CloseRequest) isEvent() {}
