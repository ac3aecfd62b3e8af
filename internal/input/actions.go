// Package input turns raw window events into one immutable snapshot per frame.
package input

import "github.com/vovakirdan/topdown/internal/platform"

// Action represents a semantic game action, abstracted from physical key presses.
// This allows gameplay systems to work with intents rather than raw keys.
type Action int

const (
	ActionNone      Action = iota
	ActionMoveUp           // W, Up arrow
	ActionMoveDown         // S, Down arrow
	ActionMoveLeft         // A, Left arrow
	ActionMoveRight        // D, Right arrow
	ActionFire             // Space
	ActionConfirm          // Enter
	ActionBack             // Escape
	ActionPause            // P
	ActionRestart          // R
	ActionQuit             // Q, Ctrl+C
	actionCount
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionMoveUp:
		return "MoveUp"
	case ActionMoveDown:
		return "MoveDown"
	case ActionMoveLeft:
		return "MoveLeft"
	case ActionMoveRight:
		return "MoveRight"
	case ActionFire:
		return "Fire"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionPause:
		return "Pause"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Bindings maps actions to the keys that trigger them.
type Bindings struct {
	keys [actionCount][]platform.Key
}

// DefaultBindings returns WASD + arrow key bindings.
func DefaultBindings() *Bindings {
	b := &Bindings{}
	b.Bind(ActionMoveUp, platform.KeyW, platform.KeyUp)
	b.Bind(ActionMoveDown, platform.KeyS, platform.KeyDown)
	b.Bind(ActionMoveLeft, platform.KeyA, platform.KeyLeft)
	b.Bind(ActionMoveRight, platform.KeyD, platform.KeyRight)
	b.Bind(ActionFire, platform.KeySpace)
	b.Bind(ActionConfirm, platform.KeyEnter)
	b.Bind(ActionBack, platform.KeyEscape)
	b.Bind(ActionPause, platform.KeyP)
	b.Bind(ActionRestart, platform.KeyR)
	b.Bind(ActionQuit, platform.KeyQ, platform.KeyCtrlC)
	return b
}

// Bind adds keys to an action.
func (b *Bindings) Bind(a Action, keys ...platform.Key) {
	if a <= ActionNone || a >= actionCount {
		return
	}
	b.keys[a] = append(b.keys[a], keys...)
}

// Keys returns the keys bound to an action.
func (b *Bindings) Keys(a Action) []platform.Key {
	if a <= ActionNone || a >= actionCount {
		return nil
	}
	return b.keys[a]
}
