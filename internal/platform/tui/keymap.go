package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/topdown/internal/platform"
)

// KeyMap holds the bindings the terminal window handles itself. Every
// other key is forwarded to the engine as a platform key event.
type KeyMap struct {
	Screenshot key.Binding
	ForceQuit  key.Binding
}

// DefaultKeyMap returns the default window bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+\\"),
			key.WithHelp("ctrl+\\", "close window"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Screenshot, k.ForceQuit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// KeyFromMsg translates a Bubble Tea key message to a platform key.
// Keys the engine does not know map to KeyUnknown.
func KeyFromMsg(msg tea.KeyMsg) platform.Key {
	switch msg.Type {
	case tea.KeySpace:
		return platform.KeySpace
	case tea.KeyRunes:
		if len(msg.Runes) != 1 || msg.Alt {
			return platform.KeyUnknown
		}
		if msg.Runes[0] == ' ' {
			return platform.KeySpace
		}
		return platform.KeyLetter(msg.Runes[0])
	}
	return platform.KeyByName(msg.String())
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionLeft
	MenuActionRight
	MenuActionSelect
	MenuActionBack
	MenuActionScoreboard
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "a", "left", "h":
		return MenuActionLeft
	case "d", "right", "l":
		return MenuActionRight
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	}

	return MenuActionNone
}
