package platform

// Key is a backend-neutral key identifier.
type Key uint16

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyF1
	KeyF12
	KeyCtrlC
	KeyCtrlS
	// KeyA..KeyZ are contiguous so letters can be mapped arithmetically.
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	keyCount
)

var keyNames = map[Key]string{
	KeyUnknown:   "unknown",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeySpace:     "space",
	KeyEnter:     "enter",
	KeyEscape:    "esc",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyF1:        "f1",
	KeyF12:       "f12",
	KeyCtrlC:     "ctrl+c",
	KeyCtrlS:     "ctrl+s",
}

// KeyLetter returns the key for a lowercase or uppercase ASCII letter.
func KeyLetter(r rune) Key {
	switch {
	case r >= 'a' && r <= 'z':
		return KeyA + Key(r-'a')
	case r >= 'A' && r <= 'Z':
		return KeyA + Key(r-'A')
	}
	return KeyUnknown
}

// String returns the binding name of the key ("w", "up", "ctrl+c").
func (k Key) String() string {
	if k >= KeyA && k <= KeyZ {
		return string(rune('a' + (k - KeyA)))
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// KeyByName is the inverse of Key.String.
func KeyByName(name string) Key {
	if len(name) == 1 {
		if k := KeyLetter(rune(name[0])); k != KeyUnknown {
			return k
		}
	}
	if name == " " {
		return KeySpace
	}
	for k, n := range keyNames {
		if n == name {
			return k
		}
	}
	return KeyUnknown
}

// KeyCount is the number of defined keys, usable to size lookup tables.
const KeyCount = int(keyCount)
