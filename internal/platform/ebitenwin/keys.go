package ebitenwin

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/vovakirdan/topdown/internal/platform"
)

// Repeat timing in ticks, as keyboards do it: a delay, then a steady rate.
const (
	repeatDelay    = 30
	repeatInterval = 4
)

var keyTable = map[ebiten.Key]platform.Key{
	ebiten.KeyArrowUp:    platform.KeyUp,
	ebiten.KeyArrowDown:  platform.KeyDown,
	ebiten.KeyArrowLeft:  platform.KeyLeft,
	ebiten.KeyArrowRight: platform.KeyRight,
	ebiten.KeySpace:      platform.KeySpace,
	ebiten.KeyEnter:      platform.KeyEnter,
	ebiten.KeyEscape:     platform.KeyEscape,
	ebiten.KeyTab:        platform.KeyTab,
	ebiten.KeyBackspace:  platform.KeyBackspace,
	ebiten.KeyF1:         platform.KeyF1,
	ebiten.KeyF12:        platform.KeyF12,
}

func init() {
	for i := 0; i < 26; i++ {
		keyTable[ebiten.KeyA+ebiten.Key(i)] = platform.KeyA + platform.Key(i)
	}
}

// KeyFromEbiten translates an ebiten key. With ctrl held, C and S become
// the chorded keys the engine binds.
func KeyFromEbiten(k ebiten.Key, ctrl bool) platform.Key {
	pk, ok := keyTable[k]
	if !ok {
		return platform.KeyUnknown
	}
	if ctrl {
		switch pk {
		case platform.KeyC:
			return platform.KeyCtrlC
		case platform.KeyS:
			return platform.KeyCtrlS
		}
	}
	return pk
}

// repeats reports whether a key held for d ticks emits a repeat this tick.
func repeats(d int) bool {
	return d > repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

// mouseButtons maps ebiten buttons to platform button indices.
var mouseButtons = [...]struct {
	button ebiten.MouseButton
	index  int
}{
	{ebiten.MouseButtonLeft, 0},
	{ebiten.MouseButtonRight, 1},
	{ebiten.MouseButtonMiddle, 2},
}
