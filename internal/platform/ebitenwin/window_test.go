package ebitenwin

import (
	"errors"
	"image/color"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

// testWindow builds a window without touching ebiten's global window state.
func testWindow(w, h int) *Window {
	o := options{scale: 10, sampleRate: DefaultSampleRate, logger: log.New(io.Discard)}
	return &Window{
		cfg:    platform.Config{Width: w, Height: h},
		opts:   o,
		width:  w,
		height: h,
		device: newDevice(false, o.sampleRate, o.logger),
	}
}

func TestKeyFromEbiten(t *testing.T) {
	tests := []struct {
		name string
		key  ebiten.Key
		ctrl bool
		want platform.Key
	}{
		{"arrow", ebiten.KeyArrowUp, false, platform.KeyUp},
		{"letter", ebiten.KeyW, false, platform.KeyW},
		{"last letter", ebiten.KeyZ, false, platform.KeyZ},
		{"escape", ebiten.KeyEscape, false, platform.KeyEscape},
		{"ctrl+c", ebiten.KeyC, true, platform.KeyCtrlC},
		{"ctrl+s", ebiten.KeyS, true, platform.KeyCtrlS},
		{"ctrl+w", ebiten.KeyW, true, platform.KeyW},
		{"unmapped", ebiten.KeyDigit1, false, platform.KeyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFromEbiten(tt.key, tt.ctrl); got != tt.want {
				t.Errorf("KeyFromEbiten() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestRepeats(t *testing.T) {
	tests := []struct {
		ticks int
		want  bool
	}{
		{1, false},
		{repeatDelay, false},
		{repeatDelay + 1, false},
		{repeatDelay + repeatInterval, true},
		{repeatDelay + 2*repeatInterval, true},
	}
	for _, tt := range tests {
		if got := repeats(tt.ticks); got != tt.want {
			t.Errorf("repeats(%d) = %v, expected %v", tt.ticks, got, tt.want)
		}
	}
}

func TestQuadGeoM(t *testing.T) {
	c := platform.DrawCmd{X: 2, Y: 1, W: 1, H: 2}

	g := quadGeoM(c, 10, 5, 5)
	if x, y := g.Apply(0, 0); x != 20 || y != 10 {
		t.Errorf("top-left = (%v, %v), expected (20, 10)", x, y)
	}
	if x, y := g.Apply(5, 5); x != 30 || y != 30 {
		t.Errorf("bottom-right = (%v, %v), expected (30, 30)", x, y)
	}

	c.Rotation = math.Pi
	g = quadGeoM(c, 10, 0, 0)
	x, y := g.Apply(0, 0)
	if math.Abs(x-30) > 1e-9 || math.Abs(y-30) > 1e-9 {
		t.Errorf("rotated top-left = (%v, %v), expected (30, 30)", x, y)
	}
}

func TestLayoutEmitsResize(t *testing.T) {
	w := testWindow(8, 4)

	w.layout(80, 40)
	w.layout(125, 60)
	w.layout(0, 60)

	if len(w.pending) != 1 || w.pending[0] != (platform.Resize{W: 12, H: 6}) {
		t.Fatalf("pending = %v, expected one resize to 12x6", w.pending)
	}
	if gw, gh := w.Size(); gw != 12 || gh != 6 {
		t.Errorf("Size() = %dx%d, expected 12x6", gw, gh)
	}
	if x, y := w.toUnits(25, 5); x != 2.5 || y != 0.5 {
		t.Errorf("toUnits() = (%v, %v), expected (2.5, 0.5)", x, y)
	}
}

func TestSwapResolvesAndClose(t *testing.T) {
	w := testWindow(8, 4)
	f := &platform.Frame{
		Clear: core.ColorBlue,
		Cmds:  []platform.DrawCmd{{Texture: core.MakeHandle(1, 1), Color: core.ColorRed, W: 1, H: 1}},
		Text:  []platform.TextCmd{{Text: "hud"}},
	}
	if err := w.SwapBuffers(f); err != nil {
		t.Fatalf("SwapBuffers() failed: %v", err)
	}
	if len(w.ops) != 1 || w.ops[0].tex != nil {
		t.Errorf("ops = %+v, expected one flat quad", w.ops)
	}
	if len(w.text) != 1 || w.background != core.ColorBlue {
		t.Errorf("text = %v background = %v, expected the frame's", w.text, w.background)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v, expected nil", err)
	}
	if err := w.SwapBuffers(f); !errors.Is(err, platform.ErrClosed) {
		t.Errorf("SwapBuffers() after Close = %v, expected ErrClosed", err)
	}
}

func TestDeviceSounds(t *testing.T) {
	d := newDevice(false, DefaultSampleRate, log.New(io.Discard))

	clip, err := d.CreateAudio(&platform.PCM{SampleRate: 8000, Channels: 1, Data: make([]byte, 16)})
	if err != nil {
		t.Fatalf("CreateAudio() failed: %v", err)
	}
	if err := d.PlaySound(clip); err != nil {
		t.Errorf("PlaySound() with audio off = %v, expected nil", err)
	}
	if err := d.PlaySound(&Sound{}); !errors.Is(err, platform.ErrUnknownObj) {
		t.Errorf("PlaySound(foreign) = %v, expected ErrUnknownObj", err)
	}
	if err := d.Destroy(clip); err != nil {
		t.Fatalf("Destroy() failed: %v", err)
	}
	if err := d.Destroy(clip); !errors.Is(err, platform.ErrDoubleFree) {
		t.Errorf("second Destroy() = %v, expected ErrDoubleFree", err)
	}

	d.invalidate()
	if _, err := d.CreateAudio(&platform.PCM{SampleRate: 8000, Channels: 1}); !errors.Is(err, platform.ErrClosed) {
		t.Errorf("CreateAudio() after invalidate = %v, expected ErrClosed", err)
	}
}

func TestBackground(t *testing.T) {
	if got := background(core.ColorDefault); got != color.Black {
		t.Errorf("background(default) = %v, expected black", got)
	}
	if got := background(core.ColorRed); got != core.ColorRed.RGBA() {
		t.Errorf("background(red) = %v, expected %v", got, core.ColorRed.RGBA())
	}
}
