// Package ebitenwin implements a GPU platform window on Ebitengine. Ebiten
// owns the OS main loop, so the window is a platform.Driver: each ebiten
// tick runs one engine iteration and each draw replays the last presented
// frame.
package ebitenwin

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

const (
	// DefaultScale is how many pixels one world unit spans.
	DefaultScale = 16
	// DefaultSampleRate is the audio context rate.
	DefaultSampleRate = 44100
)

// Option configures a window.
type Option func(*options)

type options struct {
	scale      int
	sampleRate int
	audio      bool
	logger     *log.Logger
}

// WithScale sets the pixels per world unit.
func WithScale(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.scale = px
		}
	}
}

// WithAudio enables sound output at the given sample rate (0 keeps the default).
func WithAudio(sampleRate int) Option {
	return func(o *options) {
		o.audio = true
		if sampleRate > 0 {
			o.sampleRate = sampleRate
		}
	}
}

// WithLogger sets the logger for window diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Window is the ebiten platform.Window. Sizes are in world units; the OS
// window is scale times larger.
type Window struct {
	cfg    platform.Config
	opts   options
	device *Device

	width, height int
	cursorX       float64
	cursorY       float64
	pending       []platform.Event
	closeSent     bool
	closed        bool

	ops        []drawOp
	text       []platform.TextCmd
	background core.Color
	scratch    []ebiten.Key
}

var (
	_ platform.Window = (*Window)(nil)
	_ platform.Driver = (*Window)(nil)
)

// New validates cfg and configures the ebiten window. Nothing is shown
// until Drive starts the main loop.
func New(cfg platform.Config, opts ...Option) (*Window, error) {
	if err := platform.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	o := options{
		scale:      DefaultScale,
		sampleRate: DefaultSampleRate,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Window{
		cfg:    cfg,
		opts:   o,
		width:  cfg.Width,
		height: cfg.Height,
	}
	w.device = newDevice(o.audio, o.sampleRate, o.logger)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width*o.scale, cfg.Height*o.scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetFullscreen(cfg.Fullscreen)
	ebiten.SetVsyncEnabled(cfg.Vsync)
	ebiten.SetTPS(tps(cfg))
	return w, nil
}

// Opener adapts New to platform.Opener.
func Opener(opts ...Option) platform.Opener {
	return func(cfg platform.Config) (platform.Window, error) {
		w, err := New(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}

// tps picks the ebiten tick rate. With vsync every displayed frame runs
// one iteration; without it the refresh rate caps the loop.
func tps(cfg platform.Config) int {
	if cfg.Vsync || cfg.RefreshRate <= 0 {
		return ebiten.SyncWithFPS
	}
	return cfg.RefreshRate
}

// game adapts the window to ebiten.Game.
type game struct {
	win     *Window
	iterate func() (bool, error)
	err     error
}

func (g *game) Update() error {
	more, err := g.iterate()
	if err != nil {
		g.err = err
		return err
	}
	if !more {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.win.draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.win.layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Drive implements platform.Driver. It must run on the main OS thread.
func (w *Window) Drive(iterate func() (bool, error)) error {
	g := &game{win: w, iterate: iterate}
	err := ebiten.RunGame(g)
	if g.err != nil {
		return g.err
	}
	if err != nil && !errors.Is(err, ebiten.Termination) {
		w.opts.logger.Error("ebiten main loop failed", "title", w.cfg.Title, "error", err)
		return &platform.Error{Op: "drive", Err: err}
	}
	return nil
}

// layout converts the outside size to units and queues a Resize when it changes.
func (w *Window) layout(px, py int) {
	uw, uh := px/w.opts.scale, py/w.opts.scale
	if uw <= 0 || uh <= 0 || (uw == w.width && uh == w.height) {
		return
	}
	w.width, w.height = uw, uh
	w.opts.logger.Debug("window resized", "width", uw, "height", uh)
	w.pending = append(w.pending, platform.Resize{W: uw, H: uh})
}

// PollEvents implements platform.Window. It reads ebiten's input state for
// the current tick, so it must be called from inside Update.
func (w *Window) PollEvents(dst []platform.Event) []platform.Event {
	dst = append(dst, w.pending...)
	w.pending = w.pending[:0]

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)

	w.scratch = inpututil.AppendJustPressedKeys(w.scratch[:0])
	for _, k := range w.scratch {
		if pk := KeyFromEbiten(k, ctrl); pk != platform.KeyUnknown {
			dst = append(dst, platform.KeyEvent{Key: pk, Kind: platform.KeyPress})
		}
	}
	w.scratch = inpututil.AppendPressedKeys(w.scratch[:0])
	for _, k := range w.scratch {
		if !repeats(inpututil.KeyPressDuration(k)) {
			continue
		}
		if pk := KeyFromEbiten(k, ctrl); pk != platform.KeyUnknown {
			dst = append(dst, platform.KeyEvent{Key: pk, Kind: platform.KeyRepeat})
		}
	}
	w.scratch = inpututil.AppendJustReleasedKeys(w.scratch[:0])
	for _, k := range w.scratch {
		// Ctrl state at release time may differ from press time, so both
		// forms are released.
		pk := KeyFromEbiten(k, false)
		if pk == platform.KeyUnknown {
			continue
		}
		dst = append(dst, platform.KeyEvent{Key: pk, Kind: platform.KeyRelease})
		if ck := KeyFromEbiten(k, true); ck != pk {
			dst = append(dst, platform.KeyEvent{Key: ck, Kind: platform.KeyRelease})
		}
	}

	cx, cy := ebiten.CursorPosition()
	ux, uy := w.toUnits(cx, cy)
	if ux != w.cursorX || uy != w.cursorY {
		w.cursorX, w.cursorY = ux, uy
		dst = append(dst, platform.MouseMove{X: ux, Y: uy})
	}
	for _, mb := range mouseButtons {
		switch {
		case inpututil.IsMouseButtonJustPressed(mb.button):
			dst = append(dst, platform.MouseButton{Button: mb.index, Down: true, X: ux, Y: uy})
		case inpututil.IsMouseButtonJustReleased(mb.button):
			dst = append(dst, platform.MouseButton{Button: mb.index, X: ux, Y: uy})
		}
	}

	if ebiten.IsWindowBeingClosed() && !w.closeSent {
		w.closeSent = true
		dst = append(dst, platform.CloseRequest{})
	}
	return dst
}

func (w *Window) toUnits(px, py int) (float64, float64) {
	s := float64(w.opts.scale)
	return float64(px) / s, float64(py) / s
}

// SwapBuffers implements platform.Window. Handles are resolved now so the
// frame stays drawable even if resources are released before ebiten draws.
// Ebiten presents and paces frames itself, so this never blocks.
func (w *Window) SwapBuffers(f *platform.Frame) error {
	if w.closed {
		return &platform.Error{Op: "swap", Err: platform.ErrClosed}
	}
	w.ops = resolve(f, w.ops[:0])
	w.text = append(w.text[:0], f.Text...)
	w.background = f.Clear
	return nil
}

// Device implements platform.Window.
func (w *Window) Device() platform.Device { return w.device }

// Size implements platform.Window.
func (w *Window) Size() (int, int) { return w.width, w.height }

// Close implements platform.Window.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.ops = nil
	w.text = nil
	w.device.invalidate()
	return nil
}

// Closed implements platform.Window.
func (w *Window) Closed() bool { return w.closed }
