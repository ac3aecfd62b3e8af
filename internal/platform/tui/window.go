package tui

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

// Terminals report no key releases, so a key counts as held for a while
// after it was last seen. Before the first auto-repeat arrives the wait is
// DefaultPressHold, which covers the terminal's repeat delay; once repeats
// flow it drops to DefaultHoldWindow.
const (
	DefaultPressHold  = 500 * time.Millisecond
	DefaultHoldWindow = 150 * time.Millisecond
)

// sender is the part of *tea.Program the window talks to.
type sender interface {
	Send(msg tea.Msg)
}

// frameMsg carries a rendered frame to the program.
type frameMsg struct {
	view  string
	plain string
}

// closeMsg asks a standalone program to exit.
type closeMsg struct{}

// Option configures a terminal window.
type Option func(*options)

type options struct {
	input       io.Reader
	output      io.Writer
	program     sender
	renderer    *lipgloss.Renderer
	fit         bool
	pressHold   time.Duration
	hold        time.Duration
	audio       *Audio
	screenshots string
	logger      *log.Logger
	teaOpts     []tea.ProgramOption

	now   func() time.Time
	sleep func(time.Duration)
}

// WithInput reads keys from r instead of the controlling terminal.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.input = r }
}

// WithOutput draws to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithProgram attaches the window to a program run elsewhere (an SSH
// session). The caller forwards messages to Window.Update and shows
// Window.View.
func WithProgram(p *tea.Program) Option {
	return func(o *options) { o.program = p }
}

// WithRenderer styles frames with r, typically a per-session renderer.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// FitTerminal replaces the configured size with the size of stdout when
// it is a terminal.
func FitTerminal() Option {
	return func(o *options) { o.fit = true }
}

// WithHoldWindow sets how long a key stays held after a press that has
// not repeated yet, and after a repeat.
func WithHoldWindow(press, repeat time.Duration) Option {
	return func(o *options) {
		o.pressHold = press
		o.hold = repeat
	}
}

// WithAudio plays sounds through a.
func WithAudio(a *Audio) Option {
	return func(o *options) { o.audio = a }
}

// WithScreenshotDir sets where ctrl+s writes screenshots.
func WithScreenshotDir(dir string) Option {
	return func(o *options) { o.screenshots = dir }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProgramOptions adds options to a standalone program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(o *options) { o.teaOpts = append(o.teaOpts, opts...) }
}

// Window is a terminal platform.Window. Bubble Tea owns the terminal on
// its own goroutine; key, mouse and resize messages reach the engine
// through an unbounded queue, and presented frames travel back as
// rendered strings.
type Window struct {
	cfg     platform.Config
	opts    options
	keys    KeyMap
	colors  palette
	device  *Device
	program sender
	own     *tea.Program

	// Engine goroutine state.
	screen    *core.Screen
	width     int
	height    int
	held      map[platform.Key]heldKey
	lastSwap  time.Time
	closed    bool
	closeSent bool

	done   chan struct{} // closed when a standalone program exits
	runErr error

	// Events queued by the program goroutine. The queue is unbounded so a
	// stalled loop never loses input.
	qmu   sync.Mutex
	queue []platform.Event
	spare []platform.Event

	// Program goroutine state.
	mu    sync.Mutex
	view  string
	plain string
}

var _ platform.Window = (*Window)(nil)

// New validates cfg and opens a terminal window. Without WithProgram it
// starts its own full-screen program.
func New(cfg platform.Config, opts ...Option) (*Window, error) {
	if err := platform.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	o := options{pressHold: DefaultPressHold, hold: DefaultHoldWindow, now: time.Now, sleep: time.Sleep}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.fit {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
			cfg.Width, cfg.Height = w, h
		}
	}

	w := newWindow(cfg, o)
	if o.program != nil {
		w.program = o.program
		return w, nil
	}

	teaOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if cfg.RefreshRate > 0 {
		teaOpts = append(teaOpts, tea.WithFPS(cfg.RefreshRate))
	}
	if o.input != nil {
		teaOpts = append(teaOpts, tea.WithInput(o.input))
	}
	if o.output != nil {
		teaOpts = append(teaOpts, tea.WithOutput(o.output))
	}
	teaOpts = append(teaOpts, o.teaOpts...)

	p := tea.NewProgram(Model{win: w}, teaOpts...)
	w.own, w.program = p, p
	w.done = make(chan struct{})
	go func() {
		_, err := p.Run()
		w.runErr = err
		close(w.done)
	}()
	return w, nil
}

func newWindow(cfg platform.Config, o options) *Window {
	return &Window{
		cfg:    cfg,
		opts:   o,
		keys:   DefaultKeyMap(),
		colors: newPalette(o.renderer),
		device: newDevice(o.audio),
		screen: core.NewScreen(cfg.Width, cfg.Height),
		width:  cfg.Width,
		height: cfg.Height,
		held:   make(map[platform.Key]heldKey),
	}
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

// heldKey tracks a key the terminal reported recently.
type heldKey struct {
	last      time.Time
	repeating bool
}

// push queues an event for the engine.
func (w *Window) push(ev platform.Event) {
	w.qmu.Lock()
	w.queue = append(w.queue, ev)
	w.qmu.Unlock()
}

// takeQueue swaps out everything queued so far.
func (w *Window) takeQueue() []platform.Event {
	w.qmu.Lock()
	defer w.qmu.Unlock()
	q := w.queue
	w.queue = w.spare[:0]
	w.spare = q
	return q
}

// Update handles a Bubble Tea message on the program goroutine.
func (w *Window) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, w.keys.Screenshot):
			w.saveScreenshot()
			return nil
		case key.Matches(msg, w.keys.ForceQuit):
			w.push(platform.CloseRequest{})
			return nil
		}
		if k := KeyFromMsg(msg); k != platform.KeyUnknown {
			// Press or repeat is decided on the engine side.
			w.push(platform.KeyEvent{Key: k, Kind: platform.KeyPress})
		}

	case tea.WindowSizeMsg:
		w.push(platform.Resize{W: msg.Width, H: msg.Height})

	case tea.MouseMsg:
		w.pushMouse(msg)

	case frameMsg:
		w.mu.Lock()
		w.view, w.plain = msg.view, msg.plain
		w.mu.Unlock()
	}
	return nil
}

func (w *Window) pushMouse(msg tea.MouseMsg) {
	x, y := float64(msg.X), float64(msg.Y)
	button := -1
	switch msg.Button {
	case tea.MouseButtonLeft:
		button = 0
	case tea.MouseButtonRight:
		button = 1
	case tea.MouseButtonMiddle:
		button = 2
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		w.push(platform.MouseMove{X: x, Y: y})
	case tea.MouseActionPress, tea.MouseActionRelease:
		w.push(platform.MouseMove{X: x, Y: y})
		if button >= 0 {
			w.push(platform.MouseButton{Button: button, Down: msg.Action == tea.MouseActionPress, X: x, Y: y})
		}
	}
}

// View returns the last presented frame.
func (w *Window) View() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// PollEvents implements platform.Window. Key presses from the terminal
// become Press, then Repeat while they keep arriving; a key not seen for
// the hold window is released.
func (w *Window) PollEvents(dst []platform.Event) []platform.Event {
	now := w.opts.now()

	for _, ev := range w.takeQueue() {
		dst = w.translate(dst, ev, now)
	}

	var stale []platform.Key
	for k, h := range w.held {
		wait := w.opts.pressHold
		if h.repeating {
			wait = w.opts.hold
		}
		if now.Sub(h.last) >= wait {
			stale = append(stale, k)
		}
	}
	slices.Sort(stale)
	for _, k := range stale {
		delete(w.held, k)
		dst = append(dst, platform.KeyEvent{Key: k, Kind: platform.KeyRelease})
	}

	if !w.closeSent && w.finished() {
		w.closeSent = true
		dst = append(dst, platform.CloseRequest{})
	}
	return dst
}

func (w *Window) translate(dst []platform.Event, ev platform.Event, now time.Time) []platform.Event {
	switch e := ev.(type) {
	case platform.KeyEvent:
		_, held := w.held[e.Key]
		if held {
			e.Kind = platform.KeyRepeat
		}
		w.held[e.Key] = heldKey{last: now, repeating: held}
		return append(dst, e)
	case platform.Resize:
		if e.W <= 0 || e.H <= 0 {
			return dst
		}
		w.width, w.height = e.W, e.H
		w.screen.Resize(e.W, e.H)
		return append(dst, e)
	case platform.CloseRequest:
		if w.closeSent {
			return dst
		}
		w.closeSent = true
	}
	return append(dst, ev)
}

// finished reports whether a standalone program has exited.
func (w *Window) finished() bool {
	if w.done == nil {
		return false
	}
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// SwapBuffers implements platform.Window.
func (w *Window) SwapBuffers(f *platform.Frame) error {
	if w.closed {
		return &platform.Error{Op: "swap", Err: platform.ErrClosed}
	}
	if w.finished() && w.runErr != nil {
		return &platform.Error{Op: "swap", Err: fmt.Errorf("%w: %v", platform.ErrContextLost, w.runErr)}
	}

	Rasterize(w.screen, f)
	w.program.Send(frameMsg{view: w.colors.render(w.screen), plain: w.screen.String()})
	w.pace()
	return nil
}

// pace holds swaps to the refresh rate when vsync is on.
func (w *Window) pace() {
	if !w.cfg.Vsync || w.cfg.RefreshRate <= 0 {
		return
	}
	interval := time.Second / time.Duration(w.cfg.RefreshRate)
	now := w.opts.now()
	if !w.lastSwap.IsZero() {
		if wait := interval - now.Sub(w.lastSwap); wait > 0 {
			w.opts.sleep(wait)
			now = now.Add(wait)
		}
	}
	w.lastSwap = now
}

// Device implements platform.Window.
func (w *Window) Device() platform.Device {
	return w.device
}

// Size implements platform.Window.
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// Close implements platform.Window. A standalone program is stopped and
// the terminal restored; an attached program keeps running.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.device.invalidate()

	if w.own == nil {
		return nil
	}
	w.own.Send(closeMsg{})
	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		w.own.Kill()
		<-w.done
	}
	return nil
}

// Closed implements platform.Window.
func (w *Window) Closed() bool {
	return w.closed
}
