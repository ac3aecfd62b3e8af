// Package headless implements an in-memory platform window. It never touches
// the OS, delivers scripted events and records every presented frame, which
// makes it the harness for loop tests and for CI runs of scenes.
package headless

import (
	"fmt"
	"image"
	"sync"

	"github.com/vovakirdan/topdown/internal/platform"
)

// Option configures a headless window.
type Option func(*Window)

// WithEvents queues events to be returned by the poll with the given index
// (0 is the first poll after open).
func WithEvents(poll int, events ...platform.Event) Option {
	return func(w *Window) {
		w.script[poll] = append(w.script[poll], events...)
	}
}

// WithLoseContextAt makes the swap with the given index (0-based) fail with
// platform.ErrContextLost.
func WithLoseContextAt(swap int) Option {
	return func(w *Window) {
		w.loseAt = swap
	}
}

// WithFrameBudget emits a CloseRequest once n frames have been presented.
func WithFrameBudget(n int) Option {
	return func(w *Window) {
		w.budget = n
	}
}

// WithoutRecording disables frame capture for long runs.
func WithoutRecording() Option {
	return func(w *Window) {
		w.record = false
	}
}

// WithFailingUploads makes every device creation call fail.
func WithFailingUploads() Option {
	return func(w *Window) {
		w.device.failUploads = true
	}
}

// Window is a headless platform.Window.
type Window struct {
	cfg     platform.Config
	device  *Device
	script  map[int][]platform.Event
	pending []platform.Event
	polls   int
	swaps   int
	loseAt  int
	budget  int
	record  bool
	frames  []*platform.Frame
	closed  bool
	closes  int
}

var _ platform.Window = (*Window)(nil)

// New validates cfg and creates a headless window.
func New(cfg platform.Config, opts ...Option) (*Window, error) {
	if err := platform.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	w := &Window{
		cfg:    cfg,
		script: make(map[int][]platform.Event),
		loseAt: -1,
		record: true,
	}
	w.device = &Device{window: w, live: make(map[uint64]*Object), dead: make(map[uint64]bool)}
	for _, opt := range opts {
		opt(w)
	}
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

// Harness opens a headless window and keeps a reference for inspection.
type Harness struct {
	Options []Option
	Window  *Window
}

// Open implements platform.Opener.
func (h *Harness) Open(cfg platform.Config) (platform.Window, error) {
	w, err := New(cfg, h.Options...)
	if err != nil {
		return nil, err
	}
	h.Window = w
	return w, nil
}

// Push queues events for the next poll.
func (w *Window) Push(events ...platform.Event) {
	w.pending = append(w.pending, events...)
}

// PollEvents implements platform.Window.
func (w *Window) PollEvents(dst []platform.Event) []platform.Event {
	if w.closed {
		return dst
	}
	dst = append(dst, w.script[w.polls]...)
	delete(w.script, w.polls)
	dst = append(dst, w.pending...)
	w.pending = w.pending[:0]
	w.polls++
	return dst
}

// SwapBuffers implements platform.Window.
func (w *Window) SwapBuffers(f *platform.Frame) error {
	if w.closed {
		return &platform.Error{Op: "swap", Err: platform.ErrClosed}
	}
	if w.swaps == w.loseAt {
		w.swaps++
		return &platform.Error{Op: "swap", Err: platform.ErrContextLost}
	}
	w.swaps++

	if w.record {
		c := f.Clone()
		// Resolve textures now, like a GPU backend would, so tests can
		// assert that no dead object ever reaches the draw stage.
		for _, cmd := range f.Cmds {
			if obj, ok := f.Object(cmd.Texture); ok {
				if o, isObj := obj.(*Object); isObj && w.device.isDead(o.ID) {
					return &platform.Error{Op: "swap", Err: fmt.Errorf("draw with destroyed object %d", o.ID)}
				}
			}
		}
		w.frames = append(w.frames, c)
	}

	if w.budget > 0 && w.swaps >= w.budget {
		w.pending = append(w.pending, platform.CloseRequest{})
	}
	return nil
}

// Device implements platform.Window.
func (w *Window) Device() platform.Device {
	return w.device
}

// HeadlessDevice returns the concrete device for inspection.
func (w *Window) HeadlessDevice() *Device {
	return w.device
}

// Size implements platform.Window.
func (w *Window) Size() (int, int) {
	return w.cfg.Width, w.cfg.Height
}

// Close implements platform.Window.
func (w *Window) Close() error {
	w.closes++
	w.closed = true
	return nil
}

// Closed implements platform.Window.
func (w *Window) Closed() bool {
	return w.closed
}

// Frames returns the recorded frames in presentation order.
func (w *Window) Frames() []*platform.Frame {
	return w.frames
}

// Swaps returns how many times SwapBuffers was called.
func (w *Window) Swaps() int {
	return w.swaps
}

// Polls returns how many times PollEvents was called.
func (w *Window) Polls() int {
	return w.polls
}

// Object is a fake device object.
type Object struct {
	ID   uint64
	Kind string
	Name string
	W, H int
}

// Device is a fake GPU/audio device that tracks object lifetimes.
type Device struct {
	mu          sync.Mutex
	window      *Window
	nextID      uint64
	live        map[uint64]*Object
	dead        map[uint64]bool
	destroyLog  []uint64
	plays       []uint64
	created     int
	failUploads bool
}

var _ platform.Device = (*Device)(nil)

func (d *Device) create(kind, name string, w, h int) (platform.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.window.closed {
		return nil, &platform.Error{Op: kind, Err: platform.ErrClosed}
	}
	if d.failUploads {
		return nil, &platform.Error{Op: kind, Err: fmt.Errorf("headless: upload rejected")}
	}
	d.nextID++
	obj := &Object{ID: d.nextID, Kind: kind, Name: name, W: w, H: h}
	d.live[obj.ID] = obj
	d.created++
	return obj, nil
}

// CreateTexture implements platform.Device.
func (d *Device) CreateTexture(img *image.RGBA) (platform.Object, error) {
	b := img.Bounds()
	return d.create("texture", "", b.Dx(), b.Dy())
}

// CompileShader implements platform.Device.
func (d *Device) CompileShader(name string, src []byte) (platform.Object, error) {
	if len(src) == 0 {
		return nil, &platform.Error{Op: "shader", Err: fmt.Errorf("headless: empty shader %q", name)}
	}
	return d.create("shader", name, 0, 0)
}

// CreateAudio implements platform.Device.
func (d *Device) CreateAudio(pcm *platform.PCM) (platform.Object, error) {
	return d.create("audio", "", len(pcm.Data), 0)
}

// Destroy implements platform.Device. A second destroy of the same object fails.
func (d *Device) Destroy(obj platform.Object) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, ok := obj.(*Object)
	if !ok {
		return &platform.Error{Op: "destroy", Err: platform.ErrUnknownObj}
	}
	if d.dead[o.ID] {
		return &platform.Error{Op: "destroy", Err: platform.ErrDoubleFree}
	}
	if _, ok := d.live[o.ID]; !ok {
		return &platform.Error{Op: "destroy", Err: platform.ErrUnknownObj}
	}
	delete(d.live, o.ID)
	d.dead[o.ID] = true
	d.destroyLog = append(d.destroyLog, o.ID)
	return nil
}

// PlaySound implements platform.Device.
func (d *Device) PlaySound(obj platform.Object) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	o, ok := obj.(*Object)
	if !ok || d.dead[o.ID] {
		return &platform.Error{Op: "play", Err: platform.ErrUnknownObj}
	}
	d.plays = append(d.plays, o.ID)
	return nil
}

// Created returns how many objects were ever created.
func (d *Device) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

// Live returns how many objects are still alive.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// DestroyLog returns object ids in destruction order.
func (d *Device) DestroyLog() []uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint64(nil), d.destroyLog...)
}

// Plays returns ids of played sounds in order.
func (d *Device) Plays() []uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint64(nil), d.plays...)
}

func (d *Device) isDead(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dead[id]
}
