// Package engine runs the game loop: it owns the window, the clock, the
// resource manager and the scene, and drives them frame by frame.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/topdown/internal/clock"
	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/input"
	"github.com/vovakirdan/topdown/internal/platform"
	"github.com/vovakirdan/topdown/internal/render"
	"github.com/vovakirdan/topdown/internal/resource"
	"github.com/vovakirdan/topdown/internal/scene"
)

// Config holds the loop parameters.
type Config struct {
	Window    platform.Config
	FixedRate int           // fixed updates per second
	MaxDelta  time.Duration // per-frame delta ceiling
	MaxSteps  int           // fixed updates per frame before dropping
	Workers   int           // async asset decoders
	Seed      int64
}

// DefaultConfig returns a 60 Hz loop in an 80x24 window.
func DefaultConfig() Config {
	return Config{
		Window:    platform.Config{Title: "topdown", Width: 80, Height: 24, Vsync: true, RefreshRate: 60},
		FixedRate: 60,
		MaxDelta:  clock.DefaultMaxDelta,
		MaxSteps:  clock.DefaultMaxSteps,
		Workers:   2,
	}
}

// Stats counts what the loop did.
type Stats struct {
	Frames      uint64
	Steps       uint64
	Dropped     uint64
	Substituted int
	Sounds      int
	Entities    int
	Resources   int
}

// Engine is one game loop instance. Engines share nothing, so several can
// run in one process (tests, SSH sessions).
type Engine struct {
	cfg    Config
	open   platform.Opener
	scene  Scene
	assets fs.FS
	logger *log.Logger
	source clock.TimeSource
	binds  *input.Bindings

	state atomic.Int32

	ctx      context.Context
	cancel   context.CancelFunc
	window   platform.Window
	input    *input.State
	clock    *clock.Clock
	stepper  *clock.Stepper
	res      *resource.Manager
	loader   *resource.Loader
	world    *scene.World
	sched    *scene.Scheduler
	renderer *render.Renderer
	sctx     *Context
	events   []platform.Event
	stats    Stats
	err      error
	exit     string
	started  time.Time
	elapsed  time.Duration
	setup    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithAssets sets the asset file system.
func WithAssets(fsys fs.FS) Option {
	return func(e *Engine) {
		e.assets = fsys
	}
}

// WithTimeSource replaces the wall clock.
func WithTimeSource(src clock.TimeSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithBindings replaces the default key bindings.
func WithBindings(b *input.Bindings) Option {
	return func(e *Engine) {
		e.binds = b
	}
}

// New creates an engine. Nothing is opened until Run or Start.
func New(cfg Config, open platform.Opener, sc Scene, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		open:   open,
		scene:  sc,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the lifecycle state. Safe to call from any goroutine.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	old := State(e.state.Swap(int32(s)))
	if old != s {
		e.logger.Debug("engine state", "from", old, "to", s)
	}
}

// Stats returns loop counters. Call it from the loop goroutine or after Run returns.
func (e *Engine) Stats() Stats {
	s := e.stats
	if e.res != nil {
		s.Resources = e.res.Len()
	}
	if e.world != nil {
		s.Entities = e.world.Len()
	}
	if e.stepper != nil {
		s.Dropped = e.stepper.Dropped()
	}
	if e.renderer != nil {
		s.Substituted = e.renderer.TotalSubstituted()
	}
	return s
}

// Err returns the error that stopped the loop, if any.
func (e *Engine) Err() error {
	return e.err
}

// Context returns the scene context of the current run.
func (e *Engine) Context() *Context {
	return e.sctx
}

// Run opens the window, runs the loop until the window closes, the scene
// stops or ctx is cancelled, and shuts down. Errors from opening the window
// are returned before the engine enters Running. A rendering failure during
// the loop is returned after shutdown completes.
func (e *Engine) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.Start(ctx); err != nil {
		return err
	}

	var loopErr error
	if d, ok := e.window.(platform.Driver); ok {
		loopErr = d.Drive(e.Frame)
	} else {
		for {
			more, err := e.Frame()
			if err != nil {
				loopErr = err
				break
			}
			if !more {
				break
			}
		}
	}
	if loopErr != nil && e.err == nil {
		e.err = loopErr
		e.exit = ExitError
	}

	shutErr := e.Shutdown()
	if e.err != nil {
		return e.err
	}
	return shutErr
}

// Start opens the window and sets up the scene. On success the engine is Running.
func (e *Engine) Start(ctx context.Context) error {
	if e.State() != Uninitialized {
		return fmt.Errorf("engine: start in state %s", e.State())
	}
	if e.scene == nil {
		return errors.New("engine: no scene")
	}
	if e.open == nil {
		return errors.New("engine: no platform opener")
	}

	stepper, err := clock.NewStepper(e.cfg.FixedRate, e.cfg.MaxSteps)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	win, err := e.open(e.cfg.Window)
	if err != nil {
		e.setState(Terminated)
		return err
	}
	e.window = win
	e.logger.Info("window opened", "title", e.cfg.Window.Title, "width", e.cfg.Window.Width, "height", e.cfg.Window.Height)

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.input = input.NewState(e.binds)
	e.clock = clock.New(e.source, e.cfg.MaxDelta)
	e.stepper = stepper
	e.res = resource.NewManager(e.assets, win.Device(), resource.WithLogger(e.logger))
	e.loader = resource.NewLoader(e.ctx, e.res, e.cfg.Workers)
	e.world = scene.NewWorld()
	e.sched = scene.NewDefaultScheduler(e.world)
	e.renderer = render.New()

	w, h := win.Size()
	e.world.Camera().Viewport = core.V(float64(w), float64(h))
	e.sctx = &Context{
		Resources: e.res,
		Loader:    e.loader,
		World:     e.world,
		Scheduler: e.sched,
		Logger:    e.logger,
		Seed:      e.cfg.Seed,
		Width:     w,
		Height:    h,
	}

	if err := e.scene.Setup(e.sctx); err != nil {
		e.exit = ExitError
		e.err = fmt.Errorf("engine: setup scene %q: %w", e.scene.ID(), err)
		e.Shutdown()
		return e.err
	}
	e.setup = true
	e.world.Flush()

	e.clock.Tick()
	e.started = time.Now()
	e.setState(Running)
	e.logger.Info("scene started", "scene", e.scene.ID(), "rate", e.cfg.FixedRate)
	return nil
}

// Frame runs one loop iteration: poll, sample input, tick, pump async
// loads, run the due fixed steps, play sounds, render and present.
// It reports false once the loop should stop.
func (e *Engine) Frame() (bool, error) {
	if e.State() != Running {
		return false, nil
	}
	if e.ctx.Err() != nil {
		e.exit = ExitCancelled
		e.setState(ShuttingDown)
		return false, nil
	}

	e.events = e.window.PollEvents(e.events[:0])
	e.input.Feed(e.events)
	snap := e.input.Sample()
	if snap.CloseRequested() {
		e.logger.Debug("close requested")
		e.exit = ExitClosed
		e.setState(ShuttingDown)
		return false, nil
	}
	if w, h, ok := snap.Resized(); ok {
		e.world.Camera().Viewport = core.V(float64(w), float64(h))
		e.sctx.Width, e.sctx.Height = w, h
	}

	dt := e.clock.Tick()
	e.loader.Pump()

	steps, alpha := e.stepper.Advance(dt)
	frame := e.stats.Frames + 1
	for i := 0; i < steps; i++ {
		e.stats.Steps++
		e.sched.Update(scene.FrameContext{
			Frame: frame,
			Step:  e.stats.Steps,
			DT:    e.stepper.Step(),
			Input: snap,
		})
		snap = snap.Continued()
	}

	e.playSounds()

	f := e.renderer.RenderFrame(e.world.View(), e.res, alpha)
	if err := e.window.SwapBuffers(f); err != nil {
		e.err = err
		e.exit = ExitError
		e.logger.Error("present failed", "frame", frame, "err", err)
		e.setState(ShuttingDown)
		return false, err
	}
	e.stats.Frames = frame

	if e.sctx.stop {
		e.exit = ExitStopped
		e.setState(ShuttingDown)
		return false, nil
	}
	return true, nil
}

func (e *Engine) playSounds() {
	dev := e.window.Device()
	for _, h := range e.world.DrainSounds() {
		obj, ok := e.res.Resolve(h)
		if !ok {
			continue
		}
		if err := dev.PlaySound(obj); err != nil {
			e.logger.Warn("sound failed", "handle", h, "err", err)
			continue
		}
		e.stats.Sounds++
	}
}

// Shutdown stops the loader, tears the scene down, releases every resource
// in reverse acquisition order and closes the window. It is idempotent.
func (e *Engine) Shutdown() error {
	if e.State() == Terminated {
		return nil
	}
	e.setState(ShuttingDown)

	var errs []error
	if e.cancel != nil {
		e.cancel()
	}
	if e.loader != nil {
		e.loader.Close()
	}
	if e.setup {
		e.scene.Teardown()
	}
	if e.res != nil {
		if err := e.res.ReleaseAll(); err != nil {
			e.logger.Warn("release failed", "err", err)
			errs = append(errs, err)
		}
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if !e.started.IsZero() {
		e.elapsed = time.Since(e.started)
	}
	e.setState(Terminated)
	e.logger.Info("engine stopped", "frames", e.stats.Frames, "steps", e.stats.Steps)
	return errors.Join(errs...)
}
