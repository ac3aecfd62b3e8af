package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"testing/fstest"
	"time"

	"github.com/vovakirdan/topdown/internal/clock"
	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
	"github.com/vovakirdan/topdown/internal/platform/headless"
	"github.com/vovakirdan/topdown/internal/resource"
	"github.com/vovakirdan/topdown/internal/scene"
)

type testScene struct {
	setup     func(ctx *Context) error
	teardowns int
}

func (s *testScene) ID() string    { return "test" }
func (s *testScene) Title() string { return "Test" }
func (s *testScene) Teardown()     { s.teardowns++ }
func (s *testScene) Setup(ctx *Context) error {
	if s.setup == nil {
		return nil
	}
	return s.setup(ctx)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FixedRate = 50
	return cfg
}

// newEngine runs one fixed step per frame.
func newEngine(cfg Config, h *headless.Harness, sc Scene, opts ...Option) *Engine {
	step := time.Second / time.Duration(cfg.FixedRate)
	opts = append([]Option{WithTimeSource(clock.NewFixedSource(step))}, opts...)
	return New(cfg, h.Open, sc, opts...)
}

func pngFile(t *testing.T) *fstest.MapFile {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}
	return &fstest.MapFile{Data: buf.Bytes()}
}

func hasGlyph(f *platform.Frame, r rune) bool {
	for _, c := range f.Cmds {
		if c.Glyph == r {
			return true
		}
	}
	return false
}

func TestInvalidWindowFailsBeforeRunning(t *testing.T) {
	cfg := testConfig()
	cfg.Window.Width, cfg.Window.Height = 0, 0
	h := &headless.Harness{}
	sc := &testScene{setup: func(*Context) error {
		t.Error("Setup called for a window that failed to open")
		return nil
	}}
	e := newEngine(cfg, h, sc)

	err := e.Run(context.Background())
	var pe *platform.Error
	if !errors.As(err, &pe) {
		t.Fatalf("Run() error = %v, expected *platform.Error", err)
	}
	if !errors.Is(err, platform.ErrInvalidSize) {
		t.Errorf("Run() error = %v, expected ErrInvalidSize", err)
	}
	if e.State() == Running {
		t.Error("engine entered Running")
	}
	if e.Stats().Frames != 0 {
		t.Errorf("Frames = %d, expected 0", e.Stats().Frames)
	}
	if e.State() != Terminated {
		t.Errorf("State() = %s, expected Terminated", e.State())
	}
	if res := e.Result(); res.Exit != "" {
		t.Errorf("Result().Exit = %q, expected empty for a window that never opened", res.Exit)
	}
}

func TestLifetimeScenario(t *testing.T) {
	h := &headless.Harness{Options: []headless.Option{headless.WithFrameBudget(6)}}
	var spawned scene.Entity
	var aliveAfter []bool
	sc := &testScene{setup: func(ctx *Context) error {
		ctx.Scheduler.Add(scene.PhaseInput, "spawn", func(w *scene.World, fc scene.FrameContext) {
			if fc.Step == 1 {
				spawned = w.Spawn(scene.Transform{Pos: core.V(1, 1)}, scene.Sprite{Glyph: '*'}, scene.Lifetime{Ticks: 3})
			}
		})
		return nil
	}}
	e := newEngine(testConfig(), h, sc)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if e.Stats().Entities != 0 {
		t.Fatalf("Entities = %d at start, expected 0", e.Stats().Entities)
	}
	for i := 0; i < 4; i++ {
		if _, err := e.Frame(); err != nil {
			t.Fatalf("Frame() failed: %v", err)
		}
		aliveAfter = append(aliveAfter, e.Context().World.Alive(spawned))
	}
	e.Shutdown()

	frames := h.Window.Frames()
	if len(frames) != 4 {
		t.Fatalf("recorded %d frames, expected 4", len(frames))
	}
	// Frame n is rendered right after fixed update n.
	want := []bool{true, true, false, false}
	for i := range want {
		if aliveAfter[i] != want[i] {
			t.Errorf("after update %d: Alive() = %v, expected %v", i+1, aliveAfter[i], want[i])
		}
		if got := hasGlyph(frames[i], '*'); got != want[i] {
			t.Errorf("frame %d: visible = %v, expected %v", i+1, got, want[i])
		}
	}
	if e.Stats().Steps != 4 {
		t.Errorf("Steps = %d, expected 4", e.Stats().Steps)
	}
}

func TestCloseRequestShutsDown(t *testing.T) {
	h := &headless.Harness{Options: []headless.Option{headless.WithFrameBudget(3)}}
	sc := &testScene{}
	e := newEngine(testConfig(), h, sc)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if e.State() != Terminated {
		t.Errorf("State() = %v, expected %v", e.State(), Terminated)
	}
	if e.Stats().Frames != 3 {
		t.Errorf("Frames = %d, expected 3", e.Stats().Frames)
	}
	if sc.teardowns != 1 {
		t.Errorf("Teardown called %d times, expected 1", sc.teardowns)
	}
	if !h.Window.Closed() {
		t.Error("window not closed")
	}
	if r := e.Result(); r.Exit != ExitClosed || r.Stats.Frames != 3 {
		t.Errorf("Result() = %+v, expected exit %q after 3 frames", r, ExitClosed)
	}
}

func TestLostContextIsFatal(t *testing.T) {
	h := &headless.Harness{Options: []headless.Option{headless.WithLoseContextAt(2)}}
	sc := &testScene{setup: func(ctx *Context) error {
		_, err := ctx.Resources.Load("player.png", resource.KindTexture)
		return err
	}}
	e := newEngine(testConfig(), h, sc, WithAssets(fstest.MapFS{"player.png": pngFile(t)}))

	err := e.Run(context.Background())
	if !errors.Is(err, platform.ErrContextLost) {
		t.Fatalf("Run() error = %v, expected ErrContextLost", err)
	}
	if !errors.Is(e.Err(), platform.ErrContextLost) {
		t.Errorf("Err() = %v, expected ErrContextLost", e.Err())
	}
	if e.State() != Terminated {
		t.Errorf("State() = %v, expected %v", e.State(), Terminated)
	}
	if e.Stats().Frames != 2 {
		t.Errorf("Frames = %d, expected 2", e.Stats().Frames)
	}
	if live := h.Window.HeadlessDevice().Live(); live != 0 {
		t.Errorf("device Live() = %d after shutdown, expected 0", live)
	}
	if r := e.Result(); r.Exit != ExitError || r.Err == nil {
		t.Errorf("Result() = %+v, expected exit %q with an error", r, ExitError)
	}
}

func TestShutdownReleasesInReverseOrder(t *testing.T) {
	files := fstest.MapFS{
		"a.png":     pngFile(t),
		"b.png":     pngFile(t),
		"tint.kage": {Data: []byte("package main")},
	}
	h := &headless.Harness{Options: []headless.Option{headless.WithFrameBudget(2)}}
	sc := &testScene{setup: func(ctx *Context) error {
		for _, p := range []string{"a.png", "b.png", "tint.kage"} {
			if _, err := ctx.Resources.Load(p, resource.KindFor(p)); err != nil {
				return err
			}
		}
		return nil
	}}
	e := newEngine(testConfig(), h, sc, WithAssets(files))
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	dev := h.Window.HeadlessDevice()
	got := dev.DestroyLog()
	want := []uint64{3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("DestroyLog() = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DestroyLog() = %v, expected %v", got, want)
		}
	}
	if e.Stats().Resources != 0 {
		t.Errorf("Resources = %d after shutdown, expected 0", e.Stats().Resources)
	}
}

func TestReleasedMidFrameFallsBack(t *testing.T) {
	h := &headless.Harness{Options: []headless.Option{headless.WithFrameBudget(3)}}
	var tex core.Handle
	sc := &testScene{setup: func(ctx *Context) error {
		var err error
		tex, err = ctx.Resources.Load("a.png", resource.KindTexture)
		if err != nil {
			return err
		}
		ctx.World.Spawn(scene.Transform{}, scene.Sprite{Texture: tex, Glyph: 'T'})
		ctx.Scheduler.Add(scene.PhaseLate, "release", func(w *scene.World, fc scene.FrameContext) {
			if fc.Step == 2 {
				if err := ctx.Resources.Release(tex); err != nil {
					t.Errorf("Release() failed: %v", err)
				}
			}
		})
		return nil
	}}
	e := newEngine(testConfig(), h, sc, WithAssets(fstest.MapFS{"a.png": pngFile(t)}))
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	frames := h.Window.Frames()
	if len(frames) != 3 {
		t.Fatalf("recorded %d frames, expected 3", len(frames))
	}
	if c := frames[0].Cmds[0]; c.Fallback || c.Texture != tex {
		t.Errorf("frame 1 cmd = %+v, expected the texture", c)
	}
	for _, f := range frames[1:] {
		if c := f.Cmds[0]; !c.Fallback || !c.Texture.IsZero() {
			t.Errorf("frame %d cmd = %+v, expected fallback", f.Index, c)
		}
	}
	if e.Stats().Substituted != 2 {
		t.Errorf("Substituted = %d, expected 2", e.Stats().Substituted)
	}
	if got := len(h.Window.HeadlessDevice().DestroyLog()); got != 1 {
		t.Errorf("destroy count = %d, expected 1", got)
	}
}

func TestSetupErrorReleasesAndCloses(t *testing.T) {
	h := &headless.Harness{}
	boom := errors.New("boom")
	sc := &testScene{setup: func(ctx *Context) error {
		ctx.Resources.Load("a.png", resource.KindTexture)
		return boom
	}}
	e := newEngine(testConfig(), h, sc, WithAssets(fstest.MapFS{"a.png": pngFile(t)}))

	err := e.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, expected boom", err)
	}
	if sc.teardowns != 0 {
		t.Error("Teardown ran for a scene whose setup failed")
	}
	if h.Window.HeadlessDevice().Live() != 0 || !h.Window.Closed() {
		t.Error("setup failure leaked resources or the window")
	}
	if e.State() != Terminated {
		t.Errorf("State() = %v, expected %v", e.State(), Terminated)
	}
}

func TestContextCancelStops(t *testing.T) {
	h := &headless.Harness{}
	ctx, cancel := context.WithCancel(context.Background())
	sc := &testScene{setup: func(c *Context) error {
		c.Scheduler.Add(scene.PhaseLate, "cancel", func(_ *scene.World, fc scene.FrameContext) {
			if fc.Step == 5 {
				cancel()
			}
		})
		return nil
	}}
	e := newEngine(testConfig(), h, sc)
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if e.Stats().Frames != 5 {
		t.Errorf("Frames = %d, expected 5", e.Stats().Frames)
	}
	if got := e.Result().Exit; got != ExitCancelled {
		t.Errorf("Result().Exit = %q, expected %q", got, ExitCancelled)
	}
}

func TestSceneStopAndSounds(t *testing.T) {
	h := &headless.Harness{}
	sc := &testScene{setup: func(ctx *Context) error {
		clip, err := ctx.Resources.LoadPCM("beep", &platform.PCM{SampleRate: 8000, Channels: 1, Data: make([]byte, 160)})
		if err != nil {
			return err
		}
		ctx.Scheduler.Add(scene.PhaseLate, "script", func(w *scene.World, fc scene.FrameContext) {
			switch fc.Step {
			case 1:
				w.Spawn(scene.Sound{Clip: clip})
			case 2:
				ctx.Stop()
			}
		})
		return nil
	}}
	e := newEngine(testConfig(), h, sc)
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if e.Stats().Frames != 2 {
		t.Errorf("Frames = %d, expected 2", e.Stats().Frames)
	}
	if e.Stats().Sounds != 1 || len(h.Window.HeadlessDevice().Plays()) != 1 {
		t.Errorf("Sounds = %d, device plays = %d; expected 1 and 1",
			e.Stats().Sounds, len(h.Window.HeadlessDevice().Plays()))
	}
	if got := e.Result().Exit; got != ExitStopped {
		t.Errorf("Result().Exit = %q, expected %q", got, ExitStopped)
	}
}

func TestStartTwice(t *testing.T) {
	h := &headless.Harness{}
	e := newEngine(testConfig(), h, &testScene{})
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer e.Shutdown()
	if err := e.Start(context.Background()); err == nil {
		t.Error("second Start() expected error")
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Uninitialized: "uninitialized",
		Running:       "running",
		ShuttingDown:  "shutting-down",
		Terminated:    "terminated",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("String() = %q, expected %q", s.String(), want)
		}
	}
}
