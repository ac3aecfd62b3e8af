package demo

import (
	"context"
	"math"
	"testing"
	"testing/fstest"
	"time"

	"github.com/vovakirdan/topdown/internal/clock"
	"github.com/vovakirdan/topdown/internal/config"
	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/engine"
	"github.com/vovakirdan/topdown/internal/platform"
	"github.com/vovakirdan/topdown/internal/platform/headless"
	"github.com/vovakirdan/topdown/internal/registry"
	"github.com/vovakirdan/topdown/internal/scene"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		walls   int
		floor   int
		start   core.Vec2
		wantErr bool
	}{
		{"box", []string{"####", "#P.#", "####"}, 4, 1, core.V(1, 1), false},
		{"padded", []string{"#####", "#P", "#####"}, 3, 3, core.V(1, 1), false},
		{"no start", []string{"###", "#.#", "###"}, 0, 0, core.Vec2{}, true},
		{"two starts", []string{"PP"}, 0, 0, core.Vec2{}, true},
		{"unknown tile", []string{"P?"}, 0, 0, core.Vec2{}, true},
		{"no floor", []string{"#P#"}, 0, 0, core.Vec2{}, true},
		{"empty", nil, 0, 0, core.Vec2{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, err := ParseLevel("t", "T", tt.lines)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLevel() error = nil, expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel() failed: %v", err)
			}
			if len(lvl.Walls) != tt.walls {
				t.Errorf("Walls = %d, expected %d", len(lvl.Walls), tt.walls)
			}
			if len(lvl.Floor) != tt.floor {
				t.Errorf("Floor = %d, expected %d", len(lvl.Floor), tt.floor)
			}
			if lvl.Start != tt.start {
				t.Errorf("Start = %v, expected %v", lvl.Start, tt.start)
			}
		})
	}
}

func TestParseLevelMergesRuns(t *testing.T) {
	lvl, err := ParseLevel("t", "T", []string{"###.##P"})
	if err != nil {
		t.Fatalf("ParseLevel() failed: %v", err)
	}
	want := []core.Box{
		{Min: core.V(0, 0), Max: core.V(3, 1)},
		{Min: core.V(4, 0), Max: core.V(6, 1)},
	}
	if len(lvl.Walls) != len(want) {
		t.Fatalf("Walls = %v, expected %v", lvl.Walls, want)
	}
	for i := range want {
		if lvl.Walls[i] != want[i] {
			t.Errorf("Walls[%d] = %v, expected %v", i, lvl.Walls[i], want[i])
		}
	}
	if !lvl.Solid(1, 0) || lvl.Solid(3, 0) || !lvl.Solid(-1, 0) || !lvl.Solid(0, 5) {
		t.Error("Solid() does not match the map")
	}
}

func TestDefaultLevel(t *testing.T) {
	lvl := DefaultLevel()
	if lvl.ID != "arena" {
		t.Errorf("ID = %q, expected arena", lvl.ID)
	}
	if lvl.Solid(int(lvl.Start.X), int(lvl.Start.Y)) {
		t.Error("start tile is a wall")
	}
	b := lvl.Bounds()
	if b.Max.X != float64(lvl.Width) || b.Max.Y != float64(lvl.Height) {
		t.Errorf("Bounds() = %v", b)
	}
}

func TestLoadLevelYAML(t *testing.T) {
	lvl, err := LoadLevel([]byte("map:\n  - \"#####\"\n  - \"#P..#\"\n  - \"#####\"\n"))
	if err != nil {
		t.Fatalf("LoadLevel() failed: %v", err)
	}
	if lvl.ID != "custom" || lvl.Name != "custom" {
		t.Errorf("ID, Name = %q, %q, expected custom", lvl.ID, lvl.Name)
	}
	if _, err := LoadLevel([]byte("map: [")); err == nil {
		t.Error("LoadLevel() accepted broken YAML")
	}
}

func TestBeep(t *testing.T) {
	pcm := Beep(440, 100*time.Millisecond, 8000)
	if pcm.Channels != 2 || pcm.SampleRate != 8000 {
		t.Errorf("Beep() = %d channels at %d Hz", pcm.Channels, pcm.SampleRate)
	}
	if len(pcm.Data) != 800*4 {
		t.Errorf("len(Data) = %d, expected %d", len(pcm.Data), 800*4)
	}
}

func TestRegistered(t *testing.T) {
	if !registry.Exists("topdown") {
		t.Fatal("topdown scene is not registered")
	}
	sc, err := registry.Create("topdown", registry.Options{Preset: config.DifficultyHard})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if sc.ID() != "topdown" {
		t.Errorf("ID() = %q, expected topdown", sc.ID())
	}
	if _, ok := sc.(engine.Scorer); !ok {
		t.Error("scene does not keep a score")
	}
}

const rate = 60

func start(t *testing.T, seed int64, h *headless.Harness, assets fstest.MapFS) (*engine.Engine, *TopDown) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.FixedRate = rate
	cfg.Seed = seed
	sc := New(config.DefaultTopDownConfig())
	if assets == nil {
		assets = fstest.MapFS{}
	}
	e := engine.New(cfg, h.Open, sc,
		engine.WithTimeSource(clock.NewFixedSource(time.Second/rate)),
		engine.WithAssets(assets),
	)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return e, sc
}

func frames(t *testing.T, e *engine.Engine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := e.Frame(); err != nil {
			t.Fatalf("Frame() failed: %v", err)
		}
	}
}

func TestSetupWithoutAssets(t *testing.T) {
	h := &headless.Harness{}
	e, sc := start(t, 1, h, nil)

	w := e.Context().World
	if !w.Alive(sc.Player()) {
		t.Fatal("player is not alive after setup")
	}
	walls := 0
	w.Each(func(ent scene.Entity) {
		if w.IsSolid(ent) {
			walls++
		}
	})
	if walls != len(sc.Level().Walls) {
		t.Errorf("solid entities = %d, expected %d", walls, len(sc.Level().Walls))
	}
	if w.Camera().Target != sc.Player() {
		t.Error("camera does not follow the player")
	}
	if sc.playerTex != core.NoHandle || sc.shader != core.NoHandle {
		t.Errorf("texture = %v, shader = %v, expected no handles without assets", sc.playerTex, sc.shader)
	}

	frames(t, e, 1)
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
	dev := h.Window.HeadlessDevice()
	if dev.Created() != 1 {
		t.Errorf("device objects created = %d, expected 1 (synthesized sound)", dev.Created())
	}
	if dev.Live() != 0 {
		t.Errorf("device objects live after shutdown = %d, expected 0", dev.Live())
	}
}

func TestCustomLevel(t *testing.T) {
	cfg := config.DefaultTopDownConfig()
	cfg.Level = "levels/tiny.yaml"
	assets := fstest.MapFS{
		"levels/tiny.yaml": {Data: []byte("id: tiny\nmap:\n  - \"######\"\n  - \"#P...#\"\n  - \"######\"\n")},
	}
	h := &headless.Harness{}
	sc := New(cfg)
	e := engine.New(engine.DefaultConfig(), h.Open, sc, engine.WithAssets(assets))
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer e.Shutdown()

	if sc.Level().ID != "tiny" {
		t.Errorf("level = %q, expected tiny", sc.Level().ID)
	}
	if e.Context().Resources.Len() != 1 {
		t.Errorf("resident assets = %d, expected only the sound", e.Context().Resources.Len())
	}
}

func TestMissingLevelFailsSetup(t *testing.T) {
	cfg := config.DefaultTopDownConfig()
	cfg.Level = "levels/missing.yaml"
	e := engine.New(engine.DefaultConfig(), (&headless.Harness{}).Open, New(cfg), engine.WithAssets(fstest.MapFS{}))
	if err := e.Start(context.Background()); err == nil {
		t.Fatal("Start() error = nil, expected missing level")
	}
	if e.State() != engine.Terminated {
		t.Errorf("State() = %s, expected terminated", e.State())
	}
}

func TestWallsBlockPlayer(t *testing.T) {
	h := &headless.Harness{Options: []headless.Option{
		headless.WithEvents(0, platform.KeyEvent{Key: platform.KeyD, Kind: platform.KeyPress}),
	}}
	e, sc := start(t, 1, h, nil)
	defer e.Shutdown()

	frames(t, e, 120)
	tr, _ := e.Context().World.Transform(sc.Player())
	// The arena has a wall at column 31 on the start row.
	if tr.Pos.X > 30+1e-6 || tr.Pos.X < 29 {
		t.Errorf("player X = %v, expected to rest against the wall at 30", tr.Pos.X)
	}
	if math.Abs(tr.Pos.Y-sc.Level().Start.Y) > 1e-6 {
		t.Errorf("player Y = %v, expected %v", tr.Pos.Y, sc.Level().Start.Y)
	}
}

// placePickup spawns a pickup on top of the player outside of an update.
func placePickup(e *engine.Engine, sc *TopDown, value int) scene.Entity {
	w := e.Context().World
	tr, _ := w.Transform(sc.Player())
	return w.Spawn(
		scene.Transform{Pos: tr.Pos},
		scene.Collider{Size: core.V(1, 1), Layers: LayerPickup},
		scene.Pickup{Value: value},
	)
}

func TestCollectPickup(t *testing.T) {
	h := &headless.Harness{}
	e, sc := start(t, 1, h, nil)
	defer e.Shutdown()

	p := placePickup(e, sc, 25)
	frames(t, e, 1) // joins the world
	if sc.Score() != 0 {
		t.Fatalf("Score() = %d before contact, expected 0", sc.Score())
	}
	frames(t, e, 1)
	if sc.Score() != 25 || sc.Collected() != 1 {
		t.Errorf("Score(), Collected() = %d, %d, expected 25, 1", sc.Score(), sc.Collected())
	}
	if e.Context().World.Alive(p) {
		t.Error("collected pickup is still alive")
	}
	if got := len(h.Window.HeadlessDevice().Plays()); got != 1 {
		t.Errorf("sounds played = %d, expected 1", got)
	}
}

func TestRestartClearsScore(t *testing.T) {
	h := &headless.Harness{Options: []headless.Option{
		headless.WithEvents(2, platform.KeyEvent{Key: platform.KeyR, Kind: platform.KeyPress}),
	}}
	e, sc := start(t, 1, h, nil)
	defer e.Shutdown()

	placePickup(e, sc, 10)
	frames(t, e, 2)
	if sc.Score() != 10 {
		t.Fatalf("Score() = %d, expected 10", sc.Score())
	}
	frames(t, e, 2)
	if sc.Score() != 0 {
		t.Errorf("Score() after restart = %d, expected 0", sc.Score())
	}
	tr, _ := e.Context().World.Transform(sc.Player())
	if tr.Pos != sc.Level().Start {
		t.Errorf("player at %v after restart, expected %v", tr.Pos, sc.Level().Start)
	}
}

func TestPickupsSpawnAndExpire(t *testing.T) {
	h := &headless.Harness{Options: []headless.Option{headless.WithoutRecording()}}
	e, _ := start(t, 3, h, nil)
	defer e.Shutdown()

	w := e.Context().World
	count := func() int {
		n := 0
		w.Each(func(ent scene.Entity) {
			if _, ok := w.Pickup(ent); ok {
				n++
			}
		})
		return n
	}

	frames(t, e, 1)
	if count() != 1 {
		t.Fatalf("pickups after first step = %d, expected 1", count())
	}

	maxSeen := 0
	for i := 0; i < 1200; i++ {
		frames(t, e, 1)
		maxSeen = max(maxSeen, count())
	}
	limit := config.DefaultTopDownConfig().Pickups.Max
	if maxSeen > limit {
		t.Errorf("pickups alive = %d, expected at most %d", maxSeen, limit)
	}
	if maxSeen < 2 {
		t.Errorf("pickups alive peaked at %d, expected several", maxSeen)
	}
}

func TestQuitStopsEngine(t *testing.T) {
	h := &headless.Harness{Options: []headless.Option{
		headless.WithEvents(4, platform.KeyEvent{Key: platform.KeyQ, Kind: platform.KeyPress}),
		headless.WithFrameBudget(100),
	}}
	cfg := engine.DefaultConfig()
	e := engine.New(cfg, h.Open, New(config.DefaultTopDownConfig()),
		engine.WithTimeSource(clock.NewFixedSource(time.Second/60)),
		engine.WithAssets(fstest.MapFS{}),
	)
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got := e.Stats().Frames; got != 5 {
		t.Errorf("Frames = %d, expected 5", got)
	}
	if e.State() != engine.Terminated {
		t.Errorf("State() = %s, expected terminated", e.State())
	}
}

func run(t *testing.T, seed int64) ([]uint64, int) {
	t.Helper()
	h := &headless.Harness{Options: []headless.Option{
		headless.WithEvents(0, platform.KeyEvent{Key: platform.KeyS, Kind: platform.KeyPress}),
		headless.WithEvents(40, platform.KeyEvent{Key: platform.KeyD, Kind: platform.KeyPress}),
		headless.WithEvents(90, platform.KeyEvent{Key: platform.KeyS, Kind: platform.KeyRelease}),
		headless.WithEvents(200, platform.KeyEvent{Key: platform.KeyD, Kind: platform.KeyRelease}),
		headless.WithEvents(200, platform.KeyEvent{Key: platform.KeyW, Kind: platform.KeyPress}),
	}}
	e, sc := start(t, seed, h, nil)
	frames(t, e, 300)
	e.Shutdown()

	var digests []uint64
	for _, f := range h.Window.Frames() {
		digests = append(digests, f.Digest())
	}
	return digests, sc.Score()
}

func TestDeterminism(t *testing.T) {
	a, scoreA := run(t, 42)
	b, scoreB := run(t, 42)
	if scoreA != scoreB {
		t.Errorf("scores differ: %d vs %d", scoreA, scoreB)
	}
	if len(a) != len(b) {
		t.Fatalf("frame counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d differs between identical runs", i+1)
		}
	}

	c, _ := run(t, 43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical runs")
	}
}

type entityState struct {
	order  uint64
	pos    core.Vec2
	ticks  int
	pickup bool
}

// runSplit plays 600 fixed steps of scripted input, perFrame steps per
// frame. Input lands on step boundaries shared by both splits.
func runSplit(t *testing.T, seed int64, perFrame int) ([]entityState, int, uint64) {
	t.Helper()
	const steps = 600
	at := func(step int) int { return step / perFrame }
	h := &headless.Harness{Options: []headless.Option{
		headless.WithEvents(at(0), platform.KeyEvent{Key: platform.KeyS, Kind: platform.KeyPress}),
		headless.WithEvents(at(42), platform.KeyEvent{Key: platform.KeyD, Kind: platform.KeyPress}),
		headless.WithEvents(at(90), platform.KeyEvent{Key: platform.KeyS, Kind: platform.KeyRelease}),
		headless.WithEvents(at(201), platform.KeyEvent{Key: platform.KeyD, Kind: platform.KeyRelease}),
		headless.WithEvents(at(201), platform.KeyEvent{Key: platform.KeyW, Kind: platform.KeyPress}),
		headless.WithEvents(at(390), platform.KeyEvent{Key: platform.KeyW, Kind: platform.KeyRelease}),
		headless.WithEvents(at(390), platform.KeyEvent{Key: platform.KeyA, Kind: platform.KeyPress}),
	}}

	cfg := engine.DefaultConfig()
	cfg.FixedRate = rate
	cfg.Seed = seed
	sc := New(config.DefaultTopDownConfig())
	e := engine.New(cfg, h.Open, sc,
		engine.WithTimeSource(clock.NewFixedSource(time.Duration(perFrame)*time.Second/rate)),
		engine.WithAssets(fstest.MapFS{}),
	)
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	frames(t, e, steps/perFrame)

	w := e.Context().World
	var state []entityState
	w.Each(func(ent scene.Entity) {
		s := entityState{order: w.Order(ent)}
		if tr, ok := w.Transform(ent); ok {
			s.pos = tr.Pos
		}
		if lt, ok := w.Lifetime(ent); ok {
			s.ticks = lt.Ticks
		}
		_, s.pickup = w.Pickup(ent)
		state = append(state, s)
	})
	total := e.Stats().Steps
	e.Shutdown()
	return state, sc.Score(), total
}

func TestDeterminismAcrossFrameSplits(t *testing.T) {
	single, scoreA, stepsA := runSplit(t, 9, 1)
	triple, scoreB, stepsB := runSplit(t, 9, 3)

	if stepsA != 600 || stepsB != 600 {
		t.Fatalf("steps = %d and %d, expected 600 each", stepsA, stepsB)
	}
	if scoreA != scoreB {
		t.Errorf("scores differ: %d with one step per frame, %d with three", scoreA, scoreB)
	}
	if len(single) != len(triple) {
		t.Fatalf("entity counts differ: %d vs %d", len(single), len(triple))
	}
	for i := range single {
		if single[i] != triple[i] {
			t.Errorf("entity %d = %+v with one step per frame, %+v with three", i, single[i], triple[i])
		}
	}
}
