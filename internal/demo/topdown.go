// Package demo implements the top-down collector scene.
// The player walks around a walled level and collects pickups that appear
// at random floor tiles and vanish after a while.
package demo

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/topdown/internal/config"
	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/engine"
	"github.com/vovakirdan/topdown/internal/input"
	"github.com/vovakirdan/topdown/internal/registry"
	"github.com/vovakirdan/topdown/internal/resource"
	"github.com/vovakirdan/topdown/internal/scene"
)

// Collision layers
const (
	LayerPlayer uint32 = 1 << iota
	LayerWall
	LayerPickup
)

// Asset paths, relative to the asset root. All of them are optional.
const (
	PlayerTexture = "textures/player.png"
	PickupTexture = "textures/pickup.png"
	TintShader    = "shaders/tint.kage"
	PickupSound   = "sounds/pickup.ogg"
)

// Visual characters for rendering
const (
	PlayerChar = '@'
	PickupChar = '◆'
	WallChar   = '█'
)

const (
	minInterval = 10 // Spawn interval floor in fixed steps
	minLifetime = 60 // Pickup lifetime floor in fixed steps
)

func init() {
	registry.Register(registry.SceneInfo{
		ID:          "topdown",
		Title:       "Top-Down Collector",
		Description: "Walk the arena and collect pickups before they fade",
	}, func(opts registry.Options) (engine.Scene, error) {
		cfg, err := config.LoadTopDown(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		if opts.Preset != "" {
			config.ApplyTopDownPreset(&cfg, opts.Preset)
		}
		return New(cfg), nil
	})
}

// TopDown is the collector scene.
type TopDown struct {
	cfg  config.TopDownConfig
	diff *config.DifficultyManager

	ctx    *engine.Context
	logger *log.Logger
	level  *Level
	rng    *rand.Rand
	player scene.Entity

	playerTex core.Handle
	pickupTex core.Handle
	shader    core.Handle
	sound     core.Handle

	score     int
	collected int
	ticks     int // Fixed steps since start or restart
	nextSpawn int
}

// New creates the scene.
func New(cfg config.TopDownConfig) *TopDown {
	diff := config.NewDifficultyManager(cfg.Difficulty)
	return &TopDown{cfg: cfg, diff: diff}
}

// ID returns the unique identifier for this scene.
func (t *TopDown) ID() string {
	return "topdown"
}

// Title returns the display name for this scene.
func (t *TopDown) Title() string {
	return "Top-Down Collector"
}

// Score returns the points collected so far.
func (t *TopDown) Score() int {
	return t.score
}

// Collected returns the number of pickups collected so far.
func (t *TopDown) Collected() int {
	return t.collected
}

// Level returns the loaded level, or nil before Setup.
func (t *TopDown) Level() *Level {
	return t.level
}

// Player returns the player entity.
func (t *TopDown) Player() scene.Entity {
	return t.player
}

// Setup loads the level and assets, spawns walls and the player and
// registers the scene systems.
func (t *TopDown) Setup(ctx *engine.Context) error {
	t.ctx = ctx
	t.logger = ctx.Logger
	if t.logger == nil {
		t.logger = log.Default()
	}
	t.rng = rand.New(rand.NewSource(ctx.Seed))
	t.score, t.collected, t.ticks, t.nextSpawn = 0, 0, 0, 1

	lvl, err := t.loadLevel(ctx.Resources)
	if err != nil {
		return err
	}
	t.level = lvl

	res := ctx.Resources
	t.playerTex = resource.LoadOrDefault(res, PlayerTexture, resource.KindTexture, core.NoHandle, t.logger)
	t.shader = resource.LoadOrDefault(res, TintShader, resource.KindShader, core.NoHandle, t.logger)
	t.sound = resource.LoadOrDefault(res, PickupSound, resource.KindAudio, core.NoHandle, t.logger)
	if t.sound.IsZero() {
		// Synthesized default; a device without audio leaves the scene silent.
		h, err := res.LoadPCM("builtin/pickup", Beep(880, 120*time.Millisecond, 44100))
		if err != nil {
			t.logger.Warn("no pickup sound", "err", err)
		}
		t.sound = h
	}
	ctx.Loader.Request(PickupTexture, resource.KindTexture, func(h core.Handle, err error) {
		if err != nil {
			t.logger.Debug("pickup texture unavailable", "err", err)
			return
		}
		t.pickupTex = h
	})

	w := ctx.World
	for _, b := range lvl.Walls {
		size := b.Max.Sub(b.Min)
		w.Spawn(
			scene.Transform{Pos: b.Min},
			scene.Sprite{Glyph: WallChar, Color: core.ColorGray, Size: size},
			scene.Collider{Size: size, Layers: LayerWall},
			scene.Solid{},
			scene.Tag("wall"),
		)
	}

	size := core.V(t.cfg.Player.Size, t.cfg.Player.Size)
	t.player = w.Spawn(
		scene.Transform{Pos: lvl.Start},
		scene.Velocity{},
		scene.Sprite{Texture: t.playerTex, Shader: t.shader, Glyph: PlayerChar, Color: core.ColorBrightCyan, Layer: 2, Size: size},
		scene.Collider{Size: size, Layers: LayerPlayer, Mask: LayerWall | LayerPickup},
		scene.Controller{Speed: t.cfg.Player.Speed},
		scene.CameraTarget{},
		scene.Tag("player"),
	)

	cam := w.Camera()
	cam.Bounds = lvl.Bounds()
	cam.CenterOn(lvl.Start.Add(size.Scale(0.5)))

	s := ctx.Scheduler
	s.Add(scene.PhaseInput, "topdown.commands", t.commands)
	s.Add(scene.PhaseLate, "topdown.collect", t.collect)
	s.Add(scene.PhaseLate, "topdown.spawn", t.spawn)
	s.Add(scene.PhaseLate, "topdown.hud", t.hud)

	t.logger.Info("level loaded", "level", lvl.ID, "walls", len(lvl.Walls), "floor", len(lvl.Floor))
	return nil
}

// loadLevel reads the configured level through the resource manager, or
// parses the built-in one.
func (t *TopDown) loadLevel(res *resource.Manager) (*Level, error) {
	if t.cfg.Level == "" {
		return LoadLevel(defaultLevel)
	}
	h, err := res.Load(t.cfg.Level, resource.KindData)
	if err != nil {
		return nil, err
	}
	defer res.Release(h)

	data, _ := res.Bytes(h)
	lvl, err := LoadLevel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.cfg.Level, err)
	}
	return lvl, nil
}

// Teardown logs the final result. Resources are released by the engine.
func (t *TopDown) Teardown() {
	if t.logger != nil {
		t.logger.Info("scene finished", "score", t.score, "collected", t.collected)
	}
	t.ctx = nil
}

func (t *TopDown) commands(w *scene.World, fc scene.FrameContext) {
	if fc.Input.ActionPressed(input.ActionQuit) && t.ctx != nil {
		t.ctx.Stop()
		return
	}
	if fc.Input.ActionPressed(input.ActionRestart) {
		t.restart(w)
	}
	speed := t.diff.Speed(t.cfg.Player.Speed, t.score, t.ticks)
	w.Set(t.player, scene.Controller{Speed: speed})
}

// restart clears pickups and the score and moves the player back to start.
func (t *TopDown) restart(w *scene.World) {
	w.Each(func(e scene.Entity) {
		if _, ok := w.Pickup(e); ok {
			w.Despawn(e)
		}
	})
	t.score, t.collected, t.ticks, t.nextSpawn = 0, 0, 0, 1
	t.rng.Seed(t.ctx.Seed)
	w.Set(t.player, scene.Transform{Pos: t.level.Start}, scene.Velocity{})

	size := core.V(t.cfg.Player.Size, t.cfg.Player.Size)
	w.Camera().CenterOn(t.level.Start.Add(size.Scale(0.5)))
	t.logger.Debug("restart")
}

func (t *TopDown) collect(w *scene.World, _ scene.FrameContext) {
	for _, c := range w.Contacts() {
		other := c.B
		if c.B == t.player {
			other = c.A
		} else if c.A != t.player {
			continue
		}
		p, ok := w.Pickup(other)
		if !ok {
			continue
		}
		w.Despawn(other)
		t.score += p.Value
		t.collected++
		if !t.sound.IsZero() {
			w.PlaySound(t.sound)
		}
	}
}

func (t *TopDown) spawn(w *scene.World, _ scene.FrameContext) {
	t.ticks++
	if t.ticks < t.nextSpawn {
		return
	}
	t.nextSpawn = t.ticks + t.diff.Interval(t.cfg.Pickups.Interval, minInterval, t.score, t.ticks)

	alive := 0
	w.Each(func(e scene.Entity) {
		if _, ok := w.Pickup(e); ok {
			alive++
		}
	})
	if alive >= t.cfg.Pickups.Max {
		return
	}

	pos, ok := t.freeTile(w)
	if !ok {
		return
	}
	w.Spawn(
		scene.Transform{Pos: pos},
		scene.Sprite{Texture: t.pickupTex, Glyph: PickupChar, Color: core.ColorBrightYellow, Layer: 1, Size: core.V(1, 1)},
		scene.Collider{Size: core.V(1, 1), Shape: scene.ShapeCircle, Radius: 0.5, Layers: LayerPickup},
		scene.Pickup{Value: t.cfg.Pickups.Value},
		scene.Lifetime{Ticks: t.diff.Lifetime(t.cfg.Pickups.Lifetime, minLifetime, t.score, t.ticks)},
		scene.Tag("pickup"),
	)
}

// freeTile picks a random floor tile away from the player.
func (t *TopDown) freeTile(w *scene.World) (core.Vec2, bool) {
	pt, _ := w.Transform(t.player)
	for i := 0; i < 8; i++ {
		pos := t.level.Floor[t.rng.Intn(len(t.level.Floor))]
		if core.Dist(pos, pt.Pos) >= 3 {
			return pos, true
		}
	}
	return core.Vec2{}, false
}

func (t *TopDown) hud(w *scene.World, _ scene.FrameContext) {
	lines := []scene.HUDText{
		{X: 1, Y: 0, Text: fmt.Sprintf(" Score: %d ", t.score), Color: core.ColorBrightWhite},
		{X: 16, Y: 0, Text: fmt.Sprintf(" %s ", t.level.Name), Color: core.ColorGray},
	}
	if t.ctx != nil && t.ctx.Height > 2 {
		lines = append(lines, scene.HUDText{
			X: 1, Y: t.ctx.Height - 1, Text: "WASD/Arrows move  R restart  Q quit", Color: core.ColorGray,
		})
	}
	w.SetHUD(lines...)
}
