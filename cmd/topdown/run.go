package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/topdown/internal/config"
	"github.com/vovakirdan/topdown/internal/engine"
	"github.com/vovakirdan/topdown/internal/platform"
	"github.com/vovakirdan/topdown/internal/platform/ebitenwin"
	"github.com/vovakirdan/topdown/internal/platform/headless"
	"github.com/vovakirdan/topdown/internal/platform/tui"
	"github.com/vovakirdan/topdown/internal/registry"
	"github.com/vovakirdan/topdown/internal/storage"
)

const defaultScene = "topdown"

var (
	flagBackend    string
	flagWidth      int
	flagHeight     int
	flagTitle      string
	flagVsync      bool
	flagRate       int
	flagMaxDelta   time.Duration
	flagAssets     string
	flagSeed       int64
	flagFrames     int
	flagProfile    string
	flagDifficulty string
	flagSceneCfg   string
	flagScale      int
)

var runCmd = &cobra.Command{
	Use:   "run [scene]",
	Short: "Run a scene",
	Long: `Run a scene on the game loop.

Without a scene, an interactive terminal gets the scene menu; otherwise the
top-down demo runs.

Backends:
  tui       - Draw in this terminal (default)
  ebiten    - Open a GPU window
  headless  - No output, stop after --frames frames

Controls (demo):
  WASD/Arrows - Move
  Q/Ctrl+C    - Quit
  Esc         - Back
  Ctrl+S      - Screenshot (terminal)

Examples:
  topdown run
  topdown run topdown --difficulty hard
  topdown run --backend ebiten --width 40 --height 30
  topdown run --backend headless --frames 600 --seed 7
  topdown run --profile cpu`,
	Args: cobra.MaximumNArgs(1),
}

func init() {
	runCmd.RunE = runRun
	f := runCmd.Flags()
	f.StringVar(&flagBackend, "backend", "", "Backend: tui, ebiten, headless")
	f.IntVar(&flagWidth, "width", 0, "Window width in units")
	f.IntVar(&flagHeight, "height", 0, "Window height in units")
	f.StringVar(&flagTitle, "title", "", "Window title")
	f.BoolVar(&flagVsync, "vsync", true, "Pace presentation to the refresh rate")
	f.IntVar(&flagRate, "rate", 0, "Fixed updates per second")
	f.DurationVar(&flagMaxDelta, "max-delta", 0, "Ceiling for one frame's delta")
	f.StringVar(&flagAssets, "assets", "", "Asset root directory")
	f.Int64Var(&flagSeed, "seed", 0, "RNG seed")
	f.IntVar(&flagFrames, "frames", 600, "Frames to run on the headless backend")
	f.StringVar(&flagProfile, "profile", "", "Write a profile: cpu or mem")
	f.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	f.StringVar(&flagSceneCfg, "scene-config", "", "Path to scene config YAML")
	f.IntVar(&flagScale, "scale", ebitenwin.DefaultScale, "Pixels per unit on the ebiten backend")
}

// applyRunFlags overrides config values with the flags the user set.
func applyRunFlags(cmd *cobra.Command, cfg *config.EngineConfig) error {
	f := cmd.Flags()
	if f.Changed("backend") {
		cfg.Backend = flagBackend
	}
	if f.Changed("width") {
		cfg.Window.Width = flagWidth
	}
	if f.Changed("height") {
		cfg.Window.Height = flagHeight
	}
	if f.Changed("title") {
		cfg.Window.Title = flagTitle
	}
	if f.Changed("vsync") {
		cfg.Window.Vsync = flagVsync
	}
	if f.Changed("rate") {
		cfg.Timing.FixedRate = flagRate
	}
	if f.Changed("max-delta") {
		cfg.Timing.MaxDelta = flagMaxDelta
	}
	if f.Changed("assets") {
		cfg.Assets.Root = flagAssets
	}
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
	switch config.DifficultyPreset(flagDifficulty) {
	case "", config.DifficultyEasy, config.DifficultyNormal, config.DifficultyHard, config.DifficultyFixed:
	default:
		return &config.Error{Field: "difficulty", Msg: fmt.Sprintf("unknown preset %q", flagDifficulty)}
	}
	return cfg.Validate()
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, &cfg); err != nil {
		return err
	}

	switch flagProfile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile %q (want cpu or mem)", flagProfile)
	}

	// A terminal run owns the screen, so logs go to a file.
	var out io.Writer = os.Stderr
	if cfg.Backend == "tui" {
		lf := logFile()
		defer lf.Close()
		out = lf
	}
	logger := newLogger(out, cfg)

	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{cfg: cfg, store: store, logger: logger}
	if cfg.Backend == "tui" && cfg.Audio.Enabled {
		// One sound card context serves every scene of this process.
		audio, err := tui.NewAudio(cfg.Audio.SampleRate)
		if err != nil {
			logger.Warn("audio disabled", "error", err)
		} else {
			r.audio = audio
			defer audio.Close()
		}
	}
	if len(args) == 1 {
		return r.runScene(ctx, args[0], config.DifficultyPreset(flagDifficulty))
	}
	if cfg.Backend == "tui" && term.IsTerminal(int(os.Stdout.Fd())) {
		return r.menuLoop(ctx)
	}
	return r.runScene(ctx, defaultScene, config.DifficultyPreset(flagDifficulty))
}

// runner runs scenes with one configuration.
type runner struct {
	cfg    config.EngineConfig
	store  *storage.Store
	audio  *tui.Audio
	logger *log.Logger
}

// menuLoop alternates between the menu, the scoreboard and scenes until
// the user quits the menu.
func (r *runner) menuLoop(ctx context.Context) error {
	width, height := r.cfg.Window.Width, r.cfg.Window.Height
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	for ctx.Err() == nil {
		res, err := tui.RunMenu(r.store, width, height)
		if err != nil {
			return err
		}
		if res.Width > 0 && res.Height > 0 {
			width, height = res.Width, res.Height
		}
		switch {
		case res.Quit:
			return nil
		case res.WantsScoreboard:
			back, err := tui.RunScoreboard(r.store, width, height)
			if err != nil {
				return err
			}
			if !back {
				return nil
			}
		case res.SceneID != "":
			if err := r.runScene(ctx, res.SceneID, res.Preset); err != nil {
				r.logger.Error("scene failed", "scene", res.SceneID, "error", err)
				fmt.Fprintf(os.Stderr, "Error running %s: %v\n", res.SceneID, err)
				time.Sleep(time.Second)
			}
		}
	}
	return nil
}

// runScene runs one scene to completion and records the result.
func (r *runner) runScene(ctx context.Context, id string, preset config.DifficultyPreset) error {
	if !registry.Exists(id) {
		return fmt.Errorf("unknown scene %q (run 'topdown list' to see available scenes)", id)
	}
	sc, err := registry.Create(id, registry.Options{ConfigPath: flagSceneCfg, Preset: preset})
	if err != nil {
		return err
	}

	eng := engine.New(engineConfig(r.cfg), r.opener(), sc,
		engine.WithLogger(r.logger),
		engine.WithAssets(os.DirFS(filepath.Clean(r.cfg.Assets.Root))),
	)
	runErr := eng.Run(ctx)

	res := eng.Result()
	if r.store != nil && res.Exit != "" {
		if err := r.store.RecordResult(r.cfg.Backend, res); err != nil {
			r.logger.Warn("could not record run", "error", err)
		}
	}
	r.logger.Info("run finished",
		"scene", res.SceneID,
		"score", res.Score,
		"frames", res.Stats.Frames,
		"dropped", res.Stats.Dropped,
		"exit", res.Exit,
	)
	if runErr != nil {
		return runErr
	}
	if r.cfg.Backend != "tui" {
		fmt.Printf("%s: score %d, %d frames in %s (%s)\n",
			res.SceneID, res.Score, res.Stats.Frames, res.Duration.Round(time.Millisecond), res.Exit)
	}
	return nil
}

// opener builds the window opener for the configured backend.
func (r *runner) opener() platform.Opener {
	switch r.cfg.Backend {
	case "headless":
		return headless.Opener(headless.WithFrameBudget(flagFrames), headless.WithoutRecording())
	case "ebiten":
		opts := []ebitenwin.Option{ebitenwin.WithLogger(r.logger), ebitenwin.WithScale(flagScale)}
		if r.cfg.Audio.Enabled {
			opts = append(opts, ebitenwin.WithAudio(r.cfg.Audio.SampleRate))
		}
		return ebitenwin.Opener(opts...)
	}

	opts := []tui.Option{tui.WithLogger(r.logger)}
	if !runCmd.Flags().Changed("width") && !runCmd.Flags().Changed("height") {
		opts = append(opts, tui.FitTerminal())
	}
	if r.audio != nil {
		opts = append(opts, tui.WithAudio(r.audio))
	}
	return tui.Opener(opts...)
}
