package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/topdown/internal/config"
	"github.com/vovakirdan/topdown/internal/engine"
	"github.com/vovakirdan/topdown/internal/platform"
)

const defaultDBPath = "~/.topdown/scores.db"

// loadConfig loads the engine config and applies the global flag overrides.
func loadConfig() (config.EngineConfig, error) {
	cfg, err := config.LoadEngine(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagDBPath != "" {
		cfg.Storage.DB = flagDBPath
	}
	return cfg, cfg.Validate()
}

// dbPath returns the scores database location.
func dbPath(cfg config.EngineConfig) string {
	if cfg.Storage.DB != "" {
		return cfg.Storage.DB
	}
	return defaultDBPath
}

// newLogger builds the process logger at the configured level.
func newLogger(w io.Writer, cfg config.EngineConfig) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "topdown",
	})
	if level, err := log.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// logFile opens ~/.topdown/topdown.log for runs that own the terminal.
// It falls back to discarding logs when the file cannot be opened.
func logFile() io.WriteCloser {
	dir := config.UserDir()
	if dir == "" {
		return nopCloser{io.Discard}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nopCloser{io.Discard}
	}
	f, err := os.OpenFile(filepath.Join(dir, "topdown.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nopCloser{io.Discard}
	}
	return f
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// engineConfig converts the file config to loop parameters.
func engineConfig(cfg config.EngineConfig) engine.Config {
	return engine.Config{
		Window: platform.Config{
			Title:       cfg.Window.Title,
			Width:       cfg.Window.Width,
			Height:      cfg.Window.Height,
			Vsync:       cfg.Window.Vsync,
			Fullscreen:  cfg.Window.Fullscreen,
			RefreshRate: cfg.Window.RefreshRate,
		},
		FixedRate: cfg.Timing.FixedRate,
		MaxDelta:  cfg.Timing.MaxDelta,
		MaxSteps:  cfg.Timing.MaxSteps,
		Workers:   cfg.Assets.Workers,
		Seed:      cfg.Seed,
	}
}
