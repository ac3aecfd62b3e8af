package config

import (
	"fmt"
	"strings"
)

// Error reports an invalid configuration value. It is returned before any
// window is created.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// Backends lists the accepted backend names.
var Backends = []string{"tui", "ebiten", "headless"}

var logLevels = []string{"debug", "info", "warn", "error"}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Validate checks the engine configuration.
func (c EngineConfig) Validate() error {
	switch {
	case c.Window.Width <= 0:
		return &Error{Field: "window.width", Msg: fmt.Sprintf("must be positive, got %d", c.Window.Width)}
	case c.Window.Height <= 0:
		return &Error{Field: "window.height", Msg: fmt.Sprintf("must be positive, got %d", c.Window.Height)}
	case c.Window.RefreshRate < 0:
		return &Error{Field: "window.refresh_rate", Msg: "must not be negative"}
	case c.Timing.FixedRate < 1 || c.Timing.FixedRate > 1000:
		return &Error{Field: "timing.fixed_rate", Msg: fmt.Sprintf("must be in 1..1000, got %d", c.Timing.FixedRate)}
	case c.Timing.MaxDelta <= 0:
		return &Error{Field: "timing.max_delta", Msg: "must be positive"}
	case c.Timing.MaxSteps < 0:
		return &Error{Field: "timing.max_steps", Msg: "must not be negative"}
	case !oneOf(c.Backend, Backends):
		return &Error{Field: "backend", Msg: fmt.Sprintf("unknown backend %q (want %s)", c.Backend, strings.Join(Backends, ", "))}
	case !oneOf(strings.ToLower(c.Log.Level), logLevels):
		return &Error{Field: "log.level", Msg: fmt.Sprintf("unknown level %q", c.Log.Level)}
	case c.Assets.Workers < 0:
		return &Error{Field: "assets.workers", Msg: "must not be negative"}
	case c.Audio.Enabled && c.Audio.SampleRate <= 0:
		return &Error{Field: "audio.sample_rate", Msg: "must be positive when audio is enabled"}
	}
	return nil
}

// Validate checks the scene configuration.
func (c TopDownConfig) Validate() error {
	switch {
	case c.Player.Speed <= 0:
		return &Error{Field: "player.speed", Msg: "must be positive"}
	case c.Player.Size <= 0:
		return &Error{Field: "player.size", Msg: "must be positive"}
	case c.Pickups.Interval <= 0:
		return &Error{Field: "pickups.interval", Msg: "must be positive"}
	case c.Pickups.Lifetime <= 0:
		return &Error{Field: "pickups.lifetime", Msg: "must be positive"}
	case c.Pickups.Max <= 0:
		return &Error{Field: "pickups.max", Msg: "must be positive"}
	}
	switch c.Difficulty.Progression.Type {
	case "", "score", "time", "none":
	default:
		return &Error{Field: "difficulty.progression.type", Msg: fmt.Sprintf("unknown type %q", c.Difficulty.Progression.Type)}
	}
	return nil
}
