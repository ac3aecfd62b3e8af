// Package config provides YAML-based engine and scene configuration loading
// and difficulty management for the demo scenes.
package config

import "time"

// EngineConfig is the top-level runtime configuration.
type EngineConfig struct {
	Window  WindowConfig  `yaml:"window"`
	Timing  TimingConfig  `yaml:"timing"`
	Backend string        `yaml:"backend"` // "tui", "ebiten" or "headless"
	Assets  AssetsConfig  `yaml:"assets"`
	Audio   AudioConfig   `yaml:"audio"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	SSH     SSHConfig     `yaml:"ssh"`
	Seed    int64         `yaml:"seed"`
}

// WindowConfig describes the window to open.
type WindowConfig struct {
	Title       string `yaml:"title"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Vsync       bool   `yaml:"vsync"`
	Fullscreen  bool   `yaml:"fullscreen"`
	RefreshRate int    `yaml:"refresh_rate"`
}

// TimingConfig controls the fixed timestep.
type TimingConfig struct {
	FixedRate int           `yaml:"fixed_rate"` // Fixed updates per second
	MaxDelta  time.Duration `yaml:"max_delta"`  // Ceiling for one frame's delta
	MaxSteps  int           `yaml:"max_steps"`  // Fixed updates per frame before dropping
}

// AssetsConfig locates game assets.
type AssetsConfig struct {
	Root    string `yaml:"root"`
	Workers int    `yaml:"workers"` // Async decode workers
}

// AudioConfig controls sound output.
type AudioConfig struct {
	Enabled    bool `yaml:"enabled"`
	SampleRate int  `yaml:"sample_rate"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StorageConfig locates the score database.
type StorageConfig struct {
	DB string `yaml:"db"` // Empty means ~/.topdown/scores.db
}

// SSHConfig configures the terminal server.
type SSHConfig struct {
	Addr    string `yaml:"addr"`
	HostKey string `yaml:"host_key"`
}

// TopDownConfig contains all configuration for the top-down demo scene.
type TopDownConfig struct {
	Player     TopDownPlayer    `yaml:"player"`
	Pickups    TopDownPickups   `yaml:"pickups"`
	Level      string           `yaml:"level"` // Asset path of the level file, empty for the built-in level
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// TopDownPlayer defines player parameters.
type TopDownPlayer struct {
	Speed float64 `yaml:"speed"` // Units per second
	Size  float64 `yaml:"size"`
}

// TopDownPickups defines pickup spawning.
type TopDownPickups struct {
	Interval int `yaml:"interval"` // Fixed steps between spawns at the lowest difficulty
	Lifetime int `yaml:"lifetime"` // Fixed steps a pickup stays
	Value    int `yaml:"value"`
	Max      int `yaml:"max"` // Maximum pickups alive at once
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier   float64 `yaml:"speed_multiplier"`   // Multiplier added to speed at max difficulty
	IntervalReduction int     `yaml:"interval_reduction"` // Spawn interval reduction at max difficulty
	LifetimeReduction int     `yaml:"lifetime_reduction"` // Pickup lifetime reduction at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
