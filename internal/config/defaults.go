package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

//go:embed defaults/topdown.yaml
var defaultTopDownYAML []byte

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Window: WindowConfig{
			Title:       "topdown",
			Width:       80,
			Height:      24,
			Vsync:       true,
			RefreshRate: 60,
		},
		Timing: TimingConfig{
			FixedRate: 60,
			MaxDelta:  250 * time.Millisecond,
			MaxSteps:  8,
		},
		Backend: "tui",
		Assets: AssetsConfig{
			Root:    "assets",
			Workers: 2,
		},
		Audio: AudioConfig{
			SampleRate: 44100,
		},
		Log: LogConfig{
			Level: "info",
		},
		SSH: SSHConfig{
			Addr: ":23234",
		},
		Seed: 1,
	}
}

// DefaultTopDownConfig returns the default top-down scene configuration.
func DefaultTopDownConfig() TopDownConfig {
	return TopDownConfig{
		Player: TopDownPlayer{
			Speed: 24,
			Size:  1,
		},
		Pickups: TopDownPickups{
			Interval: 90,
			Lifetime: 300,
			Value:    10,
			Max:      8,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 200,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier:   0.5,
				IntervalReduction: 60,
				LifetimeReduction: 180,
			},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "engine":
		return defaultEngineYAML
	case "topdown":
		return defaultTopDownYAML
	default:
		return nil
	}
}
