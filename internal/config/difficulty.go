package config

// DifficultyManager maps score or elapsed steps to a difficulty level and
// scales scene parameters by it.
type DifficultyManager struct {
	cfg     DifficultyConfig
	initial float64
}

// NewDifficultyManager creates a manager. The initial level is clamped to [0, 1].
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{cfg: cfg, initial: clamp01(cfg.InitialLevel)}
}

// progressing reports whether the level moves at all.
func (d *DifficultyManager) progressing() bool {
	switch d.cfg.Progression.Type {
	case "score", "time":
		return d.cfg.Enabled
	}
	return false
}

// Level returns the difficulty in [0, 1]. It rises linearly from the
// initial level and reaches 1 at progression.max_at.
func (d *DifficultyManager) Level(score, ticks int) float64 {
	if !d.progressing() {
		return d.initial
	}
	at := float64(ticks)
	if d.cfg.Progression.Type == "score" {
		at = float64(score)
	}
	maxAt := float64(max(d.cfg.Progression.MaxAt, 1))
	return d.initial + clamp01(at/maxAt)*(1-d.initial)
}

// Speed scales base up to base * (1 + speed_multiplier) at full difficulty.
func (d *DifficultyManager) Speed(base float64, score, ticks int) float64 {
	return base * (1 + d.Level(score, ticks)*d.cfg.Scaling.SpeedMultiplier)
}

// Interval shortens a spawn interval in steps, never below floor or 1.
func (d *DifficultyManager) Interval(base, floor, score, ticks int) int {
	return d.reduce(base, floor, d.cfg.Scaling.IntervalReduction, score, ticks)
}

// Lifetime shortens a pickup lifetime in steps, never below floor or 1.
func (d *DifficultyManager) Lifetime(base, floor, score, ticks int) int {
	return d.reduce(base, floor, d.cfg.Scaling.LifetimeReduction, score, ticks)
}

func (d *DifficultyManager) reduce(base, floor, by, score, ticks int) int {
	return max(base-int(d.Level(score, ticks)*float64(by)), floor, 1)
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
