// Package clock measures frame time and slices it into fixed simulation steps.
package clock

import (
	"sync"
	"time"
)

// DefaultMaxDelta caps a single frame's delta so that a stall (debugger,
// window drag, suspended laptop) does not produce a huge catch-up burst.
const DefaultMaxDelta = 250 * time.Millisecond

// TimeSource returns a monotonic timestamp.
type TimeSource interface {
	Now() time.Time
}

type systemSource struct{}

func (systemSource) Now() time.Time { return time.Now() }

// System is the wall clock. time.Now carries a monotonic reading, so
// subtracting two of its values is immune to wall clock adjustments.
var System TimeSource = systemSource{}

// ManualSource is a TimeSource advanced by hand. Safe for concurrent use.
type ManualSource struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualSource creates a source starting at an arbitrary fixed instant.
func NewManualSource() *ManualSource {
	return &ManualSource{now: time.Unix(1_000_000, 0)}
}

// Now returns the current manual time.
func (m *ManualSource) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the manual time forward.
func (m *ManualSource) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// FixedSource advances by a constant amount on every call to Now, which
// makes a loop run exactly one fixed step per frame when the amounts match.
type FixedSource struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewFixedSource creates a source advancing by step per call.
func NewFixedSource(step time.Duration) *FixedSource {
	return &FixedSource{now: time.Unix(1_000_000, 0), step: step}
}

// Now returns the current time and advances it.
func (f *FixedSource) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.now
	f.now = f.now.Add(f.step)
	return t
}

// Clock reports the time elapsed between consecutive ticks.
type Clock struct {
	source   TimeSource
	maxDelta time.Duration
	last     time.Time
	started  bool
	elapsed  time.Duration
	clamped  int
}

// New creates a clock. A nil source uses System; maxDelta <= 0 uses DefaultMaxDelta.
func New(source TimeSource, maxDelta time.Duration) *Clock {
	if source == nil {
		source = System
	}
	if maxDelta <= 0 {
		maxDelta = DefaultMaxDelta
	}
	return &Clock{source: source, maxDelta: maxDelta}
}

// Tick returns the time since the previous Tick, clamped to the ceiling.
// The first call returns 0.
func (c *Clock) Tick() time.Duration {
	now := c.source.Now()
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}
	dt := now.Sub(c.last)
	c.last = now
	if dt < 0 {
		dt = 0
	}
	if dt > c.maxDelta {
		dt = c.maxDelta
		c.clamped++
	}
	c.elapsed += dt
	return dt
}

// MaxDelta returns the per-tick ceiling.
func (c *Clock) MaxDelta() time.Duration {
	return c.maxDelta
}

// Elapsed returns the sum of all (clamped) deltas returned so far.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// Clamped returns how many ticks hit the ceiling.
func (c *Clock) Clamped() int {
	return c.clamped
}
