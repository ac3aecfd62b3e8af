package clock

import (
	"fmt"
	"time"
)

// DefaultMaxSteps bounds the number of fixed steps run in one frame.
const DefaultMaxSteps = 8

// Stepper accumulates frame time and emits whole fixed steps.
type Stepper struct {
	step     time.Duration
	maxSteps int
	acc      time.Duration
	total    uint64
	dropped  uint64
}

// NewStepper creates a stepper running rate steps per second.
func NewStepper(rate int, maxSteps int) (*Stepper, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("clock: fixed rate must be positive, got %d", rate)
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Stepper{
		step:     time.Second / time.Duration(rate),
		maxSteps: maxSteps,
	}, nil
}

// Step returns the fixed step duration.
func (s *Stepper) Step() time.Duration {
	return s.step
}

// Advance adds dt to the accumulator and returns how many fixed steps to run
// now, plus the interpolation factor alpha in [0,1) for rendering between
// the last two simulated states. Steps beyond maxSteps are dropped.
func (s *Stepper) Advance(dt time.Duration) (steps int, alpha float64) {
	if dt > 0 {
		s.acc += dt
	}
	n := s.acc / s.step
	s.acc -= n * s.step
	if int64(n) > int64(s.maxSteps) {
		s.dropped += uint64(int64(n) - int64(s.maxSteps))
		n = time.Duration(s.maxSteps)
	}
	s.total += uint64(n)
	return int(n), float64(s.acc) / float64(s.step)
}

// Total returns the number of steps emitted so far.
func (s *Stepper) Total() uint64 {
	return s.total
}

// Dropped returns the number of steps discarded by the catch-up bound.
func (s *Stepper) Dropped() uint64 {
	return s.dropped
}

// Reset clears the accumulator.
func (s *Stepper) Reset() {
	s.acc = 0
}
