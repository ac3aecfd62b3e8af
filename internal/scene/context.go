package scene

import (
	"time"

	"github.com/vovakirdan/topdown/internal/input"
)

// FrameContext is what one fixed update sees. The engine builds a fresh
// value for every step.
type FrameContext struct {
	Frame uint64 // render frame the step belongs to
	Step  uint64 // fixed step index, starting at 1
	DT    time.Duration
	Input input.Snapshot
}

// Seconds returns DT in seconds.
func (fc FrameContext) Seconds() float64 {
	return fc.DT.Seconds()
}
