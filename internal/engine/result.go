package engine

import "time"

// Exit reasons reported in Result.
const (
	ExitClosed    = "closed"    // the window asked to close
	ExitStopped   = "stopped"   // the scene called Context.Stop
	ExitCancelled = "cancelled" // the run context was cancelled
	ExitError     = "error"     // setup or presentation failed
)

// Result summarizes a finished run for recording.
type Result struct {
	SceneID  string
	Score    int
	Stats    Stats
	Duration time.Duration
	Exit     string
	Err      error
}

// Result returns the outcome of the last run. Call it after Run returns.
func (e *Engine) Result() Result {
	r := Result{
		Stats:    e.Stats(),
		Duration: e.elapsed,
		Exit:     e.exit,
		Err:      e.err,
	}
	if e.scene != nil {
		r.SceneID = e.scene.ID()
		if s, ok := e.scene.(Scorer); ok {
			r.Score = s.Score()
		}
	}
	// A window that never opened leaves Exit empty: there was no run.
	if r.Exit == "" && e.State() == Terminated && !e.started.IsZero() {
		r.Exit = ExitClosed
	}
	return r
}
