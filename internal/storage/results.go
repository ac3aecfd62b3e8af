package storage

import (
	"fmt"

	"github.com/vovakirdan/topdown/internal/engine"
)

// RecordResult stores a finished run and, when it scored, its score.
func (s *Store) RecordResult(backend string, r engine.Result) error {
	rec := RunRecord{
		SceneID:   r.SceneID,
		Backend:   backend,
		Frames:    r.Stats.Frames,
		Steps:     r.Stats.Steps,
		Dropped:   r.Stats.Dropped,
		Duration:  r.Duration,
		ExitState: r.Exit,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	if _, err := s.SaveRun(rec); err != nil {
		return err
	}
	if r.Score > 0 {
		if _, err := s.SaveScore(r.SceneID, r.Score); err != nil {
			return fmt.Errorf("storage: record result: %w", err)
		}
	}
	return nil
}
