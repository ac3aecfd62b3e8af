package tui

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Audio plays sounds on the local sound card. The underlying oto context
// can only be created once per process.
type Audio struct {
	ctx        *oto.Context
	sampleRate int

	mu      sync.Mutex
	players []*oto.Player
}

// NewAudio opens the sound card for 16-bit stereo output.
func NewAudio(sampleRate int) (*Audio, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("tui: audio: %w", err)
	}
	<-ready
	return &Audio{ctx: ctx, sampleRate: sampleRate}, nil
}

// SampleRate returns the output rate clips are converted to.
func (a *Audio) SampleRate() int {
	return a.sampleRate
}

// Play starts a converted clip and returns immediately.
func (a *Audio) Play(data []byte) error {
	if err := a.ctx.Err(); err != nil {
		return fmt.Errorf("tui: audio: %w", err)
	}
	p := a.ctx.NewPlayer(bytes.NewReader(data))
	p.Play()

	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.players[:0]
	for _, old := range a.players {
		if old.IsPlaying() {
			kept = append(kept, old)
			continue
		}
		old.Close()
	}
	a.players = append(kept, p)
	return nil
}

// Close stops every sound and suspends the output.
func (a *Audio) Close() error {
	a.mu.Lock()
	for _, p := range a.players {
		p.Close()
	}
	a.players = nil
	a.mu.Unlock()
	return a.ctx.Suspend()
}
