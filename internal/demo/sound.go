package demo

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/vovakirdan/topdown/internal/platform"
)

// Beep synthesizes a decaying sine tone as 16-bit stereo PCM.
func Beep(freq float64, d time.Duration, sampleRate int) *platform.PCM {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	n := int(d.Seconds() * float64(sampleRate))
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		env := 1 - float64(i)/float64(n)
		v := math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)) * env * 0.3
		s := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(data[i*4:], s)
		binary.LittleEndian.PutUint16(data[i*4+2:], s)
	}
	return &platform.PCM{SampleRate: sampleRate, Channels: 2, Data: data}
}
