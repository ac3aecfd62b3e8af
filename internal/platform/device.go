package platform

import (
	"encoding/binary"
	"image"
)

// Object is an opaque GPU or audio object created by a Device.
// Only the resource manager stores Objects; everything else uses handles.
type Object any

// PCM is decoded audio as interleaved signed 16-bit little endian samples.
type PCM struct {
	SampleRate int
	Channels   int
	Data       []byte
}

// Duration returns the clip length in seconds.
func (p *PCM) Duration() float64 {
	if p == nil || p.SampleRate == 0 || p.Channels == 0 {
		return 0
	}
	frames := len(p.Data) / (2 * p.Channels)
	return float64(frames) / float64(p.SampleRate)
}

// Stereo converts the clip to interleaved 16-bit stereo at rate, using
// nearest-sample resampling. Data already in that format is returned as is.
func (p *PCM) Stereo(rate int) []byte {
	if p == nil || p.Channels <= 0 || p.SampleRate <= 0 || rate <= 0 {
		return nil
	}
	if p.Channels == 2 && p.SampleRate == rate {
		return p.Data
	}

	frameSize := 2 * p.Channels
	inFrames := len(p.Data) / frameSize
	outFrames := int(int64(inFrames) * int64(rate) / int64(p.SampleRate))
	out := make([]byte, outFrames*4)
	for i := 0; i < outFrames; i++ {
		src := int(int64(i) * int64(p.SampleRate) / int64(rate))
		off := src * frameSize
		left := binary.LittleEndian.Uint16(p.Data[off:])
		right := left
		if p.Channels > 1 {
			right = binary.LittleEndian.Uint16(p.Data[off+2:])
		}
		binary.LittleEndian.PutUint16(out[i*4:], left)
		binary.LittleEndian.PutUint16(out[i*4+2:], right)
	}
	return out
}

// Device creates and destroys objects bound to a window's context.
// Calls must come from the goroutine that owns the context.
type Device interface {
	CreateTexture(img *image.RGBA) (Object, error)
	CompileShader(name string, src []byte) (Object, error)
	CreateAudio(pcm *PCM) (Object, error)
	Destroy(obj Object) error
	PlaySound(obj Object) error
}
