package tui

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

// Texture is a terminal texture: its pixels reduced to one palette color
// that tints the sprite glyph.
type Texture struct {
	W, H int
	Tint core.Color
}

// Shader is accepted and kept for handle bookkeeping. Terminals ignore shaders.
type Shader struct {
	Name string
}

// Clip is a sound converted to the audio output format.
type Clip struct {
	data []byte
}

// Device is the terminal platform.Device. Audio goes through an optional
// Audio output; without one, sounds are accepted and dropped.
type Device struct {
	mu     sync.Mutex
	audio  *Audio
	live   map[platform.Object]struct{}
	dead   map[platform.Object]struct{}
	closed bool
}

var _ platform.Device = (*Device)(nil)

func newDevice(audio *Audio) *Device {
	return &Device{
		audio: audio,
		live:  make(map[platform.Object]struct{}),
		dead:  make(map[platform.Object]struct{}),
	}
}

func (d *Device) add(op string, obj platform.Object) (platform.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, &platform.Error{Op: op, Err: platform.ErrClosed}
	}
	d.live[obj] = struct{}{}
	return obj, nil
}

// CreateTexture implements platform.Device.
func (d *Device) CreateTexture(img *image.RGBA) (platform.Object, error) {
	b := img.Bounds()
	return d.add("texture", &Texture{W: b.Dx(), H: b.Dy(), Tint: averageColor(img)})
}

// CompileShader implements platform.Device.
func (d *Device) CompileShader(name string, src []byte) (platform.Object, error) {
	if len(src) == 0 {
		return nil, &platform.Error{Op: "shader", Err: fmt.Errorf("tui: empty shader %q", name)}
	}
	return d.add("shader", &Shader{Name: name})
}

// CreateAudio implements platform.Device.
func (d *Device) CreateAudio(pcm *platform.PCM) (platform.Object, error) {
	clip := &Clip{}
	if d.audio != nil {
		clip.data = pcm.Stereo(d.audio.SampleRate())
	}
	return d.add("audio", clip)
}

// Destroy implements platform.Device.
func (d *Device) Destroy(obj platform.Object) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.dead[obj]; ok {
		return &platform.Error{Op: "destroy", Err: platform.ErrDoubleFree}
	}
	if _, ok := d.live[obj]; !ok {
		return &platform.Error{Op: "destroy", Err: platform.ErrUnknownObj}
	}
	delete(d.live, obj)
	d.dead[obj] = struct{}{}
	return nil
}

// PlaySound implements platform.Device.
func (d *Device) PlaySound(obj platform.Object) error {
	d.mu.Lock()
	_, ok := d.live[obj]
	d.mu.Unlock()

	clip, isClip := obj.(*Clip)
	if !ok || !isClip {
		return &platform.Error{Op: "play", Err: platform.ErrUnknownObj}
	}
	if d.audio == nil || len(clip.data) == 0 {
		return nil
	}
	return d.audio.Play(clip.data)
}

// Live returns how many objects are alive.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// invalidate kills every object, as a lost terminal does.
func (d *Device) invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for obj := range d.live {
		d.dead[obj] = struct{}{}
	}
	clear(d.live)
	d.closed = true
}

// averageColor returns the palette color closest to the mean of the
// visible pixels.
func averageColor(img *image.RGBA) core.Color {
	var r, g, b, n uint64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			r += uint64(c.R)
			g += uint64(c.G)
			b += uint64(c.B)
			n++
		}
	}
	if n == 0 {
		return core.ColorDefault
	}
	return core.NearestColor(color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 0xff})
}
