package ebitenwin

import (
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/vovakirdan/topdown/internal/platform"
)

// Texture is a GPU image.
type Texture struct {
	img  *ebiten.Image
	dead bool
}

// Shader is a compiled Kage program.
type Shader struct {
	Name string
	prog *ebiten.Shader
	dead bool
}

// Sound is a clip converted to the audio context format.
type Sound struct {
	data    []byte
	players []*audio.Player
}

// Device is the ebiten platform.Device. Ebiten serializes GPU access
// itself, and every call comes from the loop goroutine, so there is no lock.
type Device struct {
	audio      bool
	sampleRate int
	logger     *log.Logger
	live       map[platform.Object]struct{}
	dead       map[platform.Object]struct{}
	closed     bool
}

var _ platform.Device = (*Device)(nil)

func newDevice(enabled bool, sampleRate int, logger *log.Logger) *Device {
	return &Device{
		audio:      enabled,
		sampleRate: sampleRate,
		logger:     logger,
		live:       make(map[platform.Object]struct{}),
		dead:       make(map[platform.Object]struct{}),
	}
}

func (d *Device) add(op string, obj platform.Object) (platform.Object, error) {
	if d.closed {
		return nil, &platform.Error{Op: op, Err: platform.ErrClosed}
	}
	d.live[obj] = struct{}{}
	return obj, nil
}

// CreateTexture implements platform.Device.
func (d *Device) CreateTexture(img *image.RGBA) (platform.Object, error) {
	if d.closed {
		return nil, &platform.Error{Op: "texture", Err: platform.ErrClosed}
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &platform.Error{Op: "texture", Err: fmt.Errorf("ebitenwin: empty image %v", b)}
	}
	return d.add("texture", &Texture{img: ebiten.NewImageFromImage(img)})
}

// CompileShader implements platform.Device. src is Kage source.
func (d *Device) CompileShader(name string, src []byte) (platform.Object, error) {
	if d.closed {
		return nil, &platform.Error{Op: "shader", Err: platform.ErrClosed}
	}
	prog, err := ebiten.NewShader(src)
	if err != nil {
		return nil, &platform.Error{Op: "shader", Err: fmt.Errorf("ebitenwin: compile %q: %w", name, err)}
	}
	return d.add("shader", &Shader{Name: name, prog: prog})
}

// CreateAudio implements platform.Device. With audio disabled the clip is
// tracked but silent.
func (d *Device) CreateAudio(pcm *platform.PCM) (platform.Object, error) {
	s := &Sound{}
	if d.audio {
		s.data = pcm.Stereo(d.sampleRate)
	}
	return d.add("audio", s)
}

// Destroy implements platform.Device.
func (d *Device) Destroy(obj platform.Object) error {
	if _, ok := d.dead[obj]; ok {
		return &platform.Error{Op: "destroy", Err: platform.ErrDoubleFree}
	}
	if _, ok := d.live[obj]; !ok {
		return &platform.Error{Op: "destroy", Err: platform.ErrUnknownObj}
	}
	delete(d.live, obj)
	d.dead[obj] = struct{}{}
	release(obj)
	return nil
}

// PlaySound implements platform.Device. Each call starts a new player so
// overlapping plays of one clip mix.
func (d *Device) PlaySound(obj platform.Object) error {
	s, isSound := obj.(*Sound)
	if _, ok := d.live[obj]; !ok || !isSound {
		return &platform.Error{Op: "play", Err: platform.ErrUnknownObj}
	}
	if !d.audio || len(s.data) == 0 {
		return nil
	}

	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(d.sampleRate)
	}
	if ctx.SampleRate() != d.sampleRate {
		d.logger.Warn("audio context rate mismatch", "want", d.sampleRate, "have", ctx.SampleRate())
		return nil
	}

	// Finished players are recycled before starting another.
	kept := s.players[:0]
	for _, p := range s.players {
		if p.IsPlaying() {
			kept = append(kept, p)
			continue
		}
		p.Close()
	}
	p := ctx.NewPlayerFromBytes(s.data)
	p.Play()
	s.players = append(kept, p)
	return nil
}

// Live returns how many objects are alive.
func (d *Device) Live() int { return len(d.live) }

// invalidate releases every live object, as losing the context does.
func (d *Device) invalidate() {
	for obj := range d.live {
		d.dead[obj] = struct{}{}
		release(obj)
	}
	clear(d.live)
	d.closed = true
}

func release(obj platform.Object) {
	switch o := obj.(type) {
	case *Texture:
		o.dead = true
		o.img.Deallocate()
	case *Shader:
		o.dead = true
		o.prog.Deallocate()
	case *Sound:
		for _, p := range o.players {
			p.Close()
		}
		o.players = nil
		o.data = nil
	}
}
