package platform

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/vovakirdan/topdown/internal/core"
)

// Resolver turns resource handles into device objects. The resource manager
// implements it; a false result means the handle is no longer valid.
type Resolver interface {
	Resolve(h core.Handle) (Object, bool)
}

// DrawCmd is one sprite quad in screen space (world units after camera).
type DrawCmd struct {
	Layer    int
	Order    uint64 // spawn order of the source entity, tie-breaker within a layer
	Texture  core.Handle
	Shader   core.Handle
	Glyph    rune
	Color    core.Color
	X, Y     float64
	W, H     float64
	Rotation float64
	Fallback bool // set when the renderer substituted the default for a dead handle
}

// TextCmd is a line of HUD text in screen units.
type TextCmd struct {
	X, Y  int
	Text  string
	Color core.Color
}

// Frame is the complete description of one presented image.
type Frame struct {
	Index    uint64
	Clear    core.Color
	Cmds     []DrawCmd
	Text     []TextCmd
	Resolver Resolver
}

// Reset empties the frame for reuse, keeping allocated capacity.
func (f *Frame) Reset(index uint64) {
	f.Index = index
	f.Cmds = f.Cmds[:0]
	f.Text = f.Text[:0]
	f.Resolver = nil
}

// Object resolves a handle through the frame's resolver. Zero handles and
// handles released since the frame was built resolve to (nil, false).
func (f *Frame) Object(h core.Handle) (Object, bool) {
	if h.IsZero() || f.Resolver == nil {
		return nil, false
	}
	return f.Resolver.Resolve(h)
}

// Clone returns a deep copy without the resolver.
func (f *Frame) Clone() *Frame {
	c := &Frame{Index: f.Index, Clear: f.Clear}
	c.Cmds = append([]DrawCmd(nil), f.Cmds...)
	c.Text = append([]TextCmd(nil), f.Text...)
	return c
}

// Digest hashes the command list. Two frames with the same digest draw the
// same thing, which lets regression tests compare command lists cheaply.
func (f *Frame) Digest() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putF := func(v float64) { put(math.Float64bits(v)) }

	put(uint64(f.Clear))
	for _, c := range f.Cmds {
		put(uint64(int64(c.Layer)))
		put(uint64(c.Texture))
		put(uint64(c.Shader))
		put(uint64(c.Glyph))
		put(uint64(c.Color))
		putF(c.X)
		putF(c.Y)
		putF(c.W)
		putF(c.H)
		putF(c.Rotation)
	}
	for _, t := range f.Text {
		put(uint64(int64(t.X)))
		put(uint64(int64(t.Y)))
		h.Write([]byte(t.Text))
		put(uint64(t.Color))
	}
	return h.Sum64()
}
