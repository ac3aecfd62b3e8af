// Package render turns a read-only scene view into a platform.Frame.
package render

import (
	"sort"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
	"github.com/vovakirdan/topdown/internal/scene"
)

// Fallback appearance for sprites whose texture is gone.
const (
	FallbackGlyph = '?'
	FallbackColor = core.ColorBrightMagenta
)

// Resources is the part of the resource manager the renderer needs.
type Resources interface {
	platform.Resolver
	Valid(h core.Handle) bool
}

// Stats describes the last rendered frame.
type Stats struct {
	Commands    int
	Culled      int
	Substituted int
}

// Renderer builds frames. It reuses one Frame between calls, so the
// returned frame is only valid until the next RenderFrame.
type Renderer struct {
	frame platform.Frame
	index uint64
	stats Stats
	total int

	// Clear is the background color of every frame.
	Clear core.Color
	// Cull drops sprites entirely outside the camera viewport.
	Cull bool
}

// New creates a renderer with culling enabled.
func New() *Renderer {
	return &Renderer{Clear: core.ColorBlack, Cull: true}
}

// RenderFrame draws the view as seen by its camera, interpolating every
// transform by alpha between the previous and the current fixed step.
// It reads the scene and never writes to it.
func (r *Renderer) RenderFrame(v scene.View, res Resources, alpha float64) *platform.Frame {
	r.index++
	f := &r.frame
	f.Reset(r.index)
	f.Clear = r.Clear
	f.Resolver = res
	r.stats = Stats{}

	cam := v.Camera()
	camPos := cam.At(alpha)
	view := core.Box{Max: cam.Viewport}
	cull := r.Cull && cam.Viewport.X > 0 && cam.Viewport.Y > 0

	v.EachRenderable(func(e scene.Renderable) {
		sp := e.Sprite
		scale := e.Scale
		if scale == 0 {
			scale = 1
		}
		size := sp.Size
		if size == (core.Vec2{}) {
			size = core.V(1, 1)
		}
		size = size.Scale(scale)
		pos := core.LerpVec(e.PrevPos, e.Pos, alpha).Sub(camPos)

		if cull && !core.BoxAt(pos, size).Overlaps(view) {
			r.stats.Culled++
			return
		}

		cmd := platform.DrawCmd{
			Layer:    sp.Layer,
			Order:    e.Order,
			Texture:  sp.Texture,
			Shader:   sp.Shader,
			Glyph:    sp.Glyph,
			Color:    sp.Color,
			X:        pos.X,
			Y:        pos.Y,
			W:        size.X,
			H:        size.Y,
			Rotation: core.Lerp(e.PrevRot, e.Rot, alpha),
		}
		if !sp.Texture.IsZero() && (res == nil || !res.Valid(sp.Texture)) {
			cmd.Texture = core.NoHandle
			cmd.Glyph = FallbackGlyph
			cmd.Color = FallbackColor
			cmd.Fallback = true
			r.stats.Substituted++
		}
		if !sp.Shader.IsZero() && (res == nil || !res.Valid(sp.Shader)) {
			cmd.Shader = core.NoHandle
		}
		f.Cmds = append(f.Cmds, cmd)
	})

	sort.SliceStable(f.Cmds, func(i, j int) bool {
		a, b := f.Cmds[i], f.Cmds[j]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		return a.Order < b.Order
	})

	for _, t := range v.HUD() {
		f.Text = append(f.Text, platform.TextCmd{X: t.X, Y: t.Y, Text: t.Text, Color: t.Color})
	}

	r.stats.Commands = len(f.Cmds)
	r.total += r.stats.Substituted
	return f
}

// Stats returns statistics of the last frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// TotalSubstituted returns the fallback count over all frames.
func (r *Renderer) TotalSubstituted() int {
	return r.total
}
