package ebitenwin

import (
	"image/color"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

// Debug font cell size in pixels.
const (
	glyphW = 6
	glyphH = 16
)

// drawOp is a draw command with its device objects already resolved.
type drawOp struct {
	cmd    platform.DrawCmd
	tex    *ebiten.Image
	shader *ebiten.Shader
}

// resolve appends one op per command. Handles that no longer resolve leave
// the op without objects, which draws a flat quad.
func resolve(f *platform.Frame, dst []drawOp) []drawOp {
	for _, c := range f.Cmds {
		op := drawOp{cmd: c}
		if obj, ok := f.Object(c.Texture); ok {
			if t, ok := obj.(*Texture); ok && !t.dead {
				op.tex = t.img
			}
		}
		if obj, ok := f.Object(c.Shader); ok {
			if s, ok := obj.(*Shader); ok && !s.dead {
				op.shader = s.prog
			}
		}
		dst = append(dst, op)
	}
	return dst
}

// quadGeoM maps a srcW x srcH source onto the command's rectangle in
// pixels, rotated about the rectangle's center.
func quadGeoM(c platform.DrawCmd, scale float64, srcW, srcH int) ebiten.GeoM {
	w, h := c.W*scale, c.H*scale
	var g ebiten.GeoM
	if srcW > 0 && srcH > 0 {
		g.Scale(w/float64(srcW), h/float64(srcH))
	}
	g.Translate(-w/2, -h/2)
	g.Rotate(c.Rotation)
	g.Translate(c.X*scale+w/2, c.Y*scale+h/2)
	return g
}

// background returns the clear color. The palette's terminal default
// becomes black on a pixel surface.
func background(c core.Color) color.Color {
	if c == core.ColorDefault {
		return color.Black
	}
	return c.RGBA()
}

func (w *Window) draw(screen *ebiten.Image) {
	if w.closed {
		return
	}
	scale := float64(w.opts.scale)
	screen.Fill(background(w.background))

	for _, op := range w.ops {
		c := op.cmd
		switch {
		case op.shader != nil:
			// Without a texture the shader covers the quad pixel for pixel.
			sw, sh := int(c.W*scale), int(c.H*scale)
			srcW, srcH := 0, 0
			opts := &ebiten.DrawRectShaderOptions{}
			if op.tex != nil {
				b := op.tex.Bounds()
				sw, sh = b.Dx(), b.Dy()
				srcW, srcH = sw, sh
				opts.Images[0] = op.tex
			}
			if sw <= 0 || sh <= 0 {
				continue
			}
			opts.GeoM = quadGeoM(c, scale, srcW, srcH)
			opts.ColorScale.ScaleWithColor(c.Color.RGBA())
			screen.DrawRectShader(sw, sh, op.shader, opts)
		case op.tex != nil:
			b := op.tex.Bounds()
			opts := &ebiten.DrawImageOptions{}
			opts.GeoM = quadGeoM(c, scale, b.Dx(), b.Dy())
			opts.Filter = ebiten.FilterNearest
			screen.DrawImage(op.tex, opts)
		default:
			x, y := float32(c.X*scale), float32(c.Y*scale)
			vector.DrawFilledRect(screen, x, y, float32(c.W*scale), float32(c.H*scale), c.Color.RGBA(), false)
			if c.Glyph > ' ' && c.Glyph < unicode.MaxASCII {
				gx := int(c.X*scale + (c.W*scale-glyphW)/2)
				gy := int(c.Y*scale + (c.H*scale-glyphH)/2)
				ebitenutil.DebugPrintAt(screen, string(c.Glyph), gx, gy)
			}
		}
	}

	for _, t := range w.text {
		ebitenutil.DebugPrintAt(screen, t.Text, t.X*w.opts.scale, t.Y*w.opts.scale)
	}
}
