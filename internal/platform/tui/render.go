package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/topdown/internal/core"
	"github.com/vovakirdan/topdown/internal/platform"
)

// blockChar fills sprites that have no glyph.
const blockChar = '█'

// palette maps core.Color to lipgloss styles of one renderer.
type palette []lipgloss.Style

func newPalette(r *lipgloss.Renderer) palette {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	p := make(palette, int(core.ColorBlack)+1)
	for c := range p {
		code := core.Color(c).ANSI()
		if code == "" {
			p[c] = r.NewStyle()
			continue
		}
		p[c] = r.NewStyle().Foreground(lipgloss.Color(code))
	}
	return p
}

func (p palette) style(c core.Color) lipgloss.Style {
	if int(c) >= len(p) {
		return p[core.ColorDefault]
	}
	return p[c]
}

var defaultPalette = newPalette(nil)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	return defaultPalette.render(s)
}

func (p palette) render(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(p.style(startColor).Render(run.String()))
		}
	}
	return sb.String()
}

// Rasterize draws a frame into a cell buffer. Each draw command covers the
// cells under its rectangle in order, so later commands win; HUD text is
// drawn last. A resolvable texture tints its sprite.
func Rasterize(dst *core.Screen, f *platform.Frame) {
	dst.Clear()
	for _, c := range f.Cmds {
		color := c.Color
		if !c.Fallback {
			if obj, ok := f.Object(c.Texture); ok {
				if tex, ok := obj.(*Texture); ok && tex.Tint != core.ColorDefault {
					color = tex.Tint
				}
			}
		}
		glyph := c.Glyph
		if glyph == 0 {
			glyph = blockChar
		}
		x, y := int(math.Round(c.X)), int(math.Round(c.Y))
		w := max(1, int(math.Round(c.W)))
		h := max(1, int(math.Round(c.H)))
		dst.DrawRect(core.NewRect(x, y, w, h), glyph, color)
	}
	for _, t := range f.Text {
		dst.DrawText(t.X, t.Y, t.Text, t.Color)
	}
}
