package core

import "image/color"

// Color is a palette index shared by all backends.
// The terminal backend maps it to ANSI 256-color codes, the GPU backend to RGBA.
type Color uint8

// Predefined palette entries.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorBlack
)

var palette = [...]struct {
	ansi string
	rgba color.RGBA
}{
	ColorDefault:       {"", color.RGBA{0xcc, 0xcc, 0xcc, 0xff}},
	ColorRed:           {"1", color.RGBA{0xcd, 0x31, 0x31, 0xff}},
	ColorGreen:         {"2", color.RGBA{0x0d, 0xbc, 0x79, 0xff}},
	ColorYellow:        {"3", color.RGBA{0xe5, 0xe5, 0x10, 0xff}},
	ColorBlue:          {"4", color.RGBA{0x24, 0x72, 0xc8, 0xff}},
	ColorMagenta:       {"5", color.RGBA{0xbc, 0x3f, 0xbc, 0xff}},
	ColorCyan:          {"6", color.RGBA{0x11, 0xa8, 0xcd, 0xff}},
	ColorWhite:         {"7", color.RGBA{0xe5, 0xe5, 0xe5, 0xff}},
	ColorBrightRed:     {"9", color.RGBA{0xf1, 0x4c, 0x4c, 0xff}},
	ColorBrightGreen:   {"10", color.RGBA{0x23, 0xd1, 0x8b, 0xff}},
	ColorBrightYellow:  {"11", color.RGBA{0xf5, 0xf5, 0x43, 0xff}},
	ColorBrightBlue:    {"12", color.RGBA{0x3b, 0x8e, 0xea, 0xff}},
	ColorBrightMagenta: {"13", color.RGBA{0xd6, 0x70, 0xd6, 0xff}},
	ColorBrightCyan:    {"14", color.RGBA{0x29, 0xb8, 0xdb, 0xff}},
	ColorBrightWhite:   {"15", color.RGBA{0xff, 0xff, 0xff, 0xff}},
	ColorOrange:        {"208", color.RGBA{0xff, 0x87, 0x00, 0xff}},
	ColorGray:          {"245", color.RGBA{0x8a, 0x8a, 0x8a, 0xff}},
	ColorBlack:         {"0", color.RGBA{0x00, 0x00, 0x00, 0xff}},
}

// ANSI returns the ANSI 256-color code for c, or "" for the terminal default.
func (c Color) ANSI() string {
	if int(c) >= len(palette) {
		return ""
	}
	return palette[c].ansi
}

// RGBA returns the RGBA value used by pixel backends.
func (c Color) RGBA() color.RGBA {
	if int(c) >= len(palette) {
		return palette[ColorDefault].rgba
	}
	return palette[c].rgba
}

// NearestColor returns the palette entry closest to c.
func NearestColor(c color.Color) Color {
	r, g, b, _ := c.RGBA()
	best, bestDist := ColorDefault, -1
	for i := ColorRed; int(i) < len(palette); i++ {
		p := palette[i].rgba
		dr := int(r>>8) - int(p.R)
		dg := int(g>>8) - int(p.G)
		db := int(b>>8) - int(p.B)
		if d := dr*dr + dg*dg + db*db; bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
