package demo

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/topdown/internal/core"
)

//go:embed levels/arena.yaml
var defaultLevel []byte

// Level is a parsed tile map. One tile is one world unit.
//
// Map characters:
//
//	'#' = wall
//	'P' = player start
//	'.' or ' ' = floor
type Level struct {
	ID     string
	Name   string
	Width  int
	Height int
	Start  core.Vec2  // Player start tile
	Walls  []core.Box // Horizontal wall runs, merged
	Floor  []core.Vec2
	solid  [][]bool
}

// levelFile is the YAML layout of a level.
type levelFile struct {
	ID   string   `yaml:"id"`
	Name string   `yaml:"name"`
	Map  []string `yaml:"map"`
}

// LoadLevel parses a YAML level.
func LoadLevel(data []byte) (*Level, error) {
	var f levelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("demo: parse level: %w", err)
	}
	if f.ID == "" {
		f.ID = "custom"
	}
	if f.Name == "" {
		f.Name = f.ID
	}
	return ParseLevel(f.ID, f.Name, f.Map)
}

// DefaultLevel returns the built-in arena.
func DefaultLevel() *Level {
	lvl, err := LoadLevel(defaultLevel)
	if err != nil {
		panic(err)
	}
	return lvl
}

// ParseLevel builds a level from an ASCII map. Short lines are padded
// with floor.
func ParseLevel(id, name string, lines []string) (*Level, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("demo: level %q is empty", id)
	}

	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}

	lvl := &Level{
		ID:     id,
		Name:   name,
		Width:  width,
		Height: len(lines),
		solid:  make([][]bool, len(lines)),
	}

	hasStart := false
	for y, line := range lines {
		row := make([]bool, width)
		runStart := -1
		closeRun := func(end int) {
			if runStart < 0 {
				return
			}
			lvl.Walls = append(lvl.Walls, core.Box{
				Min: core.V(float64(runStart), float64(y)),
				Max: core.V(float64(end), float64(y+1)),
			})
			runStart = -1
		}

		cells := []rune(line)
		for x := 0; x < width; x++ {
			ch := '.'
			if x < len(cells) {
				ch = cells[x]
			}
			switch ch {
			case '#':
				row[x] = true
				if runStart < 0 {
					runStart = x
				}
				continue
			case 'P':
				if hasStart {
					return nil, fmt.Errorf("demo: level %q has more than one start", id)
				}
				hasStart = true
				lvl.Start = core.V(float64(x), float64(y))
			case '.', ' ':
				lvl.Floor = append(lvl.Floor, core.V(float64(x), float64(y)))
			default:
				return nil, fmt.Errorf("demo: level %q: unknown tile %q at %d,%d", id, ch, x, y)
			}
			closeRun(x)
		}
		closeRun(width)
		lvl.solid[y] = row
	}

	if !hasStart {
		return nil, fmt.Errorf("demo: level %q has no player start", id)
	}
	if len(lvl.Floor) == 0 {
		return nil, fmt.Errorf("demo: level %q has no floor", id)
	}
	return lvl, nil
}

// Bounds returns the level area in world units.
func (l *Level) Bounds() core.Box {
	return core.Box{Max: core.V(float64(l.Width), float64(l.Height))}
}

// Solid reports whether the tile at x, y is a wall. Outside the map is solid.
func (l *Level) Solid(x, y int) bool {
	if y < 0 || y >= len(l.solid) || x < 0 || x >= len(l.solid[y]) {
		return true
	}
	return l.solid[y][x]
}
