package scene

import (
	"github.com/vovakirdan/topdown/internal/core"
)

// Component is implemented by every component type. Components are plain
// values; the world stores copies.
type Component interface {
	attach(w *World, idx uint32)
}

// Transform places an entity in world units. Pos is the top-left corner.
type Transform struct {
	Pos   core.Vec2
	Rot   float64
	Scale float64
}

// Velocity is in world units per second.
type Velocity struct {
	V core.Vec2
}

// Sprite draws an entity. A zero Texture draws Glyph in Color.
type Sprite struct {
	Texture core.Handle
	Shader  core.Handle
	Glyph   rune
	Color   core.Color
	Layer   int
	Size    core.Vec2
	Hidden  bool
}

// Lifetime despawns an entity after Ticks fixed steps.
type Lifetime struct {
	Ticks int
}

// Shape selects a collider's geometry.
type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeCircle
)

// Collider is an axis-aligned box anchored at the transform, or a circle
// of Radius whose bounding box is anchored there. Two colliders A and B
// interact when A.Mask&B.Layers != 0 or B.Mask&A.Layers != 0.
type Collider struct {
	Size   core.Vec2
	Shape  Shape
	Radius float64
	Layers uint32
	Mask   uint32
}

// Overlaps reports whether c at pos and o at opos share any area.
func (c Collider) Overlaps(pos core.Vec2, o Collider, opos core.Vec2) bool {
	switch {
	case c.Shape == ShapeCircle && o.Shape == ShapeCircle:
		return core.CircleAt(pos, c.Radius).Overlaps(core.CircleAt(opos, o.Radius))
	case c.Shape == ShapeCircle:
		return core.CircleAt(pos, c.Radius).OverlapsBox(core.BoxAt(opos, o.Size))
	case o.Shape == ShapeCircle:
		return core.CircleAt(opos, o.Radius).OverlapsBox(core.BoxAt(pos, c.Size))
	}
	return core.BoxAt(pos, c.Size).Overlaps(core.BoxAt(opos, o.Size))
}

// Penetration returns the translation that moves c at pos out of o at opos.
func (c Collider) Penetration(pos core.Vec2, o Collider, opos core.Vec2) core.Vec2 {
	switch {
	case c.Shape == ShapeCircle && o.Shape == ShapeCircle:
		return core.CircleAt(pos, c.Radius).Penetration(core.CircleAt(opos, o.Radius))
	case c.Shape == ShapeCircle:
		return core.CircleAt(pos, c.Radius).PenetrationBox(core.BoxAt(opos, o.Size))
	case o.Shape == ShapeCircle:
		return core.CircleAt(opos, o.Radius).PenetrationBox(core.BoxAt(pos, c.Size)).Scale(-1)
	}
	return core.BoxAt(pos, c.Size).Penetration(core.BoxAt(opos, o.Size))
}

// Collides reports whether c's mask selects any of o's layers.
func (c Collider) Collides(o Collider) bool {
	return c.Mask&o.Layers != 0
}

// Controller moves an entity from the move actions.
type Controller struct {
	Speed float64
}

// Pickup is collected on contact with a controller.
type Pickup struct {
	Value int
}

// Solid blocks moving colliders.
type Solid struct{}

// Sound plays a clip once when the entity joins the world.
type Sound struct {
	Clip core.Handle
}

// Tag is a free-form label, used to find entities by role.
type Tag string

// CameraTarget marks the entity the camera follows.
type CameraTarget struct{}

func (c Transform) attach(w *World, i uint32) {
	if c.Scale == 0 {
		c.Scale = 1
	}
	w.transforms.set(i, c)
	w.prev.set(i, c)
}
func (c Velocity) attach(w *World, i uint32)   { w.velocities.set(i, c) }
func (c Sprite) attach(w *World, i uint32)     { w.sprites.set(i, c) }
func (c Lifetime) attach(w *World, i uint32)   { w.lifetimes.set(i, c) }
func (c Collider) attach(w *World, i uint32)   { w.colliders.set(i, c) }
func (c Controller) attach(w *World, i uint32) { w.controllers.set(i, c) }
func (c Pickup) attach(w *World, i uint32)     { w.pickups.set(i, c) }
func (c Solid) attach(w *World, i uint32)      { w.solids.set(i, c) }
func (c Tag) attach(w *World, i uint32)        { w.tags.set(i, c) }
func (c Sound) attach(w *World, i uint32) {
	if !c.Clip.IsZero() {
		w.sounds = append(w.sounds, c.Clip)
	}
}
func (c CameraTarget) attach(w *World, i uint32) {
	w.camera.Target = makeEntity(i, w.gens[i])
}
