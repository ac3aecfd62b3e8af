// Package core provides fundamental types shared by every engine subsystem:
// geometry, colors, resource handles and the terminal cell buffer.
// It has no external dependencies so it can be imported from anywhere.
package core

import "math"

// Rect represents an integer axis-aligned rectangle in cell or pixel space.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Intersects returns true if this rectangle overlaps with another.
func (r Rect) Intersects(other Rect) bool {
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns v scaled to unit length, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Lerp interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpVec interpolates each component between a and b by t.
func LerpVec(a, b Vec2, t float64) Vec2 {
	return Vec2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// Dist returns the distance between two points.
func Dist(a, b Vec2) float64 {
	return b.Sub(a).Len()
}

// Box is a floating point axis-aligned bounding box used for collision.
// Min is the top-left corner; the origin of world space is top-left as well.
type Box struct {
	Min, Max Vec2
}

// BoxAt builds a box of the given size whose top-left corner is at pos.
func BoxAt(pos, size Vec2) Box {
	return Box{Min: pos, Max: pos.Add(size)}
}

// Overlaps reports whether two boxes share any area. Touching edges do not overlap.
func (b Box) Overlaps(o Box) bool {
	if b.Min.X >= o.Max.X || o.Min.X >= b.Max.X {
		return false
	}
	if b.Min.Y >= o.Max.Y || o.Min.Y >= b.Max.Y {
		return false
	}
	return true
}

// Penetration returns the minimum translation that moves b out of o.
// The zero vector is returned when the boxes do not overlap.
func (b Box) Penetration(o Box) Vec2 {
	if !b.Overlaps(o) {
		return Vec2{}
	}
	left := o.Min.X - b.Max.X  // push left (negative)
	right := o.Max.X - b.Min.X // push right (positive)
	up := o.Min.Y - b.Max.Y
	down := o.Max.Y - b.Min.Y

	dx := right
	if -left < right {
		dx = left
	}
	dy := down
	if -up < down {
		dy = up
	}
	if math.Abs(dx) < math.Abs(dy) {
		return Vec2{X: dx}
	}
	return Vec2{Y: dy}
}

// Closest returns the point of b nearest to p.
func (b Box) Closest(p Vec2) Vec2 {
	return Vec2{X: ClampF(p.X, b.Min.X, b.Max.X), Y: ClampF(p.Y, b.Min.Y, b.Max.Y)}
}

// Circle is a collision circle with center C and radius R.
type Circle struct {
	C Vec2
	R float64
}

// CircleAt builds a circle of radius r whose bounding box has its
// top-left corner at pos, matching BoxAt anchoring.
func CircleAt(pos Vec2, r float64) Circle {
	return Circle{C: pos.Add(V(r, r)), R: r}
}

// Bounds returns the circle's bounding box.
func (c Circle) Bounds() Box {
	return Box{Min: c.C.Sub(V(c.R, c.R)), Max: c.C.Add(V(c.R, c.R))}
}

// Overlaps reports whether two circles share any area.
func (c Circle) Overlaps(o Circle) bool {
	d := c.C.Sub(o.C)
	r := c.R + o.R
	return d.X*d.X+d.Y*d.Y < r*r
}

// OverlapsBox reports whether c and b share any area.
func (c Circle) OverlapsBox(b Box) bool {
	d := c.C.Sub(b.Closest(c.C))
	return d.X*d.X+d.Y*d.Y < c.R*c.R
}

// Penetration returns the minimum translation that moves c out of o.
func (c Circle) Penetration(o Circle) Vec2 {
	if !c.Overlaps(o) {
		return Vec2{}
	}
	d := c.C.Sub(o.C)
	l := d.Len()
	if l == 0 {
		return Vec2{Y: -(c.R + o.R)}
	}
	return d.Scale((c.R + o.R - l) / l)
}

// PenetrationBox returns the minimum translation that moves c out of b.
// A center inside the box falls back to the bounding box push.
func (c Circle) PenetrationBox(b Box) Vec2 {
	if !c.OverlapsBox(b) {
		return Vec2{}
	}
	p := b.Closest(c.C)
	if p == c.C {
		return c.Bounds().Penetration(b)
	}
	d := c.C.Sub(p)
	l := d.Len()
	return d.Scale((c.R - l) / l)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
