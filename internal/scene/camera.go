package scene

import "github.com/vovakirdan/topdown/internal/core"

const (
	// DefaultSmoothing is the per-step lerp factor of the follow camera.
	DefaultSmoothing = 0.045
	// DefaultSnapDistance is the distance under which the camera stops easing.
	DefaultSnapDistance = 10.0
)

// Camera is a top-left origin orthographic view onto the world.
type Camera struct {
	Pos      core.Vec2 // top-left corner in world units
	Prev     core.Vec2 // position before the last step
	Viewport core.Vec2
	Target   Entity

	Smoothing    float64
	SnapDistance float64

	// Bounds limits the visible area when non-empty.
	Bounds core.Box
}

// NewCamera creates a camera with the default follow parameters.
func NewCamera(w, h float64) Camera {
	return Camera{
		Viewport:     core.V(w, h),
		Smoothing:    DefaultSmoothing,
		SnapDistance: DefaultSnapDistance,
	}
}

// Follow eases the camera so that center ends up in the middle of the viewport.
func (c *Camera) Follow(center core.Vec2) {
	desired := center.Sub(c.Viewport.Scale(0.5))
	desired = c.clamp(desired)
	if core.Dist(desired, c.Pos) < c.SnapDistance {
		c.Pos = desired
		return
	}
	c.Pos = core.LerpVec(c.Pos, desired, c.Smoothing)
}

// CenterOn moves the camera without easing.
func (c *Camera) CenterOn(center core.Vec2) {
	c.Pos = c.clamp(center.Sub(c.Viewport.Scale(0.5)))
	c.Prev = c.Pos
}

func (c *Camera) clamp(p core.Vec2) core.Vec2 {
	b := c.Bounds
	if b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y {
		return p
	}
	maxX := b.Max.X - c.Viewport.X
	maxY := b.Max.Y - c.Viewport.Y
	if maxX < b.Min.X {
		maxX = b.Min.X
	}
	if maxY < b.Min.Y {
		maxY = b.Min.Y
	}
	return core.V(core.ClampF(p.X, b.Min.X, maxX), core.ClampF(p.Y, b.Min.Y, maxY))
}

// At returns the camera position interpolated between the last two steps.
func (c Camera) At(alpha float64) core.Vec2 {
	return core.LerpVec(c.Prev, c.Pos, alpha)
}
