package scene

import "github.com/vovakirdan/topdown/internal/core"

// Renderable is a copy of everything the renderer needs for one entity.
type Renderable struct {
	Entity  Entity
	Order   uint64
	Pos     core.Vec2
	PrevPos core.Vec2
	Rot     float64
	PrevRot float64
	Scale   float64
	Sprite  Sprite
}

// View is a read-only window onto a World. It hands out values only.
type View struct {
	w *World
}

// View returns a read-only view of the world.
func (w *World) View() View {
	return View{w: w}
}

// EachRenderable calls fn for every visible entity with a sprite and a
// transform, in spawn order.
func (v View) EachRenderable(fn func(Renderable)) {
	w := v.w
	if w == nil {
		return
	}
	for _, idx := range w.order {
		sp, ok := w.sprites.get(idx)
		if !ok || sp.Hidden {
			continue
		}
		t, ok := w.transforms.get(idx)
		if !ok {
			continue
		}
		prev, ok := w.prev.get(idx)
		if !ok {
			prev = t
		}
		fn(Renderable{
			Entity:  makeEntity(idx, w.gens[idx]),
			Order:   w.seqs[idx],
			Pos:     t.Pos,
			PrevPos: prev.Pos,
			Rot:     t.Rot,
			PrevRot: prev.Rot,
			Scale:   t.Scale,
			Sprite:  sp,
		})
	}
}

// Camera returns a copy of the camera.
func (v View) Camera() Camera {
	if v.w == nil {
		return Camera{}
	}
	return v.w.camera
}

// HUD returns a copy of the HUD lines.
func (v View) HUD() []HUDText {
	if v.w == nil {
		return nil
	}
	return append([]HUDText(nil), v.w.hud...)
}

// Len returns the number of live entities.
func (v View) Len() int {
	if v.w == nil {
		return 0
	}
	return v.w.Len()
}

// Alive reports whether e is part of the world.
func (v View) Alive(e Entity) bool {
	return v.w != nil && v.w.Alive(e)
}
