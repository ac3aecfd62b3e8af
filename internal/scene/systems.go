package scene

import (
	"github.com/vovakirdan/topdown/internal/core"
)

// MovementSystem turns the move actions into velocity for every Controller.
func MovementSystem(w *World, fc FrameContext) {
	axis := fc.Input.Axis().Normalize()
	for _, idx := range w.order {
		c, ok := w.controllers.get(idx)
		if !ok {
			continue
		}
		w.velocities.set(idx, Velocity{V: axis.Scale(c.Speed)})
	}
}

// PhysicsSystem integrates velocity into position.
func PhysicsSystem(w *World, fc FrameContext) {
	dt := fc.Seconds()
	for _, idx := range w.order {
		v, ok := w.velocities.get(idx)
		if !ok {
			continue
		}
		t := w.transforms.ptr(idx)
		if t == nil {
			continue
		}
		t.Pos = t.Pos.Add(v.V.Scale(dt))
	}
}

func interacts(a, b Collider) bool {
	return a.Collides(b) || b.Collides(a)
}

// CollisionSystem pushes moving colliders out of solids and records every
// overlapping pair whose layers match. Pairs are ordered by spawn order.
func CollisionSystem(w *World, _ FrameContext) {
	w.contacts = w.contacts[:0]

	type body struct {
		idx   uint32
		col   Collider
		solid bool
		moves bool
	}
	bodies := make([]body, 0, len(w.order))
	for _, idx := range w.order {
		col, ok := w.colliders.get(idx)
		if !ok || w.transforms.ptr(idx) == nil {
			continue
		}
		_, solid := w.solids.get(idx)
		_, moves := w.velocities.get(idx)
		bodies = append(bodies, body{idx: idx, col: col, solid: solid, moves: moves && !solid})
	}

	pos := func(b body) core.Vec2 {
		return w.transforms.vals[b.idx].Pos
	}

	for _, m := range bodies {
		if !m.moves {
			continue
		}
		t := w.transforms.ptr(m.idx)
		for _, s := range bodies {
			if !s.solid || !interacts(m.col, s.col) {
				continue
			}
			if pen := m.col.Penetration(pos(m), s.col, pos(s)); pen != (core.Vec2{}) {
				t.Pos = t.Pos.Add(pen)
			}
		}
	}

	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if !interacts(a.col, b.col) || !a.col.Overlaps(pos(a), b.col, pos(b)) {
				continue
			}
			w.contacts = append(w.contacts, Contact{
				A: makeEntity(a.idx, w.gens[a.idx]),
				B: makeEntity(b.idx, w.gens[b.idx]),
			})
		}
	}
}

// LifetimeSystem counts lifetimes down and despawns expired entities.
func LifetimeSystem(w *World, _ FrameContext) {
	for _, idx := range w.order {
		lt := w.lifetimes.ptr(idx)
		if lt == nil {
			continue
		}
		lt.Ticks--
		if lt.Ticks <= 0 {
			w.Despawn(makeEntity(idx, w.gens[idx]))
		}
	}
}

// CameraSystem eases the camera towards the center of its target.
func CameraSystem(w *World, _ FrameContext) {
	target := w.camera.Target
	if !w.Alive(target) {
		return
	}
	t, _ := w.transforms.get(target.index())
	size := core.Vec2{}
	if sp, ok := w.sprites.get(target.index()); ok {
		size = sp.Size
	} else if c, ok := w.colliders.get(target.index()); ok {
		size = c.Size
	}
	w.camera.Follow(t.Pos.Add(size.Scale(0.5)))
}
