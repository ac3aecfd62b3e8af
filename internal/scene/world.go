package scene

import (
	"github.com/vovakirdan/topdown/internal/core"
)

type pendingSpawn struct {
	e        Entity
	comps    []Component
	inUpdate bool
}

// Contact is a pair of overlapping colliders found during the last step.
// A was spawned before B.
type Contact struct {
	A, B Entity
}

// HUDText is a line of screen-space text drawn above the world.
type HUDText struct {
	X, Y  int
	Text  string
	Color core.Color
}

// World stores entities and their components.
//
// Spawn and Despawn are deferred: the id is reserved immediately but the
// entity joins (or leaves) the world only when Flush runs, which the
// Scheduler does at the end of every update. Iteration order is spawn order.
type World struct {
	gens  []uint32
	alive []bool
	seqs  []uint64
	free  []uint32
	order []uint32
	seq   uint64
	step  uint64

	spawns   []pendingSpawn
	despawns []Entity
	updating bool

	transforms  store[Transform]
	prev        store[Transform]
	velocities  store[Velocity]
	sprites     store[Sprite]
	lifetimes   store[Lifetime]
	colliders   store[Collider]
	controllers store[Controller]
	pickups     store[Pickup]
	solids      store[Solid]
	tags        store[Tag]

	sounds   []core.Handle
	contacts []Contact
	camera   Camera
	hud      []HUDText
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{camera: NewCamera(0, 0)}
}

// Spawn reserves an id for a new entity. The entity becomes visible to
// queries and to the renderer after the next Flush.
//
// A Lifetime spawned from inside an update counts that update as its first tick.
func (w *World) Spawn(comps ...Component) Entity {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.gens))
		w.gens = append(w.gens, 1)
		w.alive = append(w.alive, false)
		w.seqs = append(w.seqs, 0)
	}
	e := makeEntity(idx, w.gens[idx])
	w.spawns = append(w.spawns, pendingSpawn{e: e, comps: comps, inUpdate: w.updating})
	return e
}

// Despawn schedules removal. Unknown or already removed entities are ignored.
func (w *World) Despawn(e Entity) {
	w.despawns = append(w.despawns, e)
}

// Flush applies pending spawns, then pending despawns.
func (w *World) Flush() {
	spawns := w.spawns
	w.spawns = nil
	for _, p := range spawns {
		idx := p.e.index()
		w.seq++
		w.alive[idx] = true
		w.seqs[idx] = w.seq
		w.order = append(w.order, idx)
		for _, c := range p.comps {
			if c != nil {
				c.attach(w, idx)
			}
		}
		if lt := w.lifetimes.ptr(idx); lt != nil && p.inUpdate {
			lt.Ticks--
			if lt.Ticks <= 0 {
				w.despawns = append(w.despawns, p.e)
			}
		}
	}

	if len(w.despawns) == 0 {
		return
	}
	despawns := w.despawns
	w.despawns = nil
	removed := 0
	for _, e := range despawns {
		if !w.Alive(e) {
			continue
		}
		w.kill(e.index())
		removed++
	}
	if removed == 0 {
		return
	}
	kept := w.order[:0]
	for _, idx := range w.order {
		if w.alive[idx] {
			kept = append(kept, idx)
		}
	}
	w.order = kept
}

func (w *World) kill(idx uint32) {
	w.transforms.remove(idx)
	w.prev.remove(idx)
	w.velocities.remove(idx)
	w.sprites.remove(idx)
	w.lifetimes.remove(idx)
	w.colliders.remove(idx)
	w.controllers.remove(idx)
	w.pickups.remove(idx)
	w.solids.remove(idx)
	w.tags.remove(idx)

	if w.camera.Target == makeEntity(idx, w.gens[idx]) {
		w.camera.Target = NoEntity
	}
	w.alive[idx] = false
	w.seqs[idx] = 0
	w.gens[idx]++
	if w.gens[idx] == 0 {
		w.gens[idx] = 1
	}
	w.free = append(w.free, idx)
}

// Alive reports whether e is currently part of the world.
func (w *World) Alive(e Entity) bool {
	idx := e.index()
	if e == NoEntity || int(idx) >= len(w.gens) {
		return false
	}
	return w.alive[idx] && w.gens[idx] == e.gen()
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.order)
}

// Pending returns the number of spawns waiting for Flush.
func (w *World) Pending() int {
	return len(w.spawns)
}

// Step returns the number of completed scheduler updates.
func (w *World) Step() uint64 {
	return w.step
}

// Each calls fn for every live entity in spawn order. Spawns and despawns
// made by fn take effect at the next Flush.
func (w *World) Each(fn func(e Entity)) {
	for _, idx := range w.order {
		fn(makeEntity(idx, w.gens[idx]))
	}
}

// Order returns the spawn sequence number of e, or 0 if e is not alive.
func (w *World) Order(e Entity) uint64 {
	if !w.Alive(e) {
		return 0
	}
	return w.seqs[e.index()]
}

// Set attaches or replaces components on a live entity immediately.
func (w *World) Set(e Entity, comps ...Component) bool {
	if !w.Alive(e) {
		return false
	}
	for _, c := range comps {
		if c != nil {
			c.attach(w, e.index())
		}
	}
	return true
}

// Find returns the first live entity with the tag.
func (w *World) Find(tag Tag) (Entity, bool) {
	for _, idx := range w.order {
		if t, ok := w.tags.get(idx); ok && t == tag {
			return makeEntity(idx, w.gens[idx]), true
		}
	}
	return NoEntity, false
}

func (w *World) Transform(e Entity) (Transform, bool) {
	if !w.Alive(e) {
		return Transform{}, false
	}
	return w.transforms.get(e.index())
}

func (w *World) Velocity(e Entity) (Velocity, bool) {
	if !w.Alive(e) {
		return Velocity{}, false
	}
	return w.velocities.get(e.index())
}

func (w *World) Sprite(e Entity) (Sprite, bool) {
	if !w.Alive(e) {
		return Sprite{}, false
	}
	return w.sprites.get(e.index())
}

func (w *World) Lifetime(e Entity) (Lifetime, bool) {
	if !w.Alive(e) {
		return Lifetime{}, false
	}
	return w.lifetimes.get(e.index())
}

func (w *World) Collider(e Entity) (Collider, bool) {
	if !w.Alive(e) {
		return Collider{}, false
	}
	return w.colliders.get(e.index())
}

func (w *World) Pickup(e Entity) (Pickup, bool) {
	if !w.Alive(e) {
		return Pickup{}, false
	}
	return w.pickups.get(e.index())
}

func (w *World) Controller(e Entity) (Controller, bool) {
	if !w.Alive(e) {
		return Controller{}, false
	}
	return w.controllers.get(e.index())
}

func (w *World) Tag(e Entity) (Tag, bool) {
	if !w.Alive(e) {
		return "", false
	}
	return w.tags.get(e.index())
}

func (w *World) IsSolid(e Entity) bool {
	if !w.Alive(e) {
		return false
	}
	_, ok := w.solids.get(e.index())
	return ok
}

// PlaySound queues a clip for the engine to play after the update.
func (w *World) PlaySound(clip core.Handle) {
	if !clip.IsZero() {
		w.sounds = append(w.sounds, clip)
	}
}

// DrainSounds returns and clears the queued clips.
func (w *World) DrainSounds() []core.Handle {
	s := w.sounds
	w.sounds = nil
	return s
}

// Contacts returns the contacts recorded by the last collision pass.
func (w *World) Contacts() []Contact {
	return w.contacts
}

// Camera returns the camera for systems to adjust.
func (w *World) Camera() *Camera {
	return &w.camera
}

// SetHUD replaces the HUD text.
func (w *World) SetHUD(lines ...HUDText) {
	w.hud = append(w.hud[:0], lines...)
}

// savePrev records the current transforms as the interpolation origin.
func (w *World) savePrev() {
	for _, idx := range w.order {
		if t, ok := w.transforms.get(idx); ok {
			w.prev.set(idx, t)
		}
	}
	w.camera.Prev = w.camera.Pos
}
