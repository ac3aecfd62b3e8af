// Package scene is the entity store: ids, plain-data components, systems
// and the phased scheduler that is the only place the world changes.
package scene

import "fmt"

// Entity identifies a game object. The low 32 bits are a slot index, the
// high 32 bits the slot generation, so a despawned id never matches a
// later entity that reuses its slot.
type Entity uint64

// NoEntity is never issued.
const NoEntity Entity = 0

func makeEntity(index, gen uint32) Entity {
	return Entity(uint64(gen)<<32 | uint64(index))
}

func (e Entity) index() uint32 { return uint32(e) }
func (e Entity) gen() uint32   { return uint32(e >> 32) }

func (e Entity) String() string {
	if e == NoEntity {
		return "entity(none)"
	}
	return fmt.Sprintf("entity(%d@%d)", e.index(), e.gen())
}
