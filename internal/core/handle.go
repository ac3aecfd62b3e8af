package core

import "fmt"

// Handle is an opaque reference to a resource owned by the resource manager.
// The low 32 bits hold a slot index, the high 32 bits the slot generation.
// The zero Handle is never issued and means "no resource".
type Handle uint64

// NoHandle is the zero handle.
const NoHandle Handle = 0

// MakeHandle packs a slot index and generation. Generations start at 1.
func MakeHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index.
func (h Handle) Index() uint32 {
	return uint32(h)
}

// Generation returns the slot generation.
func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h == NoHandle
}

func (h Handle) String() string {
	if h.IsZero() {
		return "handle(none)"
	}
	return fmt.Sprintf("handle(%d@%d)", h.Index(), h.Generation())
}
