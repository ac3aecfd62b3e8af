package scene

// store is a sparse component table indexed by entity slot.
type store[T any] struct {
	vals []T
	has  []bool
}

func (s *store[T]) grow(i uint32) {
	for int(i) >= len(s.vals) {
		var zero T
		s.vals = append(s.vals, zero)
		s.has = append(s.has, false)
	}
}

func (s *store[T]) set(i uint32, v T) {
	s.grow(i)
	s.vals[i] = v
	s.has[i] = true
}

func (s *store[T]) get(i uint32) (T, bool) {
	if int(i) >= len(s.has) || !s.has[i] {
		var zero T
		return zero, false
	}
	return s.vals[i], true
}

func (s *store[T]) ptr(i uint32) *T {
	if int(i) >= len(s.has) || !s.has[i] {
		return nil
	}
	return &s.vals[i]
}

func (s *store[T]) remove(i uint32) {
	if int(i) < len(s.has) {
		var zero T
		s.vals[i] = zero
		s.has[i] = false
	}
}
