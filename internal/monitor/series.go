package monitor

// Series is a fixed-capacity, chronologically-ordered buffer. Appends past
// capacity evict the oldest point. Eviction advances a head index and the
// backing slice is compacted once half of it is dead.
type Series[T any] struct {
	points   []T
	head     int
	capacity int
}

func NewSeries[T any](capacity int) *Series[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Series[T]{
		points:   make([]T, 0, capacity+1),
		capacity: capacity,
	}
}

func (s *Series[T]) Append(p T) {
	s.points = append(s.points, p)
	if len(s.points)-s.head > s.capacity {
		s.head++
	}
	if s.head > 0 && s.head*2 >= len(s.points) {
		s.points = append([]T{}, s.points[s.head:]...)
		s.head = 0
	}
}

func (s *Series[T]) Len() int {
	return len(s.points) - s.head
}

func (s *Series[T]) Capacity() int {
	return s.capacity
}

func (s *Series[T]) At(i int) T {
	return s.points[s.head+i]
}

func (s *Series[T]) Last() (T, bool) {
	if s.Len() == 0 {
		var zero T
		return zero, false
	}
	return s.points[len(s.points)-1], true
}

func (s *Series[T]) Points() []T {
	out := make([]T, s.Len())
	copy(out, s.points[s.head:])
	return out
}
