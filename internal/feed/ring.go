package feed

// Ring is a fixed-capacity FIFO queue that evicts its oldest element when a
// push would overflow. It bounds per-subscriber memory under sustained event
// volume.
type Ring[T any] struct {
	buf  []T
	head int
	n    int
}

// NewRing creates a ring holding at most capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element if the ring is full. It reports
// whether an eviction happened.
func (r *Ring[T]) Push(v T) bool {
	if r.n == len(r.buf) {
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
		return true
	}
	r.buf[(r.head+r.n)%len(r.buf)] = v
	r.n++
	return false
}

// Pop removes and returns the oldest element.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.n--
	return v, true
}

// Len returns the number of queued elements.
func (r *Ring[T]) Len() int { return r.n }
