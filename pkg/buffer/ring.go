package buffer

import (
	"errors"
	"fmt"
)

// ErrFull is returned by Write when the buffer cannot accept all of the
// provided elements. The write is partial, never silently dropped: the
// returned count says how many elements were stored.
var ErrFull = errors.New("buffer full")

// Ring is a fixed-capacity FIFO of elements of type T.
//
// The head and tail are monotonically increasing counters; the position in
// the backing slice is their value modulo the capacity. head == tail means
// empty, tail - head == cap means full.
type Ring[T any] struct {
	buf        []T
	head, tail int64
}

// NewRing creates a Ring with the given fixed capacity.
// The capacity must be positive; it is never resized afterwards.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("buffer: invalid ring capacity %d", capacity))
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Write appends elements from p in FIFO order. If free capacity is smaller
// than len(p) it stores as many as fit and returns ErrFull alongside the
// count actually stored. It never overwrites unread data and never blocks.
func (r *Ring[T]) Write(p []T) (int, error) {
	free := len(r.buf) - int(r.tail-r.head)
	n := len(p)
	if n > free {
		n = free
	}

	tail := int(r.tail % int64(len(r.buf)))
	if tail+n <= len(r.buf) {
		copy(r.buf[tail:tail+n], p[:n])
	} else {
		wn := copy(r.buf[tail:], p[:n])
		copy(r.buf, p[wn:n])
	}
	r.tail += int64(n)

	if n < len(p) {
		return n, ErrFull
	}
	return n, nil
}

// Read removes up to len(p) elements in FIFO order and returns how many were
// copied into p. A short count means the buffer held fewer elements; the
// caller must treat a short window read as an aborted attempt rather than
// padding the missing tail.
func (r *Ring[T]) Read(p []T) int {
	avail := int(r.tail - r.head)
	n := len(p)
	if n > avail {
		n = avail
	}

	head := int(r.head % int64(len(r.buf)))
	if head+n <= len(r.buf) {
		copy(p, r.buf[head:head+n])
	} else {
		rn := copy(p, r.buf[head:])
		copy(p[rn:], r.buf[:n-rn])
	}
	r.head += int64(n)
	return n
}

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int {
	return int(r.tail - r.head)
}

// Free returns the remaining write capacity.
func (r *Ring[T]) Free() int {
	return len(r.buf) - int(r.tail-r.head)
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Reset discards all buffered elements. The backing slice is kept.
func (r *Ring[T]) Reset() {
	r.head = 0
	r.tail = 0
}
