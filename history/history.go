// Package history keeps a capacity-bounded rolling series of readings for
// presentation-layer snapshots.
//
// The store has exactly one writer, the pipeline's consumer task; Snapshot
// may be called concurrently by presentation code. The lock is held only for
// the duration of a single append or snapshot copy, never across I/O or
// rendering.
package history

import "sync"

// DefaultCapacity retains enough readings for the largest display window a
// consumer is expected to request.
const DefaultCapacity = 300

// Store is a mutex-guarded ring of the most recent readings.
type Store[T any] struct {
	mu   sync.RWMutex
	buf  []T
	head int // next write position
	size int
}

// New returns a Store bounded to capacity readings, or DefaultCapacity when
// capacity is not positive.
func New[T any](capacity int) *Store[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store[T]{buf: make([]T, capacity)}
}

// Append records a reading, discarding the oldest once the store is full.
func (s *Store[T]) Append(v T) {
	s.mu.Lock()
	s.buf[s.head] = v
	s.head = (s.head + 1) % len(s.buf)
	if s.size < len(s.buf) {
		s.size++
	}
	s.mu.Unlock()
}

// Snapshot returns up to lastN of the most recent readings in arrival order,
// most recent last. A non-positive lastN, or one beyond the retained count,
// returns everything retained. The result is a copy and safe to hold across
// further appends.
func (s *Store[T]) Snapshot(lastN int) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.size
	if lastN > 0 && lastN < n {
		n = lastN
	}

	out := make([]T, n)
	start := s.head - n
	if start < 0 {
		start += len(s.buf)
	}
	for i := range n {
		out[i] = s.buf[(start+i)%len(s.buf)]
	}
	return out
}

// Len returns the number of readings currently retained.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Cap returns the retention bound.
func (s *Store[T]) Cap() int {
	return len(s.buf)
}
