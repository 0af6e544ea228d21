// Package transport carries analysis results from the real-time producer to
// an asynchronous consumer over a bounded FIFO channel.
//
// The producer side never blocks: when the channel is full, TrySend evicts
// the oldest queued element and counts it as dropped. Blocking the audio
// callback, even briefly, risks an audible underrun in the capture device,
// so staleness is traded for latency. The consumer side may block freely.
package transport

import (
	"context"
	"errors"
	"sync/atomic"
)

// DefaultCapacity bounds the queue when no explicit capacity is given.
const DefaultCapacity = 100

// ErrClosed is returned by Recv once the channel is closed and drained.
var ErrClosed = errors.New("transport: closed")

// Chan is a single-producer/single-consumer bounded FIFO.
//
// TrySend must only be called from one goroutine at a time, and Close must
// not race a TrySend; the pipeline stops the producer before closing.
type Chan[T any] struct {
	ch      chan T
	dropped atomic.Uint64
	closed  atomic.Bool
}

// New returns a Chan with the given capacity, or DefaultCapacity when
// capacity is not positive.
func New[T any](capacity int) *Chan[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Chan[T]{ch: make(chan T, capacity)}
}

// TrySend enqueues v without blocking. When the queue is full the oldest
// element is evicted first; the eviction is counted in Dropped. TrySend
// reports false only when the channel is closed or the queue cannot accept
// the value even after eviction.
func (c *Chan[T]) TrySend(v T) bool {
	if c.closed.Load() {
		return false
	}

	select {
	case c.ch <- v:
		return true
	default:
	}

	// Full: make room by discarding the oldest element. The consumer may
	// win this race and take it instead, which is fine; either way one
	// slot opens up.
	select {
	case <-c.ch:
		c.dropped.Add(1)
	default:
	}

	select {
	case c.ch <- v:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Recv returns the next element in arrival order, blocking until one is
// available, the context is cancelled, or the channel is closed and empty.
func (c *Chan[T]) Recv(ctx context.Context) (T, error) {
	var zero T

	select {
	case v, ok := <-c.ch:
		if !ok {
			return zero, ErrClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close marks the channel closed. Pending elements remain receivable; Recv
// returns ErrClosed once drained. Close is idempotent only if the producer
// has stopped, which the pipeline guarantees.
func (c *Chan[T]) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.ch)
	}
}

// Dropped returns the number of elements discarded by backpressure.
func (c *Chan[T]) Dropped() uint64 {
	return c.dropped.Load()
}

// Len returns the number of queued elements.
func (c *Chan[T]) Len() int { return len(c.ch) }

// Cap returns the queue capacity.
func (c *Chan[T]) Cap() int { return cap(c.ch) }
