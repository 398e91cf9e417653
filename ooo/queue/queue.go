// Package queue implements the bounded MPMC ring buffer the planner sits
// between: the partition queue it consumes from (C6) and the open-column
// queue it publishes onto (C5). Capacities are fixed at construction and
// must be a power of two.
//
// Grounded on grafana-tempo's friggdb/pool/pool.go worker-pool queue, which
// used a buffered channel plus a non-blocking select/default to fall back
// when saturated — the same "queue full -> inline fallback" shape spec §4.5
// needs. That shape is generalized here from a channel into an explicit
// sequence-cursor ring (the classic mechanical-sympathy MPMC pattern spec §9
// calls out by name) because spec §8 item 7 and §9 require a third,
// *transient*, state ("-2": another producer is mid-claim, spin and retry)
// that a plain channel send cannot distinguish from "full".
package queue

import "go.uber.org/atomic"

const (
	// Full means the queue has no free slot; the caller should take the
	// inline fallback path (spec §4.5).
	Full int64 = -1
	// Contended means another producer is mid-claim on the slot this
	// producer was about to take; the caller should retry immediately
	// (spec §4.5, §9).
	Contended int64 = -2
)

type cell[T any] struct {
	sequence atomic.Int64
	value    T
}

// Queue is a fixed-capacity, power-of-two MPMC ring buffer with an explicit
// three-state producer cursor: Next returns a slot index >= 0 on success,
// Full when saturated, or Contended when a competing producer briefly won
// the race for the same slot.
type Queue[T any] struct {
	mask  int64
	cells []cell[T]

	head atomic.Int64 // next sequence to be claimed by a producer
	tail atomic.Int64 // next sequence to be claimed by a consumer
}

// New creates a queue of the given capacity, rounded up to the next power
// of two (a capacity of 0 yields a queue with no slots at all, which always
// reports Full — exactly the configuration spec §8 item 7 exercises for the
// inline fallback).
func New[T any](capacity int) *Queue[T] {
	cap64 := nextPowerOfTwo(capacity)
	mask := cap64 - 1
	if cap64 == 0 {
		mask = 0
	}
	q := &Queue[T]{
		mask:  mask,
		cells: make([]cell[T], cap64),
	}
	for i := range q.cells {
		q.cells[i].sequence.Store(int64(i))
	}
	return q
}

func nextPowerOfTwo(n int) int64 {
	if n <= 0 {
		return 0
	}
	p := int64(1)
	for p < int64(n) {
		p <<= 1
	}
	return p
}

// Next attempts to claim the next slot for a producer. On success it
// returns the claimed sequence (>= 0) and ok=true; the caller must then
// call Set with the same sequence to write the value. On
// failure it returns Full or Contended and ok=false.
//
// The head/tail distance check below exists alongside the per-cell
// sequence check because the cell check alone degenerates at capacity 1:
// the sequence a producer stores after writing (pos+1) is indistinguishable
// from the sequence a consumer would store on reset (pos+capacity) when
// capacity is exactly 1. The distance check catches that case before the
// cell is ever consulted; for capacity >= 2 it is redundant with, and
// agrees with, the cell check.
func (q *Queue[T]) Next() (seq int64, state int64, ok bool) {
	if len(q.cells) == 0 {
		return 0, Full, false
	}

	for {
		pos := q.head.Load()
		if pos-q.tail.Load() >= int64(len(q.cells)) {
			return 0, Full, false
		}

		c := &q.cells[pos&q.mask]
		seqAtSlot := c.sequence.Load()
		diff := seqAtSlot - pos

		switch {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				return pos, 0, true
			}
			// lost the race for head itself: transient, caller may retry
			return 0, Contended, false
		case diff < 0:
			return 0, Full, false
		default:
			// another producer has claimed this slot but not yet
			// published; transient contention, caller should retry
			return 0, Contended, false
		}
	}
}

// Set writes the value into the slot claimed at seq and makes it visible
// to consumers.
func (q *Queue[T]) Set(seq int64, v T) {
	c := &q.cells[seq&q.mask]
	c.value = v
	c.sequence.Store(seq + 1)
}

// Pop claims and returns the next consumer item, or ok=false if the queue
// is currently empty.
func (q *Queue[T]) Pop() (v T, ok bool) {
	if len(q.cells) == 0 {
		return v, false
	}

	for {
		pos := q.tail.Load()
		c := &q.cells[pos&q.mask]
		seqAtSlot := c.sequence.Load()
		diff := seqAtSlot - (pos + 1)

		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				v = c.value
				c.sequence.Store(pos + int64(len(q.cells)))
				return v, true
			}
		case diff < 0:
			var zero T
			return zero, false
		default:
			// contended consumer race, retry
		}
	}
}

// Capacity returns the queue's power-of-two slot count.
func (q *Queue[T]) Capacity() int { return len(q.cells) }
