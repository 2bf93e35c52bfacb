// Package workqueue is the bounded MPMC ring buffer distributing test
// cases to fuzzer workers, grounded on original_source/src/workqueue.c's
// sequence-number cell protocol (Dmitry Vyukov's MPMC queue). Producers
// and consumers never block: a push onto a full queue or a pop from an
// empty one returns immediately.
package workqueue

import "sync/atomic"

// cell is one ring-buffer slot: a sequence counter that encodes whether
// the slot is empty, full-and-unread, or full-and-claimed, plus the
// payload itself.
type cell[T any] struct {
	sequence atomic.Uint64
	data     atomic.Pointer[T]
}

// Queue is a bounded, wait-free MPMC ring buffer sized to the next
// power of two of the requested capacity. T is the payload type; the
// fuzzer orchestrator instantiates Queue[*testcase.TestCase].
type Queue[T any] struct {
	mask       uint64
	buffer     []cell[T]
	enqueuePos atomic.Uint64
	dequeuePos atomic.Uint64
}

// New returns a Queue with room for at least capacity entries, rounded
// up to the next power of two (workqueue_init's next_power_of_two).
func New[T any](capacity int) *Queue[T] {
	c := nextPowerOfTwo(capacity)
	q := &Queue[T]{mask: uint64(c - 1), buffer: make([]cell[T], c)}
	for i := range q.buffer {
		q.buffer[i].sequence.Store(uint64(i))
	}
	return q
}

func nextPowerOfTwo(x int) int {
	if x < 2 {
		return 2
	}
	n := 1
	for n < x {
		n <<= 1
	}
	return n
}

// Push enqueues v. It returns false without blocking if the queue is
// full, matching workqueue_push's dif<0 early return.
func (q *Queue[T]) Push(v T) bool {
	pos := q.enqueuePos.Load()
	for {
		c := &q.buffer[pos&q.mask]
		seq := c.sequence.Load()
		dif := int64(seq) - int64(pos)

		switch {
		case dif == 0:
			if q.enqueuePos.CompareAndSwap(pos, pos+1) {
				c.data.Store(&v)
				c.sequence.Store(pos + 1)
				return true
			}
		case dif < 0:
			return false
		default:
			pos = q.enqueuePos.Load()
		}
	}
}

// Pop dequeues the oldest available entry, or returns (zero, false)
// without blocking if the queue is currently empty, matching
// workqueue_pop.
func (q *Queue[T]) Pop() (T, bool) {
	pos := q.dequeuePos.Load()
	for {
		c := &q.buffer[pos&q.mask]
		seq := c.sequence.Load()
		dif := int64(seq) - int64(pos+1)

		switch {
		case dif == 0:
			if q.dequeuePos.CompareAndSwap(pos, pos+1) {
				vp := c.data.Load()
				c.sequence.Store(pos + q.mask + 1)
				var zero T
				if vp == nil {
					return zero, true
				}
				return *vp, true
			}
		case dif < 0:
			var zero T
			return zero, false
		default:
			pos = q.dequeuePos.Load()
		}
	}
}

// Cap returns the ring's actual (power-of-two) capacity.
func (q *Queue[T]) Cap() int { return len(q.buffer) }
