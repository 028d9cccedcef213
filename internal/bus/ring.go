package bus

import (
	"sync/atomic"

	"github.com/yanun0323/errors"
)

var (
	ErrRingFull  = errors.New("ring full")
	ErrRingEmpty = errors.New("ring empty")
)

// DefaultCapacity is the ring capacity used by the pipeline when the
// configuration does not override it.
const DefaultCapacity = 1024

// ring is a bounded single-producer/single-consumer FIFO. head is only
// advanced by the consumer, tail only by the producer, so a full/empty check
// against the other party's published counter is always conservative.
type ring[T any] struct {
	buf  []T
	mask uint64

	tail atomic.Uint64
	_    [56]byte // keep producer and consumer counters on separate cache lines
	head atomic.Uint64
}

// Producer is the write handle of a ring. It must be owned by exactly one
// goroutine and is not safe to share.
type Producer[T any] struct {
	r *ring[T]
}

// Consumer is the read handle of a ring. It must be owned by exactly one
// goroutine and is not safe to share.
type Consumer[T any] struct {
	r *ring[T]
}

// NewRing allocates a bounded SPSC ring and returns its two handles.
// Capacity is rounded up to the next power of two, minimum 2.
func NewRing[T any](capacity int) (*Producer[T], *Consumer[T]) {
	if capacity < 2 {
		capacity = 2
	}
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}
	r := &ring[T]{
		buf:  make([]T, size),
		mask: size - 1,
	}
	return &Producer[T]{r: r}, &Consumer[T]{r: r}
}

// Push enqueues one item without blocking. On a full ring it returns
// ErrRingFull and the item is not retained; the caller decides whether to log
// and drop.
func (p *Producer[T]) Push(v T) error {
	r := p.r
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.buf)) {
		return ErrRingFull
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return nil
}

// Len reports the number of queued items from the producer's view.
func (p *Producer[T]) Len() int {
	return int(p.r.tail.Load() - p.r.head.Load())
}

// Pop dequeues one item without blocking. It returns ErrRingEmpty when no
// item is queued; callers poll and yield between attempts.
func (c *Consumer[T]) Pop() (T, error) {
	r := c.r
	head := r.head.Load()
	if head == r.tail.Load() {
		var zero T
		return zero, ErrRingEmpty
	}
	v := r.buf[head&r.mask]
	var zero T
	r.buf[head&r.mask] = zero // release references held by the slot
	r.head.Store(head + 1)
	return v, nil
}

// Len reports the number of queued items from the consumer's view.
func (c *Consumer[T]) Len() int {
	return int(c.r.tail.Load() - c.r.head.Load())
}
