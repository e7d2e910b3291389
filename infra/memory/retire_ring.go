package memory

import (
	"fmt"
	"sync/atomic"
)

type retired[T any] struct {
	obj   *T
	epoch uint64
}

// RetireRing is a lock-free SPSC ring buffer for retired objects,
// each tagged with the epoch it was retired in.
type RetireRing[T any] struct {
	head  uint64
	_pad1 [56]byte
	tail  uint64
	_pad2 [56]byte
	buf   []retired[T]
	mask  uint64
}

func NewRetireRing[T any](size uint64) *RetireRing[T] {
	if size == 0 || size&(size-1) != 0 {
		panic("RetireRing size must be power of two")
	}
	return &RetireRing[T]{
		buf:  make([]retired[T], size),
		mask: size - 1,
	}
}

// Enqueue adds an element; returns false if full.
func (r *RetireRing[T]) Enqueue(v *T, epoch uint64) bool {
	h := r.head
	t := atomic.LoadUint64(&r.tail)
	if h-t == uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = retired[T]{obj: v, epoch: epoch}
	atomic.StoreUint64(&r.head, h+1)
	return true
}

// Peek returns the oldest element without removing it.
func (r *RetireRing[T]) Peek() (*T, uint64, bool) {
	t := r.tail
	h := atomic.LoadUint64(&r.head)
	if t == h {
		return nil, 0, false
	}
	e := r.buf[t&r.mask]
	return e.obj, e.epoch, true
}

// Dequeue removes one element; returns nil if empty.
func (r *RetireRing[T]) Dequeue() *T {
	t := r.tail
	h := atomic.LoadUint64(&r.head)
	if t == h {
		return nil
	}
	v := r.buf[t&r.mask].obj
	r.buf[t&r.mask] = retired[T]{}
	atomic.StoreUint64(&r.tail, t+1)
	return v
}

// Diagnostic helpers
func (r *RetireRing[T]) Len() int {
	return int(atomic.LoadUint64(&r.head) - atomic.LoadUint64(&r.tail))
}
func (r *RetireRing[T]) Cap() int { return len(r.buf) }
func (r *RetireRing[T]) IsFull() bool {
	h := atomic.LoadUint64(&r.head)
	t := atomic.LoadUint64(&r.tail)
	return h-t == uint64(len(r.buf))
}
func (r *RetireRing[T]) IsEmpty() bool {
	return atomic.LoadUint64(&r.head) == atomic.LoadUint64(&r.tail)
}

func (r *RetireRing[T]) String() string {
	return fmt.Sprintf("RetireRing{len=%d, cap=%d, head=%d, tail=%d}",
		r.Len(), r.Cap(), atomic.LoadUint64(&r.head), atomic.LoadUint64(&r.tail))
}
