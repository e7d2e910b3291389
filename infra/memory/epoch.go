package memory

import "sync/atomic"

// slot counts readers pinned under one epoch parity.
// Padded so the two slots never share a cache line.
type slot struct {
	n    atomic.Int64
	_pad [56]byte
}

// Domain is the reclamation domain of a single writer.
//
// Readers pin the current epoch's parity slot for the duration of a read.
// Only the writer advances the epoch, and only when the slot it is about to
// hand to new readers has drained. Something retired at epoch r therefore
// has no reader left once the epoch reaches r+2: both slots have been seen
// empty after it was retired.
type Domain struct {
	epoch  atomic.Uint64
	_pad   [56]byte
	active [2]slot
}

// Guard is a pinned read section. Release it exactly once.
type Guard struct {
	d *Domain
	e uint64
}

// Pin enters a read section.
func (d *Domain) Pin() Guard {
	e := d.epoch.Load()
	d.active[e&1].n.Add(1)
	return Guard{d: d, e: e}
}

// Unpin leaves the read section.
func (g Guard) Unpin() {
	g.d.active[g.e&1].n.Add(-1)
}

// Epoch returns the current epoch.
func (d *Domain) Epoch() uint64 {
	return d.epoch.Load()
}

// Active returns the number of readers currently pinned.
func (d *Domain) Active() int64 {
	return d.active[0].n.Load() + d.active[1].n.Load()
}

// TryAdvance moves the epoch forward if the next parity slot is empty.
// Writer only.
func (d *Domain) TryAdvance() bool {
	e := d.epoch.Load()
	if d.active[(e+1)&1].n.Load() != 0 {
		return false
	}
	d.epoch.Store(e + 1)
	return true
}

// Safe reports whether something retired at epoch r can be reused.
func (d *Domain) Safe(r uint64) bool {
	return d.epoch.Load() >= r+2
}

// ReclaimablePool is the ONLY requirement for reclamation.
type ReclaimablePool[T any] interface {
	Put(*T)
}

// AdvanceEpochAndReclaim advances the epoch as far as readers allow and
// hands every retired object that became safe back to pool.
// It returns the number of objects reclaimed.
func AdvanceEpochAndReclaim[T any](
	d *Domain,
	ring *RetireRing[T],
	pool ReclaimablePool[T],
) int {
	// Two steps are enough to clear everything retired before this call.
	for i := 0; i < 2 && d.TryAdvance(); i++ {
	}

	n := 0
	for {
		_, r, ok := ring.Peek()
		if !ok || !d.Safe(r) {
			// FIFO: newer entries carry equal or later epochs
			return n
		}
		pool.Put(ring.Dequeue())
		n++
	}
}
