package register

import "blockfree/infra/sequence"

// Reader observes a register. Copy it freely and share it between any
// number of goroutines; it carries no state between reads.
type Reader[T any] struct {
	st *state[T]
}

// Read returns the current value and true, or the zero value and false
// if the read overlapped a write. It never blocks and never retries.
func (r Reader[T]) Read() (T, bool) {
	v, _, ok := r.ReadVersioned()
	return v, ok
}

// ReadVersioned is Read that also returns the version the value was
// published under.
func (r Reader[T]) ReadVersioned() (T, uint64, bool) {
	var zero T
	st := r.st

	g := st.domain.Pin()
	s0 := st.seq.Load()
	if !sequence.Stable(s0) {
		g.Unpin()
		st.obs.Torn()
		return zero, 0, false
	}
	gen := st.cur.Load()
	v, ver := gen.val, gen.version
	s1 := st.seq.Load()
	g.Unpin()

	// only an exact match counts
	if s0 != s1 || ver != s0 {
		st.obs.Torn()
		return zero, 0, false
	}
	return v, s0, true
}

// Version returns the current version, or false while a write is in
// progress.
func (r Reader[T]) Version() (uint64, bool) {
	v := r.st.seq.Load()
	return v, sequence.Stable(v)
}

// Clone returns an independent reader of the same register.
func (r Reader[T]) Clone() Reader[T] {
	return r
}
