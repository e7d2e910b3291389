package sequence

import "sync/atomic"

// Sequencer is the change indicator shared by a register's owner and its
// readers. It is bumped twice per write: odd while a write is in flight,
// even once the new value is published.
//
// Only the owner advances it. Readers only Load.
type Sequencer struct {
	v atomic.Uint64
}

// New creates a sequencer starting from a given value.
// On fresh start → start = 0
// On restore → start = version recorded in the checkpoint
// Odd values are rounded up so a restored sequencer never starts mid-write.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.v.Store(start + start&1)
	return s
}

// BeginWrite enters the in-progress state.
func (s *Sequencer) BeginWrite() uint64 {
	v := s.v.Add(1)
	if Stable(v) {
		panic("sequence: BeginWrite during write")
	}
	return v
}

// EndWrite leaves the in-progress state and returns the new stable value.
func (s *Sequencer) EndWrite() uint64 {
	v := s.v.Add(1)
	if !Stable(v) {
		panic("sequence: EndWrite outside write")
	}
	return v
}

// Load returns the current raw value, odd or even.
func (s *Sequencer) Load() uint64 {
	return s.v.Load()
}

// Next returns the stable value the next completed write will produce.
// Owner-side only.
func (s *Sequencer) Next() uint64 {
	v := s.v.Load()
	return v + 2 - v&1
}

// Stable reports whether v was sampled while no write was in progress.
func Stable(v uint64) bool { return v&1 == 0 }
