package register

import "math/bits"

const (
	defaultRetireCapacity = 64
	maxRetireCapacity     = 1 << 30
)

// Config tunes a register. The zero value is ready to use.
type Config struct {
	// RetireCapacity bounds how many displaced generations wait for
	// readers to leave. Rounded up to a power of two. Generations that
	// do not fit are left to the garbage collector instead of reused.
	RetireCapacity uint64

	// StartVersion seeds the change indicator, e.g. from a checkpoint.
	// Odd values are rounded up.
	StartVersion uint64

	// Observer receives protocol events. Must be safe for concurrent use:
	// Torn is called from reader goroutines.
	Observer Observer
}

func (c Config) withDefaults() Config {
	if c.RetireCapacity == 0 {
		c.RetireCapacity = defaultRetireCapacity
	}
	if c.RetireCapacity > maxRetireCapacity {
		c.RetireCapacity = maxRetireCapacity
	}
	if c.RetireCapacity&(c.RetireCapacity-1) != 0 {
		c.RetireCapacity = 1 << bits.Len64(c.RetireCapacity)
	}
	if c.Observer == nil {
		c.Observer = NopObserver{}
	}
	return c
}

// Observer is notified of register events.
type Observer interface {
	// Wrote is called by the owner after a write is published.
	Wrote(version uint64)
	// Torn is called by a reader whose read overlapped a write.
	Torn()
	// Retired is called after a displaced generation is queued.
	Retired(pending int)
	// Reclaimed is called with the number of generations made reusable.
	Reclaimed(n int)
	// Dropped is called when the retire ring is full.
	Dropped()
}

type NopObserver struct{}

func (NopObserver) Wrote(uint64)  {}
func (NopObserver) Torn()         {}
func (NopObserver) Retired(int)   {}
func (NopObserver) Reclaimed(int) {}
func (NopObserver) Dropped()      {}
