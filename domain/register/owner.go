package register

import (
	"sync/atomic"

	"blockfree/infra/memory"
	"blockfree/infra/sequence"
)

// generation is the storage published by one write.
// version is the stable indicator value under which it is current.
type generation[T any] struct {
	val     T
	version uint64
}

// state is shared by the owner and every reader.
type state[T any] struct {
	seq    *sequence.Sequencer
	cur    atomic.Pointer[generation[T]]
	domain memory.Domain
	obs    Observer
}

// recycler zeroes a generation before it goes back to the pool so
// pooled storage does not pin old strings.
type recycler[T any] struct {
	p *memory.Pool[generation[T]]
}

func (r recycler[T]) Put(g *generation[T]) {
	*g = generation[T]{}
	r.p.Put(g)
}

// noCopy lets `go vet` flag copies of an Owner.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Stats is the owner's view of the register.
type Stats struct {
	Version   uint64
	Epoch     uint64
	Writes    uint64
	Retired   uint64
	Reclaimed uint64
	Dropped   uint64
	Pending   int
	Readers   int64
}

// Owner is the single writer of a register.
//
// It is not safe for concurrent use. Handing the *Owner to another
// goroutine hands over the right to write.
type Owner[T any] struct {
	_ noCopy

	st    *state[T]
	ring  *memory.RetireRing[generation[T]]
	pool  recycler[T]
	stats Stats
}

// New creates a register holding initial.
// It fails with ErrNotCopyable if T is not a plain value type.
func New[T any](initial T) (*Owner[T], error) {
	return NewWithConfig(initial, Config{})
}

// MustNew is like New but panics on error.
func MustNew[T any](initial T) *Owner[T] {
	o, err := New(initial)
	if err != nil {
		panic(err)
	}
	return o
}

func NewWithConfig[T any](initial T, cfg Config) (*Owner[T], error) {
	if err := CheckCopyable[T](); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	st := &state[T]{
		seq: sequence.New(cfg.StartVersion),
		obs: cfg.Observer,
	}
	o := &Owner[T]{
		st:   st,
		ring: memory.NewRetireRing[generation[T]](cfg.RetireCapacity),
		pool: recycler[T]{p: memory.NewPool(func() *generation[T] {
			return &generation[T]{}
		})},
	}

	g := o.pool.p.Get()
	g.val = initial
	g.version = st.seq.Load()
	st.cur.Store(g)
	return o, nil
}

// Write publishes v. It never waits for readers.
func (o *Owner[T]) Write(v T) {
	st := o.st

	g := o.pool.p.Get()
	g.val = v
	g.version = st.seq.Next()

	st.seq.BeginWrite()
	old := st.cur.Swap(g)
	st.seq.EndWrite()

	o.stats.Writes++
	st.obs.Wrote(g.version)

	o.retire(old)
	o.reclaim()
}

// NewReader returns a reader of this register.
func (o *Owner[T]) NewReader() Reader[T] {
	return Reader[T]{st: o.st}
}

// Value returns the current value. Owner-side reads cannot tear.
func (o *Owner[T]) Value() T {
	return o.st.cur.Load().val
}

// Version returns the current stable version.
func (o *Owner[T]) Version() uint64 {
	return o.st.seq.Load()
}

func (o *Owner[T]) Stats() Stats {
	s := o.stats
	s.Version = o.st.seq.Load()
	s.Epoch = o.st.domain.Epoch()
	s.Pending = o.ring.Len()
	s.Readers = o.st.domain.Active()
	return s
}

func (o *Owner[T]) retire(g *generation[T]) {
	if !o.ring.Enqueue(g, o.st.domain.Epoch()) {
		o.reclaim()
		if !o.ring.Enqueue(g, o.st.domain.Epoch()) {
			// readers may still hold it; the GC takes over
			o.stats.Dropped++
			o.st.obs.Dropped()
			return
		}
	}
	o.stats.Retired++
	o.st.obs.Retired(o.ring.Len())
}

func (o *Owner[T]) reclaim() {
	n := memory.AdvanceEpochAndReclaim(&o.st.domain, o.ring, o.pool)
	if n > 0 {
		o.stats.Reclaimed += uint64(n)
		o.st.obs.Reclaimed(n)
	}
}
