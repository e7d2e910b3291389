package register

import (
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

func TestReadImmediately(t *testing.T) {
	o := MustNew(1)
	r := o.NewReader()

	v, ok := r.Read()
	if !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%d, %v)", v, ok)
	}
}

func TestReadAfterWrite(t *testing.T) {
	o := MustNew(1)
	r := o.NewReader()

	o.Write(2)

	v, ok := r.Read()
	if !ok || v != 2 {
		t.Fatalf("expected (2, true), got (%d, %v)", v, ok)
	}
}

func TestWriteFromOtherGoroutine(t *testing.T) {
	o := MustNew(1)
	r := o.NewReader()

	var wg sync.WaitGroup
	wg.Add(1)
	go func(o *Owner[int]) {
		defer wg.Done()
		o.Write(2)
	}(o)
	wg.Wait()

	v, ok := r.Read()
	if !ok || v != 2 {
		t.Fatalf("expected (2, true), got (%d, %v)", v, ok)
	}
}

func TestStringPayload(t *testing.T) {
	o := MustNew("hello")
	r := o.NewReader()

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Write("world")
	}()
	<-done

	v, ok := r.Read()
	if !ok || v != "world" {
		t.Fatalf("expected (world, true), got (%q, %v)", v, ok)
	}
}

func TestNoTearWithoutRace(t *testing.T) {
	o := MustNew(0)
	readers := []Reader[int]{o.NewReader(), o.NewReader(), o.NewReader().Clone()}

	for i := 1; i <= 1000; i++ {
		o.Write(i)
		for _, r := range readers {
			v, ok := r.Read()
			if !ok {
				t.Fatalf("write %d: unexpected torn read", i)
			}
			if v != i {
				t.Fatalf("write %d: read %d", i, v)
			}
		}
	}
}

func TestVersionAdvancesByTwoPerWrite(t *testing.T) {
	o := MustNew(0)
	r := o.NewReader()

	if o.Version() != 0 {
		t.Fatalf("expected version 0, got %d", o.Version())
	}
	o.Write(10)
	o.Write(20)

	v, ver, ok := r.ReadVersioned()
	if !ok || v != 20 || ver != 4 {
		t.Fatalf("expected (20, 4, true), got (%d, %d, %v)", v, ver, ok)
	}
	if cur, stable := r.Version(); !stable || cur != 4 {
		t.Errorf("expected stable version 4, got %d stable=%v", cur, stable)
	}
}

type pair struct {
	A, B uint64
	Tag  string
}

func TestConcurrentReadsFailClosed(t *testing.T) {
	o := MustNew(pair{A: 0, B: ^uint64(0), Tag: "0"})

	const readers = 4
	var (
		stop  atomic.Bool
		wg    sync.WaitGroup
		hits  atomic.Int64
		fails atomic.Int64
	)

	for i := 0; i < readers; i++ {
		r := o.NewReader()
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for !stop.Load() {
				p, ok := r.Read()
				if !ok {
					fails.Add(1)
					runtime.Gosched()
					continue
				}
				hits.Add(1)
				if p.B != ^p.A {
					t.Errorf("mixed value: A=%d B=%d", p.A, p.B)
					return
				}
				if p.Tag != tagFor(p.A) {
					t.Errorf("mixed tag: A=%d tag=%q", p.A, p.Tag)
					return
				}
				if p.A < last {
					t.Errorf("went backwards: %d after %d", p.A, last)
					return
				}
				last = p.A
			}
		}()
	}

	for i := uint64(1); i <= 20000; i++ {
		o.Write(pair{A: i, B: ^i, Tag: tagFor(i)})
	}
	stop.Store(true)
	wg.Wait()

	if hits.Load() == 0 {
		t.Fatal("expected at least one consistent read")
	}
	t.Logf("consistent=%d torn=%d stats=%+v", hits.Load(), fails.Load(), o.Stats())
}

func tagFor(i uint64) string { return strconv.FormatUint(i, 10) }

func TestMultiReaderIndependence(t *testing.T) {
	o := MustNew(42)
	r1 := o.NewReader()
	r2 := r1.Clone()

	var wg sync.WaitGroup
	results := make([]int, 2)
	for i, r := range []Reader[int]{r1, r2} {
		wg.Add(1)
		go func(i int, r Reader[int]) {
			defer wg.Done()
			v, ok := r.Read()
			if !ok {
				t.Errorf("reader %d: unexpected torn read", i)
			}
			results[i] = v
		}(i, r)
	}
	wg.Wait()

	if results[0] != 42 || results[1] != 42 {
		t.Fatalf("expected both readers to see 42, got %v", results)
	}

	// r1 is simply dropped; r2 keeps working
	runtime.GC()
	if v, ok := r2.Read(); !ok || v != 42 {
		t.Fatalf("expected surviving reader to see 42, got (%d, %v)", v, ok)
	}
}

func TestReadDuringWriteIsTorn(t *testing.T) {
	o := MustNew(1)
	r := o.NewReader()
	st := o.st

	// drive the write steps by hand
	g := &generation[int]{val: 2, version: st.seq.Next()}
	st.seq.BeginWrite()
	if _, ok := r.Read(); ok {
		t.Fatal("expected torn read while write is in flight")
	}
	if _, stable := r.Version(); stable {
		t.Error("expected unstable version mid-write")
	}
	st.cur.Swap(g)
	if _, ok := r.Read(); ok {
		t.Fatal("expected torn read after publish but before EndWrite")
	}
	st.seq.EndWrite()

	if v, ok := r.Read(); !ok || v != 2 {
		t.Fatalf("expected (2, true) after write, got (%d, %v)", v, ok)
	}
}

func TestOwnerValue(t *testing.T) {
	o := MustNew("a")
	o.Write("b")
	if o.Value() != "b" {
		t.Fatalf("expected b, got %q", o.Value())
	}
}

func TestStartVersion(t *testing.T) {
	o, err := NewWithConfig(5, Config{StartVersion: 41})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if o.Version() != 42 {
		t.Fatalf("expected start version rounded to 42, got %d", o.Version())
	}
	o.Write(6)
	if _, ver, ok := o.NewReader().ReadVersioned(); !ok || ver != 44 {
		t.Fatalf("expected version 44, got %d ok=%v", ver, ok)
	}
}
