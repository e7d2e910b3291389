package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/pebble/vfs"

	"blockfree/snapshot"
)

type quote struct {
	Bid, Ask int64
	Seq      uint64
}

type memPublisher struct {
	mu   sync.Mutex
	sent int
}

func (p *memPublisher) Send(context.Context, []byte, []byte) error {
	p.mu.Lock()
	p.sent++
	p.mu.Unlock()
	return nil
}

func (p *memPublisher) Close() error { return nil }

func TestPublishAndRead(t *testing.T) {
	svc, err := NewRegisterService(quote{}, nil, nil, Config{Name: "q"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	r := svc.Reader()

	if ver := svc.Publish(quote{Bid: 1, Ask: 2, Seq: 1}); ver != 2 {
		t.Fatalf("expected version 2, got %d", ver)
	}
	v, ok := r.Read()
	if !ok || v.Seq != 1 {
		t.Fatalf("expected seq 1, got %+v ok=%v", v, ok)
	}
	if svc.Name() != "q" {
		t.Errorf("unexpected name %q", svc.Name())
	}
}

func TestNewRegisterServiceRequiresName(t *testing.T) {
	if _, err := NewRegisterService(quote{}, nil, nil, Config{}); err == nil {
		t.Fatal("expected error without name")
	}
}

func TestNewRegisterServiceRejectsNonCopyable(t *testing.T) {
	if _, err := NewRegisterService([]int{1}, nil, nil, Config{Name: "bad"}); err == nil {
		t.Fatal("expected error for slice value")
	}
}

func TestRestartRestoresFromSnapshot(t *testing.T) {
	fs := vfs.NewMem()
	store, err := snapshot.Open(snapshot.Config{Dir: "snap", FS: fs})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	svc, err := NewRegisterService(quote{}, store, nil, Config{Name: "q", SnapshotInterval: time.Hour})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.Publish(quote{Seq: 1})
	svc.Publish(quote{Seq: 2})

	// cancelling flushes the latest version
	ctx, cancel := context.WithCancel(context.Background())
	done := svc.Start(ctx)
	cancel()
	<-done

	again, err := NewRegisterService(quote{}, store, nil, Config{Name: "q"})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	v, ver, ok := again.Reader().ReadVersioned()
	if !ok || v.Seq != 2 || ver != 4 {
		t.Fatalf("expected seq 2 at version 4, got %+v at %d ok=%v", v, ver, ok)
	}
}

func TestStartRunsBroadcaster(t *testing.T) {
	pub := &memPublisher{}
	svc, err := NewRegisterService(quote{}, nil, pub, Config{Name: "q", BroadcastEvery: time.Millisecond})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	<-svc.Start(ctx) // closed at once without a store

	deadline := time.Now().Add(2 * time.Second)
	for {
		pub.mu.Lock()
		n := pub.sent
		pub.mu.Unlock()
		if n > 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("broadcaster never published")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestReadConsistentUnderWrites(t *testing.T) {
	svc, err := NewRegisterService(quote{Bid: 0, Ask: 1}, nil, nil, Config{Name: "q"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	r := svc.Reader()

	var stop atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := uint64(1); !stop.Load(); i++ {
			svc.Publish(quote{Bid: int64(i), Ask: int64(i) + 1, Seq: i})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 100; i++ {
		v, _, err := ReadConsistent[quote](ctx, r)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if v.Ask != v.Bid+1 || uint64(v.Bid) != v.Seq {
			t.Fatalf("inconsistent value %+v", v)
		}
	}
	stop.Store(true)
	<-done
}
