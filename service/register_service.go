package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"blockfree/domain/register"
	"blockfree/jobs/broadcaster"
	"blockfree/snapshot"
)

/*
RegisterService is the ONLY write entry point into one register.

All coordination between:
- domain (register)
- snapshot (checkpoint + restore)
- broadcaster (change feed)
happens here.

Publish must be called from a single goroutine at a time; everything
else is safe to call from anywhere.
*/

type Config struct {
	Name             string
	Register         register.Config
	SnapshotInterval time.Duration
	BroadcastEvery   time.Duration
}

type RegisterService[T any] struct {
	name  string
	owner *register.Owner[T]

	snapJob *snapshot.Job[T]
	bc      *broadcaster.Broadcaster[T]
}

// NewRegisterService wires all dependencies. store and pub are optional.
// With a store the register is restored from its last checkpoint.
func NewRegisterService[T any](
	initial T,
	store *snapshot.Store,
	pub broadcaster.Publisher,
	cfg Config,
) (*RegisterService[T], error) {
	if cfg.Name == "" {
		return nil, errors.New("service: register name required")
	}

	var (
		owner *register.Owner[T]
		err   error
	)
	if store != nil {
		owner, err = snapshot.Restore(store, cfg.Name, initial, cfg.Register)
	} else {
		owner, err = register.NewWithConfig(initial, cfg.Register)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "create register %s", cfg.Name)
	}

	s := &RegisterService[T]{name: cfg.Name, owner: owner}
	if store != nil {
		s.snapJob = snapshot.NewJob(store, cfg.Name, owner.NewReader(), cfg.SnapshotInterval)
	}
	if pub != nil {
		s.bc = broadcaster.New(owner.NewReader(), pub, broadcaster.Config{
			Name:     cfg.Name,
			Interval: cfg.BroadcastEvery,
		})
	}
	return s, nil
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Publish writes a new value and returns its version.
func (s *RegisterService[T]) Publish(v T) uint64 {
	s.owner.Write(v)
	return s.owner.Version()
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *RegisterService[T]) Name() string { return s.name }

// Reader hands out a new reader; readers are cheap and independent.
func (s *RegisterService[T]) Reader() register.Reader[T] {
	return s.owner.NewReader()
}

//
// ──────────────────────────────────────────────────────────
// Background jobs
// ──────────────────────────────────────────────────────────
//

// Start launches the snapshot job and the broadcaster, if configured.
// The returned channel is closed once the snapshot job has flushed
// after ctx is done.
func (s *RegisterService[T]) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if s.bc != nil {
		s.bc.Start(ctx)
	}
	if s.snapJob == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		s.snapJob.Run(ctx)
	}()
	return done
}

func (s *RegisterService[T]) Close() error {
	if s.bc != nil {
		return s.bc.Close()
	}
	return nil
}
