package snapshot

import (
	"context"
	"log"
	"time"

	"github.com/cockroachdb/pebble"

	"blockfree/domain/register"
)

// Save stores v as the checkpoint for name.
func Save[T any](s *Store, name string, version uint64, v T) error {
	buf, err := encode(Snapshot[T]{
		Name:    name,
		Version: version,
		Created: time.Now(),
		Value:   v,
	})
	if err != nil {
		return err
	}
	return s.db.Set(keyFor(name), buf, pebble.Sync)
}

// Job periodically checkpoints a register through one of its readers.
// A tick whose read is torn is skipped; the next tick tries again.
type Job[T any] struct {
	store    *Store
	name     string
	reader   register.Reader[T]
	interval time.Duration

	last  uint64
	saved bool
}

func NewJob[T any](
	store *Store,
	name string,
	reader register.Reader[T],
	interval time.Duration,
) *Job[T] {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Job[T]{
		store:    store,
		name:     name,
		reader:   reader,
		interval: interval,
	}
}

// RunOnce saves the current value if its version has not been saved yet.
// It reports whether a checkpoint was written.
func (j *Job[T]) RunOnce() (bool, error) {
	v, ver, ok := j.reader.ReadVersioned()
	if !ok {
		return false, nil
	}
	if j.saved && ver == j.last {
		return false, nil
	}
	if err := Save(j.store, j.name, ver, v); err != nil {
		return false, err
	}
	j.last, j.saved = ver, true
	return true, nil
}

// Run ticks until ctx is done, then makes one last attempt.
func (j *Job[T]) Run(ctx context.Context) {
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, err := j.RunOnce(); err != nil {
				log.Printf("[snapshot] final save %s failed: %v", j.name, err)
			}
			return
		case <-t.C:
			if _, err := j.RunOnce(); err != nil {
				log.Printf("[snapshot] save %s failed: %v", j.name, err)
			}
		}
	}
}
