package snapshot

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"blockfree/domain/register"
)

// Load returns the checkpoint saved for name, or ErrNoSnapshot.
func Load[T any](s *Store, name string) (Snapshot[T], error) {
	val, closer, err := s.db.Get(keyFor(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return Snapshot[T]{}, errors.Wrapf(ErrNoSnapshot, "%s", name)
	}
	if err != nil {
		return Snapshot[T]{}, errors.Wrapf(err, "load snapshot %s", name)
	}
	defer closer.Close()

	return decode[T](val)
}

// Restore builds a register from the checkpoint for name, continuing its
// version line. Without a checkpoint it starts from fallback.
//
// This MUST run before any reader is handed out.
func Restore[T any](
	s *Store,
	name string,
	fallback T,
	cfg register.Config,
) (*register.Owner[T], error) {
	initial := fallback

	snap, err := Load[T](s, name)
	switch {
	case err == nil:
		initial = snap.Value
		cfg.StartVersion = snap.Version
	case errors.Is(err, ErrNoSnapshot):
		// fresh start
	default:
		return nil, err
	}

	return register.NewWithConfig(initial, cfg)
}
