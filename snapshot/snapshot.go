package snapshot

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// ErrNoSnapshot is returned by Load when nothing was saved under a name.
var ErrNoSnapshot = errors.New("snapshot: not found")

const keyPrefix = "snapshot/"

// Snapshot is one persisted register value.
type Snapshot[T any] struct {
	Name    string
	Version uint64
	Created time.Time
	Value   T
}

type Config struct {
	Dir string
	FS  vfs.FS // nil → on-disk
}

// Store keeps the latest checkpoint of each named register in pebble.
type Store struct {
	db *pebble.DB
}

func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		cfg.Dir = "./snapshots"
	}
	opts := &pebble.Options{}
	if cfg.FS != nil {
		opts.FS = cfg.FS
	}
	db, err := pebble.Open(cfg.Dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot store %s", cfg.Dir)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Delete removes the checkpoint for name.
func (s *Store) Delete(name string) error {
	return s.db.Delete(keyFor(name), pebble.Sync)
}

// Names lists every register with a checkpoint, in key order.
func (s *Store) Names() ([]string, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "\xff"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []string
	for iter.First(); iter.Valid(); iter.Next() {
		out = append(out, string(bytes.TrimPrefix(iter.Key(), []byte(keyPrefix))))
	}
	return out, iter.Error()
}

func keyFor(name string) []byte {
	return []byte(keyPrefix + name)
}

func encode[T any](s Snapshot[T]) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil, errors.Wrapf(err, "encode snapshot %s", s.Name)
	}
	return buf.Bytes(), nil
}

func decode[T any](b []byte) (Snapshot[T], error) {
	var s Snapshot[T]
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&s); err != nil {
		return s, errors.Wrap(err, "decode snapshot")
	}
	return s, nil
}
