package service

import (
	"context"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"

	"blockfree/domain/register"
)

// ErrNoConsistentRead is returned when ctx ends before a read succeeds.
var ErrNoConsistentRead = errors.New("service: no consistent read before deadline")

const spinReads = 64

// VersionedReader is satisfied by register.Reader.
type VersionedReader[T any] interface {
	ReadVersioned() (T, uint64, bool)
}

var _ VersionedReader[int] = register.Reader[int]{}

// ReadConsistent retries r until a read is consistent or ctx is done.
// Readers never retry on their own; this is the caller-side loop.
func ReadConsistent[T any](ctx context.Context, r VersionedReader[T]) (T, uint64, error) {
	for i := 0; ; i++ {
		if v, ver, ok := r.ReadVersioned(); ok {
			return v, ver, nil
		}
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, 0, errors.Mark(errors.Wrap(err, "read"), ErrNoConsistentRead)
		}
		if i < spinReads {
			runtime.Gosched()
			continue
		}
		time.Sleep(time.Microsecond)
	}
}
