package broadcaster

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"blockfree/domain/register"
)

// Publisher is the sink for change-feed events.
type Publisher interface {
	Send(ctx context.Context, key, value []byte) error
	Close() error
}

type Config struct {
	Name     string
	Interval time.Duration
}

type Event struct {
	V       int             `json:"v"`
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Version uint64          `json:"version"`
	Source  string          `json:"source"`
	Time    int64           `json:"time"`
	Value   json.RawMessage `json:"value"`
}

// Broadcaster polls a register through a reader and publishes every new
// consistent version it sees. Versions written between two polls are
// coalesced; the feed carries snapshots, not a log of writes.
type Broadcaster[T any] struct {
	reader   register.Reader[T]
	pub      Publisher
	name     string
	interval time.Duration
	source   uuid.UUID

	last uint64
	sent bool
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New[T any](
	reader register.Reader[T],
	pub Publisher,
	cfg Config,
) *Broadcaster[T] {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	return &Broadcaster[T]{
		reader:   reader,
		pub:      pub,
		name:     cfg.Name,
		interval: cfg.Interval,
		source:   uuid.New(),
	}
}

// Source identifies this broadcaster instance in published events.
func (b *Broadcaster[T]) Source() uuid.UUID { return b.source }

// ------------------------------------------------
// START LOOP
// ------------------------------------------------

func (b *Broadcaster[T]) Start(ctx context.Context) {
	log.Printf("[broadcaster] %s started (source=%s)", b.name, b.source)

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				if _, err := b.PublishOnce(ctx); err != nil {
					log.Printf("[broadcaster] %s: %v", b.name, err)
				}
			}
		}
	}()
}

// PublishOnce sends the current value if its version has not been sent.
// A torn read or an unchanged version publishes nothing.
func (b *Broadcaster[T]) PublishOnce(ctx context.Context) (bool, error) {
	v, ver, ok := b.reader.ReadVersioned()
	if !ok || (b.sent && ver == b.last) {
		return false, nil
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return false, errors.Wrapf(err, "encode %s@%d", b.name, ver)
	}
	msg, err := json.Marshal(Event{
		V:       1,
		Type:    "snapshot",
		Name:    b.name,
		Version: ver,
		Source:  b.source.String(),
		Time:    time.Now().UnixNano(),
		Value:   payload,
	})
	if err != nil {
		return false, errors.Wrapf(err, "encode event %s@%d", b.name, ver)
	}

	// failed sends are retried on the next tick
	if err := b.pub.Send(ctx, []byte(b.name), msg); err != nil {
		return false, errors.Wrapf(err, "publish %s@%d", b.name, ver)
	}
	b.last, b.sent = ver, true
	return true, nil
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster[T]) Close() error {
	return b.pub.Close()
}
