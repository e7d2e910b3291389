package kafka

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"
)

// Config describes where change-feed events go.
type Config struct {
	Brokers []string
	Topic   string

	// MaxAttempts bounds delivery retries per event (default 3).
	MaxAttempts int
	// WriteTimeout bounds a single write to a broker (default 5s).
	WriteTimeout time.Duration
}

// Producer writes change-feed events with kafka-go.
// It satisfies broadcaster.Publisher.
//
// Events are keyed by register name, so the hash balancer keeps every
// version of one register on one partition, in order.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			MaxAttempts:            cfg.MaxAttempts,
			WriteTimeout:           cfg.WriteTimeout,
			BatchTimeout:           time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

// Send blocks until the event is acknowledged or ctx ends.
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
	if err != nil {
		return errors.Wrapf(err, "kafka: write to %s", p.writer.Topic)
	}
	return nil
}

func (p *Producer) Topic() string { return p.writer.Topic }

func (p *Producer) Close() error {
	return errors.Wrap(p.writer.Close(), "kafka: close writer")
}
