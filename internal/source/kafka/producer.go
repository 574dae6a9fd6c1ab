package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/let4be/relabuf/internal/platform/logging"
	"github.com/let4be/relabuf/pkg/errors"
)

// ProducerConfig holds the parameters for the seeding producer.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	RequiredAcks string // "none" | "one" | "all"
}

// Producer publishes events onto the Kafka topic the Source reads from,
// e.g. to seed a topic; relabufd run does not start one. It carries no
// dead-letter-queue logic, which belongs to a different retry model than
// this spec's (§C.2).
type Producer struct {
	writer *kafka.Writer
	logger logging.Logger
}

// NewProducer builds a Producer from cfg.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeConfigInvalid, "kafka: producer brokers required")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.CodeConfigInvalid, "kafka: producer topic required")
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}

	var acks kafka.RequiredAcks
	switch cfg.RequiredAcks {
	case "none":
		acks = kafka.RequireNone
	case "all":
		acks = kafka.RequireAll
	default:
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: acks,
	}

	return &Producer{writer: writer, logger: logger}, nil
}

// Publish writes a single value to the configured topic.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value, Time: time.Now()})
	if err != nil {
		return errors.Wrap(err, errors.CodeSourceUnavailable, "kafka: publish failed")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
