// Package kafka adapts github.com/segmentio/kafka-go into a
// relabuf.PullSource[Record], bridging the core's confirm/return-on-error
// protocol onto Kafka consumer-group offset commits.
package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/let4be/relabuf/internal/platform/logging"
	"github.com/let4be/relabuf/pkg/errors"
)

// ReaderInterface abstracts *kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Record is the item type this source hands to pkg/relabuf. It carries the
// raw payload plus enough of the original kafka.Message to commit its
// offset later, once the caller has confirmed the batch it belongs to.
type Record struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time

	message kafka.Message
}

// Config holds the Kafka connection parameters for the pull source.
type Config struct {
	Brokers         []string
	Topic           string
	GroupID         string
	AutoOffsetReset string // "earliest" | "latest"
	MinBytes        int
	MaxBytes        int

	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
	TLSEnabled    bool
	TLSCertPath   string
}

// Validate rejects a Config the Source cannot use.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New(errors.CodeConfigInvalid, "kafka: brokers required")
	}
	if c.Topic == "" {
		return errors.New(errors.CodeConfigInvalid, "kafka: topic required")
	}
	if c.GroupID == "" {
		return errors.New(errors.CodeConfigInvalid, "kafka: group_id required")
	}
	if c.AutoOffsetReset != "" && c.AutoOffsetReset != "earliest" && c.AutoOffsetReset != "latest" {
		return errors.New(errors.CodeConfigInvalid, "kafka: auto_offset_reset must be earliest or latest")
	}
	if c.SASLEnabled && c.SASLMechanism == "" {
		return errors.New(errors.CodeConfigInvalid, "kafka: sasl_mechanism required when sasl is enabled")
	}
	return nil
}

// Source is a relabuf.PullSource[Record] backed by a Kafka consumer-group
// reader. Pull fetches exactly one message per invocation, matching the
// core's "invoked at most once concurrently" contract (§6).
type Source struct {
	reader ReaderInterface
	logger logging.Logger

	mu      sync.Mutex
	pending []kafka.Message // messages fetched but not yet confirmed
}

// NewSource builds a Source from cfg. logger receives operational
// diagnostics; the source itself never blocks retry decisions on logging.
func NewSource(cfg Config, logger logging.Logger) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 * 1024 * 1024
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: []string{cfg.Topic},
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		StartOffset: kafka.FirstOffset,
	}
	if cfg.AutoOffsetReset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}

	dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	if cfg.TLSEnabled {
		tlsConfig := &tls.Config{InsecureSkipVerify: true}
		if cfg.TLSCertPath != "" {
			if caCert, err := os.ReadFile(cfg.TLSCertPath); err == nil {
				pool := x509.NewCertPool()
				pool.AppendCertsFromPEM(caCert)
				tlsConfig.RootCAs = pool
				tlsConfig.InsecureSkipVerify = false
			}
		}
		dialer.TLS = tlsConfig
	}
	if cfg.SASLEnabled {
		var mech sasl.Mechanism
		var err error
		switch cfg.SASLMechanism {
		case "PLAIN":
			mech = plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}
		case "SCRAM-SHA-256":
			mech, err = scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
		case "SCRAM-SHA-512":
			mech, err = scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
		default:
			err = errors.New(errors.CodeConfigInvalid, "kafka: unsupported sasl mechanism "+cfg.SASLMechanism)
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfigInvalid, "kafka: failed to build SASL mechanism")
		}
		dialer.SASLMechanism = mech
	}
	readerCfg.Dialer = dialer

	return &Source{
		reader: kafka.NewReader(readerCfg),
		logger: logger,
	}, nil
}

// Pull implements relabuf.PullSource[Record]. It fetches one message and
// remembers it uncommitted; the caller commits it later via Confirm once
// the Released batch it landed in has been successfully processed.
func (s *Source) Pull(ctx context.Context) (Record, error) {
	m, err := s.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Record{}, ctx.Err()
		}
		return Record{}, errors.Wrap(err, errors.CodeSourceUnavailable, "kafka: fetch message failed")
	}

	s.mu.Lock()
	s.pending = append(s.pending, m)
	s.mu.Unlock()

	return Record{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Time,
		message:   m,
	}, nil
}

// Confirm commits the Kafka offset of every record in a successfully
// processed batch. It is the confirm() half of §6's collaborator contract.
func (s *Source) Confirm(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, len(records))
	for i, r := range records {
		msgs[i] = r.message
	}
	s.forget(msgs)
	if err := s.reader.CommitMessages(ctx, msgs...); err != nil {
		return errors.Wrap(err, errors.CodeSourceUnavailable, "kafka: commit messages failed")
	}
	return nil
}

// Return is the return_on_err() half of §6's collaborator contract.
// It makes no Kafka call; it only drops the records from the
// fetched-but-unconfirmed bookkeeping. The records stay uncommitted and the Release State
// already moved them back into the in-process pending buffer (I4), so the
// next successful Confirm will commit them once they are redelivered from
// memory. Re-reading from Kafka across a process restart is out of scope
// (spec.md §1 Non-goals).
func (s *Source) Return(records []Record) {
	s.forget(recordsToMessages(records))
}

func (s *Source) forget(msgs []kafka.Message) {
	if len(msgs) == 0 {
		return
	}
	committed := make(map[int64]struct{}, len(msgs))
	for _, m := range msgs {
		committed[m.Offset] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.pending[:0]
	for _, m := range s.pending {
		if _, ok := committed[m.Offset]; !ok {
			remaining = append(remaining, m)
		}
	}
	s.pending = remaining
}

func recordsToMessages(records []Record) []kafka.Message {
	msgs := make([]kafka.Message, len(records))
	for i, r := range records {
		msgs[i] = r.message
	}
	return msgs
}

// Close releases the underlying reader connection.
func (s *Source) Close() error {
	return s.reader.Close()
}
