// Package synthetic implements a zero-dependency relabuf.PullSource for
// tests and for `relabufd run --source=synthetic`, which needs no external
// broker or database. It reproduces the demo producer from the original
// relabuf crate's main.rs: items emitted at a steady, lightly jittered
// pace, with an optional simulated failure every N pulls. A relabuf.Buffer
// treats any Pull error as terminal closure, so when this source feeds a
// Buffer the first simulated failure ends the run; it does not reach the
// core's return-on-error/backoff path.
package synthetic

import (
	"context"
	"math/rand"
	"time"

	"github.com/let4be/relabuf/internal/platform/logging"
	"github.com/let4be/relabuf/pkg/errors"
)

// Config controls how many items Source emits, at what pace, and how often
// it simulates a collaborator hiccup. It mirrors config.SyntheticConfig.
type Config struct {
	// EmitInterval is the target delay between items. Pull jitters it by up
	// to ±20% so a fixed-rate source doesn't make every demo run identical.
	EmitInterval time.Duration
	// ErrorEvery, if non-zero, makes every ErrorEvery-th Pull return a
	// CodeSourceUnavailable error instead of an item; later Pulls emit
	// items again. A relabuf.Buffer stops pulling at the first such error
	// and reports it as its terminal error.
	ErrorEvery int
	// Limit is the number of items Pull will yield before reporting
	// terminal closure. 0 means unbounded.
	Limit int
}

// Validate rejects configurations Source cannot honor.
func (c Config) Validate() error {
	if c.EmitInterval < 0 {
		return errors.New(errors.CodeConfigInvalid, "synthetic: emit_interval must not be negative")
	}
	if c.ErrorEvery < 0 {
		return errors.New(errors.CodeConfigInvalid, "synthetic: error_every must not be negative")
	}
	if c.Limit < 0 {
		return errors.New(errors.CodeConfigInvalid, "synthetic: limit must not be negative")
	}
	return nil
}

// Source emits sequential uint64 values. Once Limit items have been
// emitted (Limit > 0), every subsequent Pull reports terminal closure.
// Unlike the Kafka/Redis/outbox sources it holds no external connection
// and needs no Confirm/Return bridge — there is no upstream to
// acknowledge back to.
type Source struct {
	cfg    Config
	logger logging.Logger
	count  int
	pulls  int
}

// NewSource builds a Source from cfg, which must already be valid.
func NewSource(cfg Config, logger logging.Logger) *Source {
	return &Source{cfg: cfg, logger: logger}
}

// Pull sleeps a jittered EmitInterval, then either returns a simulated
// error (every ErrorEvery-th call) or the next sequential item. Once Limit
// has been reached it returns a CodeSourceExhausted error without sleeping.
func (s *Source) Pull(ctx context.Context) (uint64, error) {
	if s.cfg.Limit > 0 && s.count >= s.cfg.Limit {
		return 0, errors.New(errors.CodeSourceExhausted, "synthetic: generator exhausted")
	}

	if err := s.sleep(ctx); err != nil {
		return 0, err
	}

	s.pulls++
	if s.cfg.ErrorEvery > 0 && s.pulls%s.cfg.ErrorEvery == 0 {
		return 0, errors.New(errors.CodeSourceUnavailable, "synthetic: simulated transient error")
	}

	item := uint64(s.count)
	s.count++
	s.logger.Debug("synthetic: emitted item", logging.Int("index", int(item)))
	return item, nil
}

func (s *Source) sleep(ctx context.Context) error {
	if s.cfg.EmitInterval <= 0 {
		return nil
	}

	jitter := time.Duration(float64(s.cfg.EmitInterval) * (rand.Float64()*0.4 - 0.2))
	delay := s.cfg.EmitInterval + jitter
	if delay < 0 {
		delay = 0
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
