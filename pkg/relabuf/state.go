package relabuf

import (
	"sync"
	"time"
)

// releaseState encapsulates all mutable state that determines when a batch
// is released. Every method below assumes the caller already holds mu for
// the duration of the call — releaseState has no internal locking of its
// own; the driver owns the single mutex (§5: "guarded by a single mutual-
// exclusion lock").
type releaseState[T any] struct {
	mu sync.Mutex

	pending       []T
	lastOKConsume time.Time
	err           error
	nextBackoff   time.Duration
	backoffArmed  bool

	softCap      int
	releaseAfter time.Duration
	backoff      Backoff
	clock        Clock
}

func newReleaseState[T any](cfg Config, backoff Backoff, clock Clock) *releaseState[T] {
	return &releaseState[T]{
		pending:       make([]T, 0, cfg.SoftCap),
		lastOKConsume: clock.Now(),
		softCap:       cfg.SoftCap,
		releaseAfter:  cfg.ReleaseAfter,
		backoff:       backoff,
		clock:         clock,
	}
}

// canReceive reports whether the driver may pull one more item from the
// Inbound Relay this poll iteration (§4.2).
func (s *releaseState[T]) canReceive() bool {
	return len(s.pending) < s.softCap && s.err == nil
}

// addItem appends a pulled item to pending. The caller must have observed
// canReceive() == true when the pull began.
func (s *releaseState[T]) addItem(item T) {
	s.pending = append(s.pending, item)
}

// isReady is a pure inspection implementing the seven-rule decision table
// of §4.2 verbatim.
func (s *releaseState[T]) isReady() (Reason, bool) {
	if len(s.pending) == 0 {
		if s.err != nil {
			return ReasonTerm, true
		}
		return 0, false
	}
	if s.backoffArmed {
		if s.clock.Now().Sub(s.lastOKConsume) < s.nextBackoff {
			return 0, false
		}
	}
	if s.err != nil {
		return ReasonTerm, true
	}
	if len(s.pending) >= s.softCap {
		return ReasonSize, true
	}
	if s.clock.Now().Sub(s.lastOKConsume) >= s.releaseAfter {
		return ReasonTime, true
	}
	return 0, false
}

// consume drains pending, resets lastOKConsume, and returns the elapsed
// duration since the previous successful consume together with the drained
// items. It does not touch the backoff schedule; that is the consumer's
// decision via confirm/returnOnErr on the resulting Released handle.
func (s *releaseState[T]) consume() (time.Duration, []T) {
	now := s.clock.Now()
	elapsed := now.Sub(s.lastOKConsume)
	items := s.pending
	s.pending = make([]T, 0, s.softCap)
	s.lastOKConsume = now
	return elapsed, items
}

// confirm clears the backoff schedule and resets it to its initial step.
func (s *releaseState[T]) confirm() {
	s.backoffArmed = false
	s.nextBackoff = 0
	if s.backoff != nil {
		s.backoff.Reset()
	}
}

// returnOnErr appends returned items back onto pending (§9: append, not
// prepend — this keeps the hot path append-only at the cost of strict FIFO
// across retries) and advances the backoff schedule.
func (s *releaseState[T]) returnOnErr(items []T) {
	s.pending = append(s.pending, items...)
	if s.backoff == nil {
		s.backoffArmed = false
		s.nextBackoff = 0
		return
	}
	next := s.backoff.NextBackOff()
	if next == Stop {
		// Backoff exhaustion is not a terminal condition (§7): treat it as
		// no backoff, i.e. retry on the very next release opportunity.
		s.backoffArmed = false
		s.nextBackoff = 0
		return
	}
	s.backoffArmed = true
	s.nextBackoff = next
}

// setErr records the terminal error if none is present yet. Once set, err
// is never cleared (I3).
func (s *releaseState[T]) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}
