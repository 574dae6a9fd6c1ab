package relabuf

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// pollInterval is the fixed polling step of the Release Driver (§4.3). It is
// not configurable: the spec fixes it at "bounded duration ≈ 100 ms" to keep
// is_ready the single source of truth for release decisions.
const pollInterval = 100 * time.Millisecond

// Backoff produces a sequence of retry delays for returned batches. Reset
// restores the sequence to its initial step; NextBackOff reports the next
// delay, or Stop if no further retry should be scheduled (the caller then
// treats the batch as immediately retryable).
type Backoff interface {
	NextBackOff() time.Duration
	Reset()
}

// Stop mirrors backoff.Stop: returned by a Backoff.NextBackOff to indicate
// the retry budget (MaxElapsedTime) has been exhausted. The Release State
// treats Stop identically to "no backoff configured" per §7's
// backoff-exhaustion clause — it is not a terminal condition.
const Stop = backoff.Stop

// ExponentialBackoff configures a geometric retry delay schedule, mirroring
// the collaborator contract of §6: an initial interval that grows by
// Multiplier on each successive call, jittered by RandomizationFactor,
// capped at MaxInterval, with an optional overall MaxElapsedTime budget.
type ExponentialBackoff struct {
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
	// MaxElapsedTime, if non-zero, bounds the total time NextBackOff will
	// keep producing delays; once exceeded it returns Stop.
	MaxElapsedTime time.Duration
}

// NewBackoff builds the cenkalti/backoff-backed Backoff this package's
// Release State uses by default. It is exported so callers can construct
// one outside of Config (e.g. to inspect its current delay in tests).
func (e ExponentialBackoff) NewBackoff() Backoff {
	b := backoff.NewExponentialBackOff()
	if e.InitialInterval > 0 {
		b.InitialInterval = e.InitialInterval
	}
	if e.MaxInterval > 0 {
		b.MaxInterval = e.MaxInterval
	}
	if e.Multiplier >= 1.0 {
		b.Multiplier = e.Multiplier
	}
	// A zero RandomizationFactor means no jitter, so it is copied as is.
	b.RandomizationFactor = e.RandomizationFactor
	// A zero MaxElapsedTime in cenkalti/backoff means "never stop", which
	// matches an unset budget in our Config.
	b.MaxElapsedTime = e.MaxElapsedTime
	b.Reset()
	return b
}

// Config configures a Buffer. It is consumed once on construction and is
// immutable thereafter (§3).
type Config struct {
	// ReleaseAfter is the maximum age a pending item may reach before a
	// Time release fires.
	ReleaseAfter time.Duration
	// SoftCap is the pending-item count that triggers a Size release. Must
	// be at least 1.
	SoftCap int
	// HardCap is the capacity of the Inbound Relay. Must be at least
	// SoftCap.
	HardCap int
	// Backoff, if non-nil, governs the delay schedule applied after a
	// ReturnOnErr. A nil Backoff means returned batches are retried on the
	// very next release opportunity.
	Backoff *ExponentialBackoff
}

// validate rejects configurations the Release State cannot honor. soft_cap
// == 0 is explicitly called out by the design notes as undefined behavior
// that implementers should reject at construction.
func (c Config) validate() error {
	if c.SoftCap < 1 {
		return ErrInvalidConfig
	}
	if c.HardCap < c.SoftCap {
		return ErrInvalidConfig
	}
	if c.ReleaseAfter <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
