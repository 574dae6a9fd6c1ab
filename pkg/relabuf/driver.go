package relabuf

import (
	"context"
	"time"
)

// Buffer is the release buffer. Construct one with New and drain it by
// calling NextBatch repeatedly until it returns a non-nil error, at which
// point the pull source has reported terminal upstream closure and every
// pending item has been released.
type Buffer[T any] struct {
	state *releaseState[T]
	relay *inboundRelay[T]
}

// New constructs a Buffer over source. ctx governs the lifetime of the
// background pull task; cancelling it (or calling Close) stops the relay
// and causes NextBatch to eventually observe a terminal condition once
// pending drains: ErrRelayClosed, or the cancellation error the source's
// last Pull returned.
func New[T any](ctx context.Context, cfg Config, source PullSource[T]) (*Buffer[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var bo Backoff
	if cfg.Backoff != nil {
		bo = cfg.Backoff.NewBackoff()
	}

	state := newReleaseState[T](cfg, bo, systemClock{})
	relay := newInboundRelay[T](ctx, cfg.HardCap, source)

	return &Buffer[T]{state: state, relay: relay}, nil
}

// Close stops the Inbound Relay's pull task and waits for it to exit. It
// does not drain or discard pending items; callers that want a clean
// terminal drain should instead let the pull source itself report the
// terminal error.
func (b *Buffer[T]) Close() {
	b.relay.close()
}

// NextBatch implements the Release Driver algorithm of §4.3: poll the
// Release State at a fixed ~100ms cadence, folding arrivals from the
// Inbound Relay into pending between polls, until a batch is ready. It
// returns the recorded terminal error (the source's error, or
// ErrRelayClosed) once the buffer has nothing left to release, or ctx.Err()
// if ctx ends first.
func (b *Buffer[T]) NextBatch(ctx context.Context) (*Released[T], error) {
	for {
		b.state.mu.Lock()
		reason, ready := b.state.isReady()
		if ready {
			b.state.mu.Unlock()
			return b.release(reason)
		}
		canReceive := b.state.canReceive()
		b.state.mu.Unlock()

		if err := b.pollStep(ctx, canReceive); err != nil {
			return nil, err
		}
	}
}

// pollStep performs one ~100ms polling iteration: if the state can accept
// another item, it races the poll timer against a receive from the relay;
// otherwise it simply sleeps out the interval, deliberately not draining
// the relay past the soft cap so that backpressure is applied upstream.
func (b *Buffer[T]) pollStep(ctx context.Context, canReceive bool) error {
	timer := time.NewTimer(pollInterval)
	defer timer.Stop()

	if !canReceive {
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case item, ok := <-b.relay.ch:
		b.state.mu.Lock()
		switch {
		case !ok:
			b.state.setErr(ErrRelayClosed)
		case item.err != nil:
			b.state.setErr(item.err)
		default:
			b.state.addItem(item.value)
		}
		b.state.mu.Unlock()
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release reacquires the lock, drains pending, and either surfaces the
// stored terminal error (Term reason with no pending items) or hands back
// a Released batch.
func (b *Buffer[T]) release(reason Reason) (*Released[T], error) {
	b.state.mu.Lock()
	elapsed, items := b.state.consume()
	termErr := b.state.err
	b.state.mu.Unlock()

	if reason == ReasonTerm && len(items) == 0 {
		return nil, termErr
	}

	return &Released[T]{
		Items:   items,
		Reason:  reason,
		Elapsed: elapsed,
		state:   b.state,
	}, nil
}
