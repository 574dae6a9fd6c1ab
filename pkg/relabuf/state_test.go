package relabuf

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(clock Clock, bo Backoff) *releaseState[int] {
	return newReleaseState[int](Config{
		SoftCap:      3,
		HardCap:      5,
		ReleaseAfter: 5 * time.Second,
	}, bo, clock)
}

func TestReleaseState_EmptyPendingNotReady(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	_, ready := s.isReady()
	assert.False(t, ready)
}

func TestReleaseState_EmptyPendingWithErrIsTerm(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	s.setErr(errors.New("boom"))
	reason, ready := s.isReady()
	require.True(t, ready)
	assert.Equal(t, ReasonTerm, reason)
}

func TestReleaseState_SizeRelease(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	s.addItem(1)
	s.addItem(2)
	_, ready := s.isReady()
	assert.False(t, ready, "below soft cap should not be ready")

	s.addItem(3)
	reason, ready := s.isReady()
	require.True(t, ready)
	assert.Equal(t, ReasonSize, reason)
}

func TestReleaseState_TimeRelease(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	s.addItem(1)
	_, ready := s.isReady()
	assert.False(t, ready)

	clock.advance(5 * time.Second)
	reason, ready := s.isReady()
	require.True(t, ready)
	assert.Equal(t, ReasonTime, reason)
}

func TestReleaseState_ErrWithPendingStillReleasesAsTerm(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	s.addItem(1)
	s.setErr(errors.New("upstream closed"))
	reason, ready := s.isReady()
	require.True(t, ready)
	assert.Equal(t, ReasonTerm, reason)
}

func TestReleaseState_ErrIsStickyOnceSet(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	first := errors.New("first")
	second := errors.New("second")
	s.setErr(first)
	s.setErr(second)
	assert.Equal(t, first, s.err)
}

func TestReleaseState_CanReceive(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	assert.True(t, s.canReceive())
	s.addItem(1)
	s.addItem(2)
	s.addItem(3)
	assert.False(t, s.canReceive(), "at soft cap, should not receive more")

	s2 := newTestState(clock, nil)
	s2.setErr(errors.New("boom"))
	assert.False(t, s2.canReceive(), "terminal state should not receive")
}

func TestReleaseState_ConsumeDrainsAndResetsClock(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	s.addItem(1)
	s.addItem(2)
	clock.advance(2 * time.Second)

	elapsed, items := s.consume()
	assert.Equal(t, 2*time.Second, elapsed)
	assert.Equal(t, []int{1, 2}, items)
	assert.Empty(t, s.pending)

	// lastOKConsume was reset: no further time has elapsed.
	elapsed2, _ := s.consume()
	assert.Equal(t, time.Duration(0), elapsed2)
}

type stubBackoff struct {
	steps     []time.Duration
	i         int
	resetCall int
}

func (b *stubBackoff) NextBackOff() time.Duration {
	if b.i >= len(b.steps) {
		return Stop
	}
	d := b.steps[b.i]
	b.i++
	return d
}

func (b *stubBackoff) Reset() {
	b.resetCall++
	b.i = 0
}

func TestReleaseState_ReturnOnErrAppendsAndArmsBackoff(t *testing.T) {
	clock := newFakeClock()
	bo := &stubBackoff{steps: []time.Duration{500 * time.Millisecond}}
	s := newTestState(clock, bo)

	s.addItem(1)
	s.addItem(2)
	_, items := s.consume()

	s.returnOnErr(items)
	assert.True(t, s.backoffArmed)
	assert.Equal(t, 500*time.Millisecond, s.nextBackoff)
	assert.Equal(t, []int{1, 2}, s.pending)

	// New arrivals during processing are appended *after* the returned
	// items land back — i.e. returned items stay where they were relative
	// to what had already accumulated.
	s.addItem(3)
	assert.Equal(t, []int{1, 2, 3}, s.pending)
}

func TestReleaseState_ReturnOnErrWithoutBackoffRetriesImmediately(t *testing.T) {
	clock := newFakeClock()
	s := newTestState(clock, nil)

	s.addItem(1)
	_, items := s.consume()
	s.returnOnErr(items)

	assert.False(t, s.backoffArmed)
	// No backoff gate: the ordinary time rule fires once release_after
	// has passed since the consume.
	clock.advance(5 * time.Second)
	reason, ready := s.isReady()
	require.True(t, ready)
	assert.Equal(t, ReasonTime, reason, "no backoff armed: size/time rules apply immediately")
}

func TestReleaseState_BackoffGatesReleaseUntilElapsed(t *testing.T) {
	clock := newFakeClock()
	bo := &stubBackoff{steps: []time.Duration{500 * time.Millisecond}}
	s := newTestState(clock, bo)

	s.addItem(1)
	s.addItem(2)
	s.addItem(3)
	_, items := s.consume()
	s.returnOnErr(items)

	_, ready := s.isReady()
	assert.False(t, ready, "backoff not yet elapsed")

	clock.advance(400 * time.Millisecond)
	_, ready = s.isReady()
	assert.False(t, ready)

	clock.advance(200 * time.Millisecond)
	reason, ready := s.isReady()
	require.True(t, ready)
	assert.Equal(t, ReasonSize, reason)
}

func TestReleaseState_ConfirmResetsBackoff(t *testing.T) {
	clock := newFakeClock()
	bo := &stubBackoff{steps: []time.Duration{500 * time.Millisecond, time.Second}}
	s := newTestState(clock, bo)

	s.addItem(1)
	_, items := s.consume()
	s.returnOnErr(items)
	assert.Equal(t, 500*time.Millisecond, s.nextBackoff)

	s.confirm()
	assert.False(t, s.backoffArmed)
	assert.Equal(t, 1, bo.resetCall)
	assert.Equal(t, 0, bo.i, "reset rewinds the step counter")
}

func TestReleaseState_BackoffStopTreatedAsNoBackoff(t *testing.T) {
	clock := newFakeClock()
	bo := &stubBackoff{steps: nil} // NextBackOff always returns Stop
	s := newTestState(clock, bo)

	s.addItem(1)
	_, items := s.consume()
	s.returnOnErr(items)

	assert.False(t, s.backoffArmed, "exhausted backoff is not terminal, just immediate retry")
}
