package relabuf

import "time"

// Released is the handle a consumer receives from NextBatch. It owns the
// drained items and must be terminated by exactly one of Confirm or
// ReturnOnErr (§4.4). Dropping it without calling either loses the items
// as Confirm does, but leaves the backoff schedule as it was — always call
// one of the two terminators explicitly.
type Released[T any] struct {
	// Items are the drained items, in producer order (I5).
	Items []T
	// Reason explains why this batch was released.
	Reason Reason
	// Elapsed is the duration since the prior successful consume.
	Elapsed time.Duration

	state *releaseState[T]
}

// Confirm acknowledges successful processing: it clears the backoff
// schedule and resets it to its initial step (I4).
func (r *Released[T]) Confirm() {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.confirm()
}

// ReturnOnErr reports a processing failure: the items are moved back into
// the Release State's pending buffer and the backoff step is advanced. The
// next NextBatch call will not complete before elapsed-since-last-ok-consume
// reaches the newly armed backoff delay.
func (r *Released[T]) ReturnOnErr() {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.returnOnErr(r.Items)
}
