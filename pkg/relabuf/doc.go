// Package relabuf implements a release buffer: a concurrency primitive that
// sits between an upstream producer of individual items and a downstream
// consumer of item batches.
//
// A Buffer accumulates items pulled from a caller-supplied PullSource and
// decides when a batch is ready to be released — by size, by age, or because
// the source reported a terminal upstream closure. NextBatch hands the batch
// to the consumer together with a Released handle that must be terminated by
// exactly one of Confirm or ReturnOnErr. Confirm resets the retry backoff;
// ReturnOnErr pushes the items back onto the pending buffer and advances the
// backoff schedule so the next release waits out the computed delay.
//
// The buffer never logs and never persists items across process restarts;
// observability and durability are the caller's responsibility.
package relabuf
