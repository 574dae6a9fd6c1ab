package relabuf

import (
	"context"
	"time"
)

// PullSource is the single collaborator the Inbound Relay invokes. Pull is
// called at most once concurrently (§6); it must return either one item or
// an error signaling terminal upstream closure. A PullSource implementation
// is free to block on ctx; the relay cancels ctx when the buffer is
// dropped.
type PullSource[T any] interface {
	Pull(ctx context.Context) (T, error)
}

// PullSourceFunc adapts a plain function to PullSource.
type PullSourceFunc[T any] func(ctx context.Context) (T, error)

// Pull implements PullSource.
func (f PullSourceFunc[T]) Pull(ctx context.Context) (T, error) {
	return f(ctx)
}

// Clock is a monotonic time source, overridable in tests. The default used
// by New is the wall clock via time.Now, which is monotonic-backed on every
// platform Go supports.
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, backed by time.Now's monotonic reading.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
