package testutil

import (
	"context"
	"sync"
)

// FakeSource is a relabuf.PullSource[T] test double backed by a fixed
// sequence of items. Each Pull call returns the next queued item; once the
// queue is drained it returns Err (or blocks until ctx is cancelled if Err
// is nil), letting tests drive both the size/time release paths and
// terminal closure deterministically.
type FakeSource[T any] struct {
	mu    sync.Mutex
	items []T
	Err   error

	// PullCount is the number of times Pull has been called, including the
	// calls that returned Err.
	PullCount int
}

// NewFakeSource builds a FakeSource that yields items in order, then
// returns err on every call once items is exhausted.
func NewFakeSource[T any](items []T, err error) *FakeSource[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return &FakeSource[T]{items: cp, Err: err}
}

// Pull implements relabuf.PullSource[T].
func (f *FakeSource[T]) Pull(ctx context.Context) (T, error) {
	f.mu.Lock()
	f.PullCount++
	if len(f.items) > 0 {
		item := f.items[0]
		f.items = f.items[1:]
		f.mu.Unlock()
		return item, nil
	}
	err := f.Err
	f.mu.Unlock()

	var zero T
	if err != nil {
		return zero, err
	}

	<-ctx.Done()
	return zero, ctx.Err()
}

// Push appends an item to be returned by a future Pull call, letting tests
// feed items in after construction.
func (f *FakeSource[T]) Push(item T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
}
