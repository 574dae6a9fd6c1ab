package relabuf

import "errors"

// ErrInvalidConfig is returned by New when a Config fails validation.
var ErrInvalidConfig = errors.New("relabuf: invalid config")

// ErrRelayClosed is the synthetic terminal error observed by the Release
// Driver when the Inbound Relay's channel is closed and drained — it stands
// in for "cannot read from buffer channel" when no other source error was
// ever recorded.
var ErrRelayClosed = errors.New("relabuf: cannot read from buffer channel")

// ErrBufferClosed names the state of a buffer that has fully drained after
// a terminal upstream closure. NextBatch does not return it; it returns the
// recorded terminal error itself.
var ErrBufferClosed = errors.New("relabuf: buffer closed")
