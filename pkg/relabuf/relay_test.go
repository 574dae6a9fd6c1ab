package relabuf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInboundRelay_ClosedChannelObservedOnClose(t *testing.T) {
	src := newChanSource[int]()
	ctx := context.Background()

	r := newInboundRelay[int](ctx, 5, src)
	r.close()

	_, ok := <-r.ch
	assert.False(t, ok, "channel must be closed once the pull task exits")
}

func TestInboundRelay_PreservesOrder(t *testing.T) {
	src := newChanSource[int]()
	ctx := context.Background()

	r := newInboundRelay[int](ctx, 5, src)
	defer r.close()

	for i := 0; i < 3; i++ {
		src.push(i)
	}

	for i := 0; i < 3; i++ {
		select {
		case item := <-r.ch:
			assert.NoError(t, item.err)
			assert.Equal(t, i, item.value)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for relayed item")
		}
	}
}
