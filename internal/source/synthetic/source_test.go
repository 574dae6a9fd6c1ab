package synthetic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/let4be/relabuf/internal/platform/logging"
	"github.com/let4be/relabuf/pkg/errors"
)

func TestConfig_Validate_RejectsNegativeEmitInterval(t *testing.T) {
	err := Config{EmitInterval: -time.Millisecond}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
}

func TestConfig_Validate_RejectsNegativeErrorEvery(t *testing.T) {
	err := Config{ErrorEvery: -1}.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_RejectsNegativeLimit(t *testing.T) {
	err := Config{Limit: -1}.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_Accepts(t *testing.T) {
	err := Config{EmitInterval: time.Millisecond, Limit: 4}.Validate()
	require.NoError(t, err)
}

func TestSource_Pull_EmitsSequentialValues(t *testing.T) {
	cfg := Config{EmitInterval: 0, Limit: 3}
	src := NewSource(cfg, logging.NewNopLogger())

	ctx := context.Background()
	for want := uint64(0); want < 3; want++ {
		got, err := src.Pull(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSource_Pull_ExhaustsAfterLimit(t *testing.T) {
	cfg := Config{EmitInterval: 0, Limit: 2}
	src := NewSource(cfg, logging.NewNopLogger())
	ctx := context.Background()

	_, err := src.Pull(ctx)
	require.NoError(t, err)
	_, err = src.Pull(ctx)
	require.NoError(t, err)

	_, err = src.Pull(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSourceExhausted))

	// Exhaustion is permanent: every subsequent Pull keeps failing.
	_, err = src.Pull(ctx)
	require.Error(t, err)
}

func TestSource_Pull_UnboundedWhenLimitIsZero(t *testing.T) {
	cfg := Config{EmitInterval: 0, Limit: 0}
	src := NewSource(cfg, logging.NewNopLogger())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, err := src.Pull(ctx)
		require.NoError(t, err)
	}
}

func TestSource_Pull_SimulatesTransientErrorEveryNth(t *testing.T) {
	cfg := Config{EmitInterval: 0, ErrorEvery: 3}
	src := NewSource(cfg, logging.NewNopLogger())
	ctx := context.Background()

	_, err := src.Pull(ctx)
	require.NoError(t, err)
	_, err = src.Pull(ctx)
	require.NoError(t, err)

	_, err = src.Pull(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSourceUnavailable))

	// The error does not terminate the source: the next pull succeeds.
	_, err = src.Pull(ctx)
	require.NoError(t, err)
}

func TestSource_Pull_RespectsContextCancellation(t *testing.T) {
	cfg := Config{EmitInterval: time.Hour, Limit: 1}
	src := NewSource(cfg, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Pull(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
