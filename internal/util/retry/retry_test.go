package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithInitialDelay(time.Millisecond), WithMaxDelay(2*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExhaustsRetries(t *testing.T) {
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return errors.New("always failing")
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "always failing")
}

func TestFatalStopsRetrying(t *testing.T) {
	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return Fatal(errors.New("broken config"))
	}, WithInitialDelay(time.Millisecond))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsFatal(err))
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithExponentialBackoff(ctx, func() error {
		return errors.New("transient")
	}, WithInitialDelay(time.Hour))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
