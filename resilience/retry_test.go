package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/citesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_Success(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := Retry(context.Background(), operation, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetry_EventualSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return core.Transient(errors.New("temporary error"))
		}
		return nil
	}

	err := Retry(context.Background(), operation, 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return core.Transient(errors.New("persistent error"))
	}

	err := Retry(context.Background(), operation, 3, time.Millisecond)
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetry_PermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return core.Permanent(errors.New("bad request"))
	}

	err := Retry(context.Background(), operation, 5, time.Millisecond)
	require.Error(t, err)
	assert.True(t, core.IsPermanent(err))
	assert.Equal(t, 1, attempts, "permanent errors must not be retried")
}

func TestRetry_UnclassifiedErrorNotRetried(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("plain error")
	}

	err := Retry(context.Background(), operation, 5, time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_InvalidMaxAttempts(t *testing.T) {
	err := Retry(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel after second attempt
		}
		return core.Transient(errors.New("error"))
	}

	err := Retry(ctx, operation, 10, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "should return context.Canceled")
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}
