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

func newTestExecutor(threshold int, cooldown time.Duration) *Executor {
	breaker := NewBreaker(BreakerConfig{FailureThreshold: threshold, Cooldown: cooldown})
	return NewExecutor(breaker, WithMaxAttempts(3), WithBaseDelay(time.Millisecond))
}

func TestExecutor_Success(t *testing.T) {
	e := newTestExecutor(5, time.Minute)

	calls := 0
	err := e.Do(context.Background(), "search", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateClosed, e.State("search"))
}

func TestExecutor_TransientRetriedThenSucceeds(t *testing.T) {
	e := newTestExecutor(5, time.Minute)

	calls := 0
	err := e.Do(context.Background(), "search", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return core.Transient(errors.New("timeout"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, StateClosed, e.State("search"), "success resets the failure counter")
}

func TestExecutor_PermanentNotRetriedButCounted(t *testing.T) {
	e := newTestExecutor(2, time.Minute)

	calls := 0
	boom := core.Permanent(errors.New("bad request"))
	do := func() error {
		return e.Do(context.Background(), "search", func(ctx context.Context) error {
			calls++
			return boom
		})
	}

	require.Error(t, do())
	assert.Equal(t, 1, calls, "permanent errors must not be retried")

	require.Error(t, do())
	assert.Equal(t, StateOpen, e.State("search"), "permanent failures count toward the breaker")
}

func TestExecutor_FailsFastWhenOpen(t *testing.T) {
	e := newTestExecutor(1, time.Minute)

	_ = e.Do(context.Background(), "filter", func(ctx context.Context) error {
		return core.Permanent(errors.New("boom"))
	})
	require.Equal(t, StateOpen, e.State("filter"))

	calls := 0
	start := time.Now()
	err := e.Do(context.Background(), "filter", func(ctx context.Context) error {
		calls++
		return nil
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls, "no network attempt while open")
	assert.Less(t, elapsed, 10*time.Millisecond)
}

func TestExecutor_EachAttemptFeedsBreaker(t *testing.T) {
	// Threshold 3 with 3 retry attempts: a single Do call can trip the breaker.
	e := newTestExecutor(3, time.Minute)

	err := e.Do(context.Background(), "rank", func(ctx context.Context) error {
		return core.Transient(errors.New("timeout"))
	})

	require.Error(t, err)
	assert.Equal(t, StateOpen, e.State("rank"))
}

func TestExecutor_HalfOpenTrialAfterCooldown(t *testing.T) {
	e := newTestExecutor(1, 20*time.Millisecond)

	_ = e.Do(context.Background(), "search", func(ctx context.Context) error {
		return core.Permanent(errors.New("boom"))
	})
	require.Equal(t, StateOpen, e.State("search"))

	time.Sleep(30 * time.Millisecond)

	calls := 0
	err := e.Do(context.Background(), "search", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "exactly one trial call")
	assert.Equal(t, StateClosed, e.State("search"))
}

func TestExecutor_RecordFailure(t *testing.T) {
	e := newTestExecutor(1, time.Minute)
	e.RecordFailure("filter")
	assert.Equal(t, StateOpen, e.State("filter"))
}
