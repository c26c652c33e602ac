package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibor-valuation/internal/errors"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	res, err := Do(context.Background(), fastConfig(5), "connect", func(ctx context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return stderrors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.NoError(t, res.LastError)
}

func TestDoGivesUp(t *testing.T) {
	boom := stderrors.New("connection refused")
	res, err := Do(context.Background(), fastConfig(3), "connect", func(ctx context.Context, attempt int) error {
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "connect: failed after 3 attempts")
	assert.Equal(t, 3, res.Attempts)
}

func TestDoStopsOnUserError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(5), "lookup", func(ctx context.Context, attempt int) error {
		calls++
		return errors.NewNotFoundError("portfolio", "P-ALPHA", "2025-01-02")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.IsNotFound(err))
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, cfg, "connect", func(ctx context.Context, attempt int) error {
			calls++
			return stderrors.New("down")
		})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not stop on cancellation")
	}
}

func TestDelay(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, Delay(cfg, 1))
	assert.Equal(t, 2*time.Second, Delay(cfg, 2))
	assert.Equal(t, 4*time.Second, Delay(cfg, 3))
	assert.Equal(t, 5*time.Second, Delay(cfg, 4))
}

func TestValue(t *testing.T) {
	attempts := 0
	v, err := Value(context.Background(), fastConfig(3), "ping", func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", stderrors.New("not yet")
		}
		return "pong", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "pong", v)
	assert.Equal(t, 2, attempts)
}
