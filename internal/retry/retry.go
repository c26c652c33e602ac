// Package retry runs operations with exponential backoff. The server uses it
// to wait for its databases at startup.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ibor-valuation/internal/errors"
	"github.com/ibor-valuation/internal/logging"
)

// Config configures retry behavior
type Config struct {
	MaxAttempts  int           // attempts including the first
	InitialDelay time.Duration // delay before the first retry
	MaxDelay     time.Duration // cap on any single delay
	Multiplier   float64       // backoff growth per attempt
}

// DefaultConfig waits 1s, 2s, 4s, 8s between five attempts
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Result describes a finished retry loop
type Result struct {
	Attempts      int
	TotalDuration time.Duration
	LastError     error
}

// Func is one attempt. attempt starts at 1.
type Func func(ctx context.Context, attempt int) error

// Do calls fn until it succeeds, the attempts run out, ctx is done, or fn
// returns an error the caller made (validation, not found). Those are
// returned at once since repeating the call cannot fix them.
func Do(ctx context.Context, cfg Config, operation string, fn Func) (Result, error) {
	logger := logging.FromContext(ctx).WithField("operation", operation)
	start := time.Now()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var res Result
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		res.Attempts = attempt
		err := fn(ctx, attempt)
		if err == nil {
			res.TotalDuration = time.Since(start)
			res.LastError = nil
			if attempt > 1 {
				logger.WithFields(map[string]interface{}{
					"attempts":      attempt,
					"totalDuration": res.TotalDuration.String(),
				}).Info("Operation succeeded after retry")
			}
			return res, nil
		}
		res.LastError = err

		if errors.IsUserError(err) {
			break
		}
		if attempt == cfg.MaxAttempts {
			logger.WithError(err).WithField("attempts", attempt).Error("Operation failed after max retry attempts")
			break
		}

		delay := Delay(cfg, attempt)
		logger.WithError(err).WithFields(map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": cfg.MaxAttempts,
			"delay":       delay.String(),
		}).Warn("Operation failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			res.LastError = ctx.Err()
			res.TotalDuration = time.Since(start)
			return res, fmt.Errorf("%s: cancelled after %d attempts: %w", operation, attempt, ctx.Err())
		}
	}

	res.TotalDuration = time.Since(start)
	return res, fmt.Errorf("%s: failed after %d attempts: %w", operation, res.Attempts, res.LastError)
}

// Delay is the wait after the given failed attempt:
// InitialDelay * Multiplier^(attempt-1), capped at MaxDelay.
func Delay(cfg Config, attempt int) time.Duration {
	d := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.MaxDelay > 0 && d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	return time.Duration(d)
}

// Value retries fn and returns its value
func Value[T any](ctx context.Context, cfg Config, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	_, err := Do(ctx, cfg, operation, func(ctx context.Context, _ int) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
