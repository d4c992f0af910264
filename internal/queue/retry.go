package queue

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryConfig defines how publishing retries on broker errors.
type RetryConfig struct {
	MaxAttempts       int           `json:"max_attempts"`
	InitialDelay      time.Duration `json:"initial_delay"`
	MaxDelay          time.Duration `json:"max_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
	Jitter            bool          `json:"jitter"`
}

// DefaultRetryConfig retries a publish five times, from 500ms up to 10s.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:       5,
	InitialDelay:      500 * time.Millisecond,
	MaxDelay:          10 * time.Second,
	BackoffMultiplier: 2.0,
	Jitter:            true,
}

// delay returns the wait before the given attempt (1-based) is retried.
func (c RetryConfig) delay(attempt int) time.Duration {
	// Calculate delay with exponential backoff
	d := time.Duration(float64(c.InitialDelay) * math.Pow(c.BackoffMultiplier, float64(attempt-1)))

	// Cap at max delay
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}

	// Add up to ±10% jitter if enabled
	if c.Jitter && d > 0 {
		d += time.Duration(float64(d) * 0.1 * (2*rand.Float64() - 1))
	}
	return d
}

func publishWithRetry(ctx context.Context, b Broker, msg Message, cfg RetryConfig) error {
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lastErr = b.Publish(ctx, msg); lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts || errors.Is(lastErr, ErrBrokerClosed) {
			break
		}

		select {
		case <-time.After(cfg.delay(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
