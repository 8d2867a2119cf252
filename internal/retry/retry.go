// Package retry provides bounded retry logic with configurable backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxRetries is the maximum number of retry attempts after the first call.
	MaxRetries int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// Multiplier grows the backoff between attempts. A multiplier of 1.0
	// gives a fixed sleep between every attempt.
	Multiplier float64
	// JitterFraction is the fraction of the backoff used for jitter (0.0-1.0).
	JitterFraction float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// Fixed returns a configuration that sleeps the same duration between every
// attempt, the policy used for remote API calls.
func Fixed(maxRetries int, sleep time.Duration) Config {
	return Config{
		MaxRetries:     maxRetries,
		InitialBackoff: sleep,
		MaxBackoff:     sleep,
		Multiplier:     1.0,
	}
}

// ErrorClassifier reports whether an error is worth retrying.
type ErrorClassifier func(error) bool

// IsRetryable is the default classifier: context errors are permanent,
// everything else is retryable. Callers with domain knowledge should supply
// their own classifier.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Do executes fn, retrying per cfg while classifier reports the error as
// retryable. A nil classifier uses IsRetryable. Permanent errors are
// returned unchanged after a single attempt; exhausting the budget returns
// a *RetryableError wrapping the last cause.
func Do(ctx context.Context, cfg Config, classifier ErrorClassifier, fn func(context.Context) error) error {
	if classifier == nil {
		classifier = IsRetryable
	}

	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !classifier(err) {
			return err
		}

		if attempt == cfg.MaxRetries {
			break
		}

		sleep := backoff + jitter(backoff, cfg.JitterFraction)
		if sleep > cfg.MaxBackoff {
			sleep = cfg.MaxBackoff
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return &RetryableError{Err: lastErr, Retries: cfg.MaxRetries}
}

// jitter returns a random duration in [-fraction*d, +fraction*d].
func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return 0
	}
	spread := float64(d) * fraction
	return time.Duration((rand.Float64() - 0.5) * 2 * spread)
}

// RetryableError reports that the retry budget was exhausted. It wraps the
// last error encountered, so errors.Is and errors.As still see the cause.
type RetryableError struct {
	Err     error
	Retries int
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("failed after %d retries: %v", e.Retries, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}
