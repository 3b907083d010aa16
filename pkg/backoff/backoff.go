// Package backoff implements the rate-limit-aware retry wrapper used for every
// outbound vendor API call that may be throttled.
package backoff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxRetries is the number of additional attempts after the first one.
	DefaultMaxRetries = 5
	// DefaultInitialWait is the wait before the second attempt; it doubles on
	// each subsequent retry.
	DefaultInitialWait = 60 * time.Second
)

// RateLimited is implemented by vendor error types that can report throttling
// from structured fields (HTTP status, vendor error codes).
type RateLimited interface {
	RateLimited() bool
}

// ExhaustedError is returned once every retry budget has been spent on
// rate-limit failures. It wraps the last vendor error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("max retries exceeded due to rate limits after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// IsRateLimit classifies an error as a rate-limit signal. Structured vendor
// errors are consulted first; everything else falls back to a case-insensitive
// substring match on "rate", which tolerates SDK-agnostic error surfaces.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var limited RateLimited
	if errors.As(err, &limited) && limited.RateLimited() {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "rate")
}

// Caller retries a thunk with exponential backoff whenever the failure
// classifies as a rate limit. Non-rate failures surface immediately.
type Caller struct {
	MaxRetries  int
	InitialWait time.Duration

	// Classify overrides the rate-limit predicate. Defaults to IsRateLimit.
	Classify func(error) bool

	// Sleeper overrides the wait between attempts. Tests inject a recorder
	// here; the default waits on a timer and honors context cancellation.
	Sleeper func(ctx context.Context, wait time.Duration) error
}

// New returns a Caller with the default retry budget (5 retries, 60s initial
// wait).
func New() *Caller {
	return &Caller{
		MaxRetries:  DefaultMaxRetries,
		InitialWait: DefaultInitialWait,
	}
}

// Call executes fn, retrying rate-limited failures with waits of
// InitialWait * 2^attempt. It makes at most MaxRetries+1 attempts and sleeps
// only between attempts, never after the final one.
func Call[T any](ctx context.Context, c *Caller, fn func() (T, error)) (T, error) {
	var zero T

	classify := c.Classify
	if classify == nil {
		classify = IsRateLimit
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if !classify(err) {
			return zero, err
		}

		lastErr = err
		if attempt == c.MaxRetries {
			break
		}

		wait := c.InitialWait << attempt
		logrus.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"wait":    wait.String(),
		}).Warn("rate limit hit, backing off before retrying")

		if err := c.sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, &ExhaustedError{Attempts: c.MaxRetries + 1, Err: lastErr}
}

func (c *Caller) sleep(ctx context.Context, wait time.Duration) error {
	if c.Sleeper != nil {
		return c.Sleeper(ctx, wait)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
