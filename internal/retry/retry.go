// Package retry implements an explicit retry policy shared by the ingestion
// pipeline and the simulation engine: bounded attempts, exponential backoff
// with jitter, and a pluggable retryable-error predicate.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt; it doubles each
	// subsequent attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff. Zero means uncapped.
	MaxDelay time.Duration

	// Jitter adds a random duration in [0, Jitter) to each backoff so
	// concurrent workers don't retry in lockstep.
	Jitter time.Duration

	// Retryable decides whether an error is worth another attempt.
	// nil means every error is retryable.
	Retryable func(error) bool
}

// Default is the policy used for provider rate limits: 5 attempts, 2s base
// delay doubling per attempt, 1s jitter. Matches the ingestion contract.
var Default = Policy{
	MaxAttempts: 5,
	BaseDelay:   2 * time.Second,
	MaxDelay:    60 * time.Second,
	Jitter:      time.Second,
	Retryable:   RateLimited,
}

// Do runs fn until it succeeds, a non-retryable error occurs, attempts are
// exhausted, or ctx is done. The last error is returned on failure.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if sleepErr := sleep(ctx, p.backoff(attempt)); sleepErr != nil {
				return sleepErr
			}
		}

		if err = fn(); err == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}

	return fmt.Errorf("exhausted %d attempts: %w", attempts, err)
}

// backoff computes the delay before the given attempt (attempt >= 1).
func (p Policy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RateLimited reports whether err looks like a provider rate-limit signal.
// Providers surface these inconsistently, so this matches on the common
// markers rather than a typed error.
func RateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "quota")
}

// Transient reports whether err is worth retrying during a simulation task:
// rate limits plus timeouts and temporary provider hiccups.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if RateLimited(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "temporarily") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "502")
}
