package httpclient

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryPolicy is a reusable retry/backoff schedule. The fetch client uses the
// default ceiling; the translator reuses the same policy with a lower one.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	// Jitter adds up to Jitter*delay of random extra wait per attempt.
	Jitter float64

	// Sleep is injectable for tests; nil means a context-aware timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the standard fetch schedule: maxAttempts tries,
// 2s base delay doubling per attempt, capped at 16s.
func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   2 * time.Second,
		Multiplier:  2,
		MaxDelay:    16 * time.Second,
		Jitter:      0.3,
	}
}

// WithMaxAttempts returns a copy of the policy with a different attempt ceiling.
func (p RetryPolicy) WithMaxAttempts(n int) RetryPolicy {
	p.MaxAttempts = n
	return p
}

// Delay returns the wait before retry number attempt (1-based: the delay
// after the first failure is Delay(1)).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * mult)
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn up to MaxAttempts times, sleeping the backoff schedule between
// attempts. Terminal errors (not retryable) stop the loop immediately.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == attempts {
			return lastErr
		}

		delay := p.Delay(attempt)
		if p.Jitter > 0 {
			delay += time.Duration(rand.Float64() * p.Jitter * float64(delay))
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable is implemented by errors that know whether another attempt may help.
type retryable interface {
	IsRetryable() bool
}

// IsRetryable reports whether err is worth another attempt. Errors that do not
// classify themselves are treated as retryable (transport-level failures).
func IsRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return true
}
