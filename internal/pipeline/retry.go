package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"tournament-stats/internal/apierr"
	"tournament-stats/internal/ratelimit"
)

// maxBackoff caps the exponential delay between attempts.
const maxBackoff = 30 * time.Second

// retryPolicy decides how many times a call is attempted and how long to
// wait in between.
type retryPolicy struct {
	clock       ratelimit.Clock
	baseDelay   time.Duration
	maxAttempts int
	// rateLimitRetries bounds retries of ErrRateLimited separately; a
	// negative value means it shares maxAttempts with transient failures.
	rateLimitRetries int
}

// backoff returns the delay before attempt n (1-based retry count).
func (p retryPolicy) backoff(n int) time.Duration {
	d := p.baseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// do runs fn until it succeeds, fails with a non-retryable error, or the
// budget is spent. It reports whether the budget ran out along with the
// last error.
func (p retryPolicy) do(ctx context.Context, what string, fn func() error) (exhausted bool, err error) {
	attempts := 0
	rateLimited := 0
	for {
		attempts++
		err = fn()
		if err == nil || !apierr.Retryable(err) {
			return false, err
		}
		if errors.Is(err, apierr.ErrRateLimited) && p.rateLimitRetries >= 0 {
			rateLimited++
			if rateLimited > p.rateLimitRetries {
				return true, err
			}
		} else if attempts >= p.maxAttempts {
			return true, err
		}

		wait := apierr.RetryAfter(err)
		if wait <= 0 {
			wait = p.backoff(attempts)
		}
		log.Printf("[Pipeline] %s failed (%s), retrying in %v", what, apierr.Kind(err), wait)
		if serr := p.clock.Sleep(ctx, wait); serr != nil {
			return false, serr
		}
	}
}
