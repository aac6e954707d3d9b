package transfer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/cloudcp/pkg/provider"
)

// Retry defaults. Two retries means three attempts total.
const (
	DefaultMaxRetries    = 2
	DefaultInitialDelay  = 1 * time.Second
	DefaultThrottleDelay = 2 * time.Second
)

// Retryer runs a single transfer attempt with bounded retries and exponential
// backoff.
//
// Classification: not-found and authorization failures are terminal (retrying
// cannot produce a different object); throttling is retriable with a longer
// initial delay; everything else (network, 5xx-style service errors) is
// retriable up to the limit. The backoff wait blocks only the calling worker.
type Retryer struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// InitialDelay is the first backoff wait; it doubles after every
	// retriable failure.
	InitialDelay time.Duration

	// ThrottleDelay replaces InitialDelay when the first failure was a
	// rate-limit response.
	ThrottleDelay time.Duration

	Logger *zap.Logger

	// sleep is swapped in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryer builds a Retryer with defaults filled in.
func NewRetryer(maxRetries int, logger *zap.Logger) Retryer {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return Retryer{
		MaxRetries:    maxRetries,
		InitialDelay:  DefaultInitialDelay,
		ThrottleDelay: DefaultThrottleDelay,
		Logger:        logger,
		sleep:         sleepCtx,
	}
}

// Do runs attempt up to MaxRetries+1 times. It returns the attempt count and
// the last error; all failure is represented as data, nothing escapes past
// this boundary.
func (r Retryer) Do(ctx context.Context, name string, attempt func() error) (int, error) {
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	delay := r.InitialDelay
	if delay <= 0 {
		delay = DefaultInitialDelay
	}

	var lastErr error
	attempts := 0
	for attempts <= r.MaxRetries {
		attempts++
		lastErr = attempt()
		if lastErr == nil {
			return attempts, nil
		}

		if isTerminal(lastErr) {
			return attempts, lastErr
		}
		if attempts > r.MaxRetries {
			break
		}

		wait := delay
		if provider.IsThrottled(lastErr) && r.ThrottleDelay > wait {
			wait = r.ThrottleDelay
		}

		r.Logger.Warn("Transfer attempt failed, retrying",
			zap.String("target", name),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", r.MaxRetries+1),
			zap.Duration("backoff", wait),
			zap.Error(lastErr))

		if err := sleep(ctx, wait); err != nil {
			return attempts, lastErr
		}
		delay = wait * 2
	}

	return attempts, lastErr
}

// isTerminal reports errors that a retry cannot fix.
func isTerminal(err error) bool {
	return provider.IsNotFound(err) ||
		provider.IsAccessDenied(err) ||
		provider.IsInvalidCredentials(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
