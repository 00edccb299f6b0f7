// Package retry wraps fallible chain operations with bounded exponential
// backoff and deadline enforcement. Only failures classified as transient by
// the errs package are retried; everything else propagates on first
// occurrence so non-idempotent operations are never resubmitted blindly.
package retry

import (
	"context"
	"time"

	"github.com/licensekit/license-sdk-go/pkg/errs"
	"go.uber.org/zap"
)

// Policy bounds a retry loop: at most MaxAttempts calls, sleeping
// BaseDelay * 2^i before retry i (i starting at 0).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// WithDefaults returns a copy of p with zero values replaced by defaults
// (3 attempts, 500ms base delay).
func (p Policy) WithDefaults() Policy {
	pp := p
	if pp.MaxAttempts == 0 {
		pp.MaxAttempts = 3
	}
	if pp.BaseDelay == 0 {
		pp.BaseDelay = 500 * time.Millisecond
	}
	return pp
}

// Do runs op up to p.MaxAttempts times, sleeping with pure exponential
// backoff between attempts. Only errors for which errs.Retryable is true are
// retried; any other failure returns immediately. When attempts are
// exhausted the last observed error is returned unchanged, so the caller
// sees the true final cause. MaxAttempts of 1 degenerates to a single
// unguarded call. The sleep honors ctx cancellation.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, errs.Newf(errs.InvalidConfig, "retry attempts must be >= 1, got %d", p.MaxAttempts)
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << (attempt - 1)
			zap.L().Debug("retrying after transient failure",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, errs.Wrap(errs.TimeoutError, "retry interrupted", ctx.Err())
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !errs.Retryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
