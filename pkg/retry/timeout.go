package retry

import (
	"context"
	"time"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// result carries one operation outcome over the race channel.
type result[T any] struct {
	value T
	err   error
}

// WithTimeout races op against a timer of limit. If the timer fires first a
// TimeoutError is returned and op is logically abandoned: it keeps running
// until its own completion but its outcome is discarded. The buffered
// channel guarantees the abandoned goroutine never blocks on send. A limit
// of zero or less disables the guard entirely.
//
// Abandonment is safe only because SDK operations mutate no shared state
// before completing; anything already broadcast on-chain must be re-queried
// by hash, not resubmitted.
func WithTimeout[T any](ctx context.Context, limit time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if limit <= 0 {
		return op(ctx)
	}

	cctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		v, err := op(cctx)
		done <- result[T]{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-cctx.Done():
		var zero T
		if ctx.Err() != nil {
			// Parent cancelled, not our timer.
			return zero, errs.Wrap(errs.TimeoutError, "operation cancelled", ctx.Err())
		}
		return zero, errs.Newf(errs.TimeoutError, "operation exceeded %s deadline", limit)
	}
}
