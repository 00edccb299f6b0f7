package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

func TestDoValueSucceedsAfterTransientFailures(t *testing.T) {
	const failures = 2
	base := 5 * time.Millisecond
	calls := 0

	start := time.Now()
	got, err := DoValue(context.Background(), Policy{MaxAttempts: 5, BaseDelay: base},
		func(ctx context.Context) (int, error) {
			calls++
			if calls <= failures {
				return 0, errs.New(errs.NetworkError, "transient")
			}
			return 42, nil
		})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if calls != failures+1 {
		t.Fatalf("expected %d calls, got %d", failures+1, calls)
	}

	// Two retries: base*2^0 + base*2^1 = 3*base total backoff.
	wantMin := 3 * base
	if elapsed < wantMin {
		t.Fatalf("elapsed %s below expected backoff %s", elapsed, wantMin)
	}
	if elapsed > wantMin+200*time.Millisecond {
		t.Fatalf("elapsed %s far above expected backoff %s", elapsed, wantMin)
	}
}

func TestDoNonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 10, BaseDelay: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			return errs.New(errs.TransactionReverted, "revert")
		})
	if calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
	if errs.KindOf(err) != errs.TransactionReverted {
		t.Fatalf("unexpected kind: %s", errs.KindOf(err))
	}
}

func TestDoUntypedErrorNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 5, BaseDelay: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			return errors.New("plain failure")
		})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if err == nil || err.Error() != "plain failure" {
		t.Fatalf("expected original error, got %v", err)
	}
}

func TestDoExhaustionReturnsLastErrorUnchanged(t *testing.T) {
	last := errs.New(errs.RpcError, "still down")
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errs.New(errs.NetworkError, "down")
			}
			return last
		})
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	var got *errs.Error
	if !errors.As(err, &got) || got != last {
		t.Fatalf("expected last error unchanged, got %v", err)
	}
}

func TestDoSingleAttemptDegenerates(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{MaxAttempts: 1, BaseDelay: time.Second},
		func(ctx context.Context) error {
			calls++
			return errs.New(errs.NetworkError, "down")
		})
	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
	if errs.KindOf(err) != errs.NetworkError {
		t.Fatalf("unexpected kind: %s", errs.KindOf(err))
	}
}

func TestDoInvalidAttempts(t *testing.T) {
	err := Do(context.Background(), Policy{MaxAttempts: 0, BaseDelay: time.Millisecond},
		func(ctx context.Context) error { return nil })
	if errs.KindOf(err) != errs.InvalidConfig {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
}

func TestDoCancelledWhileBackingOff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Second},
		func(ctx context.Context) error {
			return errs.New(errs.NetworkError, "down")
		})
	if errs.KindOf(err) != errs.TimeoutError {
		t.Fatalf("expected TimeoutError on cancellation, got %v", err)
	}
}
