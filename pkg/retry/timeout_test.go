package retry

import (
	"context"
	"testing"
	"time"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

func TestWithTimeoutOperationWins(t *testing.T) {
	got, err := WithTimeout(context.Background(), time.Second,
		func(ctx context.Context) (string, error) {
			return "done", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Fatalf("got %q, want %q", got, "done")
	}
}

func TestWithTimeoutFailurePropagatesUnchanged(t *testing.T) {
	want := errs.New(errs.TransactionReverted, "revert")
	_, err := WithTimeout(context.Background(), time.Second,
		func(ctx context.Context) (int, error) {
			return 0, want
		})
	if errs.KindOf(err) != errs.TransactionReverted {
		t.Fatalf("expected original failure, got %v", err)
	}
}

func TestWithTimeoutTimerWins(t *testing.T) {
	limit := 50 * time.Millisecond
	start := time.Now()
	_, err := WithTimeout(context.Background(), limit,
		func(ctx context.Context) (int, error) {
			<-make(chan struct{}) // never settles
			return 0, nil
		})
	elapsed := time.Since(start)

	if errs.KindOf(err) != errs.TimeoutError {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if elapsed < limit {
		t.Fatalf("timed out early: %s < %s", elapsed, limit)
	}
	if elapsed > limit+200*time.Millisecond {
		t.Fatalf("timed out late: %s", elapsed)
	}
}

func TestWithTimeoutZeroLimitDisablesGuard(t *testing.T) {
	got, err := WithTimeout(context.Background(), 0,
		func(ctx context.Context) (int, error) {
			return 7, nil
		})
	if err != nil || got != 7 {
		t.Fatalf("got (%d, %v), want (7, nil)", got, err)
	}
}

func TestWithTimeoutParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := WithTimeout(ctx, time.Minute,
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			time.Sleep(time.Minute) // slow teardown, abandoned
			return 0, ctx.Err()
		})
	if errs.KindOf(err) != errs.TimeoutError {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
}

func TestWithTimeoutAbandonedOperationDoesNotBlock(t *testing.T) {
	settled := make(chan struct{})
	_, err := WithTimeout(context.Background(), 20*time.Millisecond,
		func(ctx context.Context) (int, error) {
			time.Sleep(60 * time.Millisecond)
			defer close(settled)
			return 1, nil
		})
	if errs.KindOf(err) != errs.TimeoutError {
		t.Fatalf("expected TimeoutError, got %v", err)
	}

	// The abandoned goroutine must still complete its buffered send.
	select {
	case <-settled:
	case <-time.After(time.Second):
		t.Fatal("abandoned operation never completed")
	}
}
