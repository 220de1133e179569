package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

type loaderFunc func(ctx context.Context, designerID string, date model.Date) (model.Day, error)

func (f loaderFunc) LoadDay(ctx context.Context, designerID string, date model.Date) (model.Day, error) {
	return f(ctx, designerID, date)
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Step: time.Millisecond, Timeout: 50 * time.Millisecond}
}

func TestFetchRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	loader := loaderFunc(func(ctx context.Context, designerID string, date model.Date) (model.Day, error) {
		if calls.Add(1) < 3 {
			return model.Day{}, errors.New("connection reset")
		}
		return model.Day{DesignerID: designerID, Date: date}, nil
	})

	f := NewFetcher(loader, fastPolicy(4), nil, nil)
	day, err := f.Fetch(context.Background(), "d1", "2025-12-01")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if day.DesignerID != "d1" || calls.Load() != 3 {
		t.Fatalf("unexpected result %+v after %d calls", day, calls.Load())
	}
}

func TestFetchStopsAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	loader := loaderFunc(func(context.Context, string, model.Date) (model.Day, error) {
		calls.Add(1)
		return model.Day{}, errors.New("store down")
	})

	f := NewFetcher(loader, fastPolicy(3), nil, nil)
	_, err := f.Fetch(context.Background(), "d1", "2025-12-01")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFetchDoesNotRetryMalformedData(t *testing.T) {
	var calls atomic.Int32
	loader := loaderFunc(func(context.Context, string, model.Date) (model.Day, error) {
		calls.Add(1)
		return model.Day{}, fmt.Errorf("storage: load appointments: %w", model.ErrMalformedTime)
	})

	f := NewFetcher(loader, fastPolicy(5), nil, nil)
	_, err := f.Fetch(context.Background(), "d1", "2025-12-01")
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, model.ErrMalformedTime) {
		t.Fatalf("expected unavailable malformed error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("malformed data must not be retried, got %d attempts", calls.Load())
	}
}

func TestFetchDoesNotRetryRejectedArguments(t *testing.T) {
	var calls atomic.Int32
	loader := loaderFunc(func(context.Context, string, model.Date) (model.Day, error) {
		calls.Add(1)
		return model.Day{}, fmt.Errorf("storage: load appointments: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
	})

	f := NewFetcher(loader, fastPolicy(4), nil, nil)
	_, err := f.Fetch(context.Background(), "not-a-uuid", "2025-12-01")
	if !errors.Is(err, ErrRejected) || !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected rejected lookup, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("rejected arguments must not be retried, got %d attempts", calls.Load())
	}
}

func TestFetchAppliesPerAttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	loader := loaderFunc(func(ctx context.Context, _ string, _ model.Date) (model.Day, error) {
		calls.Add(1)
		<-ctx.Done()
		return model.Day{}, ctx.Err()
	})

	f := NewFetcher(loader, RetryPolicy{MaxAttempts: 2, Step: time.Millisecond, Timeout: 10 * time.Millisecond}, nil, nil)
	start := time.Now()
	_, err := f.Fetch(context.Background(), "d1", "2025-12-01")
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout wrapped in ErrUnavailable, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("fetch did not honour the attempt timeout")
	}
}

func TestFetchHonoursCallerCancellation(t *testing.T) {
	loader := loaderFunc(func(context.Context, string, model.Date) (model.Day, error) {
		return model.Day{}, errors.New("store down")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(loader, RetryPolicy{MaxAttempts: 100, Step: time.Hour, Timeout: time.Second}, nil, nil)
	if _, err := f.Fetch(ctx, "d1", "2025-12-01"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestLinearBackOff(t *testing.T) {
	b := &linearBackOff{step: 100 * time.Millisecond}
	for i, want := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond} {
		if got := b.NextBackOff(); got != want {
			t.Fatalf("step %d: expected %s, got %s", i, want, got)
		}
	}
	b.Reset()
	if got := b.NextBackOff(); got != 100*time.Millisecond {
		t.Fatalf("expected reset, got %s", got)
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	p := RetryPolicy{}.withDefaults()
	if p.MaxAttempts != 4 || p.Timeout != 3*time.Second || p.Step != 0 {
		t.Fatalf("unexpected policy: %+v", p)
	}
}
