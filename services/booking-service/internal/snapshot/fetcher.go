package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/studionail/nailbook/libs/db"
	"github.com/studionail/nailbook/services/booking-service/internal/metrics"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

// ErrUnavailable means the day could not be read. It is never a fully booked day.
var ErrUnavailable = errors.New("snapshot: availability could not be loaded")

// ErrRejected means the store refused the lookup arguments. It always comes wrapped
// together with ErrUnavailable.
var ErrRejected = errors.New("snapshot: lookup rejected by store")

// Loader reads one consistent day snapshot from the store.
type Loader interface {
	LoadDay(ctx context.Context, designerID string, date model.Date) (model.Day, error)
}

// RetryPolicy bounds snapshot reads: up to MaxAttempts tries, each limited by Timeout,
// waiting Step, 2*Step, 3*Step... between them.
type RetryPolicy struct {
	MaxAttempts int
	Step        time.Duration
	Timeout     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, Step: 250 * time.Millisecond, Timeout: 3 * time.Second}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.Step < 0 {
		p.Step = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = d.Timeout
	}
	return p
}

type Fetcher struct {
	loader  Loader
	policy  RetryPolicy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewFetcher(loader Loader, policy RetryPolicy, logger *slog.Logger, m *metrics.Metrics) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{loader: loader, policy: policy.withDefaults(), logger: logger, metrics: m}
}

func (f *Fetcher) Policy() RetryPolicy { return f.policy }

// Fetch loads the (designer, date) snapshot. Malformed stored data and arguments the
// store rejects are not retried. Any failure wraps ErrUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, designerID string, date model.Date) (model.Day, error) {
	attempt := 0
	op := func() (model.Day, error) {
		attempt++
		actx, cancel := context.WithTimeout(ctx, f.policy.Timeout)
		defer cancel()

		day, err := f.loader.LoadDay(actx, designerID, date)
		switch {
		case err == nil:
			f.metrics.FetchAttempt("ok")
			return day, nil
		case model.IsMalformed(err):
			f.metrics.FetchAttempt("malformed")
			return model.Day{}, backoff.Permanent(err)
		case db.IsDataException(err):
			f.metrics.FetchAttempt("rejected")
			return model.Day{}, backoff.Permanent(fmt.Errorf("%w: %w", ErrRejected, err))
		default:
			f.metrics.FetchAttempt("error")
			f.logger.Warn("snapshot fetch failed",
				"designer_id", designerID,
				"date", date.String(),
				"attempt", attempt,
				"max_attempts", f.policy.MaxAttempts,
				"err", err,
			)
			return model.Day{}, err
		}
	}

	day, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(&linearBackOff{step: f.policy.Step}),
		backoff.WithMaxTries(uint(f.policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		if model.IsMalformed(err) {
			f.logger.Error("stored availability data is malformed",
				"designer_id", designerID,
				"date", date.String(),
				"err", err,
			)
		}
		return model.Day{}, fmt.Errorf("%w (%d attempts): %w", ErrUnavailable, attempt, err)
	}
	return day, nil
}

// linearBackOff waits step, 2*step, 3*step... between attempts.
type linearBackOff struct {
	step time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() { b.n = 0 }
