package slotcache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/studionail/nailbook/services/booking-service/internal/availability"
	"github.com/studionail/nailbook/services/booking-service/internal/catalog"
	"github.com/studionail/nailbook/services/booking-service/internal/metrics"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

// Fetcher returns a consistent snapshot of one designer day.
type Fetcher interface {
	Fetch(ctx context.Context, designerID string, date model.Date) (model.Day, error)
}

type Config struct {
	// BypassFor is how long results are resolved uncached after a generation bump
	// fails. It should be at least the store TTL.
	BypassFor time.Duration
}

// Service answers availability queries from the store when the designer's
// generation has not moved, and resolves fresh snapshots otherwise.
type Service struct {
	fetcher  Fetcher
	catalog  catalog.Func
	gens     Generations
	store    Store
	notifier *Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics

	bypassFor   time.Duration
	bypassUntil atomic.Int64
	group       singleflight.Group
	now         func() time.Time
}

func NewService(fetcher Fetcher, catalogFn catalog.Func, gens Generations, store Store, notifier *Notifier, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewNotifier(0)
	}
	if cfg.BypassFor <= 0 {
		cfg.BypassFor = 10 * time.Minute
	}
	return &Service{
		fetcher:   fetcher,
		catalog:   catalogFn,
		gens:      gens,
		store:     store,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
		bypassFor: cfg.BypassFor,
		now:       time.Now,
	}
}

func (s *Service) Notifier() *Notifier { return s.notifier }

func (s *Service) Catalog() catalog.Func { return s.catalog }

// Available returns the bookable slots of designerID on date. A zero date returns
// the default catalog without touching the store. Errors from the snapshot fetch are
// returned as is; an empty slice is a fully booked or blocked day.
func (s *Service) Available(ctx context.Context, designerID string, date model.Date) ([]model.TimeOfDay, error) {
	if date.IsZero() || designerID == "" {
		return availability.AvailableSlots(date, designerID, s.catalog, nil, nil), nil
	}
	date = date.Normalize()

	if s.bypassed() {
		s.metrics.CacheLookup("bypass")
		return s.resolve(ctx, designerID, date)
	}

	gen, err := s.gens.Current(ctx, designerID)
	if err != nil {
		s.logger.Warn("slot cache generation unavailable, resolving uncached", "designer_id", designerID, "err", err)
		s.metrics.CacheLookup("bypass")
		return s.resolve(ctx, designerID, date)
	}
	key := Key{DesignerID: designerID, Date: date, Generation: gen}

	if slots, ok, err := s.store.Get(ctx, key); err != nil {
		s.logger.Warn("slot cache read failed", "key", key.String(), "err", err)
	} else if ok {
		s.metrics.CacheLookup("hit")
		return slots, nil
	}
	s.metrics.CacheLookup("miss")

	v, err, _ := s.group.Do(key.String(), func() (any, error) {
		slots, err := s.resolve(ctx, designerID, date)
		if err != nil {
			return nil, err
		}
		if err := s.store.Set(ctx, key, slots); err != nil {
			s.logger.Warn("slot cache write failed", "key", key.String(), "err", err)
		}
		return slots, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneSlots(v.([]model.TimeOfDay)), nil
}

func (s *Service) resolve(ctx context.Context, designerID string, date model.Date) ([]model.TimeOfDay, error) {
	start := s.now()
	day, err := s.fetcher.Fetch(ctx, designerID, date)
	if err != nil {
		return nil, err
	}
	slots := availability.AvailableSlots(date, designerID, s.catalog, day.Appointments, day.Blocks)
	s.metrics.ObserveResolve(s.now().Sub(start))
	return slots, nil
}

// Invalidate retires cached results for the changed designer and notifies subscribers.
// When the generation cannot be bumped the service stops trusting its cache for BypassFor.
func (s *Service) Invalidate(ctx context.Context, c Change) error {
	s.metrics.Invalidation(string(c.Kind))
	_, err := s.gens.Bump(ctx, c.DesignerID)
	if err != nil {
		s.bypassUntil.Store(s.now().Add(s.bypassFor).UnixNano())
		s.logger.Error("slot cache invalidation failed, bypassing cache",
			"designer_id", c.DesignerID,
			"date", c.Date.String(),
			"kind", string(c.Kind),
			"bypass_for", s.bypassFor.String(),
			"err", err,
		)
	}
	s.notifier.Publish(c)
	return err
}

func (s *Service) bypassed() bool {
	until := s.bypassUntil.Load()
	return until != 0 && s.now().UnixNano() < until
}
