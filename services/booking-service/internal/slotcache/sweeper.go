package slotcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

type Sweepable interface {
	Sweep(before model.Date) int
}

// Sweeper periodically drops cached days that are already in the past.
type Sweeper struct {
	cron   *cron.Cron
	store  Sweepable
	logger *slog.Logger
	now    func() time.Time
}

func NewSweeper(store Sweepable, schedule string, loc *time.Location, logger *slog.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	if schedule == "" {
		schedule = "@every 10m"
	}
	s := &Sweeper{
		cron:   cron.New(cron.WithLocation(loc)),
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().In(loc) },
	}
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) Sweep() {
	today := model.DateOf(s.now())
	if n := s.store.Sweep(today); n > 0 {
		s.logger.Debug("slot cache swept", "removed", n, "before", today.String())
	}
}

func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts the schedule and returns a context done when a running sweep finishes.
func (s *Sweeper) Stop() context.Context { return s.cron.Stop() }
