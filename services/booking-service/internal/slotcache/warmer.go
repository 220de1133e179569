package slotcache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Warmer re-resolves a day as soon as it changes so the next client read is a hit.
type Warmer struct {
	svc     *Service
	logger  *slog.Logger
	timeout time.Duration
}

func NewWarmer(svc *Service, logger *slog.Logger, timeout time.Duration) *Warmer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Warmer{svc: svc, logger: logger, timeout: timeout}
}

func (w *Warmer) Run(ctx context.Context) {
	changes, cancel := w.svc.Notifier().Subscribe("")
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			w.warm(ctx, c)
		}
	}
}

func (w *Warmer) warm(ctx context.Context, c Change) {
	if c.DesignerID == "" || c.Date.IsZero() {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if _, err := w.svc.Available(wctx, c.DesignerID, c.Date); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn("slot cache warm failed", "designer_id", c.DesignerID, "date", c.Date.String(), "err", err)
	}
}
