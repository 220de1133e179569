package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/studionail/nailbook/libs/db"
	"github.com/studionail/nailbook/libs/kafkax"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	pool      db.DBTX
	repo      *Repository
	logger    *slog.Logger
	brokers   []string
	pollEvery time.Duration
	batchSize int
	retention time.Duration
	lastPurge time.Time
	now       func() time.Time
	newWriter func(brokers []string) MessageWriter
}

// PublisherConfig tunes the outbox relay. Published rows older than Retention are
// purged at most once per Retention/24; zero keeps seven days.
type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
	BatchSize int
	Retention time.Duration
}

func NewPublisher(pool db.DBTX, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		pool:      pool,
		repo:      repo,
		logger:    logger,
		brokers:   kafkax.SplitBrokers(cfg.Brokers),
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
		retention: cfg.Retention,
		now:       time.Now,
		newWriter: func(brokers []string) MessageWriter {
			return &kafka.Writer{
				Addr:                   kafka.TCP(brokers...),
				Balancer:               &kafka.Hash{},
				AllowAutoTopicCreation: true,
			}
		},
	}
}

func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}

	writer := p.newWriter(p.brokers)
	defer writer.Close()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := p.publishBatch(ctx, writer); err != nil {
				p.logger.Error("outbox publish failed", "err", err)
			} else if n > 0 {
				p.logger.Debug("outbox events published", "count", n)
			}
			p.purge(ctx)
		}
	}
}

func (p *Publisher) publishBatch(ctx context.Context, writer MessageWriter) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pending, err := p.repo.Claim(ctx, tx, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, tx.Commit(ctx)
	}

	msgs := make([]kafka.Message, 0, len(pending))
	ids := make([]int64, 0, len(pending))
	for _, row := range pending {
		msgs = append(msgs, row.Message(ctx))
		ids = append(ids, row.ID)
	}
	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, err
	}

	if err := p.repo.MarkPublished(ctx, tx, ids); err != nil {
		return 0, err
	}
	return len(pending), tx.Commit(ctx)
}

// purge trims old published rows. Failures are logged; the next window retries.
func (p *Publisher) purge(ctx context.Context) {
	now := p.now()
	if now.Sub(p.lastPurge) < p.retention/24 {
		return
	}
	p.lastPurge = now
	n, err := p.repo.Purge(ctx, p.pool, now.Add(-p.retention))
	if err != nil {
		p.logger.Warn("outbox purge failed", "err", err)
		return
	}
	if n > 0 {
		p.logger.Info("outbox purged", "rows", n)
	}
}
