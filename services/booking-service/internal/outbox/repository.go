package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"

	"github.com/studionail/nailbook/libs/db"
	"github.com/studionail/nailbook/libs/kafkax"
	otelx "github.com/studionail/nailbook/libs/otel"
)

// Repository stores calendar change events next to the booking writes that produced them.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Insert queues evt inside tx, tagged with the caller's trace context so the consumer
// span links back to the HTTP request that changed the calendar.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, evt Event) error {
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox_events
			(aggregate_type, aggregate_id, event_type, partition_key, payload, traceparent, tracestate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, evt.AggregateType, evt.AggregateID, evt.EventType, evt.PartitionKey, evt.Payload, traceparent, tracestate)
	if err != nil {
		return fmt.Errorf("outbox: insert %s: %w", evt.EventType, err)
	}
	return nil
}

// Pending is a claimed, not yet published outbox row.
type Pending struct {
	ID           int64
	EventID      string
	EventType    string
	PartitionKey string
	Payload      []byte
	Traceparent  string
	Tracestate   string
	CreatedAt    time.Time
}

// Message is the Kafka record for p. The topic is the event type and the key is the
// designer id.
func (p Pending) Message(ctx context.Context) kafka.Message {
	msg := kafka.Message{
		Topic:   p.EventType,
		Key:     []byte(p.PartitionKey),
		Value:   p.Payload,
		Time:    p.CreatedAt,
		Headers: kafkax.MetaHeaders(kafkax.EventMeta{EventID: p.EventID, EventType: p.EventType}),
	}
	msgCtx := otelx.ContextWithTraceContext(ctx, p.Traceparent, p.Tracestate)
	msg.Headers = kafkax.InjectTraceHeaders(msgCtx, msg.Headers)
	return msg
}

// Claim locks up to limit unpublished rows in insertion order. Rows locked by another
// replica are skipped, so publishers never send the same batch twice.
func (r *Repository) Claim(ctx context.Context, tx pgx.Tx, limit int) ([]Pending, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, event_id::text, event_type, partition_key, payload,
			COALESCE(traceparent, ''), COALESCE(tracestate, ''), created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("outbox: claim: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Pending, error) {
		var p Pending
		err := row.Scan(&p.ID, &p.EventID, &p.EventType, &p.PartitionKey, &p.Payload, &p.Traceparent, &p.Tracestate, &p.CreatedAt)
		return p, err
	})
}

func (r *Repository) MarkPublished(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, `UPDATE outbox_events SET published_at = now() WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("outbox: mark published: %w", err)
	}
	return nil
}

// Purge deletes rows published before cutoff and reports how many were removed.
func (r *Repository) Purge(ctx context.Context, conn db.DBTX, cutoff time.Time) (int64, error) {
	tag, err := conn.Exec(ctx, `DELETE FROM outbox_events WHERE published_at IS NOT NULL AND published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("outbox: purge: %w", err)
	}
	return tag.RowsAffected(), nil
}
