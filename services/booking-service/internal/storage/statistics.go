package storage

import (
	"context"
	"fmt"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

// Statistics aggregates the designer's appointments dated in [from, to] from one
// consistent snapshot.
func (r *Repository) Statistics(ctx context.Context, designerID string, from, to model.Date) (model.Statistics, error) {
	stats := model.Statistics{From: from, To: to, ByStatus: map[model.Status]model.StatusTotals{}}
	tx, err := r.db.BeginTx(ctx, snapshotTx)
	if err != nil {
		return stats, fmt.Errorf("storage: begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT status, count(*), COALESCE(sum(price_cents), 0)
		FROM appointments
		WHERE designer_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY status
	`, designerID, from.String(), to.String())
	if err != nil {
		return stats, fmt.Errorf("storage: statistics by status: %w", err)
	}
	for rows.Next() {
		var (
			raw string
			t   model.StatusTotals
		)
		if err := rows.Scan(&raw, &t.Count, &t.RevenueCents); err != nil {
			rows.Close()
			return stats, fmt.Errorf("storage: statistics by status: %w", err)
		}
		status, err := model.ParseStatus(raw)
		if err != nil {
			rows.Close()
			return stats, fmt.Errorf("storage: statistics by status: %w", err)
		}
		stats.ByStatus[status] = t
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("storage: statistics by status: %w", err)
	}

	rows, err = tx.Query(ctx, `
		SELECT service, count(*), COALESCE(sum(price_cents), 0)
		FROM appointments
		WHERE designer_id = $1 AND date BETWEEN $2 AND $3 AND status <> 'cancelled'
		GROUP BY service
	`, designerID, from.String(), to.String())
	if err != nil {
		return stats, fmt.Errorf("storage: statistics by service: %w", err)
	}
	for rows.Next() {
		var t model.ServiceTotals
		if err := rows.Scan(&t.Service, &t.Count, &t.RevenueCents); err != nil {
			rows.Close()
			return stats, fmt.Errorf("storage: statistics by service: %w", err)
		}
		stats.Services = append(stats.Services, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("storage: statistics by service: %w", err)
	}
	stats.SortServices()

	err = tx.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE visits > 1)
		FROM (
			SELECT client_phone, count(*) AS visits
			FROM appointments
			WHERE designer_id = $1 AND date BETWEEN $2 AND $3 AND status <> 'cancelled'
			GROUP BY client_phone
		) c
	`, designerID, from.String(), to.String()).Scan(&stats.UniqueClients, &stats.ReturningClients)
	if err != nil {
		return stats, fmt.Errorf("storage: statistics clients: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("storage: commit snapshot: %w", err)
	}
	return stats, nil
}

// ListClients derives the designer's client roster from appointments, one entry per
// phone number, most recently seen first. Name and email come from the latest booking.
func (r *Repository) ListClients(ctx context.Context, designerID string, limit int) ([]model.Client, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT
			(array_agg(client_name ORDER BY created_at DESC))[1],
			client_phone,
			COALESCE((array_agg(client_email ORDER BY created_at DESC) FILTER (WHERE client_email IS NOT NULL))[1], ''),
			count(*) FILTER (WHERE status <> 'cancelled'),
			count(*) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status = 'cancelled'),
			max(date)::text,
			COALESCE(sum(price_cents) FILTER (WHERE status = 'completed'), 0)
		FROM appointments
		WHERE designer_id = $1
		GROUP BY client_phone
		ORDER BY max(date) DESC, client_phone ASC
		LIMIT $2
	`, designerID, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list clients: %w", err)
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var (
			c    model.Client
			last string
		)
		if err := rows.Scan(&c.Name, &c.Phone, &c.Email, &c.Visits, &c.Completed, &c.Cancelled, &last, &c.SpentCents); err != nil {
			return nil, fmt.Errorf("storage: list clients: %w", err)
		}
		date, err := model.ParseDate(last)
		if err != nil {
			return nil, fmt.Errorf("storage: client %s: %w", c.Phone, err)
		}
		c.LastDate = date
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list clients: %w", err)
	}
	return out, nil
}
