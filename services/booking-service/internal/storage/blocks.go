package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

const blockColumns = `id::text, designer_id::text, COALESCE(day_of_week, -1), COALESCE(specific_date::text, ''),
			start_time::text, end_time::text, is_available, created_at`

// CreateBlock stores b as an availability row in effect (is_available = false).
// day_of_week is derived from the date for rows read by older clients.
func (r *Repository) CreateBlock(ctx context.Context, tx pgx.Tx, b model.Block) (model.Block, error) {
	weekday, err := b.Date.Weekday()
	if err != nil {
		return model.Block{}, err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO availability (designer_id, day_of_week, specific_date, start_time, end_time, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at
	`, b.DesignerID, int(weekday), b.Date.String(), b.Start.String(), b.End.String(), !b.Active).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return model.Block{}, fmt.Errorf("storage: insert block: %w", err)
	}
	return b, nil
}

// ListBlocks returns the designer's date-specific blocks, latest date first.
func (r *Repository) ListBlocks(ctx context.Context, designerID string, limit int) ([]model.Block, error) {
	if limit <= 0 {
		limit = 100
	}
	blocks, err := scanBlocks(r.db.Query(ctx, `
		SELECT `+blockColumns+`
		FROM availability
		WHERE designer_id = $1 AND specific_date IS NOT NULL
		ORDER BY specific_date DESC, start_time ASC
		LIMIT $2
	`, designerID, limit))
	if err != nil {
		return nil, fmt.Errorf("storage: list blocks: %w", err)
	}
	return blocks, nil
}

// SetBlockActive turns a block on or off and returns the updated block.
func (r *Repository) SetBlockActive(ctx context.Context, tx pgx.Tx, designerID, blockID string, active bool) (model.Block, error) {
	blocks, err := scanBlocks(tx.Query(ctx, `
		UPDATE availability
		SET is_available = $3,
			updated_at = now()
		WHERE id = $1 AND designer_id = $2
		RETURNING `+blockColumns+`
	`, blockID, designerID, !active))
	if err != nil {
		return model.Block{}, fmt.Errorf("storage: update block: %w", err)
	}
	if len(blocks) == 0 {
		return model.Block{}, ErrNotFound
	}
	return blocks[0], nil
}

// DeleteBlock removes a block and returns what was deleted.
func (r *Repository) DeleteBlock(ctx context.Context, tx pgx.Tx, designerID, blockID string) (model.Block, error) {
	blocks, err := scanBlocks(tx.Query(ctx, `
		DELETE FROM availability
		WHERE id = $1 AND designer_id = $2
		RETURNING `+blockColumns+`
	`, blockID, designerID))
	if err != nil {
		return model.Block{}, fmt.Errorf("storage: delete block: %w", err)
	}
	if len(blocks) == 0 {
		return model.Block{}, ErrNotFound
	}
	return blocks[0], nil
}

func scanBlocks(rows pgx.Rows, err error) ([]model.Block, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		var (
			rec     model.BlockRecord
			weekday int
			date    string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.DesignerID,
			&weekday,
			&date,
			&rec.StartTime,
			&rec.EndTime,
			&rec.IsAvailable,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if weekday >= 0 {
			rec.DayOfWeek = &weekday
		}
		if date != "" {
			rec.SpecificDate = &date
		}
		b, ok, err := model.BlockFromRecord(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			blocks = append(blocks, b)
		}
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return blocks, nil
}
