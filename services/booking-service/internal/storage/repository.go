package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/studionail/nailbook/libs/db"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrSlotTaken = errors.New("storage: slot already booked")
)

type Repository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewRepository(conn db.DBTX, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: conn, logger: logger}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

var snapshotTx = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// LoadDay reads the appointments and date-specific blocks of one designer on one date
// from a single consistent snapshot. Malformed rows fail the whole load.
func (r *Repository) LoadDay(ctx context.Context, designerID string, date model.Date) (model.Day, error) {
	date = date.Normalize()
	tx, err := r.db.BeginTx(ctx, snapshotTx)
	if err != nil {
		return model.Day{}, fmt.Errorf("storage: begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appts, err := scanAppointments(tx.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE designer_id = $1 AND date = $2
		ORDER BY time ASC
	`, designerID, date.String()))
	if err != nil {
		return model.Day{}, fmt.Errorf("storage: load appointments: %w", err)
	}

	blocks, err := scanBlocks(tx.Query(ctx, `
		SELECT `+blockColumns+`
		FROM availability
		WHERE designer_id = $1 AND specific_date = $2
		ORDER BY start_time ASC
	`, designerID, date.String()))
	if err != nil {
		return model.Day{}, fmt.Errorf("storage: load blocks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Day{}, fmt.Errorf("storage: commit snapshot: %w", err)
	}

	model.LogDegenerate(r.logger, blocks)
	return model.Day{DesignerID: designerID, Date: date, Appointments: appts, Blocks: blocks}, nil
}
