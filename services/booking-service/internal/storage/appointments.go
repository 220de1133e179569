package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/studionail/nailbook/libs/db"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

const appointmentColumns = `id::text, designer_id::text, client_name, client_phone, COALESCE(client_email, ''),
			service, date::text, time::text, price_cents, status, created_at`

// CreateAppointment inserts appt. A non-cancelled appointment already holding the same
// (designer, date, time) makes the insert fail with ErrSlotTaken.
func (r *Repository) CreateAppointment(ctx context.Context, tx pgx.Tx, appt model.Appointment) (model.Appointment, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(designer_id, client_name, client_phone, client_email, service, date, time, price_cents, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
		RETURNING id::text, created_at
	`, appt.DesignerID, appt.ClientName, appt.ClientPhone, appt.ClientEmail, appt.Service,
		appt.Date.String(), appt.Time.String(), appt.PriceCents, string(appt.Status)).Scan(&appt.ID, &appt.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return model.Appointment{}, ErrSlotTaken
		}
		return model.Appointment{}, fmt.Errorf("storage: insert appointment: %w", err)
	}
	return appt, nil
}

func (r *Repository) GetAppointmentForUpdate(ctx context.Context, tx pgx.Tx, designerID, appointmentID string) (model.Appointment, error) {
	appts, err := scanAppointments(tx.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND designer_id = $2
		FOR UPDATE
	`, appointmentID, designerID))
	if err != nil {
		return model.Appointment{}, fmt.Errorf("storage: get appointment: %w", err)
	}
	if len(appts) == 0 {
		return model.Appointment{}, ErrNotFound
	}
	return appts[0], nil
}

func (r *Repository) UpdateAppointmentStatus(ctx context.Context, tx pgx.Tx, designerID, appointmentID string, status model.Status) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $3,
			updated_at = now()
		WHERE id = $1 AND designer_id = $2
	`, appointmentID, designerID, string(status))
	if err != nil {
		return fmt.Errorf("storage: update appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAppointments returns the designer's appointments, most recent date first.
// An empty status lists every status.
func (r *Repository) ListAppointments(ctx context.Context, designerID string, status model.Status, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	appts, err := scanAppointments(r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE designer_id = $1
			AND ($2 = '' OR status = $2)
		ORDER BY date DESC, time DESC
		LIMIT $3
	`, designerID, string(status), limit))
	if err != nil {
		return nil, fmt.Errorf("storage: list appointments: %w", err)
	}
	return appts, nil
}

func scanAppointments(rows pgx.Rows, err error) ([]model.Appointment, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var rec model.AppointmentRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.DesignerID,
			&rec.ClientName,
			&rec.ClientPhone,
			&rec.ClientEmail,
			&rec.Service,
			&rec.Date,
			&rec.Time,
			&rec.PriceCents,
			&rec.Status,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		appt, err := model.AppointmentFromRecord(rec)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
