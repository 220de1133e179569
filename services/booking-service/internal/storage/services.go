package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

const serviceColumns = `id::text, designer_id::text, name, COALESCE(description, ''), category,
			duration_minutes, price_cents, is_active, created_at, updated_at`

func (r *Repository) CreateService(ctx context.Context, svc model.Service) (model.Service, error) {
	out, err := scanServices(r.db.Query(ctx, `
		INSERT INTO services (designer_id, name, description, category, duration_minutes, price_cents, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		RETURNING `+serviceColumns,
		svc.DesignerID, svc.Name, svc.Description, string(svc.Category), svc.DurationMinutes, svc.PriceCents, svc.IsActive))
	if err != nil {
		return model.Service{}, fmt.Errorf("storage: insert service: %w", err)
	}
	if len(out) == 0 {
		return model.Service{}, errors.New("storage: insert service returned no row")
	}
	return out[0], nil
}

// ListServices returns the designer's price list, main services before extras.
func (r *Repository) ListServices(ctx context.Context, designerID string, activeOnly bool) ([]model.Service, error) {
	out, err := scanServices(r.db.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE designer_id = $1
			AND (NOT $2 OR is_active)
		ORDER BY category = 'extras', name ASC
	`, designerID, activeOnly))
	if err != nil {
		return nil, fmt.Errorf("storage: list services: %w", err)
	}
	return out, nil
}

// GetServices loads the given services of one designer. Ids of other designers are
// silently absent from the result.
func (r *Repository) GetServices(ctx context.Context, designerID string, ids []string) ([]model.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out, err := scanServices(r.db.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE designer_id = $1 AND id = ANY($2::uuid[])
	`, designerID, ids))
	if err != nil {
		return nil, fmt.Errorf("storage: get services: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateService(ctx context.Context, svc model.Service) (model.Service, error) {
	out, err := scanServices(r.db.Query(ctx, `
		UPDATE services
		SET name = $3,
			description = NULLIF($4, ''),
			category = $5,
			duration_minutes = $6,
			price_cents = $7,
			is_active = $8,
			updated_at = now()
		WHERE id = $1 AND designer_id = $2
		RETURNING `+serviceColumns,
		svc.ID, svc.DesignerID, svc.Name, svc.Description, string(svc.Category), svc.DurationMinutes, svc.PriceCents, svc.IsActive))
	if err != nil {
		return model.Service{}, fmt.Errorf("storage: update service: %w", err)
	}
	if len(out) == 0 {
		return model.Service{}, ErrNotFound
	}
	return out[0], nil
}

func (r *Repository) DeleteService(ctx context.Context, designerID, serviceID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1 AND designer_id = $2`, serviceID, designerID)
	if err != nil {
		return fmt.Errorf("storage: delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanServices(rows pgx.Rows, err error) ([]model.Service, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var (
			s        model.Service
			category string
		)
		if err := rows.Scan(
			&s.ID,
			&s.DesignerID,
			&s.Name,
			&s.Description,
			&category,
			&s.DurationMinutes,
			&s.PriceCents,
			&s.IsActive,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c, err := model.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", s.ID, err)
		}
		s.Category = c
		out = append(out, s)
	}
	return out, rows.Err()
}
