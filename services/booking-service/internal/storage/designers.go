package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

const designerColumns = `id::text, name, COALESCE(slug, ''), phone, COALESCE(bio, ''), COALESCE(photo_url, ''), is_active`

func (r *Repository) GetDesigner(ctx context.Context, designerID string) (model.Designer, error) {
	return r.getDesigner(ctx, `SELECT `+designerColumns+` FROM nail_designers WHERE id = $1`, designerID)
}

// GetDesignerBySlug resolves a personal booking link. Inactive designers are not found.
func (r *Repository) GetDesignerBySlug(ctx context.Context, slug string) (model.Designer, error) {
	return r.getDesigner(ctx, `SELECT `+designerColumns+` FROM nail_designers WHERE slug = $1 AND is_active`, slug)
}

func (r *Repository) getDesigner(ctx context.Context, query, arg string) (model.Designer, error) {
	var d model.Designer
	err := r.db.QueryRow(ctx, query, arg).Scan(&d.ID, &d.Name, &d.Slug, &d.Phone, &d.Bio, &d.PhotoURL, &d.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Designer{}, ErrNotFound
		}
		return model.Designer{}, fmt.Errorf("storage: get designer: %w", err)
	}
	return d, nil
}
