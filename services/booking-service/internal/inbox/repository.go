package inbox

import (
	"context"
	"strings"

	"github.com/studionail/nailbook/libs/db"
)

type Repository struct {
	pool db.DBTX
}

func NewRepository(pool db.DBTX) *Repository {
	return &Repository{pool: pool}
}

// Record claims eventID. It reports false when the event was already processed.
// Events without an id cannot be deduplicated and are always processed.
func (r *Repository) Record(ctx context.Context, eventID string, eventType string) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return true, nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO inbox_events (event_id, event_type)
		VALUES ($1, $2)
	`, eventID, eventType)
	if err == nil {
		return true, nil
	}
	if db.IsUniqueViolation(err) {
		return false, nil
	}
	return false, err
}

// Forget releases a claim so a failed event can be redelivered and retried.
func (r *Repository) Forget(ctx context.Context, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM inbox_events WHERE event_id = $1`, eventID)
	return err
}
