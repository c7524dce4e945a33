package inbox

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository records consumed event ids so redeliveries are recognized. The
// insert runs on the handler's transaction: the dedup row commits atomically
// with the transition it guards, or not at all.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Record returns false when the event id was already consumed. DO NOTHING
// instead of surfacing the unique violation keeps the surrounding
// transaction usable.
func (r *Repository) Record(ctx context.Context, tx pgx.Tx, eventID string, eventType string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO inbox_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
