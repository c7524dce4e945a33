package inbox

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository deduplicates consumed order events by event id, on the
// handler's transaction so the dedup row and the ticket change commit
// together.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Record returns false when the event id was already consumed.
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
