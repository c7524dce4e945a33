package prep

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// BakeJob is a deferred completion: the row's due time carries the simulated
// preparation delay, so nothing sleeps while a pizza "bakes".
type BakeJob struct {
	ID       int64
	OrderRef string
	DueAt    time.Time
}

type JobRepository struct{}

func NewJobRepository() *JobRepository {
	return &JobRepository{}
}

// Insert schedules the completion of a ticket, inside the caller's
// transaction so accepting an order and scheduling its bake are atomic.
func (r *JobRepository) Insert(ctx context.Context, tx pgx.Tx, orderRef string, dueAt time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO bake_jobs (order_ref, due_at)
		VALUES ($1, $2)
	`, orderRef, dueAt)
	return err
}

func (r *JobRepository) FetchDue(ctx context.Context, tx pgx.Tx, limit int) ([]BakeJob, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, order_ref, due_at
		FROM bake_jobs
		WHERE processed_at IS NULL AND due_at <= now()
		ORDER BY due_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []BakeJob
	for rows.Next() {
		var job BakeJob
		if err := rows.Scan(&job.ID, &job.OrderRef, &job.DueAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return jobs, nil
}

func (r *JobRepository) MarkProcessed(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE bake_jobs
		SET processed_at = now()
		WHERE id = ANY($1)
	`, ids)
	return err
}
