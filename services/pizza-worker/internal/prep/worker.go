package prep

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adesso-it/awesomepizza/libs/db"
	"github.com/adesso-it/awesomepizza/libs/orderstate"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/outbox"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/storage"
)

// Worker completes due bake jobs. One slow or stuck order only affects its
// own row; the poller, the consumer and other orders keep moving.
type Worker struct {
	pool       *db.Pool
	jobs       *JobRepository
	tickets    *storage.TicketRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	interval   time.Duration
	batchSize  int
}

type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
}

func NewWorker(pool *db.Pool, jobs *JobRepository, tickets *storage.TicketRepository, outboxRepo *outbox.Repository, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Worker{
		pool:       pool,
		jobs:       jobs,
		tickets:    tickets,
		outboxRepo: outboxRepo,
		logger:     logger,
		interval:   cfg.Interval,
		batchSize:  cfg.BatchSize,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.Error("bake batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) error {
	return db.InTx(ctx, w.pool, func(tx pgx.Tx) error {
		due, err := w.jobs.FetchDue(ctx, tx, w.batchSize)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}

		var ids []int64
		for _, job := range due {
			if err := w.completeTicket(ctx, tx, job.OrderRef); err != nil {
				return err
			}
			ids = append(ids, job.ID)
		}

		return w.jobs.MarkProcessed(ctx, tx, ids)
	})
}

func (w *Worker) completeTicket(ctx context.Context, tx pgx.Tx, orderRef string) error {
	ticket, err := w.tickets.GetByRefForUpdate(ctx, tx, orderRef)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.Warn("bake job for unknown ticket skipped", "order_ref", orderRef)
		return nil
	}
	if err != nil {
		return err
	}

	if d := orderstate.Evaluate(ticket.Status, orderstate.StatusCompleted); d != orderstate.Apply {
		w.logger.Info("bake job skipped, ticket not ready to complete",
			"order_ref", orderRef, "status", ticket.Status, "decision", d)
		return nil
	}

	now := time.Now().UTC()
	if err := w.tickets.UpdateStatus(ctx, tx, orderRef, orderstate.StatusCompleted, now); err != nil {
		return err
	}
	ticket.Status = orderstate.StatusCompleted
	ticket.UpdateTime = &now

	payload, err := json.Marshal(payloadFromTicket(ticket))
	if err != nil {
		return err
	}
	// COMPLETED is terminal: this announcement ends the chain.
	if err := w.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: outbox.AggregateTypeTicket,
		AggregateID:   orderRef,
		EventType:     outbox.EventTypePizzaCompleted,
		Payload:       payload,
	}); err != nil {
		return err
	}

	w.logger.Info("pizza completed", "order_ref", orderRef)
	return nil
}
