package prep

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adesso-it/awesomepizza/libs/db"
	"github.com/adesso-it/awesomepizza/libs/kafkax"
	"github.com/adesso-it/awesomepizza/libs/orderstate"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/inbox"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/model"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/outbox"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/storage"
)

// Service accepts incoming orders, starts their preparation and schedules
// the deferred completion.
type Service struct {
	pool       *db.Pool
	tickets    *storage.TicketRepository
	jobs       *JobRepository
	outboxRepo *outbox.Repository
	inboxRepo  *inbox.Repository
	logger     *slog.Logger
	bakeTime   time.Duration
}

func NewService(pool *db.Pool, tickets *storage.TicketRepository, jobs *JobRepository, outboxRepo *outbox.Repository, inboxRepo *inbox.Repository, logger *slog.Logger, bakeTime time.Duration) *Service {
	if bakeTime <= 0 {
		bakeTime = 6 * time.Second
	}
	return &Service{
		pool:       pool,
		tickets:    tickets,
		jobs:       jobs,
		outboxRepo: outboxRepo,
		inboxRepo:  inboxRepo,
		logger:     logger,
		bakeTime:   bakeTime,
	}
}

// HandleOrderEvent processes one order-events message. A nil return
// acknowledges the message; an error means the store failed and the message
// must be redelivered.
func (s *Service) HandleOrderEvent(ctx context.Context, meta kafkax.EventMeta, raw []byte) error {
	var p ticketPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Error("malformed order event discarded", "err", err, "event_id", meta.EventID)
		return nil
	}
	if err := p.validate(); err != nil {
		s.logger.Error("invalid order event discarded", "err", err, "event_id", meta.EventID)
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	fresh, err := s.inboxRepo.Record(ctx, tx, meta.EventID, meta.EventType)
	if err != nil {
		return err
	}
	if !fresh {
		s.logger.Info("duplicate order event ignored", "event_id", meta.EventID, "order_ref", p.OrderID)
		return tx.Commit(ctx)
	}

	ticket, err := s.tickets.GetByRefForUpdate(ctx, tx, p.OrderID)
	if errors.Is(err, storage.ErrNotFound) {
		if meta.EventType != eventTypeOrderPlaced {
			s.logger.Warn("status update for unknown ticket discarded", "order_ref", p.OrderID, "event_type", meta.EventType)
			return nil
		}
		return s.acceptOrder(ctx, tx, p, meta)
	}
	if err != nil {
		return err
	}

	return s.applyUpdate(ctx, tx, ticket, p, meta)
}

// acceptOrder creates the shadow ticket, starts preparation and schedules
// the bake, all in one transaction together with the PreparationStarted
// outbox event.
func (s *Service) acceptOrder(ctx context.Context, tx pgx.Tx, p ticketPayload, meta kafkax.EventMeta) error {
	if err := p.validateNew(); err != nil {
		s.logger.Error("order event missing fields, discarded", "err", err, "event_id", meta.EventID)
		return nil
	}

	now := time.Now().UTC()
	ticket := &model.Ticket{
		OrderRef:     p.OrderID,
		PizzaType:    p.PizzaType,
		Note:         p.Note,
		Status:       orderstate.StatusPending,
		ReceivedTime: now,
	}
	if err := s.tickets.Create(ctx, tx, ticket); err != nil {
		return err
	}

	// PENDING → IN_PROGRESS: the worker starts preparation on accept.
	if d := orderstate.Evaluate(ticket.Status, orderstate.StatusInProgress); d != orderstate.Apply {
		s.logger.Error("fresh ticket refused start transition", "order_ref", ticket.OrderRef, "decision", d)
		return nil
	}
	if err := s.tickets.UpdateStatus(ctx, tx, ticket.OrderRef, orderstate.StatusInProgress, now); err != nil {
		return err
	}
	ticket.Status = orderstate.StatusInProgress
	ticket.UpdateTime = &now

	payload, err := json.Marshal(payloadFromTicket(*ticket))
	if err != nil {
		return err
	}
	if err := s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: outbox.AggregateTypeTicket,
		AggregateID:   ticket.OrderRef,
		EventType:     outbox.EventTypePreparationStarted,
		Payload:       payload,
	}); err != nil {
		return err
	}

	if err := s.jobs.Insert(ctx, tx, ticket.OrderRef, now.Add(s.bakeTime)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info("preparation started", "order_ref", ticket.OrderRef, "pizza_type", ticket.PizzaType, "ready_at", now.Add(s.bakeTime))
	return nil
}

// applyUpdate handles events about a ticket that already exists, mostly
// echoes of the worker's own announcements coming back via the ordering
// service.
func (s *Service) applyUpdate(ctx context.Context, tx pgx.Tx, ticket model.Ticket, p ticketPayload, meta kafkax.EventMeta) error {
	incoming, err := orderstate.Parse(p.Status)
	if err != nil {
		s.logger.Error("order event with unknown status discarded", "err", err, "event_id", meta.EventID, "order_ref", p.OrderID)
		return nil
	}

	switch orderstate.Evaluate(ticket.Status, incoming) {
	case orderstate.Ignore:
		s.logger.Debug("order event is a no-op for ticket", "order_ref", ticket.OrderRef, "current", ticket.Status, "incoming", incoming)
		return tx.Commit(ctx)
	case orderstate.Reject:
		// Roll back, keeping the event replayable.
		s.logger.Warn("out-of-order event for ticket rejected", "order_ref", ticket.OrderRef, "current", ticket.Status, "incoming", incoming)
		return nil
	}

	// The worker owns preparation state, so an applicable forward move here
	// means our copy lagged. Catch up without re-announcing.
	now := time.Now().UTC()
	if err := s.tickets.UpdateStatus(ctx, tx, ticket.OrderRef, incoming, now); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info("ticket caught up from order event", "order_ref", ticket.OrderRef, "status", incoming)
	return nil
}
