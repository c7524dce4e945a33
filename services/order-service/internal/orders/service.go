package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adesso-it/awesomepizza/libs/db"
	"github.com/adesso-it/awesomepizza/libs/kafkax"
	"github.com/adesso-it/awesomepizza/libs/orderstate"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/inbox"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/model"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/outbox"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/storage"
)

var ErrInvalidOrder = errors.New("invalid order")

// Service owns the order lifecycle on the ordering side: placing orders and
// applying status updates reported back by the preparation worker.
type Service struct {
	pool       *db.Pool
	repo       *storage.OrderRepository
	outboxRepo *outbox.Repository
	inboxRepo  *inbox.Repository
	logger     *slog.Logger
}

func NewService(pool *db.Pool, repo *storage.OrderRepository, outboxRepo *outbox.Repository, inboxRepo *inbox.Repository, logger *slog.Logger) *Service {
	return &Service{
		pool:       pool,
		repo:       repo,
		outboxRepo: outboxRepo,
		inboxRepo:  inboxRepo,
		logger:     logger,
	}
}

type PlaceOrderInput struct {
	PizzaType string
	Note      string
}

// PlaceOrder persists the new order and its OrderPlaced outbox event in one
// transaction. Either both are durable or the caller gets an error and
// nothing happened.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (model.Order, error) {
	pizzaType := strings.TrimSpace(in.PizzaType)
	if pizzaType == "" {
		return model.Order{}, fmt.Errorf("%w: pizza type is required", ErrInvalidOrder)
	}

	order := &model.Order{
		PizzaType: pizzaType,
		Note:      strings.TrimSpace(in.Note),
		Status:    orderstate.StatusPending,
		OrderTime: time.Now().UTC(),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.repo.Create(ctx, tx, order); err != nil {
		return model.Order{}, err
	}

	payload, err := json.Marshal(payloadFromOrder(*order))
	if err != nil {
		return model.Order{}, err
	}
	if err := s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: outbox.AggregateTypeOrder,
		AggregateID:   order.OrderRef,
		EventType:     outbox.EventTypeOrderPlaced,
		Payload:       payload,
	}); err != nil {
		return model.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Order{}, err
	}

	s.logger.Info("order placed", "order_ref", order.OrderRef, "pizza_type", order.PizzaType)
	return *order, nil
}

func (s *Service) GetOrder(ctx context.Context, ref string) (model.Order, error) {
	return s.repo.GetByRef(ctx, ref)
}

func (s *Service) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.List(ctx)
}

// ApplyPreparationUpdate processes one preparation-events message. A nil
// return acknowledges the message; an error means the store failed and the
// message must be redelivered. Malformed or stale events are logged and
// acknowledged, retrying them would change nothing.
func (s *Service) ApplyPreparationUpdate(ctx context.Context, meta kafkax.EventMeta, raw []byte) error {
	var p statusPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Error("malformed preparation event discarded", "err", err, "event_id", meta.EventID)
		return nil
	}
	if err := p.validate(); err != nil {
		s.logger.Error("invalid preparation event discarded", "err", err, "event_id", meta.EventID)
		return nil
	}
	incoming, err := orderstate.Parse(p.Status)
	if err != nil {
		s.logger.Error("preparation event with unknown status discarded", "err", err, "event_id", meta.EventID, "order_ref", p.OrderID)
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
		s.logger.Info("duplicate preparation event ignored", "event_id", meta.EventID, "order_ref", p.OrderID)
		return tx.Commit(ctx)
	}

	order, err := s.repo.GetByRefForUpdate(ctx, tx, p.OrderID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("preparation event for unknown order discarded", "order_ref", p.OrderID, "event_id", meta.EventID)
		return nil
	}
	if err != nil {
		return err
	}

	switch orderstate.Evaluate(order.Status, incoming) {
	case orderstate.Ignore:
		s.logger.Info("stale or duplicate status transition ignored",
			"order_ref", order.OrderRef, "current", order.Status, "incoming", incoming)
		return tx.Commit(ctx)
	case orderstate.Reject:
		// Roll back, dedup row included, so a redelivery can still apply
		// this event once the intermediate transition has landed.
		s.logger.Warn("out-of-order status transition rejected",
			"order_ref", order.OrderRef, "current", order.Status, "incoming", incoming)
		return nil
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, tx, order.OrderRef, incoming, now); err != nil {
		return err
	}

	// Announce the change onward unless the order just reached its terminal
	// state; the worker treats the echo as an idempotent no-op.
	if !incoming.Terminal() {
		order.Status = incoming
		order.UpdateTime = &now
		payload, err := json.Marshal(payloadFromOrder(order))
		if err != nil {
			return err
		}
		if err := s.outboxRepo.Insert(ctx, tx, outbox.Event{
			AggregateType: outbox.AggregateTypeOrder,
			AggregateID:   order.OrderRef,
			EventType:     outbox.EventTypeOrderStatusUpdated,
			Payload:       payload,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info("order status updated", "order_ref", order.OrderRef, "status", incoming)
	return nil
}
