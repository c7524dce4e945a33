package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adesso-it/awesomepizza/libs/db"
	"github.com/adesso-it/awesomepizza/libs/orderstate"
	"github.com/adesso-it/awesomepizza/services/pizza-worker/internal/model"
)

var ErrNotFound = errors.New("ticket not found")

type TicketRepository struct {
	pool *db.Pool
}

func NewTicketRepository(pool *db.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *TicketRepository) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO preparation_tickets (order_ref, pizza_type, note, status, received_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, ticket.OrderRef, ticket.PizzaType, ticket.Note, string(ticket.Status), ticket.ReceivedTime).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetByRefForUpdate row-locks the ticket: the consumer and the bake worker
// may both touch the same order, their transitions must serialize.
func (r *TicketRepository) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (model.Ticket, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, order_ref, pizza_type, note, status, received_time, update_time
		FROM preparation_tickets
		WHERE order_ref = $1
		FOR UPDATE
	`, ref)
	return scanTicket(row)
}

func (r *TicketRepository) GetByRef(ctx context.Context, ref string) (model.Ticket, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, order_ref, pizza_type, note, status, received_time, update_time
		FROM preparation_tickets
		WHERE order_ref = $1
	`, ref)
	return scanTicket(row)
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, ref string, status orderstate.Status, updatedAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE preparation_tickets
		SET status = $2, update_time = $3
		WHERE order_ref = $1
	`, ref, string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTicket(row pgx.Row) (model.Ticket, error) {
	var ticket model.Ticket
	var status string
	err := row.Scan(
		&ticket.ID,
		&ticket.OrderRef,
		&ticket.PizzaType,
		&ticket.Note,
		&status,
		&ticket.ReceivedTime,
		&ticket.UpdateTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Ticket{}, ErrNotFound
	}
	if err != nil {
		return model.Ticket{}, err
	}
	ticket.Status = orderstate.Status(status)
	return ticket, nil
}
