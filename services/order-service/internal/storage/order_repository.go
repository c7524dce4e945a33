package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adesso-it/awesomepizza/libs/db"
	"github.com/adesso-it/awesomepizza/libs/orderstate"
	"github.com/adesso-it/awesomepizza/services/order-service/internal/model"
)

var ErrNotFound = errors.New("order not found")

type OrderRepository struct {
	pool *db.Pool
}

func NewOrderRepository(pool *db.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Create assigns the order reference from a store-backed sequence and inserts
// the order, all inside the caller's transaction. The ref survives restarts
// and stays unique across instances, unlike an in-memory counter.
func (r *OrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_ref_seq')`).Scan(&seq); err != nil {
		return fmt.Errorf("next order ref: %w", err)
	}
	order.OrderRef = fmt.Sprintf("ORD-%03d", seq)

	err := tx.QueryRow(ctx, `
		INSERT INTO pizza_orders (order_ref, pizza_type, note, status, order_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, order.OrderRef, order.PizzaType, order.Note, string(order.Status), order.OrderTime).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByRef(ctx context.Context, ref string) (model.Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, order_ref, pizza_type, note, status, order_time, update_time
		FROM pizza_orders
		WHERE order_ref = $1
	`, ref)
	return scanOrder(row)
}

// GetByRefForUpdate row-locks the order so concurrent transitions for the
// same order serialize instead of racing.
func (r *OrderRepository) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (model.Order, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, order_ref, pizza_type, note, status, order_time, update_time
		FROM pizza_orders
		WHERE order_ref = $1
		FOR UPDATE
	`, ref)
	return scanOrder(row)
}

func (r *OrderRepository) List(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_ref, pizza_type, note, status, order_time, update_time
		FROM pizza_orders
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, ref string, status orderstate.Status, updatedAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE pizza_orders
		SET status = $2, update_time = $3
		WHERE order_ref = $1
	`, ref, string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var order model.Order
	var status string
	err := row.Scan(
		&order.ID,
		&order.OrderRef,
		&order.PizzaType,
		&order.Note,
		&status,
		&order.OrderTime,
		&order.UpdateTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	order.Status = orderstate.Status(status)
	return order, nil
}
