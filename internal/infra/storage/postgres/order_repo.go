package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vietddude/orderpipe/internal/core/domain"
	"github.com/vietddude/orderpipe/internal/infra/storage"
)

// OrderRepo implements storage.OrderRepository using PostgreSQL.
type OrderRepo struct {
	db *DB
}

// NewOrderRepo creates a new PostgreSQL order repository.
func NewOrderRepo(db *DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (order_id, product, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		order.OrderID, order.Product, order.Quantity, order.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return storage.ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	query := `
		SELECT order_id, product, quantity, status, created_at, updated_at
		FROM orders WHERE order_id = $1
	`
	err := r.db.GetContext(ctx, &order, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepo) GetAll(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	query := `
		SELECT order_id, product, quantity, status, created_at, updated_at
		FROM orders ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepo) UpdateStatus(
	ctx context.Context,
	orderID string,
	status domain.OrderStatus,
) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $2, updated_at = NOW() WHERE order_id = $1",
		orderID, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepo) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}
