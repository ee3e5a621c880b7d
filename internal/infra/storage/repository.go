// Package storage defines the persistence contracts for the pipeline.
package storage

import (
	"context"
	"errors"

	"github.com/vietddude/orderpipe/internal/core/domain"
)

var (
	// ErrOrderNotFound is returned when an order id has no record.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder is returned when creating an order whose id already exists.
	ErrDuplicateOrder = errors.New("order already exists")
)

// OrderRepository stores order records keyed by order id.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error

	// Health reports whether the backing store is reachable.
	Health(ctx context.Context) error
}
