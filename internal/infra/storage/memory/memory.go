// Package memory provides an in-memory order repository, used when no
// database URL is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/orderpipe/internal/core/domain"
	"github.com/vietddude/orderpipe/internal/infra/storage"
)

// OrderRepo implements storage.OrderRepository with a mutex-guarded map.
type OrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewOrderRepo creates an empty in-memory repository.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.OrderID]; ok {
		return storage.ErrDuplicateOrder
	}
	now := time.Now()
	cp := *order
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.orders[order.OrderID] = &cp
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *OrderRepo) GetAll(ctx context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		orders = append(orders, &cp)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *OrderRepo) UpdateStatus(
	ctx context.Context,
	orderID string,
	status domain.OrderStatus,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return storage.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *OrderRepo) Health(ctx context.Context) error {
	return nil
}
