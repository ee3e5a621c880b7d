// Package domain holds the core types shared across the pipeline.
package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusValidated  OrderStatus = "VALIDATED"
	StatusRejected   OrderStatus = "REJECTED"
	StatusFailed     OrderStatus = "FAILED"
)

// Terminal reports whether no further status transition is allowed.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusValidated, StatusRejected, StatusFailed:
		return true
	}
	return false
}

// Order is a persisted order record. The order_id is externally supplied
// and treated as an opaque unique key.
type Order struct {
	OrderID   string      `db:"order_id"   json:"order_id"`
	Product   string      `db:"product"    json:"product"`
	Quantity  int         `db:"quantity"   json:"quantity"`
	Status    OrderStatus `db:"status"     json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
