// Package queue defines the work queue contract that decouples order
// intake from validation.
package queue

import (
	"context"

	"github.com/vietddude/orderpipe/internal/core/domain"
)

// TaskQueue is an ordered channel of validation tasks. Each enqueued task
// is delivered to exactly one consumer; delivery is at-least-once, so a
// consumer crash may cause redelivery or loss depending on the backing
// transport.
type TaskQueue interface {
	// Enqueue appends a task to the tail of the queue.
	Enqueue(ctx context.Context, task *domain.ValidationTask) error

	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (*domain.ValidationTask, error)

	// Len returns the number of tasks currently waiting.
	Len(ctx context.Context) (int64, error)

	// Health reports whether the backing transport is reachable.
	Health(ctx context.Context) error
}
