package queue

import (
	"context"

	"github.com/vietddude/orderpipe/internal/core/domain"
)

// MemoryQueue is a channel-backed TaskQueue, used when no Redis URL is
// configured and in tests. Tasks do not survive a restart.
type MemoryQueue struct {
	tasks chan *domain.ValidationTask
}

// NewMemoryQueue creates a buffered in-memory queue.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{tasks: make(chan *domain.ValidationTask, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, task *domain.ValidationTask) error {
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*domain.ValidationTask, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.tasks)), nil
}

func (q *MemoryQueue) Health(ctx context.Context) error {
	return nil
}
