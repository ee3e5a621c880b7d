package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vietddude/orderpipe/internal/core/domain"
)

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		task := &domain.ValidationTask{OrderID: fmt.Sprintf("o%d", i), Product: "w", Quantity: 1}
		if err := q.Enqueue(ctx, task); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		task, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if want := fmt.Sprintf("o%d", i); task.OrderID != want {
			t.Errorf("Dequeue order = %s, want %s", task.OrderID, want)
		}
	}
}

func TestMemoryQueueLen(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()

	if n, _ := q.Len(ctx); n != 0 {
		t.Fatalf("Len = %d, want 0", n)
	}
	_ = q.Enqueue(ctx, &domain.ValidationTask{OrderID: "o1"})
	if n, _ := q.Len(ctx); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}

func TestMemoryQueueDequeueBlocksUntilCancel(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Dequeue on empty queue = %v, want context.DeadlineExceeded", err)
	}
}
