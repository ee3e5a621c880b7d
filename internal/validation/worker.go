package validation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vietddude/orderpipe/internal/core/domain"
	"github.com/vietddude/orderpipe/internal/infra/queue"
	"github.com/vietddude/orderpipe/internal/infra/storage"
	"github.com/vietddude/orderpipe/internal/metrics"
)

// Worker consumes validation tasks from the queue, invokes the resilient
// client and writes the final status back to the order store. Multiple
// workers may run against the same queue and share one client (and
// therefore one breaker).
type Worker struct {
	id     int
	queue  queue.TaskQueue
	repo   storage.OrderRepository
	client *Client
	log    *slog.Logger
}

// NewWorker creates a validation worker.
func NewWorker(id int, q queue.TaskQueue, repo storage.OrderRepository, client *Client) *Worker {
	return &Worker{
		id:     id,
		queue:  q,
		repo:   repo,
		client: client,
		log:    slog.Default().With("component", "validation_worker", "worker_id", id),
	}
}

// Run consumes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Validation worker started")
	for {
		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("Validation worker stopping")
				return nil
			}
			w.log.Error("Failed to dequeue task", "error", err)
			continue
		}
		w.process(ctx, task)
	}
}

// process runs a single task through the client and maps the outcome to
// a final order status. Persistence failures are logged and swallowed:
// each dequeue gets at most one status update attempt.
func (w *Worker) process(ctx context.Context, task *domain.ValidationTask) {
	w.log.Info("Processing validation", "order_id", task.OrderID)

	// Mark the order as picked up before calling out so an in-flight
	// order is observable as PROCESSING rather than PENDING.
	if err := w.repo.UpdateStatus(ctx, task.OrderID, domain.StatusProcessing); err != nil {
		w.log.Error("Failed to mark order processing",
			"order_id", task.OrderID, "error", err)
	}

	result, err := w.client.Validate(ctx, task)

	var status domain.OrderStatus
	switch {
	case err == nil:
		status = domain.StatusRejected
		if result.Valid {
			status = domain.StatusValidated
		}
	case errors.Is(err, ErrCircuitOpen):
		// No status change: the order stays PROCESSING until an external
		// re-drive retries it.
		w.log.Warn("Circuit open, leaving order for reprocessing",
			"order_id", task.OrderID)
		return
	case isRetryExhausted(err):
		// Service too slow to trust.
		w.log.Warn("Validation retries exhausted",
			"order_id", task.OrderID, "error", err)
		status = domain.StatusRejected
	default:
		w.log.Error("Validation failed", "order_id", task.OrderID, "error", err)
		status = domain.StatusFailed
	}

	if err := w.repo.UpdateStatus(ctx, task.OrderID, status); err != nil {
		w.log.Error("Failed to persist order status",
			"order_id", task.OrderID, "status", status, "error", err)
		return
	}

	metrics.OrdersProcessed.WithLabelValues(string(status)).Inc()
	w.log.Info("Order processed", "order_id", task.OrderID, "status", status)
}

func isRetryExhausted(err error) bool {
	var exhausted *RetryExhaustedError
	return errors.As(err, &exhausted)
}
