package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/orderpipe/internal/core/domain"
)

const defaultQueueKey = "order_queue"

// TaskQueue implements queue.TaskQueue on a Redis list. LPUSH at the head
// and BRPOP at the tail give FIFO delivery to exactly one consumer per
// task. A worker crash after BRPOP loses the task; this layer does not
// add redelivery on top of what Redis provides.
type TaskQueue struct {
	client *Client
	key    string
}

// NewTaskQueue creates a Redis-backed task queue.
func NewTaskQueue(client *Client, key string) *TaskQueue {
	if key == "" {
		key = defaultQueueKey
	}
	return &TaskQueue{client: client, key: key}
}

func (q *TaskQueue) Enqueue(ctx context.Context, task *domain.ValidationTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.client.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("lpush failed: %w", err)
	}
	return nil
}

func (q *TaskQueue) Dequeue(ctx context.Context) (*domain.ValidationTask, error) {
	for {
		// Bounded BRPOP so ctx cancellation is observed promptly.
		res, err := q.client.rdb.BRPop(ctx, time.Second, q.key).Result()
		if errors.Is(err, redis.Nil) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
				continue
			}
		}
		if err != nil {
			return nil, fmt.Errorf("brpop failed: %w", err)
		}

		// BRPOP returns [key, value].
		var task domain.ValidationTask
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task: %w", err)
		}
		return &task, nil
	}
}

func (q *TaskQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return n, nil
}

func (q *TaskQueue) Health(ctx context.Context) error {
	return q.client.Ping(ctx)
}
