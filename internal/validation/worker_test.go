package validation

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/orderpipe/internal/core/domain"
	"github.com/vietddude/orderpipe/internal/infra/storage/memory"
	"github.com/vietddude/orderpipe/internal/simulator"
)

func seedOrder(t *testing.T, repo *memory.OrderRepo, id string) *domain.ValidationTask {
	t.Helper()
	err := repo.Create(context.Background(), &domain.Order{
		OrderID:  id,
		Product:  "widget",
		Quantity: 1,
		Status:   domain.StatusPending,
	})
	require.NoError(t, err)
	return &domain.ValidationTask{OrderID: id, Product: "widget", Quantity: 1}
}

func workerWithSimulator(t *testing.T, mode domain.FailureMode) (*Worker, *memory.OrderRepo, *simulator.Injector) {
	t.Helper()

	inj := simulator.New(mode)
	inj.SetSlowDelay(200 * time.Millisecond)
	srv := httptest.NewServer(inj.Handler())
	t.Cleanup(srv.Close)

	repo := memory.NewOrderRepo()
	client := NewClient(testClientConfig(srv.URL + "/validate"))
	worker := NewWorker(0, nil, repo, client)
	return worker, repo, inj
}

func TestWorkerValidOrderReachesValidated(t *testing.T) {
	worker, repo, _ := workerWithSimulator(t, domain.ModeNormal)
	task := seedOrder(t, repo, "order-ok")

	worker.process(context.Background(), task)

	order, err := repo.GetByID(context.Background(), "order-ok")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusValidated, order.Status)
}

func TestWorkerUpstreamErrorMapsToFailed(t *testing.T) {
	worker, repo, _ := workerWithSimulator(t, domain.ModeError)
	task := seedOrder(t, repo, "order-err")

	worker.process(context.Background(), task)

	order, err := repo.GetByID(context.Background(), "order-err")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, order.Status)
}

func TestWorkerRetryExhaustionMapsToRejected(t *testing.T) {
	worker, repo, _ := workerWithSimulator(t, domain.ModeSlow)
	task := seedOrder(t, repo, "order-slow")

	worker.process(context.Background(), task)

	order, err := repo.GetByID(context.Background(), "order-slow")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, order.Status)
}

func TestWorkerCircuitOpenLeavesOrderProcessing(t *testing.T) {
	worker, repo, _ := workerWithSimulator(t, domain.ModeNormal)
	task := seedOrder(t, repo, "order-stuck")

	// Trip the shared breaker before the worker picks up the task.
	for i := 0; i < 3; i++ {
		worker.client.breaker.RecordFailure()
	}
	require.Equal(t, StateOpen, worker.client.Breaker().State())

	worker.process(context.Background(), task)

	order, err := repo.GetByID(context.Background(), "order-stuck")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, order.Status,
		"circuit-open must not assign a terminal status")
}

// failingRepo drops every write to exercise the swallow-and-log path.
type failingRepo struct {
	*memory.OrderRepo
}

func (r *failingRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return errors.New("store unavailable")
}

func TestWorkerPersistenceFailureIsSwallowed(t *testing.T) {
	inj := simulator.New(domain.ModeNormal)
	srv := httptest.NewServer(inj.Handler())
	t.Cleanup(srv.Close)

	repo := &failingRepo{memory.NewOrderRepo()}
	client := NewClient(testClientConfig(srv.URL + "/validate"))
	worker := NewWorker(0, nil, repo, client)

	// Must not panic or retry; the task is consumed exactly once.
	worker.process(context.Background(), &domain.ValidationTask{
		OrderID: "order-lost", Product: "widget", Quantity: 1,
	})
}
