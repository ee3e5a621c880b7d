package control

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/orderpipe/internal/core/config"
	"github.com/vietddude/orderpipe/internal/core/domain"
	"github.com/vietddude/orderpipe/internal/simulator"
)

func testAppConfig(validatorURL string, healthURL string) *config.AppConfig {
	return &config.AppConfig{
		Server: config.ServerConfig{Port: 0},
		Validator: config.ValidatorConfig{
			URL:     validatorURL,
			Timeout: 100 * time.Millisecond,
			Retry: config.RetryConfig{
				MaxRetries: 2,
				Base:       time.Millisecond,
				Cap:        5 * time.Millisecond,
			},
			Breaker: config.BreakerConfig{
				FailureThreshold: 3,
				Cooldown:         time.Second,
			},
		},
		Workers: config.WorkerConfig{Count: 1},
		Health: config.HealthConfig{
			PollInterval: 50 * time.Millisecond,
			CheckTimeout: time.Second,
			SnapshotTTL:  time.Minute,
			Services:     map[string]string{"validator": healthURL},
		},
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	inj := simulator.New(domain.ModeNormal)
	sim := httptest.NewServer(inj.Handler())
	defer sim.Close()

	cfg := testAppConfig(sim.URL+"/validate", sim.URL+"/health")
	p, err := NewPipeline(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drive the worker and aggregator directly; the intake surface runs
	// on an httptest listener instead of a fixed port.
	go p.workers[0].Run(ctx)
	go p.aggregator.Start(ctx)

	ts := httptest.NewServer(p.apiServer.Handler())
	defer ts.Close()

	// Intake returns immediately with a PENDING record.
	payload, _ := json.Marshal(map[string]any{
		"order_id": "e2e-1", "product": "widget", "quantity": 2,
	})
	resp, err := http.Post(ts.URL+"/create_order", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The worker eventually validates the order through the simulator.
	require.Eventually(t, func() bool {
		order, err := p.repo.GetByID(context.Background(), "e2e-1")
		return err == nil && order.Status == domain.StatusValidated
	}, 2*time.Second, 10*time.Millisecond)

	// The aggregator has polled at least once by now.
	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/health_status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPipelineValidatorErrorModeFailsOrders(t *testing.T) {
	inj := simulator.New(domain.ModeError)
	sim := httptest.NewServer(inj.Handler())
	defer sim.Close()

	cfg := testAppConfig(sim.URL+"/validate", sim.URL+"/health")
	p, err := NewPipeline(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.workers[0].Run(ctx)

	ts := httptest.NewServer(p.apiServer.Handler())
	defer ts.Close()

	payload, _ := json.Marshal(map[string]any{
		"order_id": "e2e-err", "product": "widget", "quantity": 1,
	})
	resp, err := http.Post(ts.URL+"/create_order", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()

	require.Eventually(t, func() bool {
		order, err := p.repo.GetByID(context.Background(), "e2e-err")
		return err == nil && order.Status == domain.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewPipelineDefaultsToMemoryBackends(t *testing.T) {
	cfg := testAppConfig("http://localhost:1/validate", "http://localhost:1/health")
	p, err := NewPipeline(cfg)
	require.NoError(t, err)

	assert.Nil(t, p.db)
	assert.Nil(t, p.redis)
	assert.NotNil(t, p.repo)
	assert.NotNil(t, p.queue)
	assert.Len(t, p.workers, 1)
}
