package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vietddude/orderpipe/internal/infra/queue"
	"github.com/vietddude/orderpipe/internal/infra/storage"
	"github.com/vietddude/orderpipe/internal/metrics"
)

// Config holds the aggregator's polling behavior.
type Config struct {
	// Services maps service name to its /health URL.
	Services map[string]string
	// PollInterval is the fixed timer between poll cycles.
	PollInterval time.Duration
	// CheckTimeout bounds each outbound health call.
	CheckTimeout time.Duration
	// SnapshotTTL bounds how long a cached snapshot may be served. It
	// must exceed PollInterval or a single missed cycle blanks the cache.
	SnapshotTTL time.Duration
}

// DefaultConfig returns the production polling policy.
func DefaultConfig(services map[string]string) Config {
	return Config{
		Services:     services,
		PollInterval: 30 * time.Second,
		CheckTimeout: 15 * time.Second,
		SnapshotTTL:  5 * time.Minute,
	}
}

// Aggregator polls the configured service health endpoints plus the
// queue/store infrastructure on a fixed timer and caches a consolidated
// snapshot. Reads never trigger a poll.
type Aggregator struct {
	cfg        Config
	httpClient *http.Client
	queue      queue.TaskQueue
	store      storage.OrderRepository
	log        *slog.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
	takenAt  time.Time

	now func() time.Time
}

// NewAggregator creates a health aggregator.
func NewAggregator(cfg Config, q queue.TaskQueue, store storage.OrderRepository) *Aggregator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 15 * time.Second
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 5 * time.Minute
	}
	return &Aggregator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.CheckTimeout},
		queue:      q,
		store:      store,
		log:        slog.Default().With("component", "health_aggregator"),
		now:        time.Now,
	}
}

// Start runs the poll loop until ctx is cancelled. The loop body is
// serial: a new cycle never starts before the previous one completes,
// bounding concurrent outbound calls.
func (a *Aggregator) Start(ctx context.Context) {
	a.RunOnce(ctx)

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.RunOnce(ctx)
		}
	}
}

// Snapshot returns the last cached snapshot, or false when nothing has
// been polled within the TTL window. Expired snapshots are reported as
// absent, never served.
func (a *Aggregator) Snapshot() (*Snapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.snapshot == nil || a.now().Sub(a.takenAt) > a.cfg.SnapshotTTL {
		return nil, false
	}
	return a.snapshot, true
}

// RunOnce executes a single poll cycle and stores the resulting snapshot.
func (a *Aggregator) RunOnce(ctx context.Context) {
	start := a.now()
	snap := &Snapshot{
		Timestamp:      start,
		Overall:        SystemHealthy,
		Services:       make(map[string]ServiceHealth),
		Infrastructure: make(map[string]InfraHealth),
	}

	infraDown := false
	snap.Infrastructure["queue"] = a.checkQueue(ctx)
	snap.Infrastructure["store"] = a.checkStore(ctx)
	for _, infra := range snap.Infrastructure {
		if infra.Status != StatusHealthy {
			infraDown = true
		}
	}

	unhealthy := 0
	for name, url := range a.cfg.Services {
		sh := a.checkService(ctx, name, url)
		snap.Services[name] = sh

		up := 0.0
		if sh.Status == StatusHealthy {
			up = 1.0
		} else {
			unhealthy++
		}
		metrics.ServiceUp.WithLabelValues(name).Set(up)
	}

	// Infrastructure trumps everything; a sick service only degrades.
	if infraDown {
		snap.Overall = SystemCritical
	} else if unhealthy > 0 {
		snap.Overall = SystemDegraded
	}

	a.mu.Lock()
	a.snapshot = snap
	a.takenAt = a.now()
	a.mu.Unlock()

	metrics.HealthPollDuration.Observe(time.Since(start).Seconds())
	a.log.Info("Health check completed", "overall", snap.Overall)
}

// checkService polls one /health endpoint and classifies the result.
func (a *Aggregator) checkService(ctx context.Context, name, url string) ServiceHealth {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
	if err != nil {
		return ServiceHealth{Service: name, Status: StatusDown, Error: err.Error()}
	}

	start := a.now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return ServiceHealth{Service: name, Status: StatusDown, Error: err.Error()}
	}
	defer resp.Body.Close()
	elapsed := time.Since(start).Seconds()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return ServiceHealth{Service: name, Status: StatusHealthy, ResponseTime: elapsed}
	case resp.StatusCode == http.StatusGatewayTimeout:
		return ServiceHealth{
			Service: name,
			Status:  StatusDegraded,
			Error:   fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	default:
		return ServiceHealth{
			Service: name,
			Status:  StatusUnhealthy,
			Error:   fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
}

func (a *Aggregator) checkQueue(ctx context.Context) InfraHealth {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CheckTimeout)
	defer cancel()

	if err := a.queue.Health(callCtx); err != nil {
		return InfraHealth{Status: StatusDown, Error: err.Error()}
	}

	h := InfraHealth{Status: StatusHealthy}
	if depth, err := a.queue.Len(callCtx); err == nil {
		h.QueueDepth = depth
		metrics.QueueDepth.Set(float64(depth))
	}
	return h
}

func (a *Aggregator) checkStore(ctx context.Context) InfraHealth {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CheckTimeout)
	defer cancel()

	if err := a.store.Health(callCtx); err != nil {
		return InfraHealth{Status: StatusDown, Error: err.Error()}
	}
	return InfraHealth{Status: StatusHealthy}
}
