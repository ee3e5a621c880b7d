// Package control wires the pipeline components together and manages
// their lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/orderpipe/internal/api"
	"github.com/vietddude/orderpipe/internal/core/config"
	"github.com/vietddude/orderpipe/internal/health"
	"github.com/vietddude/orderpipe/internal/infra/queue"
	redisclient "github.com/vietddude/orderpipe/internal/infra/redis"
	"github.com/vietddude/orderpipe/internal/infra/storage"
	"github.com/vietddude/orderpipe/internal/infra/storage/memory"
	"github.com/vietddude/orderpipe/internal/infra/storage/postgres"
	"github.com/vietddude/orderpipe/internal/validation"
)

// MigrationsDir is where goose looks for SQL migrations, relative to the
// working directory.
const MigrationsDir = "migrations"

// Pipeline is the main application struct managing the order pipeline
// lifecycle: intake API, validation workers and health aggregator.
type Pipeline struct {
	cfg        *config.AppConfig
	repo       storage.OrderRepository
	queue      queue.TaskQueue
	client     *validation.Client
	workers    []*validation.Worker
	aggregator *health.Aggregator
	apiServer  *api.Server
	db         *postgres.DB
	redis      *redisclient.Client
	log        *slog.Logger
}

// NewPipeline creates a pipeline with all dependencies initialized.
func NewPipeline(cfg *config.AppConfig) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, log: slog.Default()}

	// 1. Order store: PostgreSQL when configured, in-memory otherwise.
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(MigrationsDir); err != nil {
			return nil, err
		}
		p.db = db
		p.repo = postgres.NewOrderRepo(db)
		slog.Info("Using PostgreSQL order store")
	} else {
		p.repo = memory.NewOrderRepo()
		slog.Info("Using in-memory order store")
	}

	// 2. Work queue: Redis when configured, in-memory otherwise.
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		p.redis = rc
		p.queue = redisclient.NewTaskQueue(rc, cfg.Redis.QueueKey)
		slog.Info("Using Redis task queue", "key", cfg.Redis.QueueKey)
	} else {
		p.queue = queue.NewMemoryQueue(1024)
		slog.Info("Using in-memory task queue")
	}

	// 3. Resilient validation client (one shared breaker).
	p.client = validation.NewClient(validation.ClientConfig{
		URL:              cfg.Validator.URL,
		Timeout:          cfg.Validator.Timeout,
		MaxRetries:       cfg.Validator.Retry.MaxRetries,
		RetryBase:        cfg.Validator.Retry.Base,
		RetryCap:         cfg.Validator.Retry.Cap,
		FailureThreshold: cfg.Validator.Breaker.FailureThreshold,
		Cooldown:         cfg.Validator.Breaker.Cooldown,
	})

	// 4. Validation workers sharing the queue and the client.
	for i := 0; i < cfg.Workers.Count; i++ {
		p.workers = append(p.workers, validation.NewWorker(i, p.queue, p.repo, p.client))
	}

	// 5. Health aggregator.
	p.aggregator = health.NewAggregator(health.Config{
		Services:     cfg.Health.Services,
		PollInterval: cfg.Health.PollInterval,
		CheckTimeout: cfg.Health.CheckTimeout,
		SnapshotTTL:  cfg.Health.SnapshotTTL,
	}, p.queue, p.repo)

	// 6. Intake API server.
	p.apiServer = api.NewServer(cfg.Server.Port, p.repo, p.queue, p.aggregator)

	return p, nil
}

// Start starts the API server, health aggregator and workers.
func (p *Pipeline) Start(ctx context.Context) error {
	go func() {
		if err := p.apiServer.Start(); err != nil {
			p.log.Error("API server failed", "error", err)
		}
	}()

	go p.aggregator.Start(ctx)

	for _, w := range p.workers {
		go func(w *validation.Worker) {
			if err := w.Run(ctx); err != nil {
				p.log.Error("Validation worker failed", "error", err)
			}
		}(w)
	}

	p.log.Info("Pipeline started",
		"port", p.cfg.Server.Port, "workers", len(p.workers))
	return nil
}

// Stop shuts the pipeline down.
func (p *Pipeline) Stop(ctx context.Context) error {
	p.log.Info("Stopping pipeline...")

	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			p.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			p.log.Warn("Failed to close database", "error", err)
		}
	}

	return p.apiServer.Stop(ctx)
}
