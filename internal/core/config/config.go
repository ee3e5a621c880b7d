package config

import (
	"time"

	redisclient "github.com/vietddude/orderpipe/internal/infra/redis"
	"github.com/vietddude/orderpipe/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Database  postgres.Config    `yaml:"database"`
	Redis     redisclient.Config `yaml:"redis"`
	Validator ValidatorConfig    `yaml:"validator"`
	Workers   WorkerConfig       `yaml:"workers"`
	Health    HealthConfig       `yaml:"health"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ValidatorConfig holds the resilient validation client settings.
type ValidatorConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// RetryConfig holds the timeout-retry policy.
type RetryConfig struct {
	MaxRetries uint64        `yaml:"max_retries"`
	Base       time.Duration `yaml:"base"`
	Cap        time.Duration `yaml:"cap"`
}

// BreakerConfig holds the circuit breaker policy.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
}

// WorkerConfig holds validation worker settings.
type WorkerConfig struct {
	Count int `yaml:"count"`
}

// HealthConfig holds the health aggregator settings.
type HealthConfig struct {
	PollInterval time.Duration     `yaml:"poll_interval"`
	CheckTimeout time.Duration     `yaml:"check_timeout"`
	SnapshotTTL  time.Duration     `yaml:"snapshot_ttl"`
	Services     map[string]string `yaml:"services"`
}
