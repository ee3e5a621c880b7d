package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Workers.Count <= 0 {
		cfg.Workers.Count = 1
	}
	if cfg.Validator.Timeout == 0 {
		cfg.Validator.Timeout = 5 * time.Second
	}
	if cfg.Validator.Retry.MaxRetries == 0 {
		cfg.Validator.Retry.MaxRetries = 2
	}
	if cfg.Validator.Retry.Base == 0 {
		cfg.Validator.Retry.Base = 4 * time.Second
	}
	if cfg.Validator.Retry.Cap == 0 {
		cfg.Validator.Retry.Cap = 10 * time.Second
	}
	if cfg.Validator.Breaker.FailureThreshold == 0 {
		cfg.Validator.Breaker.FailureThreshold = 3
	}
	if cfg.Validator.Breaker.Cooldown == 0 {
		cfg.Validator.Breaker.Cooldown = 30 * time.Second
	}
	if cfg.Health.PollInterval == 0 {
		cfg.Health.PollInterval = 30 * time.Second
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = 15 * time.Second
	}
	if cfg.Health.SnapshotTTL == 0 {
		cfg.Health.SnapshotTTL = 5 * time.Minute
	}
}
