// Package health provides periodic dependency polling and a TTL-cached
// consolidated system-health view.
package health

import "time"

// ServiceStatus is the classification of a single dependency check.
type ServiceStatus string

const (
	StatusHealthy   ServiceStatus = "healthy"
	StatusDegraded  ServiceStatus = "degraded"
	StatusUnhealthy ServiceStatus = "unhealthy"
	StatusDown      ServiceStatus = "down"
	StatusUnknown   ServiceStatus = "unknown"
)

// SystemStatus is the aggregated overall state.
type SystemStatus string

const (
	SystemHealthy  SystemStatus = "healthy"
	SystemDegraded SystemStatus = "degraded"
	SystemCritical SystemStatus = "critical"
)

// ServiceHealth is the result of polling one service health endpoint.
type ServiceHealth struct {
	Service      string        `json:"service"`
	Status       ServiceStatus `json:"status"`
	ResponseTime float64       `json:"response_time,omitempty"` // seconds
	Error        string        `json:"error,omitempty"`
}

// InfraHealth is the result of checking a backing infrastructure piece
// (queue or store reachability).
type InfraHealth struct {
	Status     ServiceStatus `json:"status"`
	QueueDepth int64         `json:"queue_length,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Snapshot is a timestamped consolidation of all monitored dependencies.
type Snapshot struct {
	Timestamp      time.Time                `json:"timestamp"`
	Overall        SystemStatus             `json:"overall_status"`
	Services       map[string]ServiceHealth `json:"services"`
	Infrastructure map[string]InfraHealth   `json:"infrastructure"`
}
