package models

import "time"

type HealthStatus string

const (
	HealthSuspended HealthStatus = "suspended"
	HealthError     HealthStatus = "error"
	HealthActive    HealthStatus = "active"
	HealthUnknown   HealthStatus = "unknown"
)

type Health struct {
	Status         HealthStatus `json:"status"`
	Provider       string       `json:"provider"`
	TotalRequests  int64        `json:"totalRequests"`
	TotalErrors    int64        `json:"totalErrors"`
	LastSuccessAt  *time.Time   `json:"lastSuccessAt"`
	LastErrorAt    *time.Time   `json:"lastErrorAt"`
	LastError      string       `json:"lastError,omitempty"`
	LastStatusCode int          `json:"lastStatusCode"`
	LastMatchCount int          `json:"lastMatchCount"`
	QuotaRemaining *int         `json:"quotaRemaining"`
	QuotaLimit     *int         `json:"quotaLimit"`
	SuspendedUntil *time.Time   `json:"suspendedUntil,omitempty"`
	PendingLogs    int          `json:"pendingLogs"`
	DroppedLogs    int64        `json:"droppedLogs"`
}

type LogKind string

const (
	LogRequest LogKind = "request"
	LogError   LogKind = "error"
)

type LogEntry struct {
	Kind       LogKind
	Provider   string
	Endpoint   string
	StatusCode int
	Duration   time.Duration
	Message    string
	At         time.Time
}
