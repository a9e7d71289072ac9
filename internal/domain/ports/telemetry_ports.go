package ports

import (
	"context"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
)

type LogStore interface {
	InsertLogs(ctx context.Context, entries []models.LogEntry) error
}

type RequestRecorder interface {
	RecordSuccess(provider, endpoint string, statusCode int, duration time.Duration)
	RecordError(provider, endpoint string, statusCode int, duration time.Duration, message string)
	RecordQuota(remaining, limit *int)
}

type Broadcaster interface {
	Name() string
	HasSubscribers(ctx context.Context) bool
	Publish(ctx context.Context, topic string, matches []models.Match) error
}

type HealthRecorder interface {
	RecordMatchCount(n int)
	Snapshot(suspended bool, suspendedUntil time.Time) models.Health
}
