package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"go.uber.org/zap"
)

type Config struct {
	FlushThreshold int
	FlushInterval  time.Duration
	QueueSize      int
	WriteTimeout   time.Duration
}

// Recorder keeps process-wide provider health counters and buffers request and
// error logs until a batch is large enough to be written to the log store.
type Recorder struct {
	cfg   Config
	store ports.LogStore
	now   func() time.Time
	log   *zap.Logger

	mu             sync.Mutex
	provider       string
	totalRequests  int64
	totalErrors    int64
	lastSuccessAt  *time.Time
	lastErrorAt    *time.Time
	lastError      string
	lastStatusCode int
	lastMatchCount int
	quotaRemaining *int
	quotaLimit     *int
	requestLogs    []models.LogEntry
	errorLogs      []models.LogEntry

	batches chan []models.LogEntry
	dropped atomic.Int64
}

func NewRecorder(cfg Config, store ports.LogStore, now func() time.Time, log *zap.Logger) *Recorder {
	if cfg.FlushThreshold <= 0 {
		cfg.FlushThreshold = 5
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Recorder{
		cfg:     cfg,
		store:   store,
		now:     now,
		log:     log,
		batches: make(chan []models.LogEntry, cfg.QueueSize),
	}
}

func (r *Recorder) RecordSuccess(provider, endpoint string, statusCode int, duration time.Duration) {
	at := r.now()
	entry := models.LogEntry{
		Kind:       models.LogRequest,
		Provider:   provider,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Duration:   duration,
		At:         at,
	}

	r.mu.Lock()
	r.provider = provider
	r.totalRequests++
	r.lastSuccessAt = &at
	r.lastStatusCode = statusCode
	r.requestLogs = append(r.requestLogs, entry)
	batch := r.takeIfFull(&r.requestLogs)
	r.mu.Unlock()

	r.handoff(batch)
}

func (r *Recorder) RecordError(provider, endpoint string, statusCode int, duration time.Duration, message string) {
	at := r.now()
	entry := models.LogEntry{
		Kind:       models.LogError,
		Provider:   provider,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Duration:   duration,
		Message:    message,
		At:         at,
	}

	r.mu.Lock()
	r.provider = provider
	r.totalRequests++
	r.totalErrors++
	r.lastErrorAt = &at
	r.lastError = message
	if statusCode != 0 {
		r.lastStatusCode = statusCode
	}
	r.errorLogs = append(r.errorLogs, entry)
	batch := r.takeIfFull(&r.errorLogs)
	r.mu.Unlock()

	r.handoff(batch)
}

func (r *Recorder) RecordQuota(remaining, limit *int) {
	r.mu.Lock()
	if remaining != nil {
		v := *remaining
		r.quotaRemaining = &v
	}
	if limit != nil {
		v := *limit
		r.quotaLimit = &v
	}
	r.mu.Unlock()
}

func (r *Recorder) RecordMatchCount(n int) {
	r.mu.Lock()
	r.lastMatchCount = n
	r.mu.Unlock()
}

// Snapshot derives the reported status from the most recent timestamped event.
func (r *Recorder) Snapshot(suspended bool, suspendedUntil time.Time) models.Health {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := models.Health{
		Provider:       r.provider,
		TotalRequests:  r.totalRequests,
		TotalErrors:    r.totalErrors,
		LastSuccessAt:  copyTime(r.lastSuccessAt),
		LastErrorAt:    copyTime(r.lastErrorAt),
		LastError:      r.lastError,
		LastStatusCode: r.lastStatusCode,
		LastMatchCount: r.lastMatchCount,
		QuotaRemaining: copyInt(r.quotaRemaining),
		QuotaLimit:     copyInt(r.quotaLimit),
		PendingLogs:    len(r.requestLogs) + len(r.errorLogs) + len(r.batches),
		DroppedLogs:    r.dropped.Load(),
	}

	switch {
	case suspended:
		h.Status = models.HealthSuspended
		if !suspendedUntil.IsZero() {
			until := suspendedUntil
			h.SuspendedUntil = &until
		}
	case r.lastErrorAt != nil && (r.lastSuccessAt == nil || r.lastErrorAt.After(*r.lastSuccessAt)):
		h.Status = models.HealthError
	case r.lastSuccessAt != nil:
		h.Status = models.HealthActive
	default:
		h.Status = models.HealthUnknown
	}

	return h
}

// Run writes handed-off batches and periodically flushes partial buffers until ctx is done.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-r.batches:
			r.write(ctx, batch)
		case <-ticker.C:
			r.Flush(ctx)
		}
	}
}

// Flush writes everything buffered or queued right now. Failures are logged, never returned.
func (r *Recorder) Flush(ctx context.Context) int {
	r.mu.Lock()
	pending := make([]models.LogEntry, 0, len(r.requestLogs)+len(r.errorLogs))
	pending = append(pending, r.requestLogs...)
	pending = append(pending, r.errorLogs...)
	r.requestLogs = nil
	r.errorLogs = nil
	r.mu.Unlock()

drain:
	for {
		select {
		case batch := <-r.batches:
			pending = append(pending, batch...)
		default:
			break drain
		}
	}

	r.write(ctx, pending)
	return len(pending)
}

func (r *Recorder) takeIfFull(buf *[]models.LogEntry) []models.LogEntry {
	if len(*buf) < r.cfg.FlushThreshold {
		return nil
	}
	batch := *buf
	*buf = nil
	return batch
}

func (r *Recorder) handoff(batch []models.LogEntry) {
	if len(batch) == 0 {
		return
	}
	for {
		select {
		case r.batches <- batch:
			return
		default:
		}

		select {
		case old := <-r.batches:
			r.dropped.Add(int64(len(old)))
			r.log.Warn("telemetry queue full, dropped oldest batch", zap.Int("entries", len(old)))
		default:
		}
	}
}

func (r *Recorder) write(ctx context.Context, batch []models.LogEntry) {
	const op = "telemetry.Recorder.write"

	if len(batch) == 0 || r.store == nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.WriteTimeout)
	defer cancel()

	if err := r.store.InsertLogs(writeCtx, batch); err != nil {
		r.log.Error("failed to flush provider logs",
			zap.String("op", op),
			zap.Int("entries", len(batch)),
			zap.Error(err),
		)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
