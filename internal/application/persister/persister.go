package persister

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"go.uber.org/zap"
)

// Persister writes match snapshots in the background. Enqueue never blocks:
// when the queue is full the oldest batch is dropped.
type Persister struct {
	log     *zap.Logger
	repo    ports.SnapshotRepository
	queue   chan []models.Match
	timeout time.Duration
	dropped atomic.Int64
	written atomic.Int64
}

func New(log *zap.Logger, repo ports.SnapshotRepository, size int, timeout time.Duration) *Persister {
	if log == nil {
		log = zap.NewNop()
	}
	if size <= 0 {
		size = 64
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Persister{
		log:     log,
		repo:    repo,
		queue:   make(chan []models.Match, size),
		timeout: timeout,
	}
}

func (p *Persister) Enqueue(matches []models.Match) {
	if len(matches) == 0 || p.repo == nil {
		return
	}
	batch := append([]models.Match(nil), matches...)

	for {
		select {
		case p.queue <- batch:
			return
		default:
		}

		select {
		case old := <-p.queue:
			p.dropped.Add(1)
			p.log.Warn("snapshot queue full, dropped oldest batch", zap.Int("matches", len(old)))
		default:
		}
	}
}

// Run consumes batches until ctx is done, then drains what is already queued.
func (p *Persister) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case batch := <-p.queue:
			p.write(ctx, batch)
		}
	}
}

func (p *Persister) Dropped() int64 {
	return p.dropped.Load()
}

func (p *Persister) Written() int64 {
	return p.written.Load()
}

func (p *Persister) drain() {
	for {
		select {
		case batch := <-p.queue:
			p.write(context.Background(), batch)
		default:
			return
		}
	}
}

func (p *Persister) write(ctx context.Context, batch []models.Match) {
	const op = "persister.write"

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.repo.UpsertSnapshots(writeCtx, batch); err != nil {
		p.log.Warn("snapshot upsert failed",
			zap.String("op", op),
			zap.Int("matches", len(batch)),
			zap.Error(err),
		)
		return
	}
	p.written.Add(int64(len(batch)))
}
