package poller

import (
	"context"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"go.uber.org/zap"
)

type MatchSource interface {
	Live(ctx context.Context) []models.Match
	Today(ctx context.Context) []models.Match
}

// Poller refreshes live and today lists on a fixed interval and pushes them to
// every broadcaster that currently has subscribers.
type Poller struct {
	log          *zap.Logger
	source       MatchSource
	broadcasters []ports.Broadcaster
	interval     time.Duration
}

func New(log *zap.Logger, source MatchSource, interval time.Duration, broadcasters ...ports.Broadcaster) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &Poller{
		log:          log,
		source:       source,
		broadcasters: broadcasters,
		interval:     interval,
	}
}

func (p *Poller) Run(ctx context.Context) {
	p.log.Info("poller started", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped")
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce skips the provider entirely when nobody is listening.
func (p *Poller) PollOnce(ctx context.Context) int {
	const op = "poller.PollOnce"

	active := make([]ports.Broadcaster, 0, len(p.broadcasters))
	for _, b := range p.broadcasters {
		if b.HasSubscribers(ctx) {
			active = append(active, b)
		}
	}
	if len(active) == 0 {
		p.log.Debug("no subscribers, skipping poll", zap.String("op", op))
		return 0
	}

	live := p.source.Live(ctx)
	today := p.source.Today(ctx)

	published := 0
	for _, b := range active {
		for _, u := range []struct {
			topic   string
			matches []models.Match
		}{
			{models.TopicLive, live},
			{models.TopicToday, today},
		} {
			if err := b.Publish(ctx, u.topic, u.matches); err != nil {
				p.log.Warn("publish failed",
					zap.String("op", op),
					zap.String("broadcaster", b.Name()),
					zap.String("topic", u.topic),
					zap.Error(err),
				)
				continue
			}
			published++
		}
	}

	p.log.Debug("poll published",
		zap.String("op", op),
		zap.Int("live", len(live)),
		zap.Int("today", len(today)),
		zap.Int("published", published),
	)
	return published
}
