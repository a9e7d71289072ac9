package upstream

import (
	"context"
	"sync"
	"time"
)

// Limiter is a sliding-window throttle: at most limit calls start within any window.
// Callers over the ceiling wait for a slot instead of being rejected.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time
	clock  Clock
}

func NewLimiter(limit int, window time.Duration, clock Clock) *Limiter {
	if limit <= 0 {
		limit = 9
	}
	if window <= 0 {
		window = time.Minute
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &Limiter{
		limit:  limit,
		window: window,
		calls:  make([]time.Time, 0, limit),
		clock:  clock,
	}
}

func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.clock.Now()
		l.prune(now)
		if len(l.calls) < l.limit {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.calls[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	return len(l.calls)
}

func (l *Limiter) prune(now time.Time) {
	i := 0
	for i < len(l.calls) && now.Sub(l.calls[i]) >= l.window {
		i++
	}
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}
