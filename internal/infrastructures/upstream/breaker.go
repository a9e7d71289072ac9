package upstream

import (
	"sync"
	"time"
)

// Breaker holds the provider suspension flag.
type Breaker struct {
	mu     sync.Mutex
	until  time.Time
	reason string
	clock  Clock
}

func NewBreaker(clock Clock) *Breaker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Breaker{clock: clock}
}

func (b *Breaker) Trip(d time.Duration, reason string) {
	b.mu.Lock()
	b.until = b.clock.Now().Add(d)
	b.reason = reason
	b.mu.Unlock()
}

// State clears the flag once now is past the suspension deadline.
func (b *Breaker) State() (bool, time.Time, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.until.IsZero() {
		return false, time.Time{}, ""
	}
	if b.clock.Now().After(b.until) {
		b.until = time.Time{}
		b.reason = ""
		return false, time.Time{}, ""
	}
	return true, b.until, b.reason
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	b.until = time.Time{}
	b.reason = ""
	b.mu.Unlock()
}
