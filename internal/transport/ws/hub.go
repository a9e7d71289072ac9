package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"go.uber.org/zap"
)

// Hub tracks connected websocket clients and fans match updates out to them.
type Hub struct {
	log *zap.Logger
	now func() time.Time

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	totalConnections atomic.Int64
	totalMessages    atomic.Int64
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:     log,
		now:     time.Now,
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

// Run blocks until ctx is done and then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case <-ticker.C:
			h.log.Debug("websocket hub stats",
				zap.Int("active_clients", h.ClientCount()),
				zap.Int64("total_connections", h.totalConnections.Load()),
				zap.Int64("total_messages", h.totalMessages.Load()),
			)
		}
	}
}

func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.totalConnections.Add(1)
	h.log.Info("websocket client connected", zap.String("client_id", c.ID), zap.Int("total", len(h.clients)))
	return true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.log.Info("websocket client disconnected", zap.String("client_id", c.ID), zap.Int("total", len(h.clients)))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) HasSubscribers(context.Context) bool {
	return h.ClientCount() > 0
}

// Publish never blocks on a slow client; a client whose buffer is full is disconnected.
func (h *Hub) Publish(_ context.Context, topic string, matches []models.Match) error {
	if matches == nil {
		matches = []models.Match{}
	}

	data, err := json.Marshal(models.Update{Type: topic, Matches: matches, TS: h.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal %s update: %w", topic, err)
	}

	// Sends happen under the read lock so Unregister cannot close a channel mid-send.
	var slow []*Client
	sent := 0
	h.mu.RLock()
	for c := range h.clients {
		if !c.Wants(topic) {
			continue
		}
		if c.trySend(data) {
			sent++
			continue
		}
		slow = append(slow, c)
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("websocket client too slow, disconnecting", zap.String("client_id", c.ID))
		h.Unregister(c)
	}
	if sent > 0 {
		h.totalMessages.Add(1)
	}

	return nil
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.log.Info("stopping websocket hub", zap.Int("active_clients", len(h.clients)))
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.closed = true
}
