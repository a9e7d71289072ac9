package service

import (
	"strings"
	"sync"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
)

// ResolveKind picks the adapter from the configured base URL. Unknown hosts use API-Football.
func ResolveKind(baseURL string) models.ProviderKind {
	u := strings.ToLower(baseURL)
	switch {
	case strings.Contains(u, "football-data.org"):
		return models.ProviderFootballData
	case strings.Contains(u, "api-sports.io"), strings.Contains(u, "api-football"):
		return models.ProviderAPIFootball
	default:
		return models.ProviderAPIFootball
	}
}

// Registry keeps the adapter for the current config and rebuilds it only when
// the provider kind, base URL or key changes.
type Registry struct {
	mu      sync.Mutex
	factory ports.ProviderFactory
	key     string
	current ports.Provider
}

func NewRegistry(factory ports.ProviderFactory) *Registry {
	return &Registry{factory: factory}
}

func (r *Registry) Resolve(cfg models.ProviderConfig) ports.Provider {
	kind := ResolveKind(cfg.BaseURL)
	key := kind.String() + "|" + cfg.BaseURL + "|" + cfg.APIKey

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.key == key {
		return r.current
	}
	r.current = r.factory.Build(kind, cfg)
	r.key = key
	return r.current
}

func (r *Registry) Suspended(kind models.ProviderKind) (bool, time.Time) {
	return r.factory.Suspended(kind)
}
