package providers

import (
	"net/http"
	"sync"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"github.com/ozzus/fan-predict/internal/infrastructures/apifootball"
	afclient "github.com/ozzus/fan-predict/internal/infrastructures/apifootball/http/client"
	"github.com/ozzus/fan-predict/internal/infrastructures/footballdata"
	fdclient "github.com/ozzus/fan-predict/internal/infrastructures/footballdata/http/client"
	"github.com/ozzus/fan-predict/internal/infrastructures/upstream"
	"go.uber.org/zap"
)

type Limits struct {
	PerMinute         int
	Window            time.Duration
	RateLimitCooldown time.Duration
	SuspendCooldown   time.Duration
	Timeout           time.Duration
}

// Factory owns one guard per provider kind, so limiter windows and suspension
// state survive adapter rebuilds after a config change.
type Factory struct {
	limits   Limits
	clock    upstream.Clock
	recorder ports.RequestRecorder
	log      *zap.Logger

	mu     sync.Mutex
	guards map[models.ProviderKind]*upstream.Guard
}

func NewFactory(limits Limits, clock upstream.Clock, recorder ports.RequestRecorder, log *zap.Logger) *Factory {
	if clock == nil {
		clock = upstream.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if limits.Timeout <= 0 {
		limits.Timeout = 10 * time.Second
	}

	return &Factory{
		limits:   limits,
		clock:    clock,
		recorder: recorder,
		log:      log,
		guards:   make(map[models.ProviderKind]*upstream.Guard),
	}
}

func (f *Factory) Build(kind models.ProviderKind, cfg models.ProviderConfig) ports.Provider {
	guard := f.guard(kind)

	f.log.Info("provider adapter built",
		zap.String("provider", kind.String()),
		zap.String("name", cfg.Name),
		zap.String("base_url", cfg.BaseURL),
	)

	switch kind {
	case models.ProviderFootballData:
		return footballdata.NewSource(fdclient.NewClient(cfg.BaseURL, cfg.APIKey, guard))
	default:
		return apifootball.NewSource(afclient.NewClient(cfg.BaseURL, cfg.APIKey, guard), f.clock.Now)
	}
}

func (f *Factory) Suspended(kind models.ProviderKind) (bool, time.Time) {
	f.mu.Lock()
	guard, ok := f.guards[kind]
	f.mu.Unlock()

	if !ok {
		return false, time.Time{}
	}
	return guard.Suspended()
}

func (f *Factory) guard(kind models.ProviderKind) *upstream.Guard {
	f.mu.Lock()
	defer f.mu.Unlock()

	if g, ok := f.guards[kind]; ok {
		return g
	}

	cfg := upstream.Config{
		Provider:          kind.String(),
		PerMinute:         f.limits.PerMinute,
		Window:            f.limits.Window,
		RateLimitCooldown: f.limits.RateLimitCooldown,
		SuspendCooldown:   f.limits.SuspendCooldown,
	}
	switch kind {
	case models.ProviderFootballData:
		cfg.QuotaRemainingHeader = fdclient.QuotaRemainingHeader
	case models.ProviderAPIFootball:
		cfg.QuotaRemainingHeader = afclient.QuotaRemainingHeader
		cfg.QuotaLimitHeader = afclient.QuotaLimitHeader
	}

	g := upstream.NewGuard(cfg, &http.Client{Timeout: f.limits.Timeout}, f.clock, f.recorder, f.log)
	f.guards[kind] = g
	return g
}
