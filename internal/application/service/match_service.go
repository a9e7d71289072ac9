package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"github.com/ozzus/fan-predict/internal/domain/status"
	"github.com/ozzus/fan-predict/internal/infrastructures/cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type Config struct {
	LiveTTL           time.Duration
	DefaultTTL        time.Duration
	StaleTTL          time.Duration
	SingleTTL         time.Duration
	DefaultWindowDays int
	UpstreamTimeout   time.Duration
	Fallback          models.ProviderConfig
}

// Query selects matches; zero dates and empty filters mean unset.
type Query struct {
	DateFrom    time.Time
	DateTo      time.Time
	Competition string
	Status      models.Status
}

// MatchService is the single entry point for match reads. Every failure below it
// degrades to an empty or stale result; only GetMatch reports ErrMatchNotFound.
type MatchService struct {
	log       *zap.Logger
	cfg       Config
	configs   ports.ProviderConfigReader
	registry  *Registry
	tallies   ports.VoteTallyReader
	snapshots ports.SnapshotQueue
	health    ports.HealthRecorder
	lists     *cache.Cache[[]models.Match]
	singles   *cache.Cache[models.Match]
	now       func() time.Time
}

func NewMatchService(log *zap.Logger, cfg Config, configs ports.ProviderConfigReader, registry *Registry, tallies ports.VoteTallyReader, snapshots ports.SnapshotQueue, health ports.HealthRecorder, now func() time.Time) *MatchService {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.LiveTTL <= 0 {
		cfg.LiveTTL = 30 * time.Second
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 180 * time.Second
	}
	if cfg.StaleTTL <= 0 {
		cfg.StaleTTL = time.Hour
	}
	if cfg.SingleTTL <= 0 {
		cfg.SingleTTL = 600 * time.Second
	}
	if cfg.DefaultWindowDays <= 0 {
		cfg.DefaultWindowDays = 3
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 3 * time.Minute
	}

	return &MatchService{
		log:       log,
		cfg:       cfg,
		configs:   configs,
		registry:  registry,
		tallies:   tallies,
		snapshots: snapshots,
		health:    health,
		lists:     cache.New[[]models.Match](now),
		singles:   cache.New[models.Match](now),
		now:       now,
	}
}

func (s *MatchService) GetMatches(ctx context.Context, q Query) []models.Match {
	const op = "service.GetMatches"
	tracer := otel.Tracer("match-engine/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	now := s.now().UTC()
	provider := s.provider(ctx)
	kind := provider.Kind()

	q = s.normalizeQuery(q, now)
	key := listKey(kind, q)

	span.SetAttributes(
		attribute.String("match.provider", kind.String()),
		attribute.String("match.cache_key", key),
	)

	logger := s.log.With(
		zap.String("op", op),
		zap.String("provider", kind.String()),
		zap.String("cache_key", key),
	)

	ttl := s.cfg.DefaultTTL
	if q.Status == models.StatusLive {
		ttl = s.cfg.LiveTTL
	}

	if cached, ok := s.lists.Get(key, ttl, cache.FreshOnly); ok {
		logger.Debug("matches served from cache", zap.Int("count", len(cached)))
		span.AddEvent("match.cache.hit")
		return present(cached, now)
	}
	span.AddEvent("match.cache.miss")

	records, err := s.fetch(ctx, provider, q)
	if err != nil {
		logger.Warn("provider fetch failed", zap.Error(err))
		span.RecordError(err)
	}

	// Stale entries stand in only for a failed or empty fetch, never for a
	// fresh answer that the filters reduced to nothing.
	if err != nil || len(records) == 0 {
		if stale, ok := s.lists.Get(key, s.cfg.StaleTTL, cache.StaleAllowed); ok {
			logger.Info("serving stale matches", zap.Int("count", len(stale)))
			span.AddEvent("match.cache.stale")
			return present(stale, now)
		}
		if err != nil {
			span.SetStatus(otelcodes.Error, "provider fetch failed")
		}
		return []models.Match{}
	}

	matches := s.transform(provider, records, now, logger)
	matches = filterMatches(matches, q)

	if len(matches) == 0 {
		s.lists.Set(key, []models.Match{})
		logger.Debug("provider returned no matching records", zap.Int("records", len(records)))
		return []models.Match{}
	}

	s.enrich(ctx, matches, logger)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].KickoffUTC.Before(matches[j].KickoffUTC)
	})
	SelectFeatured(matches)

	s.lists.Set(key, matches)
	for _, m := range matches {
		s.singles.Set(singleKey(kind, m.ID), m)
	}
	if s.health != nil {
		s.health.RecordMatchCount(len(matches))
	}
	if s.snapshots != nil {
		s.snapshots.Enqueue(matches)
	}

	span.SetAttributes(attribute.Int("match.count", len(matches)))
	logger.Debug("matches fetched from provider", zap.Int("count", len(matches)))
	return present(matches, now)
}

func (s *MatchService) GetMatch(ctx context.Context, id models.MatchID) (models.Match, error) {
	const op = "service.GetMatch"
	tracer := otel.Tracer("match-engine/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int64("match.id", int64(id)))

	now := s.now().UTC()
	provider := s.provider(ctx)
	kind := provider.Kind()
	key := singleKey(kind, id)

	logger := s.log.With(
		zap.String("op", op),
		zap.String("provider", kind.String()),
		zap.Int64("match_id", int64(id)),
	)

	if id <= 0 {
		return models.Match{}, derr.ErrMatchNotFound
	}

	if cached, ok := s.singles.Get(key, s.cfg.SingleTTL, cache.FreshOnly); ok {
		logger.Debug("match served from cache")
		span.AddEvent("match.cache.hit")
		return presentOne(cached, now), nil
	}

	fetchCtx, cancel := s.upstreamContext(ctx)
	raw, err := provider.FetchByID(fetchCtx, id)
	cancel()
	if err == nil {
		match, terr := provider.Transform(raw, now)
		if terr == nil {
			one := []models.Match{match}
			s.enrich(ctx, one, logger)
			s.singles.Set(key, one[0])
			if s.snapshots != nil {
				s.snapshots.Enqueue(one)
			}
			return presentOne(one[0], now), nil
		}
		err = terr
	}

	if !errors.Is(err, derr.ErrMatchNotFound) {
		logger.Warn("single match lookup failed", zap.Error(err))
		span.RecordError(err)
	}

	if stale, ok := s.singles.Get(key, s.cfg.StaleTTL, cache.StaleAllowed); ok {
		logger.Info("serving stale match")
		return presentOne(stale, now), nil
	}

	span.SetStatus(otelcodes.Error, "match not found")
	return models.Match{}, fmt.Errorf("%s: %w", op, derr.ErrMatchNotFound)
}

func (s *MatchService) Today(ctx context.Context) []models.Match {
	today := startOfDay(s.now())
	return s.GetMatches(ctx, Query{DateFrom: today, DateTo: today})
}

func (s *MatchService) Live(ctx context.Context) []models.Match {
	return s.GetMatches(ctx, Query{Status: models.StatusLive})
}

func (s *MatchService) Upcoming(ctx context.Context, days int) []models.Match {
	if days <= 0 {
		days = 7
	}
	if days > 14 {
		days = 14
	}
	today := startOfDay(s.now())
	return s.GetMatches(ctx, Query{
		DateFrom: today,
		DateTo:   today.AddDate(0, 0, days),
		Status:   models.StatusNotStarted,
	})
}

func (s *MatchService) ByCompetition(ctx context.Context, code string) []models.Match {
	return s.GetMatches(ctx, Query{Competition: code})
}

// Search matches team and competition names over the default window.
func (s *MatchService) Search(ctx context.Context, term string) []models.Match {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []models.Match{}
	}

	matches := s.GetMatches(ctx, Query{})
	found := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if matchesTerm(m, term) {
			found = append(found, m)
		}
	}
	return found
}

func (s *MatchService) ClearCache() {
	s.lists.Clear()
	s.singles.Clear()
	s.log.Info("match caches cleared", zap.String("op", "service.ClearCache"))
}

func (s *MatchService) Health(ctx context.Context) models.Health {
	kind := ResolveKind(s.activeConfig(ctx).BaseURL)
	suspended, until := s.registry.Suspended(kind)
	if s.health == nil {
		return models.Health{Status: models.HealthUnknown, Provider: kind.String()}
	}

	h := s.health.Snapshot(suspended, until)
	if h.Provider == "" {
		h.Provider = kind.String()
	}
	return h
}

func (s *MatchService) provider(ctx context.Context) ports.Provider {
	return s.registry.Resolve(s.activeConfig(ctx))
}

func (s *MatchService) activeConfig(ctx context.Context) models.ProviderConfig {
	const op = "service.activeConfig"

	if s.configs == nil {
		return s.cfg.Fallback
	}

	cfg, err := s.configs.ActiveProviderConfig(ctx)
	if err != nil {
		if !errors.Is(err, derr.ErrProviderConfigNotFound) {
			s.log.Warn("provider config read failed, using fallback", zap.String("op", op), zap.Error(err))
		}
		return s.cfg.Fallback
	}
	if !cfg.IsActive || !cfg.Enabled {
		return s.cfg.Fallback
	}
	return cfg
}

func (s *MatchService) normalizeQuery(q Query, now time.Time) Query {
	q.Competition = strings.ToUpper(strings.TrimSpace(q.Competition))
	if q.Status == models.StatusLive {
		q.DateFrom = time.Time{}
		q.DateTo = time.Time{}
		return q
	}

	today := startOfDay(now)
	if q.DateFrom.IsZero() {
		q.DateFrom = today.AddDate(0, 0, -s.cfg.DefaultWindowDays)
	}
	if q.DateTo.IsZero() {
		q.DateTo = today.AddDate(0, 0, s.cfg.DefaultWindowDays)
	}
	q.DateFrom = startOfDay(q.DateFrom)
	q.DateTo = startOfDay(q.DateTo)
	return q
}

// upstreamContext detaches provider calls from the caller's deadline so the
// limiter wait and the 429 cooldown can run to completion.
func (s *MatchService) upstreamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.cfg.UpstreamTimeout)
}

func (s *MatchService) fetch(ctx context.Context, provider ports.Provider, q Query) ([]ports.RawRecord, error) {
	ctx, cancel := s.upstreamContext(ctx)
	defer cancel()

	if q.Status == models.StatusLive {
		return provider.FetchLive(ctx)
	}
	if q.DateTo.Before(q.DateFrom) {
		return nil, nil
	}
	return provider.FetchWindow(ctx, q.DateFrom, q.DateTo, q.Competition)
}

func (s *MatchService) transform(provider ports.Provider, records []ports.RawRecord, now time.Time, logger *zap.Logger) []models.Match {
	matches := make([]models.Match, 0, len(records))
	for _, raw := range records {
		m, err := provider.Transform(raw, now)
		if err != nil {
			logger.Debug("record skipped", zap.Int64("record_id", raw.RecordID()), zap.Error(err))
			continue
		}
		matches = append(matches, m)
	}
	return matches
}

func (s *MatchService) enrich(ctx context.Context, matches []models.Match, logger *zap.Logger) {
	tallies := map[models.MatchID]models.VoteTally{}
	if s.tallies != nil {
		ids := make([]models.MatchID, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		loaded, err := s.tallies.VoteTallies(ctx, ids)
		if err != nil {
			logger.Warn("vote tallies unavailable", zap.Error(err))
		} else if loaded != nil {
			tallies = loaded
		}
	}
	ApplyVotes(matches, tallies)
}

func filterMatches(matches []models.Match, q Query) []models.Match {
	if q.Competition == "" && q.Status == "" {
		return matches
	}

	out := matches[:0]
	for _, m := range matches {
		if q.Competition != "" && m.CompetitionCode != q.Competition {
			continue
		}
		if q.Status != "" && m.Status != q.Status {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesTerm(m models.Match, term string) bool {
	fields := []string{
		m.HomeTeam.Name,
		m.HomeTeam.ShortName,
		m.AwayTeam.Name,
		m.AwayTeam.ShortName,
		m.CompetitionName,
		m.CompetitionCode,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// present copies cached matches so lock recomputation never mutates the cache.
func present(matches []models.Match, now time.Time) []models.Match {
	out := make([]models.Match, len(matches))
	copy(out, matches)
	for i := range out {
		status.ApplyLock(&out[i], now)
	}
	return out
}

func presentOne(m models.Match, now time.Time) models.Match {
	status.ApplyLock(&m, now)
	return m
}

func listKey(kind models.ProviderKind, q Query) string {
	if q.Status == models.StatusLive {
		return fmt.Sprintf("%s|live|%s", kind, q.Competition)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		kind,
		q.DateFrom.Format(time.DateOnly),
		q.DateTo.Format(time.DateOnly),
		q.Competition,
		q.Status,
	)
}

func singleKey(kind models.ProviderKind, id models.MatchID) string {
	return fmt.Sprintf("%s|match|%d", kind, id)
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
