package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"go.uber.org/zap"
)

const (
	maxBodyBytes = 8 << 20
	MaxLogBody   = 512
)

type Config struct {
	Provider             string
	PerMinute            int
	Window               time.Duration
	RateLimitCooldown    time.Duration
	SuspendCooldown      time.Duration
	QuotaRemainingHeader string
	QuotaLimitHeader     string
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Guard wraps every outbound provider call with throttling and suspension handling.
type Guard struct {
	cfg        Config
	httpClient *http.Client
	limiter    *Limiter
	breaker    *Breaker
	clock      Clock
	recorder   ports.RequestRecorder
	log        *zap.Logger
}

func NewGuard(cfg Config, httpClient *http.Client, clock Clock, recorder ports.RequestRecorder, log *zap.Logger) *Guard {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RateLimitCooldown <= 0 {
		cfg.RateLimitCooldown = time.Minute
	}
	if cfg.SuspendCooldown <= 0 {
		cfg.SuspendCooldown = 30 * time.Minute
	}

	return &Guard{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    NewLimiter(cfg.PerMinute, cfg.Window, clock),
		breaker:    NewBreaker(clock),
		clock:      clock,
		recorder:   recorder,
		log:        log.With(zap.String("provider", cfg.Provider)),
	}
}

func (g *Guard) Do(ctx context.Context, req *http.Request) (Response, error) {
	const op = "upstream.Guard.Do"

	if suspended, until, reason := g.breaker.State(); suspended {
		return Response{}, fmt.Errorf("%s: %w until %s: %s", op, derr.ErrProviderSuspended, until.UTC().Format(time.RFC3339), reason)
	}

	resp, err := g.attempt(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		g.log.Warn("rate limited by provider, cooling down",
			zap.String("op", op),
			zap.String("endpoint", req.URL.Path),
			zap.Duration("cooldown", g.cfg.RateLimitCooldown),
		)
		if err := g.clock.Sleep(ctx, g.cfg.RateLimitCooldown); err != nil {
			return Response{}, fmt.Errorf("%s: cooldown: %w", op, err)
		}

		resp, err = g.attempt(ctx, req.Clone(ctx))
		if err != nil {
			return Response{}, fmt.Errorf("%s: retry: %w", op, err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return Response{}, fmt.Errorf("%s: %w", op, derr.ErrRateLimited)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, fmt.Errorf("%s: %w: status %d: %s", op, derr.ErrUpstreamStatus, resp.StatusCode, Truncate(string(resp.Body), MaxLogBody))
	}

	g.breaker.Reset()
	return resp, nil
}

// Suspend trips the breaker for the configured cooldown.
func (g *Guard) Suspend(reason string) {
	g.breaker.Trip(g.cfg.SuspendCooldown, reason)
	g.log.Error("provider suspended",
		zap.String("reason", reason),
		zap.Duration("cooldown", g.cfg.SuspendCooldown),
	)
}

// ReportPayloadError records an error carried inside a successful HTTP response.
func (g *Guard) ReportPayloadError(endpoint string, statusCode int, message string) {
	g.recorder.RecordError(g.cfg.Provider, endpoint, statusCode, 0, Truncate(message, MaxLogBody))
}

func (g *Guard) Suspended() (bool, time.Time) {
	suspended, until, _ := g.breaker.State()
	return suspended, until
}

func (g *Guard) WindowCount() int {
	return g.limiter.Count()
}

func (g *Guard) attempt(ctx context.Context, req *http.Request) (Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("limiter wait: %w", err)
	}

	endpoint := req.URL.Path
	start := g.clock.Now()

	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		duration := g.clock.Now().Sub(start)
		g.recorder.RecordError(g.cfg.Provider, endpoint, 0, duration, err.Error())
		g.log.Warn("provider request failed", zap.String("endpoint", endpoint), zap.Error(err))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Response{}, err
		}
		return Response{}, fmt.Errorf("%w: do request: %v", derr.ErrSourceUnavailable, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	duration := g.clock.Now().Sub(start)
	if err != nil {
		g.recorder.RecordError(g.cfg.Provider, endpoint, httpResp.StatusCode, duration, err.Error())
		return Response{}, fmt.Errorf("%w: read body: %v", derr.ErrSourceUnavailable, err)
	}

	g.recordQuota(httpResp.Header)

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		g.recorder.RecordSuccess(g.cfg.Provider, endpoint, httpResp.StatusCode, duration)
	} else {
		g.recorder.RecordError(g.cfg.Provider, endpoint, httpResp.StatusCode, duration, Truncate(string(body), MaxLogBody))
		g.log.Warn("provider returned non-2xx",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", httpResp.StatusCode),
			zap.String("body", Truncate(string(body), MaxLogBody)),
		)
	}

	return Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

func (g *Guard) recordQuota(h http.Header) {
	remaining := headerInt(h, g.cfg.QuotaRemainingHeader)
	limit := headerInt(h, g.cfg.QuotaLimitHeader)
	if remaining == nil && limit == nil {
		return
	}
	g.recorder.RecordQuota(remaining, limit)
}

func headerInt(h http.Header, name string) *int {
	if name == "" {
		return nil
	}
	raw := strings.TrimSpace(h.Get(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type noopRecorder struct{}

func (noopRecorder) RecordSuccess(string, string, int, time.Duration) {}
func (noopRecorder) RecordError(string, string, int, time.Duration, string) {}
func (noopRecorder) RecordQuota(*int, *int) {}
