package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ozzus/fan-predict/grpcapp"
	"github.com/ozzus/fan-predict/internal/application/persister"
	"github.com/ozzus/fan-predict/internal/application/poller"
	"github.com/ozzus/fan-predict/internal/application/service"
	"github.com/ozzus/fan-predict/internal/config"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	postgres "github.com/ozzus/fan-predict/internal/infrastructures/db/postgres/repo"
	pubsub "github.com/ozzus/fan-predict/internal/infrastructures/db/redis"
	"github.com/ozzus/fan-predict/internal/infrastructures/providers"
	"github.com/ozzus/fan-predict/internal/infrastructures/telemetry"
	"github.com/ozzus/fan-predict/internal/infrastructures/tracing"
	"github.com/ozzus/fan-predict/internal/infrastructures/upstream"
	"github.com/ozzus/fan-predict/internal/transport/http/handlers"
	"github.com/ozzus/fan-predict/internal/transport/ws"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	tp, err := tracing.InitTracer("match-engine", cfg.Jaeger)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	httpAddr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info("match-engine starting",
		zap.String("http_addr", httpAddr),
		zap.String("grpc_addr", fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)),
		zap.String("env", cfg.Env),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		configs   ports.ProviderConfigReader
		tallies   ports.VoteTallyReader
		snapshots ports.SnapshotRepository
		logStore  ports.LogStore
	)
	if cfg.DB.Enabled() {
		repo, err := postgres.New(ctx, cfg.DB.DatabaseURL())
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer repo.Close()
		configs, tallies, snapshots, logStore = repo, repo, repo, repo
	} else {
		log.Warn("database is not configured, using env provider config without votes or persistence")
	}

	recorder := telemetry.NewRecorder(telemetry.Config{
		FlushThreshold: cfg.Telemetry.FlushThreshold,
		FlushInterval:  cfg.Telemetry.FlushInterval,
	}, logStore, time.Now, log.Named("telemetry"))

	factory := providers.NewFactory(providers.Limits{
		PerMinute:         cfg.Limits.PerMinute,
		Window:            cfg.Limits.Window,
		RateLimitCooldown: cfg.Limits.RateLimitCooldown,
		SuspendCooldown:   cfg.Limits.SuspendCooldown,
		Timeout:           cfg.Provider.Timeout,
	}, upstream.SystemClock{}, recorder, log.Named("upstream"))

	snapshotWriter := persister.New(log.Named("persister"), snapshots, cfg.Persist.QueueSize, cfg.Persist.Timeout)

	matchService := service.NewMatchService(log, service.Config{
		LiveTTL:           cfg.Cache.LiveTTL,
		DefaultTTL:        cfg.Cache.DefaultTTL,
		StaleTTL:          cfg.Cache.StaleTTL,
		SingleTTL:         cfg.Cache.SingleTTL,
		DefaultWindowDays: cfg.Cache.DefaultWindowDays,
		UpstreamTimeout:   cfg.Limits.UpstreamTimeout,
		Fallback:          cfg.Provider.Fallback(),
	}, configs, service.NewRegistry(factory), tallies, snapshotWriter, recorder, time.Now)

	hub := ws.NewHub(log.Named("ws"))
	broadcasters := []ports.Broadcaster{hub}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis client", zap.Error(err))
			}
		}()
		broadcasters = append(broadcasters, pubsub.NewBroadcaster(redisClient, cfg.Redis.ChannelPrefix, log.Named("redis")))
	}

	var wg sync.WaitGroup
	runWorker := func(run func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
	}

	runWorker(recorder.Run)
	runWorker(snapshotWriter.Run)
	runWorker(hub.Run)
	if cfg.Poller.Enabled {
		runWorker(poller.New(log.Named("poller"), matchService, cfg.Poller.Interval, broadcasters...).Run)
	}

	router := handlers.NewRouter(log.Named("http"), handlers.RouterConfig{
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RequestTimeout: cfg.HTTP.WriteTimeout,
	},
		handlers.NewMatchHandler(log, matchService),
		handlers.NewProviderHandler(log, matchService, recorder),
		ws.Handler(ctx, hub, log.Named("ws")),
	)

	server := &http.Server{
		Addr:        httpAddr,
		Handler:     router,
		ReadTimeout: cfg.HTTP.ReadTimeout,
	}

	app := grpcapp.New(log, cfg.GRPC.Host, cfg.GRPC.Port, nil)
	runWorker(func(ctx context.Context) {
		app.WatchProvider(ctx, 15*time.Second, matchService.Health)
	})

	errCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := app.Run(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("server stopped", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}
	app.Stop()

	wg.Wait()
	flushed := recorder.Flush(shutdownCtx)
	log.Info("match-engine stopped",
		zap.Int("telemetry_flushed", flushed),
		zap.Int64("snapshots_written", snapshotWriter.Written()),
		zap.Int64("snapshots_dropped", snapshotWriter.Dropped()),
	)
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
