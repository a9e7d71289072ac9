package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(log *zap.Logger, cfg RouterConfig, matches *MatchHandler, provider *ProviderHandler, ws http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(loggingMiddleware(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", Healthz)
	if ws != nil {
		r.Get("/ws", ws.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

		r.Get("/matches", matches.List)
		r.Get("/matches/today", matches.Today)
		r.Get("/matches/live", matches.Live)
		r.Get("/matches/upcoming", matches.Upcoming)
		r.Get("/matches/search", matches.Search)
		r.Get("/matches/{id}", matches.Get)
		r.Get("/competitions/{code}/matches", matches.ByCompetition)

		r.Get("/provider/health", provider.Health)
		r.Post("/provider/telemetry/flush", provider.FlushTelemetry)
		r.Delete("/cache", provider.ClearCache)
	})

	return r
}

func loggingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
