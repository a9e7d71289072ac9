package handlers

import (
	"context"
	"net/http"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"go.uber.org/zap"
)

type ProviderOps interface {
	Health(ctx context.Context) models.Health
	ClearCache()
}

type TelemetryFlusher interface {
	Flush(ctx context.Context) int
}

type ProviderHandler struct {
	log     *zap.Logger
	ops     ProviderOps
	flusher TelemetryFlusher
}

func NewProviderHandler(log *zap.Logger, ops ProviderOps, flusher TelemetryFlusher) *ProviderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProviderHandler{log: log, ops: ops, flusher: flusher}
}

func (h *ProviderHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ops.Health(r.Context()))
}

func (h *ProviderHandler) FlushTelemetry(w http.ResponseWriter, r *http.Request) {
	flushed := 0
	if h.flusher != nil {
		flushed = h.flusher.Flush(r.Context())
	}
	h.log.Info("telemetry flushed on demand", zap.Int("entries", flushed))
	writeJSON(w, http.StatusOK, map[string]int{"flushed": flushed})
}

func (h *ProviderHandler) ClearCache(w http.ResponseWriter, _ *http.Request) {
	h.ops.ClearCache()
	writeJSON(w, http.StatusNoContent, nil)
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
