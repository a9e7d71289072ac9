package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ozzus/fan-predict/internal/application/service"
	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"github.com/ozzus/fan-predict/internal/infrastructures/footballdata"
	fdclient "github.com/ozzus/fan-predict/internal/infrastructures/footballdata/http/client"
	"github.com/ozzus/fan-predict/internal/infrastructures/upstream"
	"go.uber.org/zap"
)

type staticFactory struct {
	provider ports.Provider
}

func (f staticFactory) Build(models.ProviderKind, models.ProviderConfig) ports.Provider {
	return f.provider
}

func (f staticFactory) Suspended(models.ProviderKind) (bool, time.Time) {
	return false, time.Time{}
}

// A 429 cooldown longer than the API request timeout must still end in a
// served, cached answer instead of an empty list.
func TestRouter_TodaySurvivesRateLimitCooldown(t *testing.T) {
	var hits int32
	kickoff := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprintf(w, `{"matches":[{"id":1,"utcDate":%q,"status":"SCHEDULED","competition":{"code":"PL"}}]}`, kickoff)
	}))
	defer srv.Close()

	guard := upstream.NewGuard(upstream.Config{
		Provider:          "football-data",
		PerMinute:         9,
		Window:            time.Minute,
		RateLimitCooldown: 300 * time.Millisecond,
	}, srv.Client(), upstream.SystemClock{}, nil, zap.NewNop())
	source := footballdata.NewSource(fdclient.NewClient(srv.URL, "key", guard))

	svc := service.NewMatchService(zap.NewNop(), service.Config{
		UpstreamTimeout: 5 * time.Second,
		Fallback:        models.ProviderConfig{Name: "env", BaseURL: srv.URL, APIKey: "key", Enabled: true, IsActive: true},
	}, nil, service.NewRegistry(staticFactory{provider: source}), nil, nil, nil, time.Now)

	router := NewRouter(nil, RouterConfig{RequestTimeout: 100 * time.Millisecond},
		NewMatchHandler(nil, svc), NewProviderHandler(nil, svc, &flusherMock{}), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/matches/today", nil))

	var body struct {
		Matches []models.Match `json:"matches"`
		Count   int            `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if body.Count != 1 || len(body.Matches) != 1 || body.Matches[0].ID != 1 {
		t.Fatalf("expected the retried match, got %+v", body)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected one rate-limited call and one retry, got %d", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/matches/today", nil))
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("expected the retried answer to be cached, got %d calls", got)
	}
}

func TestResponder_MatchEnvelopeHeaders(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter)
		wantCode int
		wantBody string
	}{
		{
			name:     "nil matches become an empty array",
			write:    func(w http.ResponseWriter) { writeMatches(w, nil) },
			wantCode: http.StatusOK,
			wantBody: `{"matches":[],"count":0}`,
		},
		{
			name:     "error envelope",
			write:    func(w http.ResponseWriter) { writeError(w, http.StatusNotFound, "match not found") },
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"match not found"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != contentTypeJSON {
				t.Fatalf("expected content type %q, got %q", contentTypeJSON, got)
			}
			if got := rec.Header().Get("Cache-Control"); got != "no-store" {
				t.Fatalf("expected no-store, got %q", got)
			}
			if got := rec.Body.String(); got != tc.wantBody+"\n" {
				t.Fatalf("expected body %s, got %s", tc.wantBody, got)
			}
		})
	}
}
