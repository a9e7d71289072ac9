package apifootball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	afclient "github.com/ozzus/fan-predict/internal/infrastructures/apifootball/http/client"
	"github.com/ozzus/fan-predict/internal/infrastructures/upstream"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newSource(srv *httptest.Server) *Source {
	guard := upstream.NewGuard(upstream.Config{Provider: "api-football"}, srv.Client(), nil, nil, zap.NewNop())
	return NewSource(afclient.NewClient(srv.URL, "key", guard), func() time.Time { return testNow })
}

func TestClampDays(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"wide window clamps to three days", day(1), day(31), 3},
		{"today only", day(10), day(10), 1},
		{"entirely in the past", day(1), day(5), 0},
		{"entirely in the future", day(15), day(20), 0},
		{"tomorrow onwards", day(11), day(20), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampDays(tt.from, tt.to, testNow); len(got) != tt.want {
				t.Fatalf("expected %d days, got %v", tt.want, got)
			}
		})
	}
}

func TestSource_FetchWindow_OneCallPerClampedDay(t *testing.T) {
	var mu sync.Mutex
	var dates []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dates = append(dates, r.URL.Query().Get("date"))
		mu.Unlock()

		_, _ = w.Write([]byte(`{"errors":[],"response":[
			{"fixture":{"id":1,"date":"2025-01-10T15:00:00+00:00","status":{"short":"NS"}},"league":{"id":39}},
			{"fixture":{"id":2,"date":"2025-01-10T17:00:00+00:00","status":{"short":"NS"}},"league":{"id":78}}
		]}`))
	}))
	defer srv.Close()

	source := newSource(srv)
	records, err := source.FetchWindow(context.Background(), testNow.AddDate(0, 0, -3), testNow.AddDate(0, 0, 3), "PL")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	sort.Strings(dates)
	if len(dates) != 3 || dates[0] != "2025-01-09" || dates[2] != "2025-01-11" {
		t.Fatalf("expected calls for 9..11 Jan, got %v", dates)
	}
	if len(records) != 1 || records[0].RecordID() != 1 {
		t.Fatalf("expected single deduplicated PL record, got %d", len(records))
	}
}

func TestSource_FetchWindow_EmptyClampMakesNoCalls(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
	}))
	defer srv.Close()

	source := newSource(srv)
	records, err := source.FetchWindow(context.Background(), testNow.AddDate(0, 0, 5), testNow.AddDate(0, 0, 7), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 0 || hits != 0 {
		t.Fatalf("expected no records and no calls, got %d records %d hits", len(records), hits)
	}
}

func TestSource_FetchByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "404" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"errors":[],"response":[]}`))
	}))
	defer srv.Close()

	_, err := newSource(srv).FetchByID(context.Background(), 404)
	if !errors.Is(err, derr.ErrMatchNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSource_FetchLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("live") != "all" {
			t.Fatalf("expected live=all, got %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"errors":[],"response":[
			{"fixture":{"id":3,"date":"2025-01-10T11:00:00+00:00","status":{"short":"HT","elapsed":45}},"league":{"id":135}}
		]}`))
	}))
	defer srv.Close()

	source := newSource(srv)
	records, err := source.FetchLive(context.Background())
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one live record, got %d (%v)", len(records), err)
	}

	match, err := source.Transform(records[0], testNow)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if match.LiveMinute == nil || *match.LiveMinute != "HT" {
		t.Fatalf("expected HT minute, got %v", match.LiveMinute)
	}
}
