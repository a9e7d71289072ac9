package status

import (
	"testing"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		kind  models.ProviderKind
		token string
		want  models.Status
	}{
		{name: "fd scheduled", kind: models.ProviderFootballData, token: "SCHEDULED", want: models.StatusNotStarted},
		{name: "fd timed", kind: models.ProviderFootballData, token: "TIMED", want: models.StatusNotStarted},
		{name: "fd in play", kind: models.ProviderFootballData, token: "IN_PLAY", want: models.StatusLive},
		{name: "fd paused", kind: models.ProviderFootballData, token: "PAUSED", want: models.StatusLive},
		{name: "fd finished", kind: models.ProviderFootballData, token: "FINISHED", want: models.StatusFinished},
		{name: "fd postponed", kind: models.ProviderFootballData, token: "POSTPONED", want: models.StatusNotStarted},
		{name: "af first half", kind: models.ProviderAPIFootball, token: "1H", want: models.StatusLive},
		{name: "af half time", kind: models.ProviderAPIFootball, token: "HT", want: models.StatusLive},
		{name: "af second half", kind: models.ProviderAPIFootball, token: "2H", want: models.StatusLive},
		{name: "af full time", kind: models.ProviderAPIFootball, token: "FT", want: models.StatusFinished},
		{name: "af penalties", kind: models.ProviderAPIFootball, token: "PEN", want: models.StatusFinished},
		{name: "af lower case", kind: models.ProviderAPIFootball, token: " ht ", want: models.StatusLive},
		{name: "af unknown", kind: models.ProviderAPIFootball, token: "WAT", want: models.StatusNotStarted},
		{name: "empty token", kind: models.ProviderFootballData, token: "", want: models.StatusNotStarted},
		{name: "unknown provider", kind: models.ProviderUnknown, token: "FINISHED", want: models.StatusNotStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.kind, tt.token); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCanonical_EveryKnownTokenHasDetail(t *testing.T) {
	for kind, tokens := range canonical {
		for token := range tokens {
			if _, ok := details[kind][token]; !ok {
				t.Fatalf("token %q of %s has no detail code", token, kind)
			}
		}
	}
}

func TestDetail(t *testing.T) {
	if got := Detail(models.ProviderFootballData, "PAUSED"); got != "HT" {
		t.Fatalf("expected HT, got %q", got)
	}
	if got := Detail(models.ProviderAPIFootball, "P"); got != "PEN" {
		t.Fatalf("expected PEN, got %q", got)
	}
	if got := Detail(models.ProviderAPIFootball, "xyz"); got != "XYZ" {
		t.Fatalf("expected unknown token echoed, got %q", got)
	}
	if got := Detail(models.ProviderAPIFootball, ""); got != "NS" {
		t.Fatalf("expected NS for empty token, got %q", got)
	}
}

func TestMinute(t *testing.T) {
	elapsed := 67
	if got := Minute(models.StatusLive, "2H", &elapsed); got == nil || *got != "67'" {
		t.Fatalf("expected 67', got %v", got)
	}
	if got := Minute(models.StatusLive, "HT", &elapsed); got == nil || *got != "HT" {
		t.Fatalf("expected HT, got %v", got)
	}
	if got := Minute(models.StatusLive, "LIVE", nil); got != nil {
		t.Fatalf("expected nil minute without elapsed, got %q", *got)
	}
	if got := Minute(models.StatusFinished, "FT", &elapsed); got != nil {
		t.Fatalf("expected nil minute for finished match, got %q", *got)
	}
}

func TestLock(t *testing.T) {
	now := time.Date(2025, 1, 4, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		status     models.Status
		kickoff    time.Time
		wantLocked bool
		wantReason string
	}{
		{name: "live", status: models.StatusLive, kickoff: now.Add(time.Hour), wantLocked: true, wantReason: ReasonLive},
		{name: "finished", status: models.StatusFinished, kickoff: now.Add(-3 * time.Hour), wantLocked: true, wantReason: ReasonEnded},
		{name: "inside window", status: models.StatusNotStarted, kickoff: now.Add(9 * time.Minute), wantLocked: true, wantReason: ReasonClosed},
		{name: "window boundary", status: models.StatusNotStarted, kickoff: now.Add(LockWindow), wantLocked: true, wantReason: ReasonClosed},
		{name: "kickoff passed", status: models.StatusNotStarted, kickoff: now.Add(-time.Minute), wantLocked: true, wantReason: ReasonClosed},
		{name: "open", status: models.StatusNotStarted, kickoff: now.Add(11 * time.Minute), wantLocked: false, wantReason: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locked, reason := Lock(tt.status, tt.kickoff, now)
			if locked != tt.wantLocked || reason != tt.wantReason {
				t.Fatalf("expected (%v, %q), got (%v, %q)", tt.wantLocked, tt.wantReason, locked, reason)
			}
		})
	}
}

func TestApplyLock_ClearsReasonWhenOpen(t *testing.T) {
	now := time.Date(2025, 1, 4, 15, 0, 0, 0, time.UTC)
	reason := ReasonClosed
	m := models.Match{Status: models.StatusNotStarted, KickoffUTC: now.Add(2 * time.Hour), PredictionLocked: true, LockReason: &reason}

	ApplyLock(&m, now)
	if m.PredictionLocked || m.LockReason != nil {
		t.Fatalf("expected open match, got locked=%v reason=%v", m.PredictionLocked, m.LockReason)
	}

	ApplyLock(&m, now.Add(115*time.Minute))
	if !m.PredictionLocked || m.LockReason == nil || *m.LockReason != ReasonClosed {
		t.Fatalf("expected closed match, got locked=%v reason=%v", m.PredictionLocked, m.LockReason)
	}
}
