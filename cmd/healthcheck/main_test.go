package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestRun_ExitCodeFollowsStatus(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name     string
		body     string
		code     int
		wantExit int
		wantOut  string
	}{
		{name: "active", body: `{"status":"active","provider":"football-data","totalRequests":4}`, code: http.StatusOK, wantExit: 0, wantOut: "status:   active"},
		{name: "unknown", body: `{"status":"unknown"}`, code: http.StatusOK, wantExit: 0, wantOut: "provider: -"},
		{name: "suspended", body: `{"status":"suspended","suspendedUntil":"2025-01-04T12:30:00Z"}`, code: http.StatusOK, wantExit: 1, wantOut: "suspended until: 2025-01-04T12:30:00Z"},
		{name: "error", body: `{"status":"error","lastError":"boom","quotaRemaining":3,"quotaLimit":10}`, code: http.StatusOK, wantExit: 1, wantOut: "quota: 3/10"},
		{name: "http failure", body: `oops`, code: http.StatusInternalServerError, wantExit: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != healthPath {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			var stdout, stderr bytes.Buffer
			exit := run([]string{"-addr", srv.URL + "/"}, &stdout, &stderr)

			if exit != tc.wantExit {
				t.Fatalf("expected exit %d, got %d (stderr: %s)", tc.wantExit, exit, stderr.String())
			}
			if tc.wantOut != "" && !strings.Contains(stdout.String(), tc.wantOut) {
				t.Fatalf("expected output to contain %q, got:\n%s", tc.wantOut, stdout.String())
			}
		})
	}
}
