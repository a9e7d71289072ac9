package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/ozzus/fan-predict/internal/domain/models"
)

const healthPath = "/api/v1/provider/health"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("healthcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOr("MATCH_ENGINE_ADDR", "http://localhost:8080"), "match-engine base url")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	h, err := fetchHealth(ctx, *addr)
	if err != nil {
		color.New(color.FgRed).Fprintf(stderr, "healthcheck failed: %v\n", err)
		return 1
	}

	render(stdout, h)

	if h.Status == models.HealthSuspended || h.Status == models.HealthError {
		return 1
	}
	return 0
}

func fetchHealth(ctx context.Context, addr string) (models.Health, error) {
	url := strings.TrimSuffix(strings.TrimSpace(addr), "/") + healthPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Health{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return models.Health{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Health{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var h models.Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return models.Health{}, fmt.Errorf("decode health: %w", err)
	}

	return h, nil
}

func render(w io.Writer, h models.Health) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", bold("provider:"), orDash(h.Provider))
	fmt.Fprintf(w, "%s %s\n", bold("status:  "), statusColor(h.Status).Sprint(h.Status))
	fmt.Fprintf(w, "requests: %d (errors: %d)\n", h.TotalRequests, h.TotalErrors)
	fmt.Fprintf(w, "last status code: %d, last match count: %d\n", h.LastStatusCode, h.LastMatchCount)
	fmt.Fprintf(w, "last success: %s\n", formatTime(h.LastSuccessAt))
	fmt.Fprintf(w, "last error:   %s\n", formatTime(h.LastErrorAt))
	if h.LastError != "" {
		fmt.Fprintf(w, "  %s\n", color.New(color.FgRed).Sprint(h.LastError))
	}
	if h.QuotaRemaining != nil {
		limit := "?"
		if h.QuotaLimit != nil {
			limit = fmt.Sprint(*h.QuotaLimit)
		}
		fmt.Fprintf(w, "quota: %d/%s\n", *h.QuotaRemaining, limit)
	}
	if h.SuspendedUntil != nil {
		fmt.Fprintf(w, "suspended until: %s\n", color.New(color.FgRed, color.Bold).Sprint(h.SuspendedUntil.UTC().Format(time.RFC3339)))
	}
	fmt.Fprintf(w, "logs: %d pending, %d dropped\n", h.PendingLogs, h.DroppedLogs)
}

func statusColor(status models.HealthStatus) *color.Color {
	switch status {
	case models.HealthActive:
		return color.New(color.FgGreen, color.Bold)
	case models.HealthSuspended, models.HealthError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
