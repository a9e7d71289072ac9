package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/infrastructures/apifootball/dto"
	"github.com/ozzus/fan-predict/internal/infrastructures/upstream"
)

const (
	authHeader           = "x-apisports-key"
	QuotaRemainingHeader = "x-ratelimit-requests-remaining"
	QuotaLimitHeader     = "x-ratelimit-requests-limit"
)

type Guard interface {
	Do(ctx context.Context, req *http.Request) (upstream.Response, error)
	Suspend(reason string)
	ReportPayloadError(endpoint string, statusCode int, message string)
}

type Client struct {
	baseURL string
	apiKey  string
	guard   Guard
}

func NewClient(baseURL, apiKey string, guard Guard) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://v3.football.api-sports.io"
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		guard:   guard,
	}
}

func (c *Client) GetFixtures(ctx context.Context, reqParams dto.GetFixturesRequest) ([]dto.Fixture, error) {
	q := url.Values{}
	if reqParams.Date != "" {
		q.Set("date", reqParams.Date)
	}
	if reqParams.Live != "" {
		q.Set("live", reqParams.Live)
	}
	if reqParams.ID > 0 {
		q.Set("id", strconv.FormatInt(reqParams.ID, 10))
	}

	u, err := url.Parse(c.baseURL + "/fixtures")
	if err != nil {
		return nil, fmt.Errorf("parse api-football url: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(authHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.guard.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("api-football fixtures: %w", err)
	}

	var payload dto.FixturesResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("decode api-football response: %w", err)
	}

	if len(payload.Errors) > 0 {
		message := payload.Errors.Message()
		c.guard.ReportPayloadError(u.Path, resp.StatusCode, message)
		if reason, ok := SuspensionReason(payload.Errors); ok {
			c.guard.Suspend(upstream.Truncate(reason, upstream.MaxLogBody))
		}
		return nil, fmt.Errorf("%w: api-football fixtures: %s", derr.ErrProviderPayload, message)
	}

	return payload.Response, nil
}

// SuspensionReason reports account blocks and exhausted daily quota.
func SuspensionReason(errs dto.Errors) (string, bool) {
	if access, ok := errs["access"]; ok && strings.Contains(strings.ToLower(access), "suspend") {
		return access, true
	}
	if requests, ok := errs["requests"]; ok {
		return requests, true
	}
	if token, ok := errs["token"]; ok && strings.Contains(strings.ToLower(token), "suspend") {
		return token, true
	}
	return "", false
}
