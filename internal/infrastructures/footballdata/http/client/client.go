package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/infrastructures/footballdata/dto"
	"github.com/ozzus/fan-predict/internal/infrastructures/upstream"
)

const (
	authHeader           = "X-Auth-Token"
	QuotaRemainingHeader = "X-Requests-Available-Minute"
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
		baseURL = "https://api.football-data.org/v4"
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		guard:   guard,
	}
}

func (c *Client) GetMatches(ctx context.Context, reqParams dto.GetMatchesRequest) (dto.MatchesResponse, error) {
	q := url.Values{}
	if reqParams.DateFrom != "" {
		q.Set("dateFrom", reqParams.DateFrom)
	}
	if reqParams.DateTo != "" {
		q.Set("dateTo", reqParams.DateTo)
	}
	if reqParams.Competitions != "" {
		q.Set("competitions", reqParams.Competitions)
	}
	if reqParams.Status != "" {
		q.Set("status", reqParams.Status)
	}

	var payload dto.MatchesResponse
	if err := c.get(ctx, "/matches", q, &payload); err != nil {
		return dto.MatchesResponse{}, err
	}

	return payload, nil
}

func (c *Client) GetMatch(ctx context.Context, id int64) (dto.Match, error) {
	var payload dto.Match
	if err := c.get(ctx, "/matches/"+strconv.FormatInt(id, 10), nil, &payload); err != nil {
		return dto.Match{}, err
	}
	if payload.ID == 0 {
		return dto.Match{}, derr.ErrMatchNotFound
	}

	return payload, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse football-data url: %w", err)
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(authHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.guard.Do(ctx, req)
	if err != nil {
		if errors.Is(err, derr.ErrUpstreamStatus) {
			if resp.StatusCode == http.StatusNotFound {
				return derr.ErrMatchNotFound
			}
			c.inspectError(resp)
		}
		return fmt.Errorf("football-data %s: %w", path, err)
	}

	var envelope dto.ErrorResponse
	if err := json.Unmarshal(resp.Body, &envelope); err == nil && envelope.ErrorCode != 0 {
		c.guard.ReportPayloadError(u.Path, resp.StatusCode, envelope.Message)
		c.suspendIfNeeded(envelope.Message)
		return fmt.Errorf("%w: football-data %s: %s", derr.ErrProviderPayload, path, envelope.Message)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode football-data response: %w", err)
	}

	return nil
}

func (c *Client) inspectError(resp upstream.Response) {
	var envelope dto.ErrorResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil || envelope.Message == "" {
		return
	}
	c.suspendIfNeeded(envelope.Message)
}

func (c *Client) suspendIfNeeded(message string) {
	if IsSuspension(message) {
		c.guard.Suspend(upstream.Truncate(message, upstream.MaxLogBody))
	}
}

// IsSuspension reports whether an error message describes an account-level block.
func IsSuspension(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "suspend") || (strings.Contains(m, "account") && strings.Contains(m, "restrict"))
}
