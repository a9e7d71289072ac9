package footballdata

import (
	"context"
	"fmt"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/competitions"
	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"github.com/ozzus/fan-predict/internal/infrastructures/footballdata/dto"
	"github.com/ozzus/fan-predict/internal/infrastructures/footballdata/http/client"
	"github.com/ozzus/fan-predict/internal/infrastructures/footballdata/mappers"
)

const (
	dayLayout    = "2006-01-02"
	liveStatuses = "IN_PLAY,PAUSED,EXTRA_TIME,PENALTY_SHOOTOUT"
)

type Source struct {
	client *client.Client
}

func NewSource(client *client.Client) *Source {
	return &Source{
		client: client,
	}
}

func (s *Source) Kind() models.ProviderKind {
	return models.ProviderFootballData
}

// FetchWindow treats to as inclusive; the upstream dateTo is exclusive so one day is added.
func (s *Source) FetchWindow(ctx context.Context, from, to time.Time, competition string) ([]ports.RawRecord, error) {
	req := dto.GetMatchesRequest{
		DateFrom: from.UTC().Format(dayLayout),
		DateTo:   to.UTC().AddDate(0, 0, 1).Format(dayLayout),
	}
	if competition != "" {
		comp, ok := competitions.ByCode(competition)
		if !ok {
			return nil, fmt.Errorf("%w: %q", derr.ErrUnknownCompetition, competition)
		}
		req.Competitions = comp.FootballData
	}

	resp, err := s.client.GetMatches(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get matches: %w", err)
	}

	return toRecords(resp.Matches), nil
}

func (s *Source) FetchLive(ctx context.Context) ([]ports.RawRecord, error) {
	resp, err := s.client.GetMatches(ctx, dto.GetMatchesRequest{Status: liveStatuses})
	if err != nil {
		return nil, fmt.Errorf("get live matches: %w", err)
	}

	return toRecords(resp.Matches), nil
}

func (s *Source) FetchByID(ctx context.Context, id models.MatchID) (ports.RawRecord, error) {
	m, err := s.client.GetMatch(ctx, int64(id))
	if err != nil {
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}

	return m, nil
}

func (s *Source) Transform(raw ports.RawRecord, now time.Time) (models.Match, error) {
	m, ok := raw.(dto.Match)
	if !ok {
		return models.Match{}, fmt.Errorf("%w: %T", derr.ErrUnexpectedRecord, raw)
	}

	return mappers.ToDomainMatch(m, now)
}

func toRecords(matches []dto.Match) []ports.RawRecord {
	records := make([]ports.RawRecord, 0, len(matches))
	seen := make(map[int64]struct{}, len(matches))
	for _, m := range matches {
		if m.ID <= 0 {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		records = append(records, m)
	}
	return records
}
