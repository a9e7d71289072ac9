package apifootball

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/competitions"
	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/ports"
	"github.com/ozzus/fan-predict/internal/infrastructures/apifootball/dto"
	"github.com/ozzus/fan-predict/internal/infrastructures/apifootball/http/client"
	"github.com/ozzus/fan-predict/internal/infrastructures/apifootball/mappers"
)

const dayLayout = "2006-01-02"

type Source struct {
	client *client.Client
	now    func() time.Time
}

func NewSource(client *client.Client, now func() time.Time) *Source {
	if now == nil {
		now = time.Now
	}

	return &Source{
		client: client,
		now:    now,
	}
}

func (s *Source) Kind() models.ProviderKind {
	return models.ProviderAPIFootball
}

// FetchWindow requests one day at a time. The free tier only serves yesterday to
// tomorrow, so the window is clamped to that range first.
func (s *Source) FetchWindow(ctx context.Context, from, to time.Time, competition string) ([]ports.RawRecord, error) {
	var leagueID int64
	if competition != "" {
		comp, ok := competitions.ByCode(competition)
		if !ok {
			return nil, fmt.Errorf("%w: %q", derr.ErrUnknownCompetition, competition)
		}
		leagueID = comp.APIFootballID
	}

	days := ClampDays(from, to, s.now())
	if len(days) == 0 {
		return nil, nil
	}

	seen := make(map[int64]struct{})
	records := make([]ports.RawRecord, 0)
	var lastErr error
	var loaded bool

	for _, day := range days {
		fixtures, err := s.client.GetFixtures(ctx, dto.GetFixturesRequest{Date: day.Format(dayLayout)})
		if err != nil {
			if errors.Is(err, derr.ErrProviderSuspended) || ctx.Err() != nil {
				return nil, fmt.Errorf("get fixtures for %s: %w", day.Format(dayLayout), err)
			}
			lastErr = err
			continue
		}

		loaded = true
		for _, f := range fixtures {
			if leagueID != 0 && f.League.ID != leagueID {
				continue
			}
			records = appendUnique(records, seen, f)
		}
	}

	if !loaded && lastErr != nil {
		return nil, fmt.Errorf("get fixtures: %w", lastErr)
	}

	return records, nil
}

func (s *Source) FetchLive(ctx context.Context) ([]ports.RawRecord, error) {
	fixtures, err := s.client.GetFixtures(ctx, dto.GetFixturesRequest{Live: "all"})
	if err != nil {
		return nil, fmt.Errorf("get live fixtures: %w", err)
	}

	seen := make(map[int64]struct{}, len(fixtures))
	records := make([]ports.RawRecord, 0, len(fixtures))
	for _, f := range fixtures {
		records = appendUnique(records, seen, f)
	}
	return records, nil
}

func (s *Source) FetchByID(ctx context.Context, id models.MatchID) (ports.RawRecord, error) {
	fixtures, err := s.client.GetFixtures(ctx, dto.GetFixturesRequest{ID: int64(id)})
	if err != nil {
		return nil, fmt.Errorf("get fixture %d: %w", id, err)
	}
	if len(fixtures) == 0 {
		return nil, derr.ErrMatchNotFound
	}

	return fixtures[0], nil
}

func (s *Source) Transform(raw ports.RawRecord, now time.Time) (models.Match, error) {
	f, ok := raw.(dto.Fixture)
	if !ok {
		return models.Match{}, fmt.Errorf("%w: %T", derr.ErrUnexpectedRecord, raw)
	}

	return mappers.ToDomainMatch(f, now)
}

// ClampDays returns the UTC calendar days of [from, to] that fall within today±1.
func ClampDays(from, to, now time.Time) []time.Time {
	today := truncateDay(now)
	lo := truncateDay(from)
	hi := truncateDay(to)

	if earliest := today.AddDate(0, 0, -1); lo.Before(earliest) {
		lo = earliest
	}
	if latest := today.AddDate(0, 0, 1); hi.After(latest) {
		hi = latest
	}
	if lo.After(hi) {
		return nil
	}

	days := make([]time.Time, 0, 3)
	for d := lo; !d.After(hi); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func appendUnique(records []ports.RawRecord, seen map[int64]struct{}, f dto.Fixture) []ports.RawRecord {
	id := f.Fixture.ID
	if id <= 0 {
		return records
	}
	if _, ok := seen[id]; ok {
		return records
	}
	seen[id] = struct{}{}
	return append(records, f)
}
