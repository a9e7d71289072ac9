package mappers

import (
	"fmt"
	"strings"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/competitions"
	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/status"
	"github.com/ozzus/fan-predict/internal/infrastructures/apifootball/dto"
)

var clubAffixes = map[string]struct{}{
	"FC":  {},
	"AFC": {},
	"CF":  {},
	"SC":  {},
	"AC":  {},
	"SSC": {},
	"AS":  {},
	"RC":  {},
	"SV":  {},
}

func ToDomainMatch(f dto.Fixture, now time.Time) (models.Match, error) {
	comp, ok := competitions.FromAPIFootball(f.League.ID)
	if !ok {
		return models.Match{}, fmt.Errorf("%w: api-football league %d", derr.ErrUnknownCompetition, f.League.ID)
	}

	kickoff, err := parseKickoff(f.Fixture)
	if err != nil {
		return models.Match{}, fmt.Errorf("parse kickoff datetime: %w", err)
	}

	st := status.Canonical(models.ProviderAPIFootball, f.Fixture.Status.Short)
	detail := status.Detail(models.ProviderAPIFootball, f.Fixture.Status.Short)

	match := models.Match{
		ID:              models.MatchID(f.Fixture.ID),
		HomeTeam:        toTeam(f.Teams.Home),
		AwayTeam:        toTeam(f.Teams.Away),
		CompetitionCode: comp.Code,
		CompetitionName: comp.Name,
		KickoffUTC:      kickoff,
		DisplayDateTime: kickoff.Format(models.DisplayLayout),
		Status:          st,
		StatusDetail:    detail,
		LiveMinute:      status.Minute(st, detail, f.Fixture.Status.Elapsed),
		Score: models.Score{
			Home:         f.Goals.Home,
			Away:         f.Goals.Away,
			HalfTimeHome: f.Score.Halftime.Home,
			HalfTimeAway: f.Score.Halftime.Away,
		},
	}
	status.ApplyLock(&match, now)

	return match, nil
}

func parseKickoff(info dto.FixtureInfo) (time.Time, error) {
	if info.Date != "" {
		t, err := time.Parse(time.RFC3339, info.Date)
		if err == nil {
			return t.UTC(), nil
		}
	}
	if info.Timestamp > 0 {
		return time.Unix(info.Timestamp, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported datetime format: %q", info.Date)
}

func toTeam(t dto.Team) models.Team {
	return models.Team{
		ID:        t.ID,
		Name:      t.Name,
		ShortName: ShortName(t.Name),
		CrestURL:  t.Logo,
	}
}

// ShortName strips club-type affixes such as "FC" while keeping at least one word.
func ShortName(name string) string {
	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := clubAffixes[strings.ToUpper(strings.Trim(w, "."))]; ok {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(name)
	}
	return strings.Join(kept, " ")
}
