package mappers

import (
	"fmt"
	"strings"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/competitions"
	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/ozzus/fan-predict/internal/domain/status"
	"github.com/ozzus/fan-predict/internal/infrastructures/footballdata/dto"
)

func ToDomainMatch(m dto.Match, now time.Time) (models.Match, error) {
	comp, ok := competitions.FromFootballData(m.Competition.Code)
	if !ok {
		return models.Match{}, fmt.Errorf("%w: football-data code %q", derr.ErrUnknownCompetition, m.Competition.Code)
	}

	kickoff, err := time.Parse(time.RFC3339, m.UTCDate)
	if err != nil {
		return models.Match{}, fmt.Errorf("parse kickoff datetime: %w", err)
	}
	kickoff = kickoff.UTC()

	st := status.Canonical(models.ProviderFootballData, m.Status)
	detail := finishedDetail(status.Detail(models.ProviderFootballData, m.Status), m.Score.Duration)

	match := models.Match{
		ID:              models.MatchID(m.ID),
		HomeTeam:        toTeam(m.HomeTeam),
		AwayTeam:        toTeam(m.AwayTeam),
		CompetitionCode: comp.Code,
		CompetitionName: comp.Name,
		KickoffUTC:      kickoff,
		DisplayDateTime: kickoff.Format(models.DisplayLayout),
		Status:          st,
		StatusDetail:    detail,
		LiveMinute:      status.Minute(st, detail, m.Minute),
		Score: models.Score{
			Home:         m.Score.FullTime.Home,
			Away:         m.Score.FullTime.Away,
			HalfTimeHome: m.Score.HalfTime.Home,
			HalfTimeAway: m.Score.HalfTime.Away,
		},
	}
	status.ApplyLock(&match, now)

	return match, nil
}

func finishedDetail(detail, duration string) string {
	if detail != "FT" {
		return detail
	}
	switch strings.ToUpper(duration) {
	case "EXTRA_TIME":
		return "AET"
	case "PENALTY_SHOOTOUT":
		return "PEN"
	default:
		return detail
	}
}

func toTeam(t dto.Team) models.Team {
	short := strings.TrimSpace(t.ShortName)
	if short == "" {
		short = strings.TrimSpace(t.TLA)
	}
	if short == "" {
		short = t.Name
	}

	return models.Team{
		ID:        t.ID,
		Name:      t.Name,
		ShortName: short,
		CrestURL:  t.Crest,
	}
}
