package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ozzus/fan-predict/internal/domain/models"
)

const upsertSnapshotQuery = `
	INSERT INTO match_snapshots (
		match_id,
		competition_code,
		home_team_id,
		home_team_name,
		away_team_id,
		away_team_name,
		kickoff_utc,
		status,
		status_detail,
		home_score,
		away_score,
		half_time_home,
		half_time_away,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
	ON CONFLICT (match_id) DO UPDATE SET
		competition_code = EXCLUDED.competition_code,
		home_team_id = EXCLUDED.home_team_id,
		home_team_name = EXCLUDED.home_team_name,
		away_team_id = EXCLUDED.away_team_id,
		away_team_name = EXCLUDED.away_team_name,
		kickoff_utc = EXCLUDED.kickoff_utc,
		status = EXCLUDED.status,
		status_detail = EXCLUDED.status_detail,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		half_time_home = EXCLUDED.half_time_home,
		half_time_away = EXCLUDED.half_time_away,
		updated_at = now()
`

// UpsertSnapshots stores the provider-derived part of each match; votes and
// featured flags are computed per request and never written.
func (r *Repository) UpsertSnapshots(ctx context.Context, matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range matches {
		batch.Queue(upsertSnapshotQuery, snapshotArgs(m)...)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for _, m := range matches {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert match snapshot %d: %w", m.ID, err)
		}
	}

	return nil
}

func snapshotArgs(m models.Match) []any {
	return []any{
		int64(m.ID),
		m.CompetitionCode,
		m.HomeTeam.ID,
		m.HomeTeam.Name,
		m.AwayTeam.ID,
		m.AwayTeam.Name,
		m.KickoffUTC,
		string(m.Status),
		m.StatusDetail,
		m.Score.Home,
		m.Score.Away,
		m.Score.HalfTimeHome,
		m.Score.HalfTimeAway,
	}
}
