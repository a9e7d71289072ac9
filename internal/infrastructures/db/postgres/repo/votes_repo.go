package postgres

import (
	"context"
	"fmt"

	"github.com/ozzus/fan-predict/internal/domain/models"
)

func (r *Repository) VoteTallies(ctx context.Context, ids []models.MatchID) (map[models.MatchID]models.VoteTally, error) {
	tallies := make(map[models.MatchID]models.VoteTally, len(ids))
	if len(ids) == 0 {
		return tallies, nil
	}

	matchIDs := make([]int64, 0, len(ids))
	for _, id := range ids {
		matchIDs = append(matchIDs, int64(id))
	}

	const query = `
		SELECT
			match_id,
			prediction,
			COUNT(*)
		FROM predictions
		WHERE match_id = ANY($1)
		GROUP BY match_id, prediction
	`

	rows, err := r.db.Query(ctx, query, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("query vote tallies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			matchID    int64
			prediction string
			count      int
		)
		if err := rows.Scan(&matchID, &prediction, &count); err != nil {
			return nil, fmt.Errorf("scan vote tally: %w", err)
		}

		id := models.MatchID(matchID)
		tally := tallies[id]
		switch models.Outcome(prediction) {
		case models.OutcomeHome:
			tally.Home += count
		case models.OutcomeDraw:
			tally.Draw += count
		case models.OutcomeAway:
			tally.Away += count
		default:
			continue
		}
		tallies[id] = tally
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vote tallies: %w", err)
	}

	return tallies, nil
}
