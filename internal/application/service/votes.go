package service

import (
	"sort"

	"github.com/ozzus/fan-predict/internal/domain/models"
)

const featuredCount = 2

// Percentages rounds home and draw half-up and lets away absorb the remainder.
func Percentages(t models.VoteTally) models.Votes {
	votes := models.Votes{
		Home: models.VoteShare{Count: t.Home},
		Draw: models.VoteShare{Count: t.Draw},
		Away: models.VoteShare{Count: t.Away},
	}

	total := t.Total()
	if total <= 0 {
		return votes
	}

	home := roundPercent(t.Home, total)
	draw := roundPercent(t.Draw, total)
	if home+draw > 100 {
		draw = 100 - home
	}

	votes.Home.Percentage = home
	votes.Draw.Percentage = draw
	votes.Away.Percentage = 100 - home - draw
	return votes
}

func roundPercent(count, total int) int {
	return (count*200 + total) / (2 * total)
}

func MostPicked(t models.VoteTally) models.Outcome {
	if t.Away >= t.Home && t.Away >= t.Draw {
		return models.OutcomeAway
	}
	if t.Draw >= t.Home {
		return models.OutcomeDraw
	}
	return models.OutcomeHome
}

func ApplyVotes(matches []models.Match, tallies map[models.MatchID]models.VoteTally) {
	for i := range matches {
		tally := tallies[matches[i].ID]
		matches[i].Votes = Percentages(tally)
		matches[i].TotalVotes = tally.Total()
		matches[i].MostPicked = MostPicked(tally)
	}
}

// SelectFeatured expects matches in kickoff order; ties on votes keep that order.
func SelectFeatured(matches []models.Match) {
	for i := range matches {
		matches[i].Featured = false
	}
	if len(matches) == 0 {
		return
	}

	order := make([]int, len(matches))
	anyVotes := false
	for i := range matches {
		order[i] = i
		if matches[i].TotalVotes > 0 {
			anyVotes = true
		}
	}

	if anyVotes {
		sort.SliceStable(order, func(a, b int) bool {
			return matches[order[a]].TotalVotes > matches[order[b]].TotalVotes
		})
	}

	for i := 0; i < featuredCount && i < len(order); i++ {
		matches[order[i]].Featured = true
	}
}
