package models

import "time"

type MatchID int64

// DisplayLayout renders kickoff times for clients, always in UTC.
const DisplayLayout = "Mon, 02 Jan 2006 15:04 UTC"

type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusLive       Status = "LIVE"
	StatusFinished   Status = "FINISHED"
)

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusNotStarted, StatusLive, StatusFinished:
		return Status(value), true
	default:
		return "", false
	}
}

type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	CrestURL  string `json:"crestUrl"`
}

type Score struct {
	Home         *int `json:"home"`
	Away         *int `json:"away"`
	HalfTimeHome *int `json:"halfTimeHome"`
	HalfTimeAway *int `json:"halfTimeAway"`
}

type VoteShare struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

type Votes struct {
	Home VoteShare `json:"home"`
	Draw VoteShare `json:"draw"`
	Away VoteShare `json:"away"`
}

// Match is the provider-independent representation served to the rest of the product.
// Votes, TotalVotes, Featured and MostPicked are derived per request and never stored.
type Match struct {
	ID               MatchID   `json:"id"`
	HomeTeam         Team      `json:"homeTeam"`
	AwayTeam         Team      `json:"awayTeam"`
	CompetitionCode  string    `json:"competitionCode"`
	CompetitionName  string    `json:"competitionName"`
	KickoffUTC       time.Time `json:"kickoffUtc"`
	DisplayDateTime  string    `json:"displayDateTime"`
	Status           Status    `json:"status"`
	StatusDetail     string    `json:"statusDetail"`
	LiveMinute       *string   `json:"liveMinute"`
	Score            Score     `json:"score"`
	PredictionLocked bool      `json:"predictionLocked"`
	LockReason       *string   `json:"lockReason"`
	Votes            Votes     `json:"votes"`
	TotalVotes       int       `json:"totalVotes"`
	Featured         bool      `json:"featured"`
	MostPicked       Outcome   `json:"-"`
}

type VoteTally struct {
	Home int
	Draw int
	Away int
}

func (t VoteTally) Total() int {
	return t.Home + t.Draw + t.Away
}
