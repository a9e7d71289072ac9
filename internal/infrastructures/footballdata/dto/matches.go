package dto

type GetMatchesRequest struct {
	DateFrom     string
	DateTo       string
	Competitions string
	Status       string
}

type MatchesResponse struct {
	Matches []Match `json:"matches"`
}

type Match struct {
	ID          int64       `json:"id"`
	UTCDate     string      `json:"utcDate"`
	Status      string      `json:"status"`
	Minute      *int        `json:"minute"`
	Competition Competition `json:"competition"`
	HomeTeam    Team        `json:"homeTeam"`
	AwayTeam    Team        `json:"awayTeam"`
	Score       Score       `json:"score"`
}

func (m Match) RecordID() int64 {
	return m.ID
}

type Competition struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type Score struct {
	Winner   string `json:"winner"`
	Duration string `json:"duration"`
	FullTime Goals  `json:"fullTime"`
	HalfTime Goals  `json:"halfTime"`
}

type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type ErrorResponse struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}
