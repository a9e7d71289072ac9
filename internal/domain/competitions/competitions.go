package competitions

import "strings"

type Competition struct {
	Code          string
	Name          string
	FootballData  string
	APIFootballID int64
}

var table = []Competition{
	{Code: "PL", Name: "Premier League", FootballData: "PL", APIFootballID: 39},
	{Code: "PD", Name: "La Liga", FootballData: "PD", APIFootballID: 140},
	{Code: "BL1", Name: "Bundesliga", FootballData: "BL1", APIFootballID: 78},
	{Code: "SA", Name: "Serie A", FootballData: "SA", APIFootballID: 135},
	{Code: "FL1", Name: "Ligue 1", FootballData: "FL1", APIFootballID: 61},
	{Code: "CL", Name: "UEFA Champions League", FootballData: "CL", APIFootballID: 2},
	{Code: "EC", Name: "European Championship", FootballData: "EC", APIFootballID: 4},
	{Code: "WC", Name: "FIFA World Cup", FootballData: "WC", APIFootballID: 1},
}

var (
	byCode         = make(map[string]Competition, len(table))
	byFootballData = make(map[string]Competition, len(table))
	byAPIFootball  = make(map[int64]Competition, len(table))
)

func init() {
	for _, c := range table {
		byCode[c.Code] = c
		byFootballData[c.FootballData] = c
		byAPIFootball[c.APIFootballID] = c
	}
}

func All() []Competition {
	out := make([]Competition, len(table))
	copy(out, table)
	return out
}

func ByCode(code string) (Competition, bool) {
	c, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

func FromFootballData(code string) (Competition, bool) {
	c, ok := byFootballData[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

func FromAPIFootball(leagueID int64) (Competition, bool) {
	c, ok := byAPIFootball[leagueID]
	return c, ok
}
