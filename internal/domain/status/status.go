package status

import (
	"strconv"
	"strings"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
)

const LockWindow = 10 * time.Minute

const (
	ReasonLive   = "Match is live"
	ReasonEnded  = "Match has ended"
	ReasonClosed = "Prediction closed"
)

var canonical = map[models.ProviderKind]map[string]models.Status{
	models.ProviderFootballData: {
		"SCHEDULED":        models.StatusNotStarted,
		"TIMED":            models.StatusNotStarted,
		"IN_PLAY":          models.StatusLive,
		"PAUSED":           models.StatusLive,
		"LIVE":             models.StatusLive,
		"EXTRA_TIME":       models.StatusLive,
		"PENALTY_SHOOTOUT": models.StatusLive,
		"FINISHED":         models.StatusFinished,
		"AWARDED":          models.StatusFinished,
	},
	models.ProviderAPIFootball: {
		"TBD":  models.StatusNotStarted,
		"NS":   models.StatusNotStarted,
		"1H":   models.StatusLive,
		"HT":   models.StatusLive,
		"2H":   models.StatusLive,
		"ET":   models.StatusLive,
		"BT":   models.StatusLive,
		"P":    models.StatusLive,
		"SUSP": models.StatusLive,
		"INT":  models.StatusLive,
		"LIVE": models.StatusLive,
		"FT":   models.StatusFinished,
		"AET":  models.StatusFinished,
		"PEN":  models.StatusFinished,
		"AWD":  models.StatusFinished,
		"WO":   models.StatusFinished,
	},
}

var details = map[models.ProviderKind]map[string]string{
	models.ProviderFootballData: {
		"SCHEDULED":        "NS",
		"TIMED":            "NS",
		"IN_PLAY":          "LIVE",
		"LIVE":             "LIVE",
		"PAUSED":           "HT",
		"EXTRA_TIME":       "ET",
		"PENALTY_SHOOTOUT": "PEN",
		"FINISHED":         "FT",
		"AWARDED":          "AWD",
		"POSTPONED":        "PST",
		"SUSPENDED":        "SUSP",
		"CANCELLED":        "CANC",
	},
	models.ProviderAPIFootball: {
		"TBD":  "NS",
		"NS":   "NS",
		"1H":   "1H",
		"HT":   "HT",
		"2H":   "2H",
		"ET":   "ET",
		"BT":   "BT",
		"P":    "PEN",
		"SUSP": "SUSP",
		"INT":  "INT",
		"LIVE": "LIVE",
		"FT":   "FT",
		"AET":  "AET",
		"PEN":  "PEN",
		"AWD":  "AWD",
		"WO":   "WO",
		"PST":  "PST",
		"CANC": "CANC",
		"ABD":  "ABD",
	},
}

// Canonical never fails: unknown providers and tokens map to NOT_STARTED.
func Canonical(kind models.ProviderKind, token string) models.Status {
	if s, ok := canonical[kind][normalizeToken(token)]; ok {
		return s
	}
	return models.StatusNotStarted
}

func Detail(kind models.ProviderKind, token string) string {
	t := normalizeToken(token)
	if d, ok := details[kind][t]; ok {
		return d
	}
	if t == "" {
		return "NS"
	}
	return t
}

// Minute returns the display minute for live matches only.
func Minute(s models.Status, detail string, elapsed *int) *string {
	if s != models.StatusLive {
		return nil
	}
	if detail == "HT" {
		v := "HT"
		return &v
	}
	if elapsed != nil && *elapsed > 0 {
		v := strconv.Itoa(*elapsed) + "'"
		return &v
	}
	return nil
}

func Lock(s models.Status, kickoff, now time.Time) (bool, string) {
	switch s {
	case models.StatusLive:
		return true, ReasonLive
	case models.StatusFinished:
		return true, ReasonEnded
	}
	if !kickoff.IsZero() && !now.Before(kickoff.Add(-LockWindow)) {
		return true, ReasonClosed
	}
	return false, ""
}

func ApplyLock(m *models.Match, now time.Time) {
	locked, reason := Lock(m.Status, m.KickoffUTC, now)
	m.PredictionLocked = locked
	if reason == "" {
		m.LockReason = nil
		return
	}
	m.LockReason = &reason
}

func normalizeToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}
