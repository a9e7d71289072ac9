package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
)

const dateLayout = "2006-01-02"

func parsePositiveIntQuery(r *http.Request, key string) (value int, present bool, errMsg string) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, ""
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, true, key + " must be a positive integer"
	}

	return parsed, true, ""
}

func parseDateQuery(r *http.Request, key string) (time.Time, string) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, ""
	}

	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, key + " must be YYYY-MM-DD"
	}

	return parsed, ""
}

func parseStatusQuery(r *http.Request) (models.Status, string) {
	raw := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	if raw == "" {
		return "", ""
	}

	status, ok := models.ParseStatus(raw)
	if !ok {
		return "", "status must be one of NOT_STARTED, LIVE, FINISHED"
	}

	return status, ""
}

func parseMatchID(raw string) (models.MatchID, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return models.MatchID(id), true
}
