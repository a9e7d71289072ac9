package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ozzus/fan-predict/internal/domain/models"
)

const contentTypeJSON = "application/json; charset=utf-8"

type matchesResponse struct {
	Matches []models.Match `json:"matches"`
	Count   int            `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeMatches always emits a json array, never null.
func writeMatches(w http.ResponseWriter, matches []models.Match) {
	if matches == nil {
		matches = []models.Match{}
	}
	writeJSON(w, http.StatusOK, matchesResponse{Matches: matches, Count: len(matches)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
