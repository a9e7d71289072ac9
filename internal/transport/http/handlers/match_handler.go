package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ozzus/fan-predict/internal/application/service"
	derr "github.com/ozzus/fan-predict/internal/domain/errors"
	"github.com/ozzus/fan-predict/internal/domain/models"
	"go.uber.org/zap"
)

type MatchReader interface {
	GetMatches(ctx context.Context, q service.Query) []models.Match
	GetMatch(ctx context.Context, id models.MatchID) (models.Match, error)
	Today(ctx context.Context) []models.Match
	Live(ctx context.Context) []models.Match
	Upcoming(ctx context.Context, days int) []models.Match
	ByCompetition(ctx context.Context, code string) []models.Match
	Search(ctx context.Context, term string) []models.Match
}

type MatchHandler struct {
	log     *zap.Logger
	matches MatchReader
}

func NewMatchHandler(log *zap.Logger, matches MatchReader) *MatchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchHandler{log: log, matches: matches}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	dateFrom, errMsg := parseDateQuery(r, "dateFrom")
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	dateTo, errMsg := parseDateQuery(r, "dateTo")
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	status, errMsg := parseStatusQuery(r)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	writeMatches(w, h.matches.GetMatches(r.Context(), service.Query{
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		Competition: r.URL.Query().Get("competition"),
		Status:      status,
	}))
}

func (h *MatchHandler) Today(w http.ResponseWriter, r *http.Request) {
	writeMatches(w, h.matches.Today(r.Context()))
}

func (h *MatchHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeMatches(w, h.matches.Live(r.Context()))
}

func (h *MatchHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, _, errMsg := parsePositiveIntQuery(r, "days")
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	writeMatches(w, h.matches.Upcoming(r.Context(), days))
}

func (h *MatchHandler) Search(w http.ResponseWriter, r *http.Request) {
	writeMatches(w, h.matches.Search(r.Context(), r.URL.Query().Get("q")))
}

func (h *MatchHandler) ByCompetition(w http.ResponseWriter, r *http.Request) {
	writeMatches(w, h.matches.ByCompetition(r.Context(), chi.URLParam(r, "code")))
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMatchID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	match, err := h.matches.GetMatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, derr.ErrMatchNotFound) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		h.log.Error("get match failed", zap.Error(err), zap.Int64("match_id", int64(id)))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, match)
}
