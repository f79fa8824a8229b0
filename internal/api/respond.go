package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charleschow/pennant-race/internal/core/game"
	"github.com/charleschow/pennant-race/internal/core/magic"
	"github.com/charleschow/pennant-race/internal/core/verify"
	"github.com/charleschow/pennant-race/internal/process"
	"github.com/charleschow/pennant-race/internal/telemetry"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Warnf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		unknown  *game.UnknownTeamError
		score    *game.MalformedScoreError
		selfPlay *game.SelfPlayError
		sched    *magic.ScheduleInconsistencyError
		broken   *verify.InvariantViolation
	)
	switch {
	case errors.As(err, &unknown):
		writeError(w, http.StatusUnprocessableEntity, "unknown_team", err.Error())
	case errors.As(err, &score):
		writeError(w, http.StatusUnprocessableEntity, "malformed_score", err.Error())
	case errors.As(err, &selfPlay):
		writeError(w, http.StatusUnprocessableEntity, "invalid_game", err.Error())
	case errors.As(err, &sched):
		writeError(w, http.StatusConflict, "schedule_inconsistency", err.Error())
	case errors.As(err, &broken):
		writeError(w, http.StatusInternalServerError, "invariant_violation", err.Error())
	case errors.Is(err, process.ErrScrapeDisabled):
		writeError(w, http.StatusConflict, "scrape_disabled", err.Error())
	default:
		telemetry.Errorf("api: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
