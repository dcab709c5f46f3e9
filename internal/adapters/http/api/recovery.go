// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// RecoveryHandler handles recovery planning requests.
type RecoveryHandler struct {
	deps Dependencies
}

// NewRecoveryHandler creates a new recovery handler.
func NewRecoveryHandler(deps Dependencies) *RecoveryHandler {
	return &RecoveryHandler{deps: deps}
}

type scheduleRecoveryRequest struct {
	Title           string `json:"title"`
	Start           string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

// HandleSuggestions handles GET /recovery/suggestions.
func (h *RecoveryHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.RecoverySuggestions(r.Context()))
}

// HandleSchedule handles POST /recovery/schedule.
func (h *RecoveryHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scheduleRecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid start_time; must be RFC3339"))
		return
	}
	e, err := h.deps.ScheduleRecovery(r.Context(), req.Title, start, req.DurationMinutes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}
