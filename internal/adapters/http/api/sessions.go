// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quietweek/quietweek/internal/domain/vitals"
)

// SessionsHandler handles vital-sign monitoring session requests.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type startSessionRequest struct {
	EventID string `json:"event_id"`
}

// readingRequest mirrors the JSON schema for a single vital-sign sample.
type readingRequest struct {
	Timestamp           string  `json:"timestamp"`
	PulseRate           float64 `json:"pulse_rate"`
	BreathingRate       float64 `json:"breathing_rate"`
	PulseConfidence     float64 `json:"pulse_confidence"`
	BreathingConfidence float64 `json:"breathing_confidence"`
}

type readingsRequest struct {
	Readings []readingRequest `json:"readings"`
}

type readingsResponse struct {
	Accepted int `json:"accepted"`
}

// HandleStart handles POST /sessions.
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req startSessionRequest
	// An empty body starts a standalone session.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	session, err := h.deps.StartSession(r.Context(), req.EventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// HandleItem dispatches /sessions/{id}, /sessions/{id}/readings and
// /sessions/{id}/end.
func (h *SessionsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
		h.handleGet(w, r, id)
	case "readings":
		h.handleReadings(w, r, id)
	case "end":
		h.handleEnd(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	session, err := h.deps.GetSession(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *SessionsHandler) handleReadings(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req readingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if len(req.Readings) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing readings"))
		return
	}

	accepted := 0
	for _, sample := range req.Readings {
		ts, err := time.Parse(time.RFC3339, sample.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid timestamp; must be RFC3339"))
			return
		}
		reading := vitals.Reading{
			SessionID:           id,
			Timestamp:           ts,
			PulseRate:           sample.PulseRate,
			BreathingRate:       sample.BreathingRate,
			PulseConfidence:     sample.PulseConfidence,
			BreathingConfidence: sample.BreathingConfidence,
		}
		if err := h.deps.EnqueueReading(r.Context(), reading); err != nil {
			writeServiceError(w, err)
			return
		}
		accepted++
	}
	writeJSON(w, http.StatusAccepted, readingsResponse{Accepted: accepted})
}

func (h *SessionsHandler) handleEnd(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	session, err := h.deps.EndSession(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
