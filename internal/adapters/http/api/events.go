// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/quietweek/quietweek/internal/app"
	"github.com/quietweek/quietweek/internal/domain/model"
)

// EventsHandler handles event lifecycle requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the JSON schema for POST /events.
type eventRequest struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	Start              string `json:"start_time"`
	End                string `json:"end_time"`
	Participants       *int   `json:"participants"`
	HasAgenda          *bool  `json:"has_agenda"`
	RequiresToolSwitch *bool  `json:"requires_tool_switch"`
	Category           string `json:"event_type"`
	Flexible           *bool  `json:"is_flexible"`
}

func (e eventRequest) toEvent() (*model.Event, error) {
	if strings.TrimSpace(e.Title) == "" {
		return nil, errors.New("missing title")
	}
	start, err := time.Parse(time.RFC3339, e.Start)
	if err != nil {
		return nil, errors.New("invalid start_time; must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, e.End)
	if err != nil {
		return nil, errors.New("invalid end_time; must be RFC3339")
	}
	category := model.Category(e.Category)
	if category != "" && !category.Valid() {
		return nil, model.ErrInvalidCategory
	}
	return &model.Event{
		Title:              e.Title,
		Description:        e.Description,
		Start:              start,
		End:                end,
		DurationMinutes:    int(end.Sub(start).Minutes()),
		Participants:       e.Participants,
		HasAgenda:          e.HasAgenda,
		RequiresToolSwitch: e.RequiresToolSwitch,
		Category:           category,
		Flexible:           e.Flexible,
	}, nil
}

type eventListResponse struct {
	Events []*model.Event `json:"events"`
	Count  int            `json:"count"`
}

type classifyResponse struct {
	Classified int `json:"classified"`
}

// HandleCollection handles GET and POST /events.
func (h *EventsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		events := h.deps.ListEvents(r.Context())
		writeJSON(w, http.StatusOK, eventListResponse{Events: events, Count: len(events)})
	case http.MethodPost:
		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		e, err := req.toEvent()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if err := h.deps.CreateEvent(r.Context(), e); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem dispatches /events/{id} and its sub-resources, plus the
// collection-level analyze and classify verbs.
func (h *EventsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/events/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch path {
	case "analyze":
		h.handleAnalyze(w, r)
		return
	case "classify":
		h.handleClassify(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
		h.handleEvent(w, r, id)
	case "cost":
		h.handleCost(w, r, id)
	case "flexibility":
		h.handleFlexibility(w, r, id)
	case "enrich":
		h.handleEnrich(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *EventsHandler) handleEvent(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		e, err := h.deps.GetEvent(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	case http.MethodDelete:
		if err := h.deps.DeleteEvent(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		http.NotFound(w, r)
	}
}

func (h *EventsHandler) handleCost(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	breakdown, err := h.deps.CostBreakdown(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h *EventsHandler) handleFlexibility(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Flexible *bool `json:"is_flexible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Flexible == nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing is_flexible"))
		return
	}
	e, err := h.deps.PatchEvent(r.Context(), id, service.EventPatch{Flexible: req.Flexible})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EventsHandler) handleEnrich(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPatch {
		http.NotFound(w, r)
		return
	}
	var patch service.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	e, err := h.deps.PatchEvent(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EventsHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.AnalyzeWeek(r.Context()))
}

func (h *EventsHandler) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	n := h.deps.ClassifyEvents(r.Context())
	writeJSON(w, http.StatusOK, classifyResponse{Classified: n})
}
