// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// OptimizeHandler handles week optimization requests.
type OptimizeHandler struct {
	deps Dependencies
}

// NewOptimizeHandler creates a new optimize handler.
func NewOptimizeHandler(deps Dependencies) *OptimizeHandler {
	return &OptimizeHandler{deps: deps}
}

type applyRequest struct {
	ProposalID string   `json:"proposal_id"`
	EventIDs   []string `json:"event_ids"`
}

type applyResponse struct {
	Applied int `json:"applied"`
}

// HandleOptimizeWeek handles POST /optimize/week.
func (h *OptimizeHandler) HandleOptimizeWeek(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.OptimizeWeek(r.Context()))
}

// HandleApply handles POST /optimize/week/apply. Stale or unknown
// proposal ids come back as a conflict; the caller should re-optimize.
func (h *OptimizeHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.ProposalID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing proposal_id"))
		return
	}
	applied, err := h.deps.ApplyProposal(r.Context(), req.ProposalID, req.EventIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applyResponse{Applied: applied})
}

// HandleSuggestions handles GET /optimize/suggestions.
func (h *OptimizeHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	suggestions := h.deps.Suggestions(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
