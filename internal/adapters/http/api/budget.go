// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// BudgetHandler handles budget reporting requests.
type BudgetHandler struct {
	deps Dependencies
}

// NewBudgetHandler creates a new budget handler.
func NewBudgetHandler(deps Dependencies) *BudgetHandler {
	return &BudgetHandler{deps: deps}
}

// HandleDaily handles GET /budget/daily.
func (h *BudgetHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.DailyBudget(r.Context()))
}

// HandleWeekly handles GET /budget/weekly.
func (h *BudgetHandler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.WeeklyBudget(r.Context()))
}
