package api

import (
	"net/http"

	service "github.com/quietweek/quietweek/internal/app"
)

// StatsProvider exposes the service's operational snapshot.
type StatsProvider interface {
	GetStats() service.Stats
}

// StatsHandler serves the snapshot on /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
