// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// CalendarHandler handles calendar sync requests.
type CalendarHandler struct {
	deps Dependencies
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(deps Dependencies) *CalendarHandler {
	return &CalendarHandler{deps: deps}
}

type syncResponse struct {
	Added   int    `json:"added"`
	Updated int    `json:"updated"`
	Error   string `json:"error,omitempty"`
}

// HandleSync handles POST /calendar/sync. Per-source fetch failures are
// reported in the body while the successful sources still merge.
func (h *CalendarHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	added, updated, err := h.deps.SyncCalendar(r.Context())
	resp := syncResponse{Added: added, Updated: updated}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStatus handles GET /calendar/status.
func (h *CalendarHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CalendarStatus())
}
