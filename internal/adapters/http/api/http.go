// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quietweek/quietweek/internal/adapters/calendar"
	readingqueue "github.com/quietweek/quietweek/internal/adapters/mq/queue"
	"github.com/quietweek/quietweek/internal/adapters/repository"
	service "github.com/quietweek/quietweek/internal/app"
	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/internal/domain/planner"
	"github.com/quietweek/quietweek/internal/domain/vitals"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Event lifecycle
	ListEvents(ctx context.Context) []*model.Event
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	CreateEvent(ctx context.Context, e *model.Event) error
	PatchEvent(ctx context.Context, id string, patch service.EventPatch) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ClassifyEvents(ctx context.Context) int
	CostBreakdown(ctx context.Context, id string) (costing.Breakdown, error)
	AnalyzeWeek(ctx context.Context) service.WeekAnalysis

	// Optimization
	OptimizeWeek(ctx context.Context) *planner.Proposal
	ApplyProposal(ctx context.Context, proposalID string, selectedIDs []string) (int, error)
	Suggestions(ctx context.Context) []planner.Suggestion

	// Budget and recovery
	DailyBudget(ctx context.Context) service.BudgetStatus
	WeeklyBudget(ctx context.Context) service.WeeklyBudget
	RecoverySuggestions(ctx context.Context) service.RecoveryReport
	ScheduleRecovery(ctx context.Context, title string, start time.Time, durationMinutes int) (*model.Event, error)

	// Calendar sync
	SyncCalendar(ctx context.Context) (added, updated int, err error)
	CalendarStatus() calendar.Status

	// Vital-sign sessions
	StartSession(ctx context.Context, eventID string) (vitals.Session, error)
	EnqueueReading(ctx context.Context, r vitals.Reading) error
	GetSession(ctx context.Context, sessionID string) (vitals.Session, error)
	EndSession(ctx context.Context, sessionID string) (vitals.Session, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	eventsHandler   *EventsHandler
	optimizeHandler *OptimizeHandler
	budgetHandler   *BudgetHandler
	recoveryHandler *RecoveryHandler
	calendarHandler *CalendarHandler
	sessionsHandler *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		eventsHandler:   NewEventsHandler(deps),
		optimizeHandler: NewOptimizeHandler(deps),
		budgetHandler:   NewBudgetHandler(deps),
		recoveryHandler: NewRecoveryHandler(deps),
		calendarHandler: NewCalendarHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleCollection, "events"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.eventsHandler.HandleItem, "events"))
	mux.HandleFunc("/optimize/week", MetricsMiddleware(s.optimizeHandler.HandleOptimizeWeek, "optimize_week"))
	mux.HandleFunc("/optimize/week/apply", MetricsMiddleware(s.optimizeHandler.HandleApply, "optimize_apply"))
	mux.HandleFunc("/optimize/suggestions", MetricsMiddleware(s.optimizeHandler.HandleSuggestions, "optimize_suggestions"))
	mux.HandleFunc("/budget/daily", MetricsMiddleware(s.budgetHandler.HandleDaily, "budget_daily"))
	mux.HandleFunc("/budget/weekly", MetricsMiddleware(s.budgetHandler.HandleWeekly, "budget_weekly"))
	mux.HandleFunc("/recovery/suggestions", MetricsMiddleware(s.recoveryHandler.HandleSuggestions, "recovery_suggestions"))
	mux.HandleFunc("/recovery/schedule", MetricsMiddleware(s.recoveryHandler.HandleSchedule, "recovery_schedule"))
	mux.HandleFunc("/calendar/sync", MetricsMiddleware(s.calendarHandler.HandleSync, "calendar_sync"))
	mux.HandleFunc("/calendar/status", MetricsMiddleware(s.calendarHandler.HandleStatus, "calendar_status"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleStart, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleItem, "sessions"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates sentinel errors from the service and
// domain layers into HTTP statuses. Anything unrecognized is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, vitals.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrProposalStale),
		errors.Is(err, service.ErrProposalNotFound),
		errors.Is(err, repository.ErrDuplicateID):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrQueueFull),
		errors.Is(err, readingqueue.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "backpressure", err)
	case errors.Is(err, model.ErrMissingTitle),
		errors.Is(err, model.ErrEndBeforeStart),
		errors.Is(err, model.ErrInvalidDuration),
		errors.Is(err, model.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
