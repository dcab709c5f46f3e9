package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/quietweek/quietweek/internal/adapters/calendar"
	"github.com/quietweek/quietweek/internal/adapters/http/api"
	"github.com/quietweek/quietweek/internal/adapters/repository"
	service "github.com/quietweek/quietweek/internal/app"
	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/internal/domain/planner"
	"github.com/quietweek/quietweek/internal/domain/vitals"
)

// Mock implementations for testing
type mockDeps struct {
	events map[string]*model.Event

	createErr error
	patchErr  error
	deleteErr error

	classified  int
	breakdown   costing.Breakdown
	analysis    service.WeekAnalysis
	proposal    *planner.Proposal
	applied     int
	applyErr    error
	suggestions []planner.Suggestion

	budget service.BudgetStatus
	weekly service.WeeklyBudget
	report service.RecoveryReport

	scheduled   *model.Event
	scheduleErr error

	syncAdded   int
	syncUpdated int
	syncErr     error
	syncStatus  calendar.Status

	session    vitals.Session
	sessionErr error
	enqueueErr error
	enqueued   []vitals.Reading
	endErr     error
}

func (m *mockDeps) ListEvents(ctx context.Context) []*model.Event {
	out := make([]*model.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	return out
}

func (m *mockDeps) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (m *mockDeps) CreateEvent(ctx context.Context, e *model.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.events == nil {
		m.events = make(map[string]*model.Event)
	}
	e.ID = "created-1"
	m.events[e.ID] = e
	return nil
}

func (m *mockDeps) PatchEvent(ctx context.Context, id string, patch service.EventPatch) (*model.Event, error) {
	if m.patchErr != nil {
		return nil, m.patchErr
	}
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Flexible != nil {
		e.Flexible = patch.Flexible
	}
	if patch.Participants != nil {
		e.Participants = patch.Participants
	}
	return e, nil
}

func (m *mockDeps) DeleteEvent(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *mockDeps) ClassifyEvents(ctx context.Context) int { return m.classified }

func (m *mockDeps) CostBreakdown(ctx context.Context, id string) (costing.Breakdown, error) {
	if _, ok := m.events[id]; !ok {
		return costing.Breakdown{}, repository.ErrNotFound
	}
	return m.breakdown, nil
}

func (m *mockDeps) AnalyzeWeek(ctx context.Context) service.WeekAnalysis { return m.analysis }

func (m *mockDeps) OptimizeWeek(ctx context.Context) *planner.Proposal { return m.proposal }

func (m *mockDeps) ApplyProposal(ctx context.Context, proposalID string, selectedIDs []string) (int, error) {
	if m.applyErr != nil {
		return 0, m.applyErr
	}
	return m.applied, nil
}

func (m *mockDeps) Suggestions(ctx context.Context) []planner.Suggestion { return m.suggestions }

func (m *mockDeps) DailyBudget(ctx context.Context) service.BudgetStatus { return m.budget }

func (m *mockDeps) WeeklyBudget(ctx context.Context) service.WeeklyBudget { return m.weekly }

func (m *mockDeps) RecoverySuggestions(ctx context.Context) service.RecoveryReport { return m.report }

func (m *mockDeps) ScheduleRecovery(ctx context.Context, title string, start time.Time, durationMinutes int) (*model.Event, error) {
	if m.scheduleErr != nil {
		return nil, m.scheduleErr
	}
	return m.scheduled, nil
}

func (m *mockDeps) SyncCalendar(ctx context.Context) (int, int, error) {
	return m.syncAdded, m.syncUpdated, m.syncErr
}

func (m *mockDeps) CalendarStatus() calendar.Status { return m.syncStatus }

func (m *mockDeps) StartSession(ctx context.Context, eventID string) (vitals.Session, error) {
	if m.sessionErr != nil {
		return vitals.Session{}, m.sessionErr
	}
	s := m.session
	s.EventID = eventID
	return s, nil
}

func (m *mockDeps) EnqueueReading(ctx context.Context, r vitals.Reading) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, r)
	return nil
}

func (m *mockDeps) GetSession(ctx context.Context, sessionID string) (vitals.Session, error) {
	if m.sessionErr != nil {
		return vitals.Session{}, m.sessionErr
	}
	return m.session, nil
}

func (m *mockDeps) EndSession(ctx context.Context, sessionID string) (vitals.Session, error) {
	if m.endErr != nil {
		return vitals.Session{}, m.endErr
	}
	s := m.session
	s.Ended = true
	return s, nil
}

type mockStatsProvider struct {
	stats service.Stats
}

func (m *mockStatsProvider) GetStats() service.Stats { return m.stats }

func newTestMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	server := api.NewServer(deps, &mockStatsProvider{stats: service.Stats{Started: true, EventsTracked: 3}})
	server.Register(context.Background(), mux)
	return mux
}

func fixtureEvent(id string) *model.Event {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &model.Event{
		ID:              id,
		Title:           "Sprint review",
		Start:           start,
		End:             start.Add(time.Hour),
		DurationMinutes: 60,
		Category:        model.CategoryMeeting,
	}
}

func doJSON(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestEventsEndpoints(t *testing.T) {
	Convey("Given a registered API server with one event", t, func() {
		deps := &mockDeps{events: map[string]*model.Event{"ev-1": fixtureEvent("ev-1")}}
		mux := newTestMux(deps)

		Convey("When GET /events", func() {
			rec := doJSON(mux, http.MethodGet, "/events", "")

			Convey("Then the collection comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Events []*model.Event `json:"events"`
					Count  int            `json:"count"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Count, ShouldEqual, 1)
				So(resp.Events[0].ID, ShouldEqual, "ev-1")
			})
		})

		Convey("When POST /events with a valid body", func() {
			body := `{"title":"Design sync","start_time":"2026-03-02T11:00:00Z","end_time":"2026-03-02T12:00:00Z","participants":4}`
			rec := doJSON(mux, http.MethodPost, "/events", body)

			Convey("Then the event is created", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				var e model.Event
				So(json.Unmarshal(rec.Body.Bytes(), &e), ShouldBeNil)
				So(e.ID, ShouldEqual, "created-1")
				So(e.DurationMinutes, ShouldEqual, 60)
			})
		})

		Convey("When POST /events with malformed JSON", func() {
			rec := doJSON(mux, http.MethodPost, "/events", "{nope")

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When POST /events without a title", func() {
			body := `{"start_time":"2026-03-02T11:00:00Z","end_time":"2026-03-02T12:00:00Z"}`
			rec := doJSON(mux, http.MethodPost, "/events", body)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When POST /events with an unknown category", func() {
			body := `{"title":"X","start_time":"2026-03-02T11:00:00Z","end_time":"2026-03-02T12:00:00Z","event_type":"circus"}`
			rec := doJSON(mux, http.MethodPost, "/events", body)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When GET /events/ev-1", func() {
			rec := doJSON(mux, http.MethodGet, "/events/ev-1", "")

			Convey("Then the event comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When GET /events/missing", func() {
			rec := doJSON(mux, http.MethodGet, "/events/missing", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When DELETE /events/ev-1", func() {
			rec := doJSON(mux, http.MethodDelete, "/events/ev-1", "")

			Convey("Then it is removed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.events, ShouldNotContainKey, "ev-1")
			})
		})

		Convey("When PATCH /events/ev-1/flexibility", func() {
			rec := doJSON(mux, http.MethodPatch, "/events/ev-1/flexibility", `{"is_flexible":true}`)

			Convey("Then the flag is set", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(*deps.events["ev-1"].Flexible, ShouldBeTrue)
			})
		})

		Convey("When PATCH /events/ev-1/flexibility without the flag", func() {
			rec := doJSON(mux, http.MethodPatch, "/events/ev-1/flexibility", `{}`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When PATCH /events/ev-1/enrich", func() {
			rec := doJSON(mux, http.MethodPatch, "/events/ev-1/enrich", `{"participants":8}`)

			Convey("Then the enrichment applies", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(*deps.events["ev-1"].Participants, ShouldEqual, 8)
			})
		})

		Convey("When GET /events/ev-1/cost", func() {
			deps.breakdown = costing.Breakdown{EventID: "ev-1", Total: 6}
			rec := doJSON(mux, http.MethodGet, "/events/ev-1/cost", "")

			Convey("Then the breakdown comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"total":6`)
			})
		})

		Convey("When GET /events/analyze", func() {
			deps.analysis = service.WeekAnalysis{MaxDaily: 12, DailyBudget: 20}
			rec := doJSON(mux, http.MethodGet, "/events/analyze", "")

			Convey("Then the analysis comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"max_daily_total":12`)
			})
		})

		Convey("When POST /events/classify", func() {
			deps.classified = 3
			rec := doJSON(mux, http.MethodPost, "/events/classify", "")

			Convey("Then the count comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"classified":3`)
			})
		})

		Convey("When an unsupported method hits the collection", func() {
			rec := doJSON(mux, http.MethodPut, "/events", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestOptimizeEndpoints(t *testing.T) {
	Convey("Given a server with a pending proposal", t, func() {
		deps := &mockDeps{
			proposal: &planner.Proposal{ID: "prop-1", CurrentMaxDailyLoad: 28, ProposedMaxDailyLoad: 18},
			applied:  2,
		}
		mux := newTestMux(deps)

		Convey("When POST /optimize/week", func() {
			rec := doJSON(mux, http.MethodPost, "/optimize/week", "")

			Convey("Then the proposal comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"proposal_id":"prop-1"`)
			})
		})

		Convey("When POST /optimize/week/apply with a proposal id", func() {
			rec := doJSON(mux, http.MethodPost, "/optimize/week/apply", `{"proposal_id":"prop-1"}`)

			Convey("Then the applied count comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"applied":2`)
			})
		})

		Convey("When the apply body has no proposal id", func() {
			rec := doJSON(mux, http.MethodPost, "/optimize/week/apply", `{}`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the proposal is stale", func() {
			deps.applyErr = service.ErrProposalStale
			rec := doJSON(mux, http.MethodPost, "/optimize/week/apply", `{"proposal_id":"prop-0"}`)

			Convey("Then it is a conflict", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the proposal id was never issued", func() {
			deps.applyErr = service.ErrProposalNotFound
			rec := doJSON(mux, http.MethodPost, "/optimize/week/apply", `{"proposal_id":"ghost"}`)

			Convey("Then it is a conflict", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When GET /optimize/suggestions", func() {
			deps.suggestions = []planner.Suggestion{{ID: "s-1", Kind: "postpone"}}
			rec := doJSON(mux, http.MethodGet, "/optimize/suggestions", "")

			Convey("Then the suggestions come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"count":1`)
			})
		})
	})
}

func TestBudgetAndRecoveryEndpoints(t *testing.T) {
	Convey("Given a server with budget fixtures", t, func() {
		deps := &mockDeps{
			budget:    service.BudgetStatus{DailyBudget: 20, Spent: 14, Remaining: 6},
			weekly:    service.WeeklyBudget{WeeklyTotal: 42},
			report:    service.RecoveryReport{WeeklyDebt: 3, DailyBudget: 20},
			scheduled: fixtureEvent("rec-1"),
		}
		mux := newTestMux(deps)

		Convey("When GET /budget/daily", func() {
			rec := doJSON(mux, http.MethodGet, "/budget/daily", "")

			Convey("Then the status comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"spent":14`)
			})
		})

		Convey("When GET /budget/weekly", func() {
			rec := doJSON(mux, http.MethodGet, "/budget/weekly", "")

			Convey("Then the totals come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"weekly_total":42`)
			})
		})

		Convey("When POST hits a GET-only budget route", func() {
			rec := doJSON(mux, http.MethodPost, "/budget/daily", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When GET /recovery/suggestions", func() {
			rec := doJSON(mux, http.MethodGet, "/recovery/suggestions", "")

			Convey("Then the report comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"weekly_debt":3`)
			})
		})

		Convey("When POST /recovery/schedule with a valid body", func() {
			body := `{"title":"Walk","start_time":"2026-03-02T15:00:00Z","duration_minutes":30}`
			rec := doJSON(mux, http.MethodPost, "/recovery/schedule", body)

			Convey("Then the event is created", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
			})
		})

		Convey("When POST /recovery/schedule with a bad start time", func() {
			rec := doJSON(mux, http.MethodPost, "/recovery/schedule", `{"title":"Walk","start_time":"soon"}`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestCalendarEndpoints(t *testing.T) {
	Convey("Given a server with sync fixtures", t, func() {
		deps := &mockDeps{
			syncAdded:  14,
			syncStatus: calendar.Status{MockFeed: true, LastAdded: 14},
		}
		mux := newTestMux(deps)

		Convey("When POST /calendar/sync", func() {
			rec := doJSON(mux, http.MethodPost, "/calendar/sync", "")

			Convey("Then the counts come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"added":14`)
			})
		})

		Convey("When a source fails during sync", func() {
			deps.syncErr = context.DeadlineExceeded
			rec := doJSON(mux, http.MethodPost, "/calendar/sync", "")

			Convey("Then the error is reported in the body", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"error"`)
			})
		})

		Convey("When GET /calendar/status", func() {
			rec := doJSON(mux, http.MethodGet, "/calendar/status", "")

			Convey("Then the status comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"mock_feed":true`)
			})
		})
	})
}

func TestSessionEndpoints(t *testing.T) {
	Convey("Given a server with a session fixture", t, func() {
		deps := &mockDeps{
			session: vitals.Session{ID: "sess-1", EstimatedCost: 6},
		}
		mux := newTestMux(deps)

		Convey("When POST /sessions bound to an event", func() {
			rec := doJSON(mux, http.MethodPost, "/sessions", `{"event_id":"ev-1"}`)

			Convey("Then the session comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(rec.Body.String(), ShouldContainSubstring, `"event_id":"ev-1"`)
			})
		})

		Convey("When POST /sessions with no body", func() {
			rec := doJSON(mux, http.MethodPost, "/sessions", "")

			Convey("Then a standalone session starts", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(rec.Body.String(), ShouldContainSubstring, `"session_id":"sess-1"`)
			})
		})

		Convey("When readings are posted", func() {
			body := `{"readings":[{"timestamp":"2026-03-02T10:00:00Z","pulse_rate":70,"breathing_rate":14}]}`
			rec := doJSON(mux, http.MethodPost, "/sessions/sess-1/readings", body)

			Convey("Then they are accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(len(deps.enqueued), ShouldEqual, 1)
				So(deps.enqueued[0].SessionID, ShouldEqual, "sess-1")
			})
		})

		Convey("When readings are posted without a payload", func() {
			rec := doJSON(mux, http.MethodPost, "/sessions/sess-1/readings", `{"readings":[]}`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is shedding load", func() {
			deps.enqueueErr = service.ErrQueueFull
			body := `{"readings":[{"timestamp":"2026-03-02T10:00:00Z","pulse_rate":70,"breathing_rate":14}]}`
			rec := doJSON(mux, http.MethodPost, "/sessions/sess-1/readings", body)

			Convey("Then the service is unavailable", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the session does not exist", func() {
			deps.sessionErr = vitals.ErrSessionNotFound
			rec := doJSON(mux, http.MethodGet, "/sessions/ghost", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When POST /sessions/sess-1/end", func() {
			rec := doJSON(mux, http.MethodPost, "/sessions/sess-1/end", "")

			Convey("Then the ended session comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"ended":true`)
			})
		})
	})
}

func TestOpsEndpoints(t *testing.T) {
	Convey("Given a registered server", t, func() {
		mux := newTestMux(&mockDeps{})

		Convey("When GET /stats", func() {
			rec := doJSON(mux, http.MethodGet, "/stats", "")

			Convey("Then the stats come back as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"started":true`)
				So(rec.Body.String(), ShouldContainSubstring, `"events_tracked":3`)
			})
		})

		Convey("When GET /healthz", func() {
			rec := doJSON(mux, http.MethodGet, "/healthz", "")

			Convey("Then the metrics registry is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "quietweek_schedule")
			})
		})
	})
}
