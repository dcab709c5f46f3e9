package vitals

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/pkg/logger"
)

// AggregationMethod selects how per-reading cost deltas collapse into
// one session delta.
type AggregationMethod string

const (
	// AggregateMean averages all deltas.
	AggregateMean AggregationMethod = "mean"
	// AggregateMedian takes the median, damping momentary stress
	// spikes that do not represent the session. The default.
	AggregateMedian AggregationMethod = "median"
	// AggregateP90 takes the 90th percentile, capturing sustained
	// high stress.
	AggregateP90 AggregationMethod = "p90"
)

// regularSessionBaseline is the cost of an unremarkable 60-minute
// working block, used to project an hourly rate from a session.
const regularSessionBaseline = 4

// Session is one vital-sign monitoring session, optionally bound to a
// calendar event whose estimated cost it refines.
type Session struct {
	ID             string      `json:"session_id"`
	EventID        string      `json:"event_id,omitempty"`
	Start          time.Time   `json:"start_time"`
	EstimatedCost  int         `json:"estimated_cost"`
	ActualCost     *int        `json:"actual_cost,omitempty"`
	DebtAdjustment *int        `json:"debt_adjustment,omitempty"`
	HourlyRate     *float64    `json:"hourly_projection,omitempty"`
	ReadingCount   int         `json:"reading_count"`
	LastLoad       *LoadResult `json:"last_load,omitempty"`
	Ended          bool        `json:"ended"`
}

type activeSession struct {
	session Session
	buffer  *Buffer
	deltas  []float64
}

// Tracker owns the active monitoring sessions. Readings flow in
// through Ingest (normally from the worker pool draining the queue),
// get smoothed per session and accumulate cost deltas; End folds the
// deltas into the session's actual cost. Safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	sessions  map[string]*activeSession
	dayCosts  map[string]int
	window    time.Duration
	minStable int
	method    AggregationMethod
	now       func() time.Time
	log       logger.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithWindow sets the sliding-window duration for per-session buffers.
func WithWindow(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.window = d }
}

// WithMinStable sets how many buffered readings make aggregates stable.
func WithMinStable(n int) TrackerOption {
	return func(t *Tracker) { t.minStable = n }
}

// WithAggregation sets the session delta aggregation method.
func WithAggregation(m AggregationMethod) TrackerOption {
	return func(t *Tracker) { t.method = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// WithTrackerLogger sets the logger.
func WithTrackerLogger(log logger.Logger) TrackerOption {
	return func(t *Tracker) { t.log = log }
}

// NewTracker returns a session tracker with a 5-second window, a
// 2-reading stability floor and median aggregation.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		sessions:  make(map[string]*activeSession),
		dayCosts:  make(map[string]int),
		window:    defaultWindow,
		minStable: defaultMinStable,
		method:    AggregateMedian,
		now:       time.Now,
		log:       logger.Named("vitals"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start opens a new session. eventID may be empty for a standalone
// session; estimatedCost is the bound event's current cost, or zero.
func (t *Tracker) Start(eventID string, estimatedCost int) Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &activeSession{
		session: Session{
			ID:            uuid.NewString(),
			EventID:       eventID,
			Start:         t.now(),
			EstimatedCost: estimatedCost,
		},
		buffer: NewBuffer(t.window, t.minStable),
	}
	t.sessions[s.session.ID] = s

	t.log.Debug(context.Background(), "session started",
		logger.String("session_id", s.session.ID),
		logger.String("event_id", eventID),
		logger.Int("estimated_cost", estimatedCost))
	return s.session
}

// Ingest feeds one reading into its session's buffer. Once the buffer
// is stable the aggregated window is scored and the resulting cost
// delta joins the session's running series; the returned bool reports
// whether a load result was produced.
func (t *Tracker) Ingest(r Reading) (LoadResult, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[r.SessionID]
	if !ok {
		return LoadResult{}, false, ErrSessionNotFound
	}

	if r.Timestamp.IsZero() {
		r.Timestamp = t.now()
	}
	s.buffer.Add(r)
	s.session.ReadingCount++

	if !s.buffer.Stable() {
		return LoadResult{}, false, nil
	}
	agg, ok := s.buffer.Aggregate()
	if !ok {
		return LoadResult{}, false, nil
	}

	load := ComputeLoad(agg)
	s.deltas = append(s.deltas, load.CostDelta)
	s.session.LastLoad = &load
	return load, true, nil
}

// End closes a session: the accumulated deltas collapse into one value,
// actual cost becomes estimated + delta, and for standalone sessions
// the cost is charged to the day it ended on. The session leaves the
// active set; the returned snapshot carries the final figures. The
// caller owns writing the actual cost back onto the bound event.
func (t *Tracker) End(sessionID string) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	delete(t.sessions, sessionID)

	delta := aggregateDeltas(s.deltas, t.method)
	actual := s.session.EstimatedCost + int(math.RoundToEven(delta))
	adjustment := actual - s.session.EstimatedCost
	hourly := regularSessionBaseline + delta

	s.session.ActualCost = &actual
	s.session.DebtAdjustment = &adjustment
	s.session.HourlyRate = &hourly
	s.session.Ended = true

	if s.session.EventID == "" {
		day := t.now().Format(model.DayKeyFormat)
		t.dayCosts[day] += actual
	}

	t.log.Info(context.Background(), "session ended",
		logger.String("session_id", sessionID),
		logger.Int("estimated_cost", s.session.EstimatedCost),
		logger.Int("actual_cost", actual),
		logger.Int("readings", s.session.ReadingCount))
	return s.session, nil
}

// Get returns a snapshot of an active session.
func (t *Tracker) Get(sessionID string) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s.session, nil
}

// ActiveCount returns how many sessions are currently open.
func (t *Tracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// CostOn returns the standalone session cost recorded for a day key.
func (t *Tracker) CostOn(dayKey string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dayCosts[dayKey]
}

// DayCosts returns a copy of all recorded standalone session costs,
// keyed by day.
func (t *Tracker) DayCosts() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]int, len(t.dayCosts))
	for k, v := range t.dayCosts {
		out[k] = v
	}
	return out
}

func aggregateDeltas(deltas []float64, method AggregationMethod) float64 {
	if len(deltas) == 0 {
		return 0
	}
	switch method {
	case AggregateMean:
		sum := 0.0
		for _, d := range deltas {
			sum += d
		}
		return sum / float64(len(deltas))
	case AggregateP90:
		sorted := append([]float64(nil), deltas...)
		sort.Float64s(sorted)
		idx := int(float64(len(sorted)) * 0.9)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	default:
		sorted := append([]float64(nil), deltas...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return sorted[mid]
		}
		return (sorted[mid-1] + sorted[mid]) / 2
	}
}
