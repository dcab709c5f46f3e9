// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/quietweek/quietweek/internal/adapters/calendar"
	readingqueue "github.com/quietweek/quietweek/internal/adapters/mq/queue"
	workerpool "github.com/quietweek/quietweek/internal/adapters/mq/worker"
	"github.com/quietweek/quietweek/internal/adapters/repository"
	"github.com/quietweek/quietweek/internal/domain/classify"
	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/internal/domain/planner"
	"github.com/quietweek/quietweek/internal/domain/vitals"
	"github.com/quietweek/quietweek/pkg/logger"
	"github.com/quietweek/quietweek/pkg/metrics"
)

// Service implements the API dependencies for the schedule system.
//
// All event mutations funnel through s.mu: the store tolerates
// concurrent access, but optimizer simulation and cost recomputes need
// a consistent view of the collection, so there is a single writer at
// a time.
type Service struct {
	mu sync.Mutex

	// Core components
	store     repository.Store
	optimizer *planner.Optimizer
	tracker   *vitals.Tracker
	queue     readingqueue.Queue
	pool      *workerpool.Pool
	syncer    *calendar.Syncer

	// Proposal cache. Applying goes through here; any schedule
	// mutation moves live proposals to the stale set.
	proposals      map[string]*planner.Proposal
	staleProposals map[string]struct{}

	// Configuration
	dailyBudget     int
	workStartHour   int
	workEndHour     int
	extendedEndHour int
	queueSize       int
	workerCount     int
	syncSchedule    string
	icsSources      []string
	vitalsWindow    time.Duration
	vitalsMinStable int
	vitalsAgg       vitals.AggregationMethod

	// State
	started bool
	cancel  context.CancelFunc
	now     func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDailyBudget sets the per-day cognitive budget.
func WithDailyBudget(budget int) Option {
	return func(s *Service) {
		if budget > 0 {
			s.dailyBudget = budget
		}
	}
}

// WithWorkHours sets the scheduling window.
func WithWorkHours(start, end, extendedEnd int) Option {
	return func(s *Service) {
		s.workStartHour = start
		s.workEndHour = end
		s.extendedEndHour = extendedEnd
	}
}

// WithQueueSize sets the maximum size of the reading queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of reading workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithSyncSchedule sets the cron expression for periodic calendar sync.
func WithSyncSchedule(schedule string) Option {
	return func(s *Service) {
		s.syncSchedule = schedule
	}
}

// WithICSSources sets the ICS feed URLs to sync from.
func WithICSSources(urls []string) Option {
	return func(s *Service) {
		s.icsSources = urls
	}
}

// WithVitals tunes the session reading pipeline.
func WithVitals(window time.Duration, minStable int, agg vitals.AggregationMethod) Option {
	return func(s *Service) {
		if window > 0 {
			s.vitalsWindow = window
		}
		if minStable > 0 {
			s.vitalsMinStable = minStable
		}
		if agg != "" {
			s.vitalsAgg = agg
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		proposals:       make(map[string]*planner.Proposal),
		staleProposals:  make(map[string]struct{}),
		dailyBudget:     costing.DailyBudget,
		workStartHour:   9,
		workEndHour:     17,
		extendedEndHour: 19,
		queueSize:       4096,
		workerCount:     runtime.NumCPU(),
		vitalsWindow:    5 * time.Second,
		vitalsMinStable: 2,
		vitalsAgg:       vitals.AggregateMedian,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting schedule service...")

	s.store = repository.NewMemStore()
	s.optimizer = planner.New(
		planner.WithDailyBudget(s.dailyBudget),
		planner.WithWorkHours(s.workStartHour, s.workEndHour),
		planner.WithExtendedEndHour(s.extendedEndHour),
	)
	s.tracker = vitals.NewTracker(
		vitals.WithWindow(s.vitalsWindow),
		vitals.WithMinStable(s.vitalsMinStable),
		vitals.WithAggregation(s.vitalsAgg),
		vitals.WithClock(s.now),
	)
	s.queue = readingqueue.NewInMemoryQueue(
		readingqueue.WithCapacity(s.queueSize),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.tracker)
	s.pool.Start(runCtx)

	sources := make([]calendar.Source, 0, len(s.icsSources))
	for i, url := range s.icsSources {
		sources = append(sources, calendar.Source{ID: fmt.Sprintf("feed-%d", i), URL: url})
	}
	s.syncer = calendar.NewSyncer(sources, s.store,
		calendar.WithSyncClock(s.now),
		calendar.WithPostSync(s.afterSync),
	)
	if err := s.syncer.StartCron(runCtx, s.syncSchedule); err != nil {
		cancel()
		return err
	}

	s.started = true
	s.logger.Info(ctx, "schedule service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dailyBudget", s.dailyBudget),
		logger.Int("icsSources", len(sources)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping schedule service...")

	s.syncer.Stop()

	_ = s.queue.Close()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "schedule service stopped")
}

// invalidateProposals moves every live proposal to the stale set.
// Callers hold s.mu.
func (s *Service) invalidateProposals() {
	for id := range s.proposals {
		s.staleProposals[id] = struct{}{}
		delete(s.proposals, id)
	}
	// The stale set only exists to distinguish 409 from 404; don't let
	// it grow without bound.
	if len(s.staleProposals) > 1024 {
		s.staleProposals = make(map[string]struct{})
	}
}

// recompute refreshes proximity-aware costs. Callers hold s.mu.
func (s *Service) recompute(ctx context.Context) []*model.Event {
	events := s.store.List(ctx)
	costing.ApplyProximity(events)
	return events
}

// ---------------------------------------------------------------------------
// Events

// ListEvents returns all events with proximity-aware costs refreshed.
func (s *Service) ListEvents(ctx context.Context) []*model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recompute(ctx)
}

// GetEvent returns one event by id.
func (s *Service) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recompute(ctx)
	return e, nil
}

// CreateEvent validates and stores a new event. Events arriving without
// a category are classified from their text.
func (s *Service) CreateEvent(ctx context.Context, e *model.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Category == "" {
		e.Category = classify.Classify(e.Title, e.Description)
	}
	if e.DurationMinutes == 0 {
		e.DurationMinutes = int(e.End.Sub(e.Start).Minutes())
	}
	if err := s.store.Add(ctx, e); err != nil {
		return err
	}
	s.recompute(ctx)
	s.invalidateProposals()
	return nil
}

// PatchEvent applies user enrichments to an event and returns it with
// refreshed costs.
func (s *Service) PatchEvent(ctx context.Context, id string, patch EventPatch) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Patch a copy so a rejected category leaves the stored event
	// untouched, then write it back through the store.
	patched := *cur
	e := &patched

	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Participants != nil {
		e.Participants = patch.Participants
	}
	if patch.HasAgenda != nil {
		e.HasAgenda = patch.HasAgenda
	}
	if patch.RequiresToolSwitch != nil {
		e.RequiresToolSwitch = patch.RequiresToolSwitch
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return nil, model.ErrInvalidCategory
		}
		e.Category = *patch.Category
	}
	if patch.Flexible != nil {
		e.Flexible = patch.Flexible
	}

	if err := s.store.Update(ctx, e); err != nil {
		return nil, err
	}
	s.recompute(ctx)
	s.invalidateProposals()
	return e, nil
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.recompute(ctx)
	s.invalidateProposals()
	return nil
}

// ClassifyEvents runs keyword classification over every event that has
// no category yet and returns how many got one.
func (s *Service) ClassifyEvents(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := classify.ClassifyEvents(s.store.List(ctx))
	if n > 0 {
		s.recompute(ctx)
		s.invalidateProposals()
	}
	return n
}

// CostBreakdown itemizes one event's cost, with the proximity component
// judged against the event preceding it that day.
func (s *Service) CostBreakdown(ctx context.Context, id string) (costing.Breakdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.store.Get(ctx, id)
	if err != nil {
		return costing.Breakdown{}, err
	}

	var prevEnd time.Time
	for _, other := range s.store.List(ctx) {
		if other.ID == e.ID || other.DayKey() != e.DayKey() {
			continue
		}
		if !other.Start.After(e.Start) && other.End.After(prevEnd) {
			prevEnd = other.End
		}
	}
	return costing.CostBreakdown(e, prevEnd), nil
}

// AnalyzeWeek recomputes every cost and reports per-day totals.
func (s *Service) AnalyzeWeek(ctx context.Context) WeekAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.recompute(ctx)
	totals := costing.DailyTotals(events)
	maxDaily := 0
	for _, total := range totals {
		if total > maxDaily {
			maxDaily = total
		}
	}
	return WeekAnalysis{
		Events:      events,
		DailyTotals: totals,
		MaxDaily:    maxDaily,
		DailyBudget: s.dailyBudget,
	}
}

// ---------------------------------------------------------------------------
// Optimization

// OptimizeWeek runs the week optimizer over the current schedule and
// caches the proposal for a later apply.
func (s *Service) OptimizeWeek(ctx context.Context) *planner.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	events := s.recompute(ctx)
	proposal := s.optimizer.OptimizeWeek(events)

	metrics.RecordOptimizerRun(float64(time.Since(start).Milliseconds()))
	metrics.RecordProposedMoves(len(proposal.Changes))

	s.proposals[proposal.ID] = proposal
	s.logger.Info(ctx, "week optimized",
		logger.String("proposal_id", proposal.ID),
		logger.Int("changes", len(proposal.Changes)),
		logger.Int("reduction", proposal.TotalReduction))
	return proposal
}

// ApplyProposal commits a cached proposal, or the selected subset of
// it, onto the live schedule. Proposals invalidated by schedule changes
// come back ErrProposalStale; unknown ids ErrProposalNotFound.
func (s *Service) ApplyProposal(ctx context.Context, proposalID string, selectedIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		if _, stale := s.staleProposals[proposalID]; stale {
			return 0, ErrProposalStale
		}
		return 0, ErrProposalNotFound
	}

	events := s.store.List(ctx)
	applied := s.optimizer.Apply(events, proposal, selectedIDs)
	metrics.RecordAppliedMoves(applied)

	// The schedule moved; every proposal including this one is now
	// stale.
	s.invalidateProposals()

	s.logger.Info(ctx, "proposal applied",
		logger.String("proposal_id", proposalID),
		logger.Int("applied", applied))
	return applied, nil
}

// Suggestions produces lightweight scheduling hints for the current
// weekly debt.
func (s *Service) Suggestions(ctx context.Context) []planner.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.recompute(ctx)
	return s.optimizer.GenerateSuggestions(events, s.weeklyDebt(events))
}

// weeklyDebt is the events total minus five working days of budget,
// plus standalone session costs. Callers hold s.mu.
func (s *Service) weeklyDebt(events []*model.Event) int {
	total := 0
	for _, e := range events {
		total += e.BudgetCost()
	}
	for _, amount := range s.tracker.DayCosts() {
		total += amount
	}
	return total - s.dailyBudget*5
}

// ---------------------------------------------------------------------------
// Budget

// DailyBudget reports today's spend against the budget. Events with a
// session-measured actual cost are charged at it; standalone session
// costs land on the day their session ended.
func (s *Service) DailyBudget(ctx context.Context) BudgetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.recompute(ctx)
	today := s.now().Format(model.DayKeyFormat)

	spent := s.tracker.CostOn(today)
	for _, e := range events {
		if e.DayKey() == today {
			spent += e.BudgetCost()
		}
	}

	overdrafted, overdraft, remaining := costing.Overdraft(spent, s.dailyBudget)

	weeklyTotal := 0
	for _, e := range events {
		weeklyTotal += e.BudgetCost()
	}
	for _, amount := range s.tracker.DayCosts() {
		weeklyTotal += amount
	}

	return BudgetStatus{
		DailyBudget:     s.dailyBudget,
		Spent:           spent,
		Remaining:       remaining,
		IsOverdrafted:   overdrafted,
		OverdraftAmount: overdraft,
		WeeklyTotal:     weeklyTotal,
		WeeklyDebt:      weeklyTotal - s.dailyBudget*7,
	}
}

// WeeklyBudget reports per-day totals across the whole collection.
func (s *Service) WeeklyBudget(ctx context.Context) WeeklyBudget {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.recompute(ctx)

	totals := make(map[string]int)
	for _, e := range events {
		totals[e.DayKey()] += e.BudgetCost()
	}
	for day, amount := range s.tracker.DayCosts() {
		totals[day] += amount
	}

	weekly := 0
	for _, total := range totals {
		weekly += total
	}
	return WeeklyBudget{DailyTotals: totals, WeeklyTotal: weekly}
}

// ---------------------------------------------------------------------------
// Recovery

// RecoverySuggestions reports weekly debt, overloaded days and the
// recovery activity catalog with slots each would fit into.
func (s *Service) RecoverySuggestions(ctx context.Context) RecoveryReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.recompute(ctx)

	dailyCosts := make(map[string]DayCost)
	for _, e := range events {
		day := dailyCosts[e.DayKey()]
		day.Day = e.Start.Weekday().String()
		day.Cost += e.CostOnRecord()
		dailyCosts[e.DayKey()] = day
	}

	var overloaded []string
	for key, day := range dailyCosts {
		day.OverBudget = day.Cost > s.dailyBudget
		if over := day.Cost - s.dailyBudget; over > 0 {
			day.Overflow = over
		}
		dailyCosts[key] = day
		if day.OverBudget {
			overloaded = append(overloaded, day.Day)
		}
	}
	sort.Strings(overloaded)

	debt := s.weeklyDebt(events)
	positiveDebt := debt
	if positiveDebt < 0 {
		positiveDebt = 0
	}

	activities := make([]RecoveryActivity, 0)
	for _, a := range costing.SuggestRecoveryActivities(positiveDebt) {
		activities = append(activities, RecoveryActivity{
			RecoveryActivity: a,
			SuggestedSlots:   s.optimizer.FindRecoverySlots(events, a.DurationMinutes, true),
		})
	}

	return RecoveryReport{
		WeeklyDebt:     debt,
		DailyBudget:    s.dailyBudget,
		DailyCosts:     dailyCosts,
		OverloadedDays: overloaded,
		Activities:     activities,
	}
}

// ScheduleRecovery inserts a recovery event into the schedule.
func (s *Service) ScheduleRecovery(ctx context.Context, title string, start time.Time, durationMinutes int) (*model.Event, error) {
	if title == "" {
		title = "Recovery Activity"
	}
	if durationMinutes <= 0 {
		durationMinutes = 30
	}

	e := &model.Event{
		Title:              title,
		Start:              start,
		End:                start.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes:    durationMinutes,
		Participants:       model.Ref(1),
		HasAgenda:          model.Ref(true),
		RequiresToolSwitch: model.Ref(false),
		Category:           model.CategoryRecovery,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Add(ctx, e); err != nil {
		return nil, err
	}
	s.recompute(ctx)
	s.invalidateProposals()
	return e, nil
}

// ---------------------------------------------------------------------------
// Calendar

// SyncCalendar runs one calendar sync pass. Recomputation and proposal
// invalidation happen in the afterSync hook, shared with scheduled
// passes.
func (s *Service) SyncCalendar(ctx context.Context) (added, updated int, err error) {
	return s.syncer.SyncOnce(ctx)
}

// afterSync runs after every sync pass, scheduled or on demand. Any
// merged change reshuffles costs and stales cached proposals.
func (s *Service) afterSync(ctx context.Context, changed int) {
	if changed == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recompute(ctx)
	s.invalidateProposals()
}

// CalendarStatus reports the most recent sync outcome.
func (s *Service) CalendarStatus() calendar.Status {
	return s.syncer.Status()
}

// ---------------------------------------------------------------------------
// Sessions

// StartSession opens a monitoring session, bound to an event when an
// id is given; the event's current cost becomes the estimate.
func (s *Service) StartSession(ctx context.Context, eventID string) (vitals.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	estimated := 0
	if eventID != "" {
		e, err := s.store.Get(ctx, eventID)
		if err != nil {
			return vitals.Session{}, err
		}
		s.recompute(ctx)
		estimated = e.CostOnRecord()
	}

	session := s.tracker.Start(eventID, estimated)
	metrics.UpdateActiveSessions(s.tracker.ActiveCount())
	return session, nil
}

// EnqueueReading hands a reading to the ingest queue. ErrQueueFull
// signals backpressure; the caller should retry later.
func (s *Service) EnqueueReading(ctx context.Context, r vitals.Reading) error {
	if s.queue.IsClosed() {
		return readingqueue.ErrClosed
	}
	if _, err := s.tracker.Get(r.SessionID); err != nil {
		return err
	}
	if !s.queue.Enqueue(ctx, r) {
		return ErrQueueFull
	}
	return nil
}

// GetSession returns an active session snapshot.
func (s *Service) GetSession(_ context.Context, sessionID string) (vitals.Session, error) {
	return s.tracker.Get(sessionID)
}

// EndSession closes a session; for event-bound sessions the measured
// actual cost is written back onto the event so budget reporting
// charges reality instead of the estimate.
func (s *Service) EndSession(ctx context.Context, sessionID string) (vitals.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.tracker.End(sessionID)
	if err != nil {
		return vitals.Session{}, err
	}
	metrics.UpdateActiveSessions(s.tracker.ActiveCount())

	if session.EventID != "" && session.ActualCost != nil {
		if e, gerr := s.store.Get(ctx, session.EventID); gerr == nil {
			e.ActualCost = session.ActualCost
			s.invalidateProposals()
		}
	}
	return session, nil
}

// ---------------------------------------------------------------------------
// Stats

// Stats is the operational snapshot served on /stats. The gauge fields
// are only populated while the service runs.
type Stats struct {
	Started        bool      `json:"started"`
	DailyBudget    int       `json:"daily_budget"`
	WorkerCount    int       `json:"worker_count"`
	QueueSize      int       `json:"queue_size"`
	SyncSchedule   string    `json:"sync_schedule,omitempty"`
	EventsTracked  int       `json:"events_tracked"`
	QueueLength    int       `json:"queue_length"`
	ActiveSessions int       `json:"active_sessions"`
	LiveProposals  int       `json:"live_proposals"`
	LastSync       time.Time `json:"last_sync,omitzero"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Started:      s.started,
		DailyBudget:  s.dailyBudget,
		WorkerCount:  s.workerCount,
		QueueSize:    s.queueSize,
		SyncSchedule: s.syncSchedule,
	}

	if s.started {
		ctx := context.Background()
		stats.EventsTracked = s.store.Count(ctx)
		stats.QueueLength = s.queue.Len(ctx)
		stats.ActiveSessions = s.tracker.ActiveCount()
		stats.LiveProposals = len(s.proposals)
		stats.LastSync = s.syncer.Status().LastRun
	}

	return stats
}
