package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quietweek/quietweek/internal/adapters/repository"
	"github.com/quietweek/quietweek/pkg/logger"
	"github.com/quietweek/quietweek/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// Default sync window: a week back for context, four weeks ahead for
// planning.
const (
	defaultWindowBack  = 7 * 24 * time.Hour
	defaultWindowAhead = 28 * 24 * time.Hour
)

// Status reports the outcome of the most recent sync run.
type Status struct {
	LastRun     time.Time `json:"last_run,omitempty"`
	LastAdded   int       `json:"last_added"`
	LastUpdated int       `json:"last_updated"`
	LastRemoved int       `json:"last_removed"`
	LastError   string    `json:"last_error,omitempty"`
	SourceCount int       `json:"source_count"`
	MockFeed    bool      `json:"mock_feed"`
	Schedule    string    `json:"schedule,omitempty"`
}

// Syncer pulls the configured ICS sources into the event store, either
// on demand or on a cron schedule. With no sources configured it syncs
// the built-in mock feed instead.
type Syncer struct {
	sources  []Source
	fetcher  *Fetcher
	store    repository.Store
	cron     *cron.Cron
	now      func() time.Time
	log      logger.Logger
	postSync func(ctx context.Context, changed int)

	mu     sync.Mutex
	status Status
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithSyncClock overrides the time source.
func WithSyncClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) { s.now = now }
}

// WithPostSync registers a hook invoked after every sync pass with the
// number of merged changes. Scheduled and on-demand passes both hit it,
// so owners can react to event-set changes regardless of trigger.
func WithPostSync(hook func(ctx context.Context, changed int)) SyncerOption {
	return func(s *Syncer) { s.postSync = hook }
}

// WithSyncLogger sets the logger.
func WithSyncLogger(log logger.Logger) SyncerOption {
	return func(s *Syncer) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSyncer creates a calendar syncer over the given sources and store.
func NewSyncer(sources []Source, store repository.Store, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		sources: sources,
		fetcher: NewFetcher(),
		store:   store,
		now:     time.Now,
		log:     logger.Named("calendar"),
	}
	s.status.SourceCount = len(sources)
	s.status.MockFeed = len(sources) == 0
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncOnce runs a single sync pass: fetch every source (or the mock
// feed), parse and expand into the window around now, then merge into
// the store. Individual source failures are reported but do not stop
// the rest.
func (s *Syncer) SyncOnce(ctx context.Context) (added, updated int, err error) {
	metrics.RecordSyncRun()
	now := s.now()
	window := Window{Start: now.Add(-defaultWindowBack), End: now.Add(defaultWindowAhead)}

	var parsed []ParsedEvent
	var fetchErrs []error

	if len(s.sources) == 0 {
		mock := Source{ID: "mock"}
		events, perr := Parse(ctx, mock, MockFeed(now))
		if perr != nil {
			s.recordError(perr)
			return 0, 0, perr
		}
		parsed = events
	} else {
		results, errs := s.fetcher.FetchAll(ctx, s.sources)
		fetchErrs = errs
		for _, res := range results {
			events, perr := Parse(ctx, res.Source, res.Body)
			if perr != nil {
				fetchErrs = append(fetchErrs, fmt.Errorf("parse %s: %w", res.Source.ID, perr))
				continue
			}
			parsed = append(parsed, events...)
		}
	}

	// A failed source says nothing about its events, so only a clean
	// pass may prune vanished remote events.
	expanded := Expand(ctx, parsed, window)
	added, updated, removed := s.store.MergeRemote(ctx, expanded, len(fetchErrs) == 0)
	metrics.RecordEventsSynced(added + updated)

	s.mu.Lock()
	s.status.LastRun = now
	s.status.LastAdded = added
	s.status.LastUpdated = updated
	s.status.LastRemoved = removed
	s.status.LastError = ""
	if len(fetchErrs) > 0 {
		s.status.LastError = fetchErrs[0].Error()
	}
	s.mu.Unlock()

	if s.postSync != nil {
		s.postSync(ctx, added+updated+removed)
	}

	s.log.Info(ctx, "calendar sync completed",
		logger.Int("added", added),
		logger.Int("updated", updated),
		logger.Int("removed", removed),
		logger.Int("source_errors", len(fetchErrs)))

	if len(fetchErrs) > 0 {
		metrics.RecordSyncError()
		return added, updated, fmt.Errorf("calendar sync: %d source(s) failed: %w", len(fetchErrs), fetchErrs[0])
	}
	return added, updated, nil
}

// StartCron schedules periodic syncs. An empty schedule disables the
// cron; invalid schedules are an error.
func (s *Syncer) StartCron(ctx context.Context, schedule string) error {
	if schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, _, serr := s.SyncOnce(ctx); serr != nil {
			s.log.Error(ctx, "scheduled calendar sync failed", logger.Error(serr))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}

	c.Start()
	s.mu.Lock()
	s.cron = c
	s.status.Schedule = schedule
	s.mu.Unlock()
	return nil
}

// Stop halts the cron scheduler, waiting for a running sync to finish.
func (s *Syncer) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Status returns the most recent sync outcome.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Syncer) recordError(err error) {
	metrics.RecordSyncError()
	s.mu.Lock()
	s.status.LastError = err.Error()
	s.mu.Unlock()
}
