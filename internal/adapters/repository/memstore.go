package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/pkg/logger"
	"github.com/quietweek/quietweek/pkg/metrics"
)

// MemStore is the in-memory Store implementation. Events live in a map
// keyed by id, with a secondary index by remote id for calendar sync
// reconciliation.
type MemStore struct {
	mu         sync.RWMutex
	events     map[string]*model.Event
	byRemote   map[string]string
	log        logger.Logger
	trackGauge bool
}

// NewMemStore creates an empty in-memory event store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		events:     make(map[string]*model.Event),
		byRemote:   make(map[string]string),
		log:        logger.Named("store"),
		trackGauge: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all events ordered by start time, then id.
func (s *MemStore) List(_ context.Context) []*model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns the event with the given id.
func (s *MemStore) Get(_ context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Add inserts a new event, assigning an id when none is set.
func (s *MemStore) Add(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, exists := s.events[e.ID]; exists {
		return ErrDuplicateID
	}
	s.events[e.ID] = e
	if e.RemoteID != "" {
		s.byRemote[e.RemoteID] = e.ID
	}
	s.updateGauge()
	return nil
}

// Update replaces the stored event with the same id.
func (s *MemStore) Update(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.events[e.ID]
	if !ok {
		return ErrNotFound
	}
	if old.RemoteID != "" {
		delete(s.byRemote, old.RemoteID)
	}
	s.events[e.ID] = e
	if e.RemoteID != "" {
		s.byRemote[e.RemoteID] = e.ID
	}
	return nil
}

// Remove deletes the event with the given id.
func (s *MemStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	if e.RemoteID != "" {
		delete(s.byRemote, e.RemoteID)
	}
	s.updateGauge()
	return nil
}

// MergeRemote reconciles synced calendar events by remote id. Known
// events keep their local id and enrichments and only refresh the
// fields the remote calendar owns. With prune set, remote-sourced
// events absent from the pass have vanished from the calendar and are
// dropped; locally created events are never touched. Callers pass
// prune=false when a source failed to fetch, since a missing feed says
// nothing about its events.
func (s *MemStore) MergeRemote(ctx context.Context, events []*model.Event, prune bool) (added, updated, removed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(events))
	for _, remote := range events {
		if remote.RemoteID == "" {
			continue
		}
		seen[remote.RemoteID] = struct{}{}
		localID, known := s.byRemote[remote.RemoteID]
		if !known {
			if remote.ID == "" {
				remote.ID = uuid.NewString()
			}
			s.events[remote.ID] = remote
			s.byRemote[remote.RemoteID] = remote.ID
			added++
			continue
		}

		local := s.events[localID]
		local.Title = remote.Title
		local.Description = remote.Description
		local.Start = remote.Start
		local.End = remote.End
		local.DurationMinutes = remote.DurationMinutes
		updated++
	}

	if prune {
		for remoteID, localID := range s.byRemote {
			if _, ok := seen[remoteID]; ok {
				continue
			}
			delete(s.events, localID)
			delete(s.byRemote, remoteID)
			removed++
		}
	}

	s.updateGauge()
	s.log.Debug(ctx, "merged remote events",
		logger.Int("added", added),
		logger.Int("updated", updated),
		logger.Int("removed", removed),
		logger.Int("total", len(s.events)))
	return added, updated, removed
}

// Count returns the number of tracked events.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// updateGauge is called with the write lock held.
func (s *MemStore) updateGauge() {
	if s.trackGauge {
		metrics.UpdateEventsTracked(len(s.events))
	}
}
